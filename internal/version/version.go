package version

// Version is overridden at build time with -ldflags "-X chatstream/internal/version.Version=...".
var Version = "dev"
