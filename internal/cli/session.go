package cli

import (
	"strings"

	"chatstream/internal/backend"
	"chatstream/internal/config"
	"chatstream/internal/logging"
	"chatstream/internal/stream"

	"github.com/spf13/cobra"
)

// connectionOptions are the flags shared by every command that talks to the
// chat endpoint. Non-empty values override the config file.
type connectionOptions struct {
	URL           string
	Token         string
	ChatbotID     string
	QuestionField string
	Framing       string
	ShowErrors    bool
}

func (o *connectionOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.URL, "url", "", "override base url")
	cmd.Flags().StringVar(&o.Token, "token", "", "override access token")
	cmd.Flags().StringVar(&o.ChatbotID, "chatbot-id", "", "override chatbot id")
	cmd.Flags().StringVar(&o.QuestionField, "question-field", "", "override request field carrying the question")
	cmd.Flags().StringVar(&o.Framing, "framing", "", "response framing: tokenizer or legacy")
	cmd.Flags().BoolVar(&o.ShowErrors, "show-errors", false, "print skipped response fragments")
}

func newDriver(cmd *cobra.Command, opts *connectionOptions, hooks stream.Hooks) (*stream.Driver, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	client, err := backend.NewClient(backend.Config{
		BaseURL:       firstNonEmpty(opts.URL, cfg.Chat.URL),
		Path:          cfg.Chat.Path,
		Token:         firstNonEmpty(opts.Token, cfg.Chat.Token),
		ChatbotID:     firstNonEmpty(opts.ChatbotID, cfg.Chat.ChatbotID),
		QuestionField: firstNonEmpty(opts.QuestionField, cfg.Chat.QuestionField),
		Timeout:       cfg.Chat.Timeout,
	})
	if err != nil {
		return nil, err
	}

	return stream.NewDriver(client, stream.Options{
		Framing:      firstNonEmpty(opts.Framing, cfg.Stream.Framing),
		Charset:      cfg.Stream.Charset,
		ReadSize:     cfg.Stream.ReadSize,
		StrictSchema: cfg.Stream.StrictSchema,
		Greeting:     cfg.Chat.Greeting,
		Logger:       logger,
		Hooks:        hooks,
	})
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
