// Package framing recovers JSON object candidates from a text stream whose
// objects are concatenated back-to-back with no separator.
package framing

import "fmt"

// Splitter turns arbitrarily cut text fragments into candidate object strings.
// Implementations keep their own carry between calls and are not safe for
// concurrent use; a new Splitter is created for every stream.
type Splitter interface {
	// Split consumes one decoded fragment. An empty fragment returns nil.
	Split(fragment string) []string
	// Flush returns whatever is still carried when the stream ends and
	// discards it.
	Flush() []string
}

const (
	ModeTokenizer = "tokenizer"
	ModeLegacy    = "legacy"
)

// New returns the Splitter for mode. An empty mode selects the tokenizer.
func New(mode string) (Splitter, error) {
	switch mode {
	case "", ModeTokenizer:
		return NewTokenizer(), nil
	case ModeLegacy:
		return LegacySplitter{}, nil
	default:
		return nil, fmt.Errorf("unknown framing mode: %s", mode)
	}
}
