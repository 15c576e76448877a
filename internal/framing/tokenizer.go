package framing

import (
	"bytes"
	"strings"
)

// DefaultObjectLimit caps the size of an object carried across fragments.
const DefaultObjectLimit = 64 << 10

// Tokenizer frames top-level JSON objects by tracking brace depth and string
// escape state byte by byte. An object left open at the end of a fragment is
// carried and completed by the following fragments.
//
// Text found between objects is not an object. Whitespace is dropped; anything
// else is emitted as its own candidate at the end of the fragment so the
// caller can report it.
//
// A truncated object upsets the string state and swallows whatever follows
// it. Once the carried object grows past the limit, or at Flush, the tokenizer
// gives up on it: the text up to the next '{' is emitted as a broken
// candidate and the rest is scanned again.
type Tokenizer struct {
	buf      []byte
	depth    int
	inString bool
	escaped  bool
	limit    int
}

func NewTokenizer() *Tokenizer {
	return NewTokenizerLimit(DefaultObjectLimit)
}

// NewTokenizerLimit returns a Tokenizer that resyncs once a carried object
// exceeds limit bytes. A limit of zero or less disables the check.
func NewTokenizerLimit(limit int) *Tokenizer {
	return &Tokenizer{buf: make([]byte, 0, 256), limit: limit}
}

// Split scans fragment and returns every object it completes. Only '{', '}',
// '"' and '\\' are inspected, all ASCII, so multi-byte UTF-8 sequences pass
// through untouched.
func (t *Tokenizer) Split(fragment string) []string {
	if fragment == "" {
		return nil
	}
	out := t.scan(nil, []byte(fragment))
	if t.depth == 0 {
		out = t.appendNoise(out)
	}
	return out
}

func (t *Tokenizer) scan(out []string, data []byte) []string {
	for i := 0; i < len(data); i++ {
		c := data[i]
		if t.depth == 0 {
			if c == '{' {
				out = t.appendNoise(out)
				t.depth = 1
			}
			t.buf = append(t.buf, c)
			continue
		}

		t.buf = append(t.buf, c)
		if t.limit > 0 && len(t.buf) > t.limit {
			out = t.resync(out)
			continue
		}
		if t.inString {
			switch {
			case t.escaped:
				t.escaped = false
			case c == '\\':
				t.escaped = true
			case c == '"':
				t.inString = false
			}
			continue
		}
		switch c {
		case '"':
			t.inString = true
		case '{':
			t.depth++
		case '}':
			t.depth--
			if t.depth == 0 {
				out = append(out, string(t.buf))
				t.buf = t.buf[:0]
			}
		}
	}
	return out
}

// resync drops the carried object. The text before the next '{' becomes a
// candidate of its own and the remainder is scanned from a clean state.
func (t *Tokenizer) resync(out []string) []string {
	carried := append([]byte(nil), t.buf...)
	t.reset()
	next := bytes.IndexByte(carried[1:], '{')
	if next < 0 {
		return append(out, string(carried))
	}
	out = append(out, string(carried[:next+1]))
	return t.scan(out, carried[next+1:])
}

// Flush emits the unterminated object or trailing noise still carried, then
// resets the tokenizer.
func (t *Tokenizer) Flush() []string {
	var out []string
	for t.depth > 0 {
		out = t.resync(out)
	}
	out = t.appendNoise(out)
	t.reset()
	return out
}

// Pending reports whether text is carried for the next fragment.
func (t *Tokenizer) Pending() bool {
	return len(t.buf) > 0
}

func (t *Tokenizer) reset() {
	t.buf = t.buf[:0]
	t.depth = 0
	t.inString = false
	t.escaped = false
}

func (t *Tokenizer) appendNoise(out []string) []string {
	noise := strings.TrimSpace(string(t.buf))
	t.buf = t.buf[:0]
	if noise == "" {
		return out
	}
	return append(out, noise)
}
