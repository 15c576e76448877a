package conversation

import "strings"

// Turn accumulates the text of one assistant reply as deltas arrive.
type Turn struct {
	text   strings.Builder
	deltas int
}

// Add appends delta and returns the cumulative text so far.
func (t *Turn) Add(delta string) string {
	t.text.WriteString(delta)
	t.deltas++
	return t.text.String()
}

func (t *Turn) Text() string {
	return t.text.String()
}

// Deltas is the number of Add calls, including empty contributions.
func (t *Turn) Deltas() int {
	return t.deltas
}
