package cli

import (
	"fmt"
	"io"
	"strings"

	"chatstream/internal/conversation"
	"chatstream/internal/stream"

	"github.com/charmbracelet/lipgloss"
)

// renderer prints the streaming assistant turn to a terminal. Updates carry
// the cumulative text, so only the part not yet printed is written.
type renderer struct {
	out       io.Writer
	errOut    io.Writer
	user      lipgloss.Style
	assistant lipgloss.Style
	failure   lipgloss.Style

	inTurn    bool
	streaming bool
	printed   string
}

func newRenderer(out, errOut io.Writer) *renderer {
	r := lipgloss.NewRenderer(out)
	return &renderer{
		out:       out,
		errOut:    errOut,
		user:      r.NewStyle().Bold(true).Foreground(lipgloss.Color("244")),
		assistant: r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		failure:   lipgloss.NewRenderer(errOut).NewStyle().Foreground(lipgloss.Color("196")),
	}
}

func (r *renderer) hooks(showErrors bool) stream.Hooks {
	hooks := stream.Hooks{
		OnUpdate: r.update,
		OnState:  r.state,
	}
	if showErrors {
		hooks.OnParseError = r.parseError
	}
	return hooks
}

func (r *renderer) label(role conversation.Role) string {
	switch role {
	case conversation.RoleUser:
		return r.user.Render("you:")
	case conversation.RoleAssistant:
		return r.assistant.Render("assistant:")
	default:
		return role.String() + ":"
	}
}

// transcript prints every message of conv, used for the greeting and after a
// reset.
func (r *renderer) transcript(conv conversation.Conversation) {
	for _, msg := range conv.Messages() {
		fmt.Fprintf(r.out, "%s %s\n", r.label(msg.Role), msg.Content)
	}
}

func (r *renderer) state(s stream.State) {
	switch s {
	case stream.StateSending:
		r.inTurn = true
		r.streaming = false
		r.printed = ""
	case stream.StateIdle:
		if r.streaming {
			fmt.Fprintln(r.out)
		}
		r.inTurn = false
		r.streaming = false
	}
}

func (r *renderer) update(conv conversation.Conversation) {
	if !r.inTurn {
		return
	}
	last, ok := conv.Last()
	if !ok || !last.IsAssistant() {
		return
	}
	if !r.streaming {
		r.streaming = true
		fmt.Fprintf(r.out, "%s ", r.label(last.Role))
	}
	content := last.Content
	if strings.HasPrefix(content, r.printed) {
		fmt.Fprint(r.out, content[len(r.printed):])
	} else {
		fmt.Fprintf(r.out, "\n%s %s", r.label(last.Role), content)
	}
	r.printed = content
}

func (r *renderer) parseError(err error) {
	fmt.Fprintln(r.errOut, r.failure.Render("skipped: "+err.Error()))
}
