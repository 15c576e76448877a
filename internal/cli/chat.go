package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"chatstream/internal/stream"

	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	opts := &connectionOptions{}
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: "Reads one message per line from stdin and streams each answer as it arrives.\n" +
			"Type /reset to start over and /quit to leave.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, opts)
		},
	}
	opts.addFlags(cmd)
	return cmd
}

func runChat(cmd *cobra.Command, opts *connectionOptions) error {
	render := newRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr())
	driver, err := newDriver(cmd, opts, render.hooks(opts.ShowErrors))
	if err != nil {
		return err
	}
	render.transcript(driver.Conversation())

	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch strings.TrimSpace(line) {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/reset":
			if err := driver.Reset(); err != nil {
				return err
			}
			render.transcript(driver.Conversation())
			continue
		}

		_, err := driver.Submit(cmd.Context(), line)
		var transportErr *stream.TransportError
		switch {
		case err == nil:
		case errors.As(err, &transportErr):
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			if cmd.Context().Err() != nil {
				return err
			}
		default:
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}
