package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

type sendOptions struct {
	connectionOptions
	InputFile string
	Quiet     bool
}

func newSendCmd() *cobra.Command {
	opts := &sendOptions{}
	cmd := &cobra.Command{
		Use:   "send [text...]",
		Short: "Send one message and stream the answer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd, opts, args)
		},
	}
	opts.addFlags(cmd)
	cmd.Flags().StringVarP(&opts.InputFile, "file", "F", "", "message file, use -F- for stdin")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "print only the final answer")
	return cmd
}

func runSend(cmd *cobra.Command, opts *sendOptions, args []string) error {
	input, err := readInput(args, opts.InputFile, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("input is required")
	}

	render := newRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr())
	hooks := render.hooks(opts.ShowErrors)
	if opts.Quiet {
		hooks.OnUpdate = nil
		hooks.OnState = nil
	}
	driver, err := newDriver(cmd, &opts.connectionOptions, hooks)
	if err != nil {
		return err
	}

	result, err := driver.Submit(cmd.Context(), input)
	if err != nil {
		return err
	}
	if opts.Quiet {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), result.Content)
	}
	return err
}

func readInput(args []string, inputFile string, stdin io.Reader) (string, error) {
	if inputFile != "" && len(args) > 0 {
		return "", fmt.Errorf("input args and -F are mutually exclusive")
	}
	if inputFile == "" {
		if len(args) == 0 {
			return "", fmt.Errorf("missing input: provide args or -F")
		}
		return strings.Join(args, " "), nil
	}
	if inputFile == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return trimTrailingNewline(string(data)), nil
	}
	data, err := os.ReadFile(inputFile)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return trimTrailingNewline(string(data)), nil
}

func trimTrailingNewline(value string) string {
	return strings.TrimRight(value, "\r\n")
}
