package handlers

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"docent/internal/hook"
)

// CommandConfirmHandler prompts the user for confirmation before the
// agent runs a shell command.
type CommandConfirmHandler struct {
	reader io.Reader
	writer io.Writer
}

// NewCommandConfirmHandler creates a handler reading from stdin
func NewCommandConfirmHandler() *CommandConfirmHandler {
	return &CommandConfirmHandler{
		reader: os.Stdin,
		writer: os.Stdout,
	}
}

// NewCommandConfirmHandlerWithIO creates a handler with custom IO (for testing)
func NewCommandConfirmHandlerWithIO(reader io.Reader, writer io.Writer) *CommandConfirmHandler {
	return &CommandConfirmHandler{
		reader: reader,
		writer: writer,
	}
}

func (h *CommandConfirmHandler) Name() string {
	return "command_confirm"
}

func (h *CommandConfirmHandler) Points() []hook.Point {
	return []hook.Point{hook.BeforeToolExecution}
}

func (h *CommandConfirmHandler) Priority() int {
	return 100 // runs before everything else
}

func (h *CommandConfirmHandler) Handle(ctx context.Context, data *hook.Data) (*hook.Feedback, error) {
	if data.ToolName != "run_command" {
		return hook.AllowFeedback(), nil
	}

	command := data.GetString("command")
	if command == "" {
		return hook.AllowFeedback(), nil
	}

	fmt.Fprintf(h.writer, "\n\033[33mCommand requires confirmation:\033[0m\n")
	fmt.Fprintf(h.writer, "    \033[1m%s\033[0m\n\n", command)
	fmt.Fprintf(h.writer, "Allow? [y/N]: ")

	scanner := bufio.NewScanner(h.reader)
	if !scanner.Scan() {
		return hook.DenyFeedback("No input received"), nil
	}

	input := strings.TrimSpace(strings.ToLower(scanner.Text()))

	switch input {
	case "y", "yes":
		fmt.Fprintf(h.writer, "\033[32mAllowed\033[0m\n\n")
		return hook.AllowFeedback(), nil
	default:
		fmt.Fprintf(h.writer, "\033[31mDenied\033[0m\n\n")
		return hook.DenyFeedback("User denied command execution"), nil
	}
}
