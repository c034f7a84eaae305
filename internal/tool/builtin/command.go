package builtin

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"docent/internal/tool"
)

const defaultCommandTimeout = 30 * time.Second

// deniedSubstrings blocks obviously destructive commands. Matching is
// case-insensitive on the whole command line.
var deniedSubstrings = []string{
	"rm -rf",
	"rmdir",
	"remove-item",
	"mkfs",
	"dd if=",
	"> /dev/",
	"format ",
}

// RunCommandTool executes a shell command with a timeout and a
// denylist for destructive operations.
type RunCommandTool struct {
	timeout time.Duration
}

// NewRunCommandTool creates a run_command tool
func NewRunCommandTool() *RunCommandTool {
	return &RunCommandTool{timeout: defaultCommandTimeout}
}

func (t *RunCommandTool) Name() string {
	return "run_command"
}

func (t *RunCommandTool) Description() string {
	return `Tool: run_command
Description: Execute a shell command (read-only operations only, 30 second timeout)
Usage:
<tool_call>
<name>run_command</name>
<params>
<command>ls contracts</command>
</params>
</tool_call>`
}

func (t *RunCommandTool) Execute(ctx context.Context, params map[string]string) (*tool.Result, error) {
	command := params["command"]
	if command == "" {
		return &tool.Result{Success: false, Error: "command parameter is required"}, nil
	}

	lower := strings.ToLower(command)
	for _, denied := range deniedSubstrings {
		if strings.Contains(lower, denied) {
			return &tool.Result{Success: false, Error: "Dangerous command not allowed"}, nil
		}
	}

	cmdCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(cmdCtx, "bash", "-c", command)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	output := stdout.String()
	if stderr.Len() > 0 {
		output += fmt.Sprintf("\nSTDERR: %s", stderr.String())
	}

	if err != nil {
		if cmdCtx.Err() == context.DeadlineExceeded {
			return &tool.Result{Success: false, Error: "Command timed out after 30 seconds"}, nil
		}

		if exitErr, ok := err.(*exec.ExitError); ok {
			return &tool.Result{
				Success: false,
				Output:  output,
				Error:   fmt.Sprintf("Command failed with return code %d", exitErr.ExitCode()),
			}, nil
		}

		return &tool.Result{Success: false, Error: fmt.Sprintf("Error executing command: %v", err)}, nil
	}

	return &tool.Result{Success: true, Output: output}, nil
}
