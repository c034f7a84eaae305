package builtin

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestRunCommand(t *testing.T) {
	result, err := NewRunCommandTool().Execute(context.Background(), map[string]string{
		"command": "echo hello",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("Expected success, got error: %s", result.Error)
	}
	if !strings.Contains(result.Output, "hello") {
		t.Errorf("Unexpected output: %q", result.Output)
	}
}

func TestRunCommand_DeniedCommands(t *testing.T) {
	denied := []string{
		"rm -rf /tmp/x",
		"Remove-Item C:\\data",
		"sudo RM -RF /",
		"rmdir build",
	}

	for _, cmd := range denied {
		result, err := NewRunCommandTool().Execute(context.Background(), map[string]string{
			"command": cmd,
		})
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if result.Success {
			t.Errorf("Expected %q to be blocked", cmd)
		}
		if result.Error != "Dangerous command not allowed" {
			t.Errorf("Unexpected error for %q: %s", cmd, result.Error)
		}
	}
}

func TestRunCommand_StderrOnSuccess(t *testing.T) {
	result, err := NewRunCommandTool().Execute(context.Background(), map[string]string{
		"command": "echo out; echo err 1>&2",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("Expected success, got error: %s", result.Error)
	}
	if !strings.Contains(result.Output, "out") {
		t.Errorf("Missing stdout in output: %q", result.Output)
	}
	if !strings.Contains(result.Output, "STDERR: err") {
		t.Errorf("Missing stderr in output: %q", result.Output)
	}
}

func TestRunCommand_Timeout(t *testing.T) {
	tool := NewRunCommandTool()
	tool.timeout = 100 * time.Millisecond

	result, err := tool.Execute(context.Background(), map[string]string{
		"command": "sleep 10",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Success {
		t.Fatal("Expected failure due to timeout")
	}
	if !strings.Contains(result.Error, "timed out") {
		t.Errorf("Unexpected error: %s", result.Error)
	}
}

func TestRunCommand_NonZeroExit(t *testing.T) {
	result, err := NewRunCommandTool().Execute(context.Background(), map[string]string{
		"command": "exit 3",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Success {
		t.Fatal("Expected failure for non-zero exit")
	}
	if !strings.Contains(result.Error, "return code 3") {
		t.Errorf("Unexpected error: %s", result.Error)
	}
}

func TestRunCommand_MissingCommand(t *testing.T) {
	result, err := NewRunCommandTool().Execute(context.Background(), map[string]string{})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Success {
		t.Fatal("Expected failure for missing command")
	}
}
