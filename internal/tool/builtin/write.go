package builtin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"docent/internal/tool"
)

// WriteFileTool writes content to a file, creating parent directories
// as needed.
type WriteFileTool struct{}

// NewWriteFileTool creates a write_file tool
func NewWriteFileTool() *WriteFileTool {
	return &WriteFileTool{}
}

func (t *WriteFileTool) Name() string {
	return "write_file"
}

func (t *WriteFileTool) Description() string {
	return `Tool: write_file
Description: Write content to a file, creating parent directories if needed
Usage:
<tool_call>
<name>write_file</name>
<params>
<file_path>path/to/file.txt</file_path>
<content>Content to write</content>
</params>
</tool_call>`
}

func (t *WriteFileTool) Execute(ctx context.Context, params map[string]string) (*tool.Result, error) {
	filePath := params["file_path"]
	content := params["content"]

	if filePath == "" {
		return &tool.Result{Success: false, Error: "file_path parameter is required"}, nil
	}

	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &tool.Result{Success: false, Error: fmt.Sprintf("Error creating directory: %v", err)}, nil
		}
	}

	if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
		return &tool.Result{Success: false, Error: fmt.Sprintf("Error writing file: %v", err)}, nil
	}

	return &tool.Result{
		Success: true,
		Output:  fmt.Sprintf("Successfully wrote %d bytes to %s", len(content), filePath),
	}, nil
}
