package builtin

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"docent/internal/tool"
)

const defaultReadLimit = 2000

// ReadFileTool reads a file with optional 1-based line range.
type ReadFileTool struct{}

// NewReadFileTool creates a read_file tool
func NewReadFileTool() *ReadFileTool {
	return &ReadFileTool{}
}

func (t *ReadFileTool) Name() string {
	return "read_file"
}

func (t *ReadFileTool) Description() string {
	return `Tool: read_file
Description: Read a file's contents with optional line range
Usage:
<tool_call>
<name>read_file</name>
<params>
<file_path>path/to/file.txt</file_path>
<offset>1</offset>
<limit>50</limit>
</params>
</tool_call>

Features:
- Read entire files or specific line ranges
- 1-based line indexing
- Line number formatting in output
- Handles large files with offset/limit parameters`
}

func (t *ReadFileTool) Execute(ctx context.Context, params map[string]string) (*tool.Result, error) {
	filePath := params["file_path"]
	if filePath == "" {
		return &tool.Result{Success: false, Error: "file_path parameter is required"}, nil
	}

	// Non-numeric offset/limit silently fall back to defaults
	offset, hasOffset := parseIntParam(params["offset"])
	limit, hasLimit := parseIntParam(params["limit"])

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &tool.Result{Success: false, Error: fmt.Sprintf("File not found: %s", filePath)}, nil
		}
		return &tool.Result{Success: false, Error: fmt.Sprintf("Error reading file: %v", err)}, nil
	}

	lines := splitLines(string(data))

	startIdx := 0
	if hasOffset {
		startIdx = offset - 1
		if startIdx < 0 {
			startIdx = 0
		}
	}

	endIdx := startIdx + defaultReadLimit
	if hasLimit {
		endIdx = startIdx + limit
	}
	// A negative limit selects nothing rather than panicking
	if endIdx < startIdx {
		endIdx = startIdx
	}
	if startIdx > len(lines) {
		startIdx = len(lines)
	}
	if endIdx > len(lines) {
		endIdx = len(lines)
	}

	selected := lines[startIdx:endIdx]

	var sb strings.Builder
	for i, line := range selected {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%6d | %s", startIdx+i+1, line)
	}

	output := sb.String()
	if (hasOffset && offset != 0) || (hasLimit && limit != 0) {
		output += fmt.Sprintf("\n[Read lines %d-%d of %d total]", startIdx+1, startIdx+len(selected), len(lines))
	}

	return &tool.Result{Success: true, Output: output}, nil
}

// parseIntParam converts a string parameter to int. Surrounding
// whitespace is ignored; empty or unparsable values report absent.
func parseIntParam(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// splitLines splits file content into lines without trailing newlines.
// A trailing newline does not produce a phantom empty line.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.TrimSuffix(content, "\n")
	return strings.Split(content, "\n")
}
