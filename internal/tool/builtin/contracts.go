package builtin

import (
	"context"
	"fmt"
	"strings"

	"docent/internal/contract"
	"docent/internal/tool"
)

// ListContractsTool lists contract files in the configured directory.
type ListContractsTool struct {
	reader *contract.Reader
}

// NewListContractsTool creates a list_contracts tool
func NewListContractsTool(reader *contract.Reader) *ListContractsTool {
	return &ListContractsTool{reader: reader}
}

func (t *ListContractsTool) Name() string {
	return "list_contracts"
}

func (t *ListContractsTool) Description() string {
	return `Tool: list_contracts
Description: List contract files in the contracts directory, optionally filtered by glob pattern
Usage:
<tool_call>
<name>list_contracts</name>
<params>
<pattern>*.txt</pattern>
</params>
</tool_call>

The pattern parameter is optional and defaults to *.txt.`
}

func (t *ListContractsTool) Execute(ctx context.Context, params map[string]string) (*tool.Result, error) {
	names, err := t.reader.List(params["pattern"])
	if err != nil {
		return &tool.Result{Success: false, Error: fmt.Sprintf("Error listing contracts: %v", err)}, nil
	}

	if len(names) == 0 {
		return &tool.Result{Success: true, Output: "No contract files found"}, nil
	}

	return &tool.Result{
		Success: true,
		Output:  fmt.Sprintf("Found %d contract files:\n%s", len(names), strings.Join(names, "\n")),
		Data:    map[string]any{"count": len(names)},
	}, nil
}
