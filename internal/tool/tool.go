package tool

import "context"

// Tool defines the interface that all tools must implement
type Tool interface {
	// Name returns the unique identifier for this tool
	Name() string

	// Description returns the tool description shown to the LLM,
	// including a <tool_call> usage example it is expected to imitate
	Description() string

	// Execute runs the tool with the given string parameters, as parsed
	// from the model's tool call block. Parameter coercion (e.g. string
	// to integer) is the tool's responsibility.
	Execute(ctx context.Context, params map[string]string) (*Result, error)
}

type Result struct {
	Success bool
	Output  string
	Error   string
	Data    map[string]any
}
