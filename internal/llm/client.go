package llm

import "context"

type Client interface {
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
	ListModels(ctx context.Context) ([]string, error)
	Provider() string
	Model() string
}

type ChatRequest struct {
	Messages    []Message
	Temperature float32
	MaxTokens   int

	// ResponseFormat, when set, requests a structured JSON response
	// conforming to the named schema.
	ResponseFormat *ResponseFormat
}

type ChatResponse struct {
	Content      string
	FinishReason string
	Usage        Usage
}

// ResponseFormat describes a JSON schema the model output must conform to.
// Schema is a plain JSON-serializable schema document.
type ResponseFormat struct {
	Name   string
	Schema map[string]any
	Strict bool
}
