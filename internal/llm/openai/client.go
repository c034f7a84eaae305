package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"docent/internal/llm"

	openai "github.com/sashabaranov/go-openai"
)

type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a client for an OpenAI-compatible chat completion API.
// If baseURL is empty, the default OpenAI endpoint is used; pass the
// OpenRouter base URL to route through OpenRouter.
func NewClient(apiKey, model string, baseURL ...string) *Client {
	var client *openai.Client

	if len(baseURL) > 0 && baseURL[0] != "" {
		config := openai.DefaultConfig(apiKey)
		config.BaseURL = baseURL[0]
		client = openai.NewClientWithConfig(config)
	} else {
		client = openai.NewClient(apiKey)
	}

	return &Client{
		client: client,
		model:  model,
	}
}

func (c *Client) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	ocReq := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    c.convertMessages(req.Messages),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	if req.ResponseFormat != nil {
		ocReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.ResponseFormat.Name,
				Schema: schemaMap(req.ResponseFormat.Schema),
				Strict: req.ResponseFormat.Strict,
			},
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, ocReq)
	if err != nil {
		return nil, fmt.Errorf("chat completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices (model=%s)", resp.Model)
	}

	choice := resp.Choices[0]
	return &llm.ChatResponse{
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Usage: llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	resp, err := c.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models request failed: %w", err)
	}

	ids := make([]string, len(resp.Models))
	for i, m := range resp.Models {
		ids[i] = m.ID
	}
	return ids, nil
}

func (c *Client) Provider() string {
	return "openai"
}

func (c *Client) Model() string {
	return c.model
}

func (c *Client) convertMessages(msgs []llm.Message) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, len(msgs))
	for i, msg := range msgs {
		result[i] = openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}
	return result
}

// schemaMap adapts a plain schema document to the json.Marshaler the
// response format field expects.
type schemaMap map[string]any

func (s schemaMap) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any(s))
}
