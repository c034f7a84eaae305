package builtin

import (
	"context"
	"io"
	"strings"
	"testing"

	"docent/internal/llm"
	"docent/internal/logger"
	"docent/internal/segment"
)

type stubSegmentClient struct {
	response string
}

func (c *stubSegmentClient) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	return &llm.ChatResponse{Content: c.response}, nil
}

func (c *stubSegmentClient) ListModels(ctx context.Context) ([]string, error) { return nil, nil }
func (c *stubSegmentClient) Provider() string                                 { return "stub" }
func (c *stubSegmentClient) Model() string                                    { return "stub-model" }

func TestSegmentDocument(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeTestFile(t, "contract.txt", "TITLE\nRECITALS\nbody\n1. TERM\nbody\n")

	seg := segment.New(
		&stubSegmentClient{response: `{"sections":[{"title":"RECITALS","start_index":1,"end_index":2},{"title":"1. TERM","start_index":3,"end_index":4}]}`},
		logger.NewLogger(io.Discard, logger.LevelError),
	)

	result, err := NewSegmentDocumentTool(seg).Execute(context.Background(), map[string]string{
		"file_path": path,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("Expected success, got error: %s", result.Error)
	}

	if !strings.Contains(result.Output, "Document Structure Analysis:") {
		t.Errorf("Expected header, got:\n%s", result.Output)
	}
	if !strings.Contains(result.Output, "1. RECITALS") {
		t.Errorf("Expected numbered section, got:\n%s", result.Output)
	}
	if !strings.Contains(result.Output, "Lines: 1 - 2") {
		t.Errorf("Expected line range, got:\n%s", result.Output)
	}
	if !strings.Contains(result.Output, "Total sections identified: 2") {
		t.Errorf("Expected section count, got:\n%s", result.Output)
	}
}

func TestSegmentDocument_MissingPath(t *testing.T) {
	seg := segment.New(&stubSegmentClient{}, logger.NewLogger(io.Discard, logger.LevelError))

	result, err := NewSegmentDocumentTool(seg).Execute(context.Background(), map[string]string{})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Success {
		t.Fatal("Expected failure for missing file_path")
	}
}
