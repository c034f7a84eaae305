package segment

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docent/internal/llm"
	"docent/internal/logger"
)

type stubClient struct {
	response string
	err      error
	calls    int
}

func (c *stubClient) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &llm.ChatResponse{Content: c.response}, nil
}

func (c *stubClient) ListModels(ctx context.Context) ([]string, error) { return nil, nil }
func (c *stubClient) Provider() string                                 { return "stub" }
func (c *stubClient) Model() string                                    { return "stub-model" }

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contract.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write document: %v", err)
	}
	return path
}

func testSegmenter(client llm.Client) *Segmenter {
	return New(client, logger.NewLogger(io.Discard, logger.LevelError))
}

func TestSegment(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeDoc(t, "TITLE\nRECITALS\nbody\n1. TERM\nbody\n")

	client := &stubClient{response: `{"sections":[{"title":"RECITALS","start_index":1,"end_index":2},{"title":"1. TERM","start_index":3,"end_index":4}]}`}
	doc, err := testSegmenter(client).Segment(context.Background(), path)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}

	if len(doc.Sections) != 2 {
		t.Fatalf("Expected 2 sections, got %d", len(doc.Sections))
	}
	if doc.Sections[0].Title != "RECITALS" {
		t.Errorf("Unexpected first section: %+v", doc.Sections[0])
	}
}

func TestSegment_CacheHit(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeDoc(t, "line one\nline two\n")

	client := &stubClient{response: `{"sections":[{"title":"All","start_index":0,"end_index":1}]}`}
	seg := testSegmenter(client)

	if _, err := seg.Segment(context.Background(), path); err != nil {
		t.Fatalf("First Segment failed: %v", err)
	}
	if _, err := seg.Segment(context.Background(), path); err != nil {
		t.Fatalf("Second Segment failed: %v", err)
	}

	if client.calls != 1 {
		t.Errorf("Expected cache to absorb second call, got %d LLM calls", client.calls)
	}
}

func TestSegment_CacheInvalidatedOnChange(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeDoc(t, "original content\n")

	client := &stubClient{response: `{"sections":[{"title":"All","start_index":0,"end_index":0}]}`}
	seg := testSegmenter(client)

	if _, err := seg.Segment(context.Background(), path); err != nil {
		t.Fatalf("First Segment failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("changed content\n"), 0644); err != nil {
		t.Fatalf("Failed to rewrite document: %v", err)
	}

	if _, err := seg.Segment(context.Background(), path); err != nil {
		t.Fatalf("Second Segment failed: %v", err)
	}

	if client.calls != 2 {
		t.Errorf("Expected recompute after content change, got %d LLM calls", client.calls)
	}
}

func TestSegment_FallbackOnError(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeDoc(t, "a\nb\nc\n")

	client := &stubClient{err: errors.New("model unavailable")}
	doc, err := testSegmenter(client).Segment(context.Background(), path)
	if err != nil {
		t.Fatalf("Expected fallback, got error: %v", err)
	}

	if len(doc.Sections) != 1 {
		t.Fatalf("Expected single fallback section, got %d", len(doc.Sections))
	}
	if doc.Sections[0].Title != "Full Document" {
		t.Errorf("Unexpected fallback section: %+v", doc.Sections[0])
	}
	if doc.Sections[0].StartIndex != 0 {
		t.Errorf("Fallback should start at line 0, got %d", doc.Sections[0].StartIndex)
	}
}

func TestSegment_ClampsInvalidRanges(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeDoc(t, "a\nb\nc\n")

	client := &stubClient{response: `{"sections":[{"title":"Good","start_index":-2,"end_index":99},{"title":"Inverted","start_index":3,"end_index":1}]}`}
	doc, err := testSegmenter(client).Segment(context.Background(), path)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}

	if len(doc.Sections) != 1 {
		t.Fatalf("Expected the inverted section dropped, got %d sections", len(doc.Sections))
	}
	sec := doc.Sections[0]
	if sec.StartIndex != 0 {
		t.Errorf("Expected start clamped to 0, got %d", sec.StartIndex)
	}
	if sec.EndIndex >= 4 {
		t.Errorf("Expected end clamped below line count, got %d", sec.EndIndex)
	}
}

func TestSegment_MissingFile(t *testing.T) {
	client := &stubClient{}
	_, err := testSegmenter(client).Segment(context.Background(), "/nonexistent/doc.txt")
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
	if !strings.Contains(err.Error(), "failed to read document") {
		t.Errorf("Unexpected error: %v", err)
	}
}
