package qa

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docent/internal/agent"
	"docent/internal/llm"
	"docent/internal/logger"
	"docent/internal/tool"
)

type cannedClient struct {
	response string
	prompts  []string
}

func (c *cannedClient) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	for _, m := range req.Messages {
		if m.Role == llm.RoleUser {
			c.prompts = append(c.prompts, m.Content)
		}
	}
	return &llm.ChatResponse{Content: c.response}, nil
}

func (c *cannedClient) ListModels(ctx context.Context) ([]string, error) { return nil, nil }
func (c *cannedClient) Provider() string                                 { return "canned" }
func (c *cannedClient) Model() string                                    { return "canned-model" }

func quietLogger() *logger.Logger {
	return logger.NewLogger(io.Discard, logger.LevelError)
}

func TestLoadDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qa_pairs.json")
	content := `[
  {"id": "parties", "question": "Who are the parties?", "answers": [{"text": "Electric City Corp.", "answer_start": 100}], "is_impossible": false},
  {"question": "Any liquidated damages?", "answers": [], "is_impossible": true}
]`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write dataset: %v", err)
	}

	pairs, err := LoadDataset(path)
	if err != nil {
		t.Fatalf("LoadDataset failed: %v", err)
	}

	if len(pairs) != 2 {
		t.Fatalf("Expected 2 pairs, got %d", len(pairs))
	}
	if pairs[0].ID != "parties" {
		t.Errorf("Unexpected id: %s", pairs[0].ID)
	}
	if pairs[0].Answers[0].AnswerStart != 100 {
		t.Errorf("Unexpected answer_start: %d", pairs[0].Answers[0].AnswerStart)
	}
	if !pairs[1].IsImpossible {
		t.Error("Expected second question marked impossible")
	}
}

func TestHarnessRun(t *testing.T) {
	client := &cannedClient{response: "Final answer: the parties are Electric City Corp. and the Distributor."}

	factory := func() *agent.Agent {
		return agent.New(client, tool.NewRegistry(), agent.Config{})
	}

	harness := NewHarness(factory, "test-model", "contracts/agreement.txt", quietLogger())
	pairs := []Pair{
		{ID: "parties", Question: "Who are the parties?", Answers: []Answer{{Text: "Electric City Corp."}}},
		{Question: "Any liquidated damages?", IsImpossible: true},
	}

	results := harness.Run(context.Background(), pairs)

	if len(results.Results) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(results.Results))
	}

	first := results.Results[0]
	if first.QuestionNum != 1 || first.QuestionID != "parties" {
		t.Errorf("Unexpected first record: %+v", first)
	}
	if !strings.Contains(first.AgentResponseFull, "Electric City Corp.") {
		t.Errorf("Unexpected response: %q", first.AgentResponseFull)
	}

	// Missing dataset id falls back to positional id
	if results.Results[1].QuestionID != "Q2" {
		t.Errorf("Expected fallback id Q2, got %s", results.Results[1].QuestionID)
	}

	if results.Summary.ImpossibleQuestions != 1 || results.Summary.AnswerableQuestions != 1 {
		t.Errorf("Unexpected summary: %+v", results.Summary)
	}
	if results.Metadata.ModelUsed != "test-model" {
		t.Errorf("Unexpected metadata: %+v", results.Metadata)
	}

	// The task must name the document and the workflow
	if len(client.prompts) == 0 {
		t.Fatal("Expected agent prompts")
	}
	if !strings.Contains(client.prompts[0], "Document: contracts/agreement.txt") {
		t.Errorf("Task should name the document, got:\n%s", client.prompts[0])
	}
	if !strings.Contains(client.prompts[0], "FIRST segment the document") {
		t.Errorf("Task should demand segmentation first, got:\n%s", client.prompts[0])
	}
}

func TestRunResults_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qa_results.json")

	results := &RunResults{
		Metadata: RunMetadata{ModelUsed: "m", TotalQuestions: 1},
		Results: []RunRecord{
			{QuestionNum: 1, QuestionID: "Q1", QuestionFull: "q", AgentResponseFull: "a"},
		},
		Summary: RunSummary{TotalQuestions: 1, AnswerableQuestions: 1},
	}

	if err := results.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadResults(path)
	if err != nil {
		t.Fatalf("LoadResults failed: %v", err)
	}
	if loaded.Results[0].QuestionID != "Q1" {
		t.Errorf("Round trip lost data: %+v", loaded.Results[0])
	}
}

func TestShorten(t *testing.T) {
	if got := shorten("short", 100); got != "short" {
		t.Errorf("Expected unchanged, got %q", got)
	}

	long := strings.Repeat("x", 150)
	got := shorten(long, 100)
	if len(got) != 103 || !strings.HasSuffix(got, "...") {
		t.Errorf("Expected 100 chars plus ellipsis, got %d chars", len(got))
	}
}
