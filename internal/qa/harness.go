package qa

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"docent/internal/agent"
	"docent/internal/logger"
)

// AgentFactory builds a fresh agent per question so the context trail
// never leaks between runs.
type AgentFactory func() *agent.Agent

// RunRecord is the outcome of one question
type RunRecord struct {
	QuestionNum        int      `json:"question_num"`
	QuestionID         string   `json:"question_id"`
	QuestionFull       string   `json:"question_full"`
	QuestionShort      string   `json:"question_short"`
	ExpectedAnswers    []string `json:"expected_answers"`
	ExpectedCount      int      `json:"expected_count"`
	IsImpossible       bool     `json:"is_impossible"`
	AgentResponseFull  string   `json:"agent_response_full"`
	AgentResponseShort string   `json:"agent_response_short"`
	Timestamp          string   `json:"timestamp"`
}

// RunMetadata describes a benchmark run
type RunMetadata struct {
	Timestamp      string `json:"timestamp"`
	TotalQuestions int    `json:"total_questions"`
	ModelUsed      string `json:"model_used"`
	ContractFile   string `json:"contract_file"`
}

// RunSummary aggregates counts over a run
type RunSummary struct {
	TotalQuestions      int `json:"total_questions"`
	ImpossibleQuestions int `json:"impossible_questions"`
	AnswerableQuestions int `json:"answerable_questions"`
	ErrorCount          int `json:"error_count"`
}

// RunResults is the full benchmark output, the input to judging
type RunResults struct {
	Metadata RunMetadata `json:"metadata"`
	Results  []RunRecord `json:"results"`
	Summary  RunSummary  `json:"summary"`
}

// Harness drives an agent through a QA dataset against one document.
type Harness struct {
	factory      AgentFactory
	model        string
	contractFile string
	log          *logger.Logger
}

// NewHarness creates a benchmark harness
func NewHarness(factory AgentFactory, model, contractFile string, log *logger.Logger) *Harness {
	if log == nil {
		log = logger.NewLogger(nil, logger.LevelError)
	}
	return &Harness{
		factory:      factory,
		model:        model,
		contractFile: contractFile,
		log:          log,
	}
}

// Run executes every question and collects the responses. Agent
// errors become ERROR records, never abort the run.
func (h *Harness) Run(ctx context.Context, pairs []Pair) *RunResults {
	records := make([]RunRecord, 0, len(pairs))

	for i, pair := range pairs {
		h.log.Progress(i+1, len(pairs), pair.Question)

		record := RunRecord{
			QuestionNum:     i + 1,
			QuestionID:      questionID(pair, i),
			QuestionFull:    pair.Question,
			QuestionShort:   shorten(pair.Question, 100),
			ExpectedAnswers: pair.AnswerTexts(),
			ExpectedCount:   len(pair.Answers),
			IsImpossible:    pair.IsImpossible,
			Timestamp:       time.Now().Format(time.RFC3339),
		}

		a := h.factory()
		response, err := a.Run(ctx, h.task(pair.Question), h.log)
		if err != nil {
			h.log.Error("Question %d failed: %v", i+1, err)
			response = fmt.Sprintf("ERROR: %v", err)
		}

		record.AgentResponseFull = response
		record.AgentResponseShort = shorten(response, 200)
		records = append(records, record)
	}

	return &RunResults{
		Metadata: RunMetadata{
			Timestamp:      time.Now().Format(time.RFC3339),
			TotalQuestions: len(records),
			ModelUsed:      h.model,
			ContractFile:   h.contractFile,
		},
		Results: records,
		Summary: summarize(records),
	}
}

// task wraps a dataset question into the agent task
func (h *Harness) task(question string) string {
	return fmt.Sprintf(`Question: %s

Document: %s

Follow the mandatory workflow: FIRST segment the document to understand its structure, THEN navigate to relevant sections to find the answer.`, question, h.contractFile)
}

// Save writes run results as indented JSON
func (r *RunResults) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}

// LoadResults reads previously saved run results
func LoadResults(path string) (*RunResults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load results file: %w", err)
	}

	var results RunResults
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("failed to parse results file: %w", err)
	}
	return &results, nil
}

func questionID(pair Pair, index int) string {
	if pair.ID != "" {
		return pair.ID
	}
	return fmt.Sprintf("Q%d", index+1)
}

func summarize(records []RunRecord) RunSummary {
	s := RunSummary{TotalQuestions: len(records)}
	for _, r := range records {
		if r.IsImpossible {
			s.ImpossibleQuestions++
		} else {
			s.AnswerableQuestions++
		}
		if len(r.AgentResponseFull) >= 5 && r.AgentResponseFull[:5] == "ERROR" {
			s.ErrorCount++
		}
	}
	return s
}

func shorten(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
