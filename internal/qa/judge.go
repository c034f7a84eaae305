package qa

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"docent/internal/llm"
	"docent/internal/logger"
)

// EvaluationResult is the judge's verdict on one question
type EvaluationResult struct {
	QuestionNum     int      `json:"question_num"`
	QuestionID      string   `json:"question_id"`
	QuestionText    string   `json:"question_text"`
	ExpectedAnswers []string `json:"expected_answers"`
	AgentResponse   string   `json:"agent_response"`
	Evaluation      string   `json:"evaluation"` // CORRECT, PARTIAL, INCORRECT
	Confidence      string   `json:"confidence"` // HIGH, MEDIUM, LOW
	Explanation     string   `json:"explanation"`
	LLMReasoning    string   `json:"llm_reasoning"`
	Timestamp       string   `json:"timestamp"`
}

// OverallResults aggregates judge verdicts over a run
type OverallResults struct {
	TotalQuestions   int                `json:"total_questions"`
	Correct          int                `json:"correct"`
	Partial          int                `json:"partial"`
	Incorrect        int                `json:"incorrect"`
	Accuracy         float64            `json:"accuracy"`
	StrictAccuracy   float64            `json:"strict_accuracy"`
	HighConfidence   int                `json:"high_confidence"`
	MediumConfidence int                `json:"medium_confidence"`
	LowConfidence    int                `json:"low_confidence"`
	EvaluationModel  string             `json:"evaluation_model"`
	DetailedResults  []EvaluationResult `json:"detailed_results"`
}

// Judge scores agent responses with an LLM, caching verdicts per
// question so interrupted evaluations resume cheaply.
type Judge struct {
	client    llm.Client
	log       *logger.Logger
	cacheFile string
	cache     map[string]EvaluationResult
}

// NewJudge creates an LLM judge
func NewJudge(client llm.Client, log *logger.Logger) *Judge {
	if log == nil {
		log = logger.NewLogger(nil, logger.LevelError)
	}
	return &Judge{
		client: client,
		log:    log,
		cache:  make(map[string]EvaluationResult),
	}
}

// SetupCache binds the verdict cache to a results file name
func (j *Judge) SetupCache(resultsFile string) error {
	cacheDir := "evaluation_cache"
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(resultsFile), filepath.Ext(resultsFile))
	j.cacheFile = filepath.Join(cacheDir, stem+"_llm_eval_cache.json")

	data, err := os.ReadFile(j.cacheFile)
	if err != nil {
		return nil // no cache yet
	}

	if err := json.Unmarshal(data, &j.cache); err != nil {
		j.cache = make(map[string]EvaluationResult)
		return nil
	}

	j.log.Info("Loaded %d cached evaluations", len(j.cache))
	return nil
}

// SaveCache flushes the verdict cache to disk
func (j *Judge) SaveCache() error {
	if j.cacheFile == "" {
		return nil
	}
	data, err := json.MarshalIndent(j.cache, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(j.cacheFile, data, 0644)
}

// EvaluateQuestion judges a single record. Judge transport failures
// degrade to an INCORRECT/LOW verdict rather than an error.
func (j *Judge) EvaluateQuestion(ctx context.Context, record RunRecord) EvaluationResult {
	if cached, ok := j.cache[record.QuestionID]; ok {
		return cached
	}

	prompt := buildJudgePrompt(record.QuestionFull, record.ExpectedAnswers, record.AgentResponseFull, record.IsImpossible)

	evaluation, confidence, reasoning := "INCORRECT", "LOW", "Failed to parse LLM response"
	raw := ""

	resp, err := j.client.Chat(ctx, &llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "You are an expert evaluator of question-answering systems, particularly skilled in legal document analysis. You provide precise, objective evaluations."},
			{Role: llm.RoleUser, Content: prompt},
		},
		Temperature: 0.1,
	})
	if err != nil {
		j.log.Error("Error evaluating question %d: %v", record.QuestionNum, err)
		reasoning = fmt.Sprintf("Evaluation failed due to error: %v", err)
		raw = fmt.Sprintf("ERROR: %v", err)
	} else {
		raw = resp.Content
		evaluation, confidence, reasoning = parseVerdict(raw)
	}

	result := EvaluationResult{
		QuestionNum:     record.QuestionNum,
		QuestionID:      record.QuestionID,
		QuestionText:    record.QuestionFull,
		ExpectedAnswers: record.ExpectedAnswers,
		AgentResponse:   record.AgentResponseFull,
		Evaluation:      evaluation,
		Confidence:      confidence,
		Explanation:     reasoning,
		LLMReasoning:    raw,
		Timestamp:       time.Now().Format(time.RFC3339),
	}

	j.cache[record.QuestionID] = result
	return result
}

// EvaluateAll judges every record, saving cache progress every 5
// questions.
func (j *Judge) EvaluateAll(ctx context.Context, results *RunResults) *OverallResults {
	j.log.Info("Evaluating %d questions using %s", len(results.Results), j.client.Model())

	detailed := make([]EvaluationResult, 0, len(results.Results))
	for i, record := range results.Results {
		j.log.Progress(i+1, len(results.Results), record.QuestionID)

		detailed = append(detailed, j.EvaluateQuestion(ctx, record))

		if (i+1)%5 == 0 {
			if err := j.SaveCache(); err != nil {
				j.log.Warn("Failed to save evaluation cache: %v", err)
			}
		}
	}

	if err := j.SaveCache(); err != nil {
		j.log.Warn("Failed to save evaluation cache: %v", err)
	}

	return j.aggregate(detailed)
}

func (j *Judge) aggregate(detailed []EvaluationResult) *OverallResults {
	out := &OverallResults{
		TotalQuestions:  len(detailed),
		EvaluationModel: j.client.Model(),
		DetailedResults: detailed,
	}

	for _, r := range detailed {
		switch r.Evaluation {
		case "CORRECT":
			out.Correct++
		case "PARTIAL":
			out.Partial++
		default:
			out.Incorrect++
		}

		switch r.Confidence {
		case "HIGH":
			out.HighConfidence++
		case "MEDIUM":
			out.MediumConfidence++
		default:
			out.LowConfidence++
		}
	}

	if out.TotalQuestions > 0 {
		out.Accuracy = (float64(out.Correct) + 0.5*float64(out.Partial)) / float64(out.TotalQuestions)
		out.StrictAccuracy = float64(out.Correct) / float64(out.TotalQuestions)
	}

	return out
}

// buildJudgePrompt produces impossible- and answerable-question
// variants of the evaluation prompt.
func buildJudgePrompt(question string, expected []string, response string, isImpossible bool) string {
	if isImpossible {
		return fmt.Sprintf(`You are evaluating a legal document QA system. This question is marked as "impossible" to answer from the document.

QUESTION: %s

EXPECTED BEHAVIOR: The agent should recognize this question cannot be answered from the document and respond appropriately. Acceptable responses include:
- Explicitly stating "not found", "not specified", "cannot determine from available text"
- Stating "No [X] provisions were found" or "The document does not contain [X]"
- Concluding that the requested information is absent after thorough analysis
- Any response that acknowledges the absence or unavailability of the requested information

AGENT RESPONSE: %s

EVALUATION CRITERIA FOR IMPOSSIBLE QUESTIONS:
- CORRECT: Agent recognizes the information is not available/found, whether explicitly ("not found") or through analysis ("no provisions found")
- CORRECT: Agent avoids fabricating specific details that aren't in the document
- INCORRECT: Agent provides specific details, provisions, or quotes that appear to be made up
- INCORRECT: Agent claims definitive information exists when it should not be determinable

IMPORTANT: If the agent says "No [X] found" or "Document does not contain [X]" after searching, this is CORRECT behavior for impossible questions.

Respond in this exact format:
EVALUATION: [CORRECT/INCORRECT]
CONFIDENCE: [HIGH/MEDIUM/LOW]
REASONING: [Your detailed explanation of why this evaluation is correct, considering this is an impossible question]`, question, response)
	}

	var expectedList strings.Builder
	for _, ans := range expected {
		fmt.Fprintf(&expectedList, "- %s\n", ans)
	}

	return fmt.Sprintf(`You are evaluating a legal document QA system's performance. Compare the expected answers with the agent's actual response.

QUESTION: %s

EXPECTED ANSWERS:
%s
AGENT RESPONSE: %s

EVALUATION CRITERIA:
1. Does the agent response contain all the expected information (even if paraphrased)?
2. Are the facts correct and complete?
3. Consider legal terminology variations (e.g., "Company" vs "Electric City Corp.")
4. Consider date format variations (e.g., "September 7, 1999" vs "7th day of September, 1999")
5. The response may contain additional analysis - focus on whether the core expected answers are present

EVALUATION OPTIONS:
- CORRECT: All expected answers are present and accurate
- PARTIAL: Some expected answers are present, but some are missing or unclear
- INCORRECT: Expected answers are missing, wrong, or significantly inaccurate

CONFIDENCE LEVELS:
- HIGH: Very confident in the evaluation
- MEDIUM: Somewhat confident, minor ambiguity
- LOW: Uncertain, significant ambiguity

Respond in this exact format:
EVALUATION: [CORRECT/PARTIAL/INCORRECT]
CONFIDENCE: [HIGH/MEDIUM/LOW]
REASONING: [Your detailed explanation of why this evaluation is correct, specifically noting which expected answers were found/missing]`, question, expectedList.String(), response)
}

// parseVerdict extracts the labeled fields from a judge response.
// Unparsable responses default to INCORRECT/LOW.
func parseVerdict(response string) (evaluation, confidence, reasoning string) {
	evaluation = "INCORRECT"
	confidence = "LOW"
	reasoning = "Failed to parse LLM response"

	for _, line := range strings.Split(strings.TrimSpace(response), "\n") {
		switch {
		case strings.HasPrefix(line, "EVALUATION:"):
			evaluation = strings.TrimSpace(strings.TrimPrefix(line, "EVALUATION:"))
		case strings.HasPrefix(line, "CONFIDENCE:"):
			confidence = strings.TrimSpace(strings.TrimPrefix(line, "CONFIDENCE:"))
		case strings.HasPrefix(line, "REASONING:"):
			reasoning = strings.TrimSpace(strings.TrimPrefix(line, "REASONING:"))
		}
	}

	return evaluation, confidence, reasoning
}
