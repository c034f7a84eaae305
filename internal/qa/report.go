package qa

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Report renders an evaluation as a plain-text report
func Report(results *OverallResults) string {
	var sb strings.Builder

	line := func(format string, args ...any) {
		fmt.Fprintf(&sb, format+"\n", args...)
	}

	line(strings.Repeat("=", 80))
	line("LLM-BASED QA EVALUATION REPORT")
	line(strings.Repeat("=", 80))
	line("Generated: %s", time.Now().Format("2006-01-02 15:04:05"))
	line("Evaluation Model: %s", results.EvaluationModel)
	line("")

	line("OVERALL PERFORMANCE:")
	line("  Total Questions: %d", results.TotalQuestions)
	line("  Correct: %d", results.Correct)
	line("  Partial: %d", results.Partial)
	line("  Incorrect: %d", results.Incorrect)
	line("  Accuracy (with partial): %.1f%%", results.Accuracy*100)
	line("  Strict Accuracy: %.1f%%", results.StrictAccuracy*100)
	line("")

	line("CONFIDENCE DISTRIBUTION:")
	line("  High Confidence: %d", results.HighConfidence)
	line("  Medium Confidence: %d", results.MediumConfidence)
	line("  Low Confidence: %d", results.LowConfidence)
	line("")

	writeGroup := func(header string, sep int, include func(EvaluationResult) bool, withConfidence bool) {
		var group []EvaluationResult
		for _, r := range results.DetailedResults {
			if include(r) {
				group = append(group, r)
			}
		}
		if len(group) == 0 {
			return
		}

		line("%s", header)
		line(strings.Repeat("-", sep))
		for _, r := range group {
			line("Q%d: %s", r.QuestionNum, r.QuestionID)
			line("  Expected: %v", r.ExpectedAnswers)
			if withConfidence {
				line("  Confidence: %s", r.Confidence)
			}
			line("  Reasoning: %s", r.Explanation)
			line("")
		}
	}

	writeGroup("INCORRECT ANSWERS:", 50, func(r EvaluationResult) bool { return r.Evaluation == "INCORRECT" }, true)
	writeGroup("PARTIAL ANSWERS:", 50, func(r EvaluationResult) bool { return r.Evaluation == "PARTIAL" }, false)

	var lowConf []EvaluationResult
	for _, r := range results.DetailedResults {
		if r.Confidence == "LOW" {
			lowConf = append(lowConf, r)
		}
	}
	if len(lowConf) > 0 {
		line("LOW CONFIDENCE EVALUATIONS (REVIEW RECOMMENDED):")
		line(strings.Repeat("-", 60))
		for _, r := range lowConf {
			line("Q%d: %s", r.QuestionNum, r.QuestionID)
			line("  Evaluation: %s", r.Evaluation)
			line("  Reasoning: %s", r.Explanation)
			line("")
		}
	}

	return sb.String()
}

// SaveReport writes the text report to a file
func SaveReport(results *OverallResults, path string) error {
	return os.WriteFile(path, []byte(Report(results)), 0644)
}

// SaveDetailed writes the full evaluation as JSON
func SaveDetailed(results *OverallResults, path string) error {
	out := map[string]any{
		"metadata": map[string]any{
			"timestamp":        time.Now().Format(time.RFC3339),
			"evaluation_model": results.EvaluationModel,
			"total_questions":  results.TotalQuestions,
			"accuracy":         results.Accuracy,
			"strict_accuracy":  results.StrictAccuracy,
		},
		"summary": map[string]any{
			"correct":           results.Correct,
			"partial":           results.Partial,
			"incorrect":         results.Incorrect,
			"high_confidence":   results.HighConfidence,
			"medium_confidence": results.MediumConfidence,
			"low_confidence":    results.LowConfidence,
		},
		"detailed_results": results.DetailedResults,
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode evaluation: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
