// Package qa runs a question-answering benchmark against an agent and
// scores the results with an LLM judge.
package qa

import (
	"encoding/json"
	"fmt"
	"os"
)

// Answer is an expected answer span from the dataset
type Answer struct {
	Text        string `json:"text"`
	AnswerStart int    `json:"answer_start"`
}

// Pair is a single dataset question with its expected answers
type Pair struct {
	ID           string   `json:"id"`
	Question     string   `json:"question"`
	Answers      []Answer `json:"answers"`
	IsImpossible bool     `json:"is_impossible"`
}

// LoadDataset reads a QA dataset from a JSON file holding an array of
// question/answer pairs.
func LoadDataset(path string) ([]Pair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read QA dataset: %w", err)
	}

	var pairs []Pair
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("failed to parse QA dataset: %w", err)
	}

	return pairs, nil
}

// AnswerTexts extracts just the answer strings
func (p *Pair) AnswerTexts() []string {
	texts := make([]string, 0, len(p.Answers))
	for _, a := range p.Answers {
		texts = append(texts, a.Text)
	}
	return texts
}
