package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"docent/internal/tool"
)

// TextMatch is a single occurrence of a search term with its byte
// offset, matching the highlight format of the QA dataset.
type TextMatch struct {
	Text        string `json:"text"`
	AnswerStart int    `json:"answer_start"`
	Context     string `json:"context"`
}

type searchOutput struct {
	File         string      `json:"file"`
	TotalMatches int         `json:"total_matches"`
	Answers      []TextMatch `json:"answers"`
}

// FindTextTool finds exact text spans in a file for highlighting.
type FindTextTool struct{}

// NewFindTextTool creates a find_text tool
func NewFindTextTool() *FindTextTool {
	return &FindTextTool{}
}

func (t *FindTextTool) Name() string {
	return "find_text"
}

func (t *FindTextTool) Description() string {
	return `Tool: find_text
Description: Find exact text spans in a file with their byte positions, for precise citation
Usage:
<tool_call>
<name>find_text</name>
<params>
<file_path>Sample/contract.txt</file_path>
<search_terms>Company,Distributor,Electric City Corp.</search_terms>
</params>
</tool_call>

Returns all occurrences of each comma-separated term with positions and surrounding context.`
}

func (t *FindTextTool) Execute(ctx context.Context, params map[string]string) (*tool.Result, error) {
	filePath := params["file_path"]
	if filePath == "" {
		return &tool.Result{Success: false, Error: "file_path parameter is required"}, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return &tool.Result{Success: false, Error: fmt.Sprintf("Error reading file: %v", err)}, nil
	}
	content := string(data)

	var terms []string
	for _, raw := range strings.Split(params["search_terms"], ",") {
		if term := strings.TrimSpace(raw); term != "" {
			terms = append(terms, term)
		}
	}

	var matches []TextMatch
	for _, term := range terms {
		positions := findAll(content, term)
		if len(positions) == 0 {
			// Fall back to case-insensitive only when the exact
			// term has no hits
			positions = findAllFold(content, term)
		}

		for _, pos := range positions {
			matches = append(matches, TextMatch{
				Text:        term,
				AnswerStart: pos,
				Context:     contextWindow(content, pos, len(term)),
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].AnswerStart < matches[j].AnswerStart
	})

	if matches == nil {
		matches = []TextMatch{}
	}

	out, err := json.MarshalIndent(searchOutput{
		File:         filePath,
		TotalMatches: len(matches),
		Answers:      matches,
	}, "", "  ")
	if err != nil {
		return &tool.Result{Success: false, Error: fmt.Sprintf("Error encoding results: %v", err)}, nil
	}

	return &tool.Result{
		Success: true,
		Output:  string(out),
		Data:    map[string]any{"total_matches": len(matches)},
	}, nil
}

// findAll returns every occurrence of term in content, allowing
// overlapping matches.
func findAll(content, term string) []int {
	var positions []int
	start := 0
	for {
		idx := strings.Index(content[start:], term)
		if idx == -1 {
			break
		}
		positions = append(positions, start+idx)
		start += idx + 1
	}
	return positions
}

// findAllFold is the case-insensitive variant of findAll. Matching runs
// against the original content so offsets stay valid for non-ASCII text.
func findAllFold(content, term string) []int {
	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(term))
	var positions []int
	start := 0
	for start <= len(content) {
		loc := re.FindStringIndex(content[start:])
		if loc == nil {
			break
		}
		positions = append(positions, start+loc[0])
		start += loc[0] + 1
	}
	return positions
}

// contextWindow extracts ~50 characters around a match, with newlines
// flattened to spaces.
func contextWindow(content string, pos, termLen int) string {
	lo := pos - 50
	if lo < 0 {
		lo = 0
	}
	hi := pos + termLen + 50
	if hi > len(content) {
		hi = len(content)
	}
	return strings.ReplaceAll(content[lo:hi], "\n", " ")
}
