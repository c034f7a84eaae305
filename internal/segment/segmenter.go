// Package segment produces a table of contents for a document by
// asking an LLM to identify its major sections.
package segment

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"docent/internal/llm"
	"docent/internal/logger"
)

// Section is a contiguous span of document lines, 0-based inclusive.
type Section struct {
	Title      string `json:"title"`
	StartIndex int    `json:"start_index"`
	EndIndex   int    `json:"end_index"`
}

// StructuredDocument is the segmentation result
type StructuredDocument struct {
	Sections []Section `json:"sections"`
}

type cacheEntry struct {
	FileHash string    `json:"file_hash"`
	Sections []Section `json:"sections"`
}

// sectionSchema is the JSON schema the model output must conform to
var sectionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"sections": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":       map[string]any{"type": "string"},
					"start_index": map[string]any{"type": "integer"},
					"end_index":   map[string]any{"type": "integer"},
				},
				"required":             []any{"title", "start_index", "end_index"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []any{"sections"},
	"additionalProperties": false,
}

// Segmenter segments documents into titled sections with a per-file
// cache keyed by content hash.
type Segmenter struct {
	client   llm.Client
	log      *logger.Logger
	useCache bool
}

// New creates a segmenter backed by the given LLM client
func New(client llm.Client, log *logger.Logger) *Segmenter {
	if log == nil {
		log = logger.NewLogger(nil, logger.LevelError)
	}
	return &Segmenter{client: client, log: log, useCache: true}
}

// SetUseCache toggles the segmentation cache
func (s *Segmenter) SetUseCache(enabled bool) {
	s.useCache = enabled
}

// Segment reads a file and returns its section structure. Model
// failures fall back to a single section covering the whole document,
// never an error, so navigation always has something to work with.
func (s *Segmenter) Segment(ctx context.Context, filePath string) (*StructuredDocument, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	document := string(data)
	hash := fmt.Sprintf("%x", md5.Sum(data))

	cachePath := cacheFile(filePath)
	if s.useCache {
		if doc := loadCache(cachePath, hash); doc != nil {
			s.log.Info("Using cached segmentation for %s", filePath)
			return doc, nil
		}
	}

	s.log.Info("Segmenting document: %s", filePath)

	lines := strings.Split(document, "\n")
	doc := s.requestSegmentation(ctx, numberedDocument(lines))
	if doc == nil {
		// Fallback: the whole document as one section
		doc = &StructuredDocument{Sections: []Section{
			{Title: "Full Document", StartIndex: 0, EndIndex: len(lines) - 1},
		}}
		return doc, nil
	}

	doc.Sections = clampSections(doc.Sections, len(lines))
	if len(doc.Sections) == 0 {
		doc.Sections = []Section{{Title: "Full Document", StartIndex: 0, EndIndex: len(lines) - 1}}
	}

	if s.useCache {
		saveCache(cachePath, hash, doc.Sections)
	}

	s.log.Info("Document segmented into %d sections", len(doc.Sections))
	return doc, nil
}

// requestSegmentation asks the model for the section structure.
// Returns nil on any failure.
func (s *Segmenter) requestSegmentation(ctx context.Context, numbered string) *StructuredDocument {
	req := &llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "You are a legal document expert. Identify main sections in contracts."},
			{Role: llm.RoleUser, Content: fmt.Sprintf(`Identify the main sections in this legal contract. Focus only on major divisions like RECITALS and numbered sections (1., 2., 3., etc.).

Document:
%s`, numbered)},
		},
		MaxTokens: 8000,
		ResponseFormat: &llm.ResponseFormat{
			Name:   "structured_document",
			Schema: sectionSchema,
			Strict: true,
		},
	}

	resp, err := s.client.Chat(ctx, req)
	if err != nil {
		s.log.Warn("Segmentation request failed: %v", err)
		return nil
	}

	var doc StructuredDocument
	if err := json.Unmarshal([]byte(resp.Content), &doc); err != nil {
		s.log.Warn("Segmentation response was not valid JSON: %v", err)
		return nil
	}
	return &doc
}

// numberedDocument renders lines with 0-based [i] prefixes so the
// model can cite positions.
func numberedDocument(lines []string) string {
	var sb strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&sb, "[%d] %s\n", i, line)
	}
	return sb.String()
}

// clampSections drops sections with impossible ranges and clamps the
// rest to the document bounds.
func clampSections(sections []Section, lineCount int) []Section {
	var out []Section
	for _, sec := range sections {
		if sec.StartIndex < 0 {
			sec.StartIndex = 0
		}
		if sec.EndIndex >= lineCount {
			sec.EndIndex = lineCount - 1
		}
		if sec.StartIndex > sec.EndIndex {
			continue
		}
		out = append(out, sec)
	}
	return out
}

// cacheFile places the cache next to the working directory, named
// after the document.
func cacheFile(filePath string) string {
	return fmt.Sprintf(".%s.segments.json", filepath.Base(filePath))
}

func loadCache(cachePath, hash string) *StructuredDocument {
	data, err := os.ReadFile(cachePath)
	if err != nil {
		return nil
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil
	}
	if entry.FileHash != hash {
		return nil
	}
	return &StructuredDocument{Sections: entry.Sections}
}

func saveCache(cachePath, hash string, sections []Section) {
	entry := cacheEntry{FileHash: hash, Sections: sections}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return
	}
	os.WriteFile(cachePath, data, 0644)
}
