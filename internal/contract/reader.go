// Package contract reads contract documents with line-number support
// for precise citation.
package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// FileInfo holds contract file metadata
type FileInfo struct {
	TotalLines int     `json:"total_lines"`
	SizeBytes  int64   `json:"size_bytes"`
	SizeMB     float64 `json:"size_mb"`
	Name       string  `json:"name"`
	Path       string  `json:"path"`
}

// SearchMatch is a single line match with surrounding context
type SearchMatch struct {
	MatchLine    int    `json:"match_line"`
	MatchText    string `json:"match_text"`
	ContextStart int    `json:"context_start"`
	ContextEnd   int    `json:"context_end"`
	Context      string `json:"context"`
}

// Reader reads contracts from a base directory. Paths passed to its
// methods may be absolute or relative to that directory.
type Reader struct {
	dir string

	mu    sync.Mutex
	cache map[string]cachedInfo
}

type cachedInfo struct {
	info  FileInfo
	mtime time.Time
}

// NewReader creates a reader rooted at dir
func NewReader(dir string) *Reader {
	return &Reader{
		dir:   dir,
		cache: make(map[string]cachedInfo),
	}
}

// Dir returns the contracts directory
func (r *Reader) Dir() string {
	return r.dir
}

// Read reads a file with 1-based line numbers in "N->content" format.
// A limit of 0 reads all remaining lines.
func (r *Reader) Read(filePath string, offset, limit int) (string, error) {
	if offset < 1 {
		return "", fmt.Errorf("offset must be 1 or greater")
	}
	if limit < 0 {
		return "", fmt.Errorf("limit must be 1 or greater")
	}

	lines, err := r.readLines(filePath)
	if err != nil {
		return "", err
	}

	var out []string
	for i := offset; i <= len(lines); i++ {
		out = append(out, fmt.Sprintf("%d->%s", i, strings.TrimRight(lines[i-1], " \t\r")))
		if limit > 0 && len(out) >= limit {
			break
		}
	}

	return strings.Join(out, "\n"), nil
}

// ReadSection reads lines start through end, both 1-based inclusive
func (r *Reader) ReadSection(filePath string, start, end int) (string, error) {
	if start < 1 || end < 1 {
		return "", fmt.Errorf("start and end line numbers must be 1 or greater")
	}
	if start > end {
		return "", fmt.Errorf("start line must be less than or equal to end line")
	}
	return r.Read(filePath, start, end-start+1)
}

// Info returns file metadata, cached by modification time
func (r *Reader) Info(filePath string) (*FileInfo, error) {
	fullPath := r.Resolve(filePath)

	stat, err := os.Stat(fullPath)
	if err != nil {
		return nil, fmt.Errorf("contract file not found: %s", filePath)
	}

	r.mu.Lock()
	if cached, ok := r.cache[fullPath]; ok && cached.mtime.Equal(stat.ModTime()) {
		info := cached.info
		r.mu.Unlock()
		return &info, nil
	}
	r.mu.Unlock()

	lines, err := r.readLines(filePath)
	if err != nil {
		return nil, err
	}

	info := FileInfo{
		TotalLines: len(lines),
		SizeBytes:  stat.Size(),
		SizeMB:     float64(stat.Size()) / (1024 * 1024),
		Name:       filepath.Base(fullPath),
		Path:       fullPath,
	}

	r.mu.Lock()
	r.cache[fullPath] = cachedInfo{info: info, mtime: stat.ModTime()}
	r.mu.Unlock()

	return &info, nil
}

// List returns contract file names matching the glob pattern, sorted.
// A missing contracts directory yields an empty list, not an error.
func (r *Reader) List(pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*.txt"
	}

	if _, err := os.Stat(r.dir); err != nil {
		return []string{}, nil
	}

	matches, err := doublestar.Glob(os.DirFS(r.dir), pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}
	sort.Strings(names)
	return names, nil
}

// Search finds lines containing pattern (case-insensitive) with
// context lines before and after each match.
func (r *Reader) Search(filePath, pattern string, contextLines int) ([]SearchMatch, error) {
	lines, err := r.readLines(filePath)
	if err != nil {
		return nil, err
	}

	patternLower := strings.ToLower(pattern)
	var matches []SearchMatch

	for i, line := range lines {
		lineNum := i + 1
		if !strings.Contains(strings.ToLower(line), patternLower) {
			continue
		}

		startCtx := lineNum - contextLines
		if startCtx < 1 {
			startCtx = 1
		}
		endCtx := lineNum + contextLines
		if endCtx > len(lines) {
			endCtx = len(lines)
		}

		var ctx []string
		for j := startCtx; j <= endCtx; j++ {
			ctx = append(ctx, fmt.Sprintf("%d->%s", j, strings.TrimRight(lines[j-1], " \t\r")))
		}

		matches = append(matches, SearchMatch{
			MatchLine:    lineNum,
			MatchText:    strings.TrimSpace(line),
			ContextStart: startCtx,
			ContextEnd:   endCtx,
			Context:      strings.Join(ctx, "\n"),
		})
	}

	return matches, nil
}

// Resolve maps a contract path to an absolute or dir-relative location.
// Existing absolute paths win; everything else resolves under the
// contracts directory.
func (r *Reader) Resolve(filePath string) string {
	if filepath.IsAbs(filePath) {
		if _, err := os.Stat(filePath); err == nil {
			return filePath
		}
	}
	return filepath.Join(r.dir, filePath)
}

func (r *Reader) readLines(filePath string) ([]string, error) {
	fullPath := r.Resolve(filePath)

	data, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("contract file not found: %s", filePath)
		}
		return nil, fmt.Errorf("error reading file %s: %w", filePath, err)
	}

	content := strings.TrimSuffix(string(data), "\n")
	if content == "" {
		return nil, nil
	}
	return strings.Split(content, "\n"), nil
}
