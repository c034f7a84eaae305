// Package finance fetches FinanceBench filings and converts them to
// markdown for document QA.
package finance

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"docent/internal/logger"
)

// DefaultBaseURL serves the FinanceBench PDF corpus
const DefaultBaseURL = "https://raw.githubusercontent.com/patronus-ai/financebench/main/pdfs"

// DocInfo is one document's metadata from the JSONL index
type DocInfo struct {
	DocName   string `json:"doc_name"`
	Company   string `json:"company"`
	DocType   string `json:"doc_type"`
	DocPeriod int    `json:"doc_period"`
	DocLink   string `json:"doc_link,omitempty"`
}

// Downloader fetches filing PDFs on demand and caches them locally.
type Downloader struct {
	cacheDir string
	baseURL  string
	client   *http.Client
	log      *logger.Logger
	metadata map[string]DocInfo
}

// NewDownloader creates a downloader caching into cacheDir
func NewDownloader(cacheDir string, log *logger.Logger) *Downloader {
	if log == nil {
		log = logger.NewLogger(nil, logger.LevelError)
	}
	return &Downloader{
		cacheDir: cacheDir,
		baseURL:  DefaultBaseURL,
		client:   &http.Client{Timeout: 30 * time.Second},
		log:      log,
		metadata: make(map[string]DocInfo),
	}
}

// SetBaseURL overrides the download source
func (d *Downloader) SetBaseURL(url string) {
	d.baseURL = strings.TrimSuffix(url, "/")
}

// LoadMetadata reads the JSONL document index. Each line is one
// document record keyed by doc_name.
func (d *Downloader) LoadMetadata(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open metadata file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var doc DocInfo
		if err := json.Unmarshal([]byte(line), &doc); err != nil {
			return fmt.Errorf("invalid metadata at line %d: %w", lineNum, err)
		}
		d.metadata[doc.DocName] = doc
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed reading metadata: %w", err)
	}

	d.log.Info("Loaded metadata for %d documents", len(d.metadata))
	return nil
}

// PDFPath is where the named document is cached
func (d *Downloader) PDFPath(docName string) string {
	return filepath.Join(d.cacheDir, docName+".pdf")
}

// IsCached reports whether the PDF is already downloaded and non-empty
func (d *Downloader) IsCached(docName string) bool {
	stat, err := os.Stat(d.PDFPath(docName))
	return err == nil && stat.Size() > 0
}

// URL returns the remote location for a document
func (d *Downloader) URL(docName string) string {
	return fmt.Sprintf("%s/%s.pdf", d.baseURL, docName)
}

// Download fetches a PDF, serving from cache when present. Partial
// files from failed downloads are removed.
func (d *Downloader) Download(ctx context.Context, docName string, force bool) (string, error) {
	pdfPath := d.PDFPath(docName)

	if !force && d.IsCached(docName) {
		d.log.Debug("PDF already cached: %s", pdfPath)
		return pdfPath, nil
	}

	info, ok := d.metadata[docName]
	if !ok {
		return "", fmt.Errorf("no metadata found for document: %s", docName)
	}

	if err := os.MkdirAll(d.cacheDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	url := d.URL(docName)
	d.log.Info("Downloading %s (%s %s %d) from %s", docName, info.Company, strings.ToUpper(info.DocType), info.DocPeriod, url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed: unexpected status %s", resp.Status)
	}

	f, err := os.Create(pdfPath)
	if err != nil {
		return "", fmt.Errorf("failed to create cache file: %w", err)
	}

	written, err := io.Copy(f, resp.Body)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(pdfPath)
		return "", fmt.Errorf("download failed: %w", err)
	}

	d.log.Info("Downloaded %s: %d bytes", docName, written)
	return pdfPath, nil
}

// Documents returns all known document metadata
func (d *Downloader) Documents() map[string]DocInfo {
	out := make(map[string]DocInfo, len(d.metadata))
	for k, v := range d.metadata {
		out[k] = v
	}
	return out
}

// Search filters documents by company substring, doc type, and year.
// Zero values match everything.
func (d *Downloader) Search(company, docType string, year int) map[string]DocInfo {
	results := make(map[string]DocInfo)
	for name, info := range d.metadata {
		if company != "" && !strings.Contains(strings.ToUpper(info.Company), strings.ToUpper(company)) {
			continue
		}
		if docType != "" && info.DocType != strings.ToLower(docType) {
			continue
		}
		if year != 0 && info.DocPeriod != year {
			continue
		}
		results[name] = info
	}
	return results
}
