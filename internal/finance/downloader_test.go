package finance

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docent/internal/logger"
)

const sampleMetadata = `{"doc_name": "3M_2018_10K", "company": "3M", "doc_type": "10k", "doc_period": 2018}
{"doc_name": "3M_2019_10Q", "company": "3M", "doc_type": "10q", "doc_period": 2019}
{"doc_name": "APPLE_2020_10K", "company": "APPLE", "doc_type": "10k", "doc_period": 2020}
`

func quietLogger() *logger.Logger {
	return logger.NewLogger(io.Discard, logger.LevelError)
}

func newTestDownloader(t *testing.T) *Downloader {
	t.Helper()
	dir := t.TempDir()

	metaPath := filepath.Join(dir, "documents.jsonl")
	if err := os.WriteFile(metaPath, []byte(sampleMetadata), 0644); err != nil {
		t.Fatalf("Failed to write metadata: %v", err)
	}

	d := NewDownloader(filepath.Join(dir, ".finance"), quietLogger())
	if err := d.LoadMetadata(metaPath); err != nil {
		t.Fatalf("LoadMetadata failed: %v", err)
	}
	return d
}

func TestLoadMetadata(t *testing.T) {
	d := newTestDownloader(t)

	docs := d.Documents()
	if len(docs) != 3 {
		t.Fatalf("Expected 3 documents, got %d", len(docs))
	}
	if docs["3M_2018_10K"].Company != "3M" {
		t.Errorf("Unexpected metadata: %+v", docs["3M_2018_10K"])
	}
}

func TestDownload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/3M_2018_10K.pdf" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("%PDF-1.4 fake content"))
	}))
	defer server.Close()

	d := newTestDownloader(t)
	d.SetBaseURL(server.URL)

	path, err := d.Download(context.Background(), "3M_2018_10K", false)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read downloaded PDF: %v", err)
	}
	if !strings.HasPrefix(string(data), "%PDF") {
		t.Errorf("Unexpected content: %q", data)
	}
	if !d.IsCached("3M_2018_10K") {
		t.Error("Expected document to be cached")
	}
}

func TestDownload_ServedFromCache(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte("%PDF-1.4"))
	}))
	defer server.Close()

	d := newTestDownloader(t)
	d.SetBaseURL(server.URL)

	if _, err := d.Download(context.Background(), "3M_2018_10K", false); err != nil {
		t.Fatalf("First download failed: %v", err)
	}
	if _, err := d.Download(context.Background(), "3M_2018_10K", false); err != nil {
		t.Fatalf("Second download failed: %v", err)
	}

	if requests != 1 {
		t.Errorf("Expected cache to absorb second download, got %d requests", requests)
	}
}

func TestDownload_UnknownDocument(t *testing.T) {
	d := newTestDownloader(t)

	_, err := d.Download(context.Background(), "UNKNOWN_DOC", false)
	if err == nil {
		t.Fatal("Expected error for unknown document")
	}
	if !strings.Contains(err.Error(), "no metadata found") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestDownload_HTTPErrorLeavesNoPartial(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	d := newTestDownloader(t)
	d.SetBaseURL(server.URL)

	_, err := d.Download(context.Background(), "3M_2018_10K", false)
	if err == nil {
		t.Fatal("Expected error for 404 response")
	}
	if d.IsCached("3M_2018_10K") {
		t.Error("Failed download must not leave a cached file")
	}
}

func TestSearch(t *testing.T) {
	d := newTestDownloader(t)

	if got := d.Search("3m", "", 0); len(got) != 2 {
		t.Errorf("Expected 2 matches for company filter, got %d", len(got))
	}
	if got := d.Search("", "10k", 0); len(got) != 2 {
		t.Errorf("Expected 2 matches for type filter, got %d", len(got))
	}
	if got := d.Search("3M", "10q", 2019); len(got) != 1 {
		t.Errorf("Expected 1 match for combined filter, got %d", len(got))
	}
	if got := d.Search("", "", 1990); len(got) != 0 {
		t.Errorf("Expected no matches for year 1990, got %d", len(got))
	}
}
