package finance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func fakeOCRServer(t *testing.T, pages ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/ocr" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req ocrRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if req.Model != "mistral-ocr-latest" {
			http.Error(w, "unknown model", http.StatusBadRequest)
			return
		}
		if !strings.HasPrefix(req.Document.DocumentURL, "data:application/pdf;base64,") {
			http.Error(w, "expected data URL", http.StatusBadRequest)
			return
		}

		resp := ocrResponse{}
		for _, p := range pages {
			resp.Pages = append(resp.Pages, struct {
				Markdown string `json:"markdown"`
			}{Markdown: p})
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func writePDF(t *testing.T, d *Downloader, docName string) string {
	t.Helper()
	if err := os.MkdirAll(d.cacheDir, 0755); err != nil {
		t.Fatalf("Failed to create cache dir: %v", err)
	}
	path := d.PDFPath(docName)
	if err := os.WriteFile(path, []byte("%PDF-1.4 fake"), 0644); err != nil {
		t.Fatalf("Failed to write PDF: %v", err)
	}
	return path
}

func TestConvertFile(t *testing.T) {
	server := fakeOCRServer(t, "# Page One", "Page Two body")
	defer server.Close()

	d := newTestDownloader(t)
	pdfPath := writePDF(t, d, "3M_2018_10K")

	c := NewConverter("test-key", d, quietLogger())
	c.SetBaseURL(server.URL)

	markdown, err := c.ConvertFile(context.Background(), pdfPath)
	if err != nil {
		t.Fatalf("ConvertFile failed: %v", err)
	}

	if markdown != "# Page One\n\nPage Two body\n\n" {
		t.Errorf("Unexpected markdown: %q", markdown)
	}
}

func TestConvert_CachesMarkdown(t *testing.T) {
	server := fakeOCRServer(t, "converted")
	defer server.Close()

	d := newTestDownloader(t)
	writePDF(t, d, "3M_2018_10K")

	c := NewConverter("test-key", d, quietLogger())
	c.SetBaseURL(server.URL)

	path, err := c.Convert(context.Background(), "3M_2018_10K", false)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if filepath.Base(path) != "3M_2018_10K.md" {
		t.Errorf("Unexpected markdown path: %s", path)
	}
	if !c.IsCached("3M_2018_10K") {
		t.Error("Expected markdown to be cached")
	}

	// Cached result survives a dead OCR endpoint
	server.Close()
	if _, err := c.Convert(context.Background(), "3M_2018_10K", false); err != nil {
		t.Errorf("Expected cache hit, got error: %v", err)
	}
}

func TestConvertFile_MissingAPIKey(t *testing.T) {
	d := newTestDownloader(t)
	pdfPath := writePDF(t, d, "3M_2018_10K")

	c := NewConverter("", d, quietLogger())
	_, err := c.ConvertFile(context.Background(), pdfPath)
	if err == nil {
		t.Fatal("Expected error without API key")
	}
	if !strings.Contains(err.Error(), "MISTRAL_API_KEY") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestConvertFile_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	d := newTestDownloader(t)
	pdfPath := writePDF(t, d, "3M_2018_10K")

	c := NewConverter("test-key", d, quietLogger())
	c.SetBaseURL(server.URL)

	_, err := c.ConvertFile(context.Background(), pdfPath)
	if err == nil {
		t.Fatal("Expected error for server failure")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("Expected status in error, got: %v", err)
	}
}
