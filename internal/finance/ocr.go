package finance

import (
	"bytes"
	"context"
	"encoding/base64"
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

// DefaultOCRBaseURL is the Mistral API root
const DefaultOCRBaseURL = "https://api.mistral.ai"

const ocrModel = "mistral-ocr-latest"

type ocrRequest struct {
	Model              string      `json:"model"`
	Document           ocrDocument `json:"document"`
	IncludeImageBase64 bool        `json:"include_image_base64"`
}

type ocrDocument struct {
	Type        string `json:"type"`
	DocumentURL string `json:"document_url"`
}

type ocrResponse struct {
	Pages []struct {
		Markdown string `json:"markdown"`
	} `json:"pages"`
}

// Converter turns cached PDFs into markdown via the Mistral OCR API.
type Converter struct {
	apiKey      string
	baseURL     string
	client      *http.Client
	downloader  *Downloader
	markdownDir string
	log         *logger.Logger
}

// NewConverter creates a converter writing markdown next to the PDF
// cache.
func NewConverter(apiKey string, downloader *Downloader, log *logger.Logger) *Converter {
	if log == nil {
		log = logger.NewLogger(nil, logger.LevelError)
	}
	return &Converter{
		apiKey:      apiKey,
		baseURL:     DefaultOCRBaseURL,
		client:      &http.Client{Timeout: 5 * time.Minute},
		downloader:  downloader,
		markdownDir: filepath.Join(downloader.cacheDir, "markdown"),
		log:         log,
	}
}

// SetBaseURL overrides the OCR endpoint
func (c *Converter) SetBaseURL(url string) {
	c.baseURL = strings.TrimSuffix(url, "/")
}

// MarkdownPath is where the converted document is cached
func (c *Converter) MarkdownPath(docName string) string {
	return filepath.Join(c.markdownDir, docName+".md")
}

// IsCached reports whether markdown already exists for a document
func (c *Converter) IsCached(docName string) bool {
	stat, err := os.Stat(c.MarkdownPath(docName))
	return err == nil && stat.Size() > 0
}

// Convert downloads the named document if needed and converts it to
// markdown, caching the result.
func (c *Converter) Convert(ctx context.Context, docName string, force bool) (string, error) {
	mdPath := c.MarkdownPath(docName)

	if !force && c.IsCached(docName) {
		c.log.Debug("Markdown already cached: %s", mdPath)
		return mdPath, nil
	}

	pdfPath, err := c.downloader.Download(ctx, docName, false)
	if err != nil {
		return "", fmt.Errorf("failed to download PDF for %s: %w", docName, err)
	}

	c.log.Info("Converting %s to markdown", docName)
	markdown, err := c.ConvertFile(ctx, pdfPath)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(c.markdownDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create markdown directory: %w", err)
	}
	if err := os.WriteFile(mdPath, []byte(markdown), 0644); err != nil {
		os.Remove(mdPath)
		return "", fmt.Errorf("failed to write markdown: %w", err)
	}

	c.log.Info("Conversion completed: %d bytes", len(markdown))
	return mdPath, nil
}

// ConvertFile runs OCR on a single PDF and returns the markdown text,
// pages joined by blank lines.
func (c *Converter) ConvertFile(ctx context.Context, pdfPath string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("MISTRAL_API_KEY is required for OCR conversion")
	}

	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF: %w", err)
	}

	body, err := json.Marshal(ocrRequest{
		Model: ocrModel,
		Document: ocrDocument{
			Type:        "document_url",
			DocumentURL: "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(data),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode OCR request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/ocr", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build OCR request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("OCR request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("OCR request failed: status %s: %s", resp.Status, msg)
	}

	var parsed ocrResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode OCR response: %w", err)
	}

	var sb strings.Builder
	for _, page := range parsed.Pages {
		sb.WriteString(page.Markdown)
		sb.WriteString("\n\n")
	}
	return sb.String(), nil
}
