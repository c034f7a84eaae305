package builtin

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docent/internal/contract"
)

func TestListContracts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.txt", "a.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x\n"), 0644); err != nil {
			t.Fatalf("Failed to write contract: %v", err)
		}
	}

	result, err := NewListContractsTool(contract.NewReader(dir)).Execute(context.Background(), map[string]string{})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("Expected success, got error: %s", result.Error)
	}

	if !strings.Contains(result.Output, "Found 2 contract files") {
		t.Errorf("Unexpected output: %s", result.Output)
	}
	if strings.Index(result.Output, "a.txt") > strings.Index(result.Output, "b.txt") {
		t.Errorf("Expected sorted listing, got:\n%s", result.Output)
	}
}

func TestListContracts_MissingDir(t *testing.T) {
	result, err := NewListContractsTool(contract.NewReader("/nonexistent/contracts")).Execute(context.Background(), map[string]string{})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("Missing dir should be an empty success, got error: %s", result.Error)
	}
	if !strings.Contains(result.Output, "No contract files found") {
		t.Errorf("Unexpected output: %s", result.Output)
	}
}
