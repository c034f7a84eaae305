package tool

import (
	"context"
	"strings"
	"testing"
)

type mockTool struct {
	name string
	desc string
}

func (t *mockTool) Name() string        { return t.name }
func (t *mockTool) Description() string { return t.desc }

func (t *mockTool) Execute(ctx context.Context, params map[string]string) (*Result, error) {
	return &Result{Success: true, Output: "mock output"}, nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	registry := NewRegistry()

	tool := &mockTool{name: "mock", desc: "A mock tool"}
	if err := registry.Register(tool); err != nil {
		t.Fatalf("Failed to register tool: %v", err)
	}

	got, err := registry.Get("mock")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name() != "mock" {
		t.Errorf("Expected tool name 'mock', got %s", got.Name())
	}
}

func TestRegistry_DuplicateName(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(&mockTool{name: "dup"}); err != nil {
		t.Fatalf("First register failed: %v", err)
	}

	err := registry.Register(&mockTool{name: "dup"})
	if err == nil {
		t.Fatal("Expected error registering duplicate tool name")
	}
	if !strings.Contains(err.Error(), "already registered") {
		t.Errorf("Error should mention already registered: %v", err)
	}
}

func TestRegistry_UnknownTool(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Get("missing")
	if err == nil {
		t.Fatal("Expected error for unknown tool")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("Error should mention not found: %v", err)
	}
}

func TestRegistry_ListOrder(t *testing.T) {
	registry := NewRegistry()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := registry.Register(&mockTool{name: name}); err != nil {
			t.Fatalf("Failed to register %s: %v", name, err)
		}
	}

	tools := registry.List()
	if len(tools) != 3 {
		t.Fatalf("Expected 3 tools, got %d", len(tools))
	}

	want := []string{"alpha", "mid", "zeta"}
	for i, tool := range tools {
		if tool.Name() != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], tool.Name())
		}
	}
}

func TestRegistry_Catalog(t *testing.T) {
	registry := NewRegistry()

	registry.Register(&mockTool{name: "b", desc: "Tool: b\nDescription: second"})
	registry.Register(&mockTool{name: "a", desc: "Tool: a\nDescription: first"})

	catalog := registry.Catalog()

	if !strings.Contains(catalog, "Tool: a") || !strings.Contains(catalog, "Tool: b") {
		t.Errorf("Catalog should contain both tool descriptions: %s", catalog)
	}

	// Stable order: a before b
	if strings.Index(catalog, "Tool: a") > strings.Index(catalog, "Tool: b") {
		t.Error("Catalog should list tools in name order")
	}
}
