package agent

import (
	"context"
	"testing"

	"coursechat/models"

	"github.com/anthropics/anthropic-sdk-go"
)

type stubTool struct {
	name    string
	result  string
	panics  bool
	sources []models.Source
}

func (t *stubTool) Name() string        { return t.name }
func (t *stubTool) Description() string { return "a stub tool" }
func (t *stubTool) InputSchema() anthropic.ToolInputSchemaParam {
	return anthropic.ToolInputSchemaParam{}
}

func (t *stubTool) Execute(ctx context.Context, args map[string]any) string {
	if t.panics {
		panic("stub exploded")
	}
	return t.result
}

func (t *stubTool) LastSources() []models.Source { return t.sources }
func (t *stubTool) ResetSources()                { t.sources = nil }

func TestRegisterRejectsUnnamedTool(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(&stubTool{name: ""}); err == nil {
		t.Error("expected error registering a tool without a name")
	}
}

func TestRegisterRejectsDuplicateName(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(&stubTool{name: "mock_tool"}); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	if err := registry.Register(&stubTool{name: "mock_tool"}); err == nil {
		t.Error("expected error registering a duplicate tool name")
	}
}

func TestDefinitionsInsertionOrder(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&stubTool{name: "first_tool"})
	registry.Register(&stubTool{name: "second_tool"})

	definitions := registry.Definitions()
	if len(definitions) != 2 {
		t.Fatalf("definitions = %d, expected 2", len(definitions))
	}
	if definitions[0].OfTool.Name != "first_tool" || definitions[1].OfTool.Name != "second_tool" {
		t.Errorf("definition order = %s, %s", definitions[0].OfTool.Name, definitions[1].OfTool.Name)
	}
}

func TestExecuteUnknownTool(t *testing.T) {
	registry := NewRegistry()

	result := registry.Execute(context.Background(), "nonexistent_tool", nil)
	if result != "Tool 'nonexistent_tool' not found" {
		t.Errorf("result = %q", result)
	}
}

func TestExecuteReturnsToolResult(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&stubTool{name: "mock_tool", result: "mock result"})

	result := registry.Execute(context.Background(), "mock_tool", map[string]any{"param1": "value1"})
	if result != "mock result" {
		t.Errorf("result = %q", result)
	}
}

func TestExecuteRecoversPanic(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&stubTool{name: "bad_tool", panics: true})

	result := registry.Execute(context.Background(), "bad_tool", nil)
	if result != "Tool 'bad_tool' failed: stub exploded" {
		t.Errorf("result = %q", result)
	}
}

func TestLastSourcesReturnsFirstNonEmpty(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&stubTool{name: "quiet_tool"})
	registry.Register(&stubTool{name: "search_tool", sources: []models.Source{
		{Text: "test source", Link: "http://test.com"},
	}})

	sources := registry.LastSources()
	if len(sources) != 1 {
		t.Fatalf("sources = %d, expected 1", len(sources))
	}
	if sources[0].Text != "test source" || sources[0].Link != "http://test.com" {
		t.Errorf("source = %+v", sources[0])
	}
}

func TestLastSourcesEmpty(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&stubTool{name: "quiet_tool"})

	if sources := registry.LastSources(); len(sources) != 0 {
		t.Errorf("sources = %d, expected 0", len(sources))
	}
}

func TestResetSourcesClearsAllProviders(t *testing.T) {
	registry := NewRegistry()
	tool := &stubTool{name: "search_tool", sources: []models.Source{{Text: "s"}}}
	registry.Register(tool)

	if len(registry.LastSources()) != 1 {
		t.Fatal("expected one source before reset")
	}

	registry.ResetSources()

	if len(registry.LastSources()) != 0 {
		t.Error("expected no sources after reset")
	}
	if tool.sources != nil {
		t.Error("expected the tool's own source list to be cleared")
	}
}
