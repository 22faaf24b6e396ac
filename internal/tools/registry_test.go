package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/alphacopilot/social-agent/internal/llm"
)

type fakeTool struct {
	name     string
	required []string
	result   string
	err      error
	gotArgs  map[string]any
}

func (f *fakeTool) Name() string        { return f.name }
func (f *fakeTool) Description() string { return "fake " + f.name }

func (f *fakeTool) Schema() llm.ToolSchema {
	return llm.ToolSchema{
		Name:        f.name,
		Description: f.Description(),
		Parameters:  llm.ObjectParameters(map[string]llm.ParameterDef{}, f.required...),
	}
}

func (f *fakeTool) Execute(_ context.Context, args map[string]any) (string, error) {
	f.gotArgs = args
	return f.result, f.err
}

func TestRegistryExecuteDispatches(t *testing.T) {
	r := NewRegistry(nil)
	tool := &fakeTool{name: "echo", result: "ok"}
	r.Register(tool)

	got, err := r.Execute(context.Background(), "echo", map[string]any{"x": "y"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "ok" {
		t.Errorf("unexpected result %q", got)
	}
	if tool.gotArgs["x"] != "y" {
		t.Errorf("arguments not passed through: %v", tool.gotArgs)
	}
}

func TestRegistryUnknownTool(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&fakeTool{name: "alpha"})
	r.Register(&fakeTool{name: "beta"})

	_, err := r.Execute(context.Background(), "gamma", nil)
	var notFound *ToolNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ToolNotFoundError, got %v", err)
	}
	if len(notFound.Available) != 2 || notFound.Available[0] != "alpha" {
		t.Errorf("available names wrong: %v", notFound.Available)
	}
}

func TestRegistryValidatesRequiredArguments(t *testing.T) {
	r := NewRegistry(nil)
	tool := &fakeTool{name: "strict", required: []string{"content"}}
	r.Register(tool)

	_, err := r.Execute(context.Background(), "strict", map[string]any{"other": 1})
	var argErr *ArgumentError
	if !errors.As(err, &argErr) {
		t.Fatalf("expected ArgumentError, got %v", err)
	}
	if argErr.Argument != "content" {
		t.Errorf("wrong argument reported: %+v", argErr)
	}
	if tool.gotArgs != nil {
		t.Error("tool must not run when required arguments are missing")
	}

	if _, err := r.Execute(context.Background(), "strict", map[string]any{"content": "x"}); err != nil {
		t.Errorf("valid call failed: %v", err)
	}
}

func TestRegistrySchemasKeepRegistrationOrder(t *testing.T) {
	r := NewRegistry(nil)
	for _, name := range []string{"first", "second", "third"} {
		r.Register(&fakeTool{name: name})
	}
	// Replacing a tool keeps its slot.
	r.Register(&fakeTool{name: "second", result: "v2"})

	schemas := r.Schemas()
	if len(schemas) != 3 {
		t.Fatalf("expected 3 schemas, got %d", len(schemas))
	}
	for i, want := range []string{"first", "second", "third"} {
		if schemas[i].Name != want {
			t.Errorf("schema %d = %q, want %q", i, schemas[i].Name, want)
		}
	}

	got, err := r.Execute(context.Background(), "second", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != "v2" {
		t.Error("re-registration must replace the implementation")
	}
}

func TestRegistryLen(t *testing.T) {
	r := NewRegistry(nil)
	if r.Len() != 0 {
		t.Error("empty registry must report 0")
	}
	r.Register(&fakeTool{name: "a"})
	r.Register(&fakeTool{name: "a"})
	if r.Len() != 1 {
		t.Errorf("duplicate registration counted twice: %d", r.Len())
	}
}
