package agent

import (
	"context"
	"fmt"
	"log"

	"coursechat/models"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/samber/lo"
)

// Registry holds named tools and dispatches execution by name. Its "last
// sources" state is per-instance and not safe for interleaved concurrent
// queries; callers create one registry per query.
type Registry struct {
	order  []Tool
	byName map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Tool)}
}

// Register adds a tool. Tools without a name and name collisions are
// rejected rather than silently overwritten.
func (r *Registry) Register(tool Tool) error {
	name := tool.Name()
	if name == "" {
		return fmt.Errorf("tool must have a name in its definition")
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("tool %q is already registered", name)
	}

	r.byName[name] = tool
	r.order = append(r.order, tool)
	return nil
}

// Definitions returns the anthropic tool specs in registration order.
func (r *Registry) Definitions() []anthropic.ToolUnionParam {
	return lo.Map(r.order, func(tool Tool, _ int) anthropic.ToolUnionParam {
		return anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        tool.Name(),
				Description: anthropic.String(tool.Description()),
				InputSchema: tool.InputSchema(),
			},
		}
	})
}

// Execute runs the named tool. It never returns a fault: unknown names and
// panicking tools both become descriptive result strings the model can read.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (result string) {
	tool, ok := r.byName[name]
	if !ok {
		return fmt.Sprintf("Tool '%s' not found", name)
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[ERROR] Tool %q panicked: %v", name, rec)
			result = fmt.Sprintf("Tool '%s' failed: %v", name, rec)
		}
	}()

	return tool.Execute(ctx, args)
}

// LastSources returns the citation sources captured by the most recent
// search-style execution: the first registered tool holding a non-empty
// source list wins.
func (r *Registry) LastSources() []models.Source {
	for _, tool := range r.order {
		if provider, ok := tool.(SourceProvider); ok {
			if sources := provider.LastSources(); len(sources) > 0 {
				return sources
			}
		}
	}
	return []models.Source{}
}

// ResetSources clears the source state of every registered tool.
func (r *Registry) ResetSources() {
	for _, tool := range r.order {
		if provider, ok := tool.(SourceProvider); ok {
			provider.ResetSources()
		}
	}
}
