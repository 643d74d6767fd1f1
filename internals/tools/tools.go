// Package tools holds the capabilities the model can invoke during a query
// and the manager that registers and dispatches them by name.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
)

// Tool is one model-invocable capability. Execute receives the raw JSON
// input from the model's tool_use block and returns the text fed back as
// the tool result. A returned error aborts the whole query.
type Tool interface {
	Definition() anthropic.ToolParam
	Execute(ctx context.Context, input json.RawMessage) (string, error)
}

// Source is one citation derived from a retrieval match, surfaced to the
// caller for display. Link may be empty.
type Source struct {
	Label string `json:"label"`
	Link  string `json:"link,omitempty"`
}

// sourceTracker is implemented by tools that produce citations.
type sourceTracker interface {
	LastSources() []Source
	ResetSources()
}

// Manager keys tools by their definition name and dispatches execution.
// It also exposes the citation list most recently written by any tracking
// tool; that list is never cleared by the manager itself — callers read it
// and reset it between queries.
type Manager struct {
	order []string
	tools map[string]Tool
}

func NewManager() *Manager {
	return &Manager{tools: make(map[string]Tool)}
}

// Register adds a tool under its definition name. Registering the same name
// twice replaces the handler but keeps its original position.
func (m *Manager) Register(t Tool) {
	name := t.Definition().Name
	if _, ok := m.tools[name]; !ok {
		m.order = append(m.order, name)
	}
	m.tools[name] = t
}

// Definitions returns every registered schema in registration order.
func (m *Manager) Definitions() []anthropic.ToolParam {
	defs := make([]anthropic.ToolParam, 0, len(m.order))
	for _, name := range m.order {
		defs = append(defs, m.tools[name].Definition())
	}
	return defs
}

// Execute dispatches by name. An unknown name is handled as data — the
// returned string goes back to the model and the conversation continues.
func (m *Manager) Execute(ctx context.Context, name string, input json.RawMessage) (string, error) {
	t, ok := m.tools[name]
	if !ok {
		return fmt.Sprintf("Tool '%s' not found", name), nil
	}
	return t.Execute(ctx, input)
}

// LastSources returns the citations from the most recent search-type
// execution, in registration order of the tools scanned.
func (m *Manager) LastSources() []Source {
	for _, name := range m.order {
		if tracker, ok := m.tools[name].(sourceTracker); ok {
			if srcs := tracker.LastSources(); len(srcs) > 0 {
				return srcs
			}
		}
	}
	return nil
}

func (m *Manager) ResetSources() {
	for _, name := range m.order {
		if tracker, ok := m.tools[name].(sourceTracker); ok {
			tracker.ResetSources()
		}
	}
}
