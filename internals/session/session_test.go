package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_CreateReturnsDistinctIDs(t *testing.T) {
	m := NewManager(2)

	a := m.Create()
	b := m.Create()

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestManager_HistoryRendering(t *testing.T) {
	m := NewManager(2)
	id := m.Create()

	assert.Empty(t, m.GetHistory(id))

	m.AddExchange(id, "What is MCP?", "A protocol for tools.")

	assert.Equal(t, "User: What is MCP?\nAssistant: A protocol for tools.", m.GetHistory(id))
}

func TestManager_HistoryIsBounded(t *testing.T) {
	m := NewManager(2)
	id := m.Create()

	m.AddExchange(id, "q1", "a1")
	m.AddExchange(id, "q2", "a2")
	m.AddExchange(id, "q3", "a3")

	history := m.GetHistory(id)
	assert.NotContains(t, history, "q1")
	assert.Contains(t, history, "q2")
	assert.Contains(t, history, "q3")
}

func TestManager_UnknownIDStartsNewSession(t *testing.T) {
	m := NewManager(2)

	m.AddExchange("slack-123", "hello", "hi")

	require.Contains(t, m.GetHistory("slack-123"), "User: hello")
}

func TestManager_Clear(t *testing.T) {
	m := NewManager(2)
	id := m.Create()
	m.AddExchange(id, "q", "a")

	m.Clear(id)

	assert.Empty(t, m.GetHistory(id))
}
