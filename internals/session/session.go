// Package session tracks per-conversation history so follow-up questions
// keep their context. History is bounded: only the most recent exchanges are
// kept and rendered.
package session

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const DefaultMaxHistory = 2

// Exchange is one completed user question and assistant answer.
type Exchange struct {
	Question string
	Answer   string
}

type conversation struct {
	exchanges []Exchange
	updatedAt time.Time
}

// Manager is an in-memory session store. Sessions are keyed by an opaque ID;
// HTTP callers get a generated UUID, the Slack surface uses thread
// timestamps.
type Manager struct {
	mu         sync.RWMutex
	sessions   map[string]*conversation
	maxHistory int
}

func NewManager(maxHistory int) *Manager {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Manager{
		sessions:   make(map[string]*conversation),
		maxHistory: maxHistory,
	}
}

// Create returns a fresh session ID.
func (m *Manager) Create() string {
	id := uuid.NewString()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = &conversation{updatedAt: time.Now()}
	return id
}

// AddExchange records a completed question/answer pair, dropping the oldest
// exchanges beyond the history bound. Unknown IDs start a new session.
func (m *Manager) AddExchange(id, question, answer string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv, ok := m.sessions[id]
	if !ok {
		conv = &conversation{}
		m.sessions[id] = conv
	}
	conv.exchanges = append(conv.exchanges, Exchange{Question: question, Answer: answer})
	if n := len(conv.exchanges); n > m.maxHistory {
		conv.exchanges = conv.exchanges[n-m.maxHistory:]
	}
	conv.updatedAt = time.Now()
}

// GetHistory renders the session's recent exchanges as the plain-text block
// the driver appends to its system prompt. Empty string when there is no
// history — the driver treats that as "no history block at all".
func (m *Manager) GetHistory(id string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	conv, ok := m.sessions[id]
	if !ok || len(conv.exchanges) == 0 {
		return ""
	}

	lines := make([]string, 0, len(conv.exchanges)*2)
	for _, e := range conv.exchanges {
		lines = append(lines, "User: "+e.Question, "Assistant: "+e.Answer)
	}
	return strings.Join(lines, "\n")
}

// Clear forgets one session.
func (m *Manager) Clear(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}
