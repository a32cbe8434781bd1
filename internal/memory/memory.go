// Package memory implements bounded per-conversation turn history for
// multi-turn question answering. Each conversation holds at most a fixed
// number of turns; eviction drops the oldest turns but always retains the
// first turn so follow-up questions keep their original subject anchored.
package memory

import (
	"sync"
	"time"
)

// Role identifies the author of a conversation turn.
type Role string

// Turn roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one exchange entry in a conversation.
type Turn struct {
	Role     Role           `json:"role"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
	At       time.Time      `json:"at"`
}

type conversation struct {
	mu    sync.Mutex
	turns []Turn
}

// Memory stores bounded turn histories keyed by conversation id.
// Distinct conversations never block each other; the registry lock is held
// only for key lookup.
type Memory struct {
	cap int

	mu            sync.Mutex
	conversations map[string]*conversation
}

// DefaultCap is the per-conversation turn limit used when no cap is given.
const DefaultCap = 20

// New creates a Memory with the given per-conversation cap.
// Non-positive caps fall back to DefaultCap.
func New(capacity int) *Memory {
	if capacity < 1 {
		capacity = DefaultCap
	}
	return &Memory{
		cap:           capacity,
		conversations: make(map[string]*conversation),
	}
}

// Append adds a turn to the conversation, evicting the oldest non-anchor
// turns once the cap is exceeded.
func (m *Memory) Append(conversationID string, turn Turn) {
	if turn.At.IsZero() {
		turn.At = time.Now()
	}

	c := m.conversation(conversationID)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.turns = append(c.turns, turn)
	if len(c.turns) > m.cap {
		// Keep the first turn, drop the oldest of the rest.
		excess := len(c.turns) - m.cap
		trimmed := make([]Turn, 0, m.cap)
		trimmed = append(trimmed, c.turns[0])
		trimmed = append(trimmed, c.turns[1+excess:]...)
		c.turns = trimmed
	}
}

// Recent returns a copy of the conversation's turns in order, oldest first.
func (m *Memory) Recent(conversationID string) []Turn {
	m.mu.Lock()
	c, ok := m.conversations[conversationID]
	m.mu.Unlock()

	if !ok {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Clear removes all turns for the conversation. Subsequent appends start fresh.
func (m *Memory) Clear(conversationID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conversations, conversationID)
}

// ActiveConversations returns the number of conversations holding turns.
func (m *Memory) ActiveConversations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.conversations)
}

func (m *Memory) conversation(id string) *conversation {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.conversations[id]
	if !ok {
		c = &conversation{}
		m.conversations[id] = c
	}
	return c
}
