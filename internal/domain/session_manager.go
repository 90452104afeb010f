package domain

import (
	"sync"

	"github.com/Vovarama1992/companion/internal/ports"
	"go.uber.org/zap"
)

// SessionManager keeps one Conversation per session id and forgets it once it ends.
type SessionManager struct {
	runner turnRunner
	repo   ports.AssetRepository
	opts   ConversationOptions
	log    *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Conversation
}

func NewSessionManager(runner turnRunner, repo ports.AssetRepository, opts ConversationOptions, log *zap.Logger) *SessionManager {
	return &SessionManager{
		runner:   runner,
		repo:     repo,
		opts:     opts,
		log:      log,
		sessions: make(map[string]*Conversation),
	}
}

// Open returns the live conversation for id, starting one if needed.
// A conversation that has said farewell but not yet torn down is replaced.
// created is true when the caller got a brand new conversation.
func (m *SessionManager) Open(id string) (conv *Conversation, created bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.sessions[id]; ok && c.State() != StateEnded {
		return c, false
	}

	c := NewConversation(id, m.runner, m.repo, m.opts, m.log)
	m.sessions[id] = c

	go func() {
		<-c.Done()
		m.mu.Lock()
		if m.sessions[id] == c {
			delete(m.sessions, id)
		}
		m.mu.Unlock()
	}()

	return c, true
}

func (m *SessionManager) Get(id string) (*Conversation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.sessions[id]
	return c, ok
}

func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// CloseAll ends every live conversation without a farewell.
func (m *SessionManager) CloseAll() {
	m.mu.Lock()
	live := make([]*Conversation, 0, len(m.sessions))
	for _, c := range m.sessions {
		live = append(live, c)
	}
	m.mu.Unlock()

	for _, c := range live {
		c.Close()
	}
}
