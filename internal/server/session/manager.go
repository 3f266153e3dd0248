// Package session manages concurrently hosted editing sessions, each
// owning one workflow store, and fans store events out to subscribers.
package session

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/markus41/flowcanvas/internal/canvas/store"
)

// ErrNotFound is returned when a session id is unknown.
var ErrNotFound = errors.New("session not found")

// subscriberBuffer is the per-subscriber event channel capacity. Sends
// are non-blocking; events are dropped when a subscriber falls behind.
const subscriberBuffer = 256

// Session is one live editing session.
type Session struct {
	ID      string       `json:"id"`
	Created time.Time    `json:"created"`
	Store   *store.Store `json:"-"`
}

// Manager creates, looks up, and tears down sessions.
type Manager struct {
	mu           sync.RWMutex
	sessions     map[string]*Session
	subscribers  map[string]map[int]chan store.Event
	nextSubID    int
	historyLimit int
	logger       zerolog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithHistoryLimit sets the undo cap passed to each session's store.
func WithHistoryLimit(n int) Option {
	return func(m *Manager) { m.historyLimit = n }
}

// WithLogger sets the manager's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates an empty session manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions:    make(map[string]*Session),
		subscribers: make(map[string]map[int]chan store.Event),
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts a new session with an empty workflow.
func (m *Manager) Create() *Session {
	id := uuid.NewString()
	sess := &Session{
		ID:      id,
		Created: time.Now(),
		Store: store.New(
			store.WithHistoryLimit(m.historyLimit),
			store.WithEventEmitter(func(e store.Event) { m.fanOut(id, e) }),
		),
	}

	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()

	m.logger.Info().Str("session", id).Msg("session created")
	return sess
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

// Delete removes a session and closes its subscriber channels.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	for _, ch := range m.subscribers[id] {
		close(ch)
	}
	delete(m.subscribers, id)
	m.logger.Info().Str("session", id).Msg("session deleted")
	return nil
}

// List returns all sessions ordered by creation time.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.Before(out[j].Created) })
	return out
}

// Subscribe registers an event channel for a session. The returned id is
// used to unsubscribe.
func (m *Manager) Subscribe(sessionID string) (int, <-chan store.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[sessionID]; !ok {
		return 0, nil, ErrNotFound
	}
	m.nextSubID++
	subID := m.nextSubID
	ch := make(chan store.Event, subscriberBuffer)
	if m.subscribers[sessionID] == nil {
		m.subscribers[sessionID] = make(map[int]chan store.Event)
	}
	m.subscribers[sessionID][subID] = ch
	return subID, ch, nil
}

// Unsubscribe removes a subscriber and closes its channel.
func (m *Manager) Unsubscribe(sessionID string, subID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch, ok := m.subscribers[sessionID][subID]; ok {
		close(ch)
		delete(m.subscribers[sessionID], subID)
	}
}

// Close tears down every session and subscriber.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, subs := range m.subscribers {
		for _, ch := range subs {
			close(ch)
		}
		delete(m.subscribers, id)
	}
	m.sessions = make(map[string]*Session)
}

// fanOut delivers an event to every subscriber of a session without
// blocking the mutating call.
func (m *Manager) fanOut(sessionID string, e store.Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for subID, ch := range m.subscribers[sessionID] {
		select {
		case ch <- e:
		default:
			m.logger.Warn().
				Str("session", sessionID).
				Int("subscriber", subID).
				Str("event", e.Type).
				Msg("subscriber channel full, dropping event")
		}
	}
}
