// Package session implements the Session Manager (C5): an in-memory
// session_id -> SessionState map with lazy creation and an idle-session
// reaper.
package session

import (
	"sync"
	"time"

	"jarvis/internal/domain"
	"jarvis/internal/evc"
	"jarvis/internal/tracker"
)

// State is one session's live state: the bot's EVC engine, the user
// tracker, and bookkeeping timestamps. Sessions are single-owner:
// external callers must not mutate a session concurrently. Turn holds
// a per-session lock so the orchestrator can serialize concurrent
// turns against the same id while different sessions proceed in
// parallel.
type State struct {
	Turn sync.Mutex

	SessionID  string
	Engine     *evc.Engine
	Tracker    *tracker.Tracker
	CreatedAt  time.Time
	UpdatedAt  time.Time
	LastTurnTS time.Time
	Hydrated   bool
	History    []domain.ChatMessage
}

// Serialized is the C5 `serialize(id)` view.
type Serialized struct {
	SessionID string          `json:"session_id"`
	Turn      int             `json:"turn"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	EVCState  domain.EVCState `json:"evc_state"`
	Latest    *domain.TurnResult `json:"latest_turn,omitempty"`
}

// Factory builds a fresh engine+tracker pair for a new session.
type Factory func() (*evc.Engine, *tracker.Tracker)

func DefaultFactory() (*evc.Engine, *tracker.Tracker) {
	return evc.New("Jarvis", domain.HormoneVector{}), tracker.New()
}

// Manager guards a map of live sessions with a single mutex held only
// for map access; once a session is handed out, its turns are serialized
// by that session's own Turn lock, not by the Manager.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*State
	factory  Factory
	idleTTL  time.Duration
}

func NewManager(factory Factory, idleTTL time.Duration) *Manager {
	if factory == nil {
		factory = DefaultFactory
	}
	return &Manager{
		sessions: make(map[string]*State),
		factory:  factory,
		idleTTL:  idleTTL,
	}
}

// GetOrCreate returns the existing session or constructs one from the
// configured factory.
func (m *Manager) GetOrCreate(id string) *State {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		return s
	}
	engine, trk := m.factory()
	now := time.Now()
	s := &State{
		SessionID: id,
		Engine:    engine,
		Tracker:   trk,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.sessions[id] = s
	return s
}

// Reset removes the session, reporting whether it existed.
func (m *Manager) Reset(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.sessions[id]
	delete(m.sessions, id)
	return ok
}

// Touch sets UpdatedAt to now, marking the session as active for the
// idle reaper.
func (m *Manager) Touch(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.UpdatedAt = time.Now()
	}
}

// Serialize returns the C5 view, or false if the session is unknown.
func (m *Manager) Serialize(id string) (Serialized, bool) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return Serialized{}, false
	}

	out := Serialized{
		SessionID: s.SessionID,
		Turn:      s.Engine.Turn,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		EVCState:  s.Engine.GetFullState(),
	}
	if len(s.Engine.TurnLog) > 0 {
		latest := s.Engine.TurnLog[len(s.Engine.TurnLog)-1]
		out.Latest = &latest
	}
	return out, true
}

// ReapIdle removes sessions whose last-touched time exceeds idleTTL, and
// is safe to call on a ticker from a background goroutine.
func (m *Manager) ReapIdle(now time.Time) int {
	if m.idleTTL <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if now.Sub(s.UpdatedAt) > m.idleTTL {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Count reports the number of live sessions, mainly for health/metrics.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
