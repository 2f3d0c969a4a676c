package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/scenewatch/vision-backend/internal/automation"
)

var (
	// ErrSessionActive rejects a second concurrent subscriber; one live
	// pipeline runs per process.
	ErrSessionActive = errors.New("a live session is already streaming")

	// ErrNoActiveSession reports a frame push with no subscriber attached,
	// so there is no queue to admit the frame into.
	ErrNoActiveSession = errors.New("no active live session")
)

// Manager owns the live session. Every subscriber gets a fresh session
// (queue, assembler, worker); stats of ended sessions remain addressable
// through the stats store.
type Manager struct {
	cfg    SessionConfig
	orc    Oracle
	config *automation.Store
	stats  StatsSink
	logger *slog.Logger

	mu     sync.Mutex
	active *Session
}

func NewManager(cfg SessionConfig, orc Oracle, config *automation.Store, stats StatsSink, logger *slog.Logger) (*Manager, error) {
	if err := cfg.Assembler.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cfg:    cfg,
		orc:    orc,
		config: config,
		stats:  stats,
		logger: logger.With("component", "session-manager"),
	}, nil
}

// StartSession creates and starts a fresh live session. It fails with
// ErrSessionActive while an earlier session is still streaming.
func (m *Manager) StartSession(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil && m.active.Status() != StatusClosed {
		return nil, ErrSessionActive
	}

	session, err := NewSession(m.cfg, m.orc, m.config, m.stats, m.logger)
	if err != nil {
		return nil, err
	}
	if err := session.Start(ctx); err != nil {
		return nil, err
	}

	m.active = session
	return session, nil
}

// Push routes a frame to the active session's intake queue.
func (m *Manager) Push(frame []byte) error {
	m.mu.Lock()
	session := m.active
	m.mu.Unlock()

	if session == nil || session.Status() == StatusClosed {
		return ErrNoActiveSession
	}
	return session.Push(frame)
}

// EndSession closes a session and detaches it if it is the active one.
func (m *Manager) EndSession(s *Session) {
	if s == nil {
		return
	}
	s.Close()

	m.mu.Lock()
	if m.active == s {
		m.active = nil
	}
	m.mu.Unlock()
}
