package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/scenewatch/vision-backend/internal/automation"
	"github.com/scenewatch/vision-backend/internal/oracle"
	"github.com/scenewatch/vision-backend/internal/shared"
)

// Oracle is the external perception/decision call as the worker sees it.
// *oracle.Client satisfies it; tests substitute fakes.
type Oracle interface {
	Invoke(ctx context.Context, frames [][]byte, tStart, tEnd float64, rules []automation.Rule) (*oracle.Decision, error)
}

type Status string

const (
	StatusIdle      Status = "idle"
	StatusStreaming Status = "streaming"
	StatusClosed    Status = "closed"
)

var ErrSessionClosed = errors.New("session closed")

const defaultResultBuffer = 64

// SessionConfig is fixed for the lifetime of one live session.
type SessionConfig struct {
	Assembler     AssemblerConfig
	QueueCapacity int
	// IdleTimeout is how long the worker waits for the next frame before
	// treating producer silence as a clean end of stream.
	IdleTimeout time.Duration
	// SkipFailures switches the oracle failure policy from fail-stop to
	// skip-and-continue: the failed window is published with an error field
	// set and the session keeps running.
	SkipFailures bool
	// ResultBuffer sizes the results channel. Result cardinality is bounded
	// by window cadence, not frame rate, so a moderate buffer suffices.
	ResultBuffer int
}

// Session is one live run of the pipeline: a fresh intake queue, a fresh
// assembler, and a single worker goroutine that drains the queue, invokes the
// oracle, resolves actions, and publishes results in window order. The
// results channel closing is the terminal sentinel; no result follows it.
type Session struct {
	ID string

	cfg     SessionConfig
	queue   *FrameQueue
	orc     Oracle
	config  *automation.Store
	stats   StatsSink
	logger  *slog.Logger
	results chan WindowResult

	cancel    context.CancelFunc
	closeOnce sync.Once

	framesReceived atomic.Int64
	framesDropped  atomic.Int64
	windowsEmitted atomic.Int64

	mu        sync.Mutex
	status    Status
	startedAt time.Time
	endedAt   *time.Time
}

// NewSession validates the windowing config and builds an idle session.
func NewSession(cfg SessionConfig, orc Oracle, config *automation.Store, stats StatsSink, logger *slog.Logger) (*Session, error) {
	if err := cfg.Assembler.Validate(); err != nil {
		return nil, err
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.ResultBuffer <= 0 {
		cfg.ResultBuffer = defaultResultBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}

	id := shared.NewID("live_")
	return &Session{
		ID:      id,
		cfg:     cfg,
		queue:   NewFrameQueue(cfg.QueueCapacity),
		orc:     orc,
		config:  config,
		stats:   stats,
		logger:  logger.With("component", "live-session", "session_id", id),
		results: make(chan WindowResult, cfg.ResultBuffer),
		status:  StatusIdle,
	}, nil
}

// Start transitions Idle → Streaming and launches the worker. The worker
// exits when the given context is canceled, the intake goes silent for the
// idle timeout, or an oracle call fails under the fail-stop policy.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.status != StatusIdle {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.status = StatusStreaming
	s.startedAt = time.Now()
	s.mu.Unlock()

	ctx, s.cancel = context.WithCancel(ctx)

	s.logger.Info("live session started",
		"window_size", s.cfg.Assembler.WindowSize,
		"step_size", s.cfg.Assembler.StepSize,
		"fps", s.cfg.Assembler.FPS,
		"rules", s.config.RuleCount())

	s.recordStats(ctx)

	go s.run(ctx)
	return nil
}

// Push admits one frame. It never blocks: a full queue drops the frame and
// reports ErrQueueFull to the producer.
func (s *Session) Push(frame []byte) error {
	if s.Status() == StatusClosed {
		return ErrSessionClosed
	}

	if err := s.queue.Push(frame); err != nil {
		s.framesDropped.Add(1)
		return err
	}
	s.framesReceived.Add(1)
	return nil
}

// Results is the single-reader handoff channel. It is closed exactly once,
// after the last result of the session.
func (s *Session) Results() <-chan WindowResult {
	return s.results
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Close ends the session. Safe to call from any goroutine, any number of
// times; the worker observes the cancellation at its next suspension point.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}

// Stats snapshots the session counters.
func (s *Session) Stats() SessionStats {
	s.mu.Lock()
	status := s.status
	startedAt := s.startedAt
	endedAt := s.endedAt
	s.mu.Unlock()

	return SessionStats{
		SessionID:      s.ID,
		Status:         string(status),
		FramesReceived: s.framesReceived.Load(),
		FramesDropped:  s.framesDropped.Load(),
		WindowsEmitted: s.windowsEmitted.Load(),
		StartedAt:      startedAt,
		EndedAt:        endedAt,
	}
}

func (s *Session) run(ctx context.Context) {
	defer s.finish()

	asm, err := NewAssembler(s.cfg.Assembler)
	if err != nil {
		// Config was validated at construction; this cannot happen.
		s.logger.Error("assembler config rejected", "error", err)
		return
	}

	for {
		frame, err := s.queue.Pop(ctx, s.cfg.IdleTimeout)
		if errors.Is(err, ErrIdleTimeout) {
			s.logger.Info("no frames received, ending stream",
				"idle_timeout", s.cfg.IdleTimeout)
			return
		}
		if err != nil {
			s.logger.Debug("session canceled", "error", err)
			return
		}

		for _, w := range asm.Push(frame) {
			result, err := s.processWindow(ctx, w)
			if err != nil {
				if s.cfg.SkipFailures {
					s.logger.Warn("oracle call failed, skipping window",
						"window_index", w.Index, "error", err)
					result = WindowResult{
						WindowIndex:        w.Index,
						TStartSec:          w.TStartSec,
						TEndSec:            w.TEndSec,
						TriggeredActionIDs: []string{},
						TriggeredRuleIDs:   []string{},
						Error:              err.Error(),
					}
				} else {
					s.logger.Error("oracle call failed, ending stream",
						"window_index", w.Index, "error", err)
					return
				}
			}

			select {
			case s.results <- result:
				s.windowsEmitted.Add(1)
				s.recordStats(ctx)
			case <-ctx.Done():
				return
			}
		}
	}
}

// processWindow runs one window through oracle invocation and rule→action
// resolution against a config snapshot taken at invocation time.
func (s *Session) processWindow(ctx context.Context, w Window) (WindowResult, error) {
	snapshot := s.config.Snapshot()

	t0 := time.Now()
	decision, err := s.orc.Invoke(ctx, w.Frames, w.TStartSec, w.TEndSec, snapshot.Rules)
	if err != nil {
		return WindowResult{}, err
	}
	elapsed := time.Since(t0)

	actionIDs := automation.ResolveActions(decision.TriggeredRuleIDs, snapshot)

	s.logger.Info("window processed",
		"window_index", w.Index,
		"t_start_sec", w.TStartSec,
		"t_end_sec", w.TEndSec,
		"delay_seconds", elapsed.Seconds(),
		"triggered_rule_ids", decision.TriggeredRuleIDs,
		"triggered_action_ids", actionIDs)

	return WindowResult{
		WindowIndex:        w.Index,
		TStartSec:          w.TStartSec,
		TEndSec:            w.TEndSec,
		Description:        decision.Summary,
		DelaySeconds:       elapsed.Seconds(),
		TriggeredActionIDs: actionIDs,
		TriggeredRuleIDs:   decision.TriggeredRuleIDs,
	}, nil
}

func (s *Session) finish() {
	s.mu.Lock()
	s.status = StatusClosed
	now := time.Now()
	s.endedAt = &now
	s.mu.Unlock()

	close(s.results)
	s.Close()

	s.recordStats(context.Background())
	s.logger.Info("live session closed",
		"frames_received", s.framesReceived.Load(),
		"frames_dropped", s.framesDropped.Load(),
		"windows_emitted", s.windowsEmitted.Load())
}

func (s *Session) recordStats(ctx context.Context) {
	if s.stats == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 500*time.Millisecond)
	defer cancel()

	if err := s.stats.Record(ctx, s.Stats()); err != nil {
		s.logger.Warn("record session stats failed", "error", err)
	}
}
