package pipeline

import (
	"context"
	"time"
)

// Window is a fixed-length slice of consecutive frames. Frame indices are
// absolute positions in the arrival order; timestamps derive from the
// configured frame rate, not wall-clock time.
type Window struct {
	Index     int
	StartIdx  int
	EndIdx    int
	TStartSec float64
	TEndSec   float64
	Frames    [][]byte
}

// WindowResult is the record published to the stream subscriber, exactly one
// per emitted window. Immutable after construction.
type WindowResult struct {
	WindowIndex        int      `json:"window_index"`
	TStartSec          float64  `json:"t_start_sec"`
	TEndSec            float64  `json:"t_end_sec"`
	Description        string   `json:"description"`
	DelaySeconds       float64  `json:"delay_seconds"`
	TriggeredActionIDs []string `json:"triggered_action_ids"`
	TriggeredRuleIDs   []string `json:"triggered_rule_ids"`
	Error              string   `json:"error,omitempty"`
}

// SessionStats is the runtime counter snapshot of a live session.
type SessionStats struct {
	SessionID      string     `json:"session_id"`
	Status         string     `json:"status"`
	FramesReceived int64      `json:"frames_received"`
	FramesDropped  int64      `json:"frames_dropped"`
	WindowsEmitted int64      `json:"windows_emitted"`
	StartedAt      time.Time  `json:"started_at"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
}

// StatsSink receives session stat snapshots. Recording is best effort and
// must never stall the pipeline.
type StatsSink interface {
	Record(ctx context.Context, st SessionStats) error
}
