package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/scenewatch/vision-backend/internal/automation"
)

// BatchConfig drives an offline replay of a finite frame sequence.
type BatchConfig struct {
	Assembler AssemblerConfig
	// Realtime paces the replay at the window cadence (step/fps seconds
	// between windows) instead of processing as fast as the oracle allows.
	Realtime bool
}

// RunBatch replays already-decoded frames through the same windowing, oracle,
// and resolution path as the live worker, without an intake queue. Windows
// are processed strictly sequentially; emit receives one result per full
// window in index order. The loop ends when no further full window fits — a
// partial trailing window is never emitted. An oracle failure stops the
// replay and is returned.
func RunBatch(
	ctx context.Context,
	frames [][]byte,
	cfg BatchConfig,
	orc Oracle,
	config *automation.Store,
	logger *slog.Logger,
	emit func(WindowResult) error,
) error {
	asm, err := NewAssembler(cfg.Assembler)
	if err != nil {
		return err
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "batch-driver")

	secondsPerStep := float64(cfg.Assembler.StepSize) / cfg.Assembler.FPS

	logger.Info("starting batch replay",
		"frames", len(frames),
		"window_size", cfg.Assembler.WindowSize,
		"step_size", cfg.Assembler.StepSize,
		"fps", cfg.Assembler.FPS)

	for _, frame := range frames {
		for _, w := range asm.Push(frame) {
			if err := ctx.Err(); err != nil {
				return err
			}

			snapshot := config.Snapshot()

			t0 := time.Now()
			decision, err := orc.Invoke(ctx, w.Frames, w.TStartSec, w.TEndSec, snapshot.Rules)
			if err != nil {
				return err
			}
			elapsed := time.Since(t0)

			result := WindowResult{
				WindowIndex:        w.Index,
				TStartSec:          w.TStartSec,
				TEndSec:            w.TEndSec,
				Description:        decision.Summary,
				DelaySeconds:       elapsed.Seconds(),
				TriggeredActionIDs: automation.ResolveActions(decision.TriggeredRuleIDs, snapshot),
				TriggeredRuleIDs:   decision.TriggeredRuleIDs,
			}

			if emit != nil {
				if err := emit(result); err != nil {
					return err
				}
			}

			if cfg.Realtime {
				if err := sleepCtx(ctx, time.Duration(secondsPerStep*float64(time.Second))); err != nil {
					return err
				}
			}
		}
	}

	logger.Info("batch replay finished", "windows", asm.windowIndex)
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
