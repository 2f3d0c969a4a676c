package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/scenewatch/vision-backend/internal/automation"
	"github.com/scenewatch/vision-backend/internal/oracle"
	"github.com/scenewatch/vision-backend/internal/pipeline"
	"github.com/scenewatch/vision-backend/internal/stats"
)

// ProvideAutomationStore loads the automation config and builds the live
// store. With a database configured, the persisted config wins and rule
// mutations are written through; the seed file only populates an empty
// database. A referentially broken config fails startup.
func ProvideAutomationStore(cfg *Config, db *gorm.DB, log *slog.Logger) (*automation.Store, error) {
	if db == nil {
		seed, err := automation.LoadFile(cfg.RulesPath)
		if err != nil {
			return nil, err
		}
		return automation.NewStore(*seed, log), nil
	}

	dbStore := automation.NewDBStore(db)
	if err := dbStore.Migrate(); err != nil {
		return nil, fmt.Errorf("migrate automation tables: %w", err)
	}

	ctx := context.Background()
	persisted, err := dbStore.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load automation config from database: %w", err)
	}

	if persisted == nil {
		seed, err := automation.LoadFile(cfg.RulesPath)
		if err != nil {
			return nil, err
		}
		if err := dbStore.Seed(ctx, *seed); err != nil {
			return nil, fmt.Errorf("seed automation config: %w", err)
		}
		persisted = seed
		log.Info("seeded automation config from file", "path", cfg.RulesPath)
	} else if err := automation.Validate(*persisted); err != nil {
		return nil, fmt.Errorf("persisted automation config: %w", err)
	}

	return automation.NewStore(*persisted, log, automation.WithPersister(dbStore)), nil
}

func ProvideStatsStore(redisClient *redis.Client) *stats.Store {
	return stats.NewStore(redisClient)
}

// ProvideManager wires the live pipeline. Windowing parameters are validated
// here, once, so a bad configuration refuses to start instead of failing at
// runtime.
func ProvideManager(cfg *Config, orc *oracle.Client, store *automation.Store, statsStore *stats.Store, log *slog.Logger) (*pipeline.Manager, error) {
	sessionCfg := pipeline.SessionConfig{
		Assembler: pipeline.AssemblerConfig{
			WindowSize: cfg.WindowSize,
			StepSize:   cfg.WindowStep,
			FPS:        cfg.FramesPerSecond,
		},
		QueueCapacity: cfg.QueueCapacity,
		IdleTimeout:   cfg.IntakeIdleWait,
		SkipFailures:  cfg.SkipFailures,
	}
	return pipeline.NewManager(sessionCfg, orc, store, statsStore, log)
}

var StoresModule = fx.Options(
	fx.Provide(
		ProvideAutomationStore,
		ProvideStatsStore,
		ProvideManager,
	),
)
