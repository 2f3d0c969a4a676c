package bootstrap

import (
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/scenewatch/vision-backend/internal/automation"
	"github.com/scenewatch/vision-backend/internal/ingest"
	"github.com/scenewatch/vision-backend/internal/pipeline"
	"github.com/scenewatch/vision-backend/internal/stats"
	"github.com/scenewatch/vision-backend/internal/stream"
)

func ProvideAutomationHandler(store *automation.Store, logger *slog.Logger) *automation.Handler {
	return automation.NewHandler(store, logger.With("handler", "automation"))
}

func ProvideIngestHandler(manager *pipeline.Manager, logger *slog.Logger) *ingest.Handler {
	return ingest.NewHandler(manager, logger.With("handler", "ingest"))
}

func ProvideStreamHandler(manager *pipeline.Manager, logger *slog.Logger) *stream.Handler {
	return stream.NewHandler(manager, logger.With("handler", "stream"))
}

func ProvideStatsHandler(store *stats.Store, logger *slog.Logger) *stats.Handler {
	return stats.NewHandler(store, logger.With("handler", "stats"))
}

type HandlerParams struct {
	fx.In

	AutomationHandler *automation.Handler
	IngestHandler     *ingest.Handler
	StreamHandler     *stream.Handler
	StatsHandler      *stats.Handler
	Config            *Config
}

func RegisterRoutes(e *echo.Echo, params HandlerParams) {
	api := e.Group("/api")

	params.AutomationHandler.RegisterRoutes(api.Group("/config"))
	params.IngestHandler.RegisterRoutes(api)
	params.StreamHandler.RegisterRoutes(api)
	params.StatsHandler.RegisterRoutes(api.Group("/sessions"))

	if _, err := os.Stat(params.Config.StaticDir); err == nil {
		e.Static("/static", params.Config.StaticDir)
	}
	if _, err := os.Stat(params.Config.IndexHTML); err == nil {
		e.GET("/", func(c echo.Context) error {
			return c.File(params.Config.IndexHTML)
		})
	}
}

var HandlersModule = fx.Options(
	fx.Provide(
		ProvideAutomationHandler,
		ProvideIngestHandler,
		ProvideStreamHandler,
		ProvideStatsHandler,
	),
	fx.Invoke(RegisterRoutes),
)
