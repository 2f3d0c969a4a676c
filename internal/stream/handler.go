package stream

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/scenewatch/vision-backend/internal/pipeline"
	"github.com/scenewatch/vision-backend/internal/shared"
)

const keepAliveInterval = 15 * time.Second

// Handler serves the long-lived result stream. It performs no business
// logic: it starts a session, forwards results in submission order, and ends
// the response when the results channel closes (the terminal sentinel) or
// the subscriber disconnects.
type Handler struct {
	manager *pipeline.Manager
	logger  *slog.Logger
}

func NewHandler(manager *pipeline.Manager, logger *slog.Logger) *Handler {
	return &Handler{
		manager: manager,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/stream", h.Stream)
}

// Stream subscribes the caller to a fresh live session. Only one subscriber
// may stream at a time; a second concurrent request gets 409.
func (h *Handler) Stream(c echo.Context) error {
	ctx := c.Request().Context()

	session, err := h.manager.StartSession(ctx)
	if errors.Is(err, pipeline.ErrSessionActive) {
		return shared.Conflict("stream_active", "a live stream is already subscribed")
	}
	if err != nil {
		h.logger.Error("failed to start live session", "error", err)
		return shared.InternalError("session_failed", "failed to start live session")
	}
	defer h.manager.EndSession(session)

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)

	conn, err := NewSSEConn(c.Response())
	if err != nil {
		h.logger.Error("response writer does not support flushing", "error", err)
		return err
	}

	h.logger.Info("subscriber connected", "session_id", session.ID)

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case res, ok := <-session.Results():
			if !ok {
				h.logger.Info("stream ended", "session_id", session.ID)
				return nil
			}
			if err := conn.WriteResult(res); err != nil {
				h.logger.Warn("subscriber write failed", "error", err, "session_id", session.ID)
				return nil
			}
		case <-ticker.C:
			if err := conn.WriteKeepAlive(); err != nil {
				h.logger.Warn("subscriber gone", "session_id", session.ID)
				return nil
			}
		case <-ctx.Done():
			h.logger.Info("subscriber disconnected", "session_id", session.ID)
			return nil
		}
	}
}
