package stats

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/scenewatch/vision-backend/internal/dto"
	"github.com/scenewatch/vision-backend/internal/pipeline"
	"github.com/scenewatch/vision-backend/internal/shared"
)

// Getter reads recorded session stats. *Store satisfies it.
type Getter interface {
	Get(ctx context.Context, sessionID string) (*pipeline.SessionStats, error)
}

type Handler struct {
	store  Getter
	logger *slog.Logger
}

func NewHandler(store Getter, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/:id", h.GetSession)
}

// GetSession returns the recorded stats of a live or recently ended session.
func (h *Handler) GetSession(c echo.Context) error {
	id := c.Param("id")

	st, err := h.store.Get(c.Request().Context(), id)
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NotFound("session_not_found", "no session found with id '"+id+"'")
	}
	if err != nil {
		h.logger.Error("failed to load session stats", "error", err, "session_id", id)
		return shared.InternalError("stats_failed", "failed to load session stats")
	}

	resp := dto.SessionStatsResponse{
		SessionID:      st.SessionID,
		Status:         st.Status,
		FramesReceived: st.FramesReceived,
		FramesDropped:  st.FramesDropped,
		WindowsEmitted: st.WindowsEmitted,
		StartedAt:      st.StartedAt.Format(time.RFC3339),
	}
	if st.EndedAt != nil {
		resp.EndedAt = st.EndedAt.Format(time.RFC3339)
	}

	return c.JSON(http.StatusOK, resp)
}
