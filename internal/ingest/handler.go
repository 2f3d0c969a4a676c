package ingest

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/scenewatch/vision-backend/internal/dto"
	"github.com/scenewatch/vision-backend/internal/pipeline"
	"github.com/scenewatch/vision-backend/internal/shared"
)

// FramePusher admits one frame into the live pipeline. *pipeline.Manager
// satisfies it.
type FramePusher interface {
	Push(frame []byte) error
}

// Handler admits frames into the active live session. It performs only the
// non-blocking queue push; the oracle call always happens on the worker, so
// admission stays low-latency even while a window is being processed.
type Handler struct {
	pusher FramePusher
	logger *slog.Logger
}

func NewHandler(pusher FramePusher, logger *slog.Logger) *Handler {
	return &Handler{
		pusher: pusher,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/live_frame", h.PushFrame)
	g.GET("/live_frame/ws", h.Connect)
}

// PushFrame accepts one base64-encoded image per call. A full intake queue
// answers 503 with a queue_full status the client can distinguish from an
// error; the frame is dropped and the client should not retry it.
func (h *Handler) PushFrame(c echo.Context) error {
	var req dto.PushFrameRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_request", "invalid JSON payload")
	}

	frame, httpErr := decodeFrame(req.ImageBase64)
	if httpErr != nil {
		return httpErr
	}

	switch err := h.pusher.Push(frame); {
	case errors.Is(err, pipeline.ErrQueueFull):
		h.logger.Warn("frame queue full, dropping frame")
		return c.JSON(http.StatusServiceUnavailable, dto.PushFrameResponse{
			Status: dto.FrameStatusQueueFull,
		})
	case errors.Is(err, pipeline.ErrNoActiveSession):
		return shared.Conflict("no_active_session", "no live stream is currently subscribed")
	case err != nil:
		h.logger.Error("frame push failed", "error", err)
		return shared.InternalError("push_failed", "failed to admit frame")
	}

	return c.JSON(http.StatusOK, dto.PushFrameResponse{Status: dto.FrameStatusOK})
}

// decodeFrame strips an optional data-URL prefix
// ("data:image/jpeg;base64,...") and decodes the base64 payload.
func decodeFrame(imageBase64 string) ([]byte, *echo.HTTPError) {
	if imageBase64 == "" {
		return nil, shared.BadRequest("missing_image", "missing 'image_base64' string in payload")
	}

	if _, after, found := strings.Cut(imageBase64, ","); found {
		imageBase64 = after
	}

	frame, err := base64.StdEncoding.DecodeString(imageBase64)
	if err != nil {
		return nil, shared.BadRequest("invalid_base64", "invalid base64 data")
	}
	return frame, nil
}
