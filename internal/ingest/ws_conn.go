package ingest

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/scenewatch/vision-backend/internal/dto"
	"github.com/scenewatch/vision-backend/internal/pipeline"
)

const (
	wsReadLimit     = 4 << 20 // frames are JPEG-encoded; 4MiB is generous
	wsWriteDeadline = 5 * time.Second
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Connect upgrades to a WebSocket and reads frames until the client hangs
// up: binary messages carry raw encoded image bytes, text messages carry the
// same JSON body as the POST endpoint. Dropped frames are reported back as a
// JSON status message rather than silently discarded.
func (h *Handler) Connect(c echo.Context) error {
	ws, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return err
	}
	defer func() { _ = ws.Close() }()

	ws.SetReadLimit(wsReadLimit)

	h.logger.Info("frame producer connected (WebSocket)", "remote", c.Request().RemoteAddr)

	for {
		msgType, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("websocket read failed", "error", err)
			}
			return nil
		}

		frame, status := h.frameFromMessage(msgType, data)
		if frame != nil {
			status = h.pushStatus(frame)
		}

		if status == dto.FrameStatusOK {
			continue
		}
		if err := h.writeStatus(ws, status); err != nil {
			return nil
		}
	}
}

func (h *Handler) frameFromMessage(msgType int, data []byte) ([]byte, string) {
	switch msgType {
	case websocket.BinaryMessage:
		return data, ""
	case websocket.TextMessage:
		var req dto.PushFrameRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, "invalid_json"
		}
		frame, httpErr := decodeFrame(req.ImageBase64)
		if httpErr != nil {
			return nil, "invalid_frame"
		}
		return frame, ""
	default:
		return nil, "unsupported_message"
	}
}

func (h *Handler) pushStatus(frame []byte) string {
	switch err := h.pusher.Push(frame); {
	case err == nil:
		return dto.FrameStatusOK
	case errors.Is(err, pipeline.ErrQueueFull):
		return dto.FrameStatusQueueFull
	case errors.Is(err, pipeline.ErrNoActiveSession):
		return "no_active_session"
	default:
		h.logger.Error("frame push failed", "error", err)
		return "push_failed"
	}
}

func (h *Handler) writeStatus(ws *websocket.Conn, status string) error {
	_ = ws.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
	return ws.WriteJSON(dto.PushFrameResponse{Status: status})
}
