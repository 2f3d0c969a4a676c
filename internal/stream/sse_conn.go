package stream

import (
	"encoding/json"
	"net/http"

	"github.com/scenewatch/vision-backend/internal/pipeline"
)

// SSEConn wraps a flushable response writer with the Server-Sent Events wire
// format. The single stream handler goroutine owns it; no locking needed.
type SSEConn struct {
	writer  http.ResponseWriter
	flusher http.Flusher
}

func NewSSEConn(w http.ResponseWriter) (*SSEConn, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, http.ErrNotSupported
	}
	return &SSEConn{
		writer:  w,
		flusher: flusher,
	}, nil
}

// WriteResult emits one WindowResult as a `data:` event and flushes it to the
// subscriber immediately.
func (c *SSEConn) WriteResult(res pipeline.WindowResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}

	if _, err := c.writer.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := c.writer.Write(data); err != nil {
		return err
	}
	if _, err := c.writer.Write([]byte("\n\n")); err != nil {
		return err
	}

	c.flusher.Flush()
	return nil
}

// WriteKeepAlive emits an SSE comment so proxies keep the connection open
// across slow oracle calls.
func (c *SSEConn) WriteKeepAlive() error {
	if _, err := c.writer.Write([]byte(":keepalive\n\n")); err != nil {
		return err
	}
	c.flusher.Flush()
	return nil
}
