package pipeline

import (
	"context"
	"errors"
	"time"
)

const (
	DefaultQueueCapacity = 256
	DefaultIdleTimeout   = 10 * time.Second
)

var (
	// ErrQueueFull is the distinguishable admission failure: the producer is
	// told to drop the frame, never to block or retry synchronously.
	ErrQueueFull = errors.New("frame queue full")

	// ErrIdleTimeout reports producer silence on Pop. It is a normal
	// end-of-stream condition, not a fault.
	ErrIdleTimeout = errors.New("frame intake idle timeout")
)

// FrameQueue is the bounded buffer between the frame producer and the window
// worker. Push never blocks; Pop blocks up to the idle timeout.
type FrameQueue struct {
	frames chan []byte
}

func NewFrameQueue(capacity int) *FrameQueue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &FrameQueue{frames: make(chan []byte, capacity)}
}

func (q *FrameQueue) Push(frame []byte) error {
	select {
	case q.frames <- frame:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *FrameQueue) Pop(ctx context.Context, timeout time.Duration) ([]byte, error) {
	if timeout <= 0 {
		timeout = DefaultIdleTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case frame := <-q.frames:
		return frame, nil
	case <-timer.C:
		return nil, ErrIdleTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *FrameQueue) Len() int {
	return len(q.frames)
}

func (q *FrameQueue) Cap() int {
	return cap(q.frames)
}
