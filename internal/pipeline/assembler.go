package pipeline

import "fmt"

// AssemblerConfig controls windowing. Validation happens once at
// construction; the hot path assumes a valid config.
type AssemblerConfig struct {
	// WindowSize is the number of frames per window.
	WindowSize int
	// StepSize is how many frames consecutive windows start apart. A step
	// smaller than the window overlaps; a step larger than the window leaves
	// gaps whose frames never appear in any window.
	StepSize int
	// FPS is the effective frame rate of the incoming stream, used only to
	// derive window timestamps.
	FPS float64
}

func (c AssemblerConfig) Validate() error {
	if c.WindowSize <= 0 {
		return fmt.Errorf("window size must be > 0, got %d", c.WindowSize)
	}
	if c.StepSize <= 0 {
		return fmt.Errorf("step size must be > 0, got %d", c.StepSize)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("frames per second must be > 0, got %v", c.FPS)
	}
	return nil
}

// Assembler turns an ordered frame stream into fixed-size, possibly
// overlapping windows. It emits only full windows; a partial trailing window
// waits for more frames and is never emitted.
//
// Not safe for concurrent use; the single worker goroutine owns it.
type Assembler struct {
	cfg AssemblerConfig

	buffer      [][]byte
	framesSeen  int
	windowIndex int
	// skip counts gap frames still owed when the step exceeds the window
	// size: they are consumed on arrival without entering the buffer, so
	// they never appear in any window.
	skip int
}

func NewAssembler(cfg AssemblerConfig) (*Assembler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Assembler{cfg: cfg}, nil
}

// Push appends one frame and returns every window completed by it, in
// window-index order. Most calls return nil.
func (a *Assembler) Push(frame []byte) []Window {
	if a.skip > 0 {
		a.skip--
		a.framesSeen++
		return nil
	}
	a.buffer = append(a.buffer, frame)
	a.framesSeen++

	var out []Window
	for len(a.buffer) >= a.cfg.WindowSize {
		startIdx := a.framesSeen - len(a.buffer)

		frames := make([][]byte, a.cfg.WindowSize)
		copy(frames, a.buffer[:a.cfg.WindowSize])

		out = append(out, Window{
			Index:     a.windowIndex,
			StartIdx:  startIdx,
			EndIdx:    startIdx + a.cfg.WindowSize,
			TStartSec: float64(startIdx) / a.cfg.FPS,
			TEndSec:   float64(startIdx+a.cfg.WindowSize) / a.cfg.FPS,
			Frames:    frames,
		})
		a.windowIndex++

		advance := a.cfg.StepSize
		if advance > len(a.buffer) {
			a.skip = advance - len(a.buffer)
			advance = len(a.buffer)
		}
		a.buffer = a.buffer[advance:]
	}
	return out
}

// FramesSeen reports the total number of frames pushed so far.
func (a *Assembler) FramesSeen() int {
	return a.framesSeen
}

// Buffered reports how many frames are waiting for the next window.
func (a *Assembler) Buffered() int {
	return len(a.buffer)
}
