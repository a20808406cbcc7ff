package backend

import (
	"log/slog"

	"github.com/kivra-dev/pocketdmg/memory"
	"github.com/kivra-dev/pocketdmg/video"
)

// Headless discards every frame and never reports input; it exists for
// test ROM automation and CI runs that only care about side effects
// observable through the session's own state (serial log output,
// instruction counters).
type Headless struct {
	frameCount uint64
	quit       bool
	maxFrames  uint64
}

// NewHeadless creates a headless backend that requests quit after
// maxFrames RenderFrame calls (0 means run forever).
func NewHeadless(maxFrames uint64) *Headless {
	return &Headless{maxFrames: maxFrames}
}

func (h *Headless) Init(cfg Config) error {
	slog.Info("running headless", "max_frames", h.maxFrames)
	return nil
}

func (h *Headless) RenderFrame(fb *video.FrameBuffer) error {
	h.frameCount++
	if h.maxFrames > 0 && h.frameCount >= h.maxFrames {
		h.quit = true
	}
	return nil
}

func (h *Headless) PollInput() memory.Keys { return memory.Keys{} }
func (h *Headless) ShouldQuit() bool       { return h.quit }
func (h *Headless) Cleanup() error         { return nil }
