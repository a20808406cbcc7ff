// Package backend defines the host-facing surface a windowing/input
// implementation plugs into: rendering the projected frame and
// translating platform input into the joypad's Keys snapshot (§6 —
// windowing, input, and blitting are host concerns, not core ones).
package backend

import (
	"github.com/kivra-dev/pocketdmg/memory"
	"github.com/kivra-dev/pocketdmg/video"
)

// Config holds the display parameters a backend needs at startup.
type Config struct {
	Title string
	Scale int
}

// Backend is a complete host platform: it renders frames and reports
// input and quit requests back to the session loop.
type Backend interface {
	Init(cfg Config) error
	// RenderFrame blits the session's last rendered 256x256 map,
	// windowed to the visible 160x144 area via FrameBuffer.View.
	RenderFrame(fb *video.FrameBuffer) error
	// PollInput returns the current pressed/released snapshot.
	PollInput() memory.Keys
	ShouldQuit() bool
	Cleanup() error
}
