//go:build !sdl2

package sdl2

import (
	"fmt"

	"github.com/kivra-dev/pocketdmg/backend"
	"github.com/kivra-dev/pocketdmg/memory"
	"github.com/kivra-dev/pocketdmg/video"
)

// Backend is a stand-in used when the binary is built without the
// sdl2 tag; Init and RenderFrame fail and ShouldQuit reports true, so
// callers get a clear message instead of a silent no-op window.
type Backend struct{}

func New() *Backend { return &Backend{} }

var errNotAvailable = fmt.Errorf("sdl2: backend not available - build with -tags sdl2")

func (b *Backend) Init(cfg backend.Config) error          { return errNotAvailable }
func (b *Backend) RenderFrame(fb *video.FrameBuffer) error { return errNotAvailable }
func (b *Backend) PollInput() memory.Keys                  { return memory.Keys{} }
func (b *Backend) ShouldQuit() bool                        { return true }
func (b *Backend) Cleanup() error                          { return nil }
