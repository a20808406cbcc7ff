//go:build sdl2

// Package sdl2 implements a windowed Backend using go-sdl2. Building it
// requires SDL2 development libraries installed; default builds use
// the stub in stub.go instead.
package sdl2

import (
	"fmt"

	"github.com/kivra-dev/pocketdmg/backend"
	"github.com/kivra-dev/pocketdmg/memory"
	"github.com/kivra-dev/pocketdmg/video"
	"github.com/veandco/go-sdl2/sdl"
)

const pixelScale = 3

// Backend renders the windowed 160x144 view through an SDL texture
// streamed fresh every frame.
type Backend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture

	keys memory.Keys
	quit bool

	view [video.ViewWidth * video.ViewHeight * 4]byte
}

func New() *Backend {
	return &Backend{}
}

func (b *Backend) Init(cfg backend.Config) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("sdl2: %w", err)
	}

	scale := cfg.Scale
	if scale <= 0 {
		scale = pixelScale
	}

	window, err := sdl.CreateWindow(
		cfg.Title,
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(video.ViewWidth*scale), int32(video.ViewHeight*scale),
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("sdl2: creating window: %w", err)
	}
	b.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("sdl2: creating renderer: %w", err)
	}
	b.renderer = renderer

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_ABGR8888, sdl.TEXTUREACCESS_STREAMING,
		int32(video.ViewWidth), int32(video.ViewHeight),
	)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("sdl2: creating texture: %w", err)
	}
	b.texture = texture

	return nil
}

func (b *Backend) RenderFrame(fb *video.FrameBuffer) error {
	b.pollEvents()

	fb.View(0, 0, b.view[:])
	if err := b.texture.Update(nil, b.view[:], video.ViewWidth*4); err != nil {
		return fmt.Errorf("sdl2: updating texture: %w", err)
	}

	b.renderer.Clear()
	b.renderer.Copy(b.texture, nil, nil)
	b.renderer.Present()
	return nil
}

func (b *Backend) pollEvents() {
	for {
		event := sdl.PollEvent()
		if event == nil {
			return
		}
		switch e := event.(type) {
		case *sdl.QuitEvent:
			b.quit = true
		case *sdl.KeyboardEvent:
			pressed := e.State == sdl.PRESSED
			switch e.Keysym.Sym {
			case sdl.K_UP:
				b.keys.Up = pressed
			case sdl.K_DOWN:
				b.keys.Down = pressed
			case sdl.K_LEFT:
				b.keys.Left = pressed
			case sdl.K_RIGHT:
				b.keys.Right = pressed
			case sdl.K_z:
				b.keys.A = pressed
			case sdl.K_x:
				b.keys.B = pressed
			case sdl.K_RETURN:
				b.keys.Start = pressed
			case sdl.K_SPACE:
				b.keys.Select = pressed
			case sdl.K_ESCAPE:
				b.quit = true
			}
		}
	}
}

func (b *Backend) PollInput() memory.Keys { return b.keys }
func (b *Backend) ShouldQuit() bool       { return b.quit }

func (b *Backend) Cleanup() error {
	if b.texture != nil {
		b.texture.Destroy()
	}
	if b.renderer != nil {
		b.renderer.Destroy()
	}
	if b.window != nil {
		b.window.Destroy()
	}
	sdl.Quit()
	return nil
}
