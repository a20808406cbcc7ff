// Package terminal implements a Backend that renders the windowed
// frame as a grid of block characters shaded by the 4-color palette,
// using tcell for both drawing and keyboard polling.
package terminal

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/kivra-dev/pocketdmg/backend"
	"github.com/kivra-dev/pocketdmg/memory"
	"github.com/kivra-dev/pocketdmg/video"
)

// shades from lightest to darkest, picked for a monochrome terminal
// palette rather than tcell's RGB support (which not every terminal
// honors faithfully).
var shades = [4]rune{'█', '▓', '▒', ' '}

type keyBinding struct {
	useRune bool
	key     tcell.Key
	rune    rune
	action  func(*memory.Keys, bool)
}

var bindings = []keyBinding{
	{key: tcell.KeyUp, action: func(k *memory.Keys, v bool) { k.Up = v }},
	{key: tcell.KeyDown, action: func(k *memory.Keys, v bool) { k.Down = v }},
	{key: tcell.KeyLeft, action: func(k *memory.Keys, v bool) { k.Left = v }},
	{key: tcell.KeyRight, action: func(k *memory.Keys, v bool) { k.Right = v }},
	{useRune: true, rune: 'z', action: func(k *memory.Keys, v bool) { k.A = v }},
	{useRune: true, rune: 'x', action: func(k *memory.Keys, v bool) { k.B = v }},
	{useRune: true, rune: '\r', action: func(k *memory.Keys, v bool) { k.Start = v }},
	{useRune: true, rune: ' ', action: func(k *memory.Keys, v bool) { k.Select = v }},
}

// Backend draws one terminal row per two pixel rows (most terminal
// fonts are roughly twice as tall as wide), shading each cell from the
// upper pixel of the pair with one of four block glyphs.
type Backend struct {
	screen tcell.Screen
	keys   memory.Keys
	quit   bool
	view   [video.ViewWidth * video.ViewHeight * 4]byte
}

func New() *Backend {
	return &Backend{}
}

func (b *Backend) Init(cfg backend.Config) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if cfg.Title != "" {
		screen.SetTitle(cfg.Title)
	}
	b.screen = screen
	return nil
}

func (b *Backend) RenderFrame(fb *video.FrameBuffer) error {
	b.pollEvents()

	fb.View(0, 0, b.view[:])
	for y := 0; y < video.ViewHeight; y += 2 {
		for x := 0; x < video.ViewWidth; x++ {
			shadeTop := shadeAt(b.view[:], x, y)
			b.screen.SetContent(x, y/2, shades[shadeTop], nil, tcell.StyleDefault)
		}
	}
	b.screen.Show()
	return nil
}

func shadeAt(view []byte, x, y int) int {
	i := (y*video.ViewWidth + x) * 4
	// index into shades by how dark the pixel is: darker RGBA sums are
	// lower, and the palette is ordered light-to-dark already.
	sum := int(view[i]) + int(view[i+1]) + int(view[i+2])
	switch {
	case sum > 400:
		return 0
	case sum > 270:
		return 1
	case sum > 120:
		return 2
	default:
		return 3
	}
}

func (b *Backend) pollEvents() {
	b.keys = memory.Keys{}
	for b.screen.HasPendingEvent() {
		ev := b.screen.PollEvent()
		switch e := ev.(type) {
		case *tcell.EventKey:
			// Terminals don't report key-up: treat every keypress as a
			// momentary press, held for one frame.
			if e.Key() == tcell.KeyEscape || e.Key() == tcell.KeyCtrlC {
				b.quit = true
				continue
			}
			b.applyKey(e, true)
		case *tcell.EventResize:
			b.screen.Sync()
		}
	}
}

func (b *Backend) applyKey(e *tcell.EventKey, pressed bool) {
	for _, bnd := range bindings {
		matches := bnd.useRune && e.Rune() == bnd.rune
		matches = matches || (!bnd.useRune && e.Key() == bnd.key)
		if matches {
			bnd.action(&b.keys, pressed)
		}
	}
}

func (b *Backend) PollInput() memory.Keys { return b.keys }
func (b *Backend) ShouldQuit() bool       { return b.quit }

func (b *Backend) Cleanup() error {
	if b.screen != nil {
		b.screen.Fini()
	}
	return nil
}
