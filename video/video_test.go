package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeVRAM struct {
	data map[uint16]byte
}

func newFakeVRAM() *fakeVRAM { return &fakeVRAM{data: make(map[uint16]byte)} }

func (f *fakeVRAM) Read(address uint16) byte { return f.data[address] }
func (f *fakeVRAM) set(address uint16, v byte) { f.data[address] = v }

func TestTileRowPixel(t *testing.T) {
	// 0x3C / 0x7E, per the canonical docs example: colors 0 2 3 3 3 3 2 0
	row := TileRow{Low: 0x3C, High: 0x7E}
	want := []GBColor{0, 2, 3, 3, 3, 3, 2, 0}
	for x, w := range want {
		assert.Equal(t, w, row.Pixel(x))
	}
}

func TestTileAddressUnsignedMode(t *testing.T) {
	assert.Equal(t, uint16(0x8000), TileAddress(0, true))
	assert.Equal(t, uint16(0x8FF0), TileAddress(255, true))
}

func TestTileAddressSignedMode(t *testing.T) {
	assert.Equal(t, uint16(0x9000), TileAddress(0, false))
	assert.Equal(t, uint16(0x8FF0), TileAddress(0xFF, false)) // index -1
}

func TestRenderFrameDisabledLCDReturnsExistingBuffer(t *testing.T) {
	mem := newFakeVRAM()
	mem.set(0xFF40, 0x00) // LCD off

	p := NewProjector()
	fb := p.RenderFrame(mem)

	assert.NotNil(t, fb)
}

func TestRenderBackgroundSolidTile(t *testing.T) {
	mem := newFakeVRAM()
	mem.set(0xFF40, 0x91) // LCD+BG enabled, unsigned tile data, map 0x9800
	mem.set(0xFF47, 0xE4) // identity BGP: 3,2,1,0

	// tile index 0 everywhere, tile 0 is solid color 3 (0xFF,0xFF)
	for row := 0; row < 8; row++ {
		mem.set(0x8000+uint16(row*2), 0xFF)
		mem.set(0x8000+uint16(row*2)+1, 0xFF)
	}

	p := NewProjector()
	fb := p.RenderFrame(mem)

	color := fb.Sample(0, 0)
	assert.Equal(t, RGBA[3], color)
}

func TestSpriteTransparentColorZeroSkipped(t *testing.T) {
	mem := newFakeVRAM()
	mem.set(0xFF40, 0x93) // LCD+BG+sprites enabled
	mem.set(0xFF47, 0xE4)
	mem.set(0xFF48, 0xE4)

	// background tile 0: solid color 1
	for row := 0; row < 8; row++ {
		mem.set(0x8000+uint16(row*2), 0xFF)
		mem.set(0x8000+uint16(row*2)+1, 0x00)
	}

	// sprite 0 at screen (0,0) -> OAM Y=16,X=8, tile 1, all transparent (00,00)
	mem.set(0xFE00, 16)
	mem.set(0xFE01, 8)
	mem.set(0xFE02, 1)
	mem.set(0xFE03, 0x00)

	p := NewProjector()
	fb := p.RenderFrame(mem)

	assert.Equal(t, RGBA[1], fb.Sample(0, 0))
}
