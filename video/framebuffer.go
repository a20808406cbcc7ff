// Package video implements the per-frame projector: it renders the
// full 256x256 background map plus sprites into an RGBA framebuffer
// once per frame, leaving per-scanline PPU timing and the 160x144
// windowed crop to the host (§1 non-goal, §4.8). The window layer is
// not drawn.
package video

const (
	// FrameWidth and FrameHeight are the full background map's pixel
	// dimensions, not the windowed 160x144 view a real LCD shows.
	FrameWidth  = 256
	FrameHeight = 256

	// ViewWidth and ViewHeight are the host's visible window size.
	ViewWidth  = 160
	ViewHeight = 144
)

// GBColor is a 2-bit Game Boy color index (0-3).
type GBColor uint8

// RGBA is the documented 4-color palette: index 0 is the lightest
// shade, index 3 the darkest.
var RGBA = [4][4]byte{
	{186, 218, 85, 255},
	{130, 153, 59, 255},
	{74, 87, 34, 255},
	{19, 22, 8, 255},
}

// FrameBuffer is a 256x256 RGBA buffer, four bytes per pixel.
type FrameBuffer struct {
	Pix [FrameWidth * FrameHeight * 4]byte
}

func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

// SetPixel writes one palette-resolved color at (x, y), wrapping both
// coordinates mod 256 since the map itself tiles seamlessly.
func (f *FrameBuffer) SetPixel(x, y int, color GBColor) {
	x &= FrameWidth - 1
	y &= FrameHeight - 1
	i := (y*FrameWidth + x) * 4
	rgba := RGBA[color&0x03]
	copy(f.Pix[i:i+4], rgba[:])
}

// Sample reads back the RGBA quad at (x, y) after wraparound, the
// operation a host uses per §6's windowed SCX/SCY sampling contract.
func (f *FrameBuffer) Sample(x, y int) [4]byte {
	x &= FrameWidth - 1
	y &= FrameHeight - 1
	i := (y*FrameWidth + x) * 4
	var out [4]byte
	copy(out[:], f.Pix[i:i+4])
	return out
}

// View copies a ViewWidth x ViewHeight window starting at (scx, scy),
// wrapping around the 256x256 map edges, into dst (already sized for
// ViewWidth*ViewHeight*4 bytes).
func (f *FrameBuffer) View(scx, scy byte, dst []byte) {
	for row := 0; row < ViewHeight; row++ {
		srcY := (int(scy) + row) & (FrameHeight - 1)
		for col := 0; col < ViewWidth; col++ {
			srcX := (int(scx) + col) & (FrameWidth - 1)
			si := (srcY*FrameWidth + srcX) * 4
			di := (row*ViewWidth + col) * 4
			copy(dst[di:di+4], f.Pix[si:si+4])
		}
	}
}
