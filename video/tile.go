package video

import "github.com/kivra-dev/pocketdmg/bit"

// TileRow is one 8-pixel row of a tile, stored Game Boy-style as two
// bit planes: Low contributes bit 0 of each pixel's color index, High
// contributes bit 1. Bit 7 of each byte is the leftmost pixel.
type TileRow struct {
	Low, High byte
}

// Pixel extracts the 2-bit color index (0-3) at x (0 = leftmost).
func (t TileRow) Pixel(x int) GBColor {
	i := uint8(7 - x)
	var v GBColor
	if bit.IsSet(i, t.Low) {
		v |= 1
	}
	if bit.IsSet(i, t.High) {
		v |= 2
	}
	return v
}

// PixelFlipped extracts the pixel as if the row were horizontally
// mirrored, for sprites with the X-flip attribute set.
func (t TileRow) PixelFlipped(x int) GBColor {
	i := uint8(x)
	var v GBColor
	if bit.IsSet(i, t.Low) {
		v |= 1
	}
	if bit.IsSet(i, t.High) {
		v |= 2
	}
	return v
}

// Tile is a complete 8x8 tile pattern: 8 rows, 16 bytes in VRAM.
type Tile struct {
	Rows [8]TileRow
}

func (t Tile) Pixel(x, y int) GBColor {
	return t.Rows[y].Pixel(x)
}

// MemoryReader is the read-only view tile fetches need from VRAM.
type MemoryReader interface {
	Read(address uint16) byte
}

// FetchTile reads a tile's 16 bytes starting at baseAddr.
func FetchTile(mem MemoryReader, baseAddr uint16) Tile {
	var t Tile
	for row := 0; row < 8; row++ {
		a := baseAddr + uint16(row*2)
		t.Rows[row] = TileRow{Low: mem.Read(a), High: mem.Read(a + 1)}
	}
	return t
}

// TileAddress resolves a tile index to its VRAM address according to
// LCDC bit 4: the unsigned addressing mode bases at 0x8000, the signed
// mode at 0x9000 and treats the index as a signed offset (§3).
func TileAddress(index byte, unsignedMode bool) uint16 {
	if unsignedMode {
		return 0x8000 + uint16(index)*16
	}
	return uint16(int32(0x9000) + int32(int8(index))*16)
}
