package video

import "github.com/kivra-dev/pocketdmg/bit"

// LCDC bit positions (§3).
const (
	lcdcBGEnable       = 0
	lcdcSpriteEnable   = 1
	lcdcSpriteSize     = 2
	lcdcBGTileMap      = 3
	lcdcTileDataSelect = 4
	lcdcWindowEnable   = 5
	lcdcWindowTileMap  = 6
	lcdcLCDEnable      = 7
)

// Projector renders one complete frame from VRAM/OAM/the LCD register
// file into a 256x256 map-space framebuffer. It is driven once per
// frame by the scheduler, not once per scanline (§4.8): there is no
// mode-timing state machine here, only a full-map redraw.
type Projector struct {
	fb      *FrameBuffer
	bgShade [FrameWidth * FrameHeight]byte
}

func NewProjector() *Projector {
	return &Projector{fb: NewFrameBuffer()}
}

// lcdRegs is the read-only register snapshot the projector needs, at
// the addresses §3 assigns them.
type lcdRegs struct {
	lcdc, scy, scx, bgp, obp0, obp1, wy, wx byte
}

func readLCDRegs(mem MemoryReader) lcdRegs {
	return lcdRegs{
		lcdc: mem.Read(0xFF40),
		scy:  mem.Read(0xFF42),
		scx:  mem.Read(0xFF43),
		bgp:  mem.Read(0xFF47),
		obp0: mem.Read(0xFF48),
		obp1: mem.Read(0xFF49),
		wy:   mem.Read(0xFF4A),
		wx:   mem.Read(0xFF4B),
	}
}

// RenderFrame rebuilds the 256x256 framebuffer from current VRAM/OAM
// state and returns it. The caller applies SCX/SCY to window the
// result down to the 160x144 visible area (§6 host contract).
//
// Sprites are positioned in map space by adding the current SCX/SCY
// to their screen-space OAM coordinates: real hardware places sprites
// in screen space (unaffected by scrolling), but since this buffer
// represents the whole scrollable map rather than the cropped screen,
// shifting sprites by the same scroll offset is what makes them land
// in the spot the host's later windowed sample will show.
func (p *Projector) RenderFrame(mem MemoryReader) *FrameBuffer {
	regs := readLCDRegs(mem)

	if !bit.IsSet(lcdcLCDEnable, regs.lcdc) {
		return p.fb
	}

	p.renderBackground(mem, regs)
	p.renderSprites(mem, regs)

	return p.fb
}

func (p *Projector) renderBackground(mem MemoryReader, regs lcdRegs) {
	unsignedMode := bit.IsSet(lcdcTileDataSelect, regs.lcdc)
	tileMapBase := uint16(0x9800)
	if bit.IsSet(lcdcBGTileMap, regs.lcdc) {
		tileMapBase = 0x9C00
	}

	bgEnabled := bit.IsSet(lcdcBGEnable, regs.lcdc)

	for ty := 0; ty < 32; ty++ {
		for tx := 0; tx < 32; tx++ {
			var idx GBColor
			if bgEnabled {
				mapAddr := tileMapBase + uint16(ty*32+tx)
				tileIndex := mem.Read(mapAddr)
				tile := FetchTile(mem, TileAddress(tileIndex, unsignedMode))
				for py := 0; py < 8; py++ {
					for px := 0; px < 8; px++ {
						idx = tile.Pixel(px, py)
						x, y := tx*8+px, ty*8+py
						p.bgShade[y*FrameWidth+x] = byte(idx)
						p.fb.SetPixel(x, y, applyPalette(regs.bgp, idx))
					}
				}
			} else {
				for py := 0; py < 8; py++ {
					for px := 0; px < 8; px++ {
						x, y := tx*8+px, ty*8+py
						p.bgShade[y*FrameWidth+x] = 0
						p.fb.SetPixel(x, y, applyPalette(regs.bgp, 0))
					}
				}
			}
		}
	}
}

func (p *Projector) renderSprites(mem MemoryReader, regs lcdRegs) {
	if !bit.IsSet(lcdcSpriteEnable, regs.lcdc) {
		return
	}

	height := 8
	if bit.IsSet(lcdcSpriteSize, regs.lcdc) {
		height = 16
	}

	for i := 0; i < 40; i++ {
		base := uint16(0xFE00) + uint16(i*4)
		rawY := mem.Read(base)
		rawX := mem.Read(base + 1)
		tileIndex := mem.Read(base + 2)
		flags := mem.Read(base + 3)

		screenY := int(rawY) - 16
		screenX := int(rawX) - 8
		mapX := screenX + int(regs.scx)
		mapY := screenY + int(regs.scy)

		paletteOBP1 := bit.IsSet(4, flags)
		flipX := bit.IsSet(5, flags)
		flipY := bit.IsSet(6, flags)
		behindBG := bit.IsSet(7, flags)

		palette := regs.obp0
		if paletteOBP1 {
			palette = regs.obp1
		}

		for row := 0; row < height; row++ {
			tileRow := row
			if flipY {
				tileRow = height - 1 - row
			}

			var addr uint16
			switch {
			case height == 16 && tileRow < 8:
				addr = 0x8000 + uint16(tileIndex&0xFE)*16 + uint16(tileRow*2)
			case height == 16:
				addr = 0x8000 + uint16(tileIndex|0x01)*16 + uint16((tileRow-8)*2)
			default:
				addr = 0x8000 + uint16(tileIndex)*16 + uint16(tileRow*2)
			}

			tr := TileRow{Low: mem.Read(addr), High: mem.Read(addr + 1)}

			for col := 0; col < 8; col++ {
				var colorIdx GBColor
				if flipX {
					colorIdx = tr.PixelFlipped(col)
				} else {
					colorIdx = tr.Pixel(col)
				}
				if colorIdx == 0 {
					continue
				}

				x, y := mapX+col, mapY+row
				bx, by := x&(FrameWidth-1), y&(FrameHeight-1)
				if behindBG && p.bgShade[by*FrameWidth+bx] != 0 {
					continue
				}
				p.fb.SetPixel(x, y, applyPalette(palette, colorIdx))
			}
		}
	}
}

func applyPalette(palette byte, colorIndex GBColor) GBColor {
	return GBColor((palette >> (uint(colorIndex) * 2)) & 0x03)
}
