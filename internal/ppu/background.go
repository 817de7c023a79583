package ppu

// pixel is a single rendered background or sprite pixel: a 2-bit color
// index (0 = transparent) and the palette group it selects from.
type pixel struct {
	colorIndex   uint8
	paletteIndex uint8
}

func (px pixel) opaque() bool { return px.colorIndex != 0 }

func (p *PPU) fetchNametableByte() {
	address := 0x2000 | (p.v & 0x0FFF)
	p.nextTileID = p.memory.Read(address)
}

// fetchAttributeByte reads the attribute byte for the tile at v and selects
// the 2-bit palette group for the quadrant the tile falls in.
func (p *PPU) fetchAttributeByte() {
	address := 0x23C0 | (p.v & 0x0C00) | ((p.v >> 4) & 0x38) | ((p.v >> 2) & 0x07)
	attribute := p.memory.Read(address)
	if p.v&0x0040 != 0 { // bottom half of the 4x4-tile block
		attribute >>= 4
	}
	if p.v&0x0002 != 0 { // right half of the 4x4-tile block
		attribute >>= 2
	}
	p.nextAttribute = attribute & 0x03
}

func (p *PPU) backgroundPatternBase() uint16 {
	if p.ppuCtrl&bgPatternMask != 0 {
		return 0x1000
	}
	return 0x0000
}

func (p *PPU) fetchPatternLow() {
	fineY := (p.v >> 12) & 0x0007
	address := p.backgroundPatternBase() + uint16(p.nextTileID)*16 + fineY
	p.nextPatternLow = p.memory.Read(address)
}

func (p *PPU) fetchPatternHigh() {
	fineY := (p.v >> 12) & 0x0007
	address := p.backgroundPatternBase() + uint16(p.nextTileID)*16 + fineY + 8
	p.nextPatternHigh = p.memory.Read(address)
}

// loadBackgroundShifters reloads the low byte of each 16-bit shift register
// from the latches fetched over the preceding 8 dots (§4.5).
func (p *PPU) loadBackgroundShifters() {
	p.bgShiftPatternLow = (p.bgShiftPatternLow & 0xFF00) | uint16(p.nextPatternLow)
	p.bgShiftPatternHigh = (p.bgShiftPatternHigh & 0xFF00) | uint16(p.nextPatternHigh)

	var attribLow, attribHigh uint16
	if p.nextAttribute&0x01 != 0 {
		attribLow = 0x00FF
	}
	if p.nextAttribute&0x02 != 0 {
		attribHigh = 0x00FF
	}
	p.bgShiftAttribLow = (p.bgShiftAttribLow & 0xFF00) | attribLow
	p.bgShiftAttribHigh = (p.bgShiftAttribHigh & 0xFF00) | attribHigh
}

func (p *PPU) shiftBackgroundRegisters() {
	p.bgShiftPatternLow <<= 1
	p.bgShiftPatternHigh <<= 1
	p.bgShiftAttribLow <<= 1
	p.bgShiftAttribHigh <<= 1
}

// backgroundPixel reads the current output bit of all four shift registers
// at bit position 15-x, so fine-X scroll is honored on every pixel, unlike
// the force-disabled-fine-X path this replaces.
func (p *PPU) backgroundPixel() pixel {
	mux := uint16(0x8000) >> p.x

	var lo, hi uint8
	if p.bgShiftPatternLow&mux != 0 {
		lo = 1
	}
	if p.bgShiftPatternHigh&mux != 0 {
		hi = 1
	}

	var paletteLo, paletteHi uint8
	if p.bgShiftAttribLow&mux != 0 {
		paletteLo = 1
	}
	if p.bgShiftAttribHigh&mux != 0 {
		paletteHi = 1
	}

	return pixel{
		colorIndex:   (hi << 1) | lo,
		paletteIndex: (paletteHi << 1) | paletteLo,
	}
}

// renderPixel composites the background and sprite pixel at (x, y) and
// writes the result into the frame buffer (§4.5 Pixel compositing).
func (p *PPU) renderPixel(x, y int) {
	bg := pixel{}
	if p.backgroundEnabled() && !(x < 8 && p.ppuMask&bgLeftColumnMask == 0) {
		bg = p.backgroundPixel()
	}

	sp, spriteIndex, behindBackground := pixel{}, -1, false
	if p.spritesEnabled() && !(x < 8 && p.ppuMask&spriteLeftColumnMask == 0) {
		sp, spriteIndex, behindBackground = p.spritePixel(x, y)
	}

	if spriteIndex == 0 && bg.opaque() && sp.opaque() && x >= 1 && x <= 254 {
		p.checkSprite0Hit()
	}

	color := p.compositeColor(bg, sp, behindBackground)
	p.frameBuffer[y*256+x] = color
}

func (p *PPU) compositeColor(bg, sp pixel, spriteBehindBackground bool) uint32 {
	switch {
	case !bg.opaque() && !sp.opaque():
		return p.paletteColor(0, 0, true)
	case !sp.opaque():
		return p.paletteColor(bg.paletteIndex, bg.colorIndex, true)
	case !bg.opaque():
		return p.paletteColor(sp.paletteIndex, sp.colorIndex, false)
	case spriteBehindBackground:
		return p.paletteColor(bg.paletteIndex, bg.colorIndex, true)
	default:
		return p.paletteColor(sp.paletteIndex, sp.colorIndex, false)
	}
}

func (p *PPU) checkSprite0Hit() {
	p.ppuStatus |= sprite0Mask
}

// paletteColor resolves a 2-bit color index within a palette group to an
// ARGB color. background selects the $3F00-$3F0F range, sprites $3F10-$3F1F;
// color index 0 always resolves to the universal backdrop ($3F00).
func (p *PPU) paletteColor(paletteIndex, colorIndex uint8, background bool) uint32 {
	var address uint16
	switch {
	case colorIndex == 0:
		address = 0x3F00
	case background:
		address = 0x3F00 + uint16(paletteIndex)*4 + uint16(colorIndex)
	default:
		address = 0x3F10 + uint16(paletteIndex)*4 + uint16(colorIndex)
	}
	return nesColorToARGB(p.memory.Read(address))
}
