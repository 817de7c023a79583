package ppu

// spriteHeight returns 16 when PPUCTRL selects 8x16 sprites, else 8.
func (p *PPU) spriteHeight() int {
	if p.ppuCtrl&spriteSizeMask != 0 {
		return 16
	}
	return 8
}

// evaluateSprites scans OAM in index order for sprites visible on the
// current scanline, keeping the first 8 in secondary OAM. A 9th in-range
// sprite sets the overflow flag; this is the corrected (non-buggy) scan
// permitted by §4.5/§9 in place of the original hardware's line-counter bug.
func (p *PPU) evaluateSprites() {
	p.spriteCount = 0
	height := p.spriteHeight()

	for i := 0; i < 64; i++ {
		y := int(p.oam[i*4])
		if p.scanline < y+1 || p.scanline >= y+1+height {
			continue
		}
		if p.spriteCount == 8 {
			p.ppuStatus |= overflowMask
			break
		}
		copy(p.secondaryOAM[p.spriteCount*4:p.spriteCount*4+4], p.oam[i*4:i*4+4])
		p.spriteSource[p.spriteCount] = uint8(i)
		p.spriteCount++
	}
}

// spritePixel returns the highest-priority opaque sprite pixel at (x, y),
// its original OAM index (for sprite-0-hit), and its behind-background flag.
// Sprites are walked in secondary-OAM order, which preserves OAM priority
// order: the first opaque pixel found wins (§4.5 Sprite rendering).
func (p *PPU) spritePixel(x, y int) (pixel, int, bool) {
	height := p.spriteHeight()

	for i := 0; i < p.spriteCount; i++ {
		base := i * 4
		sY := int(p.secondaryOAM[base])
		tile := p.secondaryOAM[base+1]
		attributes := p.secondaryOAM[base+2]
		sX := int(p.secondaryOAM[base+3])

		if x < sX || x >= sX+8 {
			continue
		}
		row := y - (sY + 1)
		if row < 0 || row >= height {
			continue
		}
		col := x - sX

		if attributes&0x40 != 0 { // horizontal flip
			col = 7 - col
		}
		if attributes&0x80 != 0 { // vertical flip
			row = height - 1 - row
		}

		colorIndex := p.spritePatternPixel(tile, col, row, height)
		if colorIndex == 0 {
			continue
		}

		paletteIndex := attributes & 0x03
		behindBackground := attributes&0x20 != 0
		return pixel{colorIndex: colorIndex, paletteIndex: paletteIndex}, int(p.spriteSource[i]), behindBackground
	}

	return pixel{}, -1, false
}

// spritePatternPixel fetches the 2-bit color index for one sprite pixel,
// selecting the pattern table and tile per PPUCTRL and, for 8x16 sprites,
// the tile's own bit 0 and which half of the tile the row falls in.
func (p *PPU) spritePatternPixel(tile uint8, col, row, height int) uint8 {
	var base uint16
	if height == 16 {
		if tile&0x01 != 0 {
			base = 0x1000
		}
		tile &^= 0x01
		if row >= 8 {
			tile++
			row -= 8
		}
	} else if p.ppuCtrl&spritePatternBit != 0 {
		base = 0x1000
	}

	address := base + uint16(tile)*16 + uint16(row)
	lowByte := p.memory.Read(address)
	highByte := p.memory.Read(address + 8)

	shift := 7 - col
	lowBit := (lowByte >> shift) & 1
	highBit := (highByte >> shift) & 1
	return (highBit << 1) | lowBit
}
