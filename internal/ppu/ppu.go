// Package ppu implements the 2C02 Picture Processing Unit: dot/scanline
// timing, the loopy v/t/x/w scroll registers, the background shift-register
// pipeline, sprite evaluation and compositing, and VBlank/NMI signalling.
package ppu

// Memory is the PPU-side bus: pattern tables via the cartridge mapper,
// nametable RAM through the mirroring function, and palette RAM (§4.3).
type Memory interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

const (
	vblankMask    = 0x80
	sprite0Mask   = 0x40
	overflowMask  = 0x20
	nmiEnableMask = 0x80

	showBackgroundMask   = 0x08
	showSpritesMask      = 0x10
	bgLeftColumnMask     = 0x02
	spriteLeftColumnMask = 0x04

	spriteSizeMask   = 0x20
	bgPatternMask    = 0x10
	spritePatternBit = 0x08
	vramIncrementBit = 0x04

	dotsPerScanline     = 341
	visibleScanlines    = 240
	postRenderScanline  = 240
	preRenderScanline   = -1
	vblankStartScanline = 241
	lastScanline        = 260
)

// PPU is the 2C02 picture processing unit.
type PPU struct {
	ppuCtrl   uint8
	ppuMask   uint8
	ppuStatus uint8
	oamAddr   uint8

	// Loopy scroll registers (§4.5, §9: kept as PPU fields, never aliased).
	v uint16
	t uint16
	x uint8
	w bool

	memory Memory

	scanline      int
	dot           int
	frameCount    uint64
	oddFrame      bool
	frameComplete bool

	readBuffer uint8

	oam          [256]uint8
	secondaryOAM [8 * 4]uint8
	spriteSource [8]uint8 // original OAM index of each secondary-OAM slot, for sprite-0 tracking
	spriteCount  int

	// Background fetch/shift pipeline.
	nextTileID      uint8
	nextAttribute   uint8
	nextPatternLow  uint8
	nextPatternHigh uint8

	bgShiftPatternLow  uint16
	bgShiftPatternHigh uint16
	bgShiftAttribLow   uint16
	bgShiftAttribHigh  uint16

	frameBuffer [256 * 240]uint32

	nmiLine bool

	// openBus is the last byte written to, or read off of, a PPU register;
	// returned for the write-only registers and the low 5 bits of
	// PPUSTATUS, consistent with the CPU-side bus's open-bus tracking.
	openBus uint8
}

// New creates a PPU. Call Reset before use.
func New() *PPU {
	return &PPU{}
}

// SetMemory attaches the PPU-side bus.
func (p *PPU) SetMemory(memory Memory) { p.memory = memory }

// Reset clears scroll latches, shift registers, and tile latches, and
// starts at the pre-render scanline (§3 Lifecycle summary).
func (p *PPU) Reset() {
	p.ppuCtrl = 0
	p.ppuMask = 0
	p.ppuStatus = 0
	p.oamAddr = 0

	p.v, p.t, p.x, p.w = 0, 0, 0, false

	p.scanline = preRenderScanline
	p.dot = 0
	p.frameComplete = false
	p.oddFrame = false
	p.readBuffer = 0

	p.nextTileID, p.nextAttribute = 0, 0
	p.nextPatternLow, p.nextPatternHigh = 0, 0
	p.bgShiftPatternLow, p.bgShiftPatternHigh = 0, 0
	p.bgShiftAttribLow, p.bgShiftAttribHigh = 0, 0

	p.spriteCount = 0
	p.nmiLine = false
	p.openBus = 0

	for i := range p.oam {
		p.oam[i] = 0
	}
	for i := range p.frameBuffer {
		p.frameBuffer[i] = 0
	}
}

// NMILine reports the current level of the PPU's NMI output. The driver
// feeds this into the CPU's SetNMI every cycle; the CPU itself detects the
// rising edge (§5 Ordering guarantees: PPU precedes CPU within a cycle).
func (p *PPU) NMILine() bool { return p.nmiLine }

// FrameComplete reports whether the PPU finished scanline 260 (wrapping to
// the pre-render scanline) since the last call to ClearFrameComplete.
func (p *PPU) FrameComplete() bool { return p.frameComplete }

// ClearFrameComplete acknowledges a completed frame.
func (p *PPU) ClearFrameComplete() { p.frameComplete = false }

// FrameBuffer returns the 256x240 ARGB8888 pixel buffer, left-to-right,
// top-to-bottom (§6).
func (p *PPU) FrameBuffer() *[256 * 240]uint32 { return &p.frameBuffer }

// FrameCount returns the number of frames completed.
func (p *PPU) FrameCount() uint64 { return p.frameCount }

// ReadRegister reads CPU-visible PPU register address (already folded into
// $2000-$2007 by the bus decoder).
func (p *PPU) ReadRegister(address uint16) uint8 {
	switch address & 0x0007 {
	case 0, 1, 3, 5, 6: // PPUCTRL, PPUMASK, OAMADDR, PPUSCROLL, PPUADDR: write-only
		return p.openBus
	case 2:
		status := (p.ppuStatus & 0xE0) | (p.openBus & 0x1F)
		p.ppuStatus &^= vblankMask
		p.w = false
		p.openBus = status
		return status
	case 4:
		value := p.oam[p.oamAddr]
		p.openBus = value
		return value
	case 7:
		data := p.readPPUData()
		p.openBus = data
		return data
	default:
		return p.openBus
	}
}

// WriteRegister writes a CPU-visible PPU register.
func (p *PPU) WriteRegister(address uint16, value uint8) {
	p.openBus = value

	switch address & 0x0007 {
	case 0: // PPUCTRL
		p.ppuCtrl = value
		p.t = (p.t & 0xF3FF) | ((uint16(value) & 0x03) << 10)
		p.updateNMILine()
	case 1: // PPUMASK
		p.ppuMask = value
	case 2: // PPUSTATUS: read-only
	case 3: // OAMADDR
		p.oamAddr = value
	case 4: // OAMDATA
		p.oam[p.oamAddr] = value
		p.oamAddr++
	case 5: // PPUSCROLL
		p.writeScroll(value)
	case 6: // PPUADDR
		p.writeAddr(value)
	case 7: // PPUDATA
		p.writePPUData(value)
	}
}

// WriteOAM stores a byte directly into OAM, used by the bus's OAMDMA.
func (p *PPU) WriteOAM(address uint8, value uint8) { p.oam[address] = value }

// OAMAddr exposes the current OAMADDR, which OAMDMA writes starting from.
func (p *PPU) OAMAddr() uint8 { return p.oamAddr }

func (p *PPU) backgroundEnabled() bool { return p.ppuMask&showBackgroundMask != 0 }
func (p *PPU) spritesEnabled() bool    { return p.ppuMask&showSpritesMask != 0 }
func (p *PPU) renderingEnabled() bool  { return p.backgroundEnabled() || p.spritesEnabled() }

func (p *PPU) updateNMILine() {
	p.nmiLine = p.ppuCtrl&nmiEnableMask != 0 && p.ppuStatus&vblankMask != 0
}

func (p *PPU) writeScroll(value uint8) {
	if !p.w {
		p.t = (p.t & 0xFFE0) | (uint16(value) >> 3)
		p.x = value & 0x07
		p.w = true
	} else {
		p.t = (p.t & 0x8FFF) | ((uint16(value) & 0x07) << 12)
		p.t = (p.t & 0xFC1F) | ((uint16(value) & 0xF8) << 2)
		p.w = false
	}
}

func (p *PPU) writeAddr(value uint8) {
	if !p.w {
		p.t = (p.t & 0x00FF) | ((uint16(value) & 0x3F) << 8)
		p.w = true
	} else {
		p.t = (p.t & 0xFF00) | uint16(value)
		p.v = p.t
		p.w = false
	}
}

// readPPUData implements the $2007 buffered-read behavior (§4.5).
func (p *PPU) readPPUData() uint8 {
	var data uint8
	if p.v >= 0x3F00 {
		data = p.memory.Read(p.v)
		p.readBuffer = p.memory.Read(p.v & 0x2FFF)
	} else {
		data = p.readBuffer
		p.readBuffer = p.memory.Read(p.v)
	}
	p.advanceVRAMAddress()
	return data
}

func (p *PPU) writePPUData(value uint8) {
	p.memory.Write(p.v, value)
	p.advanceVRAMAddress()
}

func (p *PPU) advanceVRAMAddress() {
	if p.ppuCtrl&vramIncrementBit != 0 {
		p.v += 32
	} else {
		p.v++
	}
	p.v &= 0x3FFF
}

// Tick advances the PPU by one dot. The bus calls this three times per CPU
// cycle (§5).
func (p *PPU) Tick() {
	switch {
	case p.scanline >= preRenderScanline && p.scanline < visibleScanlines:
		p.scanlineCycle()
	case p.scanline == vblankStartScanline && p.dot == 1:
		p.ppuStatus |= vblankMask
		p.updateNMILine()
	}

	if p.scanline >= 0 && p.scanline < visibleScanlines && p.dot >= 1 && p.dot <= 256 {
		p.renderPixel(p.dot-1, p.scanline)
	}

	p.advanceDot()
}

func (p *PPU) advanceDot() {
	p.dot++
	// Pre-render scanline is one dot shorter on odd frames when rendering
	// is enabled (the well-known NTSC skipped dot).
	skip := p.scanline == preRenderScanline && p.oddFrame && p.renderingEnabled()
	limit := dotsPerScanline
	if skip {
		limit--
	}
	if p.dot >= limit {
		p.dot = 0
		p.scanline++
		if p.scanline > lastScanline {
			p.scanline = preRenderScanline
			p.frameCount++
			p.oddFrame = !p.oddFrame
			p.frameComplete = true
		}
	}
}

// scanlineCycle runs the background fetch/shift pipeline and sprite
// evaluation for pre-render and visible scanlines (§4.5).
func (p *PPU) scanlineCycle() {
	if p.scanline == preRenderScanline && p.dot == 1 {
		p.ppuStatus &^= (vblankMask | sprite0Mask | overflowMask)
		p.updateNMILine()
	}

	if !p.renderingEnabled() {
		return
	}

	fetching := (p.dot >= 2 && p.dot <= 257) || (p.dot >= 321 && p.dot <= 337)
	if fetching {
		p.shiftBackgroundRegisters()
		switch (p.dot - 1) % 8 {
		case 0:
			p.loadBackgroundShifters()
			p.fetchNametableByte()
		case 2:
			p.fetchAttributeByte()
		case 4:
			p.fetchPatternLow()
		case 6:
			p.fetchPatternHigh()
		case 7:
			p.incrementCoarseX()
		}
	}

	if p.dot == 256 {
		p.incrementFineY()
	}
	if p.dot == 257 {
		p.shiftBackgroundRegisters()
		p.loadBackgroundShifters()
		p.copyHorizontalBits()
	}
	if p.scanline == preRenderScanline && p.dot >= 280 && p.dot <= 304 {
		p.copyVerticalBits()
	}

	if p.scanline >= 0 && p.scanline < visibleScanlines && p.dot == 1 {
		p.evaluateSprites()
	}
}

// incrementCoarseX implements the coarse-X wraparound with horizontal
// nametable flip (§4.5 v-register increments during rendering).
func (p *PPU) incrementCoarseX() {
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

// incrementFineY rolls fine-Y into coarse-Y, wrapping coarse-Y at 29 with a
// vertical nametable flip, or at 31 without one.
func (p *PPU) incrementFineY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &^= 0x7000
	y := (p.v & 0x03E0) >> 5
	switch y {
	case 29:
		y = 0
		p.v ^= 0x0800
	case 31:
		y = 0
	default:
		y++
	}
	p.v = (p.v &^ 0x03E0) | (y << 5)
}

func (p *PPU) copyHorizontalBits() { p.v = (p.v &^ 0x041F) | (p.t & 0x041F) }
func (p *PPU) copyVerticalBits()   { p.v = (p.v &^ 0x7BE0) | (p.t & 0x7BE0) }
