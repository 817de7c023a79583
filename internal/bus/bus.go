// Package bus wires the CPU, PPU, APU, controllers, and cartridge together
// and drives the system clock: three PPU dots per CPU cycle, with the PPU's
// NMI line sampled into the CPU before each CPU clock (§5 System clock).
package bus

import (
	"fmt"

	"gones/internal/apu"
	"gones/internal/cartridge"
	"gones/internal/cpu"
	"gones/internal/input"
	"gones/internal/memory"
	"gones/internal/ppu"
)

// Bus owns every component and is the CPU's Memory implementation, so that
// writes to $4014 (OAMDMA) can be intercepted here rather than in the plain
// CPU-side address decoder.
type Bus struct {
	CPU    *cpu.CPU
	PPU    *ppu.PPU
	APU    *apu.APU
	Memory *memory.Memory
	Input  *input.InputState

	ppuMemory *memory.PPUMemory
	cart      *cartridge.Cartridge

	cpuCycles uint64

	dmaActive bool
	dmaPage   uint8
	dmaByte   uint8
	dmaTotal  int // 513 (even start) or 514 (odd start) cycles total
	dmaDone   int // cycles of the stall already consumed
}

// New creates a fully wired Bus with no cartridge loaded. Call LoadCartridge
// before Reset/Clock.
func New() *Bus {
	b := &Bus{
		PPU:   ppu.New(),
		APU:   apu.New(),
		Input: input.NewInputState(),
	}
	b.Memory = memory.New(b.PPU, b.APU, nil)
	b.Memory.SetInput(b.Input)
	b.CPU = cpu.New(b)
	return b
}

// LoadCartridge swaps in a newly loaded cartridge, rebuilding the PPU's
// nametable mirroring view from the cartridge's mapper.
func (b *Bus) LoadCartridge(cart *cartridge.Cartridge) {
	b.cart = cart
	b.Memory.SetCartridge(cart)
	b.ppuMemory = memory.NewPPUMemory(cart, memory.MirrorMode(cart.Mirror()))
	b.PPU.SetMemory(b.ppuMemory)
}

// Reset performs the power-on/reset sequence on every component.
func (b *Bus) Reset() {
	b.PPU.Reset()
	b.CPU.Reset()
	b.Input.Reset()
	b.cpuCycles = 0
	b.dmaActive = false
}

// Read implements cpu.Memory, delegating straight to the CPU-side decoder.
func (b *Bus) Read(address uint16) uint8 { return b.Memory.Read(address) }

// Write implements cpu.Memory. $4014 (OAMDMA) is handled here because it
// stalls the CPU for 513 or 514 cycles instead of completing instantly
// (§4.2, §4.7 OAMDMA).
func (b *Bus) Write(address uint16, value uint8) {
	if address == 0x4014 {
		b.startOAMDMA(value)
		return
	}
	b.Memory.Write(address, value)
}

// startOAMDMA latches the source page and arms the stall sequence. The
// 256-byte copy is not done here: runOAMDMAStall performs it as read/write
// pairs spread across the 513 or 514 stall cycles, so Clock's accounting
// stays correct.
func (b *Bus) startOAMDMA(page uint8) {
	b.dmaPage = page
	b.dmaActive = true
	b.dmaDone = 0
	b.dmaTotal = 513
	if b.cpuCycles%2 != 0 {
		b.dmaTotal = 514
	}
}

// runOAMDMAStall advances the DMA stall sequence by one CPU cycle. The
// first dmaTotal-512 cycles are the halt (and, on an odd start, alignment)
// cycle; the remaining 512 cycles are 256 read/write pairs copying OAM
// starting at the PPU's current OAMADDR, which wraps per §4.7.
func (b *Bus) runOAMDMAStall() {
	transferStart := b.dmaTotal - 512
	if b.dmaDone >= transferStart {
		index := b.dmaDone - transferStart
		byteIndex := uint8(index / 2)
		if index%2 == 0 {
			address := uint16(b.dmaPage)<<8 | uint16(byteIndex)
			b.dmaByte = b.Memory.Read(address)
		} else {
			b.PPU.WriteOAM(b.PPU.OAMAddr()+byteIndex, b.dmaByte)
		}
	}

	b.dmaDone++
	if b.dmaDone == b.dmaTotal {
		b.dmaActive = false
	}
}

// Clock advances the system by one CPU cycle: three PPU dots, then the
// PPU's NMI line is sampled into the CPU, then either a DMA stall cycle or
// a real CPU clock (§5).
func (b *Bus) Clock() {
	b.PPU.Tick()
	b.PPU.Tick()
	b.PPU.Tick()

	b.CPU.SetNMI(b.PPU.NMILine())

	if b.dmaActive {
		b.runOAMDMAStall()
	} else {
		b.CPU.Clock()
	}

	b.cpuCycles++
}

// RunFrame clocks the system until the PPU reports a completed frame.
func (b *Bus) RunFrame() {
	for !b.PPU.FrameComplete() {
		b.Clock()
	}
	b.PPU.ClearFrameComplete()
}

// FrameBuffer returns the PPU's 256x240 ARGB frame buffer.
func (b *Bus) FrameBuffer() *[256 * 240]uint32 { return b.PPU.FrameBuffer() }

// FrameCount returns the number of frames completed since reset.
func (b *Bus) FrameCount() uint64 { return b.PPU.FrameCount() }

// CycleCount returns the number of CPU cycles clocked since reset.
func (b *Bus) CycleCount() uint64 { return b.cpuCycles }

// AudioSamples returns pending audio samples. The APU is a stub (§ Non-goals:
// audio synthesis), so this is always empty.
func (b *Bus) AudioSamples() []float32 { return b.APU.GetSamples() }

// SetControllerButtons replaces a controller's full button state, in A, B,
// Select, Start, Up, Down, Left, Right order. port is 1 or 2.
func (b *Bus) SetControllerButtons(port int, buttons [8]bool) error {
	switch port {
	case 1:
		b.Input.SetButtons1(buttons)
	case 2:
		b.Input.SetButtons2(buttons)
	default:
		return fmt.Errorf("bus: invalid controller port %d", port)
	}
	return nil
}
