package bus

import (
	"bytes"
	"testing"

	"gones/internal/cartridge"
)

// buildINES assembles a minimal mapper-0 iNES image with prg placed at the
// start of the 32KiB PRG-ROM window, and a reset vector pointing at $8000.
func buildINES(prg []uint8) []byte {
	buf := &bytes.Buffer{}
	buf.WriteString("NES\x1A")
	buf.WriteByte(2) // 32 KiB PRG
	buf.WriteByte(1) // 8 KiB CHR
	buf.WriteByte(0x00)
	buf.WriteByte(0x00)
	buf.Write(make([]byte, 8))

	prgROM := make([]uint8, 32768)
	copy(prgROM, prg)
	prgROM[0x7FFC] = 0x00 // reset vector low -> $8000
	prgROM[0x7FFD] = 0x80 // reset vector high

	buf.Write(prgROM)
	buf.Write(make([]uint8, 8192))
	return buf.Bytes()
}

func newTestBus(t *testing.T, prg []uint8) *Bus {
	t.Helper()
	cart, err := cartridge.LoadFromReader(bytes.NewReader(buildINES(prg)))
	if err != nil {
		t.Fatalf("failed to build test cartridge: %v", err)
	}
	b := New()
	b.LoadCartridge(cart)
	b.Reset()
	return b
}

// TestCPUPPU3to1Ratio verifies the system clock's fundamental 3:1 PPU:CPU
// cycle relationship (§5 System clock) over a NOP.
func TestCPUPPU3to1Ratio(t *testing.T) {
	b := newTestBus(t, []uint8{0xEA}) // NOP, 2 cycles

	startCPUCycles := b.CPU.Cycles()
	for b.CPU.Cycles() == startCPUCycles {
		b.Clock()
	}
	for b.CPU.Cycles() == startCPUCycles+1 {
		b.Clock()
	}

	if got := b.CPU.Cycles() - startCPUCycles; got != 2 {
		t.Fatalf("expected 2 CPU cycles for NOP, got %d", got)
	}
	if got := b.CycleCount(); got != 2 {
		t.Fatalf("expected bus cycle count 2, got %d", got)
	}
}

// TestOAMDMATransfersPageAndStalls verifies that writing $4014 copies the
// 256-byte source page into OAM and stalls the CPU for 513 or 514 cycles
// (§4.7 OAMDMA).
func TestOAMDMATransfersPageAndStalls(t *testing.T) {
	program := []uint8{
		0xA9, 0x02, // LDA #$02
		0x8D, 0x14, 0x40, // STA $4014 (triggers DMA from page $0200)
		0xEA, // NOP
	}
	b := newTestBus(t, program)

	// Seed page $0200-$02FF in RAM with a recognizable pattern.
	for i := 0; i < 256; i++ {
		b.Memory.Write(0x0200+uint16(i), uint8(i))
	}

	startCycles := b.CycleCount()
	for i := 0; i < 10000 && !b.dmaActive; i++ {
		b.Clock()
	}
	if !b.dmaActive {
		t.Fatal("DMA never started")
	}
	for b.dmaActive {
		b.Clock()
	}
	stallCycles := b.CycleCount() - startCycles

	if stallCycles < 513 {
		t.Fatalf("expected at least 513 stall cycles, total elapsed %d", stallCycles)
	}

	for i := 0; i < 256; i++ {
		b.PPU.WriteRegister(0x2003, uint8(i))
		if got := b.PPU.ReadRegister(0x2004); got != uint8(i) {
			t.Fatalf("expected OAM[%d]=%d after DMA, got %d", i, i, got)
		}
	}
}

// TestRunFrameProducesExactlyOneCompletedFrame exercises the PPU-driven
// frame boundary (§5): RunFrame must clock until FrameComplete and leave it
// cleared afterward.
func TestRunFrameProducesExactlyOneCompletedFrame(t *testing.T) {
	b := newTestBus(t, []uint8{0xEA})

	startFrames := b.FrameCount()
	b.RunFrame()
	if got := b.FrameCount(); got != startFrames+1 {
		t.Fatalf("expected frame count to advance by 1, got delta %d", got-startFrames)
	}
	if b.PPU.FrameComplete() {
		t.Fatal("expected FrameComplete cleared after RunFrame returns")
	}
}

func TestSetControllerButtonsInvalidPort(t *testing.T) {
	b := newTestBus(t, []uint8{0xEA})
	if err := b.SetControllerButtons(3, [8]bool{}); err == nil {
		t.Fatal("expected error for invalid controller port")
	}
}

func TestSetControllerButtonsRoutesToPorts(t *testing.T) {
	b := newTestBus(t, []uint8{0xEA})
	buttons := [8]bool{true, false, false, false, false, false, false, false} // A pressed
	if err := b.SetControllerButtons(1, buttons); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b.Input.Controller1.Write(1)
	b.Input.Controller1.Write(0)
	if bit := b.Input.Controller1.Read(); bit != 1 {
		t.Fatalf("expected A button bit set on first read, got %d", bit)
	}
}
