package cartridge

import (
	"bytes"
	"testing"
)

func newCNROMCartridge(t *testing.T, prgBanks, chrBanks uint8, prg, chr []uint8) *Cartridge {
	t.Helper()
	data := buildINES(prgBanks, chrBanks, 0x30, 0x00, prg, chr) // mapper 3
	cart, err := LoadFromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to build CNROM cartridge: %v", err)
	}
	return cart
}

// TestCNROMBankSwitchesCHR verifies writes to $8000-$FFFF select the 8 KiB
// CHR-ROM bank visible to the PPU (masked to 2 bits), while PRG is fixed.
func TestCNROMBankSwitchesCHR(t *testing.T) {
	chr := make([]uint8, 4*8192)
	chr[0*8192] = 0xD0
	chr[1*8192] = 0xD1
	chr[2*8192] = 0xD2
	chr[3*8192] = 0xD3
	cart := newCNROMCartridge(t, 2, 4, nil, chr)

	cart.CPUWrite(0x8000, 2)
	if got := cart.PPURead(0x0000); got != 0xD2 {
		t.Fatalf("expected CHR bank 2 = 0xD2, got %#02x", got)
	}

	cart.CPUWrite(0xFFFF, 0xFD) // masked to 2 bits -> bank 1
	if got := cart.PPURead(0x0000); got != 0xD1 {
		t.Fatalf("expected bank register masked to bank 1 = 0xD1, got %#02x", got)
	}
}

// TestCNROMPRGMirrorsWith16KiBBank verifies a single 16 KiB PRG bank mirrors
// across $8000-$FFFF like NROM, and PRG is unaffected by CHR bank writes.
func TestCNROMPRGMirrorsWith16KiBBank(t *testing.T) {
	prg := make([]uint8, 16384)
	prg[0] = 0xAA
	prg[16383] = 0xBB
	cart := newCNROMCartridge(t, 1, 1, prg, nil)

	if got := cart.CPURead(0x8000); got != 0xAA {
		t.Fatalf("expected $8000 == 0xAA, got %#02x", got)
	}
	if got := cart.CPURead(0xC000); got != 0xAA {
		t.Fatalf("expected $C000 mirror == 0xAA, got %#02x", got)
	}
	if got := cart.CPURead(0xFFFF); got != 0xBB {
		t.Fatalf("expected $FFFF mirror == 0xBB, got %#02x", got)
	}

	cart.CPUWrite(0x8000, 1) // selects a CHR bank, must not affect PRG
	if got := cart.CPURead(0x8000); got != 0xAA {
		t.Fatalf("expected PRG unaffected by CHR bank write, got %#02x", got)
	}
}

// TestCNROMPRG32KiBDoesNotMirror verifies two 16 KiB PRG banks are mapped
// contiguously across the full $8000-$FFFF window without mirroring.
func TestCNROMPRG32KiBDoesNotMirror(t *testing.T) {
	prg := make([]uint8, 2*16384)
	prg[0] = 0x11
	prg[16384] = 0x22
	cart := newCNROMCartridge(t, 2, 1, prg, nil)

	if got := cart.CPURead(0x8000); got != 0x11 {
		t.Fatalf("expected $8000 == 0x11, got %#02x", got)
	}
	if got := cart.CPURead(0xC000); got != 0x22 {
		t.Fatalf("expected $C000 == 0x22 (second bank, no mirroring), got %#02x", got)
	}
}

// TestCNROMSRAM verifies $6000-$7FFF PRG-RAM round-trips independent of the
// CHR bank register.
func TestCNROMSRAM(t *testing.T) {
	cart := newCNROMCartridge(t, 1, 1, nil, nil)
	cart.CPUWrite(0x6000, 0x7E)
	if got := cart.CPURead(0x6000); got != 0x7E {
		t.Fatalf("expected SRAM round-trip, got %#02x", got)
	}
}
