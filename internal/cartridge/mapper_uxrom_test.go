package cartridge

import (
	"bytes"
	"testing"
)

func newUxROMCartridge(t *testing.T, prgBanks uint8, prg []uint8) *Cartridge {
	t.Helper()
	data := buildINES(prgBanks, 0, 0x20, 0x00, prg, nil) // mapper 2, CHR-RAM
	cart, err := LoadFromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to build UxROM cartridge: %v", err)
	}
	return cart
}

// TestUxROMBankSwitchesPRGAt8000FixesC000 verifies writes to $8000-$FFFF
// select the 16 KiB bank visible at $8000, while $C000 stays fixed at the
// last bank regardless of the selected register.
func TestUxROMBankSwitchesPRGAt8000FixesC000(t *testing.T) {
	prg := make([]uint8, 4*16384)
	prg[0*16384] = 0xB0
	prg[1*16384] = 0xB1
	prg[2*16384] = 0xB2
	prg[3*16384] = 0xB3
	cart := newUxROMCartridge(t, 4, prg)

	if got := cart.CPURead(0xC000); got != 0xB3 {
		t.Fatalf("expected $C000 fixed at last bank = 0xB3, got %#02x", got)
	}

	cart.CPUWrite(0x8000, 1)
	if got := cart.CPURead(0x8000); got != 0xB1 {
		t.Fatalf("expected $8000 to read bank 1 = 0xB1, got %#02x", got)
	}
	if got := cart.CPURead(0xC000); got != 0xB3 {
		t.Fatalf("expected $C000 still fixed at last bank = 0xB3, got %#02x", got)
	}

	cart.CPUWrite(0xFFFF, 2) // any address $8000-$FFFF selects the bank register
	if got := cart.CPURead(0x8000); got != 0xB2 {
		t.Fatalf("expected $8000 to read bank 2 = 0xB2, got %#02x", got)
	}
}

// TestUxROMBankRegisterWraps verifies an out-of-range bank selection wraps
// modulo the cartridge's actual PRG bank count.
func TestUxROMBankRegisterWraps(t *testing.T) {
	prg := make([]uint8, 2*16384)
	prg[0*16384] = 0xD0
	prg[1*16384] = 0xD1
	cart := newUxROMCartridge(t, 2, prg)

	cart.CPUWrite(0x8000, 2) // 2 % 2 == 0
	if got := cart.CPURead(0x8000); got != 0xD0 {
		t.Fatalf("expected bank register to wrap to bank 0 = 0xD0, got %#02x", got)
	}
}

// TestUxROMCHRIsRAM verifies UxROM's always-RAM CHR is not bank-switched and
// simply round-trips writes.
func TestUxROMCHRIsRAM(t *testing.T) {
	cart := newUxROMCartridge(t, 2, nil)
	cart.PPUWrite(0x0000, 0x42)
	if got := cart.PPURead(0x0000); got != 0x42 {
		t.Fatalf("expected CHR-RAM round-trip, got %#02x", got)
	}
	cart.PPUWrite(0x1FFF, 0x24)
	if got := cart.PPURead(0x1FFF); got != 0x24 {
		t.Fatalf("expected CHR-RAM round-trip at $1FFF, got %#02x", got)
	}
}

// TestUxROMSRAM verifies $6000-$7FFF PRG-RAM is independent of PRG bank
// selection.
func TestUxROMSRAM(t *testing.T) {
	cart := newUxROMCartridge(t, 2, nil)
	cart.CPUWrite(0x6000, 0x99)
	if got := cart.CPURead(0x6000); got != 0x99 {
		t.Fatalf("expected SRAM round-trip, got %#02x", got)
	}
}
