package cartridge

import (
	"bytes"
	"testing"
)

// writeMMC1Register feeds value's 5 low bits into the MMC1 serial shift
// register LSB-first via repeated single-bit writes to addr, completing the
// register latch on the 5th write.
func writeMMC1Register(cart *Cartridge, addr uint16, value uint8) {
	for i := 0; i < 5; i++ {
		cart.CPUWrite(addr, (value>>uint(i))&1)
	}
}

func newMMC1Cartridge(t *testing.T, prgBanks, chrBanks uint8, prg, chr []uint8) *Cartridge {
	t.Helper()
	data := buildINES(prgBanks, chrBanks, 0x10, 0x00, prg, chr) // mapper 1, horizontal mirroring
	cart, err := LoadFromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to build MMC1 cartridge: %v", err)
	}
	return cart
}

// TestMMC1ScenarioB reproduces spec Scenario B: a 5-write serial sequence
// with bits forming 01100 on a 4-PRG-bank cartridge sets prg_bank=0x0C, and
// under the power-on PRG mode 3, $8000 reads from bank 0x0C mod 4 (= bank 0)
// at offset 0.
func TestMMC1ScenarioB(t *testing.T) {
	prg := make([]uint8, 4*16384)
	prg[0*16384] = 0xA0
	prg[1*16384] = 0xA1
	prg[2*16384] = 0xA2
	prg[3*16384] = 0xA3
	cart := newMMC1Cartridge(t, 4, 1, prg, nil)

	m, ok := cart.mapper.(*mmc1)
	if !ok {
		t.Fatalf("expected *mmc1 mapper, got %T", cart.mapper)
	}
	if m.prgMode() != 3 {
		t.Fatalf("expected power-on PRG mode 3, got %d", m.prgMode())
	}

	writeMMC1Register(cart, 0xE000, 0x0C) // PRG bank register: $E000-$FFFF
	if m.prgBank != 0x0C {
		t.Fatalf("expected prg_bank=0x0C, got %#02x", m.prgBank)
	}

	if got := cart.CPURead(0x8000); got != 0xA0 {
		t.Fatalf("expected $8000 to read bank (0x0C mod 4)=0 offset 0 = 0xA0, got %#02x", got)
	}
	if got := cart.CPURead(0xC000); got != 0xA3 {
		t.Fatalf("expected $C000 fixed at last bank (3) = 0xA3, got %#02x", got)
	}
}

// TestMMC1ControlRegisterSetsMirroring verifies the control register's
// mirroring field (bits 0-1) takes effect after a 5-write latch to
// $8000-$9FFF.
func TestMMC1ControlRegisterSetsMirroring(t *testing.T) {
	cart := newMMC1Cartridge(t, 2, 1, nil, nil)

	writeMMC1Register(cart, 0x8000, 0x02) // mirroring=2 (vertical)
	if got := cart.Mirror(); got != MirrorVertical {
		t.Fatalf("expected vertical mirroring, got %v", got)
	}

	writeMMC1Register(cart, 0x9000, 0x03) // mirroring=3 (horizontal)
	if got := cart.Mirror(); got != MirrorHorizontal {
		t.Fatalf("expected horizontal mirroring, got %v", got)
	}

	writeMMC1Register(cart, 0x8000, 0x00) // mirroring=0 (single-screen lower)
	if got := cart.Mirror(); got != MirrorSingleScreen0 {
		t.Fatalf("expected single-screen-0 mirroring, got %v", got)
	}
}

// TestMMC1CHRBankMode4KiB verifies CHR mode 1 (two independently switched
// 4 KiB banks) maps $0000 and $1000 through chr_bank_0/chr_bank_1.
func TestMMC1CHRBankMode4KiB(t *testing.T) {
	chr := make([]uint8, 4*4096)
	chr[0*4096] = 0xC0
	chr[1*4096] = 0xC1
	chr[2*4096] = 0xC2
	chr[3*4096] = 0xC3
	cart := newMMC1Cartridge(t, 2, 2, nil, chr)

	writeMMC1Register(cart, 0x8000, 0x10) // control: CHR mode 1 (4 KiB banks)
	writeMMC1Register(cart, 0xA000, 1)    // chr_bank_0 -> bank 1
	writeMMC1Register(cart, 0xC000, 2)    // chr_bank_1 -> bank 2

	if got := cart.PPURead(0x0000); got != 0xC1 {
		t.Fatalf("expected $0000 to read CHR bank 1 = 0xC1, got %#02x", got)
	}
	if got := cart.PPURead(0x1000); got != 0xC2 {
		t.Fatalf("expected $1000 to read CHR bank 2 = 0xC2, got %#02x", got)
	}
}

// TestMMC1CHRBankMode8KiB verifies CHR mode 0 (single 8 KiB bank, chr_bank_0
// with its low bit ignored) maps both $0000 and $1000 from the same pair of
// 4 KiB banks.
func TestMMC1CHRBankMode8KiB(t *testing.T) {
	chr := make([]uint8, 4*4096)
	chr[2*4096] = 0xAA // even bank 2's first byte
	chr[3*4096] = 0xBB // odd bank 3's first byte
	cart := newMMC1Cartridge(t, 2, 2, nil, chr)

	writeMMC1Register(cart, 0x8000, 0x00) // control: CHR mode 0 (8 KiB)
	writeMMC1Register(cart, 0xA000, 3)    // chr_bank_0=3, low bit cleared -> bank 2

	if got := cart.PPURead(0x0000); got != 0xAA {
		t.Fatalf("expected $0000 to read CHR bank 2 = 0xAA, got %#02x", got)
	}
	if got := cart.PPURead(0x1000); got != 0xBB {
		t.Fatalf("expected $1000 (bank 2 + 1) = 0xBB, got %#02x", got)
	}
}

// TestMMC1ResetBitForcesPRGMode3 verifies a write with bit 7 set clears the
// shift register and OR-sets control with 0x0C regardless of prior state.
func TestMMC1ResetBitForcesPRGMode3(t *testing.T) {
	cart := newMMC1Cartridge(t, 4, 1, nil, nil)
	m := cart.mapper.(*mmc1)

	writeMMC1Register(cart, 0x8000, 0x00) // control: PRG mode 0, mirroring 0

	cart.CPUWrite(0x8000, 0x80) // reset bit
	if m.shift != 0 || m.shiftCount != 0 {
		t.Fatalf("expected shift state cleared, got shift=%#02x count=%d", m.shift, m.shiftCount)
	}
	if m.prgMode() != 3 {
		t.Fatalf("expected PRG mode forced to 3, got %d", m.prgMode())
	}
}

// TestMMC1PRGRAMAndSRAM verifies $6000-$7FFF PRG-RAM reads/writes bypass
// the serial shift register entirely.
func TestMMC1PRGRAMAndSRAM(t *testing.T) {
	cart := newMMC1Cartridge(t, 2, 1, nil, nil)
	cart.CPUWrite(0x6000, 0x55)
	if got := cart.CPURead(0x6000); got != 0x55 {
		t.Fatalf("expected SRAM round-trip, got %#02x", got)
	}
}
