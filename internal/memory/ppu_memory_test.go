package memory

import "testing"

type fakePPUCart struct {
	chr [0x2000]uint8
}

func (c *fakePPUCart) CPURead(address uint16) uint8         { return 0 }
func (c *fakePPUCart) CPUWrite(address uint16, value uint8) {}
func (c *fakePPUCart) PPURead(address uint16) uint8         { return c.chr[address&0x1FFF] }
func (c *fakePPUCart) PPUWrite(address uint16, value uint8) { c.chr[address&0x1FFF] = value }

func TestPatternTablePassthrough(t *testing.T) {
	cart := &fakePPUCart{}
	pm := NewPPUMemory(cart, MirrorHorizontal)
	pm.Write(0x0010, 0x55)
	if got := pm.Read(0x0010); got != 0x55 {
		t.Fatalf("expected CHR round-trip, got %#02x", got)
	}
}

func TestHorizontalMirroring(t *testing.T) {
	pm := NewPPUMemory(&fakePPUCart{}, MirrorHorizontal)
	pm.Write(0x2000, 0xAA)
	if got := pm.Read(0x2400); got != 0xAA {
		t.Fatalf("expected $2000 and $2400 to share a bank under horizontal mirroring, got %#02x", got)
	}
	pm.Write(0x2800, 0xBB)
	if got := pm.Read(0x2C00); got != 0xBB {
		t.Fatalf("expected $2800 and $2C00 to share a bank under horizontal mirroring, got %#02x", got)
	}
	if got := pm.Read(0x2000); got != 0xAA {
		t.Fatalf("expected $2000 bank to remain distinct from $2800 bank, got %#02x", got)
	}
}

func TestVerticalMirroring(t *testing.T) {
	pm := NewPPUMemory(&fakePPUCart{}, MirrorVertical)
	pm.Write(0x2000, 0xAA)
	if got := pm.Read(0x2800); got != 0xAA {
		t.Fatalf("expected $2000 and $2800 to share a bank under vertical mirroring, got %#02x", got)
	}
	pm.Write(0x2400, 0xBB)
	if got := pm.Read(0x2C00); got != 0xBB {
		t.Fatalf("expected $2400 and $2C00 to share a bank under vertical mirroring, got %#02x", got)
	}
}

func TestNametableMirrorRegion(t *testing.T) {
	pm := NewPPUMemory(&fakePPUCart{}, MirrorVertical)
	pm.Write(0x2000, 0x77)
	if got := pm.Read(0x3000); got != 0x77 {
		t.Fatalf("expected $3000 to mirror $2000, got %#02x", got)
	}
}

func TestPaletteBackgroundColorDefault(t *testing.T) {
	pm := NewPPUMemory(&fakePPUCart{}, MirrorHorizontal)
	for _, addr := range []uint16{0x3F00, 0x3F04, 0x3F08, 0x3F0C} {
		if got := pm.Read(addr); got != 0x0F {
			t.Fatalf("expected default backdrop 0x0F at %#04x, got %#02x", addr, got)
		}
	}
}

func TestPaletteAliasing(t *testing.T) {
	pm := NewPPUMemory(&fakePPUCart{}, MirrorHorizontal)
	pm.Write(0x3F00, 0x20)
	if got := pm.Read(0x3F10); got != 0x20 {
		t.Fatalf("expected $3F10 to alias $3F00, got %#02x", got)
	}
	pm.Write(0x3F14, 0x21)
	if got := pm.Read(0x3F04); got != 0x21 {
		t.Fatalf("expected $3F14 write to alias into $3F04, got %#02x", got)
	}
}

func TestPaletteMirrorRegion(t *testing.T) {
	pm := NewPPUMemory(&fakePPUCart{}, MirrorHorizontal)
	pm.Write(0x3F01, 0x33)
	if got := pm.Read(0x3F21); got != 0x33 {
		t.Fatalf("expected $3F20-$3FFF to mirror palette RAM, got %#02x", got)
	}
}
