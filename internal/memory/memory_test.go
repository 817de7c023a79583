package memory

import "testing"

type fakePPU struct {
	regs [8]uint8
}

func (p *fakePPU) ReadRegister(address uint16) uint8 { return p.regs[address&7] }
func (p *fakePPU) WriteRegister(address uint16, value uint8) { p.regs[address&7] = value }

type fakeAPU struct {
	lastWrite  uint16
	lastValue  uint8
	status     uint8
}

func (a *fakeAPU) WriteRegister(address uint16, value uint8) {
	a.lastWrite = address
	a.lastValue = value
}
func (a *fakeAPU) ReadStatus() uint8 { return a.status }

type fakeInput struct {
	written uint8
	reads   []uint8
}

func (i *fakeInput) Write(address uint16, value uint8) { i.written = value }
func (i *fakeInput) Read(address uint16) uint8 {
	if len(i.reads) == 0 {
		return 0
	}
	v := i.reads[0]
	i.reads = i.reads[1:]
	return v
}

type fakeCart struct {
	prg [0x10000]uint8
}

func (c *fakeCart) CPURead(address uint16) uint8         { return c.prg[address] }
func (c *fakeCart) CPUWrite(address uint16, value uint8) { c.prg[address] = value }
func (c *fakeCart) PPURead(address uint16) uint8         { return 0 }
func (c *fakeCart) PPUWrite(address uint16, value uint8) {}

func TestRAMMirroring(t *testing.T) {
	m := New(&fakePPU{}, &fakeAPU{}, &fakeCart{})
	m.Write(0x0000, 0x42)
	for _, mirror := range []uint16{0x0000, 0x0800, 0x1000, 0x1800} {
		if got := m.Read(mirror); got != 0x42 {
			t.Fatalf("expected mirror %#04x == 0x42, got %#02x", mirror, got)
		}
	}
}

func TestPPURegisterMirroring(t *testing.T) {
	ppu := &fakePPU{}
	m := New(ppu, &fakeAPU{}, &fakeCart{})
	m.Write(0x2003, 0x10)
	if ppu.regs[3] != 0x10 {
		t.Fatalf("expected register 3 to be written, got %#02x", ppu.regs[3])
	}
	m.Write(0x200B, 0x20) // mirrors $2003
	if ppu.regs[3] != 0x20 {
		t.Fatalf("expected mirrored write to register 3, got %#02x", ppu.regs[3])
	}
}

func TestControllerRouting(t *testing.T) {
	input := &fakeInput{reads: []uint8{1, 0, 1}}
	m := New(&fakePPU{}, &fakeAPU{}, &fakeCart{})
	m.SetInput(input)

	m.Write(0x4016, 0x01)
	if input.written != 0x01 {
		t.Fatalf("expected strobe write to reach input, got %#02x", input.written)
	}
	if got := m.Read(0x4016); got != 1 {
		t.Fatalf("expected first read == 1, got %d", got)
	}
	if got := m.Read(0x4017); got != 0 {
		t.Fatalf("expected second read == 0, got %d", got)
	}
}

func TestAPUStatusRouting(t *testing.T) {
	apu := &fakeAPU{status: 0x55}
	m := New(&fakePPU{}, apu, &fakeCart{})
	if got := m.Read(0x4015); got != 0x55 {
		t.Fatalf("expected APU status passthrough, got %#02x", got)
	}
	m.Write(0x4000, 0x80)
	if apu.lastWrite != 0x4000 || apu.lastValue != 0x80 {
		t.Fatalf("expected APU register write to be routed, got addr=%#04x val=%#02x", apu.lastWrite, apu.lastValue)
	}
}

func TestCartridgeRouting(t *testing.T) {
	cart := &fakeCart{}
	m := New(&fakePPU{}, &fakeAPU{}, cart)
	m.Write(0x8000, 0x7E)
	if got := m.Read(0x8000); got != 0x7E {
		t.Fatalf("expected cartridge passthrough, got %#02x", got)
	}
	m.Write(0x6000, 0x11)
	if got := m.Read(0x6000); got != 0x11 {
		t.Fatalf("expected SRAM passthrough, got %#02x", got)
	}
}

func TestOpenBusUnmappedRange(t *testing.T) {
	m := New(&fakePPU{}, &fakeAPU{}, &fakeCart{})
	m.Read(0x0000) // establishes openBusValue = 0
	m.Write(0x0000, 0x99)
	m.Read(0x0000) // openBusValue now 0x99
	if got := m.Read(0x5000); got != 0x99 {
		t.Fatalf("expected unmapped read to return open bus 0x99, got %#02x", got)
	}
}
