package input

import "testing"

func TestControllerSerialReadSequence(t *testing.T) {
	c := New()
	// Press A and Start only: A, B, Select, Start, Up, Down, Left, Right.
	c.SetButtons([8]bool{true, false, false, true, false, false, false, false})

	c.Write(0x01)
	c.Write(0x00)

	want := []uint8{1, 0, 0, 1, 0, 0, 0, 0}
	for i, w := range want {
		if got := c.Read(); got != w {
			t.Fatalf("read %d: want %d, got %d", i, w, got)
		}
	}
	// Ninth read returns open-bus 1.
	if got := c.Read(); got != 1 {
		t.Fatalf("9th read: want 1 (open bus), got %d", got)
	}
}

func TestControllerStrobeHighReturnsA(t *testing.T) {
	c := New()
	c.SetButton(ButtonA, true)
	c.Write(0x01) // strobe held high
	for i := 0; i < 5; i++ {
		if got := c.Read(); got != 1 {
			t.Fatalf("read %d under strobe: want 1, got %d", i, got)
		}
	}
	c.SetButton(ButtonA, false)
	if got := c.Read(); got != 0 {
		t.Fatalf("want 0 once A released under strobe, got %d", got)
	}
}

func TestInputStateController2OpenBusBit(t *testing.T) {
	is := NewInputState()
	is.Write(0x4016, 0x01)
	is.Write(0x4016, 0x00)
	got := is.Read(0x4017)
	if got&0x40 == 0 {
		t.Fatalf("expected bit 6 set on $4017 read, got %#02x", got)
	}
}

func TestInputStateSharedStrobe(t *testing.T) {
	is := NewInputState()
	is.Controller1.SetButton(ButtonA, true)
	is.Controller2.SetButton(ButtonB, true)
	is.Write(0x4016, 0x01)
	is.Write(0x4016, 0x00)

	if got := is.Read(0x4016) & 1; got != 1 {
		t.Fatalf("controller 1 first bit: want 1, got %d", got)
	}
	if got := is.Read(0x4017) & 1; got != 0 {
		t.Fatalf("controller 2 first bit (B not A): want 0, got %d", got)
	}
}

func TestResetClearsState(t *testing.T) {
	c := New()
	c.SetButton(ButtonA, true)
	c.Write(0x01)
	c.Write(0x00)
	c.Reset()
	if c.buttons != 0 || c.strobe || c.shiftRegister != 0 {
		t.Fatal("expected Reset to clear all controller state")
	}
}
