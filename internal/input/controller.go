// Package input implements the NES controller protocol: a strobe latch
// feeding an 8-bit serial shift register, two instances wired to $4016/$4017.
package input

// Button identifies one of the eight NES controller buttons, in the bit
// order the shift register presents them (§4.6).
type Button uint8

const (
	ButtonA Button = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// Controller holds one gamepad's button state and its serial read state.
type Controller struct {
	buttons uint8

	strobe        bool
	shiftRegister uint8
}

// New creates a controller with no buttons pressed.
func New() *Controller {
	return &Controller{}
}

// SetButton sets or clears a single button.
func (c *Controller) SetButton(button Button, pressed bool) {
	if pressed {
		c.buttons |= uint8(button)
	} else {
		c.buttons &^= uint8(button)
	}
}

// SetButtons replaces all eight button states at once, in A, B, Select,
// Start, Up, Down, Left, Right order.
func (c *Controller) SetButtons(buttons [8]bool) {
	var bits uint8
	for i, pressed := range buttons {
		if pressed {
			bits |= 1 << uint(i)
		}
	}
	c.buttons = bits
}

// IsPressed reports whether button is currently held.
func (c *Controller) IsPressed(button Button) bool {
	return c.buttons&uint8(button) != 0
}

// Write handles a write to this controller's strobe line. While strobe is
// held high the controller continuously reports the A button; the falling
// edge latches the full button state into the shift register (§4.6).
func (c *Controller) Write(value uint8) {
	wasStrobe := c.strobe
	c.strobe = value&1 != 0

	if c.strobe {
		c.shiftRegister = c.buttons
	} else if wasStrobe {
		c.shiftRegister = c.buttons
	}
}

// Read returns the next serial bit. While strobed high, every read returns
// the A button state. Otherwise each read returns bit 0 of the shift
// register and shifts right, with 1s shifted in from the top — after 8
// reads the register is all 1s and stays that way until the next strobe.
func (c *Controller) Read() uint8 {
	if c.strobe {
		return c.buttons & 1
	}

	bit := c.shiftRegister & 1
	c.shiftRegister = (c.shiftRegister >> 1) | 0x80
	return bit
}

// Reset clears button state and the shift register.
func (c *Controller) Reset() {
	c.buttons = 0
	c.strobe = false
	c.shiftRegister = 0
}

// InputState wires both controller ports into the $4016/$4017 address
// protocol (§4.6): both controllers share the $4016 strobe write.
type InputState struct {
	Controller1 *Controller
	Controller2 *Controller
}

// NewInputState creates a fresh pair of controllers.
func NewInputState() *InputState {
	return &InputState{Controller1: New(), Controller2: New()}
}

// Reset clears both controllers.
func (is *InputState) Reset() {
	is.Controller1.Reset()
	is.Controller2.Reset()
}

// SetButtons1 replaces controller 1's button state.
func (is *InputState) SetButtons1(buttons [8]bool) { is.Controller1.SetButtons(buttons) }

// SetButtons2 replaces controller 2's button state.
func (is *InputState) SetButtons2(buttons [8]bool) { is.Controller2.SetButtons(buttons) }

// Read dispatches a $4016/$4017 read. $4017 ORs in bit 6, matching the
// real hardware's open-bus behavior on that port.
func (is *InputState) Read(address uint16) uint8 {
	switch address {
	case 0x4016:
		return is.Controller1.Read()
	case 0x4017:
		return is.Controller2.Read() | 0x40
	default:
		return 0
	}
}

// Write dispatches a $4016 write: both controllers observe the same
// strobe line.
func (is *InputState) Write(address uint16, value uint8) {
	if address == 0x4016 {
		is.Controller1.Write(value)
		is.Controller2.Write(value)
	}
}
