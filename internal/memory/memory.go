// Package memory implements the CPU-side and PPU-side address decoders of
// the NES memory map.
package memory

// PPURegisters is the subset of the PPU the CPU bus dispatches register
// reads/writes to.
type PPURegisters interface {
	ReadRegister(address uint16) uint8
	WriteRegister(address uint16, value uint8)
}

// APU is the subset of the APU the CPU bus dispatches $4000-$4015 to. The
// real APU is out of scope; the implementation wired in here is a stub that
// returns open-bus on read and ignores writes.
type APU interface {
	WriteRegister(address uint16, value uint8)
	ReadStatus() uint8
}

// Input is the controller port pair at $4016/$4017.
type Input interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// Cartridge is the CPU-facing and PPU-facing surface of a loaded cartridge,
// as implemented by internal/cartridge.Cartridge.
type Cartridge interface {
	CPURead(address uint16) uint8
	CPUWrite(address uint16, value uint8)
	PPURead(address uint16) uint8
	PPUWrite(address uint16, value uint8)
}

// MirrorMode is the nametable mirroring arrangement in effect for the PPU
// memory space. Mirrors cartridge.MirrorMode's values.
type MirrorMode uint8

const (
	MirrorHorizontal MirrorMode = iota
	MirrorVertical
	MirrorSingleScreen0
	MirrorSingleScreen1
	MirrorFourScreen
)

// Memory is the CPU's view of the bus: $0000-$FFFF routed to RAM, PPU
// registers, APU/controllers, and the cartridge (§4.2).
type Memory struct {
	ram [0x800]uint8

	ppu   PPURegisters
	apu   APU
	input Input
	cart  Cartridge

	// openBusValue is the last byte that crossed the bus, returned for
	// reads of unmapped or write-only locations.
	openBusValue uint8
}

// New creates a CPU memory decoder wired to the given components. input may
// be nil until SetInput is called; cart may be nil until a cartridge loads.
func New(ppu PPURegisters, apu APU, cart Cartridge) *Memory {
	return &Memory{ppu: ppu, apu: apu, cart: cart}
}

// SetInput attaches the controller pair once it becomes available.
func (m *Memory) SetInput(input Input) { m.input = input }

// SetCartridge swaps in a newly loaded cartridge.
func (m *Memory) SetCartridge(cart Cartridge) { m.cart = cart }

// Read returns the byte at address, decoded per the CPU memory map (§4.2).
func (m *Memory) Read(address uint16) uint8 {
	var value uint8

	switch {
	case address < 0x2000:
		value = m.ram[address&0x07FF]

	case address < 0x4000:
		value = m.ppu.ReadRegister(0x2000 + (address & 0x0007))

	case address < 0x4020:
		switch address {
		case 0x4015:
			value = m.apu.ReadStatus()
		case 0x4016, 0x4017:
			if m.input != nil {
				value = m.input.Read(address)
			}
		default:
			value = m.openBusValue
		}

	case address >= 0x6000 && address < 0x8000:
		if m.cart != nil {
			value = m.cart.CPURead(address)
		} else {
			value = m.openBusValue
		}

	case address < 0x8000:
		value = m.openBusValue

	default:
		if m.cart != nil {
			value = m.cart.CPURead(address)
		} else {
			value = m.openBusValue
		}
	}

	m.openBusValue = value
	return value
}

// Write stores value at address, decoded per the CPU memory map (§4.2).
func (m *Memory) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		m.ram[address&0x07FF] = value

	case address < 0x4000:
		m.ppu.WriteRegister(0x2000+(address&0x0007), value)

	case address < 0x4020:
		switch {
		case address == 0x4016:
			if m.input != nil {
				m.input.Write(address, value)
			}
		case address <= 0x4013, address == 0x4015, address == 0x4017:
			m.apu.WriteRegister(address, value)
		// $4014 (OAMDMA) is driven by the bus, which observes writes to
		// this address directly rather than through Memory.Write.
		// $4018-$401F (APU/IO test registers) are unimplemented on
		// retail hardware and are ignored here too.
		default:
		}

	case address >= 0x6000 && address < 0x8000:
		if m.cart != nil {
			m.cart.CPUWrite(address, value)
		}

	case address < 0x8000:
		// Cartridge expansion area ($4020-$5FFF): unmapped on every
		// mapper this emulator implements.

	default:
		if m.cart != nil {
			m.cart.CPUWrite(address, value)
		}
	}
}

// PPUMemory is the PPU's view of the bus: pattern tables via the mapper,
// nametable RAM through the mirroring function, and palette RAM (§4.3).
type PPUMemory struct {
	vram       [0x1000]uint8 // 4 KiB backing store; four-screen mirroring uses all of it
	paletteRAM [32]uint8
	cart       Cartridge
	mirror     MirrorMode
}

// NewPPUMemory creates a PPU memory decoder for the given cartridge and
// mirroring arrangement.
func NewPPUMemory(cart Cartridge, mirror MirrorMode) *PPUMemory {
	pm := &PPUMemory{cart: cart, mirror: mirror}
	for i := 0; i < 32; i += 4 {
		pm.paletteRAM[i] = 0x0F
	}
	return pm
}

// SetMirror updates the mirroring arrangement, e.g. when MMC1 changes it at
// runtime.
func (pm *PPUMemory) SetMirror(mirror MirrorMode) { pm.mirror = mirror }

// Read returns the byte at a 14-bit PPU address.
func (pm *PPUMemory) Read(address uint16) uint8 {
	address &= 0x3FFF

	switch {
	case address < 0x2000:
		return pm.cart.PPURead(address)
	case address < 0x3000:
		return pm.readNametable(address)
	case address < 0x3F00:
		return pm.readNametable(address - 0x1000)
	default:
		return pm.readPalette(address)
	}
}

// Write stores value at a 14-bit PPU address.
func (pm *PPUMemory) Write(address uint16, value uint8) {
	address &= 0x3FFF

	switch {
	case address < 0x2000:
		pm.cart.PPUWrite(address, value)
	case address < 0x3000:
		pm.writeNametable(address, value)
	case address < 0x3F00:
		pm.writeNametable(address-0x1000, value)
	default:
		pm.writePalette(address, value)
	}
}

func (pm *PPUMemory) readNametable(address uint16) uint8 {
	return pm.vram[pm.nametableIndex(address)]
}

func (pm *PPUMemory) writeNametable(address uint16, value uint8) {
	pm.vram[pm.nametableIndex(address)] = value
}

// nametableIndex maps a $2000-$2FFF address into the backing vram array
// according to the current mirroring arrangement (§4.3).
func (pm *PPUMemory) nametableIndex(address uint16) uint16 {
	address &= 0x0FFF
	nt := (address >> 10) & 3
	off := address & 0x03FF

	switch pm.mirror {
	case MirrorHorizontal:
		if nt >= 2 {
			return 0x400 + off
		}
		return off
	case MirrorVertical:
		if nt == 1 || nt == 3 {
			return 0x400 + off
		}
		return off
	case MirrorSingleScreen0:
		return off
	case MirrorSingleScreen1:
		return 0x400 + off
	case MirrorFourScreen:
		return nt*0x400 + off
	default:
		return off
	}
}

func (pm *PPUMemory) readPalette(address uint16) uint8 {
	return pm.paletteRAM[paletteIndex(address)]
}

func (pm *PPUMemory) writePalette(address uint16, value uint8) {
	pm.paletteRAM[paletteIndex(address)] = value
}

// paletteIndex folds a palette address into 0-31 and applies the
// $3F10/$14/$18/$1C background-color aliasing (§4.3).
func paletteIndex(address uint16) uint16 {
	index := (address - 0x3F00) & 0x1F
	if index == 0x10 || index == 0x14 || index == 0x18 || index == 0x1C {
		index &= 0x0F
	}
	return index
}
