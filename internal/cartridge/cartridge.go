// Package cartridge implements iNES ROM loading and the mapper layer for
// NES cartridges.
package cartridge

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrInvalidCartridge is returned when the iNES magic number does not match
// or the file is truncated before the declared PRG/CHR regions.
var ErrInvalidCartridge = errors.New("cartridge: invalid iNES file")

// UnsupportedMapperError is returned when the cartridge names a mapper ID
// this emulator does not implement.
type UnsupportedMapperError struct {
	ID uint8
}

func (e *UnsupportedMapperError) Error() string {
	return fmt.Sprintf("cartridge: unsupported mapper %d", e.ID)
}

// MirrorMode is the nametable mirroring arrangement selected by the
// cartridge (and, for mapper 1, changeable at runtime).
type MirrorMode uint8

const (
	MirrorHorizontal MirrorMode = iota
	MirrorVertical
	MirrorSingleScreen0
	MirrorSingleScreen1
	MirrorFourScreen
)

// Mapper is the polymorphic address-translation contract every cartridge
// mapper implements (§4.1). Selection is by iNES mapper ID.
type Mapper interface {
	CPURead(address uint16) uint8
	CPUWrite(address uint16, value uint8)
	PPURead(address uint16) uint8
	PPUWrite(address uint16, value uint8)

	// Mirror reports the mapper's current nametable arrangement. Fixed for
	// NROM/UxROM/CNROM; dynamic for MMC1.
	Mirror() MirrorMode
}

// iNES header layout, bytes 0-15.
type iNESHeader struct {
	Magic      [4]uint8
	PRGROMSize uint8 // 16 KiB units
	CHRROMSize uint8 // 8 KiB units
	Flags6     uint8
	Flags7     uint8
	Flags8     uint8
	Flags9     uint8
	Flags10    uint8
	Padding    [5]uint8
}

// Cartridge owns the PRG/CHR regions for the lifetime of the emulator; the
// mapper only borrows them.
type Cartridge struct {
	prgROM []uint8
	chrROM []uint8 // CHR-ROM, or allocated CHR-RAM when the header's CHR size is 0
	chrIsRAM bool
	sram   [0x2000]uint8 // $6000-$7FFF PRG-RAM, battery or not

	mapperID   uint8
	headerMirror MirrorMode
	hasBattery bool

	mapper Mapper
}

// LoadFromFile opens filename and parses it as an iNES cartridge.
func LoadFromFile(filename string) (*Cartridge, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cartridge: %w", err)
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromReader parses an iNES image from r.
func LoadFromReader(r io.Reader) (*Cartridge, error) {
	// An image that ends before its header or declared banks is truncated.
	readErr := func(err error) error {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrInvalidCartridge
		}
		return fmt.Errorf("cartridge: %w", err)
	}

	var header iNESHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, readErr(err)
	}
	if string(header.Magic[:]) != "NES\x1A" {
		return nil, ErrInvalidCartridge
	}
	if header.PRGROMSize == 0 {
		return nil, ErrInvalidCartridge
	}

	cart := &Cartridge{
		mapperID:   (header.Flags7 & 0xF0) | (header.Flags6 >> 4),
		hasBattery: header.Flags6&0x02 != 0,
	}

	switch {
	case header.Flags6&0x08 != 0:
		cart.headerMirror = MirrorFourScreen
	case header.Flags6&0x01 != 0:
		cart.headerMirror = MirrorVertical
	default:
		cart.headerMirror = MirrorHorizontal
	}

	if header.Flags6&0x04 != 0 {
		trainer := make([]uint8, 512)
		if _, err := io.ReadFull(r, trainer); err != nil {
			return nil, readErr(err)
		}
	}

	prgSize := int(header.PRGROMSize) * 16384
	cart.prgROM = make([]uint8, prgSize)
	if _, err := io.ReadFull(r, cart.prgROM); err != nil {
		return nil, readErr(err)
	}

	chrSize := int(header.CHRROMSize) * 8192
	if chrSize > 0 {
		cart.chrROM = make([]uint8, chrSize)
		if _, err := io.ReadFull(r, cart.chrROM); err != nil {
			return nil, readErr(err)
		}
	} else {
		cart.chrROM = make([]uint8, 8192)
		cart.chrIsRAM = true
	}

	mapper, err := newMapper(cart)
	if err != nil {
		return nil, err
	}
	cart.mapper = mapper

	return cart, nil
}

// newMapper constructs the concrete Mapper variant for cart's mapper ID.
func newMapper(cart *Cartridge) (Mapper, error) {
	switch cart.mapperID {
	case 0:
		return newNROM(cart), nil
	case 1:
		return newMMC1(cart), nil
	case 2:
		return newUxROM(cart), nil
	case 3:
		return newCNROM(cart), nil
	default:
		return nil, &UnsupportedMapperError{ID: cart.mapperID}
	}
}

// CPURead reads from the cartridge through the CPU's address window
// ($6000-$FFFF, as routed by the bus).
func (c *Cartridge) CPURead(address uint16) uint8 { return c.mapper.CPURead(address) }

// CPUWrite writes to the cartridge through the CPU's address window.
func (c *Cartridge) CPUWrite(address uint16, value uint8) { c.mapper.CPUWrite(address, value) }

// PPURead reads pattern-table data through the mapper's CHR view.
func (c *Cartridge) PPURead(address uint16) uint8 { return c.mapper.PPURead(address) }

// PPUWrite writes CHR-RAM through the mapper's CHR view.
func (c *Cartridge) PPUWrite(address uint16, value uint8) { c.mapper.PPUWrite(address, value) }

// Mirror returns the current nametable mirroring arrangement.
func (c *Cartridge) Mirror() MirrorMode { return c.mapper.Mirror() }

// MapperID returns the iNES mapper number, mostly useful for diagnostics.
func (c *Cartridge) MapperID() uint8 { return c.mapperID }
