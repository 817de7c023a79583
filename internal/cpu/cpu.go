// Package cpu implements the 6502 CPU core: fetch/decode/execute over the
// 151 official instructions and 13 addressing modes, with cycle-accurate
// timing and the three interrupt entry points (RESET, NMI, IRQ).
package cpu

// AddressingMode identifies how an instruction's operand address is formed.
type AddressingMode int

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
)

const (
	stackBase = 0x0100

	nFlagMask  = 0x80
	vFlagMask  = 0x40
	unusedMask = 0x20
	bFlagMask  = 0x10
	dFlagMask  = 0x08
	iFlagMask  = 0x04
	zFlagMask  = 0x02
	cFlagMask  = 0x01

	zeroPageMask = 0xFF
	pageMask     = 0xFF00

	nmiVector   = 0xFFFA
	resetVector = 0xFFFC
	irqVector   = 0xFFFE
)

// Instruction is one entry of the opcode dispatch table: the addressing
// mode that forms its operand address and the base cycle count before any
// page-crossing or branch penalty.
type Instruction struct {
	Name   string
	Mode   AddressingMode
	Cycles uint8
}

// Memory is the bus interface the CPU reads and writes through.
type Memory interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// CPU is the 6502 register file plus the fetch/decode/execute engine.
type CPU struct {
	A, X, Y uint8
	SP      uint8
	PC      uint16

	C, Z, I, D, B, V, N bool

	memory Memory

	cycles uint64

	// pendingCycles implements the spec's external per-cycle visibility:
	// Clock debits one from this counter per call, and only fetches a new
	// instruction once it reaches zero.
	pendingCycles uint8

	instructions [256]*Instruction

	nmiPending  bool
	nmiPrevious bool
	irqLine     bool
}

// New creates a CPU wired to memory. Call Reset before running it.
func New(memory Memory) *CPU {
	cpu := &CPU{memory: memory}
	cpu.initInstructions()
	return cpu
}

// Reset performs the 6502 reset sequence: SP←0xFD, I←1, PC←read16($FFFC).
func (cpu *CPU) Reset() {
	cpu.A, cpu.X, cpu.Y = 0, 0, 0
	cpu.SP = 0xFD

	cpu.C, cpu.Z, cpu.D, cpu.V, cpu.N = false, false, false, false, false
	cpu.I = true
	cpu.B = true

	low := uint16(cpu.memory.Read(resetVector))
	high := uint16(cpu.memory.Read(resetVector + 1))
	cpu.PC = (high << 8) | low

	cpu.cycles = 7
	cpu.pendingCycles = 0
	cpu.nmiPending = false
	cpu.nmiPrevious = false
	cpu.irqLine = false
}

// Clock debits one cycle. Every seventh (or however many the current
// instruction takes) call, it services a pending interrupt or fetches and
// executes the next instruction; the remaining calls are pure waiting, so
// externally an instruction appears to take exactly its full cycle count
// (§4.4's Idle(pending_cycles=n) state machine).
func (cpu *CPU) Clock() {
	if cpu.pendingCycles == 0 {
		cpu.pendingCycles = cpu.dispatch()
	}
	cpu.pendingCycles--
	cpu.cycles++
}

// dispatch services a pending interrupt, or else fetches, decodes, and
// executes one instruction, returning its total cycle count.
func (cpu *CPU) dispatch() uint8 {
	if cpu.nmiPending {
		cpu.nmiPending = false
		return cpu.enterInterrupt(nmiVector)
	}
	if cpu.irqLine && !cpu.I {
		return cpu.enterInterrupt(irqVector)
	}

	opcode := cpu.memory.Read(cpu.PC)
	instruction := cpu.instructions[opcode]
	if instruction == nil {
		// Illegal opcode: deterministic 2-cycle NOP placeholder (§4.4, §7).
		cpu.PC++
		return 2
	}

	address, pageCrossed := cpu.operandAddress(instruction.Mode)
	extra := cpu.execute(opcode, address, pageCrossed)
	if pageCrossed && readPenalizesPageCross(opcode) {
		extra++
	}
	return instruction.Cycles + extra
}

// Step executes exactly one instruction (or interrupt entry) and reports
// its cycle count, for callers that want instruction-granular stepping
// instead of Clock's per-cycle debiting (tests, tools).
func (cpu *CPU) Step() uint64 {
	n := cpu.dispatch()
	cpu.cycles += uint64(n)
	return uint64(n)
}

// readPenalizesPageCross reports whether opcode is a read-type instruction
// that takes +1 cycle on a page-crossing indexed/indirect-indexed access.
// Store instructions to these same addressing modes always pay the cycle
// regardless of crossing, which the opcode table's Cycles entries include.
func readPenalizesPageCross(opcode uint8) bool {
	switch opcode {
	case 0xBD, 0xB9, 0xB1, 0xBE, 0xBC, // LDA/LDX/LDY
		0x7D, 0x79, 0x71, // ADC
		0x3D, 0x39, 0x31, // AND
		0x1D, 0x19, 0x11, // ORA
		0x5D, 0x59, 0x51, // EOR
		0xDD, 0xD9, 0xD1, // CMP
		0xFD, 0xF9, 0xF1: // SBC
		return true
	}
	return false
}

// SetNMI updates the NMI input line; a rising edge latches a pending NMI
// (§4.4: triggered on the rising edge of the PPU's NMI line).
func (cpu *CPU) SetNMI(asserted bool) {
	if asserted && !cpu.nmiPrevious {
		cpu.nmiPending = true
	}
	cpu.nmiPrevious = asserted
}

// SetIRQ updates the level-triggered IRQ line.
func (cpu *CPU) SetIRQ(asserted bool) { cpu.irqLine = asserted }

// Cycles returns the total number of cycles executed since construction
// (or the last Reset, counting that Reset's own 7 cycles).
func (cpu *CPU) Cycles() uint64 { return cpu.cycles }

func (cpu *CPU) enterInterrupt(vector uint16) uint8 {
	cpu.pushWord(cpu.PC)
	status := cpu.statusByte()&^uint8(bFlagMask) | unusedMask
	cpu.push(status)
	cpu.I = true
	low := uint16(cpu.memory.Read(vector))
	high := uint16(cpu.memory.Read(vector + 1))
	cpu.PC = (high << 8) | low
	return 7
}

// operandAddress advances PC past the instruction and returns the effective
// operand address for mode, plus whether an index addition crossed a page.
func (cpu *CPU) operandAddress(mode AddressingMode) (uint16, bool) {
	switch mode {
	case Implied, Accumulator:
		cpu.PC++
		return 0, false

	case Immediate:
		address := cpu.PC + 1
		cpu.PC += 2
		return address, false

	case ZeroPage:
		address := uint16(cpu.memory.Read(cpu.PC + 1))
		cpu.PC += 2
		return address, false

	case ZeroPageX:
		base := cpu.memory.Read(cpu.PC + 1)
		address := uint16((base + cpu.X) & zeroPageMask)
		cpu.PC += 2
		return address, false

	case ZeroPageY:
		base := cpu.memory.Read(cpu.PC + 1)
		address := uint16((base + cpu.Y) & zeroPageMask)
		cpu.PC += 2
		return address, false

	case Relative:
		offset := int8(cpu.memory.Read(cpu.PC + 1))
		oldPC := cpu.PC + 2
		newPC := uint16(int32(oldPC) + int32(offset))
		cpu.PC = oldPC
		return newPC, (oldPC & pageMask) != (newPC & pageMask)

	case Absolute:
		low := uint16(cpu.memory.Read(cpu.PC + 1))
		high := uint16(cpu.memory.Read(cpu.PC + 2))
		cpu.PC += 3
		return (high << 8) | low, false

	case AbsoluteX:
		low := uint16(cpu.memory.Read(cpu.PC + 1))
		high := uint16(cpu.memory.Read(cpu.PC + 2))
		base := (high << 8) | low
		address := base + uint16(cpu.X)
		cpu.PC += 3
		return address, (base & pageMask) != (address & pageMask)

	case AbsoluteY:
		low := uint16(cpu.memory.Read(cpu.PC + 1))
		high := uint16(cpu.memory.Read(cpu.PC + 2))
		base := (high << 8) | low
		address := base + uint16(cpu.Y)
		cpu.PC += 3
		return address, (base & pageMask) != (address & pageMask)

	case Indirect: // JMP only; reproduces the page-boundary fetch bug.
		lowPtr := uint16(cpu.memory.Read(cpu.PC + 1))
		highPtr := uint16(cpu.memory.Read(cpu.PC + 2))
		ptr := (highPtr << 8) | lowPtr

		var address uint16
		if ptr&zeroPageMask == zeroPageMask {
			low := uint16(cpu.memory.Read(ptr))
			high := uint16(cpu.memory.Read(ptr & pageMask))
			address = (high << 8) | low
		} else {
			low := uint16(cpu.memory.Read(ptr))
			high := uint16(cpu.memory.Read(ptr + 1))
			address = (high << 8) | low
		}
		cpu.PC += 3
		return address, false

	case IndexedIndirect:
		base := cpu.memory.Read(cpu.PC + 1)
		ptr := (base + cpu.X) & zeroPageMask
		low := uint16(cpu.memory.Read(uint16(ptr)))
		high := uint16(cpu.memory.Read(uint16((ptr + 1) & zeroPageMask)))
		cpu.PC += 2
		return (high << 8) | low, false

	case IndirectIndexed:
		ptr := uint16(cpu.memory.Read(cpu.PC + 1))
		low := uint16(cpu.memory.Read(ptr))
		high := uint16(cpu.memory.Read((ptr + 1) & zeroPageMask))
		base := (high << 8) | low
		address := base + uint16(cpu.Y)
		cpu.PC += 2
		return address, (base & pageMask) != (address & pageMask)

	default:
		return 0, false
	}
}

func (cpu *CPU) push(value uint8) {
	cpu.memory.Write(stackBase+uint16(cpu.SP), value)
	cpu.SP--
}

func (cpu *CPU) pop() uint8 {
	cpu.SP++
	return cpu.memory.Read(stackBase + uint16(cpu.SP))
}

func (cpu *CPU) pushWord(value uint16) {
	cpu.push(uint8(value >> 8))
	cpu.push(uint8(value & 0xFF))
}

func (cpu *CPU) popWord() uint16 {
	low := uint16(cpu.pop())
	high := uint16(cpu.pop())
	return (high << 8) | low
}

// setZN sets Z from value==0 and N from bit 7 of value.
func (cpu *CPU) setZN(value uint8) {
	cpu.Z = value == 0
	cpu.N = value&nFlagMask != 0
}

// statusByte packs the flags into the 6502 status register layout.
func (cpu *CPU) statusByte() uint8 {
	var status uint8
	if cpu.N {
		status |= nFlagMask
	}
	if cpu.V {
		status |= vFlagMask
	}
	status |= unusedMask
	if cpu.B {
		status |= bFlagMask
	}
	if cpu.D {
		status |= dFlagMask
	}
	if cpu.I {
		status |= iFlagMask
	}
	if cpu.Z {
		status |= zFlagMask
	}
	if cpu.C {
		status |= cFlagMask
	}
	return status
}

// GetStatusByte exposes the packed status register, for tests and debug
// tooling that need to inspect or compare the flag byte directly.
func (cpu *CPU) GetStatusByte() uint8 { return cpu.statusByte() }

// setStatusByte unpacks status into the individual flags.
func (cpu *CPU) setStatusByte(status uint8) {
	cpu.N = status&nFlagMask != 0
	cpu.V = status&vFlagMask != 0
	cpu.B = status&bFlagMask != 0
	cpu.D = status&dFlagMask != 0
	cpu.I = status&iFlagMask != 0
	cpu.Z = status&zFlagMask != 0
	cpu.C = status&cFlagMask != 0
}
