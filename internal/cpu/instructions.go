package cpu

// initInstructions populates the 256-entry opcode dispatch table with the
// 151 official 6502 instructions. Entries left nil are illegal opcodes,
// handled by dispatch as a deterministic 2-cycle NOP (§4.4, §9 non-goals).
func (cpu *CPU) initInstructions() {
	set := func(op uint8, name string, mode AddressingMode, cycles uint8) {
		cpu.instructions[op] = &Instruction{Name: name, Mode: mode, Cycles: cycles}
	}

	set(0xA9, "LDA", Immediate, 2)
	set(0xA5, "LDA", ZeroPage, 3)
	set(0xB5, "LDA", ZeroPageX, 4)
	set(0xAD, "LDA", Absolute, 4)
	set(0xBD, "LDA", AbsoluteX, 4)
	set(0xB9, "LDA", AbsoluteY, 4)
	set(0xA1, "LDA", IndexedIndirect, 6)
	set(0xB1, "LDA", IndirectIndexed, 5)

	set(0xA2, "LDX", Immediate, 2)
	set(0xA6, "LDX", ZeroPage, 3)
	set(0xB6, "LDX", ZeroPageY, 4)
	set(0xAE, "LDX", Absolute, 4)
	set(0xBE, "LDX", AbsoluteY, 4)

	set(0xA0, "LDY", Immediate, 2)
	set(0xA4, "LDY", ZeroPage, 3)
	set(0xB4, "LDY", ZeroPageX, 4)
	set(0xAC, "LDY", Absolute, 4)
	set(0xBC, "LDY", AbsoluteX, 4)

	set(0x85, "STA", ZeroPage, 3)
	set(0x95, "STA", ZeroPageX, 4)
	set(0x8D, "STA", Absolute, 4)
	set(0x9D, "STA", AbsoluteX, 5)
	set(0x99, "STA", AbsoluteY, 5)
	set(0x81, "STA", IndexedIndirect, 6)
	set(0x91, "STA", IndirectIndexed, 6)

	set(0x86, "STX", ZeroPage, 3)
	set(0x96, "STX", ZeroPageY, 4)
	set(0x8E, "STX", Absolute, 4)

	set(0x84, "STY", ZeroPage, 3)
	set(0x94, "STY", ZeroPageX, 4)
	set(0x8C, "STY", Absolute, 4)

	set(0x69, "ADC", Immediate, 2)
	set(0x65, "ADC", ZeroPage, 3)
	set(0x75, "ADC", ZeroPageX, 4)
	set(0x6D, "ADC", Absolute, 4)
	set(0x7D, "ADC", AbsoluteX, 4)
	set(0x79, "ADC", AbsoluteY, 4)
	set(0x61, "ADC", IndexedIndirect, 6)
	set(0x71, "ADC", IndirectIndexed, 5)

	set(0xE9, "SBC", Immediate, 2)
	set(0xE5, "SBC", ZeroPage, 3)
	set(0xF5, "SBC", ZeroPageX, 4)
	set(0xED, "SBC", Absolute, 4)
	set(0xFD, "SBC", AbsoluteX, 4)
	set(0xF9, "SBC", AbsoluteY, 4)
	set(0xE1, "SBC", IndexedIndirect, 6)
	set(0xF1, "SBC", IndirectIndexed, 5)

	set(0x29, "AND", Immediate, 2)
	set(0x25, "AND", ZeroPage, 3)
	set(0x35, "AND", ZeroPageX, 4)
	set(0x2D, "AND", Absolute, 4)
	set(0x3D, "AND", AbsoluteX, 4)
	set(0x39, "AND", AbsoluteY, 4)
	set(0x21, "AND", IndexedIndirect, 6)
	set(0x31, "AND", IndirectIndexed, 5)

	set(0x09, "ORA", Immediate, 2)
	set(0x05, "ORA", ZeroPage, 3)
	set(0x15, "ORA", ZeroPageX, 4)
	set(0x0D, "ORA", Absolute, 4)
	set(0x1D, "ORA", AbsoluteX, 4)
	set(0x19, "ORA", AbsoluteY, 4)
	set(0x01, "ORA", IndexedIndirect, 6)
	set(0x11, "ORA", IndirectIndexed, 5)

	set(0x49, "EOR", Immediate, 2)
	set(0x45, "EOR", ZeroPage, 3)
	set(0x55, "EOR", ZeroPageX, 4)
	set(0x4D, "EOR", Absolute, 4)
	set(0x5D, "EOR", AbsoluteX, 4)
	set(0x59, "EOR", AbsoluteY, 4)
	set(0x41, "EOR", IndexedIndirect, 6)
	set(0x51, "EOR", IndirectIndexed, 5)

	set(0x0A, "ASL", Accumulator, 2)
	set(0x06, "ASL", ZeroPage, 5)
	set(0x16, "ASL", ZeroPageX, 6)
	set(0x0E, "ASL", Absolute, 6)
	set(0x1E, "ASL", AbsoluteX, 7)

	set(0x4A, "LSR", Accumulator, 2)
	set(0x46, "LSR", ZeroPage, 5)
	set(0x56, "LSR", ZeroPageX, 6)
	set(0x4E, "LSR", Absolute, 6)
	set(0x5E, "LSR", AbsoluteX, 7)

	set(0x2A, "ROL", Accumulator, 2)
	set(0x26, "ROL", ZeroPage, 5)
	set(0x36, "ROL", ZeroPageX, 6)
	set(0x2E, "ROL", Absolute, 6)
	set(0x3E, "ROL", AbsoluteX, 7)

	set(0x6A, "ROR", Accumulator, 2)
	set(0x66, "ROR", ZeroPage, 5)
	set(0x76, "ROR", ZeroPageX, 6)
	set(0x6E, "ROR", Absolute, 6)
	set(0x7E, "ROR", AbsoluteX, 7)

	set(0xC9, "CMP", Immediate, 2)
	set(0xC5, "CMP", ZeroPage, 3)
	set(0xD5, "CMP", ZeroPageX, 4)
	set(0xCD, "CMP", Absolute, 4)
	set(0xDD, "CMP", AbsoluteX, 4)
	set(0xD9, "CMP", AbsoluteY, 4)
	set(0xC1, "CMP", IndexedIndirect, 6)
	set(0xD1, "CMP", IndirectIndexed, 5)

	set(0xE0, "CPX", Immediate, 2)
	set(0xE4, "CPX", ZeroPage, 3)
	set(0xEC, "CPX", Absolute, 4)

	set(0xC0, "CPY", Immediate, 2)
	set(0xC4, "CPY", ZeroPage, 3)
	set(0xCC, "CPY", Absolute, 4)

	set(0xE6, "INC", ZeroPage, 5)
	set(0xF6, "INC", ZeroPageX, 6)
	set(0xEE, "INC", Absolute, 6)
	set(0xFE, "INC", AbsoluteX, 7)

	set(0xC6, "DEC", ZeroPage, 5)
	set(0xD6, "DEC", ZeroPageX, 6)
	set(0xCE, "DEC", Absolute, 6)
	set(0xDE, "DEC", AbsoluteX, 7)

	set(0xE8, "INX", Implied, 2)
	set(0xCA, "DEX", Implied, 2)
	set(0xC8, "INY", Implied, 2)
	set(0x88, "DEY", Implied, 2)

	set(0xAA, "TAX", Implied, 2)
	set(0x8A, "TXA", Implied, 2)
	set(0xA8, "TAY", Implied, 2)
	set(0x98, "TYA", Implied, 2)
	set(0xBA, "TSX", Implied, 2)
	set(0x9A, "TXS", Implied, 2)

	set(0x48, "PHA", Implied, 3)
	set(0x68, "PLA", Implied, 4)
	set(0x08, "PHP", Implied, 3)
	set(0x28, "PLP", Implied, 4)

	set(0x18, "CLC", Implied, 2)
	set(0x38, "SEC", Implied, 2)
	set(0x58, "CLI", Implied, 2)
	set(0x78, "SEI", Implied, 2)
	set(0xB8, "CLV", Implied, 2)
	set(0xD8, "CLD", Implied, 2)
	set(0xF8, "SED", Implied, 2)

	set(0x4C, "JMP", Absolute, 3)
	set(0x6C, "JMP", Indirect, 5)
	set(0x20, "JSR", Absolute, 6)
	set(0x60, "RTS", Implied, 6)
	set(0x40, "RTI", Implied, 6)

	set(0x90, "BCC", Relative, 2)
	set(0xB0, "BCS", Relative, 2)
	set(0xD0, "BNE", Relative, 2)
	set(0xF0, "BEQ", Relative, 2)
	set(0x10, "BPL", Relative, 2)
	set(0x30, "BMI", Relative, 2)
	set(0x50, "BVC", Relative, 2)
	set(0x70, "BVS", Relative, 2)

	set(0x24, "BIT", ZeroPage, 3)
	set(0x2C, "BIT", Absolute, 4)

	set(0xEA, "NOP", Implied, 2)
	set(0x00, "BRK", Implied, 7)
}

// execute runs the instruction named by opcode against address, returning
// any cycle penalty beyond the table's base Cycles (branches taken/crossed;
// Accumulator-mode shifts are folded in directly since they never take a
// memory operand).
func (cpu *CPU) execute(opcode uint8, address uint16, pageCrossed bool) uint8 {
	switch opcode {
	case 0xA9, 0xA5, 0xB5, 0xAD, 0xBD, 0xB9, 0xA1, 0xB1:
		return cpu.lda(address)
	case 0xA2, 0xA6, 0xB6, 0xAE, 0xBE:
		return cpu.ldx(address)
	case 0xA0, 0xA4, 0xB4, 0xAC, 0xBC:
		return cpu.ldy(address)
	case 0x85, 0x95, 0x8D, 0x9D, 0x99, 0x81, 0x91:
		return cpu.sta(address)
	case 0x86, 0x96, 0x8E:
		return cpu.stx(address)
	case 0x84, 0x94, 0x8C:
		return cpu.sty(address)

	case 0x69, 0x65, 0x75, 0x6D, 0x7D, 0x79, 0x61, 0x71:
		return cpu.adc(address)
	case 0xE9, 0xE5, 0xF5, 0xED, 0xFD, 0xF9, 0xE1, 0xF1:
		return cpu.sbc(address)

	case 0x29, 0x25, 0x35, 0x2D, 0x3D, 0x39, 0x21, 0x31:
		return cpu.and(address)
	case 0x09, 0x05, 0x15, 0x0D, 0x1D, 0x19, 0x01, 0x11:
		return cpu.ora(address)
	case 0x49, 0x45, 0x55, 0x4D, 0x5D, 0x59, 0x41, 0x51:
		return cpu.eor(address)

	case 0x0A:
		cpu.C = cpu.A&0x80 != 0
		cpu.A <<= 1
		cpu.setZN(cpu.A)
		return 0
	case 0x06, 0x16, 0x0E, 0x1E:
		return cpu.asl(address)
	case 0x4A:
		cpu.C = cpu.A&0x01 != 0
		cpu.A >>= 1
		cpu.setZN(cpu.A)
		return 0
	case 0x46, 0x56, 0x4E, 0x5E:
		return cpu.lsr(address)
	case 0x2A:
		oldCarry := cpu.C
		cpu.C = cpu.A&0x80 != 0
		cpu.A <<= 1
		if oldCarry {
			cpu.A |= 0x01
		}
		cpu.setZN(cpu.A)
		return 0
	case 0x26, 0x36, 0x2E, 0x3E:
		return cpu.rol(address)
	case 0x6A:
		oldCarry := cpu.C
		cpu.C = cpu.A&0x01 != 0
		cpu.A >>= 1
		if oldCarry {
			cpu.A |= 0x80
		}
		cpu.setZN(cpu.A)
		return 0
	case 0x66, 0x76, 0x6E, 0x7E:
		return cpu.ror(address)

	case 0xC9, 0xC5, 0xD5, 0xCD, 0xDD, 0xD9, 0xC1, 0xD1:
		return cpu.cmp(address)
	case 0xE0, 0xE4, 0xEC:
		return cpu.cpx(address)
	case 0xC0, 0xC4, 0xCC:
		return cpu.cpy(address)

	case 0xE6, 0xF6, 0xEE, 0xFE:
		return cpu.inc(address)
	case 0xC6, 0xD6, 0xCE, 0xDE:
		return cpu.dec(address)
	case 0xE8:
		cpu.X++
		cpu.setZN(cpu.X)
		return 0
	case 0xCA:
		cpu.X--
		cpu.setZN(cpu.X)
		return 0
	case 0xC8:
		cpu.Y++
		cpu.setZN(cpu.Y)
		return 0
	case 0x88:
		cpu.Y--
		cpu.setZN(cpu.Y)
		return 0

	case 0xAA:
		cpu.X = cpu.A
		cpu.setZN(cpu.X)
		return 0
	case 0x8A:
		cpu.A = cpu.X
		cpu.setZN(cpu.A)
		return 0
	case 0xA8:
		cpu.Y = cpu.A
		cpu.setZN(cpu.Y)
		return 0
	case 0x98:
		cpu.A = cpu.Y
		cpu.setZN(cpu.A)
		return 0
	case 0xBA:
		cpu.X = cpu.SP
		cpu.setZN(cpu.X)
		return 0
	case 0x9A:
		cpu.SP = cpu.X
		return 0

	case 0x48:
		cpu.push(cpu.A)
		return 0
	case 0x68:
		cpu.A = cpu.pop()
		cpu.setZN(cpu.A)
		return 0
	case 0x08:
		cpu.push(cpu.statusByte() | bFlagMask)
		return 0
	case 0x28:
		cpu.setStatusByte(cpu.pop())
		return 0

	case 0x18:
		cpu.C = false
		return 0
	case 0x38:
		cpu.C = true
		return 0
	case 0x58:
		cpu.I = false
		return 0
	case 0x78:
		cpu.I = true
		return 0
	case 0xB8:
		cpu.V = false
		return 0
	case 0xD8:
		cpu.D = false
		return 0
	case 0xF8:
		cpu.D = true
		return 0

	case 0x4C, 0x6C:
		cpu.PC = address
		return 0
	case 0x20:
		cpu.pushWord(cpu.PC - 1)
		cpu.PC = address
		return 0
	case 0x60:
		cpu.PC = cpu.popWord() + 1
		return 0
	case 0x40:
		cpu.setStatusByte(cpu.pop())
		cpu.PC = cpu.popWord()
		return 0

	case 0x90:
		return cpu.branch(!cpu.C, address, pageCrossed)
	case 0xB0:
		return cpu.branch(cpu.C, address, pageCrossed)
	case 0xD0:
		return cpu.branch(!cpu.Z, address, pageCrossed)
	case 0xF0:
		return cpu.branch(cpu.Z, address, pageCrossed)
	case 0x10:
		return cpu.branch(!cpu.N, address, pageCrossed)
	case 0x30:
		return cpu.branch(cpu.N, address, pageCrossed)
	case 0x50:
		return cpu.branch(!cpu.V, address, pageCrossed)
	case 0x70:
		return cpu.branch(cpu.V, address, pageCrossed)

	case 0x24, 0x2C:
		return cpu.bit(address)
	case 0xEA:
		return 0
	case 0x00:
		return cpu.brk()

	default:
		return 0
	}
}

func (cpu *CPU) lda(address uint16) uint8 {
	cpu.A = cpu.memory.Read(address)
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) ldx(address uint16) uint8 {
	cpu.X = cpu.memory.Read(address)
	cpu.setZN(cpu.X)
	return 0
}

func (cpu *CPU) ldy(address uint16) uint8 {
	cpu.Y = cpu.memory.Read(address)
	cpu.setZN(cpu.Y)
	return 0
}

func (cpu *CPU) sta(address uint16) uint8 {
	cpu.memory.Write(address, cpu.A)
	return 0
}

func (cpu *CPU) stx(address uint16) uint8 {
	cpu.memory.Write(address, cpu.X)
	return 0
}

func (cpu *CPU) sty(address uint16) uint8 {
	cpu.memory.Write(address, cpu.Y)
	return 0
}

// adc implements ADC per §4.4: V = ((A^result)&(M^result)&0x80) != 0.
func (cpu *CPU) adc(address uint16) uint8 {
	value := cpu.memory.Read(address)
	var carry uint16
	if cpu.C {
		carry = 1
	}
	sum := uint16(cpu.A) + uint16(value) + carry
	result := uint8(sum)

	cpu.V = (uint16(cpu.A)^sum)&(uint16(value)^sum)&0x80 != 0
	cpu.C = sum > 0xFF
	cpu.A = result
	cpu.setZN(cpu.A)
	return 0
}

// sbc implements SBC per §4.4: treat the operand as its one's complement
// and apply the ADC overflow formula.
func (cpu *CPU) sbc(address uint16) uint8 {
	value := cpu.memory.Read(address) ^ 0xFF
	var carry uint16
	if cpu.C {
		carry = 1
	}
	sum := uint16(cpu.A) + uint16(value) + carry
	result := uint8(sum)

	cpu.V = (uint16(cpu.A)^sum)&(uint16(value)^sum)&0x80 != 0
	cpu.C = sum > 0xFF
	cpu.A = result
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) and(address uint16) uint8 {
	cpu.A &= cpu.memory.Read(address)
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) ora(address uint16) uint8 {
	cpu.A |= cpu.memory.Read(address)
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) eor(address uint16) uint8 {
	cpu.A ^= cpu.memory.Read(address)
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) asl(address uint16) uint8 {
	value := cpu.memory.Read(address)
	cpu.C = value&0x80 != 0
	value <<= 1
	cpu.memory.Write(address, value)
	cpu.setZN(value)
	return 0
}

func (cpu *CPU) lsr(address uint16) uint8 {
	value := cpu.memory.Read(address)
	cpu.C = value&0x01 != 0
	value >>= 1
	cpu.memory.Write(address, value)
	cpu.setZN(value)
	return 0
}

func (cpu *CPU) rol(address uint16) uint8 {
	value := cpu.memory.Read(address)
	oldCarry := cpu.C
	cpu.C = value&0x80 != 0
	value <<= 1
	if oldCarry {
		value |= 0x01
	}
	cpu.memory.Write(address, value)
	cpu.setZN(value)
	return 0
}

func (cpu *CPU) ror(address uint16) uint8 {
	value := cpu.memory.Read(address)
	oldCarry := cpu.C
	cpu.C = value&0x01 != 0
	value >>= 1
	if oldCarry {
		value |= 0x80
	}
	cpu.memory.Write(address, value)
	cpu.setZN(value)
	return 0
}

func (cpu *CPU) cmp(address uint16) uint8 {
	value := cpu.memory.Read(address)
	cpu.C = cpu.A >= value
	cpu.setZN(cpu.A - value)
	return 0
}

func (cpu *CPU) cpx(address uint16) uint8 {
	value := cpu.memory.Read(address)
	cpu.C = cpu.X >= value
	cpu.setZN(cpu.X - value)
	return 0
}

func (cpu *CPU) cpy(address uint16) uint8 {
	value := cpu.memory.Read(address)
	cpu.C = cpu.Y >= value
	cpu.setZN(cpu.Y - value)
	return 0
}

func (cpu *CPU) inc(address uint16) uint8 {
	value := cpu.memory.Read(address) + 1
	cpu.memory.Write(address, value)
	cpu.setZN(value)
	return 0
}

func (cpu *CPU) dec(address uint16) uint8 {
	value := cpu.memory.Read(address) - 1
	cpu.memory.Write(address, value)
	cpu.setZN(value)
	return 0
}

func (cpu *CPU) bit(address uint16) uint8 {
	value := cpu.memory.Read(address)
	cpu.N = value&nFlagMask != 0
	cpu.V = value&vFlagMask != 0
	cpu.Z = cpu.A&value == 0
	return 0
}

// branch applies a conditional branch's PC update and cycle penalty: +1 if
// taken, +1 more if the taken branch crosses a page.
func (cpu *CPU) branch(condition bool, address uint16, pageCrossed bool) uint8 {
	if !condition {
		return 0
	}
	cpu.PC = address
	if pageCrossed {
		return 2
	}
	return 1
}

func (cpu *CPU) brk() uint8 {
	cpu.PC++ // BRK's second byte is a padding signature byte, always skipped.
	cpu.pushWord(cpu.PC)
	cpu.push(cpu.statusByte() | bFlagMask)
	cpu.I = true
	low := uint16(cpu.memory.Read(irqVector))
	high := uint16(cpu.memory.Read(irqVector + 1))
	cpu.PC = (high << 8) | low
	return 0
}
