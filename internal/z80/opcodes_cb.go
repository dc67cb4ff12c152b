package z80

// executeCB implements the 256 CB-plane opcodes: rotate/shift (x=0),
// BIT (x=1), RES (x=2), SET (x=3), each addressing one of the eight
// r[z] operands.
func (c *CPU) executeCB(bus Bus, p *plane, opcode byte) (StopReason, bool) {
	x := opcode >> 6
	y := (opcode >> 3) & 7
	z := opcode & 7

	operand := p.get8(z)

	switch x {
	case 0: // rotate/shift, selected by y
		var result byte
		var f byte
		switch y {
		case 0:
			result, f = rlc8(operand)
		case 1:
			result, f = rrc8(operand)
		case 2:
			result, f = rl8(operand, c.F&FlagC != 0)
		case 3:
			result, f = rr8(operand, c.F&FlagC != 0)
		case 4:
			result, f = sla8(operand)
		case 5:
			result, f = sra8(operand)
		case 6:
			result, f = sll8(operand)
		default: // 7
			result, f = srl8(operand)
		}
		c.F = f
		p.set8(z, result)
	case 1: // BIT y,r[z]
		c.F = bitTest(operand, uint(y), c.F)
	case 2: // RES y,r[z]
		p.set8(z, operand&^(1<<y))
	default: // 3: SET y,r[z]
		p.set8(z, operand|(1<<y))
	}
	return StopNone, false
}

// executeIndexedCB implements the DD CB d op / FD CB d op four-byte
// form: displacement precedes the sub-opcode, the
// operand is always (IX+d)/(IY+d), and — per the well-documented
// "undocumented copy" behavior of the real chip — a non-memory
// destination field (z != 6) additionally receives a copy of the
// result for RLC/RRC/RL/RR/SLA/SRA/SLL/SRL/RES/SET (BIT has no such
// destination; it only sets flags).
func (c *CPU) executeIndexedCB(bus Bus, idxReg *uint16) (StopReason, bool) {
	d := int8(c.fetchByte(bus))
	opcode := c.fetchByte(bus)
	addr := uint16(int32(*idxReg) + int32(d))

	x := opcode >> 6
	y := (opcode >> 3) & 7
	z := opcode & 7

	operand := bus.Read8(addr)

	switch x {
	case 0:
		var result, f byte
		switch y {
		case 0:
			result, f = rlc8(operand)
		case 1:
			result, f = rrc8(operand)
		case 2:
			result, f = rl8(operand, c.F&FlagC != 0)
		case 3:
			result, f = rr8(operand, c.F&FlagC != 0)
		case 4:
			result, f = sla8(operand)
		case 5:
			result, f = sra8(operand)
		case 6:
			result, f = sll8(operand)
		default:
			result, f = srl8(operand)
		}
		c.F = f
		bus.Write8(addr, result)
		if z != 6 {
			writeUndocReg(c, z, result)
		}
	case 1:
		c.F = bitTest(operand, uint(y), c.F)
	case 2:
		result := operand &^ (1 << y)
		bus.Write8(addr, result)
		if z != 6 {
			writeUndocReg(c, z, result)
		}
	default:
		result := operand | (1 << y)
		bus.Write8(addr, result)
		if z != 6 {
			writeUndocReg(c, z, result)
		}
	}
	return StopNone, false
}

// writeUndocReg writes v to one of B,C,D,E,H,L,A (never IXH/IXL/IYH/IYL
// — the indexed-CB copy-back always targets the plain register).
func writeUndocReg(c *CPU, idx byte, v byte) {
	switch idx {
	case 0:
		c.B = v
	case 1:
		c.C = v
	case 2:
		c.D = v
	case 3:
		c.E = v
	case 4:
		c.H = v
	case 5:
		c.L = v
	case 7:
		c.A = v
	}
}
