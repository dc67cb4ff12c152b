package z80

// executeOpcode dispatches one already-fetched opcode byte, following
// any further prefix bytes it requires, and returns a stop reason the
// same way Step does.
func (c *CPU) executeOpcode(bus Bus, opcode byte) (StopReason, bool) {
	switch opcode {
	case 0xCB:
		sub := c.fetchByte(bus)
		return c.executeCB(bus, normalPlane(c, bus), sub)
	case 0xED:
		sub := c.fetchByte(bus)
		return c.executeED(bus, sub)
	case 0xDD, 0xFD:
		reg := &c.IX
		if opcode == 0xFD {
			reg = &c.IY
		}
		// Consecutive index prefixes: the last one wins; each consumed
		// byte still advances PC/R like any other fetch.
		next := c.fetchByte(bus)
		for next == 0xDD || next == 0xFD {
			reg = &c.IX
			if next == 0xFD {
				reg = &c.IY
			}
			next = c.fetchByte(bus)
		}
		if next == 0xCB {
			return c.executeIndexedCB(bus, reg)
		}
		if next == 0xED {
			// DD ED / FD ED: the index prefix has no effect on the ED
			// plane; behaves exactly as an unprefixed ED instruction.
			sub := c.fetchByte(bus)
			return c.executeED(bus, sub)
		}
		return c.executePrimary(bus, indexedPlane(c, bus, reg), next)
	default:
		return c.executePrimary(bus, normalPlane(c, bus), opcode)
	}
}

// condition evaluates one of the eight branch conditions (NZ,Z,NC,C,
// PO,PE,P,M) against the current flags.
func (c *CPU) condition(y byte) bool {
	switch y {
	case 0:
		return c.F&FlagZ == 0
	case 1:
		return c.F&FlagZ != 0
	case 2:
		return c.F&FlagC == 0
	case 3:
		return c.F&FlagC != 0
	case 4:
		return c.F&FlagPV == 0
	case 5:
		return c.F&FlagPV != 0
	case 6:
		return c.F&FlagS == 0
	default:
		return c.F&FlagS != 0
	}
}

// execALU applies ALU operation y (ADD,ADC,SUB,SBC,AND,XOR,OR,CP) to A.
func (c *CPU) execALU(y byte, operand byte) {
	switch y {
	case 0:
		c.A, c.F = add8(c.A, operand, false)
	case 1:
		c.A, c.F = add8(c.A, operand, c.F&FlagC != 0)
	case 2:
		c.A, c.F = sub8(c.A, operand, false)
	case 3:
		c.A, c.F = sub8(c.A, operand, c.F&FlagC != 0)
	case 4:
		c.A, c.F = and8(c.A, operand)
	case 5:
		c.A, c.F = xor8(c.A, operand)
	case 6:
		c.A, c.F = or8(c.A, operand)
	case 7:
		c.F = cp8(c.A, operand)
	}
}

// executePrimary implements the 256 primary opcodes, shared by the
// unprefixed, DD- and FD-prefixed planes via the plane abstraction,
// decoded with the conventional x/y/z/p/q Z80 opcode-field breakdown.
func (c *CPU) executePrimary(bus Bus, p *plane, opcode byte) (StopReason, bool) {
	x := opcode >> 6
	y := (opcode >> 3) & 7
	z := opcode & 7
	pp := y >> 1
	q := y & 1

	switch x {
	case 0:
		return c.executeX0(bus, p, z, y, pp, q)
	case 1:
		if z == 6 && y == 6 {
			c.Halted = true
			return StopNone, false
		}
		p.set8(y, p.get8(z))
		return StopNone, false
	case 2:
		c.execALU(y, p.get8(z))
		return StopNone, false
	default: // x == 3
		return c.executeX3(bus, p, z, y, pp, q)
	}
}

func (c *CPU) executeX0(bus Bus, p *plane, z, y, pp, q byte) (StopReason, bool) {
	switch z {
	case 0:
		switch y {
		case 0: // NOP
		case 1:
			c.ExchangeAF()
		case 2: // DJNZ d
			d := int8(c.fetchByte(bus))
			c.B--
			if c.B != 0 {
				c.PC = uint16(int32(c.PC) + int32(d))
			}
		case 3: // JR d
			d := int8(c.fetchByte(bus))
			c.PC = uint16(int32(c.PC) + int32(d))
		default: // JR cc,d (y=4..7 -> cc 0..3)
			d := int8(c.fetchByte(bus))
			if c.condition(y - 4) {
				c.PC = uint16(int32(c.PC) + int32(d))
			}
		}
	case 1:
		if q == 0 {
			p.setReg16(pp, c.fetchWord(bus))
		} else {
			result, f := add16(p.getHL(), p.getReg16(pp), c.F)
			p.setHL(result)
			c.F = f
		}
	case 2:
		switch {
		case pp == 0 && q == 0:
			bus.Write8(c.BC(), c.A)
		case pp == 1 && q == 0:
			bus.Write8(c.DE(), c.A)
		case pp == 2 && q == 0:
			bus.Write16(c.fetchWord(bus), p.getHL())
		case pp == 3 && q == 0:
			bus.Write8(c.fetchWord(bus), c.A)
		case pp == 0 && q == 1:
			c.A = bus.Read8(c.BC())
		case pp == 1 && q == 1:
			c.A = bus.Read8(c.DE())
		case pp == 2 && q == 1:
			p.setHL(bus.Read16(c.fetchWord(bus)))
		default: // pp == 3, q == 1
			c.A = bus.Read8(c.fetchWord(bus))
		}
	case 3:
		if q == 0 {
			p.setReg16(pp, p.getReg16(pp)+1)
		} else {
			p.setReg16(pp, p.getReg16(pp)-1)
		}
	case 4:
		p.set8(y, inc8Apply(c, p.get8(y)))
	case 5:
		p.set8(y, dec8Apply(c, p.get8(y)))
	case 6:
		if y == 6 { // LD (HL),n / LD (IX+d),n: displacement precedes the immediate
			addr := p.memAddr()
			n := c.fetchByte(bus)
			bus.Write8(addr, n)
		} else {
			p.set8(y, c.fetchByte(bus))
		}
	case 7:
		switch y {
		case 0: // RLCA
			r, f := rlc8(c.A)
			c.A = r
			c.F = (f &^ (FlagS | FlagZ | FlagPV)) | (c.F & (FlagS | FlagZ | FlagPV))
		case 1: // RRCA
			r, f := rrc8(c.A)
			c.A = r
			c.F = (f &^ (FlagS | FlagZ | FlagPV)) | (c.F & (FlagS | FlagZ | FlagPV))
		case 2: // RLA
			r, f := rl8(c.A, c.F&FlagC != 0)
			c.A = r
			c.F = (f &^ (FlagS | FlagZ | FlagPV)) | (c.F & (FlagS | FlagZ | FlagPV))
		case 3: // RRA
			r, f := rr8(c.A, c.F&FlagC != 0)
			c.A = r
			c.F = (f &^ (FlagS | FlagZ | FlagPV)) | (c.F & (FlagS | FlagZ | FlagPV))
		case 4: // DAA
			c.A, c.F = daa(c.A, c.F)
		case 5: // CPL
			c.A = ^c.A
			c.F = (c.F & (FlagS | FlagZ | FlagPV | FlagC)) | FlagH | FlagN | undocFlags(c.A)
		case 6: // SCF
			c.F = (c.F & (FlagS | FlagZ | FlagPV)) | FlagC | undocFlags(c.A)
		case 7: // CCF
			wasC := c.F & FlagC
			c.F = (c.F & (FlagS | FlagZ | FlagPV)) | undocFlags(c.A)
			if wasC == 0 {
				c.F |= FlagC
			} else {
				c.F |= FlagH
			}
		}
	}
	return StopNone, false
}

func (c *CPU) executeX3(bus Bus, p *plane, z, y, pp, q byte) (StopReason, bool) {
	switch z {
	case 0: // RET cc
		if c.condition(y) {
			c.PC = c.pop(bus)
		}
	case 1:
		if q == 0 {
			p.setPushPop16(pp, c.pop(bus))
		} else {
			switch pp {
			case 0: // RET
				c.PC = c.pop(bus)
			case 1: // EXX
				c.ExchangeX()
			case 2: // JP (HL)/(IX)/(IY)
				c.PC = p.getHL()
			default: // LD SP,HL/IX/IY
				c.SP = p.getHL()
			}
		}
	case 2: // JP cc,nn
		addr := c.fetchWord(bus)
		if c.condition(y) {
			c.PC = addr
		}
	case 3:
		switch y {
		case 0: // JP nn
			c.PC = c.fetchWord(bus)
		case 2: // OUT (n),A
			n := c.fetchByte(bus)
			bus.Out(n, c.A)
		case 3: // IN A,(n)
			n := c.fetchByte(bus)
			c.A = bus.In(n)
		case 4: // EX (SP),HL/IX/IY
			v := bus.Read16(c.SP)
			bus.Write16(c.SP, p.getHL())
			p.setHL(v)
		case 5: // EX DE,HL -- never redirected by DD/FD
			c.D, c.H = c.H, c.D
			c.E, c.L = c.L, c.E
		case 6: // DI
			c.IFF1 = false
			c.IFF2 = false
		case 7: // EI
			c.eiPending = true
		}
	case 4: // CALL cc,nn
		addr := c.fetchWord(bus)
		if c.condition(y) {
			c.push(bus, c.PC)
			c.PC = addr
		}
	case 5:
		if q == 0 {
			c.push(bus, p.getPushPop16(pp))
		} else if pp == 0 { // CALL nn
			addr := c.fetchWord(bus)
			c.push(bus, c.PC)
			c.PC = addr
		}
		// pp==1,2,3 (DD/ED/FD prefixes) are intercepted in executeOpcode.
	case 6: // ALU n
		c.execALU(y, c.fetchByte(bus))
	case 7: // RST y*8
		c.push(bus, c.PC)
		c.PC = uint16(y) * 8
	}
	return StopNone, false
}

func inc8Apply(c *CPU, v byte) byte {
	r, f := inc8(v)
	c.F = (c.F & FlagC) | (f &^ FlagC)
	return r
}

func dec8Apply(c *CPU, v byte) byte {
	r, f := dec8(v)
	c.F = (c.F & FlagC) | (f &^ FlagC)
	return r
}
