package z80

// Run executes instructions until one of the stop conditions is
// reached: a HALT with interrupts disabled, an unbound-port trap, a
// fatal peripheral error, an illegal opcode, or an external user-stop
// request. stopRequested is polled at instruction boundaries only.
func (c *CPU) Run(bus Bus, stopRequested func() bool) StopReason {
	for {
		if stopRequested != nil && stopRequested() {
			return StopUserInt
		}
		if reason, stop := c.Step(bus); stop {
			return reason
		}
	}
}

// Step executes exactly one instruction boundary's worth of work:
// interrupt acceptance (if pending and enabled), then fetch-decode-
// execute of one instruction. It returns (reason, true) when the CPU
// should stop, or (StopNone, false) to keep running.
func (c *CPU) Step(bus Bus) (StopReason, bool) {
	if c.PendingType != PendingNone {
		c.acceptInterrupt(bus)
	}

	if c.Halted {
		// Nothing will ever wake a halted CPU with interrupts disabled;
		// a HALT with IFF1 set just idles waiting for an interrupt, so
		// the caller only sees StopOpHalt once acceptInterrupt cannot
		// clear Halted (see acceptInterrupt).
		if !c.IFF1 {
			return StopOpHalt, true
		}
		c.bumpR()
		return StopNone, false
	}

	wasEI := c.eiPending
	c.eiPending = false

	opcode := c.fetchByte(bus)
	reason, stop := c.executeOpcode(bus, opcode)

	if wasEI {
		c.IFF1 = true
		c.IFF2 = true
	}

	if bus.IOFailed() {
		return StopIOError, true
	}
	if bus.IOTrapped() {
		return StopIOTrap, true
	}
	return reason, stop
}

// fetchByte reads the byte at PC, advances PC, and bumps R. Every byte
// fetched from the instruction stream — opcode, prefix, or operand —
// goes through here so PC/R bookkeeping can never be done twice or
// skipped.
func (c *CPU) fetchByte(bus Bus) byte {
	v := bus.Read8(c.PC)
	c.PC++
	c.bumpR()
	return v
}

// fetchWord reads a little-endian 16-bit immediate from the instruction
// stream.
func (c *CPU) fetchWord(bus Bus) uint16 {
	lo := c.fetchByte(bus)
	hi := c.fetchByte(bus)
	return uint16(hi)<<8 | uint16(lo)
}

// push pushes a 16-bit value onto the stack, predecrementing SP.
func (c *CPU) push(bus Bus, v uint16) {
	c.SP -= 2
	bus.Write16(c.SP, v)
}

// pop pops a 16-bit value off the stack, postincrementing SP.
func (c *CPU) pop(bus Bus) uint16 {
	v := bus.Read16(c.SP)
	c.SP += 2
	return v
}

// RaiseNMI latches a non-maskable interrupt, always accepted at the next
// instruction boundary regardless of IFF1.
func (c *CPU) RaiseNMI() {
	c.PendingType = PendingNMI
}

// RaiseINT latches a maskable interrupt with the given data byte (used
// by IM 0 to supply the injected opcode, and by IM 2 to supply the low
// byte of the vector-table index).
func (c *CPU) RaiseINT(data byte) {
	if c.PendingType == PendingNMI {
		return // NMI takes priority; don't downgrade a latched NMI
	}
	c.PendingType = PendingINT
	c.PendingData = data
}

// acceptInterrupt accepts a latched NMI or maskable INT at an
// instruction boundary: NMI always wins and is always accepted; a
// maskable INT is accepted only if IFF1 is set, and dispatches
// according to the current interrupt mode.
func (c *CPU) acceptInterrupt(bus Bus) {
	kind := c.PendingType
	if kind == PendingINT && !c.IFF1 {
		return // maskable interrupt, currently disabled: stays latched
	}

	c.Halted = false
	c.PendingType = PendingNone

	if kind == PendingNMI {
		c.push(bus, c.PC)
		c.IFF2 = c.IFF1
		c.IFF1 = false
		c.PC = 0x0066
		return
	}

	// Maskable INT accept.
	c.IFF1 = false
	c.IFF2 = false
	switch c.IM {
	case IM1:
		c.push(bus, c.PC)
		c.PC = 0x0038
	case IM2:
		vecAddr := uint16(c.I)<<8 | uint16(c.PendingData)
		c.push(bus, c.PC)
		c.PC = bus.Read16(vecAddr)
	default: // IM0: execute the injected opcode directly (typically an RST)
		c.executeOpcode(bus, c.PendingData)
	}
}
