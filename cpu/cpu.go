package cpu

import "github.com/kivra-dev/pocketdmg/addr"

// Step advances the CPU by exactly one interrupt dispatch or one
// instruction, whichever applies, and returns the M-cycles consumed.
// The scheduler calls this once per tick-loop iteration (§4.7).
func (c *CPU) Step() int {
	if c.stopped {
		return 1
	}

	if serviced, cycles := c.serviceInterrupt(); serviced {
		return cycles
	}

	var cycles int
	if c.halted {
		cycles = 1
	} else {
		cycles = c.execute()
	}

	if c.eiDelay > 0 {
		c.eiDelay--
		if c.eiDelay == 0 {
			c.ime = true
		}
	}

	return cycles
}

// serviceInterrupt implements the IME/IE/IF protocol from §4.6: a
// pending interrupt wakes HALT unconditionally, but only IME gates an
// actual dispatch (5 M-cycles: 2 internal, 2 to push PC, 1 to load the
// vector).
func (c *CPU) serviceInterrupt() (bool, int) {
	pending := c.mem.Read(addr.IE) & c.mem.Read(addr.IF) & 0x1F
	if pending == 0 {
		return false, 0
	}

	if c.halted {
		c.halted = false
	}

	if !c.ime {
		return false, 0
	}

	for i := uint8(0); i < 5; i++ {
		if pending&(1<<i) == 0 {
			continue
		}
		c.ime = false
		ifReg := c.mem.Read(addr.IF) &^ (1 << i)
		c.mem.Write(addr.IF, ifReg)
		c.push16(c.pc)
		c.pc = addr.Interrupt(i).Vector()
		return true, 5
	}

	return false, 0
}
