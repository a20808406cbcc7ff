package cpu

import (
	"github.com/kivra-dev/pocketdmg/addr"
	"github.com/kivra-dev/pocketdmg/bit"
)

// This file decodes and executes one instruction per call, using the
// classic x/y/z/p/q bit layout of the opcode byte:
//
//	byte  = 0bxxyyyzzz   (x: 2 bits, y: 3 bits, z: 3 bits)
//	p     = y >> 1
//	q     = y & 1
//
// Every base and 0xCB-prefixed opcode falls out of this decomposition;
// the eleven undefined slots (0xD3 0xDB 0xDD 0xE3 0xE4 0xEB 0xEC 0xED
// 0xF4 0xFC 0xFD) are exactly the x=3 z=4 cases with y>=4, the stray
// x=3 z=3 y in {2,3,4,5} duplicates, and the three x=3 z=5 q=1 slots
// other than CALL (the Z80's 0xDD/0xED/0xFD prefix bytes). Rather than name ~500 functions individually, the tables
// below drive a single dispatcher, matching the opcode's own regular
// structure.

// readReg8/writeReg8 index the eight 8-bit operand slots, where index
// 6 means "through (HL)" rather than a register.
func (c *CPU) readReg8(i uint8) byte {
	switch i {
	case 0:
		return c.b
	case 1:
		return c.c
	case 2:
		return c.d
	case 3:
		return c.e
	case 4:
		return c.h
	case 5:
		return c.l
	case 6:
		return c.mem.Read(c.HL())
	default:
		return c.a
	}
}

func (c *CPU) writeReg8(i uint8, v byte) {
	switch i {
	case 0:
		c.b = v
	case 1:
		c.c = v
	case 2:
		c.d = v
	case 3:
		c.e = v
	case 4:
		c.h = v
	case 5:
		c.l = v
	case 6:
		c.mem.Write(c.HL(), v)
	default:
		c.a = v
	}
}

func (c *CPU) readRP(p uint8) uint16 {
	switch p {
	case 0:
		return c.BC()
	case 1:
		return c.DE()
	case 2:
		return c.HL()
	default:
		return c.sp
	}
}

func (c *CPU) writeRP(p uint8, v uint16) {
	switch p {
	case 0:
		c.SetBC(v)
	case 1:
		c.SetDE(v)
	case 2:
		c.SetHL(v)
	default:
		c.sp = v
	}
}

func (c *CPU) readRP2(p uint8) uint16 {
	switch p {
	case 0:
		return c.BC()
	case 1:
		return c.DE()
	case 2:
		return c.HL()
	default:
		return c.AF()
	}
}

func (c *CPU) writeRP2(p uint8, v uint16) {
	switch p {
	case 0:
		c.SetBC(v)
	case 1:
		c.SetDE(v)
	case 2:
		c.SetHL(v)
	default:
		c.SetAF(v)
	}
}

func (c *CPU) condition(y uint8) bool {
	switch y & 0x03 {
	case 0:
		return !c.Zero()
	case 1:
		return c.Zero()
	case 2:
		return !c.Carry()
	default:
		return c.Carry()
	}
}

// execute fetches and runs one instruction, returning its M-cycle cost.
func (c *CPU) execute() int {
	op := c.fetch8()

	x := op >> 6
	y := (op >> 3) & 0x07
	z := op & 0x07
	p := y >> 1
	q := y & 0x01

	switch x {
	case 0:
		return c.executeX0(op, y, z, p, q)
	case 1:
		return c.executeX1(y, z)
	case 2:
		return c.executeX2(y, z)
	default:
		return c.executeX3(op, y, z, p, q)
	}
}

func (c *CPU) executeX0(op, y, z, p, q uint8) int {
	switch z {
	case 0:
		switch {
		case y == 0: // NOP
			return 1
		case y == 1: // LD (a16),SP
			addr := c.fetch16()
			c.mem.Write(addr, bit.Low(c.sp))
			c.mem.Write(addr+1, bit.High(c.sp))
			return 5
		case y == 2: // STOP
			c.fetch8()
			c.stopped = true
			c.mem.Write(addr.DIV, 0)
			return 1
		case y == 3: // JR r8
			offset := int8(c.fetch8())
			c.pc = uint16(int32(c.pc) + int32(offset))
			return 3
		default: // JR cc,r8  (y 4..7)
			offset := int8(c.fetch8())
			if c.condition(y - 4) {
				c.pc = uint16(int32(c.pc) + int32(offset))
				return 3
			}
			return 2
		}
	case 1:
		if q == 0 { // LD rp[p],d16
			c.writeRP(p, c.fetch16())
			return 3
		}
		// ADD HL,rp[p]
		c.addHL(c.readRP(p))
		return 2
	case 2:
		addr := c.hlLikeAddr(p, q)
		if q == 0 {
			c.mem.Write(addr, c.a)
		} else {
			c.a = c.mem.Read(addr)
		}
		return 2
	case 3:
		if q == 0 {
			c.writeRP(p, c.readRP(p)+1)
		} else {
			c.writeRP(p, c.readRP(p)-1)
		}
		return 2
	case 4: // INC r[y]
		if y == 6 {
			c.writeReg8(6, c.inc8(c.readReg8(6)))
			return 3
		}
		c.writeReg8(y, c.inc8(c.readReg8(y)))
		return 1
	case 5: // DEC r[y]
		if y == 6 {
			c.writeReg8(6, c.dec8(c.readReg8(6)))
			return 3
		}
		c.writeReg8(y, c.dec8(c.readReg8(y)))
		return 1
	case 6: // LD r[y],d8
		v := c.fetch8()
		if y == 6 {
			c.writeReg8(6, v)
			return 3
		}
		c.writeReg8(y, v)
		return 2
	default: // z==7, assorted single-byte A/flag ops
		switch y {
		case 0:
			c.a = c.rlc(c.a)
			c.setFlag(flagZ, false)
		case 1:
			c.a = c.rrc(c.a)
			c.setFlag(flagZ, false)
		case 2:
			c.a = c.rl(c.a)
			c.setFlag(flagZ, false)
		case 3:
			c.a = c.rr(c.a)
			c.setFlag(flagZ, false)
		case 4:
			c.daa()
		case 5:
			c.cpl()
		case 6:
			c.scf()
		default:
			c.ccf()
		}
		return 1
	}
}

// hlLikeAddr resolves the indirect address for the z==2 LD A,(..)/LD
// (..),A family: (BC), (DE), (HL+), (HL-).
func (c *CPU) hlLikeAddr(p, q uint8) uint16 {
	switch p {
	case 0:
		return c.BC()
	case 1:
		return c.DE()
	case 2:
		addr := c.HL()
		c.SetHL(addr + 1)
		return addr
	default:
		addr := c.HL()
		c.SetHL(addr - 1)
		return addr
	}
}

func (c *CPU) executeX1(y, z uint8) int {
	if y == 6 && z == 6 {
		c.halted = true
		pending := c.mem.Read(0xFFFF) & c.mem.Read(0xFF0F) & 0x1F
		if !c.ime && pending != 0 {
			c.halted = false
			c.haltBug = true
		}
		return 1
	}
	v := c.readReg8(z)
	c.writeReg8(y, v)
	if y == 6 || z == 6 {
		return 2
	}
	return 1
}

func (c *CPU) executeX2(y, z uint8) int {
	v := c.readReg8(z)
	switch y {
	case 0:
		c.add(v)
	case 1:
		c.adc(v)
	case 2:
		c.sub(v)
	case 3:
		c.sbc(v)
	case 4:
		c.and(v)
	case 5:
		c.xor(v)
	case 6:
		c.or(v)
	default:
		c.cp(v)
	}
	if z == 6 {
		return 2
	}
	return 1
}

func (c *CPU) executeX3(op, y, z, p, q uint8) int {
	switch z {
	case 0:
		switch {
		case y <= 3: // RET cc
			if c.condition(y) {
				c.pc = c.pop16()
				return 4
			}
			return 2
		case y == 4: // LD (0xFF00+a8),A
			addr := 0xFF00 + uint16(c.fetch8())
			c.mem.Write(addr, c.a)
			return 3
		case y == 5: // ADD SP,r8
			e := int8(c.fetch8())
			c.sp = c.addSPSigned(e)
			return 4
		case y == 6: // LD A,(0xFF00+a8)
			addr := 0xFF00 + uint16(c.fetch8())
			c.a = c.mem.Read(addr)
			return 3
		default: // LD HL,SP+r8
			e := int8(c.fetch8())
			c.SetHL(c.addSPSigned(e))
			return 3
		}
	case 1:
		if q == 0 { // POP rp2[p]
			c.writeRP2(p, c.pop16())
			return 3
		}
		switch p {
		case 0: // RET
			c.pc = c.pop16()
			return 4
		case 1: // RETI
			c.pc = c.pop16()
			c.ime = true
			return 4
		case 2: // JP HL
			c.pc = c.HL()
			return 1
		default: // LD SP,HL
			c.sp = c.HL()
			return 2
		}
	case 2:
		switch {
		case y <= 3: // JP cc,a16
			addr := c.fetch16()
			if c.condition(y) {
				c.pc = addr
				return 4
			}
			return 3
		case y == 4: // LD (0xFF00+C),A
			c.mem.Write(0xFF00+uint16(c.c), c.a)
			return 2
		case y == 5: // LD (a16),A
			addr := c.fetch16()
			c.mem.Write(addr, c.a)
			return 4
		case y == 6: // LD A,(0xFF00+C)
			c.a = c.mem.Read(0xFF00 + uint16(c.c))
			return 2
		default: // LD A,(a16)
			addr := c.fetch16()
			c.a = c.mem.Read(addr)
			return 4
		}
	case 3:
		switch y {
		case 0: // JP a16
			c.pc = c.fetch16()
			return 4
		case 1: // CB prefix
			return c.executeCB()
		case 6: // DI
			c.ime = false
			c.eiDelay = 0
			return 1
		case 7: // EI
			c.eiDelay = 2
			return 1
		default:
			return c.invalidOpcode(op)
		}
	case 4: // CALL cc,a16
		if y > 3 {
			return c.invalidOpcode(op)
		}
		addr := c.fetch16()
		if y <= 3 && c.condition(y) {
			c.push16(c.pc)
			c.pc = addr
			return 6
		}
		if y <= 3 {
			return 3
		}
		return c.invalidOpcode(op)
	case 5:
		if q == 0 { // PUSH rp2[p]
			c.push16(c.readRP2(p))
			return 4
		}
		if p == 0 { // CALL a16
			addr := c.fetch16()
			c.push16(c.pc)
			c.pc = addr
			return 6
		}
		return c.invalidOpcode(op)
	case 6: // ALU A,d8
		v := c.fetch8()
		switch y {
		case 0:
			c.add(v)
		case 1:
			c.adc(v)
		case 2:
			c.sub(v)
		case 3:
			c.sbc(v)
		case 4:
			c.and(v)
		case 5:
			c.xor(v)
		case 6:
			c.or(v)
		default:
			c.cp(v)
		}
		return 2
	default: // RST y*8
		c.push16(c.pc)
		c.pc = uint16(y) * 8
		return 4
	}
}

// executeCB decodes the 0xCB-prefixed opcode space: rotates/shifts and
// BIT/RES/SET, uniformly addressed over the same eight operand slots.
func (c *CPU) executeCB() int {
	op := c.fetch8()
	x := op >> 6
	y := (op >> 3) & 0x07
	z := op & 0x07

	cost := 2
	if z == 6 {
		cost = 4
	}

	switch x {
	case 0:
		v := c.readReg8(z)
		var result byte
		switch y {
		case 0:
			result = c.rlc(v)
		case 1:
			result = c.rrc(v)
		case 2:
			result = c.rl(v)
		case 3:
			result = c.rr(v)
		case 4:
			result = c.sla(v)
		case 5:
			result = c.sra(v)
		case 6:
			result = c.swap(v)
		default:
			result = c.srl(v)
		}
		c.writeReg8(z, result)
		return cost
	case 1: // BIT y,r[z]
		c.bitTest(y, c.readReg8(z))
		if z == 6 {
			return 3
		}
		return 2
	case 2: // RES y,r[z]
		c.writeReg8(z, bit.Reset(y, c.readReg8(z)))
		return cost
	default: // SET y,r[z]
		c.writeReg8(z, bit.Set(y, c.readReg8(z)))
		return cost
	}
}

// invalidOpcode marks execution of one of the eleven undefined LR35902
// opcodes. Real hardware locks up; this core fails the session instead
// of silently corrupting state.
func (c *CPU) invalidOpcode(op byte) int {
	panic(&InvalidOpcodeError{Opcode: op, PC: c.pc - 1})
}

// InvalidOpcodeError reports a fetch of one of the eleven undefined
// opcodes, a fatal condition per the error handling design.
type InvalidOpcodeError struct {
	Opcode byte
	PC     uint16
}

func (e *InvalidOpcodeError) Error() string {
	return "invalid opcode 0x" + hexByte(e.Opcode) + " at 0x" + hexWord(e.PC)
}

const hexDigits = "0123456789ABCDEF"

func hexByte(b byte) string {
	return string([]byte{hexDigits[b>>4], hexDigits[b&0x0F]})
}

func hexWord(w uint16) string {
	return hexByte(bit.High(w)) + hexByte(bit.Low(w))
}
