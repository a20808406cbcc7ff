package cpu

import (
	"testing"

	"github.com/kivra-dev/pocketdmg/addr"
	"github.com/stretchr/testify/assert"
)

// fakeMemory is a flat byte-addressed memory good enough to drive the
// decoder in isolation, without pulling in the real bus.
type fakeMemory struct {
	data map[uint16]byte
}

func newFakeMemory() *fakeMemory {
	return &fakeMemory{data: make(map[uint16]byte)}
}

func (m *fakeMemory) Read(address uint16) byte  { return m.data[address] }
func (m *fakeMemory) Write(address uint16, v byte) { m.data[address] = v }

func (m *fakeMemory) loadAt(pc uint16, bytes ...byte) {
	for i, b := range bytes {
		m.data[pc+uint16(i)] = b
	}
}

func TestPostBootState(t *testing.T) {
	mem := newFakeMemory()
	c := New(mem)
	c.SetPostBootState()

	assert.Equal(t, uint16(0x0100), c.PC())
	assert.Equal(t, uint16(0xFFFE), c.SP())
	assert.Equal(t, uint16(0x01B0), c.AF())
}

func TestLoadImmediate(t *testing.T) {
	mem := newFakeMemory()
	c := New(mem)
	c.SetPC(0x100)
	mem.loadAt(0x100, 0x3E, 0x42) // LD A,0x42

	cycles := c.Step()

	assert.Equal(t, byte(0x42), c.readReg8(7))
	assert.Equal(t, 2, cycles)
	assert.Equal(t, uint16(0x102), c.PC())
}

func TestAddSetsFlags(t *testing.T) {
	mem := newFakeMemory()
	c := New(mem)
	c.SetPC(0x100)
	c.a = 0x0F
	mem.loadAt(0x100, 0xC6, 0x01) // ADD A,0x01

	c.Step()

	assert.Equal(t, byte(0x10), c.a)
	assert.True(t, c.HalfCarry())
	assert.False(t, c.Carry())
	assert.False(t, c.Zero())
}

func TestDAAAfterSubtraction(t *testing.T) {
	mem := newFakeMemory()
	c := New(mem)
	c.SetPC(0x100)

	// 0x42 - 0x29 in BCD: binary sub first, then DAA corrects it.
	c.a = 0x42
	mem.loadAt(0x100, 0xD6, 0x29, 0x27) // SUB 0x29 ; DAA

	c.Step()
	assert.Equal(t, byte(0x19), c.a)
	assert.True(t, c.Subtract())

	c.Step()
	assert.Equal(t, byte(0x13), c.a)
	assert.False(t, c.Zero())
}

func TestJRConditionalTiming(t *testing.T) {
	mem := newFakeMemory()
	c := New(mem)
	c.SetPC(0x100)
	c.setFlag(flagZ, false)
	mem.loadAt(0x100, 0x20, 0x05) // JR NZ,+5

	cycles := c.Step()

	assert.Equal(t, 3, cycles)
	assert.Equal(t, uint16(0x107), c.PC())
}

func TestInvalidOpcodePanics(t *testing.T) {
	mem := newFakeMemory()
	c := New(mem)
	c.SetPC(0x100)
	mem.loadAt(0x100, 0xD3)

	assert.Panics(t, func() { c.Step() })
}

func TestStopEntersStoppedModeAndResetsDIV(t *testing.T) {
	mem := newFakeMemory()
	c := New(mem)
	c.SetPC(0x100)
	mem.data[addr.DIV] = 0x9C
	mem.loadAt(0x100, 0x10, 0x00) // STOP

	cycles := c.Step()

	assert.Equal(t, 1, cycles)
	assert.True(t, c.Stopped())
	assert.Equal(t, byte(0), mem.data[addr.DIV])
	assert.Equal(t, uint16(0x102), c.PC())

	// Stopped mode burns 1 M-cycle per Step without executing further
	// instructions, until woken.
	mem.loadAt(0x102, 0x3E, 0x42) // LD A,0x42 - must not execute
	cycles = c.Step()
	assert.Equal(t, 1, cycles)
	assert.Equal(t, uint16(0x102), c.PC())
	assert.Equal(t, byte(0), c.a)

	c.WakeFromStop()
	c.Step()
	assert.False(t, c.Stopped())
	assert.Equal(t, byte(0x42), c.a)
}

func TestPushPopRoundTrip(t *testing.T) {
	mem := newFakeMemory()
	c := New(mem)
	c.SetSP(0xFFFE)
	c.SetBC(0x1234)

	c.push16(c.BC())
	c.SetBC(0x0000)
	c.SetBC(c.pop16())

	assert.Equal(t, uint16(0x1234), c.BC())
	assert.Equal(t, uint16(0xFFFE), c.SP())
}
