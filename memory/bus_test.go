package memory

import (
	"testing"

	"github.com/kivra-dev/pocketdmg/addr"
	"github.com/kivra-dev/pocketdmg/cart"
	"github.com/kivra-dev/pocketdmg/serial"
	"github.com/stretchr/testify/assert"
)

func newTestBus() *Bus {
	rom := make([]byte, 0x8000)
	mbc := cart.NewNoMBC(rom)
	return New(mbc, nil, serial.NewLogSink(func() {}))
}

func TestVRAMRoundTrip(t *testing.T) {
	b := newTestBus()
	b.Write(0x8123, 0x5A)
	assert.Equal(t, byte(0x5A), b.Read(0x8123))
}

func TestEchoRAMAliasesWRAM(t *testing.T) {
	b := newTestBus()
	b.Write(0xC100, 0x42)
	assert.Equal(t, byte(0x42), b.Read(0xE100))

	b.Write(0xE200, 0x99)
	assert.Equal(t, byte(0x99), b.Read(0xC200))
}

func TestUnusableRegionReadsFF(t *testing.T) {
	b := newTestBus()
	assert.Equal(t, byte(0xFF), b.Read(0xFEA0))
}

func TestIEAtFFFF(t *testing.T) {
	b := newTestBus()
	b.Write(0xFFFF, 0x1F)
	assert.Equal(t, byte(0x1F), b.IE())
}

func TestSTATWriteMasksLowBits(t *testing.T) {
	b := newTestBus()
	b.SetSTATMode(2)
	b.Write(addr.STAT, 0xFF)

	// bits 0-2 (mode + coincidence) are computed, not writable.
	assert.Equal(t, byte(2), b.STAT()&0x03)
	assert.Equal(t, byte(0xF8), b.STAT()&0xF8)
}

func TestOAMDMACopies160Bytes(t *testing.T) {
	b := newTestBus()
	for i := 0; i < 0xA0; i++ {
		b.Write(0xC000+uint16(i), byte(i))
	}

	b.Write(addr.DMA, 0xC0)

	for i := 0; i < 0xA0; i++ {
		assert.Equal(t, byte(i), b.Read(0xFE00+uint16(i)))
	}
}

func TestBootROMReadThroughAndWriteOnceDisable(t *testing.T) {
	bootROM := make([]byte, 256)
	bootROM[0] = 0x31 // LD SP,d16
	rom := make([]byte, 0x8000)
	rom[0] = 0xAA

	b := New(cart.NewNoMBC(rom), bootROM, serial.NewLogSink(func() {}))

	assert.True(t, b.BootROMEnabled())
	assert.Equal(t, byte(0x31), b.Read(0x0000))

	b.Write(addr.BootROMDisable, 0x01)
	assert.False(t, b.BootROMEnabled())
	assert.Equal(t, byte(0xAA), b.Read(0x0000))

	b.Write(addr.BootROMDisable, 0x00) // further writes are no-ops
	assert.False(t, b.BootROMEnabled())
}

func TestJoypadThroughBus(t *testing.T) {
	b := newTestBus()
	b.Joypad.SetKeys(Keys{A: true})
	b.Write(addr.P1, 0x10) // select buttons group (bit5=0 -> selected)

	v := b.Read(addr.P1)
	assert.False(t, v&0x01 != 0) // A pressed -> bit0 low
}

func TestIFMasksToFiveBits(t *testing.T) {
	b := newTestBus()
	b.Write(addr.IF, 0xFF)
	assert.Equal(t, byte(0x1F), b.IF())
}
