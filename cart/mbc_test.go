package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoMBCReadsDirectlyAndIgnoresWrites(t *testing.T) {
	rom := make([]byte, 0x8000)
	rom[0x150] = 0x42
	m := NewNoMBC(rom)

	assert.Equal(t, byte(0x42), m.Read(0x150))

	m.Write(0x2000, 0xFF)
	assert.Equal(t, byte(0x42), m.Read(0x150))
}

func TestNoMBCOutOfBoundsReturnsFF(t *testing.T) {
	m := NewNoMBC(make([]byte, 0x4000))
	assert.Equal(t, byte(0xFF), m.Read(0x7FFF))
}

// TestMBC1BankSelection exercises the scenario where bank1=0x01 and
// bank2=0x01 are written in ROM-banking mode: the effective high bank
// is (bank2<<5 | bank1) = 33.
func TestMBC1BankSelection(t *testing.T) {
	romBankCount := uint16(64)
	rom := make([]byte, uint32(romBankCount)*0x4000)
	// stamp bank 33 with a marker byte at its first address
	marker := byte(0xAB)
	rom[uint32(33)*0x4000] = marker

	m := NewMBC1(rom, romBankCount, 0)

	m.Write(0x2000, 0x01) // bank1 = 1
	m.Write(0x4000, 0x01) // bank2 = 1, mode still 0 (ROM banking)

	assert.Equal(t, marker, m.Read(0x4000))
}

func TestMBC1Bank1ZeroAdjustsToOne(t *testing.T) {
	romBankCount := uint16(4)
	rom := make([]byte, uint32(romBankCount)*0x4000)
	rom[uint32(1)*0x4000] = 0xCD

	m := NewMBC1(rom, romBankCount, 0)
	m.Write(0x2000, 0x00) // bank 0 is remapped to 1

	assert.Equal(t, byte(0xCD), m.Read(0x4000))
}

func TestMBC1RAMGatedByEnable(t *testing.T) {
	rom := make([]byte, 0x8000)
	m := NewMBC1(rom, 2, 1)

	m.Write(0xA000, 0x99) // RAM disabled, write ignored
	assert.Equal(t, byte(0xFF), m.Read(0xA000))

	m.Write(0x0000, 0x0A) // enable RAM
	m.Write(0xA000, 0x99)
	assert.Equal(t, byte(0x99), m.Read(0xA000))
}

func TestMBC1RAMBankingMode(t *testing.T) {
	rom := make([]byte, 0x8000)
	m := NewMBC1(rom, 2, 4)

	m.Write(0x0000, 0x0A) // enable RAM
	m.Write(0x6000, 0x01) // RAM banking mode
	m.Write(0x4000, 0x02) // RAM bank 2

	m.Write(0xA000, 0x77)
	assert.Equal(t, byte(0x77), m.Read(0xA000))

	m.Write(0x4000, 0x00) // back to RAM bank 0
	assert.NotEqual(t, byte(0x77), m.Read(0xA000))
}
