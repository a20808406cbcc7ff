package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func blankROM() []byte {
	data := make([]byte, 0x8000)
	data[0x0148] = 0x00 // 32KiB, no MBC
	data[0x0149] = 0x00
	data[0x0147] = 0x00
	// the checksum byte is left zero: callers either load with a boot ROM
	// (which skips validation) or set 0x014D to 0xE7 themselves.
	return data
}

func TestLoadWithBootROMSkipsChecksum(t *testing.T) {
	rom := blankROM()
	bootROM := make([]byte, 256)

	s, err := Load(rom, bootROM)

	assert.NoError(t, err)
	assert.Equal(t, uint16(0x0000), s.CPU.PC())
	assert.True(t, s.Bus.BootROMEnabled())
}

func TestLoadWithoutBootROMSeedsPostBootState(t *testing.T) {
	rom := blankROM()
	// header checksum for an all-zero 0x134-0x14C range is 0xE7
	rom[0x014D] = 0xE7

	s, err := Load(rom, nil)

	assert.NoError(t, err)
	assert.Equal(t, uint16(0x0100), s.CPU.PC())
	assert.False(t, s.Bus.BootROMEnabled())
}

func TestPauseStopsFrameAdvancement(t *testing.T) {
	rom := blankROM()
	rom[0x014D] = 0xE7
	s, err := Load(rom, nil)
	assert.NoError(t, err)

	s.Pause()
	before := s.FrameCount()
	s.RunUntilFrame()

	assert.Equal(t, before, s.FrameCount())
}

func TestStepInstructionAdvancesOnce(t *testing.T) {
	rom := blankROM()
	rom[0x014D] = 0xE7
	s, err := Load(rom, nil)
	assert.NoError(t, err)

	s.StepInstruction()
	s.RunUntilFrame()

	assert.Equal(t, uint64(1), s.InstructionCount())
	assert.Equal(t, Paused, s.State())
}
