package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func romWithHeader(romSizeCode, ramSizeCode, cartType byte, checksum byte) []byte {
	data := make([]byte, 0x8000<<romSizeCode)
	data[romSizeAddress] = romSizeCode
	data[ramSizeAddress] = ramSizeCode
	data[cartridgeTypeAddress] = cartType
	data[headerChecksumAddress] = checksum
	return data
}

func TestHeaderChecksumAllZero(t *testing.T) {
	// x = 0; for 25 bytes (0x134..=0x14C): x = x - 0 - 1 => x = -25 mod 256
	data := make([]byte, 0x8000)
	assert.Equal(t, byte(0xE7), headerChecksum(data))
}

func TestLoadRejectsChecksumMismatch(t *testing.T) {
	data := romWithHeader(0x00, 0x00, byte(TypeNoMBC), 0x00)

	_, err := Load(data, false)

	assert.Error(t, err)
}

func TestLoadAcceptsCorrectChecksum(t *testing.T) {
	data := romWithHeader(0x00, 0x00, byte(TypeNoMBC), 0x00)
	data[headerChecksumAddress] = headerChecksum(data)

	c, err := Load(data, false)

	assert.NoError(t, err)
	assert.Equal(t, TypeNoMBC, c.Type)
	assert.Equal(t, uint16(2), c.ROMBankCount)
}

func TestLoadSkipChecksumWithBootROM(t *testing.T) {
	data := romWithHeader(0x00, 0x00, byte(TypeNoMBC), 0xFF)

	c, err := Load(data, true)

	assert.NoError(t, err)
	assert.NotNil(t, c)
}

func TestLoadRejectsWrongLength(t *testing.T) {
	data := romWithHeader(0x01, 0x00, byte(TypeNoMBC), 0x00) // claims 0x10000 bytes
	data = data[:0x8000]                                     // but is only 0x8000
	data[headerChecksumAddress] = headerChecksum(data)

	_, err := Load(data, false)

	assert.Error(t, err)
}

func TestLoadSetsBatteryFlag(t *testing.T) {
	data := romWithHeader(0x00, 0x00, byte(TypeMBC1RAMBatt), 0x00)
	data[headerChecksumAddress] = headerChecksum(data)

	c, err := Load(data, false)

	assert.NoError(t, err)
	assert.True(t, c.HasBattery)
}

func TestCleanTitleTrimsAndReplaces(t *testing.T) {
	raw := append([]byte("ZELDA"), make([]byte, 11)...)
	assert.Equal(t, "ZELDA", cleanTitle(raw))

	assert.Equal(t, "(untitled)", cleanTitle(make([]byte, 16)))
}
