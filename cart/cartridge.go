// Package cart implements cartridge header parsing and the pluggable
// memory bank controller (MBC) protocol that interprets ROM-space
// writes as bank-selection commands.
package cart

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	titleAddress          = 0x0134
	titleLength           = 16
	cartridgeTypeAddress  = 0x0147
	romSizeAddress        = 0x0148
	ramSizeAddress        = 0x0149
	headerChecksumAddress = 0x014D
)

// Type identifies a cartridge's MBC kind, keyed off header byte 0x0147.
type Type uint8

const (
	TypeNoMBC       Type = 0x00
	TypeMBC1        Type = 0x01
	TypeMBC1RAM     Type = 0x02
	TypeMBC1RAMBatt Type = 0x03
	TypeMBC2        Type = 0x05
	TypeMBC2Batt    Type = 0x06
	TypeMBC3RTCBatt Type = 0x0F
	TypeMBC3RTCRAM  Type = 0x10
	TypeMBC3        Type = 0x11
	TypeMBC3RAM     Type = 0x12
	TypeMBC3RAMBatt Type = 0x13
	TypeMBC5        Type = 0x19
	TypeMBC5RAM     Type = 0x1A
	TypeMBC5RAMBatt Type = 0x1B
)

// ramBankCounts maps the header's RAM-size code (0x0149) to the number of
// 8 KiB RAM banks present.
var ramBankCounts = map[uint8]uint8{
	0x00: 0,
	0x01: 1, // unofficial 2 KiB, rounded up to one bank
	0x02: 1,
	0x03: 4,
	0x04: 16,
	0x05: 8,
}

// Cartridge is the parsed ROM image plus the header fields the rest of
// the core needs: title, type, and bank counts.
type Cartridge struct {
	Data []byte

	Title        string
	Type         Type
	ROMSizeCode  uint8
	RAMSizeCode  uint8
	ROMBankCount uint16
	RAMBankCount uint8
	HasBattery   bool
	HasRTC       bool
	HasRumble    bool
}

// Empty returns a cartridge-less placeholder, useful for sessions
// started without a ROM (e.g. to idle at a boot ROM).
func Empty() *Cartridge {
	return &Cartridge{Data: make([]byte, 0x8000)}
}

// Load parses a ROM image into a Cartridge, validating its length against
// the header's declared ROM size and its header checksum.
//
// skipChecksum is set when a boot ROM is present: hardware only halts on
// a checksum mismatch when the boot ROM itself would run the check, and
// this core defers that to the boot ROM rather than duplicating it.
func Load(data []byte, skipChecksum bool) (*Cartridge, error) {
	if len(data) < 0x150 {
		return nil, fmt.Errorf("cart: ROM too small to contain a header (%d bytes)", len(data))
	}

	romSizeCode := data[romSizeAddress]
	expectedLen := 0x8000 << romSizeCode
	if len(data) != expectedLen {
		return nil, fmt.Errorf("cart: ROM length %d does not match header size code 0x%02X (expected %d)", len(data), romSizeCode, expectedLen)
	}

	if !skipChecksum {
		if got, want := headerChecksum(data), data[headerChecksumAddress]; got != want {
			return nil, fmt.Errorf("cart: header checksum mismatch: computed 0x%02X, header says 0x%02X", got, want)
		}
	}

	cartType := Type(data[cartridgeTypeAddress])
	ramSizeCode := data[ramSizeAddress]

	c := &Cartridge{
		Data:         append([]byte(nil), data...),
		Title:        cleanTitle(data[titleAddress : titleAddress+titleLength]),
		Type:         cartType,
		ROMSizeCode:  romSizeCode,
		RAMSizeCode:  ramSizeCode,
		ROMBankCount: uint16(2) << romSizeCode,
		RAMBankCount: ramBankCounts[ramSizeCode],
	}

	switch cartType {
	case TypeMBC1RAMBatt, TypeMBC2Batt, TypeMBC3RTCBatt, TypeMBC3RAMBatt, TypeMBC5RAMBatt:
		c.HasBattery = true
	}
	switch cartType {
	case TypeMBC3RTCBatt, TypeMBC3RTCRAM:
		c.HasRTC = true
	}

	return c, nil
}

// headerChecksum computes the header checksum per §3: x = 0; for each
// byte a in 0x0134..=0x014C: x = x - rom[a] - 1.
func headerChecksum(data []byte) uint8 {
	var x uint8
	for a := 0x0134; a <= 0x014C; a++ {
		x = x - data[a] - 1
	}
	return x
}

// cleanTitle converts NUL padding to a trimmed, printable title string.
func cleanTitle(raw []byte) string {
	runes := make([]rune, 0, len(raw))
	for _, b := range raw {
		r := rune(b)
		switch {
		case r == 0:
			continue
		case !unicode.IsPrint(r):
			r = '?'
		}
		runes = append(runes, r)
	}
	title := strings.TrimSpace(string(runes))
	if title == "" {
		return "(untitled)"
	}
	return title
}
