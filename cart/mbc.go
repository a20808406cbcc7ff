package cart

import "fmt"

// MBC is the polymorphic contract every mapper variant satisfies: read
// and write over the full cartridge-relevant address space (ROM at
// 0x0000-0x7FFF, external RAM at 0xA000-0xBFFF), plus Destroy to
// release any resources tied to the session (battery flush is an
// external collaborator's job; Destroy exists as the extension point).
type MBC interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
	Destroy()
}

// New constructs the mapper named by the cartridge's header type. An
// unsupported or not-yet-implemented mapper is a fatal error at session
// start (§7): the caller should treat a non-nil error as unrecoverable.
func New(c *Cartridge) (MBC, error) {
	switch c.Type {
	case TypeNoMBC:
		return NewNoMBC(c.Data), nil
	case TypeMBC1, TypeMBC1RAM, TypeMBC1RAMBatt:
		return NewMBC1(c.Data, c.ROMBankCount, c.RAMBankCount), nil
	case TypeMBC2, TypeMBC2Batt:
		return nil, fmt.Errorf("cart: MBC2 is a named extension point, not implemented")
	case TypeMBC3RTCBatt, TypeMBC3RTCRAM, TypeMBC3, TypeMBC3RAM, TypeMBC3RAMBatt:
		return nil, fmt.Errorf("cart: MBC3 (with RTC) is a named extension point, not implemented")
	case TypeMBC5, TypeMBC5RAM, TypeMBC5RAMBatt:
		return nil, fmt.Errorf("cart: MBC5 is a named extension point, not implemented")
	default:
		return nil, fmt.Errorf("cart: unsupported mapper type 0x%02X", uint8(c.Type))
	}
}

// NoMBC serves cartridges with no banking hardware: ROM is read
// directly, writes are discarded.
type NoMBC struct {
	rom []uint8
}

func NewNoMBC(rom []uint8) *NoMBC {
	return &NoMBC{rom: rom}
}

func (m *NoMBC) Read(addr uint16) uint8 {
	if int(addr) < len(m.rom) {
		return m.rom[addr]
	}
	return 0xFF
}

func (m *NoMBC) Write(addr uint16, value uint8) {}

func (m *NoMBC) Destroy() {}

// MBC1 implements the most common banking chip: a 5-bit primary ROM
// bank register plus a 2-bit secondary register shared between the top
// ROM bank bits and RAM bank selection, switched by a mode bit.
type MBC1 struct {
	rom []uint8
	ram []uint8

	romBankCount uint16
	ramBankCount uint8

	ramEnable bool
	bank1     uint8 // 5 bits, the low ROM bank bits
	bank2     uint8 // 2 bits, shared: high ROM bank bits or RAM bank
	mode      uint8 // 0 = ROM banking mode, 1 = RAM banking mode
}

func NewMBC1(rom []uint8, romBankCount uint16, ramBankCount uint8) *MBC1 {
	return &MBC1{
		rom:          rom,
		ram:          make([]uint8, uint32(ramBankCount)*0x2000),
		romBankCount: romBankCount,
		ramBankCount: ramBankCount,
		bank1:        1,
	}
}

// romBank0 returns the effective bank mapped at 0x0000-0x3FFF.
func (m *MBC1) romBank0() uint16 {
	if m.mode == 1 && m.romBankCount >= 64 {
		return (uint16(m.bank2) << 5) % m.romBankCount
	}
	return 0
}

// romBankHigh returns the effective bank mapped at 0x4000-0x7FFF.
func (m *MBC1) romBankHigh() uint16 {
	bank := (uint16(m.bank2)<<5 | uint16(m.bank1))
	return bank % m.romBankCount
}

// ramBank returns the effective RAM bank, honoring banking mode.
func (m *MBC1) ramBank() uint8 {
	if m.mode == 1 && m.ramBankCount >= 4 {
		return m.bank2
	}
	return 0
}

func (m *MBC1) Read(addr uint16) uint8 {
	switch {
	case addr <= 0x3FFF:
		offset := uint32(m.romBank0()) * 0x4000
		return m.rom[offset+uint32(addr)]
	case addr >= 0x4000 && addr <= 0x7FFF:
		offset := uint32(m.romBankHigh()) * 0x4000
		return m.rom[offset+uint32(addr-0x4000)]
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnable || len(m.ram) == 0 {
			return 0xFF
		}
		offset := uint32(m.ramBank()) * 0x2000
		return m.ram[offset+uint32(addr-0xA000)]
	default:
		return 0xFF
	}
}

func (m *MBC1) Write(addr uint16, value uint8) {
	switch {
	case addr <= 0x1FFF:
		m.ramEnable = value&0x0F == 0x0A
	case addr >= 0x2000 && addr <= 0x3FFF:
		bank := value & 0x1F
		if bank == 0 {
			bank = 1
		}
		m.bank1 = bank
	case addr >= 0x4000 && addr <= 0x5FFF:
		m.bank2 = value & 0x03
	case addr >= 0x6000 && addr <= 0x7FFF:
		m.mode = value & 0x01
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnable || len(m.ram) == 0 {
			return
		}
		offset := uint32(m.ramBank()) * 0x2000
		m.ram[offset+uint32(addr-0xA000)] = value
	}
}

func (m *MBC1) Destroy() {}
