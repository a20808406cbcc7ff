package memory

import "github.com/kivra-dev/pocketdmg/bit"

// Keys is the host-supplied snapshot of pressed/not-pressed button
// state, per §6: current state, not edges. Edge detection for the
// joypad interrupt is the scheduler's job (§4.7 step 1).
type Keys struct {
	Up, Down, Left, Right bool
	A, B, Start, Select   bool
}

// Joypad tracks the P1 (0xFF00) selector bits and projects the current
// Keys snapshot through them into the register's low nibble.
type Joypad struct {
	selector uint8 // bits 4-5 of P1, as last written (0 = group selected)
	keys     Keys
}

func NewJoypad() *Joypad {
	return &Joypad{selector: 0x30}
}

// dpadNibble and buttonNibble are active-low: 0 means pressed.
func (j *Joypad) dpadNibble() uint8 {
	n := uint8(0x0F)
	n = bit.SetTo(0, n, !j.keys.Right)
	n = bit.SetTo(1, n, !j.keys.Left)
	n = bit.SetTo(2, n, !j.keys.Up)
	n = bit.SetTo(3, n, !j.keys.Down)
	return n
}

func (j *Joypad) buttonNibble() uint8 {
	n := uint8(0x0F)
	n = bit.SetTo(0, n, !j.keys.A)
	n = bit.SetTo(1, n, !j.keys.B)
	n = bit.SetTo(2, n, !j.keys.Select)
	n = bit.SetTo(3, n, !j.keys.Start)
	return n
}

// Low returns the current low nibble of P1 given the selector bits:
// both groups selected are AND'd (active-low, so this ORs the pressed
// state of both groups), one group selected returns that group, and
// neither selected reads back all-ones (high impedance).
func (j *Joypad) Low() uint8 {
	dpadSelected := !bit.IsSet(4, j.selector)
	buttonsSelected := !bit.IsSet(5, j.selector)

	switch {
	case dpadSelected && buttonsSelected:
		return j.dpadNibble() & j.buttonNibble()
	case dpadSelected:
		return j.dpadNibble()
	case buttonsSelected:
		return j.buttonNibble()
	default:
		return 0x0F
	}
}

// Read returns the full P1 register value (bits 6-7 read as 1).
func (j *Joypad) Read() uint8 {
	return 0xC0 | j.selector | j.Low()
}

// WriteSelector stores only the writable selection bits (4-5).
func (j *Joypad) WriteSelector(value uint8) {
	j.selector = value & 0x30
}

// SetKeys replaces the current pressed/released snapshot.
func (j *Joypad) SetKeys(k Keys) {
	j.keys = k
}

func (j *Joypad) Keys() Keys {
	return j.keys
}
