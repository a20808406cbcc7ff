package memory

import "github.com/kivra-dev/pocketdmg/bit"

// Timer owns DIV/TIMA/TMA/TAC. It is driven directly by the scheduler
// (bypassing the bus, per the concurrency model) one M-cycle at a time,
// since DIV/TIMA advance regardless of which instruction is executing.
//
// internalCounter is a free-running counter incremented once per
// M-cycle; DIV is its bits [13:6] (an increment every 64 M-cycles, per
// §4.5). TIMA advances on the falling edge of one bit of the same
// counter, selected by TAC's rate bits — the same edge-detection trick
// real hardware uses, scaled from the T-cycle domain to this core's
// M-cycle domain (one M-cycle == 4 T-cycles, so each selected bit here
// sits two positions lower than the familiar T-cycle bit numbers).
type Timer struct {
	tima uint8
	tma  uint8
	tac  uint8

	internalCounter uint16
	lastSelectedBit bool
}

func NewTimer() *Timer {
	return &Timer{}
}

// rateBit maps TAC's low 2 bits to the M-cycle counter bit edge-detected
// for TIMA: 00 -> every 256 M-cycles, 01 -> 4, 10 -> 16, 11 -> 64.
func rateBit(tac uint8) uint8 {
	switch tac & 0x03 {
	case 0x00:
		return 7
	case 0x01:
		return 1
	case 0x02:
		return 3
	default:
		return 5
	}
}

// Tick advances the timer by the given number of M-cycles, invoking
// requestInterrupt when TIMA overflows.
func (t *Timer) Tick(cycles int, requestInterrupt func()) {
	for i := 0; i < cycles; i++ {
		t.internalCounter++

		enabled := t.tac&0x04 != 0
		selectedBit := enabled && bit.IsSet16(rateBit(t.tac), t.internalCounter)

		if t.lastSelectedBit && !selectedBit {
			if t.tima == 0xFF {
				t.tima = t.tma
				requestInterrupt()
			} else {
				t.tima++
			}
		}
		t.lastSelectedBit = selectedBit
	}
}

func (t *Timer) ReadDIV() uint8  { return uint8(t.internalCounter >> 6) }
func (t *Timer) ReadTIMA() uint8 { return t.tima }
func (t *Timer) ReadTMA() uint8  { return t.tma }
func (t *Timer) ReadTAC() uint8  { return t.tac }

// WriteDIV resets the divider to 0: any write to DIV stores 0 (§4.5).
func (t *Timer) WriteDIV(uint8) {
	t.internalCounter = 0
}

func (t *Timer) WriteTIMA(v uint8) { t.tima = v }
func (t *Timer) WriteTMA(v uint8)  { t.tma = v }
func (t *Timer) WriteTAC(v uint8)  { t.tac = v & 0x07 }
