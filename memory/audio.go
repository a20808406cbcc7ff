package memory

import "github.com/kivra-dev/pocketdmg/addr"

// AudioMirror stores the NR10-NR52 and wave-RAM bytes as plain
// read/write storage, with no synthesis: channels 1-4 are referenced
// only as I/O register mirrors (§1 non-goal).
type AudioMirror struct {
	regs [addr.AudioEnd - addr.AudioStart + 1]byte
}

func NewAudioMirror() *AudioMirror {
	return &AudioMirror{}
}

func (a *AudioMirror) Read(address uint16) byte {
	return a.regs[address-addr.AudioStart]
}

func (a *AudioMirror) Write(address uint16, value byte) {
	a.regs[address-addr.AudioStart] = value
}
