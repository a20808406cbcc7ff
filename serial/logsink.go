// Package serial provides the in-scope remainder of link-cable support:
// SB/SC register mirroring and a line-buffered log of outgoing bytes.
// Actual peer emulation is an external collaborator's job (§1).
package serial

import "log/slog"

// LogSink mirrors SB/SC and logs completed transfers a line at a time,
// which is enough for test ROMs that print progress over the link port.
type LogSink struct {
	sb, sc byte

	requestInterrupt func()
	line             []byte
	logger           *slog.Logger
}

// NewLogSink creates a sink that calls requestInterrupt once a transfer
// completes (bit 7 and bit 0 of SC set on write).
func NewLogSink(requestInterrupt func()) *LogSink {
	return &LogSink{
		sb:               0x00,
		sc:               0x00,
		requestInterrupt: requestInterrupt,
		logger:           slog.Default(),
	}
}

func (s *LogSink) Read(address uint16) byte {
	switch {
	case address == 0xFF01:
		return s.sb
	default:
		return s.sc
	}
}

func (s *LogSink) Write(address uint16, value byte) {
	switch {
	case address == 0xFF01:
		s.sb = value
	default:
		s.sc = value
		s.maybeTransfer()
	}
}

func (s *LogSink) maybeTransfer() {
	const startBit, clockBit = 7, 0
	if s.sc&(1<<startBit) == 0 || s.sc&(1<<clockBit) == 0 {
		return
	}

	b := s.sb
	if b == 0 || b == '\n' || b == '\r' {
		if len(s.line) > 0 {
			s.logger.Info("serial", "line", string(s.line))
			s.line = s.line[:0]
		}
	} else {
		s.line = append(s.line, b)
	}

	// No real peer: treat the transfer as completing immediately with an
	// idle line (0xFF), and clear the start bit per hardware completion.
	s.sb = 0xFF
	s.sc &^= 1 << startBit
	if s.requestInterrupt != nil {
		s.requestInterrupt()
	}
}
