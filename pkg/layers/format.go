package layers

import (
	"errors"
	"fmt"
	"strings"

	"Framesync/pkg/modem"
)

var ErrInvalidFormat = errors.New("invalid packet format")

// Policy selects how a candidate's header is compared against the format.
type Policy int

const (
	PolicyStrict Policy = iota // sequential sync-word match, abort at first mismatch
	PolicyNested               // fixed-offset checks of sync bytes then address
)

func (p Policy) String() string {
	switch p {
	case PolicyStrict:
		return "strict"
	case PolicyNested:
		return "nested"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict", "sequential":
		return PolicyStrict, nil
	case "nested", "short-circuit":
		return PolicyNested, nil
	}
	return 0, fmt.Errorf("unknown validation policy %q", s)
}

// PacketFormat describes one fixed-length packet layout:
//
//	preamble | sync word | address | filler | message | CRC16
//
// The preamble only triggers synchronization and is not part of a candidate.
// The expected CRC covers the address followed by the message.
type PacketFormat struct {
	Name     string
	Preamble modem.PreambleConfig
	SyncWord []byte
	Address  byte
	Filler   []byte
	Message  []byte
	CRC      modem.CRC16
	Policy   Policy
}

func (f *PacketFormat) Check() error {
	if f.Preamble.Repeat < 1 {
		return fmt.Errorf("%w: preamble repeat must be at least 1, got %d", ErrInvalidFormat, f.Preamble.Repeat)
	}
	if len(f.SyncWord) == 0 {
		return fmt.Errorf("%w: empty sync word", ErrInvalidFormat)
	}
	if f.CRC == nil {
		return fmt.Errorf("%w: no CRC codec", ErrInvalidFormat)
	}
	if f.Policy != PolicyStrict && f.Policy != PolicyNested {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, f.Policy)
	}
	return nil
}

// PacketBits is the on-air length of a packet, preamble included.
func (f *PacketFormat) PacketBits() int {
	return 8 * (f.Preamble.Repeat + len(f.SyncWord) + 1 + len(f.Filler) + len(f.Message) + 2)
}

// CandidateBits is the number of bits extracted after a preamble match.
func (f *PacketFormat) CandidateBits() int {
	return f.PacketBits() - f.Preamble.Bits()
}

func (f *PacketFormat) PreambleBits() *modem.BitSet {
	return f.Preamble.New()
}

func (f *PacketFormat) crcInput() []byte {
	data := make([]byte, 0, 1+len(f.Message))
	data = append(data, f.Address)
	return append(data, f.Message...)
}

func (f *PacketFormat) ExpectedCRC() uint16 {
	return f.CRC.Checksum(f.crcInput())
}

// ExpectedCRCBits is the expected CRC as 16 bits, MSB first.
func (f *PacketFormat) ExpectedCRCBits() *modem.BitSet {
	crc := f.ExpectedCRC()
	return modem.BytesToBitSet([]byte{byte(crc >> 8), byte(crc)})
}

// Assemble returns the bytes of a valid packet, preamble first and the CRC
// big-endian at the end.
func (f *PacketFormat) Assemble() []byte {
	out := make([]byte, 0, f.PacketBits()/8)
	for i := 0; i < f.Preamble.Repeat; i++ {
		out = append(out, f.Preamble.Byte)
	}
	out = append(out, f.SyncWord...)
	out = append(out, f.Address)
	out = append(out, f.Filler...)
	out = append(out, f.Message...)
	crc := f.ExpectedCRC()
	return append(out, byte(crc>>8), byte(crc))
}

// Layout returns the field sizes used to dissect candidates.
func (f *PacketFormat) Layout() FrameLayout {
	return FrameLayout{
		SyncLen:    len(f.SyncWord),
		FillerLen:  len(f.Filler),
		MessageLen: len(f.Message),
	}
}

// TTCFormat is the downlink format decoded by the ground station script:
// table CRC-16 (0x8005, seed 0xFFFF) and strict header matching.
func TTCFormat() *PacketFormat {
	return &PacketFormat{
		Name:     "ttc",
		Preamble: modem.PreambleConfig{Byte: 0xAA, Repeat: 4},
		SyncWord: []byte{0x04, 0x08, 0x0F, 0x10},
		Address:  0x17,
		Message:  []byte("FloripaSat"),
		CRC:      modem.TableCRC16{Poly: 0x8005, Init: 0xFFFF},
		Policy:   PolicyStrict,
	}
}

// BeaconFormat is the beacon format: a length byte between the address and
// the message, CRC-16/ARC and nested header checks.
func BeaconFormat() *PacketFormat {
	message := []byte("FLORIPASAT")
	return &PacketFormat{
		Name:     "beacon",
		Preamble: modem.PreambleConfig{Byte: 0xAA, Repeat: 4},
		SyncWord: []byte{0x04, 0x08, 0x0F, 0x10},
		Address:  0x17,
		Filler:   []byte{byte(len(message))},
		Message:  message,
		CRC:      modem.ReflectedCRC16{},
		Policy:   PolicyNested,
	}
}

// Preset returns a copy of the named built-in format.
func Preset(name string) (*PacketFormat, error) {
	switch strings.ToLower(name) {
	case "ttc":
		return TTCFormat(), nil
	case "beacon":
		return BeaconFormat(), nil
	}
	return nil, fmt.Errorf("unknown packet format %q", name)
}
