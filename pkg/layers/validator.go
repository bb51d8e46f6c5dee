package layers

import (
	"Framesync/pkg/modem"
)

// Validator decides whether a candidate is a well-formed packet.
type Validator interface {
	Validate(c modem.Candidate) bool
}

// NewValidator returns the validator selected by the format's policy.
func NewValidator(f *PacketFormat) Validator {
	switch f.Policy {
	case PolicyNested:
		return NewNestedValidator(f)
	default:
		return NewStrictValidator(f)
	}
}

// StrictValidator compares successive 8-bit groups against the header bytes
// (sync word then address) and stops at the first mismatch. A candidate is
// valid only when every header byte matched and the last 16 bits equal the
// expected CRC.
type StrictValidator struct {
	header []byte
	crc    *modem.BitSet
}

func NewStrictValidator(f *PacketFormat) *StrictValidator {
	header := make([]byte, 0, len(f.SyncWord)+1)
	header = append(header, f.SyncWord...)
	header = append(header, f.Address)
	return &StrictValidator{
		header: header,
		crc:    f.ExpectedCRCBits(),
	}
}

func (v *StrictValidator) Validate(c modem.Candidate) bool {
	bits := c.Bits
	if bits.Len() < 8*len(v.header)+v.crc.Len() {
		return false
	}

	i := 0
	for _, b := range v.header {
		if bits.Byte(i) != b {
			break
		}
		i += 8
	}
	if i != 8*len(v.header) {
		return false
	}
	return bits.EqualAt(bits.Len()-v.crc.Len(), v.crc)
}

// NestedValidator checks sync byte k at [8k, 8k+8), then the address right
// after the sync word, then the trailing CRC; each check runs only if the
// previous one passed.
type NestedValidator struct {
	syncWord []byte
	address  byte
	crc      *modem.BitSet
}

func NewNestedValidator(f *PacketFormat) *NestedValidator {
	return &NestedValidator{
		syncWord: append([]byte(nil), f.SyncWord...),
		address:  f.Address,
		crc:      f.ExpectedCRCBits(),
	}
}

func (v *NestedValidator) Validate(c modem.Candidate) bool {
	bits := c.Bits
	addrAt := 8 * len(v.syncWord)
	if bits.Len() < addrAt+8+v.crc.Len() {
		return false
	}
	return v.checkSync(bits, 0) &&
		bits.Byte(addrAt) == v.address &&
		bits.EqualAt(bits.Len()-v.crc.Len(), v.crc)
}

func (v *NestedValidator) checkSync(bits *modem.BitSet, k int) bool {
	if k == len(v.syncWord) {
		return true
	}
	return bits.Byte(8*k) == v.syncWord[k] && v.checkSync(bits, k+1)
}
