package layers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Framesync/pkg/modem"
)

// capture returns a raw symbol capture holding packet surrounded by zeros.
func capture(packet []byte, lead, trail int) []byte {
	bits := strings.Repeat("0", lead) + modem.BytesToBitSet(packet).String() + strings.Repeat("0", trail)
	stream, _ := modem.ParseBitSet(bits)
	return modem.Encode(stream)
}

func withPolicy(f *PacketFormat, p Policy) *PacketFormat {
	f.Policy = p
	return f
}

func allFormats() map[string]*PacketFormat {
	return map[string]*PacketFormat{
		"ttc/strict":    TTCFormat(),
		"ttc/nested":    withPolicy(TTCFormat(), PolicyNested),
		"beacon/nested": BeaconFormat(),
		"beacon/strict": withPolicy(BeaconFormat(), PolicyStrict),
	}
}

func TestRoundTrip(t *testing.T) {
	for name, f := range allFormats() {
		t.Run(name, func(t *testing.T) {
			raw := capture(f.Assemble(), 37, 11)

			stream, skipped := modem.Decode(raw)
			require.Zero(t, skipped)

			candidates := modem.FindPackets(stream, f.PreambleBits(), f.CandidateBits())
			require.Len(t, candidates, 1)
			assert.Equal(t, 37+f.Preamble.Bits(), candidates[0].Offset)
			assert.True(t, NewValidator(f).Validate(candidates[0]))
		})
	}
}

func validCandidate(f *PacketFormat) modem.Candidate {
	packet := modem.BytesToBitSet(f.Assemble())
	return modem.Candidate{
		Offset: f.Preamble.Bits(),
		Bits:   packet.Slice(f.Preamble.Bits(), f.CandidateBits()),
	}
}

func TestSingleBitCorruption(t *testing.T) {
	for name, f := range allFormats() {
		t.Run(name, func(t *testing.T) {
			v := NewValidator(f)
			c := validCandidate(f)
			require.True(t, v.Validate(c))

			headerBits := 8 * (len(f.SyncWord) + 1)
			positions := make([]int, 0, headerBits+16)
			for i := 0; i < headerBits; i++ {
				positions = append(positions, i)
			}
			for i := c.Bits.Len() - 16; i < c.Bits.Len(); i++ {
				positions = append(positions, i)
			}

			for _, pos := range positions {
				corrupted := modem.Candidate{Bits: c.Bits.Clone()}
				corrupted.Bits.Flip(pos)
				assert.False(t, v.Validate(corrupted), "bit %d flipped", pos)
			}
		})
	}
}

func TestMessageCorruptionIsNotDetected(t *testing.T) {
	// the expected CRC is derived from the configured message, not from
	// the received one, so payload errors pass both policies
	for name, f := range allFormats() {
		c := validCandidate(f)
		c.Bits.Flip(c.Bits.Len() - 17)
		assert.True(t, NewValidator(f).Validate(c), name)
	}
}

func TestShortCandidate(t *testing.T) {
	for name, f := range allFormats() {
		c := validCandidate(f)
		c.Bits = c.Bits.Slice(0, 40)
		assert.False(t, NewValidator(f).Validate(c), name)
	}
}

func TestNewValidator(t *testing.T) {
	assert.IsType(t, &StrictValidator{}, NewValidator(TTCFormat()))
	assert.IsType(t, &NestedValidator{}, NewValidator(BeaconFormat()))
}

func TestStrictValidatorStopsAtFirstMismatch(t *testing.T) {
	f := TTCFormat()
	c := validCandidate(f)
	// corrupt sync byte 1 but leave the rest of the header intact
	c.Bits.PutByte(8, 0xFF)
	assert.False(t, NewStrictValidator(f).Validate(c))
	assert.False(t, NewNestedValidator(f).Validate(c))
}
