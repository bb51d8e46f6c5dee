package session

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Framesync/pkg/layers"
	"Framesync/pkg/modem"
)

func records(valid ...bool) []Record {
	out := make([]Record, len(valid))
	for i, v := range valid {
		out[i] = Record{Index: i, Offset: 100 * i, Valid: v}
	}
	return out
}

func TestNewStatistics(t *testing.T) {
	tests := []struct {
		name    string
		records []Record
		valid   []int
		lost    int
		lostPct float64
		spacing float64
		stdDev  float64
	}{
		{"empty", nil, []int{}, 0, 0, 0, 0},
		{"three of five", records(true, false, true, false, true), []int{0, 2, 4}, 2, 40, 200, 0},
		{"all lost", records(false, false), []int{}, 2, 100, 0, 0},
		{"single valid", records(false, true), []int{1}, 1, 50, 0, 0},
		{"two valid", records(true, true), []int{0, 1}, 0, 0, 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStatistics(tt.records, 1000, 3)
			assert.Equal(t, len(tt.records), s.Total)
			if diff := cmp.Diff(tt.valid, s.ValidIndices); diff != "" {
				t.Errorf("ValidIndices mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, len(tt.valid), s.ValidCount)
			assert.Equal(t, tt.lost, s.LostCount)
			assert.InDelta(t, tt.lostPct, s.LostPercentage, 1e-9)
			assert.InDelta(t, tt.spacing, s.SpacingMean, 1e-9)
			assert.InDelta(t, tt.stdDev, s.SpacingStdDev, 1e-9)
			assert.Equal(t, 1000, s.Symbols)
			assert.Equal(t, 3, s.SkippedBytes)
		})
	}
}

func TestSpacingStdDev(t *testing.T) {
	rs := []Record{
		{Index: 0, Offset: 0, Valid: true},
		{Index: 1, Offset: 10, Valid: true},
		{Index: 2, Offset: 40, Valid: true},
	}
	s := NewStatistics(rs, 0, 0)
	// spacings 10 and 30: mean 20, sample std-dev sqrt(200)
	assert.InDelta(t, 20, s.SpacingMean, 1e-9)
	assert.InDelta(t, math.Sqrt(200), s.SpacingStdDev, 1e-9)
}

func capture(t *testing.T, f *layers.PacketFormat, corrupt ...bool) []byte {
	t.Helper()
	var buf bytes.Buffer
	gap := bytes.Repeat([]byte{modem.SymbolZero}, 24)
	buf.Write(gap)
	for _, c := range corrupt {
		packet := modem.Encode(modem.BytesToBitSet(f.Assemble()))
		if c {
			// flip the first address bit
			at := f.Preamble.Bits() + 8*len(f.SyncWord)
			packet[at] ^= 1
		}
		buf.Write(packet)
		buf.Write(gap)
	}
	return buf.Bytes()
}

func TestRun(t *testing.T) {
	for _, workers := range []int{1, 4} {
		for _, f := range []*layers.PacketFormat{layers.TTCFormat(), layers.BeaconFormat()} {
			s := &Session{Format: f, Workers: workers}
			raw := capture(t, f, false, true, false)
			raw = append(raw, 0x7F, 0x30)

			result, err := s.Run(raw)
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, result.RunID)
			require.Len(t, result.Records, 3)

			st := result.Statistics
			assert.Equal(t, 3, st.Total)
			assert.Equal(t, []int{0, 2}, st.ValidIndices)
			assert.Equal(t, 1, st.LostCount)
			assert.Equal(t, 2, st.SkippedBytes)
			assert.Equal(t, len(raw)-2, st.Symbols)
			assert.InDelta(t, float64(f.PacketBits()+24)*2, st.SpacingMean, 1e-9)

			for i, r := range result.Records {
				assert.Equal(t, i, r.Index)
				assert.Equal(t, f.CandidateBits(), r.Bits.Len())
			}
		}
	}
}

func TestRunEmptyCapture(t *testing.T) {
	s := &Session{Format: layers.TTCFormat()}
	result, err := s.Run(nil)
	require.NoError(t, err)
	assert.Zero(t, result.Statistics.Total)
	assert.Zero(t, result.Statistics.LostPercentage)
}

func TestRunInvalidFormat(t *testing.T) {
	f := layers.TTCFormat()
	f.SyncWord = nil
	_, err := (&Session{Format: f}).Run([]byte{0, 1})
	assert.True(t, errors.Is(err, layers.ErrInvalidFormat))

	_, err = (&Session{}).Run([]byte{0, 1})
	assert.True(t, errors.Is(err, layers.ErrInvalidFormat))
}

type rejectAll struct{}

func (rejectAll) Validate(modem.Candidate) bool { return false }

func TestRunCustomValidator(t *testing.T) {
	f := layers.TTCFormat()
	s := &Session{Format: f, Validator: rejectAll{}}
	result, err := s.Run(capture(t, f, false))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Statistics.LostCount)
	assert.InDelta(t, 100, result.Statistics.LostPercentage, 1e-9)
}
