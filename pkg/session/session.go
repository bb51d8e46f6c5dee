package session

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"Framesync/pkg/layers"
	"Framesync/pkg/modem"
)

// Record is a candidate together with its validation outcome.
type Record struct {
	Index  int
	Offset int
	Bits   *modem.BitSet
	Valid  bool
}

// Statistics summarizes a session. Lost counts candidates that failed
// validation.
type Statistics struct {
	Total          int
	ValidIndices   []int
	ValidCount     int
	LostCount      int
	LostPercentage float64
	Symbols        int
	SkippedBytes   int
	SpacingMean    float64
	SpacingStdDev  float64
}

func NewStatistics(records []Record, symbols, skipped int) Statistics {
	s := Statistics{
		Total:        len(records),
		ValidIndices: make([]int, 0),
		Symbols:      symbols,
		SkippedBytes: skipped,
	}

	var offsets []float64
	for _, r := range records {
		if r.Valid {
			s.ValidIndices = append(s.ValidIndices, r.Index)
			offsets = append(offsets, float64(r.Offset))
		}
	}
	s.ValidCount = len(s.ValidIndices)
	s.LostCount = s.Total - s.ValidCount
	if s.Total > 0 {
		s.LostPercentage = 100 * float64(s.LostCount) / float64(s.Total)
	}

	if len(offsets) >= 2 {
		spacing := make([]float64, len(offsets)-1)
		for i := range spacing {
			spacing[i] = offsets[i+1] - offsets[i]
		}
		if len(spacing) == 1 {
			s.SpacingMean = spacing[0]
		} else {
			s.SpacingMean, s.SpacingStdDev = stat.MeanStdDev(spacing, nil)
		}
	}
	return s
}

// Result is everything one session produced.
type Result struct {
	RunID      uuid.UUID
	StartedAt  time.Time
	Format     *layers.PacketFormat
	Stream     *modem.BitSet
	Records    []Record
	Statistics Statistics
}

// Session runs decode, synchronization and validation over one capture.
// A nil Validator is replaced by the one the format's policy selects.
type Session struct {
	Format    *layers.PacketFormat
	Workers   int
	Validator layers.Validator
}

func (s *Session) Run(raw []byte) (*Result, error) {
	if s.Format == nil {
		return nil, fmt.Errorf("%w: no packet format", layers.ErrInvalidFormat)
	}
	if err := s.Format.Check(); err != nil {
		return nil, err
	}

	validator := s.Validator
	if validator == nil {
		validator = layers.NewValidator(s.Format)
	}

	result := &Result{
		RunID:     uuid.New(),
		StartedAt: time.Now(),
		Format:    s.Format,
	}

	stream, skipped := modem.Decode(raw)
	result.Stream = stream

	sync := modem.Synchronizer{
		Preamble:   s.Format.PreambleBits(),
		PacketBits: s.Format.CandidateBits(),
		Workers:    s.Workers,
	}
	candidates := sync.Find(stream)

	result.Records = make([]Record, len(candidates))
	for i, c := range candidates {
		result.Records[i] = Record{
			Index:  c.Index,
			Offset: c.Offset,
			Bits:   c.Bits,
			Valid:  validator.Validate(c),
		}
	}
	result.Statistics = NewStatistics(result.Records, stream.Len(), skipped)

	if modem.Debug {
		log.Printf("[Session] %s: %d symbols, %d candidates, %d valid\n",
			result.RunID, stream.Len(), result.Statistics.Total, result.Statistics.ValidCount)
	}
	return result, nil
}
