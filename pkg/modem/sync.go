package modem

import (
	"Framesync/pkg/async"
)

// Candidate is a packet-sized run of symbols that followed a preamble match.
type Candidate struct {
	Index  int     // discovery order
	Offset int     // stream position of the first candidate bit
	Bits   *BitSet // exactly the synchronizer's packet size
}

// window keeps the most recent len(preamble) symbols in a ring.
type window struct {
	buf   []bool
	head  int // position of the oldest symbol
	count int
}

func newWindow(size int) *window {
	return &window{buf: make([]bool, size)}
}

func (w *window) push(bit bool) {
	if w.count < len(w.buf) {
		w.buf[(w.head+w.count)%len(w.buf)] = bit
		w.count++
		return
	}
	w.buf[w.head] = bit
	w.head = (w.head + 1) % len(w.buf)
}

func (w *window) full() bool {
	return w.count == len(w.buf)
}

func (w *window) matches(preamble *BitSet) bool {
	for i := range w.buf {
		if w.buf[(w.head+i)%len(w.buf)] != preamble.IsSet(i) {
			return false
		}
	}
	return true
}

// FindPackets slides a preamble-sized window over stream and, at every exact
// match that leaves at least packetBits symbols, extracts the packetBits
// symbols that follow. The window advances one symbol at a time whether or
// not it matched, so overlapping preambles each produce a candidate.
func FindPackets(stream, preamble *BitSet, packetBits int) []Candidate {
	candidates := scanRange(stream, preamble, packetBits, 0, stream.Len())
	for i := range candidates {
		candidates[i].Index = i
	}
	return candidates
}

// scanRange reports the candidates whose preamble starts in [from, to).
func scanRange(stream, preamble *BitSet, packetBits, from, to int) []Candidate {
	candidates := make([]Candidate, 0)
	if preamble.Len() == 0 || packetBits < 0 {
		return candidates
	}

	w := newWindow(preamble.Len())
	end := min(stream.Len(), to+preamble.Len()-1)
	for i := from; i < end; i++ {
		w.push(stream.IsSet(i))
		if !w.full() || !w.matches(preamble) {
			continue
		}
		start := i + 1
		if stream.Len()-start < packetBits {
			debugLog("[Sync] preamble at %d too close to the end of the stream\n", i-preamble.Len()+1)
			continue
		}
		debugLog("[Sync] preamble at %d, candidate at %d\n", i-preamble.Len()+1, start)
		candidates = append(candidates, Candidate{
			Offset: start,
			Bits:   stream.Slice(start, packetBits),
		})
	}
	return candidates
}

// Synchronizer runs FindPackets, optionally splitting the stream between
// Workers goroutines. Results are identical to the sequential scan.
type Synchronizer struct {
	Preamble   *BitSet
	PacketBits int
	Workers    int
}

func (s Synchronizer) Find(stream *BitSet) []Candidate {
	if s.Workers <= 1 {
		return FindPackets(stream, s.Preamble, s.PacketBits)
	}

	// partition preamble start positions; each range reads Preamble.Len()-1
	// symbols past its end so boundary preambles are not lost
	starts := max(stream.Len()-s.Preamble.Len()+1, 0)
	parts := async.Split(starts, s.Workers, func(lo, hi int) []Candidate {
		return scanRange(stream, s.Preamble, s.PacketBits, lo, hi)
	})

	candidates := make([]Candidate, 0)
	for _, part := range parts {
		candidates = append(candidates, part...)
	}
	for i := range candidates {
		candidates[i].Index = i
	}
	debugLog("[Sync] %d workers found %d candidates\n", len(parts), len(candidates))
	return candidates
}
