package main

import (
	"golang.org/x/exp/rand"

	"Framesync/pkg/layers"
	"Framesync/pkg/modem"
)

// Generator lays assembled packets out in a symbol stream, separated by
// random gaps of up to Gap symbols, and flips each symbol with probability BER.
type Generator struct {
	Format *layers.PacketFormat
	Gap    int
	BER    float64
	rng    *rand.Rand
}

func NewGenerator(f *layers.PacketFormat, gap int, ber float64, seed uint64) *Generator {
	return &Generator{
		Format: f,
		Gap:    gap,
		BER:    ber,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

func (g *Generator) gap(bits []bool) []bool {
	n := 0
	if g.Gap > 0 {
		n = g.rng.Intn(g.Gap + 1)
	}
	for i := 0; i < n; i++ {
		bits = append(bits, g.rng.Intn(2) == 1)
	}
	return bits
}

// Generate returns the raw capture and the stream offset of every packet's
// first symbol.
func (g *Generator) Generate(packets int) ([]byte, []int) {
	packet := modem.BytesToBitSet(g.Format.Assemble())
	offsets := make([]int, 0, packets)

	var bits []bool
	for i := 0; i < packets; i++ {
		bits = g.gap(bits)
		offsets = append(offsets, len(bits))
		for j := 0; j < packet.Len(); j++ {
			bits = append(bits, packet.IsSet(j))
		}
	}
	bits = g.gap(bits)

	stream := modem.NewBitSet(len(bits))
	for i, b := range bits {
		if g.BER > 0 && g.rng.Float64() < g.BER {
			b = !b
		}
		if b {
			stream.Set(i)
		}
	}
	return modem.Encode(stream), offsets
}
