package main

import (
	"flag"
	"log"

	"Framesync/internel/utils"
	"Framesync/pkg/layers"
)

func main() {
	format := flag.String("format", "ttc", "packet format preset (ttc, beacon)")
	packets := flag.Int("packets", 10, "number of packets")
	gap := flag.Int("gap", 64, "maximum random symbols between packets")
	ber := flag.Float64("ber", 0, "probability of flipping each symbol")
	seed := flag.Uint64("seed", 1, "random seed")
	out := flag.String("out", "bin_data.bin", "output capture file")
	flag.Parse()

	f, err := layers.Preset(*format)
	if err != nil {
		log.Fatalf("[Gen] %v", err)
	}
	if *ber < 0 || *ber > 1 {
		log.Fatalf("[Gen] bit error rate %v outside [0, 1]", *ber)
	}

	raw, offsets := NewGenerator(f, *gap, *ber, *seed).Generate(*packets)
	if err := utils.WriteCapture(*out, raw); err != nil {
		log.Fatalf("[Gen] %v", err)
	}
	log.Printf("[Gen] wrote %d %s packets (%d symbols) to %s\n", len(offsets), f.Name, len(raw), *out)
}
