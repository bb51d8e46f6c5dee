package modem

const (
	SymbolZero byte = 0x00
	SymbolOne  byte = 0x01
)

// Decode converts a raw capture (one byte per demodulated symbol) into a
// symbol stream. Bytes other than SymbolZero and SymbolOne are skipped; the
// number skipped is returned alongside the stream.
func Decode(raw []byte) (stream *BitSet, skipped int) {
	stream = NewBitSet(len(raw))
	n := 0
	for _, b := range raw {
		switch b {
		case SymbolZero:
			n++
		case SymbolOne:
			stream.Set(n)
			n++
		default:
			skipped++
		}
	}
	stream.size = n
	stream.bits = stream.bits[:(n+63)/64]
	if skipped > 0 {
		debugLog("[Decode] skipped %d stray bytes out of %d\n", skipped, len(raw))
	}
	return
}

// Encode is the inverse of Decode: one SymbolZero/SymbolOne byte per bit.
func Encode(stream *BitSet) []byte {
	out := make([]byte, stream.Len())
	for i := range out {
		if stream.IsSet(i) {
			out[i] = SymbolOne
		}
	}
	return out
}
