package modem

// PreambleConfig describes a preamble made of one byte repeated Repeat times.
type PreambleConfig struct {
	Byte   byte
	Repeat int
}

func (p PreambleConfig) New() *BitSet {
	preamble := NewBitSet(p.Bits())
	for i := 0; i < p.Repeat; i++ {
		preamble.PutByte(i*8, p.Byte)
	}
	return preamble
}

func (p PreambleConfig) Bits() int {
	return 8 * max(p.Repeat, 0)
}

func MakePreamble(b byte, repeat int) *BitSet {
	return PreambleConfig{
		Byte:   b,
		Repeat: repeat,
	}.New()
}
