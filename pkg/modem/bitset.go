package modem

import (
	"fmt"
	"strings"
)

// BitSet is a fixed-length packed bit sequence. Position 0 is the first
// symbol received; Byte and Uint16 read groups MSB-first from a position.
type BitSet struct {
	bits []uint64
	size int
}

func NewBitSet(size int) *BitSet {
	return &BitSet{
		bits: make([]uint64, (size+63)/64),
		size: size,
	}
}

// ParseBitSet reads a string of '0' and '1' characters.
func ParseBitSet(s string) (*BitSet, error) {
	b := NewBitSet(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
		case '1':
			b.Set(i)
		default:
			return nil, fmt.Errorf("invalid bit %q at %d", s[i], i)
		}
	}
	return b, nil
}

// BytesToBitSet expands data MSB-first, 8 bits per byte.
func BytesToBitSet(data []byte) *BitSet {
	b := NewBitSet(len(data) * 8)
	for i, v := range data {
		b.PutByte(i*8, v)
	}
	return b
}

func (b *BitSet) Len() int {
	return b.size
}

func (b *BitSet) Set(pos int) {
	if pos < 0 || pos >= b.size {
		return
	}
	b.bits[pos/64] |= 1 << (pos % 64)
}

func (b *BitSet) Clear(pos int) {
	if pos < 0 || pos >= b.size {
		return
	}
	b.bits[pos/64] &^= 1 << (pos % 64)
}

func (b *BitSet) Flip(pos int) {
	if pos < 0 || pos >= b.size {
		return
	}
	b.bits[pos/64] ^= 1 << (pos % 64)
}

func (b *BitSet) IsSet(pos int) bool {
	if pos < 0 || pos >= b.size {
		return false
	}
	return b.bits[pos/64]&(1<<(pos%64)) != 0
}

// PutByte writes v MSB-first at positions [pos, pos+8).
func (b *BitSet) PutByte(pos int, v byte) {
	for i := 0; i < 8; i++ {
		if v&(0x80>>i) != 0 {
			b.Set(pos + i)
		} else {
			b.Clear(pos + i)
		}
	}
}

// Byte reads 8 bits MSB-first starting at pos. Positions past the end read as 0.
func (b *BitSet) Byte(pos int) byte {
	var v byte
	for i := 0; i < 8; i++ {
		if b.IsSet(pos + i) {
			v |= 0x80 >> i
		}
	}
	return v
}

// Uint16 reads 16 bits MSB-first starting at pos.
func (b *BitSet) Uint16(pos int) uint16 {
	return uint16(b.Byte(pos))<<8 | uint16(b.Byte(pos+8))
}

// Bytes packs the set into bytes; a trailing partial group is dropped.
func (b *BitSet) Bytes() []byte {
	out := make([]byte, b.size/8)
	for i := range out {
		out[i] = b.Byte(i * 8)
	}
	return out
}

// Slice copies n bits starting at start into a new set.
func (b *BitSet) Slice(start, n int) *BitSet {
	out := NewBitSet(n)
	if start%64 == 0 {
		copy(out.bits, b.bits[start/64:])
		out.trim()
		return out
	}
	for i := 0; i < n; i++ {
		if b.IsSet(start + i) {
			out.Set(i)
		}
	}
	return out
}

// trim clears storage bits beyond size so word-wise comparison stays exact.
func (b *BitSet) trim() {
	if r := b.size % 64; r != 0 {
		b.bits[len(b.bits)-1] &= (1 << r) - 1
	}
}

// EqualAt reports whether other occurs at position pos of b.
func (b *BitSet) EqualAt(pos int, other *BitSet) bool {
	if pos < 0 || pos+other.size > b.size {
		return false
	}
	for i := 0; i < other.size; i++ {
		if b.IsSet(pos+i) != other.IsSet(i) {
			return false
		}
	}
	return true
}

func (b *BitSet) Equal(other *BitSet) bool {
	return b.size == other.size && b.EqualAt(0, other)
}

// Clone returns an independent copy.
func (b *BitSet) Clone() *BitSet {
	out := &BitSet{bits: make([]uint64, len(b.bits)), size: b.size}
	copy(out.bits, b.bits)
	return out
}

func (b *BitSet) String() string {
	var sb strings.Builder
	sb.Grow(b.size)
	for i := 0; i < b.size; i++ {
		if b.IsSet(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// ByteBits renders v as an 8-character zero-padded binary string.
func ByteBits(v byte) string {
	return fmt.Sprintf("%08b", v)
}
