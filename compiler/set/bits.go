package set

import (
	"math/bits"

	"tlog.app/go/tlog/tlwire"
)

type (
	Key interface {
		~int | ~int64
	}

	// Bits is a set of small keys starting from base.
	// Assignment shares the storage, use Copy to fork a set.
	// The zero value is an empty set at base 0.
	Bits[K Key] struct {
		base K
		b    []uint64
		b0   [2]uint64
	}
)

func MakeBits[K Key](base K) Bits[K] {
	s := Bits[K]{
		base: base,
	}

	s.b = s.b0[:0]

	return s
}

func (s *Bits[K]) Copy() Bits[K] {
	c := MakeBits(s.base)

	c.grow(len(s.b) - 1)
	copy(c.b, s.b)

	return c
}

func (s *Bits[K]) Set(k K) {
	i, j := s.ij(k)
	if i < 0 {
		panic("key below set base")
	}

	s.grow(i)

	s.b[i] |= 1 << j
}

func (s *Bits[K]) IsSet(k K) bool {
	i, j := s.ij(k)

	if i < 0 || i >= len(s.b) {
		return false
	}

	return s.b[i]&(1<<j) != 0
}

func (s *Bits[K]) Clear(k K) {
	i, j := s.ij(k)

	if i < 0 || i >= len(s.b) {
		return
	}

	s.b[i] &^= 1 << j
}

// Merge adds all keys of x.
func (s *Bits[K]) Merge(x Bits[K]) {
	if s.base != x.base {
		panic("merge of sets with different bases")
	}

	s.grow(len(x.b) - 1)

	for i, x := range x.b {
		s.b[i] |= x
	}
}

func (s *Bits[K]) Size() (r int) {
	for _, c := range s.b {
		r += bits.OnesCount64(c)
	}

	return r
}

// Range calls f for keys in increasing order until it returns false.
func (s *Bits[K]) Range(f func(k K) bool) {
	for i, x := range s.b {
		for x != 0 {
			j := bits.TrailingZeros64(x)
			x &^= 1 << j

			if !f(s.base + K(i*64+j)) {
				return
			}
		}
	}
}

func (s *Bits[K]) Reset() {
	for i := range s.b {
		s.b[i] = 0
	}

	s.b = s.b[:0]
}

func (s Bits[K]) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	b = e.AppendTag(b, tlwire.Array, -1)

	s.Range(func(k K) bool {
		b = e.AppendInt(b, int(k))

		return true
	})

	return e.AppendBreak(b)
}

func (s *Bits[K]) ij(k K) (i, j int) {
	p := int(k - s.base)
	if p < 0 {
		return -1, 0
	}

	return p / 64, p % 64
}

func (s *Bits[K]) grow(i int) {
	if s.b == nil {
		s.b = s.b0[:0]
	}

	for i >= len(s.b) {
		s.b = append(s.b, 0)
	}
}
