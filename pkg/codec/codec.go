// Package codec maps fixed-size coordinate tuples to dense linear indices.
//
// A [Codec] is a mixed-radix number system: each dimension has its own size and
// a tuple of offsets (each strictly below its dimension's size) is encoded as a
// single integer in [0, Max()). The first dimension varies slowest, so for the
// router's (row, col, layer) tuples consecutive layers of the same gcell are
// adjacent indices.
//
// Offsets outside their dimension, tuples of the wrong arity and indices >= Max()
// are programming errors and cause a panic. Callers derive the dimension sizes
// from the same bounding box they later encode, so these conditions indicate a
// logic bug rather than bad input.
//
//	c := codec.New(3, 4, 2)
//	idx := c.Encode(1, 2, 1) // 1*8 + 2*2 + 1 = 13
//	c.Decode(idx)            // [1 2 1]
package codec

import (
	"fmt"
	"math/bits"
)

// Codec is an immutable mixed-radix coordinate encoder.
// The zero value has no dimensions and Max() == 0; use [New].
type Codec struct {
	sizes   []uint64
	strides []uint64
	max     uint64
}

// New creates a codec for the given dimension sizes.
// It panics if no size is given, a size is zero, or the total address space
// overflows uint64.
func New(sizes ...uint64) Codec {
	if len(sizes) == 0 {
		panic("codec: at least one dimension is required")
	}
	c := Codec{
		sizes:   append([]uint64(nil), sizes...),
		strides: make([]uint64, len(sizes)),
	}
	stride := uint64(1)
	for i := len(sizes) - 1; i >= 0; i-- {
		if sizes[i] == 0 {
			panic(fmt.Sprintf("codec: dimension %d has size 0", i))
		}
		c.strides[i] = stride
		hi, lo := bits.Mul64(stride, sizes[i])
		if hi != 0 {
			panic("codec: address space overflows uint64")
		}
		stride = lo
	}
	c.max = stride
	return c
}

// Max returns the size of the address space (the product of all dimension sizes).
func (c Codec) Max() uint64 { return c.max }

// Dims returns the number of dimensions.
func (c Codec) Dims() int { return len(c.sizes) }

// Size returns the size of dimension i.
func (c Codec) Size(i int) uint64 { return c.sizes[i] }

// Encode maps a tuple to its linear index.
func (c Codec) Encode(tuple ...uint64) uint64 {
	if len(tuple) != len(c.sizes) {
		panic(fmt.Sprintf("codec: encode got %d offsets, want %d", len(tuple), len(c.sizes)))
	}
	var idx uint64
	for i, v := range tuple {
		if v >= c.sizes[i] {
			panic(fmt.Sprintf("codec: offset %d out of range for dimension %d (size %d)", v, i, c.sizes[i]))
		}
		idx += v * c.strides[i]
	}
	return idx
}

// Decode maps a linear index back to its tuple.
func (c Codec) Decode(idx uint64) []uint64 {
	if idx >= c.max {
		panic(fmt.Sprintf("codec: index %d out of range (max %d)", idx, c.max))
	}
	out := make([]uint64, len(c.sizes))
	for i, s := range c.strides {
		out[i] = idx / s
		idx %= s
	}
	return out
}

// Encode3 is an allocation-free [Codec.Encode] for three-dimensional codecs.
func (c Codec) Encode3(a, b, d uint64) uint64 {
	if len(c.sizes) != 3 {
		panic(fmt.Sprintf("codec: Encode3 on a %d-dimensional codec", len(c.sizes)))
	}
	if a >= c.sizes[0] || b >= c.sizes[1] || d >= c.sizes[2] {
		panic(fmt.Sprintf("codec: offset (%d,%d,%d) out of range (%d,%d,%d)", a, b, d, c.sizes[0], c.sizes[1], c.sizes[2]))
	}
	return a*c.strides[0] + b*c.strides[1] + d
}

// Decode3 is an allocation-free [Codec.Decode] for three-dimensional codecs.
func (c Codec) Decode3(idx uint64) (a, b, d uint64) {
	if len(c.sizes) != 3 {
		panic(fmt.Sprintf("codec: Decode3 on a %d-dimensional codec", len(c.sizes)))
	}
	if idx >= c.max {
		panic(fmt.Sprintf("codec: index %d out of range (max %d)", idx, c.max))
	}
	a = idx / c.strides[0]
	idx %= c.strides[0]
	return a, idx / c.strides[1], idx % c.strides[1]
}
