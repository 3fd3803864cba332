package codec

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name  string
		sizes []uint64
		want  uint64
	}{
		{name: "Single", sizes: []uint64{7}, want: 7},
		{name: "ThreeD", sizes: []uint64{3, 4, 2}, want: 24},
		{name: "Unit", sizes: []uint64{1, 1, 1}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.sizes...)
			if c.Max() != tt.want {
				t.Errorf("Max() = %d, want %d", c.Max(), tt.want)
			}
			if c.Dims() != len(tt.sizes) {
				t.Errorf("Dims() = %d, want %d", c.Dims(), len(tt.sizes))
			}
		})
	}
}

func TestNewPanics(t *testing.T) {
	tests := []struct {
		name  string
		sizes []uint64
	}{
		{name: "NoDims", sizes: nil},
		{name: "ZeroSize", sizes: []uint64{3, 0, 2}},
		{name: "Overflow", sizes: []uint64{1 << 40, 1 << 40}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("New did not panic")
				}
			}()
			New(tt.sizes...)
		})
	}
}

func TestEncodeLayout(t *testing.T) {
	c := New(3, 4, 2)
	if got := c.Encode(1, 2, 1); got != 13 {
		t.Errorf("Encode(1,2,1) = %d, want 13", got)
	}
	if got := c.Encode(0, 0, 1); got != 1 {
		t.Errorf("Encode(0,0,1) = %d, want 1", got)
	}
	if got := c.Encode(2, 3, 1); got != c.Max()-1 {
		t.Errorf("Encode(last) = %d, want %d", got, c.Max()-1)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, sizes := range [][]uint64{{1, 1, 1}, {3, 4, 2}, {11, 1, 5}, {2, 9}, {6}} {
		c := New(sizes...)
		seen := make(map[uint64]bool, c.Max())

		tuple := make([]uint64, len(sizes))
		var walk func(dim int)
		walk = func(dim int) {
			if dim == len(sizes) {
				idx := c.Encode(tuple...)
				if idx >= c.Max() {
					t.Fatalf("sizes %v: Encode(%v) = %d, out of [0,%d)", sizes, tuple, idx, c.Max())
				}
				if seen[idx] {
					t.Fatalf("sizes %v: Encode(%v) = %d collides", sizes, tuple, idx)
				}
				seen[idx] = true
				if diff := cmp.Diff(tuple, c.Decode(idx)); diff != "" {
					t.Fatalf("sizes %v: Decode(Encode(x)) mismatch (-want +got):\n%s", sizes, diff)
				}
				return
			}
			for v := uint64(0); v < sizes[dim]; v++ {
				tuple[dim] = v
				walk(dim + 1)
			}
		}
		walk(0)

		if uint64(len(seen)) != c.Max() {
			t.Errorf("sizes %v: %d distinct indices, want %d", sizes, len(seen), c.Max())
		}
	}
}

func TestEncode3MatchesEncode(t *testing.T) {
	c := New(4, 3, 5)
	for r := uint64(0); r < 4; r++ {
		for col := uint64(0); col < 3; col++ {
			for l := uint64(0); l < 5; l++ {
				idx := c.Encode3(r, col, l)
				if want := c.Encode(r, col, l); idx != want {
					t.Fatalf("Encode3(%d,%d,%d) = %d, want %d", r, col, l, idx, want)
				}
				gr, gc, gl := c.Decode3(idx)
				if gr != r || gc != col || gl != l {
					t.Fatalf("Decode3(%d) = (%d,%d,%d), want (%d,%d,%d)", idx, gr, gc, gl, r, col, l)
				}
			}
		}
	}
}

func TestOutOfRangePanics(t *testing.T) {
	c := New(3, 4, 2)
	tests := []struct {
		name string
		fn   func()
	}{
		{name: "EncodeOffset", fn: func() { c.Encode(3, 0, 0) }},
		{name: "EncodeArity", fn: func() { c.Encode(1, 1) }},
		{name: "Encode3Offset", fn: func() { c.Encode3(0, 0, 2) }},
		{name: "Decode", fn: func() { c.Decode(c.Max()) }},
		{name: "Decode3", fn: func() { c.Decode3(c.Max()) }},
		{name: "Encode3WrongDims", fn: func() { New(2, 2).Encode3(0, 0, 0) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.fn()
		})
	}
}
