package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlignUp(t *testing.T) {
	tests := []struct {
		n, align, want uint64
	}{
		{0, 4, 0},
		{1, 4, 4},
		{4, 4, 4},
		{5, 4, 8},
		{112, 4, 112},
		{113, 1, 113},
		{13, 8, 16},
		{17, 16, 32},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AlignUp(tt.n, tt.align), "AlignUp(%d, %d)", tt.n, tt.align)
	}
}

func TestAlignDown(t *testing.T) {
	require.Equal(t, uint64(4084), AlignDown(4087, 4))
	require.Equal(t, uint64(4084), AlignDown(4084, 4))
}

func TestAlignAddr(t *testing.T) {
	require.Equal(t, uintptr(0x1010), AlignAddr(0x1001, 16))
	require.Equal(t, uintptr(0x1010), AlignAddr(0x1010, 16))
}

func TestBitsToBytes(t *testing.T) {
	tests := map[uint32]uint64{
		0:   1,
		7:   1,
		8:   1,
		32:  4,
		64:  8,
		128: 16,
		24:  3,
	}
	for bits, want := range tests {
		assert.Equal(t, want, BitsToBytes(bits), "BitsToBytes(%d)", bits)
	}
}

func TestIsPow2(t *testing.T) {
	for _, n := range []uint64{1, 2, 4, 8, 4096} {
		assert.True(t, IsPow2(n), "IsPow2(%d)", n)
	}
	for _, n := range []uint64{0, 3, 6, 12} {
		assert.False(t, IsPow2(n), "IsPow2(%d)", n)
	}
}
