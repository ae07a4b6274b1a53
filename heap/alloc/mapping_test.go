//go:build linux || darwin

package alloc

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_WithMapping(t *testing.T) {
	a, err := New(Config{ArenaSize: 16 * 1024, ByteAlign: 16}, WithMapping())
	require.NoError(t, err)
	defer a.Close()

	l := a.Layout()
	require.Zero(t, l.Base%uintptr(os.Getpagesize()), "mapping must be page aligned")
	require.Equal(t, uint32(0), l.Head)
	require.Equal(t, uint32(16*1024-16), l.Tail)

	ref, buf, err := a.Alloc(256, 512)
	require.NoError(t, err)
	require.Zero(t, (a.Addr(ref)-HeaderSize)%64)
	for i := range buf {
		buf[i] = 0xA5
	}
	requireInvariants(t, a, []Ref{ref})

	require.NoError(t, a.Free(ref))
	requireInvariants(t, a, nil)

	require.NoError(t, a.Close())
	require.NoError(t, a.Close(), "second Close is a no-op")
}

func Test_WithMapping_BadSize(t *testing.T) {
	_, err := New(Config{ArenaSize: -8}, WithMapping())
	require.ErrorIs(t, err, ErrBadConfig)
}
