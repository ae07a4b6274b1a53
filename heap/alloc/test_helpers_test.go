package alloc

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/emheap/heap/verify"
	"github.com/joshuapare/emheap/internal/format"
)

// testBaseAlign is the alignment of every test arena's first byte, so offset
// arithmetic in tests matches address arithmetic for alignments up to 64.
const testBaseAlign = 64

// alignedBuffer returns size bytes whose first byte sits on an align boundary.
func alignedBuffer(size, align int) []byte {
	raw := make([]byte, size+align)
	base := uintptr(unsafe.Pointer(&raw[0]))
	off := int(format.AlignAddr(base, uintptr(align)) - base)
	return raw[off : off+size : off+size]
}

// newTestAllocator builds an allocator over an aligned arena of cfg.ArenaSize
// bytes (4096 when zero).
func newTestAllocator(t testing.TB, cfg Config, opts ...Option) *Allocator {
	t.Helper()
	size := cfg.ArenaSize
	if size == 0 {
		size = format.DefaultArenaSize
	}
	opts = append(opts, WithArena(alignedBuffer(size, testBaseAlign)))
	a, err := New(cfg, opts...)
	require.NoError(t, err)
	return a
}

// reservedSpan is the arena span an allocation holds: padding, header and
// recorded payload capacity.
func reservedSpan(t testing.TB, a *Allocator, ref Ref) uint64 {
	t.Helper()
	h, err := a.Header(ref)
	require.NoError(t, err)
	return uint64(h.Pad) + HeaderSize + uint64(h.Size)
}

// requireInvariants validates the raw free list and the conservation law
// free + Σ live spans == usable.
func requireInvariants(t testing.TB, a *Allocator, live []Ref) {
	t.Helper()
	l := a.Layout()
	err := verify.AllInvariants(verify.Arena{
		Data:     a.Bytes(),
		Head:     l.Head,
		Tail:     l.Tail,
		FreeSize: a.FreeSize(),
	})
	require.NoError(t, err)

	total := uint64(a.FreeSize())
	for _, ref := range live {
		total += reservedSpan(t, a, ref)
	}
	require.Equal(t, uint64(l.Usable), total, "conservation: free + live spans must equal usable size")
	require.Equal(t, len(live), a.Live())
}

// snapshot captures everything an allocation failure must leave untouched.
type snapshot struct {
	data   []byte
	free   uint32
	blocks []Block
}

func takeSnapshot(a *Allocator) snapshot {
	data := make([]byte, len(a.Bytes()))
	copy(data, a.Bytes())
	return snapshot{data: data, free: a.FreeSize(), blocks: a.FreeBlocks()}
}

func requireUnchanged(t testing.TB, a *Allocator, before snapshot) {
	t.Helper()
	require.Equal(t, before.data, a.Bytes(), "arena bytes changed")
	require.Equal(t, before.free, a.FreeSize(), "free counter changed")
	require.Equal(t, before.blocks, a.FreeBlocks(), "free list changed")
}
