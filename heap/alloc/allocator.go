package alloc

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"unsafe"

	"github.com/joshuapare/emheap/internal/format"
	"github.com/joshuapare/emheap/internal/logger"
	"github.com/joshuapare/emheap/internal/mmfile"
)

// Allocator is a first-fit allocator over one fixed arena. Free blocks form a
// singly linked list ordered by offset, bounded by a head and a tail sentinel;
// freed blocks are merged with physically adjacent free neighbours.
//
// NOT thread-safe. All methods must be serialized by the caller.
type Allocator struct {
	cfg  Config
	data []byte
	base uintptr // address of data[0], used only for alignment math

	head uint32 // head sentinel offset
	tail uint32 // tail sentinel offset

	freeSize uint32 // Σ size of free blocks, sentinels excluded
	usable   uint32 // freeSize right after Init
	live     int    // outstanding allocations

	dt    DirtyTracker
	log   *slog.Logger
	trace bool // debug logging enabled on log

	mapped  bool
	release func() error

	stats Stats
}

// New builds an allocator for cfg and initializes its arena.
//
// Zero fields of cfg take their DefaultConfig values. The arena must be able
// to hold both sentinels plus one block header after base alignment.
func New(cfg Config, opts ...Option) (*Allocator, error) {
	if cfg.ArenaSize == 0 {
		cfg.ArenaSize = DefaultConfig.ArenaSize
	}
	if cfg.ByteAlign == 0 {
		cfg.ByteAlign = DefaultConfig.ByteAlign
	}

	a := &Allocator{cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = logger.L
	}
	a.trace = a.log.Enabled(context.Background(), slog.LevelDebug)

	if cfg.ByteAlign < 0 || !format.IsPow2(uint64(cfg.ByteAlign)) {
		return nil, fmt.Errorf("%w: base alignment %d is not a power of two", ErrBadConfig, cfg.ByteAlign)
	}

	switch {
	case a.data != nil:
		a.cfg.ArenaSize = len(a.data)
	case a.mapped:
		if cfg.ArenaSize < 0 {
			return nil, fmt.Errorf("%w: arena size %d", ErrBadConfig, cfg.ArenaSize)
		}
		data, release, err := mmfile.Anon(cfg.ArenaSize)
		if err != nil {
			return nil, err
		}
		a.data, a.release = data, release
	default:
		if cfg.ArenaSize < 0 {
			return nil, fmt.Errorf("%w: arena size %d", ErrBadConfig, cfg.ArenaSize)
		}
		a.data = make([]byte, cfg.ArenaSize)
	}

	// Offsets are uint32 and NilOffset must stay out of reach.
	if uint64(len(a.data)) >= uint64(math.MaxUint32) {
		a.Close()
		return nil, fmt.Errorf("%w: arena size %d exceeds 32-bit offsets", ErrBadConfig, len(a.data))
	}
	if len(a.data) < format.MinArenaSize {
		a.Close()
		return nil, fmt.Errorf("%w: arena size %d below minimum %d", ErrBadConfig, len(a.data), format.MinArenaSize)
	}

	a.base = uintptr(unsafe.Pointer(&a.data[0]))
	head, tail := a.sentinels()
	if uint64(tail) < uint64(head)+2*HeaderSize+1 {
		a.Close()
		return nil, fmt.Errorf("%w: arena size %d leaves no room after %d-byte alignment",
			ErrBadConfig, len(a.data), cfg.ByteAlign)
	}

	a.Init()
	return a, nil
}

// sentinels computes the head and tail offsets: head at the first aligned
// address, tail at the last aligned address that still fits a header.
func (a *Allocator) sentinels() (head, tail uint32) {
	align := uintptr(a.cfg.ByteAlign)
	start := format.AlignAddr(a.base, align)
	last := a.base + uintptr(len(a.data)) - HeaderSize
	end := last &^ (align - 1)
	if end < start {
		return uint32(start - a.base), uint32(start - a.base)
	}
	return uint32(start - a.base), uint32(end - a.base)
}

// Init (re)initializes the arena: head sentinel, one free block spanning the
// usable region, tail sentinel. All outstanding references become invalid.
func (a *Allocator) Init() {
	a.head, a.tail = a.sentinels()
	first := a.head + HeaderSize

	a.putHeader(a.head, format.Header{Next: first})
	a.putHeader(a.tail, format.Header{Next: format.NilOffset})
	a.putHeader(first, format.Header{Next: a.tail, Size: a.tail - first})

	a.freeSize = a.tail - first
	a.usable = a.freeSize
	a.live = 0
	a.stats = Stats{}

	if a.trace {
		a.log.Debug("heap init",
			"arena", len(a.data), "head", a.head, "tail", a.tail, "free", a.freeSize)
	}
}

// Alloc reserves size payload bytes whose header is aligned to alignBits/8
// bytes (payload-aligned when Config.AlignPayload is set). An alignment below
// one byte means no constraint. Any other byte alignment that is not a power
// of two, such as 24 bits, fails with ErrBadAlign instead of being rounded.
//
// The block reserves size+HeaderSize rounded up to the alignment, or more
// when the header padding would not fit in that, so split remainders stay on
// the alignment grid.
//
// It returns the payload reference and a slice over the payload of length
// size. On ErrNoSpace nothing in the arena has changed.
func (a *Allocator) Alloc(size, alignBits uint32) (Ref, []byte, error) {
	a.stats.AllocCalls++

	align := format.BitsToBytes(alignBits)
	if !format.IsPow2(align) {
		return NilRef, nil, fmt.Errorf("%w: %d bits", ErrBadAlign, alignBits)
	}

	need := format.AlignUp(uint64(size)+HeaderSize, align)
	if need > uint64(a.freeSize) {
		a.stats.FastRejects++
		if a.trace {
			a.log.Debug("alloc rejected", "size", size, "need", need, "free", a.freeSize)
		}
		return NilRef, nil, ErrNoSpace
	}

	// First fit: the block must cover need and, once its own alignment
	// padding is known, the padded header plus payload.
	prev := a.head
	cur := format.Next(a.data, prev)
	var pad, reserved uint64
	for cur != a.tail {
		bsize := uint64(format.Size(a.data, cur))
		if bsize >= need {
			pad = a.padFor(cur, align)
			reserved = max(need, pad+HeaderSize+uint64(size))
			if bsize >= reserved {
				break
			}
		}
		prev = cur
		cur = format.Next(a.data, cur)
	}
	if cur == a.tail {
		a.stats.SearchMisses++
		if a.trace {
			a.log.Debug("alloc miss", "size", size, "need", need, "free", a.freeSize)
		}
		return NilRef, nil, ErrNoSpace
	}

	a.setNext(prev, format.Next(a.data, cur))

	bsize := uint64(format.Size(a.data, cur))
	used := bsize
	split := false
	if bsize > 2*HeaderSize && bsize-reserved >= HeaderSize {
		rem := cur + uint32(reserved)
		a.putHeader(rem, format.Header{Next: format.NilOffset, Size: uint32(bsize - reserved)})
		a.insertFree(rem)
		used = reserved
		split = true
		a.stats.Splits++
	} else {
		a.stats.WholeBlocks++
	}

	// The header records the payload capacity: everything in the span past
	// the padding and the header.
	hdr := cur + uint32(pad)
	capacity := uint32(used - pad - HeaderSize)
	a.putHeader(hdr, format.Header{Next: format.NilOffset, Size: capacity, Pad: uint32(pad)})

	a.freeSize -= uint32(used)
	a.live++
	a.stats.BytesAllocated += used

	if a.trace {
		a.log.Debug("alloc",
			"size", size, "align", align, "need", need, "block", cur,
			"pad", pad, "span", used, "split", split, "free", a.freeSize)
	}

	ref := hdr + HeaderSize
	return ref, a.data[ref : ref+size : ref+capacity], nil
}

// MustAlloc is like Alloc but panics when the request cannot be satisfied.
func (a *Allocator) MustAlloc(size, alignBits uint32) (Ref, []byte) {
	ref, payload, err := a.Alloc(size, alignBits)
	if err != nil {
		panic(fmt.Errorf("alloc: %d bytes at %d-bit alignment: %w", size, alignBits, err))
	}
	return ref, payload
}

// Free returns the block behind ref to the free list, merging it with any
// physically adjacent free block.
//
// ref must come from Alloc on this allocator and must not have been freed
// already; only references that cannot lie inside the arena are reported
// (ErrBadRef). Any other misuse corrupts the free list.
func (a *Allocator) Free(ref Ref) error {
	a.stats.FreeCalls++

	if uint64(ref) < uint64(a.head)+2*HeaderSize || ref > a.tail {
		return fmt.Errorf("%w: 0x%X outside payload window", ErrBadRef, ref)
	}

	hdr := ref - HeaderSize
	h, err := format.ReadHeader(a.data, hdr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadRef, err)
	}
	span := uint64(h.Size) + uint64(h.Pad) + HeaderSize
	if uint64(h.Pad) > uint64(hdr) || uint64(hdr)-uint64(h.Pad) < uint64(a.head)+HeaderSize ||
		uint64(hdr)-uint64(h.Pad)+span > uint64(a.tail) {
		return fmt.Errorf("%w: 0x%X has a corrupt header", ErrBadRef, ref)
	}

	start := hdr - h.Pad
	a.putHeader(start, format.Header{Next: format.NilOffset, Size: uint32(span)})

	a.freeSize += uint32(span)
	a.live--
	a.stats.BytesFreed += span

	if a.trace {
		a.log.Debug("free", "ref", ref, "block", start, "pad", h.Pad, "span", span, "free", a.freeSize)
	}

	a.insertFree(start)
	return nil
}

// insertFree links the unlinked free block at node into the list at its
// address-ordered position and merges it with adjacent free neighbours. The
// tail sentinel is never absorbed.
func (a *Allocator) insertFree(node uint32) {
	p := a.head
	for format.Next(a.data, p) < node {
		p = format.Next(a.data, p)
	}
	succ := format.Next(a.data, p)

	linked := node
	if p+format.Size(a.data, p) == node {
		// Left neighbour ends where node starts: grow it by node's own span.
		a.setSize(p, format.Size(a.data, p)+format.Size(a.data, node))
		linked = p
		a.stats.MergeLeft++
	}

	if succ != a.tail && linked+format.Size(a.data, linked) == succ {
		a.setSize(linked, format.Size(a.data, linked)+format.Size(a.data, succ))
		a.setNext(linked, format.Next(a.data, succ))
		a.stats.MergeRight++
	} else {
		a.setNext(linked, succ)
	}

	if linked != p {
		a.setNext(p, linked)
	}
}

// padFor returns how far the header must move past off so that the header
// (or, with AlignPayload, the payload) lands on an align-byte address.
func (a *Allocator) padFor(off uint32, align uint64) uint64 {
	addr := a.base + uintptr(off)
	if a.cfg.AlignPayload {
		addr += HeaderSize
	}
	return uint64(format.AlignAddr(addr, uintptr(align)) - addr)
}

// Close releases a mapped arena. The allocator must not be used afterwards.
// It is a no-op for heap-backed and caller-supplied arenas.
func (a *Allocator) Close() error {
	if a.release == nil {
		return nil
	}
	err := a.release()
	a.release = nil
	a.data = nil
	return err
}
