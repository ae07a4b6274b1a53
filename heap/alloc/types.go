package alloc

import (
	"log/slog"

	"github.com/joshuapare/emheap/internal/format"
)

// Ref is the arena offset of the first payload byte of an allocated block.
// It plays the role of the pointer returned by a C allocator.
type Ref = uint32

// NilRef is never returned by a successful Alloc.
const NilRef Ref = format.NilOffset

// HeaderSize is the number of metadata bytes in front of every payload.
const HeaderSize = format.HeaderSize

// Config describes the arena an Allocator manages.
type Config struct {
	// ArenaSize is the backing region size in bytes. Zero selects the default
	// (4096). Ignored when WithArena supplies the region.
	ArenaSize int

	// ByteAlign is the base alignment of the arena's usable start and end.
	// Zero selects the default (4). Must be a power of two.
	ByteAlign int

	// AlignPayload places headers so that the returned payload address, not
	// the header address, satisfies the requested alignment.
	AlignPayload bool
}

// DefaultConfig is the 4 KiB, 4-byte aligned arena of a small microcontroller heap.
var DefaultConfig = Config{
	ArenaSize: format.DefaultArenaSize,
	ByteAlign: format.DefaultByteAlign,
}

// Block is one entry of the free list as seen by diagnostics.
type Block struct {
	Off  uint32 `json:"off"`  // Header offset in the arena
	Size uint32 `json:"size"` // Span including the header
}

// End returns the offset just past the block.
func (b Block) End() uint32 { return b.Off + b.Size }

// Layout reports where the sentinels landed after initialization.
type Layout struct {
	Base      uintptr `json:"base"`       // Address of arena byte 0
	ArenaSize int     `json:"arena_size"` // Backing region length
	ByteAlign int     `json:"byte_align"` // Base alignment
	Head      uint32  `json:"head"`       // Head sentinel offset
	Tail      uint32  `json:"tail"`       // Tail sentinel offset
	Usable    uint32  `json:"usable"`     // Free capacity right after Init
}

// Option customizes an Allocator at construction.
type Option func(*Allocator)

// WithLogger routes allocator tracing to l. Debug records are emitted only
// when l has debug level enabled.
func WithLogger(l *slog.Logger) Option {
	return func(a *Allocator) { a.log = l }
}

// WithDirtyTracker records every header write in dt.
func WithDirtyTracker(dt DirtyTracker) Option {
	return func(a *Allocator) { a.dt = dt }
}

// WithArena manages buf instead of allocating a fresh region. The caller keeps
// buf alive and unmoved for the allocator's lifetime.
func WithArena(buf []byte) Option {
	return func(a *Allocator) { a.data = buf }
}

// WithMapping backs the arena with an anonymous page-aligned mapping outside
// the Go heap. Close releases it.
func WithMapping() Option {
	return func(a *Allocator) { a.mapped = true }
}
