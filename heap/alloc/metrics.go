package alloc

import (
	"fmt"
	"io"

	"github.com/joshuapare/emheap/internal/format"
)

// Stats holds allocator call counters since the last Init.
type Stats struct {
	AllocCalls     int    `json:"alloc_calls"`     // Total Alloc() calls
	FastRejects    int    `json:"fast_rejects"`    // Rejected before scanning (need > free)
	SearchMisses   int    `json:"search_misses"`   // Scanned to the tail without a fit
	Splits         int    `json:"splits"`          // Blocks split with a remainder reinserted
	WholeBlocks    int    `json:"whole_blocks"`    // Blocks handed out without a split
	FreeCalls      int    `json:"free_calls"`      // Total Free() calls
	MergeLeft      int    `json:"merge_left"`      // Merges into the preceding free block
	MergeRight     int    `json:"merge_right"`     // Merges with the following free block
	BytesAllocated uint64 `json:"bytes_allocated"` // Spans reserved, headers and padding included
	BytesFreed     uint64 `json:"bytes_freed"`     // Spans returned
}

// Metrics is a snapshot of arena occupancy.
type Metrics struct {
	ArenaSize     int     `json:"arena_size"`    // Backing region length
	Usable        uint32  `json:"usable"`        // Free capacity right after Init
	FreeSize      uint32  `json:"free_size"`     // Current free capacity
	InUse         uint32  `json:"in_use"`        // Usable - FreeSize
	Live          int     `json:"live"`          // Outstanding allocations
	FreeBlocks    int     `json:"free_blocks"`   // Free-list entries
	LargestFree   uint32  `json:"largest_free"`  // Largest free span
	Utilization   float64 `json:"utilization"`   // InUse / Usable (0.0-1.0)
	Fragmentation float64 `json:"fragmentation"` // 1 - LargestFree / FreeSize (0 when empty)
}

// FreeSize returns the number of bytes spanned by all free blocks.
func (a *Allocator) FreeSize() uint32 { return a.freeSize }

// Live returns the number of outstanding allocations.
func (a *Allocator) Live() int { return a.live }

// Stats returns the call counters accumulated since the last Init.
func (a *Allocator) Stats() Stats { return a.stats }

// Config returns the effective configuration.
func (a *Allocator) Config() Config { return a.cfg }

// Bytes exposes the raw arena. Intended for validation and dumps.
func (a *Allocator) Bytes() []byte { return a.data }

// Layout reports the sentinel placement of the current arena.
func (a *Allocator) Layout() Layout {
	return Layout{
		Base:      a.base,
		ArenaSize: len(a.data),
		ByteAlign: a.cfg.ByteAlign,
		Head:      a.head,
		Tail:      a.tail,
		Usable:    a.usable,
	}
}

// Addr returns the absolute address of the payload behind ref. The address is
// stable for the allocator's lifetime.
func (a *Allocator) Addr(ref Ref) uintptr { return a.base + uintptr(ref) }

// Usable returns the payload capacity recorded for ref, which is at least the
// size passed to Alloc.
func (a *Allocator) Usable(ref Ref) (uint32, error) {
	if uint64(ref) < uint64(a.head)+2*HeaderSize || ref > a.tail {
		return 0, fmt.Errorf("%w: 0x%X outside payload window", ErrBadRef, ref)
	}
	return format.Size(a.data, ref-HeaderSize), nil
}

// Header decodes the header in front of ref.
func (a *Allocator) Header(ref Ref) (format.Header, error) {
	if uint64(ref) < uint64(a.head)+2*HeaderSize || ref > a.tail {
		return format.Header{}, fmt.Errorf("%w: 0x%X outside payload window", ErrBadRef, ref)
	}
	return format.ReadHeader(a.data, ref-HeaderSize)
}

// FreeBlocks walks the free list from the head sentinel and returns every
// real block in list order. Sentinels are not included.
func (a *Allocator) FreeBlocks() []Block {
	var blocks []Block
	for off := format.Next(a.data, a.head); off != a.tail; off = format.Next(a.data, off) {
		blocks = append(blocks, Block{Off: off, Size: format.Size(a.data, off)})
	}
	return blocks
}

// Metrics returns a snapshot of arena occupancy.
func (a *Allocator) Metrics() Metrics {
	m := Metrics{
		ArenaSize: len(a.data),
		Usable:    a.usable,
		FreeSize:  a.freeSize,
		InUse:     a.usable - a.freeSize,
		Live:      a.live,
	}
	for _, b := range a.FreeBlocks() {
		m.FreeBlocks++
		if b.Size > m.LargestFree {
			m.LargestFree = b.Size
		}
	}
	if m.Usable > 0 {
		m.Utilization = float64(m.InUse) / float64(m.Usable)
	}
	if m.FreeSize > 0 {
		m.Fragmentation = 1 - float64(m.LargestFree)/float64(m.FreeSize)
	}
	return m
}

// Dump writes the sentinels, the free list and the counters to w.
func (a *Allocator) Dump(w io.Writer) error {
	m := a.Metrics()
	s := a.stats
	if _, err := fmt.Fprintf(w, "arena: %d bytes, head=0x%04X tail=0x%04X usable=%d\n",
		len(a.data), a.head, a.tail, a.usable); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "free:  %d bytes in %d blocks (largest %d), %d live\n",
		m.FreeSize, m.FreeBlocks, m.LargestFree, m.Live); err != nil {
		return err
	}
	for _, b := range a.FreeBlocks() {
		if _, err := fmt.Fprintf(w, "  [0x%04X, 0x%04X) size=%d\n", b.Off, b.End(), b.Size); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "stats: allocs=%d rejects=%d misses=%d splits=%d whole=%d frees=%d merges=%d/%d\n",
		s.AllocCalls, s.FastRejects, s.SearchMisses, s.Splits, s.WholeBlocks,
		s.FreeCalls, s.MergeLeft, s.MergeRight)
	return err
}
