// Package dirty records which byte ranges of an arena were rewritten.
//
// # Overview
//
// The allocator rewrites block headers in place on every Alloc and Free. A
// Tracker attached to the allocator receives one Add call per header write and
// can later report the touched ranges, sorted and coalesced to a chosen
// granule. Tools use this to show the metadata footprint of an operation
// (for example, how many cache lines or flash pages a Free dirtied).
//
// # Usage
//
//	tracker := dirty.NewTracker(0) // exact byte ranges
//	a, _ := alloc.New(alloc.DefaultConfig, alloc.WithDirtyTracker(tracker))
//
//	ref, _, _ := a.Alloc(100, 32)
//	_ = a.Free(ref)
//
//	for _, r := range tracker.Ranges() {
//	    fmt.Printf("0x%04X +%d\n", r.Off, r.Len)
//	}
//	tracker.Reset()
//
// # Granules
//
// NewTracker(32) rounds every range out to 32-byte boundaries before merging,
// which models a cache line. A granule of 0 or 1 keeps exact byte ranges.
//
// # Thread Safety
//
// Tracker is NOT thread-safe, matching the allocator it observes.
package dirty
