// Package alloc provides a fixed-capacity first-fit allocator for small
// embedded heaps.
//
// # Overview
//
// The allocator manages a single arena that never grows. Free space is kept in
// one singly linked list ordered by offset, bracketed by a head and a tail
// sentinel header. Allocation takes the first block that fits and splits off
// the rest; release puts the block back in address order and merges it with
// any free neighbour.
//
// # Block Headers
//
// Every block starts with a 12-byte little-endian header:
//
//	Offset  Size  Field
//	0x00    4     next  (free blocks only, NilOffset otherwise)
//	0x04    4     size  (free: header+payload, allocated: payload capacity)
//	0x08    4     pad   (bytes skipped before an aligned header)
//
// A Ref is the arena offset of the first payload byte, i.e. header + 12.
//
// # Usage Example
//
//	a, err := alloc.New(alloc.DefaultConfig)
//	if err != nil {
//	    return err
//	}
//
//	// 100 bytes, header aligned to 32 bits
//	ref, buf, err := a.Alloc(100, 32)
//	if err != nil {
//	    return err
//	}
//	copy(buf, payload)
//
//	// Later
//	err = a.Free(ref)
//
// # Alignment
//
// Alignment is requested in bits and converted to bytes; anything below one
// byte means no constraint. By default the header is placed on the aligned
// address, so the payload sits 12 bytes past it. Config.AlignPayload moves the
// header back so the payload itself is aligned. Either way the skipped bytes
// are recorded in the header and returned to the free list by Free.
//
// The sentinels sit on Config.ByteAlign boundaries computed from the real
// address of the arena, so alignment holds for callers that hand the payload
// address to foreign code (see Addr).
//
// # Backing Region
//
// By default the arena is a Go byte slice. WithMapping backs it with an
// anonymous memory mapping instead, and WithArena manages a caller-supplied
// buffer.
//
// # Debugging
//
// Set EMHEAP_LOG_ALLOC=1 to trace every allocation, release and rejection at
// debug level, or pass a logger with WithLogger. WithDirtyTracker records
// every header write. Metrics, FreeBlocks and Dump expose the free list, and
// the heap/verify package validates an arena from its raw bytes.
//
// # Thread Safety
//
// Allocator is NOT thread-safe. Callers serialize access externally.
package alloc
