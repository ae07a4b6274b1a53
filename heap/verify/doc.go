// Package verify validates emheap arenas from their raw bytes.
//
// # Overview
//
// The checks decode the free list directly out of the arena buffer, so they do
// not trust any bookkeeping kept by the allocator. They are used by tests
// after every operation and by emheapctl after replaying a trace.
//
// Validation categories:
//   - Sentinels: head and tail inside the buffer, tail terminates the list
//   - Ordering: free-list offsets strictly ascending
//   - Coalescing: no two free blocks physically adjacent
//   - Bounds: every free block holds a header and ends at or before the tail
//   - Accounting: free sizes sum to the allocator's free counter
//
// # Quick Start
//
//	l := a.Layout()
//	arena := verify.Arena{Data: a.Bytes(), Head: l.Head, Tail: l.Tail, FreeSize: a.FreeSize()}
//	if err := verify.AllInvariants(arena); err != nil {
//	    fmt.Printf("Validation failed: %v\n", err)
//	}
//
// # ValidationError
//
// All validation functions return *ValidationError on failure:
//
//	type ValidationError struct {
//	    Type    string         // Error category (e.g., "Ordering")
//	    Message string         // Human-readable description
//	    Offset  int            // Arena offset where the error occurred (-1 if N/A)
//	    Details map[string]any // Additional context
//	}
package verify
