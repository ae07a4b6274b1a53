package verify

import (
	"fmt"

	"github.com/joshuapare/emheap/internal/format"
)

// ValidationError describes the first invariant violation found.
type ValidationError struct {
	Type    string
	Message string
	Offset  int
	Details map[string]any
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Arena is the raw view of an allocator needed for validation.
type Arena struct {
	Data     []byte
	Head     uint32 // head sentinel offset
	Tail     uint32 // tail sentinel offset
	FreeSize uint32 // free-capacity counter to reconcile against
}

// Block is a decoded free-list entry.
type Block struct {
	Off  uint32
	Size uint32
}

// AllInvariants validates all free-list invariants in one call.
// Returns the first error encountered, or nil if all checks pass.
func AllInvariants(a Arena) error {
	if err := Sentinels(a); err != nil {
		return err
	}
	blocks, err := Walk(a)
	if err != nil {
		return err
	}
	if err := Ordering(a, blocks); err != nil {
		return err
	}
	if err := Coalesced(blocks); err != nil {
		return err
	}
	return Accounting(a, blocks)
}

// Sentinels checks that both sentinel headers fit inside the buffer, carry a
// zero size and that the tail terminates the list.
func Sentinels(a Arena) error {
	for _, s := range []struct {
		name string
		off  uint32
	}{{"head", a.Head}, {"tail", a.Tail}} {
		h, err := format.ReadHeader(a.Data, s.off)
		if err != nil {
			return &ValidationError{
				Type:    "Sentinels",
				Message: fmt.Sprintf("%s sentinel does not fit: %v", s.name, err),
				Offset:  int(s.off),
			}
		}
		if h.Size != 0 || h.Pad != 0 {
			return &ValidationError{
				Type:    "Sentinels",
				Message: fmt.Sprintf("%s sentinel has size=%d pad=%d, want zero", s.name, h.Size, h.Pad),
				Offset:  int(s.off),
			}
		}
	}
	if next := format.Next(a.Data, a.Tail); next != format.NilOffset {
		return &ValidationError{
			Type:    "Sentinels",
			Message: fmt.Sprintf("tail links to 0x%X, want nil", next),
			Offset:  int(a.Tail),
		}
	}
	if a.Tail <= a.Head {
		return &ValidationError{
			Type:    "Sentinels",
			Message: fmt.Sprintf("tail 0x%X not after head 0x%X", a.Tail, a.Head),
			Offset:  -1,
		}
	}
	return nil
}

// Walk follows the list from the head sentinel to the tail and returns the
// real blocks. It fails on links that leave the arena or loop.
func Walk(a Arena) ([]Block, error) {
	var blocks []Block
	// A list longer than the arena has bytes must contain a cycle.
	limit := len(a.Data)/format.HeaderSize + 1
	off := format.Next(a.Data, a.Head)
	for off != a.Tail {
		if len(blocks) > limit {
			return nil, &ValidationError{
				Type:    "Walk",
				Message: "free list does not reach the tail (cycle)",
				Offset:  int(off),
			}
		}
		if off == format.NilOffset || off < a.Head || off > a.Tail {
			return nil, &ValidationError{
				Type:    "Walk",
				Message: fmt.Sprintf("link 0x%X leaves the arena window [0x%X, 0x%X]", off, a.Head, a.Tail),
				Offset:  int(off),
			}
		}
		h, err := format.ReadHeader(a.Data, off)
		if err != nil {
			return nil, &ValidationError{Type: "Walk", Message: err.Error(), Offset: int(off)}
		}
		if h.Size < format.HeaderSize {
			return nil, &ValidationError{
				Type:    "Walk",
				Message: fmt.Sprintf("free block size %d smaller than header", h.Size),
				Offset:  int(off),
			}
		}
		if h.Pad != 0 {
			return nil, &ValidationError{
				Type:    "Walk",
				Message: fmt.Sprintf("free block carries padding %d", h.Pad),
				Offset:  int(off),
			}
		}
		if uint64(off)+uint64(h.Size) > uint64(a.Tail) {
			return nil, &ValidationError{
				Type:    "Walk",
				Message: fmt.Sprintf("free block [0x%X, 0x%X) runs past the tail", off, uint64(off)+uint64(h.Size)),
				Offset:  int(off),
				Details: map[string]any{"size": h.Size, "tail": a.Tail},
			}
		}
		blocks = append(blocks, Block{Off: off, Size: h.Size})
		off = h.Next
	}
	return blocks, nil
}

// Ordering checks that free blocks appear in strictly ascending offset order
// and do not overlap.
func Ordering(a Arena, blocks []Block) error {
	prevEnd := uint64(a.Head) + format.HeaderSize
	for i, b := range blocks {
		if uint64(b.Off) < prevEnd {
			return &ValidationError{
				Type:    "Ordering",
				Message: fmt.Sprintf("block %d at 0x%X starts before previous end 0x%X", i, b.Off, prevEnd),
				Offset:  int(b.Off),
			}
		}
		prevEnd = uint64(b.Off) + uint64(b.Size)
	}
	return nil
}

// Coalesced checks that no free block ends exactly where the next begins.
func Coalesced(blocks []Block) error {
	for i := 1; i < len(blocks); i++ {
		prev, cur := blocks[i-1], blocks[i]
		if prev.Off+prev.Size == cur.Off {
			return &ValidationError{
				Type:    "Coalesced",
				Message: fmt.Sprintf("free blocks 0x%X and 0x%X are adjacent", prev.Off, cur.Off),
				Offset:  int(cur.Off),
			}
		}
	}
	return nil
}

// Accounting checks that the free sizes sum to the allocator's counter.
func Accounting(a Arena, blocks []Block) error {
	var sum uint64
	for _, b := range blocks {
		sum += uint64(b.Size)
	}
	if sum != uint64(a.FreeSize) {
		return &ValidationError{
			Type:    "Accounting",
			Message: fmt.Sprintf("free blocks sum to %d, counter says %d", sum, a.FreeSize),
			Offset:  -1,
			Details: map[string]any{"sum": sum, "counter": a.FreeSize, "blocks": len(blocks)},
		}
	}
	return nil
}
