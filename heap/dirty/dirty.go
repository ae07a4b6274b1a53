package dirty

import "sort"

// defaultRangeCapacity is the pre-allocated capacity for dirty ranges.
// This reduces allocations during typical workloads.
const defaultRangeCapacity = 64

// Range represents a dirty byte range (arena offsets).
type Range struct {
	Off int64 // Offset in the arena
	Len int64 // Length in bytes
}

// End returns the exclusive end offset of the range.
func (r Range) End() int64 { return r.Off + r.Len }

// Tracker accumulates dirty ranges and coalesces them on demand.
//
// NOT thread-safe. Only one goroutine should use it at a time.
type Tracker struct {
	ranges  []Range // Raw ranges, coalesced lazily
	granule int64   // Alignment applied before merging (1 = exact)
	writes  int     // Number of Add calls since the last Reset
}

// NewTracker creates a dirty tracker that rounds ranges out to granule bytes.
// A granule <= 1 keeps exact byte ranges.
func NewTracker(granule int) *Tracker {
	g := int64(granule)
	if g < 1 {
		g = 1
	}
	return &Tracker{
		ranges:  make([]Range, 0, defaultRangeCapacity),
		granule: g,
	}
}

// Add records a dirty range. Zero or negative lengths are ignored.
//
// The range is aligned and merged with other ranges when Ranges is called,
// so Add only appends to a slice.
func (t *Tracker) Add(off, length int) {
	if length <= 0 {
		return
	}
	t.writes++
	t.ranges = append(t.ranges, Range{
		Off: int64(off),
		Len: int64(length),
	})
}

// Writes returns how many Add calls were recorded since the last Reset.
func (t *Tracker) Writes() int { return t.writes }

// Ranges returns the dirty ranges aligned to the granule, sorted and merged.
func (t *Tracker) Ranges() []Range {
	return t.coalesce()
}

// Bytes returns the total number of bytes covered by Ranges.
func (t *Tracker) Bytes() int64 {
	var n int64
	for _, r := range t.coalesce() {
		n += r.Len
	}
	return n
}

// Reset clears all tracked ranges.
func (t *Tracker) Reset() {
	t.ranges = t.ranges[:0]
	t.writes = 0
}

// DebugRanges returns the current dirty ranges (for testing/debugging).
//
// The returned ranges are the raw, uncoalesced ranges.
func (t *Tracker) DebugRanges() []Range {
	// Return a copy to prevent external modification
	result := make([]Range, len(t.ranges))
	copy(result, t.ranges)
	return result
}

// coalesce aligns all ranges to the granule, sorts them, and merges
// overlapping/adjacent ranges.
//
// Returns a new slice of non-overlapping, sorted ranges.
func (t *Tracker) coalesce() []Range {
	if len(t.ranges) == 0 {
		return nil
	}

	aligned := make([]Range, len(t.ranges))
	for i, r := range t.ranges {
		// Round down start to granule boundary
		start := (r.Off / t.granule) * t.granule

		// Round up end to granule boundary
		end := r.End()
		if end%t.granule != 0 {
			end = ((end / t.granule) + 1) * t.granule
		}

		aligned[i] = Range{Off: start, Len: end - start}
	}

	sort.Slice(aligned, func(i, j int) bool {
		return aligned[i].Off < aligned[j].Off
	})

	merged := make([]Range, 0, len(aligned))
	current := aligned[0]

	for i := 1; i < len(aligned); i++ {
		next := aligned[i]

		if next.Off <= current.End() {
			if next.End() > current.End() {
				current.Len = next.End() - current.Off
			}
		} else {
			merged = append(merged, current)
			current = next
		}
	}

	// Don't forget the last range
	merged = append(merged, current)

	return merged
}
