package dirty

// DirtyTracker is the minimal interface for tracking dirty (modified) byte ranges.
// Implementations record which regions of an arena had block metadata rewritten.
//
// This interface is intended for components that only need to notify about
// dirty regions (e.g., allocators) without caring how they are consumed.
type DirtyTracker interface {
	// Add marks a byte range as dirty.
	// off is the offset from the start of the arena, length is the number of bytes.
	Add(off, length int)
}
