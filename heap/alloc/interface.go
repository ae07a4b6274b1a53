package alloc

import "github.com/joshuapare/emheap/heap/dirty"

// DirtyTracker is a type alias for the canonical interface defined in heap/dirty.
type DirtyTracker = dirty.DirtyTracker
