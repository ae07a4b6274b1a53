package alloc

import "errors"

var (
	// ErrNoSpace indicates that no free block large enough was found. The
	// allocator state is untouched when Alloc returns it.
	ErrNoSpace = errors.New("alloc: no free block large enough")

	// ErrBadRef indicates a reference that cannot belong to this arena.
	ErrBadRef = errors.New("alloc: bad block reference")

	// ErrBadAlign indicates a requested alignment that is not a power of two bytes.
	ErrBadAlign = errors.New("alloc: alignment must be a power of two bytes")

	// ErrBadConfig indicates an arena size or base alignment New cannot lay out.
	ErrBadConfig = errors.New("alloc: invalid arena configuration")
)
