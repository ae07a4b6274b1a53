package format

// Alignment helpers. All alignments are byte counts and must be powers of two.

// IsPow2 reports whether n is a non-zero power of two.
func IsPow2(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}

// AlignUp returns n rounded up to the next multiple of align.
//
// Example:
//
//	AlignUp(1, 4)  = 4
//	AlignUp(4, 4)  = 4
//	AlignUp(13, 8) = 16
func AlignUp(n, align uint64) uint64 {
	mask := align - 1
	return (n + mask) &^ mask
}

// AlignDown returns n rounded down to a multiple of align.
//
// Example:
//
//	AlignDown(7, 4)  = 4
//	AlignDown(8, 4)  = 8
func AlignDown(n, align uint64) uint64 {
	return n &^ (align - 1)
}

// AlignAddr returns addr rounded up to align. Same arithmetic as AlignUp, kept
// separate so address math reads as such at call sites.
func AlignAddr(addr, align uintptr) uintptr {
	mask := align - 1
	return (addr + mask) &^ mask
}

// BitsToBytes converts an alignment expressed in bits to bytes. Zero (and
// anything below a byte) means "no constraint" and maps to 1.
func BitsToBytes(bits uint32) uint64 {
	b := uint64(bits / 8)
	if b == 0 {
		return 1
	}
	return b
}
