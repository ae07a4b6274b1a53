// Package format describes the in-arena layout of emheap block headers. The
// goal is to keep offset arithmetic and header encoding in one place so the
// allocator and the validators agree on every byte.
package format

// Block header layout (little-endian, 12 bytes):
//
//	Offset  Size  Description
//	0x00    4     next: offset of the next free header, NilOffset at the tail
//	0x04    4     size: free blocks count header+payload, allocated blocks
//	              count the payload only
//	0x08    4     pad: alignment filler preceding an allocated header
const (
	NextOffset = 0x00
	SizeOffset = 0x04
	PadOffset  = 0x08

	// HeaderSize is the encoded size of a block header in bytes.
	HeaderSize = 12
)

const (
	// NilOffset marks the end of the free list (the tail sentinel's next link)
	// and the unused link of an allocated block.
	NilOffset uint32 = 0xFFFFFFFF

	// DefaultArenaSize is the default arena capacity in bytes.
	DefaultArenaSize = 4 * 1024

	// DefaultByteAlign is the default base alignment of the arena start and end.
	DefaultByteAlign = 4

	// MinArenaSize leaves room for both sentinels, one block header and at
	// least one payload byte after worst-case base alignment.
	MinArenaSize = 3*HeaderSize + 1
)
