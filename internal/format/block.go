package format

import "fmt"

// Header is the decoded form of a block header.
type Header struct {
	Next uint32 // next free header offset, NilOffset when none
	Size uint32 // see the layout table in consts.go
	Pad  uint32 // alignment filler before the header (0 for free blocks)
}

// ReadHeader decodes the header stored at off.
func ReadHeader(b []byte, off uint32) (Header, error) {
	if uint64(off)+HeaderSize > uint64(len(b)) {
		return Header{}, fmt.Errorf("header at 0x%X: %w", off, ErrTruncated)
	}
	o := int(off)
	return Header{
		Next: ReadU32(b, o+NextOffset),
		Size: ReadU32(b, o+SizeOffset),
		Pad:  ReadU32(b, o+PadOffset),
	}, nil
}

// PutHeader encodes h at off. The caller guarantees off+HeaderSize <= len(b).
func PutHeader(b []byte, off uint32, h Header) {
	o := int(off)
	PutU32(b, o+NextOffset, h.Next)
	PutU32(b, o+SizeOffset, h.Size)
	PutU32(b, o+PadOffset, h.Pad)
}

// Next returns the next link of the header at off.
func Next(b []byte, off uint32) uint32 { return ReadU32(b, int(off)+NextOffset) }

// Size returns the size field of the header at off.
func Size(b []byte, off uint32) uint32 { return ReadU32(b, int(off)+SizeOffset) }

// Pad returns the alignment padding of the header at off.
func Pad(b []byte, off uint32) uint32 { return ReadU32(b, int(off)+PadOffset) }

// SetNext updates the next link of the header at off.
func SetNext(b []byte, off, next uint32) { PutU32(b, int(off)+NextOffset, next) }

// SetSize updates the size field of the header at off.
func SetSize(b []byte, off, size uint32) { PutU32(b, int(off)+SizeOffset, size) }
