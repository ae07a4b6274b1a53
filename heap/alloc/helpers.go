package alloc

import "github.com/joshuapare/emheap/internal/format"

// Header writers. Every in-arena metadata write goes through these so the
// dirty tracker sees it.

func (a *Allocator) putHeader(off uint32, h format.Header) {
	format.PutHeader(a.data, off, h)
	if a.dt != nil {
		a.dt.Add(int(off), HeaderSize)
	}
}

func (a *Allocator) setNext(off, next uint32) {
	format.SetNext(a.data, off, next)
	if a.dt != nil {
		a.dt.Add(int(off)+format.NextOffset, 4)
	}
}

func (a *Allocator) setSize(off, size uint32) {
	format.SetSize(a.data, off, size)
	if a.dt != nil {
		a.dt.Add(int(off)+format.SizeOffset, 4)
	}
}
