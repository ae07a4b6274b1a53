//go:build !unix && !windows

// Package mmfile provides platform-specific helpers for obtaining arena memory
// outside the Go heap.
package mmfile

import "fmt"

// Anon allocates a Go-managed buffer when no mapping primitive is available.
func Anon(size int) ([]byte, func() error, error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("mmfile: invalid mapping size %d", size)
	}
	return make([]byte, size), func() error { return nil }, nil
}
