//go:build unix || windows

// Package mmfile provides platform-specific helpers for obtaining arena memory
// outside the Go heap.
package mmfile
