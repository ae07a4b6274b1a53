package main

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/emheap/heap/alloc"
)

func TestRenderMap(t *testing.T) {
	resetFlags()
	a, err := alloc.New(alloc.DefaultConfig)
	require.NoError(t, err)

	empty := renderMap(a, mapWidth)
	assert.Equal(t, mapWidth, utf8.RuneCountInString(empty))
	assert.Equal(t, strings.Repeat(string(mapFree), mapWidth), empty)

	// 1012 bytes of payload plus header fill the first 16 cells of 64 bytes.
	ref, _, err := a.Alloc(1012, 0)
	require.NoError(t, err)
	got := renderMap(a, mapWidth)
	assert.Equal(t, strings.Repeat(string(mapUsed), 16)+strings.Repeat(string(mapFree), mapWidth-16), got)

	require.NoError(t, a.Free(ref))
	assert.Equal(t, empty, renderMap(a, mapWidth))
}

func TestRenderMap_Full(t *testing.T) {
	resetFlags()
	a, err := alloc.New(alloc.Config{ArenaSize: 256})
	require.NoError(t, err)
	_, _, err = a.Alloc(220, 0)
	require.NoError(t, err)

	got := renderMap(a, 8)
	assert.Equal(t, strings.Repeat(string(mapUsed), 8), got)
	assert.Empty(t, renderMap(a, 0))
}

func TestTraceCommand_Map(t *testing.T) {
	resetFlags()
	traceMap = true

	out, err := captureOutput(t, func() error { return runTrace(strings.NewReader("alloc a 1012\n")) })
	require.NoError(t, err)
	assert.Contains(t, out, strings.Repeat(string(mapUsed), 16)+string(mapFree))
}
