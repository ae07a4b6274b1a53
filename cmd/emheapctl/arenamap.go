package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/joshuapare/emheap/heap/alloc"
)

const (
	mapWidth = 64
	mapFree  = '░'
	mapUsed  = '█'
)

var (
	freeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	usedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// renderMap draws the usable region as one row of width cells. A cell shows
// as free when its first byte lies inside a free block.
func renderMap(a *alloc.Allocator, width int) string {
	l := a.Layout()
	start := l.Head + alloc.HeaderSize
	if width <= 0 || l.Tail <= start {
		return ""
	}
	span := l.Tail - start
	cell := (span + uint32(width) - 1) / uint32(width)

	blocks := a.FreeBlocks()
	var sb strings.Builder
	run := make([]rune, 0, width)
	runFree := false

	flush := func() {
		if len(run) == 0 {
			return
		}
		switch {
		case noColor:
			sb.WriteString(string(run))
		case runFree:
			sb.WriteString(freeStyle.Render(string(run)))
		default:
			sb.WriteString(usedStyle.Render(string(run)))
		}
		run = run[:0]
	}

	b := 0
	for off := start; off < l.Tail; off += cell {
		for b < len(blocks) && blocks[b].End() <= off {
			b++
		}
		free := b < len(blocks) && blocks[b].Off <= off

		if free != runFree {
			flush()
			runFree = free
		}
		if free {
			run = append(run, mapFree)
		} else {
			run = append(run, mapUsed)
		}
	}
	flush()
	return sb.String()
}
