package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/emheap/heap/alloc"
	"github.com/joshuapare/emheap/heap/verify"
	"github.com/joshuapare/emheap/internal/format"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the layout of a freshly initialized arena",
		Long: `The info command initializes an arena with the configured geometry and
reports where the sentinels land, how much of it is usable and the largest
payload a single allocation can hold.

Example:
  emheapctl info
  emheapctl info --size 65536 --byte-align 16
  emheapctl info --mmap --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo()
		},
	}
	return cmd
}

type arenaInfo struct {
	Layout     alloc.Layout  `json:"layout"`
	Metrics    alloc.Metrics `json:"metrics"`
	MaxPayload uint32        `json:"max_payload"`
	Mapped     bool          `json:"mapped"`
	Valid      bool          `json:"valid"`
}

func runInfo() error {
	a, err := newArena()
	if err != nil {
		return err
	}
	defer a.Close()

	l := a.Layout()
	info := arenaInfo{
		Layout:     l,
		Metrics:    a.Metrics(),
		MaxPayload: l.Usable - format.HeaderSize,
		Mapped:     useMapping,
	}
	verr := verify.AllInvariants(verify.Arena{Data: a.Bytes(), Head: l.Head, Tail: l.Tail, FreeSize: a.FreeSize()})
	info.Valid = verr == nil

	if jsonOut {
		return printJSON(info)
	}

	printInfo("\nArena Information:\n")
	printInfo("  Size: %s\n", formatBytes(int64(l.ArenaSize)))
	printInfo("  Base: 0x%X (aligned to %d)\n", l.Base, l.ByteAlign)
	printInfo("  Head sentinel: 0x%04X\n", l.Head)
	printInfo("  Tail sentinel: 0x%04X\n", l.Tail)
	printInfo("  Usable: %s\n", formatBytes(int64(l.Usable)))
	printInfo("  Max payload: %s\n", formatBytes(int64(info.MaxPayload)))
	printInfo("  Header overhead: %d bytes per block\n", format.HeaderSize)
	if alignPayload {
		printInfo("  Alignment: payload\n")
	} else {
		printInfo("  Alignment: header\n")
	}

	printInfo("  Map: %s\n", renderMap(a, mapWidth))

	printInfo("\nValidation:\n")
	if verr != nil {
		return fmt.Errorf("fresh arena failed validation: %w", verr)
	}
	printInfo("  ✓ Free list valid\n")
	return nil
}
