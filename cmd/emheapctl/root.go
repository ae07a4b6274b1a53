package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/emheap/heap/alloc"
	"github.com/joshuapare/emheap/internal/logger"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
	noColor bool

	// Arena flags
	arenaSize    int
	byteAlign    int
	alignPayload bool
	useMapping   bool
)

// numbers formats byte counts with digit grouping.
var numbers = message.NewPrinter(language.English)

var rootCmd = &cobra.Command{
	Use:   "emheapctl",
	Short: "Inspect emheap arenas and replay allocation traces",
	Long: `emheapctl builds an emheap arena with the given geometry, reports its
layout and replays alloc/free scripts against it, validating the free list
after every step.`,
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose && !quiet {
			logger.Init(logger.Options{Enabled: true, Level: slog.LevelDebug})
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output and allocator tracing")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.PersistentFlags().IntVar(&arenaSize, "size", alloc.DefaultConfig.ArenaSize, "Arena size in bytes")
	rootCmd.PersistentFlags().IntVar(&byteAlign, "byte-align", alloc.DefaultConfig.ByteAlign, "Base alignment of the arena start and end")
	rootCmd.PersistentFlags().BoolVar(&alignPayload, "align-payload", false, "Align payloads instead of headers")
	rootCmd.PersistentFlags().BoolVar(&useMapping, "mmap", false, "Back the arena with an anonymous mapping")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newArena builds an allocator from the arena flags.
func newArena(opts ...alloc.Option) (*alloc.Allocator, error) {
	cfg := alloc.Config{
		ArenaSize:    arenaSize,
		ByteAlign:    byteAlign,
		AlignPayload: alignPayload,
	}
	if useMapping {
		opts = append(opts, alloc.WithMapping())
	}
	a, err := alloc.New(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create arena: %w", err)
	}
	printVerbose("Arena: %s, base alignment %d, payload alignment %v\n",
		formatBytes(int64(len(a.Bytes()))), cfg.ByteAlign, cfg.AlignPayload)
	return a, nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func formatBytes(n int64) string {
	if n == 1 {
		return "1 byte"
	}
	return numbers.Sprintf("%d bytes", n)
}
