package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/emheap/heap/alloc"
	"github.com/joshuapare/emheap/heap/dirty"
	"github.com/joshuapare/emheap/heap/verify"
)

var (
	traceDirty bool
	traceDump  bool
	traceMap   bool
)

func init() {
	cmd := newTraceCmd()
	cmd.Flags().BoolVar(&traceDirty, "dirty", false, "Show the header bytes each step rewrote")
	cmd.Flags().BoolVar(&traceDump, "dump", false, "Dump the free list and counters after the last step")
	cmd.Flags().BoolVar(&traceMap, "map", false, "Draw the arena occupancy after each step")
	rootCmd.AddCommand(cmd)
}

func newTraceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace <script|->",
		Short: "Replay an alloc/free script against an arena",
		Long: `The trace command replays a script of allocations and releases against a
fresh arena and validates the free list after every step.

Script lines:
  alloc <name> <size> [align-bits]   allocate and remember the block as <name>
  free <name>                        release a named block
  reset                              re-initialize the arena
  # ...                              comment

A failed allocation is reported and the replay continues. Any other error,
including a free-list validation failure, stops the replay.

Example:
  emheapctl trace script.txt
  emheapctl trace script.txt --dirty -v
  emheapctl trace script.txt --map --size 1024
  cat script.txt | emheapctl trace - --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open script: %w", err)
				}
				defer f.Close()
				r = f
			}
			return runTrace(r)
		},
	}
	return cmd
}

type opKind string

const (
	opAlloc opKind = "alloc"
	opFree  opKind = "free"
	opReset opKind = "reset"
)

// traceOp is one parsed script line.
type traceOp struct {
	Line      int
	Kind      opKind
	Name      string
	Size      uint32
	AlignBits uint32
}

// traceStep is the outcome of replaying one op.
type traceStep struct {
	Line       int           `json:"line"`
	Op         opKind        `json:"op"`
	Name       string        `json:"name,omitempty"`
	Size       uint32        `json:"size,omitempty"`
	AlignBits  uint32        `json:"align_bits,omitempty"`
	Ref        *uint32       `json:"ref,omitempty"`
	Error      string        `json:"error,omitempty"`
	FreeSize   uint32        `json:"free_size"`
	FreeBlocks []alloc.Block `json:"free_blocks"`
	Dirty      []dirty.Range `json:"dirty,omitempty"`
	Map        string        `json:"map,omitempty"`
}

type traceResult struct {
	Steps   []traceStep   `json:"steps"`
	Failed  int           `json:"failed_allocs"`
	Metrics alloc.Metrics `json:"metrics"`
	Stats   alloc.Stats   `json:"stats"`
}

// parseScript reads trace ops from r, skipping blank lines and comments.
func parseScript(r io.Reader) ([]traceOp, error) {
	var ops []traceOp
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		op := traceOp{Line: line, Kind: opKind(strings.ToLower(fields[0]))}
		switch op.Kind {
		case opAlloc:
			if len(fields) < 3 || len(fields) > 4 {
				return nil, fmt.Errorf("line %d: usage: alloc <name> <size> [align-bits]", line)
			}
			op.Name = fields[1]
			size, err := strconv.ParseUint(fields[2], 0, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad size %q: %w", line, fields[2], err)
			}
			op.Size = uint32(size)
			if len(fields) == 4 {
				bits, err := strconv.ParseUint(fields[3], 0, 32)
				if err != nil {
					return nil, fmt.Errorf("line %d: bad alignment %q: %w", line, fields[3], err)
				}
				op.AlignBits = uint32(bits)
			}
		case opFree:
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: usage: free <name>", line)
			}
			op.Name = fields[1]
		case opReset:
			if len(fields) != 1 {
				return nil, fmt.Errorf("line %d: reset takes no arguments", line)
			}
		default:
			return nil, fmt.Errorf("line %d: unknown op %q", line, fields[0])
		}
		ops = append(ops, op)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return ops, nil
}

func runTrace(r io.Reader) error {
	ops, err := parseScript(r)
	if err != nil {
		return err
	}
	if jsonOut {
		noColor = true
	}

	tracker := dirty.NewTracker(0)
	a, err := newArena(alloc.WithDirtyTracker(tracker))
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := replay(a, tracker, ops)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(res)
	}

	if traceDump && !quiet {
		printInfo("\n")
		if err := a.Dump(os.Stdout); err != nil {
			return err
		}
	}
	printInfo("\n✓ Free list valid after %d steps (%d failed allocations)\n", len(res.Steps), res.Failed)
	printInfo("  Free: %s of %s in %d blocks\n",
		formatBytes(int64(res.Metrics.FreeSize)), formatBytes(int64(res.Metrics.Usable)), res.Metrics.FreeBlocks)
	return nil
}

// replay runs ops against a, validating the arena after each one.
func replay(a *alloc.Allocator, tracker *dirty.Tracker, ops []traceOp) (*traceResult, error) {
	res := &traceResult{}
	named := make(map[string]alloc.Ref)

	for _, op := range ops {
		tracker.Reset()
		step := traceStep{Line: op.Line, Op: op.Kind, Name: op.Name, Size: op.Size, AlignBits: op.AlignBits}

		switch op.Kind {
		case opAlloc:
			if _, ok := named[op.Name]; ok {
				return nil, fmt.Errorf("line %d: block %q is still allocated", op.Line, op.Name)
			}
			ref, _, err := a.Alloc(op.Size, op.AlignBits)
			switch {
			case errors.Is(err, alloc.ErrNoSpace):
				step.Error = err.Error()
				res.Failed++
			case err != nil:
				return nil, fmt.Errorf("line %d: %w", op.Line, err)
			default:
				named[op.Name] = ref
				step.Ref = &ref
			}
		case opFree:
			ref, ok := named[op.Name]
			if !ok {
				return nil, fmt.Errorf("line %d: unknown block %q", op.Line, op.Name)
			}
			if err := a.Free(ref); err != nil {
				return nil, fmt.Errorf("line %d: %w", op.Line, err)
			}
			delete(named, op.Name)
		case opReset:
			a.Init()
			clear(named)
		}

		step.FreeSize = a.FreeSize()
		step.FreeBlocks = a.FreeBlocks()
		if traceDirty {
			step.Dirty = tracker.Ranges()
		}
		if traceMap {
			step.Map = renderMap(a, mapWidth)
		}

		l := a.Layout()
		if err := verify.AllInvariants(verify.Arena{Data: a.Bytes(), Head: l.Head, Tail: l.Tail, FreeSize: a.FreeSize()}); err != nil {
			return nil, fmt.Errorf("line %d: %w", op.Line, err)
		}

		res.Steps = append(res.Steps, step)
		if !jsonOut {
			printStep(step)
		}
	}

	res.Metrics = a.Metrics()
	res.Stats = a.Stats()
	return res, nil
}

func printStep(s traceStep) {
	var desc string
	switch s.Op {
	case opAlloc:
		desc = fmt.Sprintf("alloc %s %d @%d", s.Name, s.Size, s.AlignBits)
	case opFree:
		desc = "free " + s.Name
	default:
		desc = string(s.Op)
	}

	switch {
	case s.Error != "":
		printInfo("%4d  %-24s -> FAILED (%s)\n", s.Line, desc, s.Error)
	case s.Ref != nil:
		printInfo("%4d  %-24s -> ref 0x%04X, free %s\n", s.Line, desc, *s.Ref, formatBytes(int64(s.FreeSize)))
	default:
		printInfo("%4d  %-24s -> free %s\n", s.Line, desc, formatBytes(int64(s.FreeSize)))
	}

	for _, b := range s.FreeBlocks {
		printVerbose("        free [0x%04X, 0x%04X) %s\n", b.Off, b.End(), formatBytes(int64(b.Size)))
	}
	for _, r := range s.Dirty {
		printInfo("        dirty [0x%04X, 0x%04X)\n", r.Off, r.End())
	}
	if s.Map != "" {
		printInfo("        %s\n", s.Map)
	}
}
