package main

import (
	"fmt"
	"io"

	arena "github.com/pavanmanishd/regionarena"
	"github.com/spf13/cobra"
)

var (
	runConfig    string
	runKind      string
	runAlignment int
	runCapacity  int
	runSlotSize  int
	runHeap      bool
	runOps       string
)

func init() {
	cmd := newRunCmd()
	cmd.Flags().StringVarP(&runConfig, "config", "c", "", "TOML file with arena parameters")
	cmd.Flags().StringVar(&runKind, "kind", "", "Arena kind: scratch, linear, stack or pool")
	cmd.Flags().IntVar(&runAlignment, "alignment", 0, "Allocation alignment in bytes")
	cmd.Flags().IntVar(&runCapacity, "capacity", 0, "Region capacity in bytes")
	cmd.Flags().IntVar(&runSlotSize, "slot-size", 0, "Slot size for pool arenas")
	cmd.Flags().BoolVar(&runHeap, "heap", false, "Back the region with Go heap memory")
	cmd.Flags().StringVar(&runOps, "ops", "", "Comma-separated op script")
	_ = cmd.MarkFlagRequired("ops")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an op script against one arena",
		Long: `The run command creates an arena and applies an op script to it,
printing the outcome of every step.

Ops:
  a:N   allocate N bytes        v:N   verify N bytes
  r     reset                   m     capture a stack marker
  p:I   pop to marker I         pop   pop the last allocation
  f:I   free allocation I       rec   record a snapshot
  u     unwind to the last snapshot

Example:
  arenactl run --kind linear --capacity 64 --ops "a:32,a:32,v:1,r"
  arenactl run --config pool.toml --ops "a:16,a:16,f:0,a:8" --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := runArenaConfig(cmd)
			if err != nil {
				return err
			}
			return runScript(cmd.OutOrStdout(), cfg, runOps)
		},
	}
	return cmd
}

// runArenaConfig starts from the config file (or the default) and applies
// any explicitly set flags on top.
func runArenaConfig(cmd *cobra.Command) (arena.Config, error) {
	cfg := arena.DefaultConfig
	if runConfig != "" {
		var err error
		if cfg, err = arena.LoadConfig(runConfig); err != nil {
			return cfg, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("kind") {
		k, err := arena.ParseKind(runKind)
		if err != nil {
			return cfg, err
		}
		cfg.Kind = k
	}
	if flags.Changed("alignment") {
		cfg.Alignment = runAlignment
	}
	if flags.Changed("capacity") {
		cfg.Capacity = runCapacity
	}
	if flags.Changed("slot-size") {
		cfg.SlotSize = runSlotSize
	}
	if runHeap {
		cfg.Backing = arena.BackingHeap
	}
	return cfg, cfg.Validate()
}

type runReport struct {
	Steps   []stepResult       `json:"steps"`
	Metrics arena.ArenaMetrics `json:"metrics"`
	Digest  string             `json:"digest"`
}

func runScript(w io.Writer, cfg arena.Config, script string) error {
	ops, err := parseOps(script)
	if err != nil {
		return err
	}

	log := newLogger()
	defer func() { _ = log.Sync() }()

	a, err := arena.NewFromConfig(cfg, arena.WithLogger(log))
	if err != nil {
		return err
	}
	defer a.Release()

	s := &session{a: a}
	steps, err := s.run(ops)
	if err != nil {
		return err
	}

	report := runReport{
		Steps:   steps,
		Metrics: a.Metrics(),
		Digest:  fmt.Sprintf("%016x", a.Digest()),
	}
	if jsonOut {
		return printJSON(w, report)
	}

	fmt.Fprintf(w, "%s arena, capacity %d, alignment %d\n", cfg.Kind, cfg.Capacity, cfg.Alignment)
	for i, st := range steps {
		fmt.Fprintf(w, "%3d  %-8s %-40s in use %d\n", i, st.Op, st.Result, st.SizeInUse)
	}
	m := report.Metrics
	fmt.Fprintf(w, "in use %d of %d bytes (%.2f%%), generation %d, digest %s\n",
		m.SizeInUse, m.Capacity, m.Utilization*100, m.Generation, report.Digest)
	return nil
}
