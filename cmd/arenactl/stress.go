package main

import (
	"fmt"
	"io"
	"runtime"

	arena "github.com/pavanmanishd/regionarena"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
)

var (
	stressArenas     int
	stressIterations int
	stressWorkers    int
	stressSeed       uint64
)

func init() {
	cmd := newStressCmd()
	cmd.Flags().IntVarP(&stressArenas, "arenas", "n", 64, "Number of independent arenas")
	cmd.Flags().IntVarP(&stressIterations, "iterations", "i", 10000, "Operations per arena")
	cmd.Flags().IntVarP(&stressWorkers, "workers", "w", runtime.GOMAXPROCS(0), "Arenas driven at once")
	cmd.Flags().Uint64Var(&stressSeed, "seed", 1, "Base random seed")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Check Verify against Alloc on many random arenas",
		Long: `The stress command drives independent arenas of random kind,
alignment and capacity with random operations. Before every allocation it
asks Verify, and it reports each arena where the answer disagreed with
Alloc or where a failed Alloc changed the arena.

Example:
  arenactl stress --arenas 256 --iterations 50000
  arenactl stress -n 8 --seed 42 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress(cmd.OutOrStdout(), stressArenas, stressIterations, stressWorkers, stressSeed)
		},
	}
	return cmd
}

// stressReport summarises one arena's run.
type stressReport struct {
	Seed       uint64     `json:"seed"`
	Kind       arena.Kind `json:"kind"`
	Alignment  int        `json:"alignment"`
	Capacity   int        `json:"capacity"`
	Allocs     int        `json:"allocs"`
	Failures   int        `json:"failures"`
	Mismatches int        `json:"mismatches"`
	Mutations  int        `json:"mutations"`
}

func (r stressReport) ok() bool { return r.Mismatches == 0 && r.Mutations == 0 }

type stressSummary struct {
	Arenas     int            `json:"arenas"`
	Iterations int            `json:"iterations"`
	Allocs     int            `json:"allocs"`
	Failures   int            `json:"failures"`
	Bad        []stressReport `json:"bad,omitempty"`
}

func runStress(w io.Writer, arenas, iterations, workers int, seed uint64) error {
	if arenas < 1 || iterations < 1 {
		return fmt.Errorf("arenas and iterations must be positive")
	}
	log := newLogger()
	defer func() { _ = log.Sync() }()

	p := pool.NewWithResults[stressReport]().WithErrors().WithMaxGoroutines(max(workers, 1))
	for i := 0; i < arenas; i++ {
		s := seed + uint64(i)
		p.Go(func() (stressReport, error) {
			return stressArena(s, iterations, log)
		})
	}
	reports, err := p.Wait()
	if err != nil {
		return err
	}

	sum := stressSummary{Arenas: len(reports), Iterations: iterations}
	for _, r := range reports {
		sum.Allocs += r.Allocs
		sum.Failures += r.Failures
		if !r.ok() {
			sum.Bad = append(sum.Bad, r)
		}
	}

	if jsonOut {
		if err := printJSON(w, sum); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(w, "%d arenas, %d ops each: %d allocations, %d refused\n",
			sum.Arenas, sum.Iterations, sum.Allocs, sum.Failures)
		for _, r := range sum.Bad {
			fmt.Fprintf(w, "  seed %d (%s, align %d, cap %d): %d oracle mismatches, %d failed allocs changed state\n",
				r.Seed, r.Kind, r.Alignment, r.Capacity, r.Mismatches, r.Mutations)
		}
	}
	if len(sum.Bad) > 0 {
		return fmt.Errorf("%d of %d arenas misbehaved", len(sum.Bad), sum.Arenas)
	}
	return nil
}

// stressArena runs one randomly shaped arena for the given number of ops.
func stressArena(seed uint64, iterations int, log *zap.Logger) (stressReport, error) {
	rng := rand.New(rand.NewSource(seed))
	kind := arena.Kind(rng.Intn(4))
	alignment := arena.MinAlignment << rng.Intn(4)
	capacity := 1 + rng.Intn(8192)
	opts := []arena.Option{arena.WithHeapBacking(), arena.WithLogger(log)}
	if kind == arena.Pool {
		opts = append(opts, arena.WithSlotSize(1+rng.Intn(min(capacity, 256))))
	}

	a, err := arena.New(kind, alignment, capacity, opts...)
	if err != nil {
		return stressReport{}, fmt.Errorf("seed %d: %w", seed, err)
	}
	defer a.Release()

	r := stressReport{Seed: seed, Kind: kind, Alignment: alignment, Capacity: capacity}
	var (
		live    [][]byte
		markers []arena.Marker
	)
	for i := 0; i < iterations; i++ {
		switch n := rng.Intn(100); {
		case n < 2:
			a.Reset()
			live, markers = live[:0], markers[:0]
		case n < 8 && kind == arena.Stack:
			m, _ := a.Mark()
			markers = append(markers, m)
		case n < 12 && kind == arena.Stack && len(markers) > 0:
			j := rng.Intn(len(markers))
			if a.PopTo(markers[j]) == nil {
				markers = markers[:j+1]
			}
		case n < 20 && kind == arena.Pool && len(live) > 0:
			j := rng.Intn(len(live))
			_ = a.Free(live[j])
			live[j] = live[len(live)-1]
			live = live[:len(live)-1]
		default:
			size := 1 + rng.Intn(capacity/4+1)
			want := a.Verify(size)
			before := a.Digest()
			b, err := a.Alloc(size)
			if want != (err == nil) {
				r.Mismatches++
			}
			if err != nil {
				r.Failures++
				if a.Digest() != before {
					r.Mutations++
				}
				continue
			}
			r.Allocs++
			if kind == arena.Pool {
				live = append(live, b)
			}
		}
	}
	return r, nil
}
