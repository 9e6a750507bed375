package gen

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/mkarpenko/sweeper/internal/board"
	"github.com/mkarpenko/sweeper/internal/solver"
)

const (
	DefaultBudget      = 250 * time.Millisecond
	DefaultSwapPercent = 4
	DefaultPatience    = 100
)

// Options tunes the search. The zero value is usable: defaults are
// filled in by Generate and diagnostics stay off unless Debug is set.
type Options struct {
	Budget      time.Duration // wall-clock limit for the whole search
	SwapPercent int           // percent of the mine count swapped per mutation
	Patience    int           // non-improving mutations before the lineage is dropped
	Debug       bool          // emit a Report record through Logger
	Logger      *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Budget <= 0 {
		o.Budget = DefaultBudget
	}
	if o.SwapPercent <= 0 {
		o.SwapPercent = DefaultSwapPercent
	}
	if o.Patience <= 0 {
		o.Patience = DefaultPatience
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Branch names which selection rule produced the returned board.
type Branch int8

const (
	BranchSolved Branch = iota
	BranchBest
	BranchLastSafe
	BranchLast
	BranchSynthesized
)

func (b Branch) String() string {
	switch b {
	case BranchSolved:
		return "solved"
	case BranchBest:
		return "best"
	case BranchLastSafe:
		return "last-safe"
	case BranchLast:
		return "last"
	default:
		return "synthesized"
	}
}

// Report is the optional structured diagnostic record for one
// generation call. It is advisory only and never affects the board.
type Report struct {
	Rows, Cols     int
	MinesPlaced    int
	Branch         Branch
	Solved         bool
	Score          int
	SolvedFraction float64
	Attempts       int
	WinningAttempt int
	Budget         time.Duration
	Elapsed        time.Duration
}

func (r Report) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("rows", r.Rows),
		slog.Int("cols", r.Cols),
		slog.Int("mines", r.MinesPlaced),
		slog.String("branch", r.Branch.String()),
		slog.Bool("solved", r.Solved),
		slog.Int("score", r.Score),
		slog.Float64("solvedFraction", r.SolvedFraction),
		slog.Int("attempts", r.Attempts),
		slog.Int("winningAttempt", r.WinningAttempt),
		slog.Duration("budget", r.Budget),
		slog.Duration("elapsed", r.Elapsed),
	)
}

/*
Generate hunts for a board that the deduction solver can clear from the
safe cell without guessing. It alternates random sampling with
hill-climbing mutation: the best-scoring candidate seen so far becomes
the parent for local perturbations, and a lineage that stops improving
for Patience iterations is abandoned in favour of fresh samples.

The search is plain synchronous CPU work bounded by Options.Budget; it
checks the clock between iterations and always completes at least one.
A fully solved board is accepted the moment it appears. When the budget
runs out first, the caller still gets a valid board, picked in this
order: best-scoring unsolved candidate, then the last candidate whose
safe cell opened a zero region, then the last candidate at all, then an
unconditionally synthesized random board. The returned board is freshly
owned by the caller and no longer referenced by the search.
*/
func Generate(
	rows, cols, mineCount int,
	safe board.Position,
	rnd *rand.Rand,
	opts Options,
) (*board.Board, Report, error) {
	if err := validate(rows, cols, mineCount, safe); err != nil {
		return nil, Report{}, err
	}
	opts = opts.withDefaults()

	swaps := max(1, (mineCount*opts.SwapPercent+99)/100)

	var (
		start     = time.Now()
		best      *board.Board
		bestScore = -1
		parent    *board.Board
		stale     int
		lastSafe  *board.Board
		last      *board.Board
		solved    *board.Board
		attempts  int
		winning   int
		score     int
	)

	for attempts == 0 || time.Since(start) < opts.Budget {
		if parent != nil && stale >= opts.Patience {
			parent = nil
			stale = 0
		}

		var candidate *board.Board
		if parent != nil {
			candidate = Mutate(parent, safe, swaps, rnd)
		}
		if candidate == nil {
			candidate = Random(rows, cols, mineCount, safe, rnd)
		}
		attempts++
		last = candidate

		// The first click must always open a zero region.
		if candidate.Counts[candidate.Index(safe)] != 0 {
			continue
		}
		lastSafe = candidate

		res := solver.Solve(candidate, safe)
		if res.Solved {
			solved = candidate
			score = res.Score
			winning = attempts
			break
		}
		if res.Score > bestScore {
			best = candidate
			bestScore = res.Score
			parent = candidate
			stale = 0
			winning = attempts
		} else {
			stale++
		}
	}

	var (
		result *board.Board
		branch Branch
	)
	switch {
	case solved != nil:
		result, branch = solved, BranchSolved
	case best != nil:
		result, branch, score = best, BranchBest, bestScore
	case lastSafe != nil:
		result, branch, score = lastSafe, BranchLastSafe, 0
	case last != nil:
		result, branch, score = last, BranchLast, 0
	default:
		// Pathological near-zero budget: never return nothing.
		result, branch, score = Random(rows, cols, mineCount, safe, rnd), BranchSynthesized, 0
	}

	report := Report{
		Rows:           rows,
		Cols:           cols,
		MinesPlaced:    result.MineCount(),
		Branch:         branch,
		Solved:         solved != nil,
		Score:          score,
		SolvedFraction: float64(score) / float64(rows*cols),
		Attempts:       attempts,
		WinningAttempt: winning,
		Budget:         opts.Budget,
		Elapsed:        time.Since(start),
	}
	if opts.Debug {
		opts.Logger.Info("board generated", slog.Any("report", report))
	}

	return result, report, nil
}
