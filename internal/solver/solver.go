package solver

import (
	"log/slog"
	"slices"

	"github.com/mkarpenko/sweeper/internal/board"
)

var Log *slog.Logger = slog.Default()

// Result reports how far pure deduction got on a candidate board.
// Score ranks unsolved candidates against each other: every cell the
// simulated player could provably open or flag counts for one point.
type Result struct {
	Solved bool
	Score  int
}

/*
constraint captures what one revealed numbered cell still says about its
surroundings: the flat indices of its unrevealed, unflagged neighbours
and how many of them must be mines once already-flagged neighbours are
subtracted. Constraints are rebuilt from scratch every round rather than
maintained incrementally; rounds are small and the rebuild keeps the
deduction loop trivially correct after each batch of reveals and flags.
*/
type constraint struct {
	cells     []int // sorted
	remaining int
}

// isSubsetOf reports whether every cell of c appears in other. Both
// slices are sorted, so this is a single merge-style scan.
func (c constraint) isSubsetOf(other constraint) bool {
	if len(c.cells) > len(other.cells) {
		return false
	}
	j := 0
	for _, x := range c.cells {
		for j < len(other.cells) && other.cells[j] < x {
			j++
		}
		if j >= len(other.cells) || other.cells[j] != x {
			return false
		}
		j++
	}
	return true
}

/*
subtract applies the subset rule to a strict-subset pair: with a ⊂ b,
the cells of b outside a must hold exactly b.remaining-a.remaining
mines. When that difference is zero they are all provably safe; when it
equals the size of the difference they are all provably mines. Any other
value pins down nothing.
*/
func subtract(a, b constraint) (safe, mines []int) {
	diff := make([]int, 0, len(b.cells)-len(a.cells))
	j := 0
	for _, x := range b.cells {
		if j < len(a.cells) && a.cells[j] == x {
			j++
			continue
		}
		diff = append(diff, x)
	}
	switch rem := b.remaining - a.remaining; {
	case rem == 0:
		return diff, nil
	case rem == len(diff):
		return nil, diff
	}
	return nil, nil
}

// state is the solver's private shadow of the board. It never aliases
// the live-play reveal/flag fields; the input board is read-only here.
type state struct {
	b             *board.Board
	revealed      []bool
	flagged       []bool
	revealedCount int
	flaggedCount  int
}

/*
reveal opens one cell and, when it turns out to have no adjacent mines,
flood-opens the connected zero region exactly the way live play does. A
mine is never opened, even if a caller erroneously queues one; the
deduction rules cannot produce such a request, so tripping the guard
only loses a bogus reveal, never corrupts state.
*/
func (s *state) reveal(p board.Position) {
	queue := []int{s.b.Index(p)}
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		if s.revealed[i] || s.flagged[i] || s.b.Mines[i] {
			continue
		}
		s.revealed[i] = true
		s.revealedCount++
		if s.b.Counts[i] != 0 {
			continue
		}
		s.b.Neighbors(s.b.At(i), func(n board.Position) {
			j := s.b.Index(n)
			if !s.revealed[j] && !s.flagged[j] {
				queue = append(queue, j)
			}
		})
	}
}

func (s *state) flag(i int) {
	if !s.flagged[i] && !s.revealed[i] {
		s.flagged[i] = true
		s.flaggedCount++
	}
}

// constraints scans every revealed cell and collects the still-useful
// constraints. Cells with no unknown neighbours contribute nothing.
func (s *state) constraints() []constraint {
	var cs []constraint
	for i, open := range s.revealed {
		if !open {
			continue
		}
		var (
			flags    int
			unknowns []int
		)
		s.b.Neighbors(s.b.At(i), func(n board.Position) {
			j := s.b.Index(n)
			if s.flagged[j] {
				flags++
			} else if !s.revealed[j] {
				unknowns = append(unknowns, j)
			}
		})
		remaining := int(s.b.Counts[i]) - flags
		if len(unknowns) == 0 || remaining < 0 {
			continue
		}
		slices.Sort(unknowns)
		cs = append(cs, constraint{cells: unknowns, remaining: remaining})
	}
	return cs
}

/*
Solve simulates a player who opens safe at the first click and then
only ever acts on airtight deductions. Two local rules run every round:
a revealed cell whose flagged neighbours already account for its number
proves the rest of its neighbours safe, and one whose number equals
flags plus unknowns proves the rest mines. Only when both stall does the
quadratic subset rule compare overlapping constraints pairwise. The
whole procedure is deterministic: same board, same safe cell, same
result.

A board whose safe cell holds a mine is a caller error; Solve returns a
zero Result for it rather than guessing.
*/
func Solve(b *board.Board, safe board.Position) Result {
	_, res := solve(b, safe)
	return res
}

// solve exposes the final shadow state to in-package tests.
func solve(b *board.Board, safe board.Position) (*state, Result) {
	s := &state{
		b:        b,
		revealed: make([]bool, b.Size()),
		flagged:  make([]bool, b.Size()),
	}
	if !b.InBounds(safe) || b.MineAt(safe) {
		Log.Error("solver invoked with invalid safe cell",
			slog.String("safe", safe.String()))
		return s, Result{}
	}
	totalSafe := b.Size() - b.MineCount()

	s.reveal(safe)

	// A fully opened board needs no deduction rounds; stopping here
	// keeps the score equal to the count of safe cells.
	for s.revealedCount < totalSafe {
		var (
			toReveal []int
			toFlag   []int
		)
		cs := s.constraints()
		for _, c := range cs {
			if c.remaining == 0 {
				toReveal = append(toReveal, c.cells...)
			} else if c.remaining == len(c.cells) {
				toFlag = append(toFlag, c.cells...)
			}
		}

		if len(toReveal) == 0 && len(toFlag) == 0 && len(cs) >= 2 {
			for ai, a := range cs {
				for bi, bc := range cs {
					if ai == bi || len(a.cells) >= len(bc.cells) {
						continue
					}
					if !a.isSubsetOf(bc) {
						continue
					}
					safeCells, mineCells := subtract(a, bc)
					toReveal = append(toReveal, safeCells...)
					toFlag = append(toFlag, mineCells...)
				}
			}
		}

		before := s.revealedCount + s.flaggedCount
		for _, i := range toFlag {
			s.flag(i)
		}
		for _, i := range toReveal {
			if !s.flagged[i] {
				s.reveal(s.b.At(i))
			}
		}
		if s.revealedCount+s.flaggedCount == before {
			break
		}
	}

	return s, Result{
		Solved: s.revealedCount >= totalSafe,
		Score:  s.revealedCount + s.flaggedCount,
	}
}
