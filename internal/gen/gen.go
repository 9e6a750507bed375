package gen

import (
	"fmt"
	"math/rand/v2"

	"github.com/mkarpenko/sweeper/internal/board"
)

// InSafeZone reports whether p falls in the 3x3 block centred on the
// first-clicked cell. The zone stays mine-free across every generation
// and mutation path so the opening click always reveals a region.
func InSafeZone(p, safe board.Position) bool {
	return absDiff(p.Row, safe.Row) <= 1 && absDiff(p.Col, safe.Col) <= 1
}

/*
Random builds a fresh layout: an unbiased partial Fisher-Yates shuffle
over every cell except safe itself, with the first mineCount picks
becoming mines. Neighbours of safe may be mined here; the orchestrator
weeds those out with its zero-adjacency gate. If mineCount exceeds the
available cells the layout simply holds fewer mines.
*/
func Random(rows, cols, mineCount int, safe board.Position, rnd *rand.Rand) *board.Board {
	b := board.New(rows, cols)

	candidates := make([]int, 0, b.Size()-1)
	safeIdx := b.Index(safe)
	for i := range b.Size() {
		if i != safeIdx {
			candidates = append(candidates, i)
		}
	}

	k := len(candidates)
	for range min(mineCount, len(candidates)) {
		i := rnd.IntN(k)
		b.Mines[candidates[i]] = true
		k--
		candidates[i] = candidates[k]
	}

	b.ComputeAdjacency()
	return b
}

/*
Mutate derives a nearby layout from parent: swapCount paired swaps, each
flipping one random mine off and one random non-mine on, both outside
the safe zone and without replacement within the call. Total mine count
is preserved exactly. Returns nil when there are not enough eligible
cells on either side, in which case the caller falls back to a fresh
random layout.
*/
func Mutate(parent *board.Board, safe board.Position, swapCount int, rnd *rand.Rand) *board.Board {
	var mined, clear []int
	for i, m := range parent.Mines {
		if InSafeZone(parent.At(i), safe) {
			continue
		}
		if m {
			mined = append(mined, i)
		} else {
			clear = append(clear, i)
		}
	}
	if len(mined) < swapCount || len(clear) < swapCount {
		return nil
	}

	b := parent.Clone()
	km, kc := len(mined), len(clear)
	for range swapCount {
		i := rnd.IntN(km)
		b.Mines[mined[i]] = false
		km--
		mined[i] = mined[km]

		j := rnd.IntN(kc)
		b.Mines[clear[j]] = true
		kc--
		clear[j] = clear[kc]
	}

	b.ComputeAdjacency()
	return b
}

func validate(rows, cols, mineCount int, safe board.Position) error {
	if rows < 1 || cols < 1 {
		return fmt.Errorf("board must have at least one cell, got %dx%d", rows, cols)
	}
	if safe.Row < 0 || safe.Row >= rows || safe.Col < 0 || safe.Col >= cols {
		return fmt.Errorf("safe cell %s out of bounds for %dx%d board", safe, rows, cols)
	}
	if mineCount < 0 || mineCount >= rows*cols {
		return fmt.Errorf("mine count %d out of range for %dx%d board", mineCount, rows, cols)
	}
	return nil
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
