// Package hint keeps an incremental index of "edge" cells: covered,
// unflagged cells that carry information (a mine or a nonzero count)
// and border at least one revealed cell. The game state updates the
// index on every reveal and flag path so hints come from cheap set
// lookups rather than board scans; no deduction happens here.
package hint

import (
	"math/rand/v2"

	"github.com/mkarpenko/sweeper/internal/board"
)

// BoardView is the slice of live-play state the index needs. The game
// state owns reveal/flag bookkeeping; the index only asks questions.
type BoardView interface {
	Revealed(i int) bool
	Flagged(i int) bool
}

type Index struct {
	b    *board.Board
	view BoardView
	keys map[int]struct{}
}

func New(b *board.Board, view BoardView) *Index {
	return &Index{
		b:    b,
		view: view,
		keys: make(map[int]struct{}),
	}
}

func (x *Index) Len() int {
	return len(x.keys)
}

func (x *Index) interesting(i int) bool {
	return x.b.Mines[i] || x.b.Counts[i] > 0
}

func (x *Index) qualifies(i int) bool {
	if x.view.Revealed(i) || x.view.Flagged(i) || !x.interesting(i) {
		return false
	}
	edge := false
	x.b.Neighbors(x.b.At(i), func(n board.Position) {
		if x.view.Revealed(x.b.Index(n)) {
			edge = true
		}
	})
	return edge
}

// Rebuild rescans the whole board, used after loading persisted state.
func (x *Index) Rebuild() {
	clear(x.keys)
	for i := range x.b.Size() {
		if x.qualifies(i) {
			x.keys[i] = struct{}{}
		}
	}
}

// Revealed folds a batch of freshly revealed cells into the index: the
// cells themselves stop being candidates and their covered neighbours
// may start being ones.
func (x *Index) Revealed(batch []board.Position) {
	for _, p := range batch {
		delete(x.keys, x.b.Index(p))
	}
	for _, p := range batch {
		x.b.Neighbors(p, func(n board.Position) {
			j := x.b.Index(n)
			if x.qualifies(j) {
				x.keys[j] = struct{}{}
			}
		})
	}
}

// Flagged refreshes a single cell after its flag state changed either
// way. A flagged cell never serves as a hint.
func (x *Index) Flagged(p board.Position) {
	i := x.b.Index(p)
	if x.qualifies(i) {
		x.keys[i] = struct{}{}
	} else {
		delete(x.keys, i)
	}
}

// Pick returns one random eligible candidate. Entries that became
// revealed or flagged since insertion are dropped on the way through,
// so a stale key can never surface as a ghost suggestion.
func (x *Index) Pick(rnd *rand.Rand) (board.Position, bool) {
	eligible := make([]int, 0, len(x.keys))
	for i := range x.keys {
		if !x.qualifies(i) {
			delete(x.keys, i)
			continue
		}
		eligible = append(eligible, i)
	}
	if len(eligible) == 0 {
		return board.Position{}, false
	}
	return x.b.At(eligible[rnd.IntN(len(eligible))]), true
}
