package board

import (
	"fmt"
	"strings"
)

// Position addresses a single cell. Cells are also referred to by their
// flat index row*cols+col wherever a dense slice is more convenient.
type Position struct {
	Row, Col int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Row, p.Col)
}

/*
Board is a plain value aggregate: dimensions plus a flat mine layout and
the derived neighbour counts. Keeping it flat makes cloning a pair of
slice copies, which matters because the generator produces and discards
hundreds of candidate boards per call.

Counts is only meaningful for non-mine cells and only after
ComputeAdjacency has run against the current layout.
*/
type Board struct {
	Rows, Cols int
	Mines      []bool
	Counts     []int8
}

// New returns an empty board: no mines, all counts zero.
func New(rows, cols int) *Board {
	return &Board{
		Rows:   rows,
		Cols:   cols,
		Mines:  make([]bool, rows*cols),
		Counts: make([]int8, rows*cols),
	}
}

// Clone returns an independent copy. Boards handed to callers are
// treated as immutable; every mutation path starts from a Clone.
func (b *Board) Clone() *Board {
	c := &Board{
		Rows:   b.Rows,
		Cols:   b.Cols,
		Mines:  make([]bool, len(b.Mines)),
		Counts: make([]int8, len(b.Counts)),
	}
	copy(c.Mines, b.Mines)
	copy(c.Counts, b.Counts)
	return c
}

func (b *Board) Size() int {
	return b.Rows * b.Cols
}

func (b *Board) Index(p Position) int {
	return p.Row*b.Cols + p.Col
}

func (b *Board) At(i int) Position {
	return Position{Row: i / b.Cols, Col: i % b.Cols}
}

func (b *Board) InBounds(p Position) bool {
	return 0 <= p.Row && p.Row < b.Rows && 0 <= p.Col && p.Col < b.Cols
}

func (b *Board) MineAt(p Position) bool {
	return b.Mines[b.Index(p)]
}

// Neighbors calls fn for each of the up-to-8 in-bounds neighbours of p.
func (b *Board) Neighbors(p Position, fn func(n Position)) {
	for dr := -1; dr <= +1; dr++ {
		for dc := -1; dc <= +1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			n := Position{Row: p.Row + dr, Col: p.Col + dc}
			if b.InBounds(n) {
				fn(n)
			}
		}
	}
}

/*
ComputeAdjacency recomputes Counts for every cell from the current mine
layout. It must be called after any change to Mines and before the board
is handed to the solver.
*/
func (b *Board) ComputeAdjacency() {
	for i := range b.Counts {
		if b.Mines[i] {
			b.Counts[i] = 0
			continue
		}
		var n int8
		b.Neighbors(b.At(i), func(p Position) {
			if b.Mines[b.Index(p)] {
				n++
			}
		})
		b.Counts[i] = n
	}
}

// MineCount is a simple reduction over the layout, used for sanity
// accounting and to derive the solver's safe-cell total.
func (b *Board) MineCount() (count int) {
	for _, m := range b.Mines {
		if m {
			count++
		}
	}
	return
}

// String renders the layout for debug logs, marking mines with '*'.
func (b *Board) String() string {
	var sb strings.Builder
	for r := range b.Rows {
		for c := range b.Cols {
			i := r*b.Cols + c
			if b.Mines[i] {
				sb.WriteString("* ")
			} else if b.Counts[i] > 0 {
				fmt.Fprintf(&sb, "%d ", b.Counts[i])
			} else {
				sb.WriteString("- ")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
