package board

import (
	"math/rand/v2"
	"testing"
)

func TestIndexRoundtrip(t *testing.T) {
	t.Parallel()

	b := New(7, 5)
	for i := range b.Size() {
		if got := b.Index(b.At(i)); got != i {
			t.Errorf("Index(At(%d)) = %d", i, got)
		}
	}
}

func TestNeighborsAtCorners(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		pos  Position
		want int
	}{
		{"corner", Position{0, 0}, 3},
		{"edge", Position{0, 2}, 5},
		{"center", Position{2, 2}, 8},
		{"bottom right", Position{4, 4}, 3},
	}

	b := New(5, 5)
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			count := 0
			b.Neighbors(test.pos, func(Position) { count++ })
			if count != test.want {
				t.Errorf("got %d neighbors, want %d", count, test.want)
			}
		})
	}
}

func TestComputeAdjacency(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(1, 2))
	b := New(9, 9)
	for range 10 {
		b.Mines[r.IntN(b.Size())] = true
	}
	b.ComputeAdjacency()

	for i := range b.Size() {
		if b.Mines[i] {
			continue
		}
		var want int8
		b.Neighbors(b.At(i), func(p Position) {
			if b.MineAt(p) {
				want++
			}
		})
		if b.Counts[i] != want {
			t.Errorf("cell %s: count %d, want %d", b.At(i), b.Counts[i], want)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()

	b := New(4, 4)
	b.Mines[5] = true
	b.ComputeAdjacency()

	c := b.Clone()
	c.Mines[5] = false
	c.Mines[10] = true
	c.ComputeAdjacency()

	if !b.Mines[5] || b.Mines[10] {
		t.Error("mutating a clone changed the original layout")
	}
	if b.MineCount() != 1 || c.MineCount() != 1 {
		t.Errorf("mine counts diverged: %d, %d", b.MineCount(), c.MineCount())
	}
}
