package game

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/mkarpenko/sweeper/internal/board"
	"github.com/mkarpenko/sweeper/internal/gen"
)

var testOpts = gen.Options{Budget: 50 * time.Millisecond}

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

// fixedState builds a game over a hand-placed layout, bypassing the
// generator so tests are fully deterministic.
func fixedState(t *testing.T, rows, cols int, mines ...board.Position) *State {
	t.Helper()
	b := board.New(rows, cols)
	for _, p := range mines {
		b.Mines[b.Index(p)] = true
	}
	b.ComputeAdjacency()

	s, err := New(Params{Rows: rows, Cols: cols, MineCount: len(mines)})
	if err != nil {
		t.Fatal(err)
	}
	s.Board = b
	return s
}

// pocketState is a 5x5 with three mines walling off the bottom-right
// corner. Opening 0:0 floods 21 cells and leaves the corner covered,
// so the game stays in progress with exactly one safe cell to go.
func pocketState(t *testing.T) *State {
	t.Helper()
	return fixedState(t, 5, 5,
		board.Position{Row: 3, Col: 3},
		board.Position{Row: 3, Col: 4},
		board.Position{Row: 4, Col: 3},
	)
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params Params
		ok     bool
	}{
		{"beginner", Params{9, 9, 10}, true},
		{"mine free", Params{4, 4, 0}, true},
		{"zero rows", Params{0, 9, 10}, false},
		{"mines fill board", Params{3, 3, 9}, false},
		{"negative mines", Params{9, 9, -1}, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := New(test.params)
			if test.ok && err != nil {
				t.Errorf("unexpected error: %s", err)
			}
			if !test.ok && err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestFirstOpenPlacesBoard(t *testing.T) {
	t.Parallel()

	s, err := New(Params{9, 9, 10})
	if err != nil {
		t.Fatal(err)
	}
	if s.Started() {
		t.Fatal("board placed before the first open")
	}

	click := board.Position{Row: 4, Col: 4}
	if err := s.Open(click, testRand(), testOpts); err != nil {
		t.Fatal(err)
	}

	if !s.Started() {
		t.Fatal("no board after the first open")
	}
	if s.Board.MineAt(click) {
		t.Error("first click landed on a mine")
	}
	if s.Dead {
		t.Error("first click lost the game")
	}
	if got := s.Player[s.index(click)]; got < 0 || got > 8 {
		t.Errorf("clicked cell state = %d, want an open count", got)
	}
	if got := s.Board.MineCount(); got != 10 {
		t.Errorf("mine count = %d, want 10", got)
	}
}

func TestOpenFloodsZeroRegion(t *testing.T) {
	t.Parallel()

	s := pocketState(t)
	if err := s.Open(board.Position{Row: 0, Col: 0}, testRand(), testOpts); err != nil {
		t.Fatal(err)
	}

	if s.revealedCount != 21 {
		t.Fatalf("revealed %d cells, want 21:\n%s", s.revealedCount, s)
	}
	if s.Over() {
		t.Fatal("game ended prematurely")
	}
	// The walled-off corner must stay covered.
	if got := s.Player[s.index(board.Position{Row: 4, Col: 4})]; got != Unknown {
		t.Errorf("corner cell state = %d, want covered", got)
	}
}

func TestWin(t *testing.T) {
	t.Parallel()

	s := pocketState(t)
	rnd := testRand()
	if err := s.Open(board.Position{Row: 0, Col: 0}, rnd, testOpts); err != nil {
		t.Fatal(err)
	}
	if err := s.Open(board.Position{Row: 4, Col: 4}, rnd, testOpts); err != nil {
		t.Fatal(err)
	}

	if !s.Won || s.Dead {
		t.Fatalf("Won = %v, Dead = %v", s.Won, s.Dead)
	}
	for _, p := range []board.Position{{Row: 3, Col: 3}, {Row: 3, Col: 4}, {Row: 4, Col: 3}} {
		if got := s.Player[s.index(p)]; got != UnflaggedMine {
			t.Errorf("mine %s state = %d, want unflagged-mine marker", p, got)
		}
	}
}

func TestFlagToggle(t *testing.T) {
	t.Parallel()

	s := pocketState(t)
	if err := s.Open(board.Position{Row: 0, Col: 0}, testRand(), testOpts); err != nil {
		t.Fatal(err)
	}

	target := board.Position{Row: 3, Col: 3}
	s.Flag(target)
	if !s.Flagged(s.index(target)) || s.FlagsPlaced != 1 {
		t.Fatalf("flag not placed, FlagsPlaced = %d", s.FlagsPlaced)
	}

	// A flagged cell cannot be opened.
	if err := s.Open(target, testRand(), testOpts); err != nil {
		t.Fatal(err)
	}
	if !s.Flagged(s.index(target)) || s.Dead {
		t.Error("open disturbed a flagged cell")
	}

	s.Flag(target)
	if s.Flagged(s.index(target)) || s.FlagsPlaced != 0 {
		t.Fatalf("flag not removed, FlagsPlaced = %d", s.FlagsPlaced)
	}

	// Flagging an open cell is a no-op.
	s.Flag(board.Position{Row: 0, Col: 0})
	if s.FlagsPlaced != 0 {
		t.Error("flag accepted on an open cell")
	}
}

func TestOpenMineEndsGame(t *testing.T) {
	t.Parallel()

	s := pocketState(t)
	rnd := testRand()
	if err := s.Open(board.Position{Row: 0, Col: 0}, rnd, testOpts); err != nil {
		t.Fatal(err)
	}

	mine := board.Position{Row: 3, Col: 3}
	if err := s.Open(mine, rnd, testOpts); err != nil {
		t.Fatal(err)
	}
	if !s.Dead || s.Mistakes != 1 {
		t.Fatalf("Dead = %v, Mistakes = %d", s.Dead, s.Mistakes)
	}
	if s.Player[s.index(mine)] != ExplodedMine {
		t.Error("exploded mine not marked")
	}

	// The game is over; further moves are ignored.
	s.Flag(board.Position{Row: 4, Col: 4})
	if s.FlagsPlaced != 0 {
		t.Error("flag accepted after game over")
	}
}

func TestHint(t *testing.T) {
	t.Parallel()

	s := pocketState(t)
	rnd := testRand()

	if _, _, ok := s.Hint(rnd); ok {
		t.Fatal("hint available before any cell is open")
	}

	if err := s.Open(board.Position{Row: 0, Col: 0}, rnd, testOpts); err != nil {
		t.Fatal(err)
	}

	// Every edge candidate on this layout is a mine, so the hint must
	// always suggest a flag.
	p, shouldFlag, ok := s.Hint(rnd)
	if !ok {
		t.Fatal("no hint on a board in progress")
	}
	if !shouldFlag {
		t.Errorf("hint for %s suggested an open on a mine layout edge", p)
	}
	if !s.Board.MineAt(p) {
		t.Errorf("hint pointed at non-mine %s", p)
	}
	if s.HintsUsed != 1 {
		t.Errorf("HintsUsed = %d, want 1", s.HintsUsed)
	}
}

func TestChord(t *testing.T) {
	t.Parallel()

	mine := board.Position{Row: 0, Col: 0}
	anchor := board.Position{Row: 1, Col: 1}

	t.Run("correct flag", func(t *testing.T) {
		s := fixedState(t, 3, 3, mine)
		rnd := testRand()
		if err := s.Open(anchor, rnd, testOpts); err != nil {
			t.Fatal(err)
		}
		s.Flag(mine)

		s.Chord(anchor, rnd, testOpts)
		if s.Dead {
			t.Fatal("chord with a correct flag opened the mine")
		}
		if !s.Won {
			t.Fatalf("chord left safe cells covered:\n%s", s)
		}
	})

	t.Run("wrong flag", func(t *testing.T) {
		s := fixedState(t, 3, 3, mine)
		rnd := testRand()
		if err := s.Open(anchor, rnd, testOpts); err != nil {
			t.Fatal(err)
		}
		s.Flag(board.Position{Row: 0, Col: 1})

		s.Chord(anchor, rnd, testOpts)
		if !s.Dead || s.Mistakes != 1 {
			t.Fatalf("Dead = %v, Mistakes = %d", s.Dead, s.Mistakes)
		}
	})

	t.Run("unsatisfied count", func(t *testing.T) {
		s := fixedState(t, 3, 3, mine)
		rnd := testRand()
		if err := s.Open(anchor, rnd, testOpts); err != nil {
			t.Fatal(err)
		}

		// No flags yet: the chord must refuse to act.
		before := s.revealedCount
		s.Chord(anchor, rnd, testOpts)
		if s.revealedCount != before || s.Dead {
			t.Error("chord acted without matching flags")
		}
	})
}

func TestForfeit(t *testing.T) {
	t.Parallel()

	s := pocketState(t)
	if err := s.Open(board.Position{Row: 0, Col: 0}, testRand(), testOpts); err != nil {
		t.Fatal(err)
	}
	s.Flag(board.Position{Row: 3, Col: 3}) // correct
	s.Flag(board.Position{Row: 4, Col: 4}) // wrong

	s.Forfeit()
	if !s.Dead {
		t.Fatal("forfeit did not end the game")
	}

	tests := []struct {
		name string
		pos  board.Position
		want CellState
	}{
		{"correct flag", board.Position{Row: 3, Col: 3}, CorrectFlag},
		{"wrong flag", board.Position{Row: 4, Col: 4}, WrongFlag},
		{"unflagged mine", board.Position{Row: 3, Col: 4}, UnflaggedMine},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := s.Player[s.index(test.pos)]; got != test.want {
				t.Errorf("cell %s state = %d, want %d", test.pos, got, test.want)
			}
		})
	}
}

func TestEncodeDecodeRoundtrip(t *testing.T) {
	t.Parallel()

	s := pocketState(t)
	rnd := testRand()
	if err := s.Open(board.Position{Row: 0, Col: 0}, rnd, testOpts); err != nil {
		t.Fatal(err)
	}
	s.Flag(board.Position{Row: 3, Col: 3})
	s.Elapsed = 3 * time.Second

	data, err := s.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}

	if got.Params != s.Params {
		t.Errorf("params = %+v, want %+v", got.Params, s.Params)
	}
	if got.revealedCount != s.revealedCount {
		t.Errorf("revealedCount = %d, want %d", got.revealedCount, s.revealedCount)
	}
	if got.FlagsPlaced != s.FlagsPlaced || got.Elapsed != s.Elapsed {
		t.Errorf("counters differ: %+v", got)
	}
	for i := range s.Player {
		if got.Player[i] != s.Player[i] {
			t.Fatalf("player grid differs at %d", i)
		}
	}

	// The restored state must keep playing: the rebuilt hint index
	// serves hints again.
	if _, _, ok := got.Hint(rnd); !ok {
		t.Error("restored state cannot produce a hint")
	}
}

func TestExecute(t *testing.T) {
	t.Parallel()

	s := pocketState(t)
	rnd := testRand()

	tests := []struct {
		name    string
		cmd     string
		wantErr bool
	}{
		{"open", "o 0 0", false},
		{"flag", "f 3 3", false},
		{"chord", "c 2 2", false},
		{"hint", "h", false},
		{"unknown command", "z 1 1", true},
		{"wrong arg count", "o 4", true},
		{"non-numeric args", "o a b", true},
		{"out of bounds", "o 40 40", true},
		{"empty", "", true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := s.Execute(test.cmd, rnd, testOpts)
			if test.wantErr && err == nil {
				t.Error("expected an error")
			}
			if !test.wantErr && err != nil {
				t.Errorf("unexpected error: %s", err)
			}
		})
	}

	reply, err := s.Execute("h", rnd, testOpts)
	if err != nil {
		t.Fatal(err)
	}
	if reply == "" {
		t.Error("hint command returned no reply")
	}
}
