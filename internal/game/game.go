package game

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/mkarpenko/sweeper/internal/board"
	"github.com/mkarpenko/sweeper/internal/gen"
	"github.com/mkarpenko/sweeper/internal/hint"
)

// CellState is one cell of the player's knowledge grid.
//
//   - 0 to 8: open cell with its neighbouring mine count
//   - -1: flagged
//   - -2: covered and unknown
//   - 64 and up: post-game-over markers
type CellState int8

const (
	Unknown       CellState = -2
	Flagged       CellState = -1
	CorrectFlag   CellState = 64
	ExplodedMine  CellState = 65
	WrongFlag     CellState = 66
	UnflaggedMine CellState = 67
)

func (s CellState) String() string {
	switch {
	case s == Unknown:
		return " "
	case s == Flagged, s == CorrectFlag:
		return "*"
	case s == ExplodedMine:
		return "X"
	case s == WrongFlag:
		return "x"
	case s == UnflaggedMine:
		return "o"
	case 0 <= s && s <= 8:
		return strconv.Itoa(int(s))
	default:
		return "!"
	}
}

type Params struct {
	Rows, Cols, MineCount int
}

func (p Params) Valid() bool {
	return p.Rows > 0 && p.Cols > 0 &&
		p.MineCount >= 0 && p.MineCount < p.Rows*p.Cols
}

func (p Params) ValidatePosition(pos board.Position) bool {
	return 0 <= pos.Row && pos.Row < p.Rows && 0 <= pos.Col && pos.Col < p.Cols
}

/*
State is one game in progress. Mine placement is deferred: the board
stays nil until the first open, which runs the solvability search with
the clicked cell as the safe anchor. From then on the player grid
evolves under ordinary reveal/flag/chord rules while the hint index is
kept in step with every path that changes reveal or flag state.
*/
type State struct {
	Params
	Dead, Won bool
	Board     *board.Board
	Player    []CellState

	// Session counters, persisted alongside the board.
	FlagsPlaced int
	Mistakes    int
	HintsUsed   int
	Elapsed     time.Duration

	revealedCount int
	hints         *hint.Index
}

func New(params Params) (*State, error) {
	if !params.Valid() {
		return nil, fmt.Errorf("invalid game params %+v", params)
	}
	player := make([]CellState, params.Rows*params.Cols)
	for i := range player {
		player[i] = Unknown
	}
	return &State{Params: params, Player: player}, nil
}

// Revealed and Flagged implement hint.BoardView over the player grid.

func (s *State) Revealed(i int) bool {
	return 0 <= s.Player[i] && s.Player[i] <= 8
}

func (s *State) Flagged(i int) bool {
	return s.Player[i] == Flagged
}

func (s *State) Started() bool {
	return s.Board != nil
}

func (s *State) Over() bool {
	return s.Dead || s.Won
}

func (s *State) index(p board.Position) int {
	return p.Row*s.Cols + p.Col
}

func (s *State) ensureHints() *hint.Index {
	if s.hints == nil {
		s.hints = hint.New(s.Board, s)
		s.hints.Rebuild()
	}
	return s.hints
}

/*
Open reveals a cell. On the very first open it generates the board
first, so the clicked cell is guaranteed to start a zero region except
when even the budgeted search could not arrange one. Opening a mine
ends the game and counts a mistake.
*/
func (s *State) Open(p board.Position, rnd *rand.Rand, opts gen.Options) error {
	if s.Over() || !s.ValidatePosition(p) {
		return nil
	}

	if s.Board == nil {
		b, _, err := gen.Generate(s.Rows, s.Cols, s.MineCount, p, rnd, opts)
		if err != nil {
			return fmt.Errorf("unable to generate board: %w", err)
		}
		s.Board = b
		s.ensureHints()
	}

	i := s.index(p)
	if s.Revealed(i) || s.Flagged(i) {
		return nil
	}

	if s.Board.Mines[i] {
		s.Dead = true
		s.Mistakes++
		s.Player[i] = ExplodedMine
		return nil
	}

	batch := s.floodReveal(p)
	s.ensureHints().Revealed(batch)
	s.checkWin()
	return nil
}

// floodReveal opens p and, through any zero-count cells, its connected
// region, returning every cell that changed state.
func (s *State) floodReveal(p board.Position) []board.Position {
	var opened []board.Position
	queue := []int{s.index(p)}
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		if s.Player[i] != Unknown || s.Board.Mines[i] {
			continue
		}
		s.Player[i] = CellState(s.Board.Counts[i])
		s.revealedCount++
		opened = append(opened, s.Board.At(i))
		if s.Board.Counts[i] != 0 {
			continue
		}
		s.Board.Neighbors(s.Board.At(i), func(n board.Position) {
			if j := s.index(n); s.Player[j] == Unknown {
				queue = append(queue, j)
			}
		})
	}
	return opened
}

// Flag toggles the flag on a covered cell.
func (s *State) Flag(p board.Position) {
	if s.Over() || !s.ValidatePosition(p) || !s.Started() {
		return
	}
	i := s.index(p)
	switch s.Player[i] {
	case Unknown:
		s.Player[i] = Flagged
		s.FlagsPlaced++
	case Flagged:
		s.Player[i] = Unknown
		s.FlagsPlaced--
	default:
		return
	}
	s.ensureHints().Flagged(p)
}

// Chord opens every covered, unflagged neighbour of an open cell whose
// flagged neighbours already account for its number.
func (s *State) Chord(p board.Position, rnd *rand.Rand, opts gen.Options) {
	if s.Over() || !s.ValidatePosition(p) || !s.Started() {
		return
	}
	i := s.index(p)
	if !s.Revealed(i) {
		return
	}
	var (
		flags   int
		covered []board.Position
	)
	s.Board.Neighbors(p, func(n board.Position) {
		j := s.index(n)
		if s.Flagged(j) {
			flags++
		} else if s.Player[j] == Unknown {
			covered = append(covered, n)
		}
	})
	if flags != int(s.Player[i]) {
		return
	}
	for _, n := range covered {
		s.Open(n, rnd, opts)
		if s.Over() {
			return
		}
	}
}

// Hint picks one candidate cell off the edge index. ShouldFlag reports
// whether the correct action there is a flag rather than an open.
func (s *State) Hint(rnd *rand.Rand) (p board.Position, shouldFlag, ok bool) {
	if s.Over() || !s.Started() {
		return board.Position{}, false, false
	}
	p, ok = s.ensureHints().Pick(rnd)
	if !ok {
		return board.Position{}, false, false
	}
	s.HintsUsed++
	return p, s.Board.MineAt(p), true
}

func (s *State) checkWin() {
	if s.Dead || s.Board == nil {
		return
	}
	if s.revealedCount >= s.Board.Size()-s.Board.MineCount() {
		s.Won = true
		for i, st := range s.Player {
			if st == Unknown && s.Board.Mines[i] {
				s.Player[i] = UnflaggedMine
			}
		}
	}
}

// Forfeit ends the game as lost and uncovers the full layout.
func (s *State) Forfeit() {
	if !s.Over() {
		s.Dead = true
	}
	s.RevealMines()
}

// RevealMines rewrites the player grid with post-game-over markers.
// Only meaningful once the game is over.
func (s *State) RevealMines() {
	if s.Board == nil {
		return
	}
	for i, st := range s.Player {
		switch {
		case st == Flagged && s.Board.Mines[i]:
			s.Player[i] = CorrectFlag
		case st == Flagged:
			s.Player[i] = WrongFlag
		case st == Unknown && s.Board.Mines[i]:
			s.Player[i] = UnflaggedMine
		case st == Unknown:
			s.Player[i] = CellState(s.Board.Counts[i])
		}
	}
}

func (s *State) String() string {
	var b strings.Builder
	for r := range s.Rows {
		for c := range s.Cols {
			b.WriteString(s.Player[r*s.Cols+c].String() + " ")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Bytes gob-encodes the state for persistence.
func (s *State) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode restores a persisted state and rebuilds the derived
// bookkeeping (revealed count, hint index) that gob does not carry.
func Decode(data []byte) (*State, error) {
	var s State
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return nil, err
	}
	for i := range s.Player {
		if s.Revealed(i) {
			s.revealedCount++
		}
	}
	if s.Board != nil {
		s.ensureHints()
	}
	return &s, nil
}
