package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/mkarpenko/sweeper/internal/board"
	"github.com/mkarpenko/sweeper/internal/gen"
)

// Command language shared by the websocket endpoint and the terminal
// client:
//
//	o ROW COL    open a cell
//	f ROW COL    toggle a flag
//	c ROW COL    chord an open cell
//	h            request a hint
//	x            forfeit
var commandNargs = map[string]int{
	"o": 2,
	"f": 2,
	"c": 2,
	"h": 0,
	"x": 0,
}

var ErrUnknownCommand = errors.New("unknown command")

func parsePosition(args []string) (board.Position, error) {
	row, err := strconv.Atoi(args[0])
	if err != nil {
		return board.Position{}, errors.New("first argument must be an int")
	}
	col, err := strconv.Atoi(args[1])
	if err != nil {
		return board.Position{}, errors.New("second argument must be an int")
	}
	return board.Position{Row: row, Col: col}, nil
}

// Execute runs one command against the state. The returned reply is
// empty except for hints, which answer with the suggested move.
func (s *State) Execute(cmd string, rnd *rand.Rand, opts gen.Options) (string, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return "", ErrUnknownCommand
	}
	nargs, ok := commandNargs[parts[0]]
	if !ok {
		return "", ErrUnknownCommand
	}
	if nargs != len(parts)-1 {
		return "", errors.New("invalid number of arguments")
	}

	var pos board.Position
	if nargs == 2 {
		var err error
		if pos, err = parsePosition(parts[1:]); err != nil {
			return "", err
		}
		if !s.ValidatePosition(pos) {
			return "", errors.New("invalid cell position")
		}
	}

	switch parts[0] {
	case "o":
		return "", s.Open(pos, rnd, opts)
	case "f":
		s.Flag(pos)
	case "c":
		s.Chord(pos, rnd, opts)
	case "h":
		p, shouldFlag, ok := s.Hint(rnd)
		if !ok {
			return "no hint available", nil
		}
		action := "open"
		if shouldFlag {
			action = "flag"
		}
		return fmt.Sprintf("hint: %s %s", action, p), nil
	case "x":
		s.Forfeit()
	}
	return "", nil
}
