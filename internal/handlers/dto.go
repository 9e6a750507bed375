package handlers

import (
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/schema"

	"github.com/mkarpenko/sweeper/internal/board"
	"github.com/mkarpenko/sweeper/internal/game"
	"github.com/mkarpenko/sweeper/internal/repository"
)

var dec = schema.NewDecoder()

func init() {
	dec.IgnoreUnknownKeys(true)
}

type NewGameParams struct {
	Rows      int `schema:"rows,required"`
	Cols      int `schema:"cols,required"`
	MineCount int `schema:"mine_count,required"`
}

type PosParams struct {
	Row int `schema:"row,required"`
	Col int `schema:"col,required"`
}

func (p PosParams) Position() board.Position {
	return board.Position{Row: p.Row, Col: p.Col}
}

type MoveParams struct {
	Move string `schema:"move,required"`
	Row  int    `schema:"row"`
	Col  int    `schema:"col"`
}

func parseQuery[T any](query url.Values) (T, error) {
	var params T
	if err := dec.Decode(&params, query); err != nil {
		return params, fmt.Errorf("invalid query parameters: %w", err)
	}
	return params, nil
}

// SessionDTO is the wire shape of one game session. The player grid
// uses the game.CellState encoding; mine positions never leave the
// server before the game is over.
type SessionDTO struct {
	SessionId   string           `json:"session_id"`
	Rows        int              `json:"rows"`
	Cols        int              `json:"cols"`
	MineCount   int              `json:"mine_count"`
	Started     bool             `json:"started"`
	Dead        bool             `json:"dead"`
	Won         bool             `json:"won"`
	Grid        []game.CellState `json:"grid"`
	FlagsPlaced int              `json:"flags_placed"`
	Mistakes    int              `json:"mistakes"`
	HintsUsed   int              `json:"hints_used"`
	StartedAt   time.Time        `json:"started_at"`
	EndedAt     *time.Time       `json:"ended_at,omitempty"`
}

func newSessionDTO(
	id uuid.UUID, s *game.State, startedAt time.Time, endedAt *time.Time,
) SessionDTO {
	return SessionDTO{
		SessionId:   id.String(),
		Rows:        s.Rows,
		Cols:        s.Cols,
		MineCount:   s.MineCount,
		Started:     s.Started(),
		Dead:        s.Dead,
		Won:         s.Won,
		Grid:        s.Player,
		FlagsPlaced: s.FlagsPlaced,
		Mistakes:    s.Mistakes,
		HintsUsed:   s.HintsUsed,
		StartedAt:   startedAt,
		EndedAt:     endedAt,
	}
}

func sessionDTO(session *repository.GameSession, s *game.State) SessionDTO {
	return newSessionDTO(session.SessionId, s, session.StartedAt, session.EndedAt)
}
