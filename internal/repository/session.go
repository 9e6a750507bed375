package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mkarpenko/sweeper/internal/game"
)

type GameSession struct {
	SessionId   uuid.UUID
	PlayerId    *int64
	Rows        int
	Cols        int
	MineCount   int
	Dead        bool
	Won         bool
	FlagsPlaced int
	Mistakes    int
	HintsUsed   int
	State       []byte
	StartedAt   time.Time
	EndedAt     *time.Time
}

// CreateSession stores a fresh game under a new public uuid. playerId
// is nil for anonymous sessions.
func (q Queries) CreateSession(
	ctx context.Context, playerId *int64, state *game.State,
) (*GameSession, error) {
	b, err := state.Bytes()
	if err != nil {
		return nil, err
	}
	rows, _ := q.db.Query(ctx, `
		INSERT INTO game_session (
			session_id, player_id, "rows", cols, mine_count,
			dead, won, flags_placed, mistakes, hints_used, state
		)
		VALUES (
			@session_id, @player_id, @rows, @cols, @mine_count,
			@dead, @won, @flags_placed, @mistakes, @hints_used, @state
		)
		RETURNING *;`,
		pgx.NamedArgs{
			"session_id":   uuid.New(),
			"player_id":    playerId,
			"rows":         state.Rows,
			"cols":         state.Cols,
			"mine_count":   state.MineCount,
			"dead":         state.Dead,
			"won":          state.Won,
			"flags_placed": state.FlagsPlaced,
			"mistakes":     state.Mistakes,
			"hints_used":   state.HintsUsed,
			"state":        b,
		})
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
}

func (q Queries) GetSession(
	ctx context.Context, sessionId uuid.UUID,
) (*GameSession, error) {
	rows, _ := q.db.Query(ctx,
		`SELECT * FROM game_session WHERE session_id = $1;`,
		sessionId)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
}

// UpdateSession writes back the evolving state blob and the columns
// mirrored out of it for querying.
func (q Queries) UpdateSession(
	ctx context.Context, sessionId uuid.UUID, state *game.State, endedAt *time.Time,
) error {
	b, err := state.Bytes()
	if err != nil {
		return err
	}
	_, err = q.db.Exec(ctx, `
		UPDATE game_session
		SET dead = @dead
			, won = @won
			, flags_placed = @flags_placed
			, mistakes = @mistakes
			, hints_used = @hints_used
			, state = @state
			, ended_at = @ended_at
		WHERE session_id = @session_id;`,
		pgx.NamedArgs{
			"session_id":   sessionId,
			"dead":         state.Dead,
			"won":          state.Won,
			"flags_placed": state.FlagsPlaced,
			"mistakes":     state.Mistakes,
			"hints_used":   state.HintsUsed,
			"state":        b,
			"ended_at":     endedAt,
		})
	return err
}
