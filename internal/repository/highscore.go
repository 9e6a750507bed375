package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
)

type Highscore struct {
	SessionId string  `json:"session_id"`
	Username  *string `json:"username"`
	Rows      int     `json:"rows"`
	Cols      int     `json:"cols"`
	MineCount int     `json:"mine_count"`
	Playtime  float64 `json:"playtime"`
}

type HighscoreFilters struct {
	Username  *string
	Rows      *int
	Cols      *int
	MineCount *int
}

func (f HighscoreFilters) whereClause() (string, pgx.NamedArgs) {
	args := pgx.NamedArgs{}
	parts := []string{"s.won", "s.ended_at IS NOT NULL"}
	if f.Username != nil {
		args["username"] = *f.Username
		parts = append(parts, "p.username = @username")
	}
	if f.Rows != nil && f.Cols != nil && f.MineCount != nil {
		args["rows"] = *f.Rows
		args["cols"] = *f.Cols
		args["mine_count"] = *f.MineCount
		parts = append(parts,
			`s."rows" = @rows`, "s.cols = @cols", "s.mine_count = @mine_count")
	}
	return "WHERE " + strings.Join(parts, " AND "), args
}

// Highscores lists won sessions ordered by playtime, fastest first.
func (q Queries) Highscores(
	ctx context.Context, filters HighscoreFilters,
) ([]Highscore, error) {
	where, args := filters.whereClause()
	rows, _ := q.db.Query(ctx, `
		SELECT
			s.session_id::text AS session_id
			, p.username
			, s."rows"
			, s.cols
			, s.mine_count
			, extract(epoch from (s.ended_at - s.started_at)) AS playtime
		FROM game_session s
		LEFT JOIN player p USING (player_id)
		`+where+`
		ORDER BY playtime ASC
		LIMIT 100;`,
		args)
	return pgx.CollectRows(rows, pgx.RowToStructByName[Highscore])
}
