package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type Player struct {
	PlayerId     int64
	Username     string
	PasswordHash []byte
}

func (q Queries) CreatePlayer(
	ctx context.Context, username string, passwordHash []byte,
) (*Player, error) {
	rows, _ := q.db.Query(ctx, `
		INSERT INTO player (username, password_hash)
		VALUES (@username, @password_hash)
		RETURNING player_id, username, password_hash;`,
		pgx.NamedArgs{
			"username":      username,
			"password_hash": passwordHash,
		})
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[Player])
}

func (q Queries) GetPlayer(
	ctx context.Context, username string,
) (*Player, error) {
	rows, _ := q.db.Query(ctx, `
		SELECT player_id, username, password_hash
		FROM player
		WHERE username = $1;`,
		username)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[Player])
}
