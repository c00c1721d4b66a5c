package store

import (
	"context"

	"tictac-rooms/internal/ids"
)

const resultsDDL = `CREATE TABLE IF NOT EXISTS game_results (
	id          TEXT PRIMARY KEY,
	room_id     TEXT NOT NULL,
	winner      TEXT NOT NULL DEFAULT '',
	player_x    TEXT NOT NULL DEFAULT '',
	player_o    TEXT NOT NULL DEFAULT '',
	board       TEXT NOT NULL,
	moves       INTEGER NOT NULL,
	started_at  TIMESTAMPTZ NOT NULL,
	ended_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS game_results_ended_at_idx ON game_results (ended_at DESC)`

func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, resultsDDL)
	return err
}

func (s *Store) RecordResult(ctx context.Context, r GameResult) (string, error) {
	if r.ID == "" {
		r.ID = ids.New()
	}
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO game_results (id, room_id, winner, player_x, player_o, board, moves, started_at, ended_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		r.ID, r.RoomID, r.Winner, r.PlayerX, r.PlayerO, r.Board, r.Moves, r.StartedAt, r.EndedAt,
	)
	return r.ID, err
}

func (s *Store) ListRecentResults(ctx context.Context, limit int) ([]GameResult, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT id, room_id, winner, player_x, player_o, board, moves, started_at, ended_at
		 FROM game_results ORDER BY ended_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []GameResult{}
	for rows.Next() {
		var r GameResult
		if err := rows.Scan(&r.ID, &r.RoomID, &r.Winner, &r.PlayerX, &r.PlayerO, &r.Board, &r.Moves, &r.StartedAt, &r.EndedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) GetResult(ctx context.Context, id string) (*GameResult, error) {
	var r GameResult
	err := s.Pool.QueryRow(ctx,
		`SELECT id, room_id, winner, player_x, player_o, board, moves, started_at, ended_at
		 FROM game_results WHERE id = $1`, id).
		Scan(&r.ID, &r.RoomID, &r.Winner, &r.PlayerX, &r.PlayerO, &r.Board, &r.Moves, &r.StartedAt, &r.EndedAt)
	if err != nil {
		if errorsIsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}
