package db

import (
	"context"
	"fmt"

	"savethebirds/internal/leaderboard"
)

func (d *DB) LoadLeaderboard(ctx context.Context, key string) ([]leaderboard.Entry, error) {
	rows, err := d.conn.QueryContext(ctx, d.rebind(`
		SELECT name, score, level FROM leaderboard_entries
		WHERE board_key = $1
		ORDER BY rank
	`), key)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []leaderboard.Entry
	for rows.Next() {
		var e leaderboard.Entry
		if err := rows.Scan(&e.Name, &e.Score, &e.Level); err != nil {
			return nil, fmt.Errorf("scanning leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading leaderboard: %w", err)
	}
	return entries, nil
}

// SaveLeaderboard replaces every row stored under key.
func (d *DB) SaveLeaderboard(ctx context.Context, key string, entries []leaderboard.Entry) error {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := d.exec(ctx, tx, `DELETE FROM leaderboard_entries WHERE board_key = $1`, key); err != nil {
		return fmt.Errorf("clearing leaderboard: %w", err)
	}
	for i, e := range entries {
		_, err := d.exec(ctx, tx, `
			INSERT INTO leaderboard_entries (board_key, rank, name, score, level)
			VALUES ($1, $2, $3, $4, $5)
		`, key, i+1, e.Name, e.Score, e.Level)
		if err != nil {
			return fmt.Errorf("inserting leaderboard rank %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing leaderboard: %w", err)
	}
	return nil
}

// LeaderboardStore adapts a DB to leaderboard.Store for one key.
type LeaderboardStore struct {
	DB  *DB
	Key string
}

func (s *LeaderboardStore) Load(ctx context.Context) ([]leaderboard.Entry, error) {
	return s.DB.LoadLeaderboard(ctx, s.Key)
}

func (s *LeaderboardStore) Save(ctx context.Context, entries []leaderboard.Entry) error {
	return s.DB.SaveLeaderboard(ctx, s.Key, entries)
}
