package data

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rsdeals/discord-bridge/internal/biz/repo"

	_ "modernc.org/sqlite"
)

// directoryRepo persists the channel directory so destination names
// survive restarts and resolve without an API round trip.
type directoryRepo struct {
	db *sql.DB
}

// NewDirectoryRepo opens (or creates) the channel directory database.
func NewDirectoryRepo(dbPath string) (repo.DirectoryRepo, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS channels (
			channel_id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			guild_id TEXT NOT NULL DEFAULT '',
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &directoryRepo{db: db}, nil
}

// Name returns the cached display name for a channel.
func (r *directoryRepo) Name(ctx context.Context, channelID int64) (string, bool, error) {
	row := r.db.QueryRowContext(ctx, `SELECT name FROM channels WHERE channel_id = ?`, channelID)

	var name string
	err := row.Scan(&name)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query channel: %w", err)
	}
	return name, true, nil
}

// Record stores or refreshes a channel's display name.
func (r *directoryRepo) Record(ctx context.Context, channelID int64, name, guildID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO channels (channel_id, name, guild_id, updated_at)
		VALUES (?, ?, ?, ?)
	`, channelID, name, guildID, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to record channel: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (r *directoryRepo) Close() error {
	return r.db.Close()
}
