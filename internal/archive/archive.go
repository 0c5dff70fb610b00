// Package archive keeps a SQLite record of completed downloads so the
// skip-downloaded setting survives file moves and renames.
package archive

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// TrackRecord is one completed download.
type TrackRecord struct {
	ID            int64
	VideoID       string
	Title         string
	Uploader      string
	FilePath      string
	SourceURL     string
	Quality       string
	FileSize      int64
	PlaylistID    string
	PlaylistTitle string
	PlaylistIndex int
	CreatedAt     time.Time
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS tracks (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    video_id        TEXT NOT NULL UNIQUE,
    title           TEXT NOT NULL DEFAULT '',
    uploader        TEXT NOT NULL DEFAULT '',
    file_path       TEXT NOT NULL DEFAULT '',
    source_url      TEXT NOT NULL DEFAULT '',
    quality         TEXT NOT NULL DEFAULT '',
    file_size       INTEGER NOT NULL DEFAULT 0,
    playlist_id     TEXT NOT NULL DEFAULT '',
    playlist_title  TEXT NOT NULL DEFAULT '',
    playlist_index  INTEGER NOT NULL DEFAULT 0,
    created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_tracks_created_at ON tracks(created_at);
`

// Archive wraps an SQLite connection for the download history.
type Archive struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens or creates the SQLite database at the given path.
func Open(path string) (*Archive, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening archive at %s: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", pragma, err)
		}
	}

	if _, err := sqlDB.Exec(createTableSQL); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Archive{db: sqlDB}, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Record upserts a completed download keyed by video ID.
func (a *Archive) Record(record TrackRecord) error {
	if a == nil || a.db == nil {
		return fmt.Errorf("archive not initialized")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	_, err := a.db.Exec(`
		INSERT INTO tracks (
			video_id, title, uploader, file_path, source_url,
			quality, file_size, playlist_id, playlist_title, playlist_index
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(video_id) DO UPDATE SET
			title=excluded.title, uploader=excluded.uploader,
			file_path=excluded.file_path, source_url=excluded.source_url,
			quality=excluded.quality, file_size=excluded.file_size,
			playlist_id=excluded.playlist_id, playlist_title=excluded.playlist_title,
			playlist_index=excluded.playlist_index
	`,
		record.VideoID, record.Title, record.Uploader, record.FilePath, record.SourceURL,
		record.Quality, record.FileSize, record.PlaylistID, record.PlaylistTitle, record.PlaylistIndex,
	)
	if err != nil {
		return fmt.Errorf("recording track: %w", err)
	}
	return nil
}

// Has reports whether a video ID was downloaded before.
func (a *Archive) Has(videoID string) (bool, error) {
	if a == nil || a.db == nil {
		return false, fmt.Errorf("archive not initialized")
	}

	var count int
	if err := a.db.QueryRow("SELECT COUNT(*) FROM tracks WHERE video_id = ?", videoID).Scan(&count); err != nil {
		return false, fmt.Errorf("querying archive: %w", err)
	}
	return count > 0, nil
}

// List returns archive entries, newest first.
func (a *Archive) List(limit, offset int) ([]TrackRecord, error) {
	if a == nil || a.db == nil {
		return nil, fmt.Errorf("archive not initialized")
	}

	if limit <= 0 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := a.db.Query(`
		SELECT id, video_id, title, uploader, file_path, source_url,
			quality, file_size, playlist_id, playlist_title, playlist_index, created_at
		FROM tracks
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying tracks: %w", err)
	}
	defer rows.Close()

	var records []TrackRecord
	for rows.Next() {
		var r TrackRecord
		if err := rows.Scan(
			&r.ID, &r.VideoID, &r.Title, &r.Uploader, &r.FilePath, &r.SourceURL,
			&r.Quality, &r.FileSize, &r.PlaylistID, &r.PlaylistTitle, &r.PlaylistIndex, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning track row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Count returns the total number of archived tracks.
func (a *Archive) Count() (int, error) {
	if a == nil || a.db == nil {
		return 0, fmt.Errorf("archive not initialized")
	}

	var count int
	if err := a.db.QueryRow("SELECT COUNT(*) FROM tracks").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting tracks: %w", err)
	}
	return count, nil
}
