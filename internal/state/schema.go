package state

import (
	"github.com/jmoiron/sqlx"

	dbutil "github.com/llehouerou/platter/internal/db"
)

const currentSchemaVersion = 1

// Tables in dependency order; dropSchema walks it backwards.
var tables = []string{
	"schema_version",
	"artists",
	"albums",
	"tracks",
	"playqueues",
	"playqueues2tracks",
}

func initSchema(db *sqlx.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS artists (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS albums (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL UNIQUE,
			cover BLOB
		);

		CREATE TABLE IF NOT EXISTS tracks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			track_number INTEGER,
			title TEXT NOT NULL,
			album_id INTEGER NOT NULL REFERENCES albums(id),
			artist_id INTEGER NOT NULL REFERENCES artists(id),
			path TEXT NOT NULL UNIQUE
		);

		CREATE INDEX IF NOT EXISTS idx_tracks_album ON tracks(album_id);

		CREATE TABLE IF NOT EXISTS playqueues (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			current_position INTEGER NOT NULL DEFAULT 1
		);

		CREATE TABLE IF NOT EXISTS playqueues2tracks (
			playqueue_id INTEGER NOT NULL REFERENCES playqueues(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			track_id INTEGER NOT NULL REFERENCES tracks(id) ON DELETE CASCADE,
			PRIMARY KEY (playqueue_id, position)
		);
	`)
	if err != nil {
		return err
	}

	// Set initial version if not exists
	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	return err
}

func dropSchema(db *sqlx.DB) error {
	return dbutil.WithTx(db, func(tx *sqlx.Tx) error {
		for i := len(tables) - 1; i >= 0; i-- {
			if _, err := tx.Exec(`DROP TABLE IF EXISTS ` + tables[i]); err != nil {
				return err
			}
		}
		return nil
	})
}
