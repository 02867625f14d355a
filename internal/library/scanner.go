package library

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jmoiron/sqlx"

	dbutil "github.com/llehouerou/platter/internal/db"
	"github.com/llehouerou/platter/internal/tags"
)

// ScanWarning reports a file skipped by a scan. Nothing is committed for it.
type ScanWarning struct {
	Path string
	Err  error
}

func (w *ScanWarning) Error() string {
	return fmt.Sprintf("skipping %s: %v", w.Path, w.Err)
}

func (w *ScanWarning) Unwrap() error {
	return w.Err
}

// ScanReport summarizes a completed scan.
type ScanReport struct {
	Files      int // regular files visited
	Added      int // tracks inserted
	Duplicates int // files whose path was already indexed
	Warnings   []*ScanWarning
}

// Scan indexes every file below root. Files the extractor rejects become
// warnings and the scan moves on. Already indexed paths are left untouched,
// so scanning the same root twice is idempotent.
func (l *Library) Scan(ctx context.Context, root string) (*ScanReport, error) {
	files, err := discoverFiles(root)
	if err != nil {
		return nil, err
	}

	report := &ScanReport{Files: len(files)}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		t, err := l.extract(path)
		if err != nil {
			w := &ScanWarning{Path: path, Err: err}
			report.Warnings = append(report.Warnings, w)
			l.log.Warn("skipping file", "path", path, "reason", err)
			continue
		}

		added, err := l.insertTrack(t)
		if err != nil {
			return report, fmt.Errorf("insert %s: %w", path, err)
		}
		if added {
			report.Added++
		} else {
			report.Duplicates++
		}
	}

	l.log.Info("scan complete",
		"root", root,
		"files", humanize.Comma(int64(report.Files)),
		"added", report.Added,
		"duplicates", report.Duplicates,
		"warnings", len(report.Warnings))
	return report, nil
}

// insertTrack upserts the artist and album, then inserts the track. It
// reports false when the path was already indexed.
func (l *Library) insertTrack(t *tags.Track) (bool, error) {
	var added bool
	err := dbutil.WithTx(l.db, func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO artists (name) VALUES (?)`, t.Artist); err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT OR IGNORE INTO albums (title, cover) VALUES (?, ?)`,
			t.Album, dbutil.NullBytes(t.Cover)); err != nil {
			return err
		}
		res, err := tx.Exec(`
			INSERT OR IGNORE INTO tracks (track_number, title, album_id, artist_id, path)
			SELECT ?, ?, albums.id, artists.id, ?
			FROM albums, artists
			WHERE albums.title = ? AND artists.name = ?
		`, t.TrackNumber, t.Title, t.Path, t.Album, t.Artist)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		added = n > 0
		return nil
	})
	return added, err
}
