// Package library indexes music files into the local store and lists what
// it holds.
package library

import (
	"github.com/jmoiron/sqlx"

	"github.com/llehouerou/platter/internal/logger"
	"github.com/llehouerou/platter/internal/tags"
)

// Extractor reads scan metadata from one file. tags.Extract is the default.
type Extractor func(path string) (*tags.Track, error)

type Track struct {
	ID          int64  `db:"id"`
	TrackNumber int    `db:"track_number"`
	Title       string `db:"title"`
	Album       string `db:"album"`
	Artist      string `db:"artist"`
	Path        string `db:"path"`
}

type Album struct {
	ID    int64  `db:"id"`
	Title string `db:"title"`
	Cover []byte `db:"cover"`
}

type Library struct {
	db      *sqlx.DB
	extract Extractor
	log     *logger.Logger
}

// New creates a Library over db. A nil extract uses tags.Extract.
func New(db *sqlx.DB, log *logger.Logger, extract Extractor) *Library {
	if extract == nil {
		extract = tags.Extract
	}
	return &Library{db: db, extract: extract, log: log.WithComponent("library")}
}

func (l *Library) Artists() ([]string, error) {
	var artists []string
	err := l.db.Select(&artists, `SELECT name FROM artists ORDER BY name COLLATE NOCASE`)
	return artists, err
}

// Albums returns every album with its cover, ordered by title.
func (l *Library) Albums() ([]Album, error) {
	var albums []Album
	err := l.db.Select(&albums, `SELECT id, title, cover FROM albums ORDER BY title`)
	return albums, err
}

// Tracks returns the tracks of an album in track-number order.
func (l *Library) Tracks(albumID int64) ([]Track, error) {
	var tracks []Track
	err := l.db.Select(&tracks, `
		SELECT t.id, COALESCE(t.track_number, 0) AS track_number, t.title,
			al.title AS album, ar.name AS artist, t.path
		FROM tracks t
		JOIN albums al ON al.id = t.album_id
		JOIN artists ar ON ar.id = t.artist_id
		WHERE t.album_id = ?
		ORDER BY t.track_number, t.title COLLATE NOCASE
	`, albumID)
	return tracks, err
}

func (l *Library) TrackCount() (int, error) {
	var count int
	err := l.db.Get(&count, `SELECT COUNT(*) FROM tracks`)
	return count, err
}

// TrackByPath returns the track stored for path, or sql.ErrNoRows.
func (l *Library) TrackByPath(path string) (*Track, error) {
	var t Track
	err := l.db.Get(&t, `
		SELECT t.id, COALESCE(t.track_number, 0) AS track_number, t.title,
			al.title AS album, ar.name AS artist, t.path
		FROM tracks t
		JOIN albums al ON al.id = t.album_id
		JOIN artists ar ON ar.id = t.artist_id
		WHERE t.path = ?
	`, path)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
