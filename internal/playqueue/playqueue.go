// Package playqueue persists named, ordered track sequences with a movable
// cursor. Entries are numbered densely from 1; the cursor is the queue's
// current_position.
package playqueue

import (
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/jmoiron/sqlx"

	dbutil "github.com/llehouerou/platter/internal/db"
)

// ErrQueryEmptyResult is returned when a queue lookup finds nothing: the
// queue is empty or missing, or the requested position is past either end.
var ErrQueryEmptyResult = errors.New("query returned no result")

// Track describes one queue entry with the details a display needs.
type Track struct {
	Position int    `db:"position"`
	ID       int64  `db:"id"`
	Title    string `db:"title"`
	Artist   string `db:"artist"`
	Album    string `db:"album"`
	Cover    []byte `db:"cover"`
	Path     string `db:"path"`
}

// Store reads and moves persisted play queues.
type Store struct {
	db   *sqlx.DB
	perm func(n int) []int
}

// New returns a Store over an opened state database.
func New(db *sqlx.DB) *Store {
	return &Store{db: db, perm: rand.Perm}
}

// Shuffle replaces the named queue with a random permutation of every track
// in the library and puts the cursor on position 1. The old entries, the old
// header and the new queue are swapped in one transaction. It returns the
// number of entries written.
func (s *Store) Shuffle(name string) (int, error) {
	var n int
	err := dbutil.WithTx(s.db, func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(`
			DELETE FROM playqueues2tracks
			WHERE playqueue_id IN (SELECT id FROM playqueues WHERE name = ?)
		`, name); err != nil {
			return fmt.Errorf("delete entries: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM playqueues WHERE name = ?`, name); err != nil {
			return fmt.Errorf("delete queue: %w", err)
		}

		res, err := tx.Exec(`INSERT INTO playqueues (name, current_position) VALUES (?, 1)`, name)
		if err != nil {
			return fmt.Errorf("insert queue: %w", err)
		}
		queueID, err := res.LastInsertId()
		if err != nil {
			return err
		}

		var ids []int64
		if err := tx.Select(&ids, `SELECT id FROM tracks ORDER BY id`); err != nil {
			return fmt.Errorf("list tracks: %w", err)
		}

		stmt, err := tx.Prepare(`
			INSERT INTO playqueues2tracks (playqueue_id, position, track_id) VALUES (?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for pos, idx := range s.perm(len(ids)) {
			if _, err := stmt.Exec(queueID, pos+1, ids[idx]); err != nil {
				return fmt.Errorf("insert entry %d: %w", pos+1, err)
			}
		}
		n = len(ids)
		return nil
	})
	return n, err
}

// CurrentTrack returns the entry under the cursor.
func (s *Store) CurrentTrack(name string) (*Track, error) {
	return s.TrackAt(name, 0)
}

// PeekNextTrack returns the entry after the cursor without moving it.
func (s *Store) PeekNextTrack(name string) (*Track, error) {
	return s.TrackAt(name, 1)
}

// TrackAt returns the entry at the cursor plus offset.
func (s *Store) TrackAt(name string, offset int) (*Track, error) {
	var t Track
	err := s.db.Get(&t, `
		SELECT e.position, t.id, t.title, ar.name AS artist, al.title AS album, al.cover, t.path
		FROM playqueues q
		JOIN playqueues2tracks e ON e.playqueue_id = q.id
		JOIN tracks t ON t.id = e.track_id
		JOIN albums al ON al.id = t.album_id
		JOIN artists ar ON ar.id = t.artist_id
		WHERE q.name = ? AND e.position = q.current_position + ?
	`, name, offset)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: queue %q offset %+d", ErrQueryEmptyResult, name, offset)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Advance moves the cursor forward by one. The cursor may step one past the
// last entry, which marks the end of the queue; further calls and calls on
// an empty queue leave it alone.
func (s *Store) Advance(name string) error {
	_, err := s.db.Exec(`
		UPDATE playqueues
		SET current_position = current_position + 1
		WHERE name = ?
		  AND current_position <= (
			SELECT COUNT(*) FROM playqueues2tracks WHERE playqueue_id = playqueues.id
		  )
	`, name)
	return err
}

// Rewind moves the cursor back by one, never below position 1.
func (s *Store) Rewind(name string) error {
	_, err := s.db.Exec(`
		UPDATE playqueues SET current_position = MAX(current_position - 1, 1) WHERE name = ?
	`, name)
	return err
}

// Position returns the cursor of the named queue.
func (s *Store) Position(name string) (int, error) {
	var pos int
	err := s.db.Get(&pos, `SELECT current_position FROM playqueues WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: queue %q", ErrQueryEmptyResult, name)
	}
	return pos, err
}

// Len returns the number of entries in the named queue. A missing queue has
// none.
func (s *Store) Len(name string) (int, error) {
	var n int
	err := s.db.Get(&n, `
		SELECT COUNT(*) FROM playqueues2tracks e
		JOIN playqueues q ON q.id = e.playqueue_id
		WHERE q.name = ?
	`, name)
	return n, err
}

// Entries returns every entry of the named queue in position order.
func (s *Store) Entries(name string) ([]Track, error) {
	var tracks []Track
	err := s.db.Select(&tracks, `
		SELECT e.position, t.id, t.title, ar.name AS artist, al.title AS album, al.cover, t.path
		FROM playqueues q
		JOIN playqueues2tracks e ON e.playqueue_id = q.id
		JOIN tracks t ON t.id = e.track_id
		JOIN albums al ON al.id = t.album_id
		JOIN artists ar ON ar.id = t.artist_id
		WHERE q.name = ?
		ORDER BY e.position
	`, name)
	return tracks, err
}
