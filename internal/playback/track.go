package playback

import "github.com/llehouerou/platter/internal/playqueue"

// Track describes the track being played.
// This is a copy of the data, not a reference to the queue entry.
type Track struct {
	Position int // 1-based queue position
	Title    string
	Artist   string
	Album    string
	Cover    []byte
	Path     string
}

func trackFromEntry(e *playqueue.Track) *Track {
	if e == nil {
		return nil
	}
	return &Track{
		Position: e.Position,
		Title:    e.Title,
		Artist:   e.Artist,
		Album:    e.Album,
		Cover:    e.Cover,
		Path:     e.Path,
	}
}
