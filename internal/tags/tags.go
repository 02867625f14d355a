// Package tags extracts the metadata a library scan needs from music files:
// track number, title, album, artist and the embedded cover picture.
package tags

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// File extensions supported by the tags package.
const (
	ExtMP3  = ".mp3"
	ExtFLAC = ".flac"
	ExtOPUS = ".opus"
	ExtOGG  = ".ogg"
	ExtM4A  = ".m4a"
	ExtMP4  = ".mp4"
)

var (
	// ErrUnsupported is returned for files that are not a readable music container.
	ErrUnsupported = errors.New("unsupported file")
	// ErrNoCover is returned when a file carries no embedded picture.
	ErrNoCover = errors.New("no embedded cover art")
)

// MissingTagError reports a required tag absent from a file.
type MissingTagError struct {
	Tag string
}

func (e *MissingTagError) Error() string {
	return "missing tag " + e.Tag
}

// Track holds the tags a scan commits for one file.
type Track struct {
	Path        string
	TrackNumber int
	Title       string
	Album       string
	Artist      string
	Cover       []byte
	CoverMIME   string
}

// validate checks that every field the library requires is present.
func (t *Track) validate() error {
	switch {
	case t.TrackNumber <= 0:
		return &MissingTagError{Tag: "track number"}
	case strings.TrimSpace(t.Title) == "":
		return &MissingTagError{Tag: "title"}
	case strings.TrimSpace(t.Album) == "":
		return &MissingTagError{Tag: "album"}
	case strings.TrimSpace(t.Artist) == "":
		return &MissingTagError{Tag: "artist"}
	case len(t.Cover) == 0:
		return ErrNoCover
	}
	return nil
}

// IsMusicFile returns true if the path has a supported music file extension.
func IsMusicFile(path string) bool {
	ext := strings.ToLower(path)
	if idx := strings.LastIndex(ext, "."); idx >= 0 {
		ext = ext[idx:]
	} else {
		return false
	}
	return ext == ExtMP3 || ext == ExtFLAC || ext == ExtOPUS || ext == ExtOGG || ext == ExtM4A || ext == ExtMP4
}

// parseTrackNumber parses a track number string like "5" or "5/10".
func parseTrackNumber(s string) (num, total int) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0
	}
	parts := strings.SplitN(s, "/", 2)
	num, _ = strconv.Atoi(parts[0])
	if len(parts) == 2 {
		total, _ = strconv.Atoi(parts[1])
	}
	return num, total
}

func unsupported(path string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrUnsupported, path)
	}
	return fmt.Errorf("%w: %s: %v", ErrUnsupported, path, err)
}
