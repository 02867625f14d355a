package tags

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// Extract reads the scan metadata of a music file. It fails with
// ErrUnsupported for unreadable containers, *MissingTagError when a required
// tag is absent, and ErrNoCover when no picture is embedded.
func Extract(path string) (*Track, error) {
	if !IsMusicFile(path) {
		return nil, unsupported(path, nil)
	}

	t, err := readWithTag(path)
	if err != nil {
		switch strings.ToLower(filepath.Ext(path)) {
		case ExtMP3:
			// dhowden/tag has issues with some UTF-16 encoded ID3 tags
			t, err = readMP3WithID3v2(path)
		case ExtFLAC:
			// dhowden/tag can fail on some FLAC files
			t, err = readFLACWithGoFlac(path)
		}
		if err != nil {
			return nil, unsupported(path, err)
		}
	}

	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func readWithTag(path string) (*Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil, err
	}

	artist := m.Artist()
	if artist == "" {
		artist = m.AlbumArtist()
	}
	track, _ := m.Track()

	t := &Track{
		Path:        path,
		TrackNumber: track,
		Title:       m.Title(),
		Album:       m.Album(),
		Artist:      artist,
	}
	if pic := m.Picture(); pic != nil {
		t.Cover = pic.Data
		t.CoverMIME = pic.MIMEType
	}
	return t, nil
}
