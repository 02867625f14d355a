package tags

import (
	"github.com/bogem/id3v2/v2"
)

// readMP3WithID3v2 reads MP3 metadata using only the id3v2 library.
func readMP3WithID3v2(path string) (*Track, error) {
	id3tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, err
	}
	defer id3tag.Close()

	if !id3tag.HasFrames() {
		return nil, ErrUnsupported
	}

	artist := id3tag.Artist()
	if artist == "" {
		artist = getID3TextFrame(id3tag, "TPE2") // Album artist frame
	}
	track, _ := parseTrackNumber(getID3TextFrame(id3tag, "TRCK"))

	t := &Track{
		Path:        path,
		TrackNumber: track,
		Title:       id3tag.Title(),
		Album:       id3tag.Album(),
		Artist:      artist,
	}

	for _, frame := range id3tag.GetFrames(id3tag.CommonID("Attached picture")) {
		if pic, ok := frame.(id3v2.PictureFrame); ok && len(pic.Picture) > 0 {
			t.Cover = pic.Picture
			t.CoverMIME = pic.MimeType
			if pic.PictureType == id3v2.PTFrontCover {
				break
			}
		}
	}

	return t, nil
}

// getID3TextFrame reads a text frame value from an ID3v2 tag.
func getID3TextFrame(id3tag *id3v2.Tag, frameID string) string {
	frames := id3tag.GetFrames(frameID)
	if len(frames) == 0 {
		return ""
	}
	if tf, ok := frames[0].(id3v2.TextFrame); ok {
		return tf.Text
	}
	return ""
}
