package tags

import (
	goflac "github.com/go-flac/go-flac"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
)

// readFLACWithGoFlac reads FLAC metadata blocks directly when dhowden/tag fails.
func readFLACWithGoFlac(path string) (*Track, error) {
	f, err := goflac.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return trackFromFLACBlocks(path, f.Meta)
}

func trackFromFLACBlocks(path string, blocks []*goflac.MetaDataBlock) (*Track, error) {
	t := &Track{Path: path}
	var sawComments bool

	for _, meta := range blocks {
		switch meta.Type {
		case goflac.VorbisComment:
			cmts, err := flacvorbis.ParseFromMetaDataBlock(*meta)
			if err != nil {
				return nil, err
			}
			sawComments = true
			t.Title = firstComment(cmts, flacvorbis.FIELD_TITLE)
			t.Album = firstComment(cmts, flacvorbis.FIELD_ALBUM)
			t.Artist = firstComment(cmts, flacvorbis.FIELD_ARTIST)
			if t.Artist == "" {
				t.Artist = firstComment(cmts, "ALBUMARTIST")
			}
			t.TrackNumber, _ = parseTrackNumber(firstComment(cmts, flacvorbis.FIELD_TRACKNUMBER))
		case goflac.Picture:
			pic, err := flacpicture.ParseFromMetaDataBlock(*meta)
			if err != nil {
				continue
			}
			// Keep the front cover if there is one, else the first picture.
			if len(t.Cover) == 0 || pic.PictureType == flacpicture.PictureTypeFrontCover {
				t.Cover = pic.ImageData
				t.CoverMIME = pic.MIME
			}
		}
	}

	if !sawComments {
		return nil, ErrUnsupported
	}
	return t, nil
}

func firstComment(cmts *flacvorbis.MetaDataBlockVorbisComment, key string) string {
	values, err := cmts.Get(key)
	if err != nil || len(values) == 0 {
		return ""
	}
	return values[0]
}
