package notify

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image"
	_ "image/jpeg" // JPEG decoder for embedded covers
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/nfnt/resize"
)

// DefaultThumbnailSize is the bounding box for notification icons, in pixels.
const DefaultThumbnailSize = 128

// Thumbnailer scales embedded covers down and stores them as PNG files
// that notification daemons can load by path.
type Thumbnailer struct {
	dir  string
	size uint

	mu    sync.Mutex
	paths map[uint64]string
}

// NewThumbnailer writes thumbnails under dir, bounded to size x size.
func NewThumbnailer(dir string, size uint) *Thumbnailer {
	if size == 0 {
		size = DefaultThumbnailSize
	}
	return &Thumbnailer{dir: dir, size: size, paths: map[uint64]string{}}
}

// Path returns the thumbnail file for cover, creating it on first use.
// An empty cover yields "".
func (t *Thumbnailer) Path(cover []byte) (string, error) {
	if len(cover) == 0 {
		return "", nil
	}

	h := fnv.New64a()
	h.Write(cover)
	key := h.Sum64()

	t.mu.Lock()
	defer t.mu.Unlock()
	if p, ok := t.paths[key]; ok {
		return p, nil
	}

	img, _, err := image.Decode(bytes.NewReader(cover))
	if err != nil {
		return "", fmt.Errorf("decode cover: %w", err)
	}
	thumb := resize.Thumbnail(t.size, t.size, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := png.Encode(&buf, thumb); err != nil {
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}
	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		return "", err
	}
	p := filepath.Join(t.dir, fmt.Sprintf("%x.png", key))
	if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	t.paths[key] = p
	return p, nil
}
