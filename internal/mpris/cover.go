//go:build linux

package mpris

import (
	"fmt"
	"hash/fnv"
	"net/http"
	"os"
	"path/filepath"
	"sync"
)

// coverNames lists common album art filenames in priority order.
var coverNames = []string{
	"cover.jpg", "cover.png", "cover.jpeg",
	"folder.jpg", "folder.png", "folder.jpeg",
	"front.jpg", "front.png", "front.jpeg",
}

// FindAlbumArt looks for album art in the same directory as the track.
// Returns the path to the art file, or empty string if not found.
func FindAlbumArt(trackPath string) string {
	dir := filepath.Dir(trackPath)
	for _, name := range coverNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// artCache writes embedded covers to files named by content hash.
type artCache struct {
	dir string

	mu      sync.Mutex
	written map[uint64]string
}

func newArtCache(dir string) *artCache {
	return &artCache{dir: dir, written: map[uint64]string{}}
}

// url returns a file URL for cover, writing it on first use. Empty covers
// and an empty directory yield "".
func (c *artCache) url(cover []byte) (string, error) {
	if len(cover) == 0 || c.dir == "" {
		return "", nil
	}

	h := fnv.New64a()
	h.Write(cover)
	key := h.Sum64()

	c.mu.Lock()
	defer c.mu.Unlock()
	if path, ok := c.written[key]; ok {
		return "file://" + path, nil
	}

	ext := ".jpg"
	if http.DetectContentType(cover) == "image/png" {
		ext = ".png"
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(c.dir, fmt.Sprintf("%x%s", key, ext))
	if err := os.WriteFile(path, cover, 0o644); err != nil {
		return "", err
	}
	c.written[key] = path
	return "file://" + path, nil
}
