//go:build linux

package mpris

import (
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/platter/internal/logger"
	"github.com/llehouerou/platter/internal/playback"
)

const busName = "platter"

// Adapter exposes a playback controller over MPRIS on the session bus.
type Adapter struct {
	player *playerAdapter
	server *server.Server
	sub    *playback.Subscription
	done   chan struct{}
	once   sync.Once
}

// New creates and starts an MPRIS adapter. Cover art is written under
// artDir so clients can load it by file URL.
func New(ctl playback.Controller, artDir string, log *logger.Logger) (*Adapter, error) {
	log = log.WithComponent("mpris")
	a := &Adapter{
		player: &playerAdapter{ctl: ctl, art: newArtCache(artDir)},
		sub:    ctl.Subscribe(),
		done:   make(chan struct{}),
	}
	a.server = server.NewServer(busName, &rootAdapter{}, a.player)

	go func() {
		if err := a.server.Listen(); err != nil {
			log.Warn("mpris server stopped", "error", err)
		}
	}()
	go a.watch(log)

	return a, nil
}

// watch prepares cover art ahead of metadata queries.
func (a *Adapter) watch(log *logger.Logger) {
	for {
		select {
		case <-a.done:
			return
		case <-a.sub.Done:
			return
		case ev := <-a.sub.TrackChanged:
			if ev.Current == nil {
				continue
			}
			if _, err := a.player.art.url(ev.Current.Cover); err != nil {
				log.Debug("write cover", "path", ev.Current.Path, "error", err)
			}
		}
	}
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	var err error
	a.once.Do(func() {
		close(a.done)
		err = a.server.Stop()
	})
	return err
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - app manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "Platter", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter. Every call is
// forwarded to the engine's command queue.
type playerAdapter struct {
	ctl playback.Controller
	art *artCache
}

func (p *playerAdapter) Next() error {
	p.ctl.RequestNext()
	return nil
}

func (p *playerAdapter) Previous() error {
	p.ctl.RequestPrev()
	return nil
}

func (p *playerAdapter) Pause() error {
	p.ctl.Pause()
	return nil
}

func (p *playerAdapter) PlayPause() error {
	p.ctl.Toggle()
	return nil
}

// Stop pauses; the queue cursor stays where it is.
func (p *playerAdapter) Stop() error {
	p.ctl.Pause()
	return nil
}

func (p *playerAdapter) Play() error {
	p.ctl.Play()
	return nil
}

func (p *playerAdapter) Seek(_ types.Microseconds) error {
	return nil // Not supported
}

func (p *playerAdapter) SetPosition(_ string, _ types.Microseconds) error {
	return nil // Not supported
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch p.ctl.State() {
	case playback.StatePlaying:
		return types.PlaybackStatusPlaying, nil
	case playback.StatePaused:
		return types.PlaybackStatusPaused, nil
	case playback.StateStopped:
		return types.PlaybackStatusStopped, nil
	}
	return types.PlaybackStatusStopped, nil
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	track := p.ctl.CurrentTrack()
	if track == nil {
		return types.Metadata{}, nil
	}

	meta := types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(track.Path)),
		Title:   track.Title,
		Artist:  []string{track.Artist},
		Album:   track.Album,
	}

	if artURL, err := p.art.url(track.Cover); err == nil && artURL != "" {
		meta.ArtUrl = artURL
	} else if artPath := FindAlbumArt(track.Path); artPath != "" {
		meta.ArtUrl = "file://" + artPath
	}

	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetVolume(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Position() (int64, error) {
	return 0, nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return p.ctl.NextTrack() != nil, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	t := p.ctl.CurrentTrack()
	return t != nil && t.Position > 1, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.ctl.CurrentTrack() != nil, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return false, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

func formatTrackID(path string) string {
	h := fnv.New64a()
	h.Write([]byte(path))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
