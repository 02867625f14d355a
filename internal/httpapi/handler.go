// Package httpapi exposes playback control and now-playing information
// over HTTP.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/llehouerou/platter/internal/logger"
	"github.com/llehouerou/platter/internal/playback"
)

// QueueInfo reports the cursor of a named play queue.
type QueueInfo interface {
	Position(name string) (int, error)
	Len(name string) (int, error)
}

// Handler serves the control surface.
type Handler struct {
	ctl   playback.Controller
	queue QueueInfo
	name  string
	log   *logger.Logger
}

// NewHandler creates a handler driving ctl. queue may be nil, in which case
// the now-playing response carries no queue block.
func NewHandler(ctl playback.Controller, queue QueueInfo, queueName string, log *logger.Logger) *Handler {
	return &Handler{
		ctl:   ctl,
		queue: queue,
		name:  queueName,
		log:   log.WithComponent("http"),
	}
}

// Routes returns the router with every endpoint registered.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(h.logRequests)
	r.Use(middleware.Recoverer)
	h.RegisterRoutes(r)
	return r
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/play", h.command(h.ctl.Play))
	r.Post("/pause", h.command(h.ctl.Pause))
	r.Post("/toggle", h.command(h.ctl.Toggle))
	r.Post("/next", h.command(h.ctl.RequestNext))
	r.Post("/prev", h.command(h.ctl.RequestPrev))

	r.Get("/now-playing", h.NowPlaying)
	r.Get("/cover", h.Cover)
}

// command answers 202: the engine applies commands on its next iteration.
func (h *Handler) command(fn func()) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		fn()
		w.WriteHeader(http.StatusAccepted)
	}
}

type trackJSON struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Path     string `json:"path"`
	HasCover bool   `json:"has_cover"`
}

type queueJSON struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
	Length   int    `json:"length"`
}

type nowPlayingJSON struct {
	State   string     `json:"state"`
	Current *trackJSON `json:"current"`
	Next    *trackJSON `json:"next"`
	Queue   *queueJSON `json:"queue,omitempty"`
}

func toTrackJSON(t *playback.Track) *trackJSON {
	if t == nil {
		return nil
	}
	return &trackJSON{
		Position: t.Position,
		Title:    t.Title,
		Artist:   t.Artist,
		Album:    t.Album,
		Path:     t.Path,
		HasCover: len(t.Cover) > 0,
	}
}

func (h *Handler) NowPlaying(w http.ResponseWriter, _ *http.Request) {
	resp := nowPlayingJSON{
		State:   h.ctl.State().String(),
		Current: toTrackJSON(h.ctl.CurrentTrack()),
		Next:    toTrackJSON(h.ctl.NextTrack()),
	}

	if h.queue != nil {
		q := &queueJSON{Name: h.name}
		var err error
		if q.Position, err = h.queue.Position(h.name); err != nil {
			h.log.Debug("queue position", "queue", h.name, "error", err)
		}
		if q.Length, err = h.queue.Len(h.name); err != nil {
			h.log.Debug("queue length", "queue", h.name, "error", err)
		}
		resp.Queue = q
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.Warn("encode now-playing", "error", err)
	}
}

func (h *Handler) Cover(w http.ResponseWriter, r *http.Request) {
	t := h.ctl.CurrentTrack()
	if t == nil || len(t.Cover) == 0 {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(t.Cover))
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(t.Cover)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
