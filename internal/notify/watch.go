package notify

import (
	"context"
	"fmt"

	"github.com/llehouerou/platter/internal/errmsg"
	"github.com/llehouerou/platter/internal/logger"
	"github.com/llehouerou/platter/internal/playback"
)

// Watch shows a notification for every track change and when the queue
// runs out, until ctx is done or the subscription closes. The last
// notification is dismissed on return.
func Watch(
	ctx context.Context,
	sub *playback.Subscription,
	n Notifier,
	thumbs *Thumbnailer,
	log *logger.Logger,
) {
	log = log.WithComponent("notify")
	defer func() {
		if err := n.Dismiss(); err != nil {
			log.Debug("dismiss notification", "error", err)
		}
	}()

	show := func(m Message) {
		if err := n.Show(m); err != nil {
			log.Warn(errmsg.Format(errmsg.OpNotifySend, err))
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done:
			return
		case ev := <-sub.TrackChanged:
			if ev.Current == nil {
				continue
			}
			show(trackMessage(ev.Current, thumbs, log))
		case ev := <-sub.QueueEnded:
			show(Message{
				Summary: "Queue finished",
				Body:    fmt.Sprintf("Reached the end of %q", ev.Queue),
			})
		}
	}
}

func trackMessage(t *playback.Track, thumbs *Thumbnailer, log *logger.Logger) Message {
	m := Message{Summary: t.Title, Body: t.Artist + " - " + t.Album}
	if thumbs == nil {
		return m
	}
	icon, err := thumbs.Path(t.Cover)
	if err != nil {
		log.Debug("cover thumbnail", "path", t.Path, "error", err)
		return m
	}
	m.Icon = icon
	return m
}
