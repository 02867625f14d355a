// Package notify shows a desktop notification for the track being played.
package notify

import "time"

// DefaultTimeout is how long a track notification stays visible.
const DefaultTimeout = 5 * time.Second

// Message is the content of one notification.
type Message struct {
	Summary string
	Body    string
	Icon    string // image path, empty for the application icon
}

// Notifier keeps at most one notification on screen: each Show replaces
// the message shown before it.
type Notifier interface {
	Show(m Message) error
	// Dismiss removes the message on screen, if any.
	Dismiss() error
}

// nopNotifier is used when no notification daemon is reachable.
type nopNotifier struct{}

func (nopNotifier) Show(Message) error { return nil }
func (nopNotifier) Dismiss() error     { return nil }
