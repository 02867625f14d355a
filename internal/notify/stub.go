//go:build !linux

package notify

import "time"

// New returns a notifier that shows nothing.
func New(_ time.Duration) Notifier {
	return nopNotifier{}
}
