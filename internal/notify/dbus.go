//go:build linux

package notify

import (
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	dbusNotifyDest      = "org.freedesktop.Notifications"
	dbusNotifyPath      = "/org/freedesktop/Notifications"
	dbusNotifyInterface = "org.freedesktop.Notifications"

	appName      = "Platter"
	desktopEntry = "platter"
	urgencyLow   = byte(0)
)

// busObject is the part of dbus.BusObject the notifier calls.
type busObject interface {
	Call(method string, flags dbus.Flags, args ...any) *dbus.Call
}

var _ busObject = dbus.BusObject(nil)

type dbusNotifier struct {
	obj     busObject
	timeout int32 // ms, -1 for the server default

	mu    sync.Mutex
	shown uint32 // id of the notification on screen, 0 for none
}

// New connects to the session bus. Without one, it returns a notifier that
// shows nothing.
func New(timeout time.Duration) Notifier {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nopNotifier{}
	}
	return newDBusNotifier(conn.Object(dbusNotifyDest, dbusNotifyPath), timeout)
}

func newDBusNotifier(obj busObject, timeout time.Duration) *dbusNotifier {
	ms := int32(-1)
	if timeout > 0 {
		ms = int32(timeout.Milliseconds())
	}
	return &dbusNotifier{obj: obj, timeout: ms}
}

func (n *dbusNotifier) Show(m Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	hints := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(urgencyLow),
		"desktop-entry": dbus.MakeVariant(desktopEntry),
		"category":      dbus.MakeVariant("x-gnome.music"),
	}

	// Notify(app_name, replaces_id, app_icon, summary, body, actions, hints, expire_timeout) -> id
	call := n.obj.Call(
		dbusNotifyInterface+".Notify",
		0,
		appName,
		n.shown,
		m.Icon,
		m.Summary,
		m.Body,
		[]string{},
		hints,
		n.timeout,
	)

	var id uint32
	if err := call.Store(&id); err != nil {
		return err
	}
	n.shown = id
	return nil
}

func (n *dbusNotifier) Dismiss() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.shown == 0 {
		return nil
	}
	call := n.obj.Call(dbusNotifyInterface+".CloseNotification", 0, n.shown)
	n.shown = 0
	return call.Err
}
