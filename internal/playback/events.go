package playback

// StateChange is emitted when playback state changes.
type StateChange struct {
	Previous State
	Current  State
}

// TrackChange is emitted when the engine moves to a different queue entry.
//
// Emitted by:
//   - startup: when the first track is loaded (Previous is nil)
//   - a finished track: the next entry becomes current
//   - RequestNext / RequestPrev
//
// Consumers handle all track-related side effects (display, notifications,
// MPRIS metadata) in response to this event.
type TrackChange struct {
	Previous *Track
	Current  *Track
	Next     *Track // nil at the last entry
}

// QueueEnded is emitted when the cursor moves past the last entry, or the
// queue has no entries at all. Playback pauses.
type QueueEnded struct {
	Queue string
}

// ErrorEvent is emitted when an error occurs during playback.
type ErrorEvent struct {
	Operation string // e.g., "decode", "prefetch", "advance"
	Path      string // track path if applicable
	Err       error
}
