// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Store operations
	OpStoreOpen  Op = "open music database"
	OpStoreReset Op = "reset music database"

	// Library operations
	OpLibraryScan  Op = "scan library"
	OpLibraryLoad  Op = "load library"
	OpAlbumLoad    Op = "load albums"
	OpScanFileTags Op = "read file tags"

	// Queue operations
	OpQueueShuffle Op = "shuffle queue"
	OpQueueLoad    Op = "load queue"
	OpQueueAdvance Op = "advance queue"
	OpQueueRewind  Op = "rewind queue"

	// Cache operations
	OpCacheCreate Op = "create playback cache"
	OpCacheTrack  Op = "cache track"
	OpCacheRead   Op = "read cached audio"

	// Playback operations
	OpPlaybackStart Op = "start playback"
	OpAudioOpen     Op = "open audio output"
	OpAudioWrite    Op = "write audio"

	// Integration
	OpMPRISStart Op = "start MPRIS"
	OpHTTPServe  Op = "serve HTTP control"
	OpNotifySend Op = "send notification"
	OpConfigLoad Op = "load configuration"
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
