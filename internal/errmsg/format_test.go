//nolint:goconst // test cases intentionally repeat strings for readability
package errmsg

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpLibraryScan,
			err:      nil,
			expected: "",
		},
		{
			name:     "library scan operation",
			op:       OpLibraryScan,
			err:      errors.New("permission denied"),
			expected: "Failed to scan library: permission denied",
		},
		{
			name:     "queue operation",
			op:       OpQueueShuffle,
			err:      errors.New("database is locked"),
			expected: "Failed to shuffle queue: database is locked",
		},
		{
			name:     "cache operation",
			op:       OpCacheTrack,
			err:      errors.New("no free buffer"),
			expected: "Failed to cache track: no free buffer",
		},
		{
			name:     "playback operation",
			op:       OpAudioOpen,
			err:      errors.New("no audio device"),
			expected: "Failed to open audio output: no audio device",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.op, tt.err)
			if result != tt.expected {
				t.Errorf("Format(%q, %v) = %q, want %q", tt.op, tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatWith(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		context  string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpCacheTrack,
			context:  "/music/a.mp3",
			err:      nil,
			expected: "",
		},
		{
			name:     "empty context falls back to Format",
			op:       OpCacheTrack,
			context:  "",
			err:      errors.New("boom"),
			expected: "Failed to cache track: boom",
		},
		{
			name:     "context is quoted",
			op:       OpScanFileTags,
			context:  "/music/a.mp3",
			err:      errors.New("missing tag TALB"),
			expected: "Failed to read file tags '/music/a.mp3': missing tag TALB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWith(tt.op, tt.context, tt.err)
			if result != tt.expected {
				t.Errorf("FormatWith(%q, %q, %v) = %q, want %q", tt.op, tt.context, tt.err, result, tt.expected)
			}
		})
	}
}
