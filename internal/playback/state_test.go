// internal/playback/state_test.go
package playback

import "testing"

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateStopped, "Stopped"},
		{StatePlaying, "Playing"},
		{StatePaused, "Paused"},
		{State(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestState_IsActive(t *testing.T) {
	if StateStopped.IsActive() {
		t.Error("Stopped.IsActive() = true, want false")
	}
	if !StatePlaying.IsActive() {
		t.Error("Playing.IsActive() = false, want true")
	}
	if !StatePaused.IsActive() {
		t.Error("Paused.IsActive() = false, want true")
	}
}

func TestCommand_String(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{CmdPlay, "play"},
		{CmdPause, "pause"},
		{CmdToggle, "toggle"},
		{CmdNext, "next"},
		{CmdPrev, "prev"},
		{Command(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.cmd.String(); got != tt.want {
			t.Errorf("Command(%d).String() = %q, want %q", tt.cmd, got, tt.want)
		}
	}
}
