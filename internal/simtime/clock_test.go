package simtime

import "testing"

func TestClockRecording(t *testing.T) {
	tests := []struct {
		name  string
		clock Clock
		want  bool
	}{
		{name: "record running", clock: Clock{Tick: 5, Mode: ModeRecord}, want: true},
		{name: "record paused", clock: Clock{Tick: 5, Paused: true, Mode: ModeRecord}, want: false},
		{name: "playback", clock: Clock{Tick: 5, Mode: ModePlayback}, want: false},
		{name: "catch-up", clock: Clock{Tick: 5, Mode: ModeCatchUp}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.clock.Recording(); got != tt.want {
				t.Errorf("Recording() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	if got := Format(0); got != "Day 1, 0:00" {
		t.Errorf("Format(0) = %q", got)
	}
	if got := Format(TicksPerSimDay + 61); got != "Day 2, 1:01" {
		t.Errorf("Format(day+61) = %q", got)
	}
}
