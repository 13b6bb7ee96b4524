// Package simtime carries simulation time as an explicit value.
// Systems receive a Clock per call instead of reading ambient world state.
package simtime

import "fmt"

// Tick calendar. One tick is one sim-minute.
const (
	TicksPerSimHour = 60
	TicksPerSimDay  = 1440
	TicksPerSimWeek = 10080
)

// Mode is the record/playback mode of the timeline.
type Mode uint8

const (
	ModeRecord   Mode = iota // Live simulation, state is derived and recorded
	ModePlayback             // Replaying recorded state; nothing may be re-derived
	ModeCatchUp              // Fast-forwarding recorded state after a rewind
)

func (m Mode) String() string {
	switch m {
	case ModeRecord:
		return "record"
	case ModePlayback:
		return "playback"
	case ModeCatchUp:
		return "catch-up"
	}
	return fmt.Sprintf("mode(%d)", m)
}

// Clock is an immutable snapshot of simulation time for one tick.
type Clock struct {
	Tick   uint64
	Paused bool
	Mode   Mode
}

// Recording reports whether state-deriving systems may run this tick.
func (c Clock) Recording() bool {
	return !c.Paused && c.Mode == ModeRecord
}

// Format returns a human-readable simulation time string from a tick number.
func Format(tick uint64) string {
	minutes := tick % 60
	totalHours := tick / 60
	hours := totalHours % 24
	days := totalHours / 24
	return fmt.Sprintf("Day %d, %d:%02d", days+1, hours, minutes)
}
