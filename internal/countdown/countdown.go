// Package countdown renders the time left until the betting window closes.
package countdown

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Interval is the fixed refresh period of the countdown display.
const Interval = time.Second

// Parts is a duration split into display fields.
type Parts struct {
	Days    int64
	Hours   int64
	Minutes int64
	Seconds int64
}

// Remaining splits end-now into days, hours, minutes and seconds. Once end
// has passed every field is zero.
func Remaining(end, now time.Time) Parts {
	diff := end.Sub(now)
	if diff < 0 {
		return Parts{}
	}

	total := int64(diff / time.Second)
	return Parts{
		Days:    total / 86400,
		Hours:   (total % 86400) / 3600,
		Minutes: (total % 3600) / 60,
		Seconds: total % 60,
	}
}

// Expired reports whether all fields are zero.
func (p Parts) Expired() bool {
	return p == Parts{}
}

// String formats as DD:HH:MM:SS with every field zero-padded to two digits.
func (p Parts) String() string {
	return fmt.Sprintf("%02d:%02d:%02d:%02d", p.Days, p.Hours, p.Minutes, p.Seconds)
}

// TickMsg is delivered once per Interval while a countdown is mounted.
type TickMsg time.Time

// Tick schedules the next TickMsg. A screen stops the countdown simply by not
// re-arming it after it is unmounted.
func Tick() tea.Cmd {
	return tea.Tick(Interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
