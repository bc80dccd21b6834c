package booking

import (
	"fmt"
	"time"
)

// Window is a half-open time interval [Start, End)
type Window struct {
	Start time.Time
	End   time.Time
}

// WindowAt builds the interval occupied by a slot: a calendar date, a "15:04"
// start time and a duration in minutes. End = Start + duration.
func WindowAt(date time.Time, startTime string, durationMinutes int) (Window, error) {
	clock, err := time.Parse("15:04", startTime)
	if err != nil {
		return Window{}, fmt.Errorf("invalid time %q: %w", startTime, err)
	}

	start := time.Date(date.Year(), date.Month(), date.Day(), clock.Hour(), clock.Minute(), 0, 0, date.Location())
	return Window{
		Start: start,
		End:   start.Add(time.Duration(durationMinutes) * time.Minute),
	}, nil
}

// Overlaps reports whether two half-open intervals intersect. Adjacent
// windows (one ending exactly when the other starts) do not overlap, and a
// zero-duration window never overlaps anything.
func (w Window) Overlaps(o Window) bool {
	if !w.End.After(w.Start) || !o.End.After(o.Start) {
		return false
	}
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}

// Duration returns the length of the window
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}
