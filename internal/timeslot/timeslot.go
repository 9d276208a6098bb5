package timeslot

import "time"

// Interval is the fixed booking granularity. Every reservation window is
// materialized as consecutive slot markers this far apart.
const Interval = 30 * time.Minute

// SlotStarts returns the slot markers covered by the half-open window
// [start, end): start, start+Interval, ... while the marker is before end.
// Zero or inverted bounds yield nil. A window that is not an exact multiple
// of Interval still claims a marker for the trailing partial period.
func SlotStarts(start, end time.Time) []time.Time {
	if start.IsZero() || end.IsZero() {
		return nil
	}

	start = start.UTC()
	end = end.UTC()
	if !end.After(start) {
		return nil
	}

	var starts []time.Time
	for current := start; current.Before(end); current = current.Add(Interval) {
		starts = append(starts, current)
	}
	return starts
}
