// Package timeutil canonicalizes timestamps against the configured business
// timezone. Every value that leaves this package is an absolute UTC instant;
// nothing downstream ever consults the ambient process zone.
package timeutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidTimestamp indicates a value that matched none of the accepted layouts.
var ErrInvalidTimestamp = errors.New("timeutil: invalid timestamp")

// Layouts accepted for zone-naive input, interpreted in the business zone.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Normalizer converts timestamps into UTC instants using a fixed business zone.
type Normalizer struct {
	loc *time.Location
}

// NewNormalizer resolves the IANA zone name, e.g. "Asia/Seoul".
func NewNormalizer(zone string) (*Normalizer, error) {
	loc, err := time.LoadLocation(strings.TrimSpace(zone))
	if err != nil {
		return nil, fmt.Errorf("timeutil: load zone %q: %w", zone, err)
	}
	return &Normalizer{loc: loc}, nil
}

// Location exposes the business zone for callers that format local output.
func (n *Normalizer) Location() *time.Location {
	return n.loc
}

// ParseTimestamp turns a wire timestamp into a UTC instant. Values carrying
// an offset (RFC3339) convert directly; zone-naive values are read as local
// time in the business zone first.
func (n *Normalizer) ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrInvalidTimestamp
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, n.loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
}

// FromWallClock reinterprets the wall-clock fields of t as business-zone
// local time and returns the corresponding UTC instant. Used when repairing
// rows whose values were stored without zone information.
func (n *Normalizer) FromWallClock(t time.Time) time.Time {
	return time.Date(
		t.Year(), t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(),
		n.loc,
	).UTC()
}

// ParseDate parses a plain calendar date (2006-01-02).
func (n *Normalizer) ParseDate(value string) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(value), n.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
	}
	return d, nil
}

// DayBoundsUTC returns the half-open UTC interval covering local
// midnight-to-midnight of the calendar day containing d in the business
// zone. Around DST transitions consecutive days map to intervals of
// different length; time.Date resolves each midnight through the zone's
// actual offset so both bounds stay correct.
func (n *Normalizer) DayBoundsUTC(d time.Time) (time.Time, time.Time) {
	local := d.In(n.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, n.loc)
	end := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, n.loc)
	return start.UTC(), end.UTC()
}
