package timeslot

import (
	"testing"
	"time"
)

func TestSlotStartsEmptyOnInvalidBounds(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		start time.Time
		end   time.Time
	}{
		{"zero start", time.Time{}, base},
		{"zero end", base, time.Time{}},
		{"both zero", time.Time{}, time.Time{}},
		{"end equals start", base, base},
		{"end before start", base, base.Add(-time.Hour)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SlotStarts(tc.start, tc.end); len(got) != 0 {
				t.Fatalf("expected no slots, got %d", len(got))
			}
		})
	}
}

func TestSlotStartsNinetyMinutes(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	got := SlotStarts(start, start.Add(90*time.Minute))

	want := []time.Time{
		start,
		start.Add(30 * time.Minute),
		start.Add(60 * time.Minute),
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d slots, got %d", len(want), len(got))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("slot %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestSlotStartsSingleSlot(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	got := SlotStarts(start, start.Add(30*time.Minute))
	if len(got) != 1 || !got[0].Equal(start) {
		t.Fatalf("expected exactly [start], got %v", got)
	}
}

func TestSlotStartsNormalizesToUTC(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	start := time.Date(2025, 3, 10, 18, 0, 0, 0, loc)
	got := SlotStarts(start, start.Add(time.Hour))
	if len(got) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(got))
	}
	for i, slot := range got {
		if slot.Location() != time.UTC {
			t.Errorf("slot %d not in UTC: %v", i, slot)
		}
	}
	if !got[0].Equal(start) {
		t.Errorf("first slot changed instant: %v vs %v", got[0], start)
	}
}

func TestSlotStartsWindowCountMatchesDuration(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for hours := 1; hours <= 24; hours++ {
		end := start.Add(time.Duration(hours) * time.Hour)
		if got := len(SlotStarts(start, end)); got != hours*2 {
			t.Fatalf("%dh window: expected %d slots, got %d", hours, hours*2, got)
		}
	}
}
