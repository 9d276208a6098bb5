package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"evreserve/internal/repository"
	"evreserve/internal/timeslot"
)

// MigrateTimestamps rewrites reservations still carrying business-zone
// wall-clock values as true UTC instants, slots included. Idempotent:
// already-normalized rows are never touched. Per-row unique conflicts are
// logged and skipped so one bad row cannot sink the batch. Returns the
// number of reservations rewritten.
func (s *ReservationsService) MigrateTimestamps(ctx context.Context) (int, error) {
	legacy, err := s.store.ListLegacy(ctx)
	if err != nil {
		return 0, err
	}

	migrated := 0
	for _, row := range legacy {
		rewrite := repository.TimeRewrite{
			ReservationID: row.ID,
			StartTime:     s.normalizer.FromWallClock(row.StartTime),
			EndTime:       s.normalizer.FromWallClock(row.EndTime),
			CreatedAt:     s.normalizer.FromWallClock(row.CreatedAt),
			UpdatedAt:     s.normalizer.FromWallClock(row.UpdatedAt),
		}
		for _, old := range row.SlotStarts {
			rewrite.Slots = append(rewrite.Slots, repository.SlotRewrite{
				Old: old,
				New: s.normalizer.FromWallClock(old),
			})
		}

		if err := s.store.RewriteTimes(ctx, rewrite); err != nil {
			if errors.Is(err, repository.ErrSlotConflict) {
				s.logger.Warn("skipping timestamp migration for reservation",
					zap.String("id", row.ID), zap.Error(err))
				continue
			}
			return migrated, err
		}
		migrated++
	}
	return migrated, nil
}

// ReconcileSlots recomputes the canonical slot set for every non-cancelled
// reservation and inserts the markers missing from storage. Extraneous slots
// are left alone. Idempotent; per-reservation conflicts are logged and
// skipped. Returns the number of reservations repaired.
func (s *ReservationsService) ReconcileSlots(ctx context.Context) (int, error) {
	active, err := s.store.ListActiveWithSlots(ctx)
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, row := range active {
		canonical := timeslot.SlotStarts(row.StartTime, row.EndTime)
		if len(canonical) == 0 {
			continue
		}

		existing := make(map[int64]struct{}, len(row.SlotStarts))
		for _, slot := range row.SlotStarts {
			existing[slot.UnixNano()] = struct{}{}
		}

		var missing []time.Time
		for _, slot := range canonical {
			if _, ok := existing[slot.UnixNano()]; !ok {
				missing = append(missing, slot)
			}
		}
		if len(missing) == 0 {
			continue
		}

		if err := s.store.InsertSlots(ctx, row.ID, row.ResourceID, missing); err != nil {
			if errors.Is(err, repository.ErrSlotConflict) {
				s.logger.Warn("skipping slot reconciliation for reservation",
					zap.String("id", row.ID), zap.Error(err))
				continue
			}
			return repaired, err
		}
		repaired++
	}
	return repaired, nil
}
