package repository

import (
	"context"
	"time"

	"evreserve/internal/models"
)

// SlotRewrite moves one slot marker during the timestamp migration.
type SlotRewrite struct {
	Old time.Time
	New time.Time
}

// TimeRewrite carries the UTC-corrected values for one legacy reservation.
type TimeRewrite struct {
	ReservationID string
	StartTime     time.Time
	EndTime       time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Slots         []SlotRewrite
}

// ListLegacy returns reservations still flagged as storing business-zone
// wall-clock values, with their slots.
func (r *ReservationRepository) ListLegacy(ctx context.Context) ([]models.ReservationWithSlots, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE times_in_utc = FALSE
		ORDER BY created_at ASC`
	return r.queryWithSlots(ctx, query)
}

// ListActiveWithSlots returns every non-cancelled, already-normalized
// reservation with its slots, for slot reconciliation.
func (r *ReservationRepository) ListActiveWithSlots(ctx context.Context) ([]models.ReservationWithSlots, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE status <> $1 AND times_in_utc = TRUE
		ORDER BY created_at ASC`
	return r.queryWithSlots(ctx, query, models.StatusCancelled)
}

// RewriteTimes applies one reservation's corrected timestamps atomically and
// flips the normalization flag. A unique violation surfaces as
// ErrSlotConflict so the batch can skip the row.
func (r *ReservationRepository) RewriteTimes(ctx context.Context, rewrite TimeRewrite) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const updateReservation = `
		UPDATE reservations
		SET start_time = $2, end_time = $3, created_at = $4, updated_at = $5,
		    times_in_utc = TRUE
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, updateReservation,
		rewrite.ReservationID,
		rewrite.StartTime,
		rewrite.EndTime,
		rewrite.CreatedAt,
		rewrite.UpdatedAt,
	); err != nil {
		return mapBatchError(err)
	}

	const updateSlot = `
		UPDATE reservation_slots
		SET slot_start = $3
		WHERE reservation_id = $1 AND slot_start = $2
	`
	for _, slot := range rewrite.Slots {
		if _, err := tx.ExecContext(ctx, updateSlot, rewrite.ReservationID, slot.Old, slot.New); err != nil {
			return mapBatchError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return mapBatchError(err)
	}
	return nil
}

// InsertSlots adds missing slot rows for an existing reservation. A unique
// violation rolls the batch for this reservation back and surfaces as
// ErrSlotConflict.
func (r *ReservationRepository) InsertSlots(ctx context.Context, reservationID string, resourceID int64, slotStarts []time.Time) error {
	if len(slotStarts) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO reservation_slots (reservation_id, resource_id, slot_start)
		VALUES ($1, $2, $3)
	`
	for _, slotStart := range slotStarts {
		if _, err := tx.ExecContext(ctx, query, reservationID, resourceID, slotStart); err != nil {
			return mapBatchError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return mapBatchError(err)
	}
	return nil
}

func (r *ReservationRepository) queryWithSlots(ctx context.Context, query string, args ...any) ([]models.ReservationWithSlots, error) {
	reservations, err := r.queryReservations(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(reservations) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(reservations))
	index := make(map[string]int, len(reservations))
	result := make([]models.ReservationWithSlots, len(reservations))
	for i, res := range reservations {
		ids = append(ids, res.ID)
		index[res.ID] = i
		result[i] = models.ReservationWithSlots{Reservation: res}
	}

	const slotQuery = `
		SELECT reservation_id, slot_start
		FROM reservation_slots
		WHERE reservation_id = ANY($1::uuid[])
		ORDER BY slot_start ASC
	`
	rows, err := r.db.QueryContext(ctx, slotQuery, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			reservationID string
			slotStart     time.Time
		)
		if err := rows.Scan(&reservationID, &slotStart); err != nil {
			return nil, err
		}
		if i, ok := index[reservationID]; ok {
			result[i].SlotStarts = append(result[i].SlotStarts, slotStart)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
