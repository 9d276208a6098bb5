package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"evreserve/internal/models"
)

// ReservationRepository owns the transactional create/cancel/lookup
// operations on reservations and their slot rows. It is the only component
// that mutates persisted booking state.
type ReservationRepository struct {
	db          *sql.DB
	lockTimeout time.Duration
}

// NewReservationRepository returns repository with the configured lock-wait bound.
func NewReservationRepository(db *sql.DB, lockTimeout time.Duration) *ReservationRepository {
	if lockTimeout <= 0 {
		lockTimeout = 3 * time.Second
	}
	return &ReservationRepository{db: db, lockTimeout: lockTimeout}
}

const reservationColumns = `
	id, resource_id, plate, plate_normalized, start_time, end_time,
	status, contact_email, created_at, updated_at
`

// Create runs the full booking protocol in one transaction: an exclusive
// row lock on the resource, both conflict checks against the locked
// snapshot, then the atomic reservation + slot insert. The caller provides
// a reservation with canonical UTC times and the materialized slot starts.
func (r *ReservationRepository) Create(ctx context.Context, res *models.Reservation, slotStarts []time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// lock_timeout does not accept bind parameters; the value is a trusted
	// config duration.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = %d", r.lockTimeout.Milliseconds())); err != nil {
		return err
	}

	if err := r.lockResource(ctx, tx, res.ResourceID); err != nil {
		return mapCreateError(err)
	}
	if err := r.checkResourceOverlap(ctx, tx, res.ResourceID, slotStarts); err != nil {
		return mapCreateError(err)
	}
	if err := r.lockPlateConflicts(ctx, tx, res.PlateNormalized, res.StartTime, res.EndTime); err != nil {
		return mapCreateError(err)
	}

	const insertReservation = `
		INSERT INTO reservations (
			id, resource_id, plate, plate_normalized, start_time, end_time,
			status, contact_email, times_in_utc, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), TRUE, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err = tx.QueryRowContext(ctx, insertReservation,
		res.ID,
		res.ResourceID,
		res.Plate,
		res.PlateNormalized,
		res.StartTime,
		res.EndTime,
		res.Status,
		res.ContactEmail,
	).Scan(&res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return mapCreateError(err)
	}

	const insertSlot = `
		INSERT INTO reservation_slots (reservation_id, resource_id, slot_start)
		VALUES ($1, $2, $3)
	`
	for _, slotStart := range slotStarts {
		if _, err := tx.ExecContext(ctx, insertSlot, res.ID, res.ResourceID, slotStart); err != nil {
			return mapCreateError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return mapCreateError(err)
	}
	return nil
}

// lockResource takes the exclusive per-resource lock that serializes all
// concurrent creation attempts against the same resource.
func (r *ReservationRepository) lockResource(ctx context.Context, tx *sql.Tx, resourceID int64) error {
	var id int64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM resources WHERE id = $1 FOR UPDATE`, resourceID,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrResourceNotFound
	}
	return err
}

// checkResourceOverlap rejects when any candidate slot already exists for
// the resource among non-retired slot rows.
func (r *ReservationRepository) checkResourceOverlap(ctx context.Context, tx *sql.Tx, resourceID int64, slotStarts []time.Time) error {
	if len(slotStarts) == 0 {
		return nil
	}

	const query = `
		SELECT EXISTS (
			SELECT 1
			FROM reservation_slots
			WHERE resource_id = $1 AND slot_start = ANY($2::timestamptz[])
		)
	`
	var conflict bool
	if err := tx.QueryRowContext(ctx, query, resourceID, slotStarts).Scan(&conflict); err != nil {
		return err
	}
	if conflict {
		return ErrResourceOverlap
	}
	return nil
}

// lockPlateConflicts locks every confirmed reservation of the same vehicle
// that intersects the candidate window, across all resources, and rejects
// if any exists. The row locks hold until the transaction ends.
func (r *ReservationRepository) lockPlateConflicts(ctx context.Context, tx *sql.Tx, plateNormalized string, start, end time.Time) error {
	const query = `
		SELECT id
		FROM reservations
		WHERE plate_normalized = $1
		  AND status <> $2
		  AND start_time < $3
		  AND end_time > $4
		FOR UPDATE
	`
	rows, err := tx.QueryContext(ctx, query, plateNormalized, models.StatusCancelled, end, start)
	if err != nil {
		return err
	}
	defer rows.Close()

	if rows.Next() {
		return ErrPlateOverlap
	}
	return rows.Err()
}

// GetByID fetches a single reservation.
func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	res, err := scanReservation(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	return res, err
}

// ListByWindow returns reservations starting inside [start, end), optionally
// filtered by resource, ordered by start time ascending.
func (r *ReservationRepository) ListByWindow(ctx context.Context, start, end time.Time, resourceID int64) ([]models.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE start_time >= $1 AND start_time < $2`
	args := []any{start, end}
	if resourceID != 0 {
		query += ` AND resource_id = $3`
		args = append(args, resourceID)
	}
	query += ` ORDER BY start_time ASC`

	return r.queryReservations(ctx, query, args...)
}

// ListByOwner returns reservations matching the owner identity, ordered by
// start time descending. At least one of email/plate must be non-empty;
// the service layer validates that.
func (r *ReservationRepository) ListByOwner(ctx context.Context, email, plateNormalized string) ([]models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations`
	var (
		conditions []string
		args       []any
	)
	if email != "" {
		args = append(args, strings.ToLower(email))
		conditions = append(conditions, fmt.Sprintf("LOWER(contact_email) = $%d", len(args)))
	}
	if plateNormalized != "" {
		args = append(args, plateNormalized)
		conditions = append(conditions, fmt.Sprintf("plate_normalized = $%d", len(args)))
	}
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY start_time DESC`

	return r.queryReservations(ctx, query, args...)
}

// FindActiveAt returns the reservation whose window contains the instant for
// the given plate, or nil when there is none. By construction at most one
// can exist.
func (r *ReservationRepository) FindActiveAt(ctx context.Context, plateNormalized string, at time.Time) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE plate_normalized = $1
		  AND status <> $2
		  AND start_time <= $3
		  AND end_time > $3
		ORDER BY start_time ASC
		LIMIT 1`
	res, err := scanReservation(r.db.QueryRowContext(ctx, query, plateNormalized, models.StatusCancelled, at))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return res, err
}

// DeleteByID removes a reservation and cascades its slots; reports whether a
// row existed.
func (r *ReservationRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// DeleteByOwner removes the reservation only when the supplied identity
// matches the stored record. Reports whether a matching row was removed.
func (r *ReservationRepository) DeleteByOwner(ctx context.Context, id, email, plateNormalized string) (bool, error) {
	query := `DELETE FROM reservations WHERE id = $1`
	args := []any{id}
	if email != "" {
		args = append(args, strings.ToLower(email))
		query += fmt.Sprintf(" AND LOWER(contact_email) = $%d", len(args))
	}
	if plateNormalized != "" {
		args = append(args, plateNormalized)
		query += fmt.Sprintf(" AND plate_normalized = $%d", len(args))
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *ReservationRepository) queryReservations(ctx context.Context, query string, args ...any) ([]models.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []models.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reservations, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*models.Reservation, error) {
	var (
		res   models.Reservation
		email sql.NullString
	)
	err := row.Scan(
		&res.ID,
		&res.ResourceID,
		&res.Plate,
		&res.PlateNormalized,
		&res.StartTime,
		&res.EndTime,
		&res.Status,
		&email,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	res.ContactEmail = email.String
	return &res, nil
}
