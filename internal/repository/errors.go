package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Domain failure kinds surfaced by the reservation store. Raw storage
// constraint violations never leave this package.
var (
	// ErrResourceOverlap means the candidate window collides with an
	// existing booking on the same resource.
	ErrResourceOverlap = errors.New("reservation overlaps an existing booking on this resource")
	// ErrPlateOverlap means the vehicle already holds an overlapping
	// booking, possibly on a different resource.
	ErrPlateOverlap = errors.New("vehicle already has a reservation in this window")
	// ErrLockTimeout means the resource or plate lock could not be acquired
	// within the configured bound. Safe to retry with backoff.
	ErrLockTimeout = errors.New("timed out waiting for reservation lock")
	// ErrResourceNotFound indicates an unknown resource id.
	ErrResourceNotFound = errors.New("resource not found")
	// ErrReservationNotFound indicates a missing reservation row.
	ErrReservationNotFound = errors.New("reservation not found")
	// ErrSlotConflict marks a per-row unique violation hit by a
	// reconciliation batch; callers log and skip the row.
	ErrSlotConflict = errors.New("slot already occupied")
)

// Postgres error codes this package reacts to.
const (
	pgUniqueViolation  = "23505"
	pgLockNotAvailable = "55P03"
)

// mapCreateError converts storage-level failures raised during reservation
// creation into domain errors. A unique violation on (resource_id,
// slot_start) is the structural backstop firing, which by contract reads as
// a resource overlap.
func mapCreateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrResourceOverlap
		case pgLockNotAvailable:
			return ErrLockTimeout
		}
	}
	return err
}

// mapBatchError converts storage failures raised by reconciliation writes.
func mapBatchError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrSlotConflict
	}
	return err
}
