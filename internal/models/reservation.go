package models

import "time"

// Reservation statuses.
const (
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
)

// Reservation books one resource for a half-open UTC window [StartTime, EndTime).
type Reservation struct {
	ID              string    `db:"id" json:"id"`
	ResourceID      int64     `db:"resource_id" json:"resource_id"`
	Plate           string    `db:"plate" json:"plate"`
	PlateNormalized string    `db:"plate_normalized" json:"plate_normalized"`
	StartTime       time.Time `db:"start_time" json:"start_time"`
	EndTime         time.Time `db:"end_time" json:"end_time"`
	Status          string    `db:"status" json:"status"`
	ContactEmail    string    `db:"contact_email" json:"contact_email,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Slot is one 30-minute occupancy marker owned by a reservation. The
// (ResourceID, SlotStart) pair is unique on disk, which is what makes
// double-booking a resource structurally impossible.
type Slot struct {
	ReservationID string    `db:"reservation_id" json:"reservation_id"`
	ResourceID    int64     `db:"resource_id" json:"resource_id"`
	SlotStart     time.Time `db:"slot_start" json:"slot_start"`
}

// ReservationWithSlots bundles a reservation with its slot markers for the
// reconciliation jobs.
type ReservationWithSlots struct {
	Reservation
	SlotStarts []time.Time
}

// Overlaps reports whether the reservation window intersects [start, end).
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return r.StartTime.Before(end) && r.EndTime.After(start)
}

// ActiveAt reports whether the reservation covers the instant and has not
// been cancelled.
func (r *Reservation) ActiveAt(at time.Time) bool {
	return r.Status != StatusCancelled && !r.StartTime.After(at) && r.EndTime.After(at)
}
