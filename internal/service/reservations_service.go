package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"evreserve/internal/models"
	"evreserve/internal/plate"
	"evreserve/internal/repository"
	"evreserve/internal/timeslot"
	"evreserve/internal/timeutil"
)

// ReservationStore is the transactional persistence contract the service
// drives. *repository.ReservationRepository is the production implementation.
type ReservationStore interface {
	Create(ctx context.Context, res *models.Reservation, slotStarts []time.Time) error
	GetByID(ctx context.Context, id string) (*models.Reservation, error)
	ListByWindow(ctx context.Context, start, end time.Time, resourceID int64) ([]models.Reservation, error)
	ListByOwner(ctx context.Context, email, plateNormalized string) ([]models.Reservation, error)
	FindActiveAt(ctx context.Context, plateNormalized string, at time.Time) (*models.Reservation, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
	DeleteByOwner(ctx context.Context, id, email, plateNormalized string) (bool, error)
	ListLegacy(ctx context.Context) ([]models.ReservationWithSlots, error)
	RewriteTimes(ctx context.Context, rewrite repository.TimeRewrite) error
	ListActiveWithSlots(ctx context.Context) ([]models.ReservationWithSlots, error)
	InsertSlots(ctx context.Context, reservationID string, resourceID int64, slotStarts []time.Time) error
}

// ResourceStore lists and seeds bookable resources.
type ResourceStore interface {
	EnsureSeed(ctx context.Context, names []string) error
	List(ctx context.Context) ([]models.Resource, error)
}

// ActiveCache caches the active reservation per plate. May be absent.
type ActiveCache interface {
	Save(ctx context.Context, res *models.Reservation) error
	Get(ctx context.Context, plateNormalized string) (*models.Reservation, error)
	Delete(ctx context.Context, plateNormalized string) error
}

// Broadcaster pushes reservation lifecycle events to connected listeners.
type Broadcaster interface {
	Broadcast(v any)
}

// Event types pushed over the broadcaster.
const (
	EventReservationCreated = "reservation.created"
	EventReservationDeleted = "reservation.deleted"
)

// ReservationEvent is the broadcast payload.
type ReservationEvent struct {
	Type        string              `json:"type"`
	Reservation *models.Reservation `json:"reservation"`
}

// ReservationsService ties store, cache, event feed and time normalization.
type ReservationsService struct {
	store      ReservationStore
	resources  ResourceStore
	cache      ActiveCache
	events     Broadcaster
	normalizer *timeutil.Normalizer
	logger     *zap.Logger
}

// NewReservationsService builds service. Cache and events may be nil.
func NewReservationsService(
	store ReservationStore,
	resources ResourceStore,
	cache ActiveCache,
	events Broadcaster,
	normalizer *timeutil.Normalizer,
	logger *zap.Logger,
) *ReservationsService {
	return &ReservationsService{
		store:      store,
		resources:  resources,
		cache:      cache,
		events:     events,
		normalizer: normalizer,
		logger:     logger,
	}
}

// CreateReservationInput carries one booking request. Times are absolute
// instants; the HTTP layer resolves zone-naive input through the normalizer
// before they get here.
type CreateReservationInput struct {
	ResourceID   int64
	Plate        string
	StartTime    time.Time
	EndTime      time.Time
	ContactEmail string
}

// CreateReservation runs the booking protocol and returns the persisted
// reservation with canonical UTC timestamps.
func (s *ReservationsService) CreateReservation(ctx context.Context, input CreateReservationInput) (*models.Reservation, error) {
	if input.ResourceID <= 0 {
		return nil, fmt.Errorf("%w: resource id is required", ErrValidation)
	}
	display := plate.Display(input.Plate)
	if display == "" {
		return nil, fmt.Errorf("%w: plate is required", ErrValidation)
	}
	if input.StartTime.IsZero() || input.EndTime.IsZero() {
		return nil, fmt.Errorf("%w: start and end times are required", ErrValidation)
	}

	start := input.StartTime.UTC()
	end := input.EndTime.UTC()
	if !end.After(start) {
		return nil, fmt.Errorf("%w: end time must be after start time", ErrValidation)
	}

	slotStarts := timeslot.SlotStarts(start, end)
	if len(slotStarts) == 0 {
		return nil, fmt.Errorf("%w: window must cover at least one %s slot", ErrValidation, timeslot.Interval)
	}

	res := &models.Reservation{
		ID:              uuid.NewString(),
		ResourceID:      input.ResourceID,
		Plate:           display,
		PlateNormalized: plate.Normalize(input.Plate),
		StartTime:       start,
		EndTime:         end,
		Status:          models.StatusConfirmed,
		ContactEmail:    strings.ToLower(strings.TrimSpace(input.ContactEmail)),
	}

	if err := s.store.Create(ctx, res, slotStarts); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Save(ctx, res); err != nil && !errors.Is(err, redis.Nil) {
			s.logger.Warn("failed to cache reservation", zap.String("id", res.ID), zap.Error(err))
		}
	}
	s.broadcast(EventReservationCreated, res)

	return res, nil
}

// ListReservationsByDate returns the reservations of one business calendar
// day, optionally filtered by resource, ordered by start time ascending.
func (s *ReservationsService) ListReservationsByDate(ctx context.Context, day time.Time, resourceID int64) ([]models.Reservation, error) {
	if day.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrValidation)
	}
	start, end := s.normalizer.DayBoundsUTC(day)
	return s.store.ListByWindow(ctx, start, end, resourceID)
}

// ListReservationsForOwner returns reservations matched by contact email
// (case-insensitive) and/or plate, newest first.
func (s *ReservationsService) ListReservationsForOwner(ctx context.Context, email, rawPlate string) ([]models.Reservation, error) {
	email = strings.TrimSpace(email)
	plateNormalized := plate.Normalize(rawPlate)
	if email == "" && plateNormalized == "" {
		return nil, fmt.Errorf("%w: email or plate is required", ErrValidation)
	}
	return s.store.ListByOwner(ctx, email, plateNormalized)
}

// FindActiveReservation returns the reservation covering the instant for the
// plate, or nil when the vehicle has none. A zero instant means now.
func (s *ReservationsService) FindActiveReservation(ctx context.Context, rawPlate string, at time.Time) (*models.Reservation, error) {
	plateNormalized := plate.Normalize(rawPlate)
	if plateNormalized == "" {
		return nil, fmt.Errorf("%w: plate is required", ErrValidation)
	}
	if at.IsZero() {
		at = time.Now()
	}
	at = at.UTC()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, plateNormalized)
		if err == nil && cached != nil && cached.ActiveAt(at) {
			return cached, nil
		}
		if err != nil && !errors.Is(err, redis.Nil) {
			s.logger.Warn("active reservation cache read failed", zap.Error(err))
		}
	}

	res, err := s.store.FindActiveAt(ctx, plateNormalized, at)
	if err != nil || res == nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Save(ctx, res); err != nil && !errors.Is(err, redis.Nil) {
			s.logger.Warn("failed to cache reservation", zap.String("id", res.ID), zap.Error(err))
		}
	}
	return res, nil
}

// DeleteReservation removes a reservation by id without ownership checks.
// Reports whether a row existed.
func (s *ReservationsService) DeleteReservation(ctx context.Context, id string) (bool, error) {
	res, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrReservationNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	removed, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return false, err
	}
	if removed {
		s.afterDelete(ctx, res)
	}
	return removed, nil
}

// DeleteReservationForOwner removes the reservation only when the supplied
// email or plate matches the stored record, enabling self-service
// cancellation. Reports whether a matching row was removed.
func (s *ReservationsService) DeleteReservationForOwner(ctx context.Context, id, email, rawPlate string) (bool, error) {
	email = strings.TrimSpace(email)
	plateNormalized := plate.Normalize(rawPlate)
	if email == "" && plateNormalized == "" {
		return false, fmt.Errorf("%w: email or plate is required", ErrValidation)
	}

	res, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrReservationNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	removed, err := s.store.DeleteByOwner(ctx, id, email, plateNormalized)
	if err != nil {
		return false, err
	}
	if removed {
		s.afterDelete(ctx, res)
	}
	return removed, nil
}

// ListResources returns all bookable resources.
func (s *ReservationsService) ListResources(ctx context.Context) ([]models.Resource, error) {
	return s.resources.List(ctx)
}

// SeedResources ensures the configured base resources exist.
func (s *ReservationsService) SeedResources(ctx context.Context, names []string) error {
	return s.resources.EnsureSeed(ctx, names)
}

func (s *ReservationsService) afterDelete(ctx context.Context, res *models.Reservation) {
	if s.cache != nil {
		if err := s.cache.Delete(ctx, res.PlateNormalized); err != nil && !errors.Is(err, redis.Nil) {
			s.logger.Warn("failed to invalidate reservation cache", zap.String("id", res.ID), zap.Error(err))
		}
	}
	s.broadcast(EventReservationDeleted, res)
}

func (s *ReservationsService) broadcast(eventType string, res *models.Reservation) {
	if s.events == nil {
		return
	}
	s.events.Broadcast(ReservationEvent{Type: eventType, Reservation: res})
}
