package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"evreserve/internal/models"
	"evreserve/internal/repository"
)

var errNoCacheEntry = errors.New("no cache entry")

// fakeStore mirrors the storage semantics the Postgres repository provides:
// a global creation lock, the (resource, slot) uniqueness backstop, and the
// plate interval overlap check inside the same critical section.
type fakeStore struct {
	mu           sync.Mutex
	resources    map[int64]models.Resource
	reservations map[string]*models.Reservation
	// resourceID -> slotStart unix nanos -> owning reservation id
	slots  map[int64]map[int64]string
	legacy map[string]bool
}

func newFakeStore(resourceIDs ...int64) *fakeStore {
	s := &fakeStore{
		resources:    make(map[int64]models.Resource),
		reservations: make(map[string]*models.Reservation),
		slots:        make(map[int64]map[int64]string),
		legacy:       make(map[string]bool),
	}
	for _, id := range resourceIDs {
		s.resources[id] = models.Resource{ID: id, Name: "charger"}
		s.slots[id] = make(map[int64]string)
	}
	return s
}

func (s *fakeStore) Create(_ context.Context, res *models.Reservation, slotStarts []time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.resources[res.ResourceID]; !ok {
		return repository.ErrResourceNotFound
	}
	for _, slot := range slotStarts {
		if _, taken := s.slots[res.ResourceID][slot.UnixNano()]; taken {
			return repository.ErrResourceOverlap
		}
	}
	for _, other := range s.reservations {
		if other.PlateNormalized == res.PlateNormalized &&
			other.Status != models.StatusCancelled &&
			other.Overlaps(res.StartTime, res.EndTime) {
			return repository.ErrPlateOverlap
		}
	}

	now := time.Now().UTC()
	res.CreatedAt = now
	res.UpdatedAt = now
	stored := *res
	s.reservations[res.ID] = &stored
	for _, slot := range slotStarts {
		s.slots[res.ResourceID][slot.UnixNano()] = res.ID
	}
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, id string) (*models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.reservations[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	copied := *res
	return &copied, nil
}

func (s *fakeStore) ListByWindow(_ context.Context, start, end time.Time, resourceID int64) ([]models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Reservation
	for _, res := range s.reservations {
		if res.StartTime.Before(start) || !res.StartTime.Before(end) {
			continue
		}
		if resourceID != 0 && res.ResourceID != resourceID {
			continue
		}
		out = append(out, *res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (s *fakeStore) ListByOwner(_ context.Context, email, plateNormalized string) ([]models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Reservation
	for _, res := range s.reservations {
		if email != "" && !strings.EqualFold(res.ContactEmail, email) {
			continue
		}
		if plateNormalized != "" && res.PlateNormalized != plateNormalized {
			continue
		}
		out = append(out, *res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out, nil
}

func (s *fakeStore) FindActiveAt(_ context.Context, plateNormalized string, at time.Time) (*models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, res := range s.reservations {
		if res.PlateNormalized == plateNormalized && res.ActiveAt(at) {
			copied := *res
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) DeleteByID(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(id), nil
}

func (s *fakeStore) DeleteByOwner(_ context.Context, id, email, plateNormalized string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, ok := s.reservations[id]
	if !ok {
		return false, nil
	}
	if email != "" && !strings.EqualFold(res.ContactEmail, email) {
		return false, nil
	}
	if plateNormalized != "" && res.PlateNormalized != plateNormalized {
		return false, nil
	}
	return s.remove(id), nil
}

func (s *fakeStore) remove(id string) bool {
	res, ok := s.reservations[id]
	if !ok {
		return false
	}
	delete(s.reservations, id)
	for slot, owner := range s.slots[res.ResourceID] {
		if owner == id {
			delete(s.slots[res.ResourceID], slot)
		}
	}
	return true
}

func (s *fakeStore) ListLegacy(_ context.Context) ([]models.ReservationWithSlots, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.ReservationWithSlots
	for id := range s.reservations {
		if s.legacy[id] {
			out = append(out, s.withSlots(id))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) ListActiveWithSlots(_ context.Context) ([]models.ReservationWithSlots, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.ReservationWithSlots
	for id, res := range s.reservations {
		if res.Status != models.StatusCancelled && !s.legacy[id] {
			out = append(out, s.withSlots(id))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) withSlots(id string) models.ReservationWithSlots {
	res := s.reservations[id]
	row := models.ReservationWithSlots{Reservation: *res}
	for slot, owner := range s.slots[res.ResourceID] {
		if owner == id {
			row.SlotStarts = append(row.SlotStarts, time.Unix(0, slot).UTC())
		}
	}
	sort.Slice(row.SlotStarts, func(i, j int) bool { return row.SlotStarts[i].Before(row.SlotStarts[j]) })
	return row
}

func (s *fakeStore) RewriteTimes(_ context.Context, rewrite repository.TimeRewrite) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, ok := s.reservations[rewrite.ReservationID]
	if !ok {
		return repository.ErrReservationNotFound
	}

	for _, slot := range rewrite.Slots {
		if owner, taken := s.slots[res.ResourceID][slot.New.UnixNano()]; taken && owner != res.ID {
			return repository.ErrSlotConflict
		}
	}

	for _, slot := range rewrite.Slots {
		delete(s.slots[res.ResourceID], slot.Old.UnixNano())
	}
	for _, slot := range rewrite.Slots {
		s.slots[res.ResourceID][slot.New.UnixNano()] = res.ID
	}
	res.StartTime = rewrite.StartTime
	res.EndTime = rewrite.EndTime
	res.CreatedAt = rewrite.CreatedAt
	res.UpdatedAt = rewrite.UpdatedAt
	delete(s.legacy, res.ID)
	return nil
}

func (s *fakeStore) InsertSlots(_ context.Context, reservationID string, resourceID int64, slotStarts []time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, slot := range slotStarts {
		if owner, taken := s.slots[resourceID][slot.UnixNano()]; taken && owner != reservationID {
			return repository.ErrSlotConflict
		}
	}
	for _, slot := range slotStarts {
		s.slots[resourceID][slot.UnixNano()] = reservationID
	}
	return nil
}

// EnsureSeed and List satisfy ResourceStore.
func (s *fakeStore) EnsureSeed(_ context.Context, names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for idx, name := range names {
		id := int64(idx + 1)
		if _, ok := s.resources[id]; !ok {
			s.resources[id] = models.Resource{ID: id, Name: name}
			s.slots[id] = make(map[int64]string)
		}
	}
	return nil
}

func (s *fakeStore) List(_ context.Context) ([]models.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Resource
	for _, res := range s.resources {
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// slotCount reports how many slot rows a resource currently holds.
func (s *fakeStore) slotCount(resourceID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots[resourceID])
}

// markLegacy flags a stored reservation as carrying wall-clock values.
func (s *fakeStore) markLegacy(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.legacy[id] = true
}

// dropSlot removes one slot row, simulating a lost record.
func (s *fakeStore) dropSlot(resourceID int64, slotStart time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots[resourceID], slotStart.UnixNano())
}

// snapshot returns a copy of the stored reservation.
func (s *fakeStore) snapshot(id string) (models.Reservation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.reservations[id]
	if !ok {
		return models.Reservation{}, false
	}
	return *res, true
}

// fakeCache is an in-memory ActiveCache.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string]models.Reservation
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]models.Reservation)}
}

func (c *fakeCache) Save(_ context.Context, res *models.Reservation) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[res.PlateNormalized] = *res
	return nil
}

func (c *fakeCache) Get(_ context.Context, plateNormalized string) (*models.Reservation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.entries[plateNormalized]
	if !ok {
		return nil, errNoCacheEntry
	}
	copied := res
	return &copied, nil
}

func (c *fakeCache) Delete(_ context.Context, plateNormalized string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, plateNormalized)
	return nil
}

// fakeBroadcaster records broadcast events.
type fakeBroadcaster struct {
	mu     sync.Mutex
	events []ReservationEvent
}

func (b *fakeBroadcaster) Broadcast(v any) {
	event, ok := v.(ReservationEvent)
	if !ok {
		return
	}
	b.mu.Lock()
	b.events = append(b.events, event)
	b.mu.Unlock()
}

func (b *fakeBroadcaster) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, event := range b.events {
		out = append(out, event.Type)
	}
	return out
}
