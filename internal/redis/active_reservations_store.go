package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"evreserve/internal/models"
)

// ActiveStore caches the most recent confirmed reservation per normalized
// plate for the active-at-instant lookup. Entries are advisory: readers must
// re-check the window before trusting a hit, and every miss or error falls
// through to Postgres.
type ActiveStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewActiveStore returns redis-backed store.
func NewActiveStore(client *redis.Client, ttl time.Duration) *ActiveStore {
	return &ActiveStore{client: client, ttl: ttl}
}

func (s *ActiveStore) key(plateNormalized string) string {
	return fmt.Sprintf("reservations:active:%s", plateNormalized)
}

// Save caches the reservation under its normalized plate. The TTL never
// exceeds the remaining reservation window.
func (s *ActiveStore) Save(ctx context.Context, res *models.Reservation) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}

	ttl := s.ttl
	if remaining := time.Until(res.EndTime); remaining > 0 && remaining < ttl {
		ttl = remaining
	}
	return s.client.Set(ctx, s.key(res.PlateNormalized), data, ttl).Err()
}

// Get returns the cached reservation for a plate, redis.Nil on miss.
func (s *ActiveStore) Get(ctx context.Context, plateNormalized string) (*models.Reservation, error) {
	result, err := s.client.Get(ctx, s.key(plateNormalized)).Result()
	if err != nil {
		return nil, err
	}
	var res models.Reservation
	if err := json.Unmarshal([]byte(result), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Delete drops the cached entry for a plate.
func (s *ActiveStore) Delete(ctx context.Context, plateNormalized string) error {
	return s.client.Del(ctx, s.key(plateNormalized)).Err()
}
