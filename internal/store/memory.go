package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/weather-500-years/internal/weather"
)

var (
	// ErrNotFound is returned when no cached normal is available for a location and day.
	ErrNotFound = errors.New("no cached normal for location")
)

type entry struct {
	normal   weather.ClimatologyNormal
	storedAt time.Time
}

// MemoryStore is a concurrency-safe in-memory cache of climatological normals,
// keyed by rounded coordinates and calendar day.
type MemoryStore struct {
	mu sync.RWMutex

	// key: location key + month-day
	data map[string]entry

	// retention configuration
	maxEntries int           // max cached normals (0 = unlimited)
	maxAge     time.Duration // max age of an entry (0 = unlimited)

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxEntries is <= 0, it is treated as unlimited.
func NewMemoryStore(maxEntries int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]entry),
		maxEntries: maxEntries,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

func key(loc weather.Location, md weather.MonthDay) string {
	return loc.Key() + ":" + md.String()
}

// SaveNormal stores a normal and enforces retention.
func (s *MemoryStore) SaveNormal(loc weather.Location, normal weather.ClimatologyNormal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.data[key(loc, normal.Date)] = entry{normal: normal, storedAt: now}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := now.Add(-s.maxAge)
		for k, e := range s.data {
			if e.storedAt.Before(cutoff) {
				delete(s.data, k)
			}
		}
	}

	// Enforce retention by count, evicting the oldest entries.
	for s.maxEntries > 0 && len(s.data) > s.maxEntries {
		var (
			oldestKey string
			oldestAt  time.Time
		)
		for k, e := range s.data {
			if oldestKey == "" || e.storedAt.Before(oldestAt) {
				oldestKey, oldestAt = k, e.storedAt
			}
		}
		delete(s.data, oldestKey)
	}
}

// GetNormal returns the cached normal for a location and day if it has not expired.
func (s *MemoryStore) GetNormal(loc weather.Location, md weather.MonthDay) (weather.ClimatologyNormal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[key(loc, md)]
	if !ok {
		return weather.ClimatologyNormal{}, ErrNotFound
	}
	if s.maxAge > 0 && s.now().Sub(e.storedAt) > s.maxAge {
		return weather.ClimatologyNormal{}, ErrNotFound
	}
	return e.normal, nil
}

// Len returns the number of cached normals.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
