package memory

import (
	"context"
	"sync"
	"time"
)

// CooldownStore keeps retry cooldowns in process memory; they are lost on restart.
type CooldownStore struct {
	clock func() time.Time

	mu    sync.Mutex
	until map[string]time.Time
}

func NewCooldownStore() *CooldownStore {
	return NewCooldownStoreWithClock(time.Now)
}

// NewCooldownStoreWithClock is used by tests for deterministic expiry.
func NewCooldownStoreWithClock(now func() time.Time) *CooldownStore {
	return &CooldownStore{
		clock: now,
		until: make(map[string]time.Time),
	}
}

func (s *CooldownStore) StartCooldown(_ context.Context, userID string, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	s.pruneLocked(now)
	s.until[userID] = now.Add(d)
	return nil
}

func (s *CooldownStore) Remaining(_ context.Context, userID string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.until[userID]
	if !ok {
		return 0, nil
	}
	remaining := until.Sub(s.clock())
	if remaining <= 0 {
		delete(s.until, userID)
		return 0, nil
	}
	return remaining, nil
}

func (s *CooldownStore) pruneLocked(now time.Time) {
	for userID, until := range s.until {
		if !until.After(now) {
			delete(s.until, userID)
		}
	}
}
