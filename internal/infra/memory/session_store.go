package memory

import (
	"sync"

	"fanclub-bot/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// One mutex covers the map and is held while Update runs fn; fn must not do I/O.
type SessionStore struct {
	mu           sync.Mutex
	applications map[string]*domain.FanApplication
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		applications: make(map[string]*domain.FanApplication),
	}
}

func (s *SessionStore) Put(app *domain.FanApplication) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, replaced := s.applications[app.UserID]
	s.applications[app.UserID] = app
	return replaced
}

// Get returns a copy so callers cannot mutate stored state outside Update.
func (s *SessionStore) Get(userID string) (*domain.FanApplication, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.applications[userID]
	if !ok {
		return nil, false
	}
	cp := *app
	return &cp, true
}

func (s *SessionStore) Update(userID string, fn func(app *domain.FanApplication) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.applications[userID]
	if !ok {
		return domain.ErrApplicationNotFound
	}
	remove, err := fn(app)
	if err != nil {
		return err
	}
	if remove {
		delete(s.applications, userID)
	}
	return nil
}

func (s *SessionStore) Delete(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.applications, userID)
}

// Len returns the number of active applications.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.applications)
}
