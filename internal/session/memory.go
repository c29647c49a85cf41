package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in a map. Used by handler tests and as the
// dev fallback when no redis address is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[string]Session
	locks keyedLocks
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:   ttl,
		items: make(map[string]Session),
	}
}

func (s *MemoryStore) Create(ctx context.Context, userID, email string) (Session, error) {
	id, err := NewID()

	if err != nil {
		return Session{}, err
	}

	now := time.Now().UTC()

	sess := Session{
		ID:        id,
		UserID:    userID,
		Email:     email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	s.items[id] = sess
	s.mu.Unlock()

	return sess, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Session, error) {
	s.mu.RLock()
	sess, ok := s.items[id]
	s.mu.RUnlock()

	if !ok {
		return Session{}, ErrNotFound
	}

	if sess.Expired(time.Now().UTC()) {
		s.mu.Lock()
		delete(s.items, id)
		s.mu.Unlock()
		return Session{}, ErrNotFound
	}

	return sess, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, mutate func(*Session) error) (Session, error) {
	m := s.locks.lock(id)
	defer m.Unlock()

	sess, err := s.Get(ctx, id)

	if err != nil {
		return Session{}, err
	}

	if err := mutate(&sess); err != nil {
		return Session{}, err
	}

	s.mu.Lock()
	s.items[id] = sess
	s.mu.Unlock()

	return sess, nil
}

func (s *MemoryStore) Touch(ctx context.Context, id string) error {
	_, err := s.Update(ctx, id, func(sess *Session) error {
		sess.ExpiresAt = time.Now().UTC().Add(s.ttl)
		return nil
	})

	if err == ErrNotFound {
		return nil
	}

	return err
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()

	return nil
}
