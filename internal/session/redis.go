package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// RedisStore persists sessions as JSON values with a TTL matching the
// session's remaining life, so redis reaps expired sessions on its own.
type RedisStore struct {
	rdb   *redis.Client
	ttl   time.Duration
	locks keyedLocks
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Create(ctx context.Context, userID, email string) (Session, error) {
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

	if err := s.write(ctx, sess); err != nil {
		return Session{}, err
	}

	return sess, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (Session, error) {
	raw, err := s.rdb.Get(ctx, keyPrefix+id).Bytes()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrNotFound
		}

		return Session{}, err
	}

	var sess Session

	if err := json.Unmarshal(raw, &sess); err != nil {
		return Session{}, err
	}

	// redis TTL should have reaped this already, but the record is
	// authoritative
	if sess.Expired(time.Now().UTC()) {
		_ = s.rdb.Del(ctx, keyPrefix+id).Err()
		return Session{}, ErrNotFound
	}

	return sess, nil
}

func (s *RedisStore) Update(ctx context.Context, id string, mutate func(*Session) error) (Session, error) {
	m := s.locks.lock(id)
	defer m.Unlock()

	sess, err := s.Get(ctx, id)

	if err != nil {
		return Session{}, err
	}

	if err := mutate(&sess); err != nil {
		return Session{}, err
	}

	if err := s.write(ctx, sess); err != nil {
		return Session{}, err
	}

	return sess, nil
}

// Touch slides the expiry forward to now + ttl.
func (s *RedisStore) Touch(ctx context.Context, id string) error {
	_, err := s.Update(ctx, id, func(sess *Session) error {
		sess.ExpiresAt = time.Now().UTC().Add(s.ttl)
		return nil
	})

	if errors.Is(err, ErrNotFound) {
		return nil
	}

	return err
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, keyPrefix+id).Err()
}

func (s *RedisStore) write(ctx context.Context, sess Session) error {
	raw, err := json.Marshal(sess)

	if err != nil {
		return err
	}

	ttl := time.Until(sess.ExpiresAt)

	if ttl <= 0 {
		return s.rdb.Del(ctx, keyPrefix+sess.ID).Err()
	}

	return s.rdb.Set(ctx, keyPrefix+sess.ID, raw, ttl).Err()
}
