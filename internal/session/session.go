// Package session holds the server-side session records behind the opaque
// browser cookie. A session ties a cookie id to a user plus the ephemeral
// sensitive-settings gate state; nothing about the user is derivable from
// the cookie value itself.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/finsight/gateway/internal/gate"
)

const CookieName = "fs_session"

var ErrNotFound = errors.New("session not found")

type Session struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	Gate      gate.State `json:"gate"`
}

func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Store is the server-side session backend. Update serializes
// read-modify-write cycles per session id, so two tabs racing the gate
// endpoints cannot interleave a read between each other's writes.
type Store interface {
	Create(ctx context.Context, userID, email string) (Session, error)
	Get(ctx context.Context, id string) (Session, error)
	Update(ctx context.Context, id string, mutate func(*Session) error) (Session, error)
	Touch(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// NewID returns a 256-bit random id, hex encoded.
func NewID() (string, error) {
	buf := make([]byte, 32)

	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(buf), nil
}
