// Package gate implements the sensitive-settings write gate: profile fields
// like email and date of birth may only be written inside a short unlock
// window opened by verifying a freshly emailed one-time code.
//
// State transitions are pure functions over a State value with the current
// time passed in explicitly, so every timing rule is testable without
// touching the wall clock. Persistence of the state (it lives inside the
// session record) is the caller's concern.
package gate

import (
	"errors"
	"time"
)

var (
	ErrNoCodePending = errors.New("no verification code pending")
	ErrInvalidCode   = errors.New("verification code does not match")
	ErrLocked        = errors.New("sensitive settings are locked")
)

// State is the per-session gate state. The zero value is locked with no
// code pending, which is the correct initial state for a fresh session.
type State struct {
	Verified      bool      `json:"verified"`
	VerifiedUntil time.Time `json:"verified_until,omitzero"`

	PendingCode        string    `json:"pending_code,omitempty"`
	PendingCodeExpires time.Time `json:"pending_code_expires,omitzero"`
}

// IssueCode records a newly generated code with an absolute expiry.
// Any previously pending code is overwritten: at most one code is
// valid per session at a time.
func (s State) IssueCode(code string, now time.Time, ttl time.Duration) State {
	s.PendingCode = code
	s.PendingCodeExpires = now.Add(ttl)
	return s
}

// Verify checks a submitted code against the pending one.
//
// A missing or expired pending code fails with ErrNoCodePending; expiry is
// strict, so a code submitted at exactly its expiry instant still counts.
// A mismatch fails with ErrInvalidCode and leaves the pending code in
// place, so wrong guesses do not consume it.
//
// On success the pending code is cleared before the unlock window is set:
// a verified code can never be replayed.
func (s State) Verify(submitted string, now time.Time, unlockWindow time.Duration) (State, error) {
	if s.PendingCode == "" || now.After(s.PendingCodeExpires) {
		return s, ErrNoCodePending
	}

	if submitted != s.PendingCode {
		return s, ErrInvalidCode
	}

	s.PendingCode = ""
	s.PendingCodeExpires = time.Time{}
	s.Verified = true
	s.VerifiedUntil = now.Add(unlockWindow)

	return s, nil
}

// Lock drops any unlock window. It is total and idempotent: locking an
// already-locked state is a no-op. A pending code, if any, survives a
// lock - only the write capability is revoked.
func (s State) Lock() State {
	s.Verified = false
	s.VerifiedUntil = time.Time{}
	return s
}

// Unlocked reports whether a sensitive write is currently permitted.
// This is checked at write time on every call, independent of how the
// flag was last set.
func (s State) Unlocked(now time.Time) bool {
	return s.Verified && now.Before(s.VerifiedUntil)
}

// CheckWrite is the write-time guard: ErrLocked when the unlock
// window is missing or has elapsed.
func (s State) CheckWrite(now time.Time) error {
	if !s.Unlocked(now) {
		return ErrLocked
	}
	return nil
}
