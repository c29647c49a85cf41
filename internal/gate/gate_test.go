package gate_test

import (
	"testing"
	"time"

	"github.com/finsight/gateway/internal/gate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

const (
	otpTTL       = 5 * time.Minute
	unlockWindow = 10 * time.Minute
)

func TestZeroStateIsLocked(t *testing.T) {
	var s gate.State

	assert.False(t, s.Unlocked(t0))
	assert.ErrorIs(t, s.CheckWrite(t0), gate.ErrLocked)
}

func TestVerifyWithoutIssuedCode(t *testing.T) {
	var s gate.State

	_, err := s.Verify("123456", t0, unlockWindow)
	assert.ErrorIs(t, err, gate.ErrNoCodePending)
}

func TestIssueThenVerify(t *testing.T) {
	s := gate.State{}.IssueCode("123456", t0, otpTTL)

	// wrong guess does not consume the pending code
	_, err := s.Verify("000000", t0.Add(time.Minute), unlockWindow)
	require.ErrorIs(t, err, gate.ErrInvalidCode)

	s, err = s.Verify("123456", t0.Add(2*time.Minute), unlockWindow)
	require.NoError(t, err)

	assert.True(t, s.Unlocked(t0.Add(11*time.Minute)))
	assert.False(t, s.Unlocked(t0.Add(12*time.Minute)))
	assert.ErrorIs(t, s.CheckWrite(t0.Add(13*time.Minute)), gate.ErrLocked)
}

func TestVerifiedCodeIsSingleUse(t *testing.T) {
	s := gate.State{}.IssueCode("654321", t0, otpTTL)

	s, err := s.Verify("654321", t0.Add(time.Minute), unlockWindow)
	require.NoError(t, err)

	// same code again: the pending fields were cleared on success
	_, err = s.Verify("654321", t0.Add(2*time.Minute), unlockWindow)
	assert.ErrorIs(t, err, gate.ErrNoCodePending)
}

func TestVerifyAfterExpiry(t *testing.T) {
	s := gate.State{}.IssueCode("123456", t0, otpTTL)

	// expiry is strict: the code is usable at exactly now+ttl
	got, err := s.Verify("123456", t0.Add(otpTTL), unlockWindow)
	require.NoError(t, err)
	assert.True(t, got.Unlocked(t0.Add(otpTTL)))

	_, err = s.Verify("123456", t0.Add(otpTTL+time.Second), unlockWindow)
	assert.ErrorIs(t, err, gate.ErrNoCodePending)
}

func TestIssueOverwritesPendingCode(t *testing.T) {
	s := gate.State{}.IssueCode("111111", t0, otpTTL)
	s = s.IssueCode("222222", t0.Add(time.Minute), otpTTL)

	_, err := s.Verify("111111", t0.Add(2*time.Minute), unlockWindow)
	assert.ErrorIs(t, err, gate.ErrInvalidCode)

	s, err = s.Verify("222222", t0.Add(2*time.Minute), unlockWindow)
	require.NoError(t, err)
	assert.True(t, s.Unlocked(t0.Add(2*time.Minute)))
}

func TestLockIsTotalAndIdempotent(t *testing.T) {
	states := []gate.State{
		{},
		gate.State{}.IssueCode("123456", t0, otpTTL),
		mustVerified(t),
	}

	for _, s := range states {
		locked := s.Lock()
		assert.False(t, locked.Unlocked(t0))
		assert.Equal(t, locked, locked.Lock())
	}
}

func TestLockKeepsPendingCode(t *testing.T) {
	s := gate.State{}.IssueCode("123456", t0, otpTTL).Lock()

	s, err := s.Verify("123456", t0.Add(time.Minute), unlockWindow)
	require.NoError(t, err)
	assert.True(t, s.Unlocked(t0.Add(time.Minute)))
}

func TestUnlockWindowNotRenewedByAnything(t *testing.T) {
	s := mustVerified(t) // window ends at t0 + 1min + unlockWindow

	// further failed verifies do not move the window
	_, err := s.Verify("999999", t0.Add(2*time.Minute), unlockWindow)
	require.ErrorIs(t, err, gate.ErrNoCodePending)

	assert.False(t, s.Unlocked(t0.Add(time.Minute+unlockWindow)))
}

func mustVerified(t *testing.T) gate.State {
	t.Helper()

	s := gate.State{}.IssueCode("123456", t0, otpTTL)
	s, err := s.Verify("123456", t0.Add(time.Minute), unlockWindow)
	require.NoError(t, err)

	return s
}
