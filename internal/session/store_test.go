package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *time.Time) {
	t.Helper()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore("admin", "hunter2", 7*24*time.Hour)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestLoginIssuesToken(t *testing.T) {
	s, _ := newTestStore(t)

	token, err := s.Login("admin", "hunter2")
	require.NoError(t, err)
	assert.Len(t, token, 100) // 50 random bytes, hex-encoded

	err = s.Validate(token)
	assert.NoError(t, err)
}

func TestRepeatedLoginReturnsSameToken(t *testing.T) {
	s, now := newTestStore(t)

	first, err := s.Login("admin", "hunter2")
	require.NoError(t, err)

	*now = now.Add(6 * 24 * time.Hour)
	second, err := s.Login("admin", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestLoginRefreshesExpiredSession(t *testing.T) {
	s, now := newTestStore(t)

	first, err := s.Login("admin", "hunter2")
	require.NoError(t, err)

	*now = now.Add(8 * 24 * time.Hour)
	require.Error(t, s.Validate(first))

	second, err := s.Login("admin", "hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.NoError(t, s.Validate(second))
	assert.Error(t, s.Validate(first))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Login("admin", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = s.Login("intruder", "hunter2")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLoginRejectsMissingFields(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Login("", "hunter2")
	assert.ErrorIs(t, err, ErrBadRequest)

	_, err = s.Login("admin", "")
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestValidateWithoutSession(t *testing.T) {
	s, _ := newTestStore(t)
	assert.ErrorIs(t, s.Validate(""), ErrUnauthorized)
	assert.ErrorIs(t, s.Validate("whatever"), ErrUnauthorized)
}

func TestValidateExpiry(t *testing.T) {
	s, now := newTestStore(t)

	token, err := s.Login("admin", "hunter2")
	require.NoError(t, err)

	*now = now.Add(7*24*time.Hour - time.Second)
	assert.NoError(t, s.Validate(token))

	*now = now.Add(2 * time.Second)
	assert.ErrorIs(t, s.Validate(token), ErrUnauthorized)
}

func TestLogoutDestroysSession(t *testing.T) {
	s, _ := newTestStore(t)

	token, err := s.Login("admin", "hunter2")
	require.NoError(t, err)

	require.NoError(t, s.Logout(token))
	assert.ErrorIs(t, s.Validate(token), ErrUnauthorized)

	// a fresh login mints a different token
	next, err := s.Login("admin", "hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, token, next)
}

func TestLogoutRejectsWrongToken(t *testing.T) {
	s, _ := newTestStore(t)

	token, err := s.Login("admin", "hunter2")
	require.NoError(t, err)

	assert.ErrorIs(t, s.Logout("not-the-token"), ErrUnauthorized)
	assert.NoError(t, s.Validate(token))
}
