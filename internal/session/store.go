package session

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"log"
	"sync"
	"time"
)

var (
	// ErrBadRequest means the login form was missing a field.
	ErrBadRequest = errors.New("login details not provided")
	// ErrUnauthorized covers bad credentials and missing, expired or
	// mismatched tokens alike.
	ErrUnauthorized = errors.New("invalid token")
)

// tokenBytes is the amount of randomness behind a session token; the
// token itself is its hex encoding.
const tokenBytes = 50

// Store holds the single admin session. At most one session is live at
// a time; the mutex makes check-expiry-then-refresh atomic so two
// concurrent logins always agree on one token.
type Store struct {
	adminID string
	adminPW string
	ttl     time.Duration
	now     func() time.Time

	mu      sync.Mutex
	token   string
	created time.Time
}

func NewStore(adminID, adminPW string, ttl time.Duration) *Store {
	return &Store{
		adminID: adminID,
		adminPW: adminPW,
		ttl:     ttl,
		now:     time.Now,
	}
}

func newToken() string {
	b := make([]byte, tokenBytes)
	rand.Read(b) // never fails as of go 1.24
	return hex.EncodeToString(b)
}

// Login checks the credentials against the configured secrets and
// returns the live token, minting a fresh one when no session exists
// or the current one has expired. Repeated logins before expiry hand
// back the same token.
func (s *Store) Login(username, password string) (string, error) {
	if username == "" || password == "" {
		return "", ErrBadRequest
	}

	idOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.adminID)) == 1
	pwOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.adminPW)) == 1
	if !idOK || !pwOK {
		return "", ErrUnauthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" || s.expiredLocked() {
		s.token = newToken()
		s.created = s.now()
		log.Printf("admin session issued at %s", s.created.Format(time.RFC3339))
	}
	return s.token, nil
}

// Validate succeeds only for the exact live token within its TTL.
func (s *Store) Validate(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.matchesLocked(token) {
		return ErrUnauthorized
	}
	return nil
}

// Logout destroys the session. It demands a valid token: logging out
// with a stale or wrong token fails instead of silently no-opping.
func (s *Store) Logout(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.matchesLocked(token) {
		return ErrUnauthorized
	}
	s.token = ""
	s.created = time.Time{}
	log.Print("admin session destroyed")
	return nil
}

func (s *Store) matchesLocked(token string) bool {
	if s.token == "" || s.expiredLocked() {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) == 1
}

func (s *Store) expiredLocked() bool {
	return s.now().After(s.created.Add(s.ttl))
}
