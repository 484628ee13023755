package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"
)

// Store keeps one active code per email address, in process memory.
// Codes expire after the configured TTL and verify at most once.
// Re-requesting overwrites any prior code for that address. Entries are
// lost on restart, which is acceptable for short-lived codes.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

type entry struct {
	code      string
	expiresAt time.Time
}

// NewStore creates a store with the given code lifetime
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// TTL returns the configured code lifetime
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Issue generates a fresh 6-digit code for email, replacing any prior one
func (s *Store) Issue(email string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[email] = entry{
		code:      code,
		expiresAt: s.now().Add(s.ttl),
	}
	return code, nil
}

// Verify consumes the code for email. Success deletes the entry, so a
// second attempt with the same code fails.
func (s *Store) Verify(email, candidate string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[email]
	if !ok {
		return false
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, email)
		return false
	}
	if e.code != candidate {
		return false
	}
	delete(s.entries, email)
	return true
}

// Sweep removes expired entries. Called periodically from a background
// goroutine so abandoned requests do not accumulate.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	now := s.now()
	for email, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, email)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep every interval until stop is closed
func (s *Store) StartSweeper(interval time.Duration, stop <-chan struct{}) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}

// generateCode produces a 6-digit numeric code from crypto/rand
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
