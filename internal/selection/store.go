package selection

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/NadavMozeson/typescript-discord-bot/internal/adapter"
)

const (
	// Alphabet tokens are drawn from
	Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	// TokenLength keeps tokens short enough to embed in component ids
	TokenLength = 9
	// DefaultTTL is how long an unconsumed selection stays usable
	DefaultTTL = 10 * time.Minute
	// maxGenerateAttempts bounds collision retries
	maxGenerateAttempts = 32
)

type entry struct {
	payload   Payload
	expiresAt time.Time
}

// Store maps short lived single use tokens to pending choices
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	clock   adapter.Clock
	random  io.Reader
}

// Option customises a Store
type Option func(*Store)

// WithRandom replaces the token entropy source
func WithRandom(r io.Reader) Option {
	return func(s *Store) {
		s.random = r
	}
}

// NewStore creates an empty store. A non-positive ttl falls back to DefaultTTL.
func NewStore(ttl time.Duration, clock adapter.Clock, opts ...Option) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		clock:   clock,
		random:  rand.Reader,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put stores payload under a fresh token with the default ttl
func (s *Store) Put(payload Payload) (string, error) {
	return s.PutWithTTL(payload, s.ttl)
}

// PutWithTTL stores payload under a token that is not held by any live entry
func (s *Store) PutWithTTL(payload Payload, ttl time.Duration) (string, error) {
	if payload == nil {
		return "", fmt.Errorf("nil selection payload")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	for i := 0; i < maxGenerateAttempts; i++ {
		token, err := s.generate()
		if err != nil {
			return "", err
		}
		if existing, ok := s.entries[token]; ok && !existing.expired(now) {
			continue
		}
		s.entries[token] = entry{payload: payload, expiresAt: now.Add(ttl)}
		return token, nil
	}

	return "", fmt.Errorf("failed to generate a unique selection token after %d attempts", maxGenerateAttempts)
}

// TakeOnce removes the token and returns its payload if it had not expired.
// The entry is removed even when expired so a stale token cannot be replayed.
func (s *Store) TakeOnce(token string) (Payload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[token]
	if !ok {
		return nil, false
	}
	delete(s.entries, token)

	if e.expired(s.clock.Now()) {
		return nil, false
	}
	return e.payload, true
}

// Sweep drops every entry past its expiry and returns how many were dropped
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	removed := 0
	for token, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, token)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired ones included until swept
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) generate() (string, error) {
	buf := make([]byte, TokenLength)
	if _, err := io.ReadFull(s.random, buf); err != nil {
		return "", fmt.Errorf("failed to read token entropy: %w", err)
	}
	for i, b := range buf {
		buf[i] = Alphabet[int(b)%len(Alphabet)]
	}
	return string(buf), nil
}

func (e entry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}
