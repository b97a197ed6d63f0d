package verification

import (
	"log"
	"sync"
	"time"
)

// Production defaults. Tests pass smaller values to the constructor.
const (
	DefaultCodeTTL       = 10 * time.Minute
	DefaultMaxAttempts   = 3
	DefaultSweepInterval = 60 * time.Second
)

type entry struct {
	code      string
	expiresAt time.Time
	attempts  int
}

// Store keeps one pending verification code per email address.
// Everything is in-process: a restart drops all pending codes.
// All results are booleans: "no code" and "wrong code" look the same
// to the caller.
type Store struct {
	mu          sync.Mutex
	entries     map[string]entry
	ttl         time.Duration
	maxAttempts int
	sweepEvery  time.Duration
	stop        chan struct{}
	stopOnce    sync.Once
}

func NewStore(ttl time.Duration, maxAttempts int, sweepEvery time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultCodeTTL
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if sweepEvery <= 0 {
		sweepEvery = DefaultSweepInterval
	}
	return &Store{
		entries:     make(map[string]entry),
		ttl:         ttl,
		maxAttempts: maxAttempts,
		sweepEvery:  sweepEvery,
		stop:        make(chan struct{}),
	}
}

// SetCode stores a fresh code for the email. An existing entry is always
// overwritten; requesting a new code invalidates the previous one.
func (s *Store) SetCode(email, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[email] = entry{
		code:      code,
		expiresAt: time.Now().Add(s.ttl),
		attempts:  0,
	}
	log.Printf("[verify][set] code stored for email=%q ttl=%s", email, s.ttl)
}

// HasValidCode reports whether a non-expired code exists for the email.
// An expired entry found here is deleted (lazy cleanup).
func (s *Store) HasValidCode(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[email]
	if !ok {
		return false
	}
	if time.Now().After(e.expiresAt) {
		delete(s.entries, email)
		return false
	}
	return true
}

// VerifyCode checks the supplied code. It fails closed: missing entry,
// expired entry and exhausted attempts all come back false. A matching
// code consumes the entry; a mismatch leaves it with attempts incremented.
func (s *Store) VerifyCode(email, code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[email]
	if !ok {
		log.Printf("[verify][check] no code for email=%q", email)
		return false
	}
	if time.Now().After(e.expiresAt) {
		delete(s.entries, email)
		log.Printf("[verify][check] code expired for email=%q", email)
		return false
	}

	e.attempts++
	if e.attempts > s.maxAttempts {
		delete(s.entries, email)
		log.Printf("[verify][check] attempts exhausted for email=%q", email)
		return false
	}

	if e.code != code {
		s.entries[email] = e
		log.Printf("[verify][check] mismatch for email=%q attempts=%d", email, e.attempts)
		return false
	}

	delete(s.entries, email)
	log.Printf("[verify][check] OK email=%q", email)
	return true
}

// RemoveCode cancels a pending code, if any.
func (s *Store) RemoveCode(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, email)
}

// StartCleanup launches the periodic sweep that removes expired entries
// regardless of whether anything reads them.
func (s *Store) StartCleanup() {
	go func() {
		ticker := time.NewTicker(s.sweepEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop terminates the sweep goroutine. Safe to call more than once.
func (s *Store) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Store) sweep() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for email, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, email)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("[verify][sweep] removed %d expired entries", removed)
	}
}

// Len reports the number of live entries, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
