// Package session holds per-user credentials for the lifetime of the
// process. Nothing here is ever written to disk.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrMissingCredentials = errors.New("missing credentials")

// Credentials are the two secrets a request needs. Both are opaque.
type Credentials struct {
	ModelAPIKey  string
	RepoAPIToken string
}

// Validate fails unless both secrets are present.
func (c Credentials) Validate() error {
	switch {
	case c.ModelAPIKey == "" && c.RepoAPIToken == "":
		return fmt.Errorf("%w: model API key and repository token are not set", ErrMissingCredentials)
	case c.ModelAPIKey == "":
		return fmt.Errorf("%w: model API key is not set", ErrMissingCredentials)
	case c.RepoAPIToken == "":
		return fmt.Errorf("%w: repository token is not set", ErrMissingCredentials)
	}
	return nil
}

// Merge returns c with any non-empty field of o applied over it.
func (c Credentials) Merge(o Credentials) Credentials {
	if o.ModelAPIKey != "" {
		c.ModelAPIKey = o.ModelAPIKey
	}
	if o.RepoAPIToken != "" {
		c.RepoAPIToken = o.RepoAPIToken
	}
	return c
}

// Session is one user's state.
type Session struct {
	ID          string
	Credentials Credentials
	LastSeen    time.Time
}

// Store keeps sessions in memory keyed by ID.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	seed     Credentials
	now      func() time.Time
}

// NewStore returns an empty store. New sessions start with seed.
func NewStore(seed Credentials) *Store {
	return &Store{
		sessions: map[string]*Session{},
		seed:     seed,
		now:      time.Now,
	}
}

func (s *Store) Create() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &Session{ID: uuid.NewString(), Credentials: s.seed, LastSeen: s.now()}
	s.sessions[sess.ID] = sess
	return copySession(sess)
}

// Get returns a copy of the session, or false if id is unknown.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	sess.LastSeen = s.now()
	return copySession(sess), true
}

// Update applies fn to the stored credentials.
func (s *Store) Update(id string, fn func(*Credentials)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	fn(&sess.Credentials)
	sess.LastSeen = s.now()
	return true
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Expire drops sessions not seen within ttl and returns how many went.
func (s *Store) Expire(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-ttl)
	n := 0
	for id, sess := range s.sessions {
		if sess.LastSeen.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func copySession(s *Session) *Session {
	c := *s
	return &c
}
