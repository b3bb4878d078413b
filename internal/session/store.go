package session

import (
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"rapport/internal/domain"
)

// State is everything one interactive session accumulates. It replaces
// ambient global state: pipeline stages receive and return it explicitly,
// and the orchestrator owns the current value.
type State struct {
	ID         string
	Source     domain.Source
	Summary    string
	Analysis   string
	LastAnswer string
	Evaluation domain.EvaluationResult
	Ticker     string
}

// Store keeps session state in memory with a TTL, so an abandoned session
// expires instead of accumulating forever.
type Store struct {
	cache *gocache.Cache
}

// NewStore creates a session store. Entries expire after ttl and are purged
// at twice that interval.
func NewStore(ttl time.Duration) *Store {
	if ttl == 0 {
		ttl = time.Hour
	}
	return &Store{cache: gocache.New(ttl, 2*ttl)}
}

// Start creates a fresh session and returns its state.
func (s *Store) Start() *State {
	st := &State{ID: uuid.NewString()}
	s.cache.Set(st.ID, st, gocache.DefaultExpiration)
	return st
}

// Get returns the state for a session ID, if it has not expired.
func (s *Store) Get(id string) (*State, bool) {
	if v, found := s.cache.Get(id); found {
		return v.(*State), true
	}
	return nil, false
}

// Save stores updated state under its session ID, refreshing the TTL.
func (s *Store) Save(st *State) {
	s.cache.Set(st.ID, st, gocache.DefaultExpiration)
}

// End discards a session.
func (s *Store) End(id string) {
	s.cache.Delete(id)
}
