// Package session keeps the last correction per user so that follow-up
// questions can refer back to it. Storage is in-memory only: a restart wipes
// all context, which is acceptable because the context is a single message
// pair per user.
package session

import "sync"

// Context is the most recent correction made for one user.
type Context struct {
	// Raw is the user's text exactly as received (or transcribed).
	Raw string
	// Corrected is the reply that was produced for Raw.
	Corrected string
}

// Store maps Telegram user IDs to their latest correction context.
//
// All methods are safe for concurrent use. Two simultaneous messages from the
// same user race on Set; whichever handler finishes last wins, matching the
// "latest correction" semantics.
type Store struct {
	mu       sync.RWMutex
	contexts map[int64]Context
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{contexts: make(map[int64]Context)}
}

// Get returns the stored context for userID. ok is false when the user has no
// prior correction.
func (s *Store) Get(userID int64) (ctx Context, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ctx, ok = s.contexts[userID]
	return ctx, ok
}

// Set replaces the stored context for userID.
func (s *Store) Set(userID int64, ctx Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts[userID] = ctx
}

// Len returns the number of users with stored context.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contexts)
}
