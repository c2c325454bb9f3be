package auth

import "sync"

// Session is an explicit, observable holder of the signed-in user id. It
// replaces an ambient app-wide auth context: components that need the
// session receive this object and subscribe to changes instead of reading
// global state.
type Session struct {
	mu     sync.RWMutex
	userID string
	nextID int
	subs   map[int]func(userID string)
}

// NewSession creates an empty (signed-out) session.
func NewSession() *Session {
	return &Session{subs: make(map[int]func(string))}
}

// UserID returns the signed-in user id, or "" when signed out.
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// SignIn installs a user id and notifies subscribers.
func (s *Session) SignIn(userID string) {
	s.set(userID)
}

// SignOut clears the session and notifies subscribers.
func (s *Session) SignOut() {
	s.set("")
}

// Subscribe registers fn to be called on every session change. The
// returned function removes the subscription.
func (s *Session) Subscribe(fn func(userID string)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Session) set(userID string) {
	s.mu.Lock()
	s.userID = userID
	subs := make([]func(string), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(userID)
	}
}
