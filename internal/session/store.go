package session

import "sync"

// Store holds the currently loaded session. The service starts empty; a
// load replaces the whole session atomically, so handlers always see either
// the previous roster or the new one, never a partial mix.
type Store struct {
	mu   sync.RWMutex
	sess *Session
}

func NewStore() *Store {
	return &Store{}
}

// Set installs a newly loaded session.
func (st *Store) Set(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sess = s
}

// Current returns the loaded session or ErrNotLoaded.
func (st *Store) Current() (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if st.sess == nil {
		return nil, ErrNotLoaded
	}
	return st.sess, nil
}

// Loaded reports whether a session has been installed.
func (st *Store) Loaded() bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sess != nil
}
