package chat

import "sync"

// session is the in-memory view of one conversation. Its mutex serializes
// all turn processing for the session; turns for different sessions never
// contend.
type session struct {
	mu     sync.Mutex
	turns  []Turn
	loaded bool
}

func (s *session) snapshot() []Turn {
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// sessionCache holds at most one session instance per id for the lifetime of
// the process. Lookups create on miss so callers always get a lockable
// session.
type sessionCache struct {
	mu       sync.Mutex
	sessions map[string]*session
}

func newSessionCache() *sessionCache {
	return &sessionCache{sessions: make(map[string]*session)}
}

func (c *sessionCache) get(id string) *session {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[id]
	if !ok {
		s = &session{}
		c.sessions[id] = s
	}
	return s
}

func (c *sessionCache) invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, id)
}
