// Package session provides the in-memory registry of live matching sessions.
package session

import (
	"math/rand/v2"
	"strings"
	"sync"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 4
)

// Registry is the authoritative table of live sessions, keyed by a short
// human-typable code, plus the process-local mapping from connection id to
// display name.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	names    map[string]string // connection id -> display name
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		names:    make(map[string]string),
	}
}

// Create mints a fresh session under a unique code. Collisions trigger
// regeneration; the insert-if-absent check runs under the registry lock, so
// duplicate codes cannot exist by construction.
func (r *Registry) Create() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		code := mintCode()
		if _, taken := r.sessions[code]; taken {
			continue
		}
		sess := newSession(code)
		r.sessions[code] = sess
		return sess
	}
}

// Get looks up a session by code. Codes are case-insensitive.
func (r *Registry) Get(code string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[strings.ToUpper(code)]
	return sess, ok
}

// Remove deletes a session from the registry.
func (r *Registry) Remove(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, strings.ToUpper(code))
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// SessionsWith returns every session the connection is currently a member of.
func (r *Registry) SessionsWith(connID string) []*Session {
	r.mu.RLock()
	candidates := make([]*Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		candidates = append(candidates, sess)
	}
	r.mu.RUnlock()

	var out []*Session
	for _, sess := range candidates {
		if sess.HasMember(connID) {
			out = append(out, sess)
		}
	}
	return out
}

// SetName records the display name for a connection.
func (r *Registry) SetName(connID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names[connID] = name
}

// Name resolves a connection id to its display name.
func (r *Registry) Name(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.names[connID]
	return name, ok
}

// DropName removes the display-name mapping for a connection.
func (r *Registry) DropName(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.names, connID)
}

func mintCode() string {
	buf := make([]byte, codeLength)
	for i := range buf {
		buf[i] = codeAlphabet[rand.IntN(len(codeAlphabet))]
	}
	return string(buf)
}
