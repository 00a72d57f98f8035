package session

import (
	"errors"
	"sync"

	"github.com/DomDom3333/GameFinder/internal/matching"
)

// Errors returned by Session operations.
var (
	ErrNotAdmin  = errors.New("caller is not the session admin")
	ErrNoMembers = errors.New("session has no members")
)

// Session is one live matching round. All mutable state is guarded by a single
// per-session mutex; no session ever takes another session's lock.
type Session struct {
	Code string

	mu         sync.Mutex
	members    []string // connection ids in join order
	catalogs   map[string]map[string]struct{}
	wishlists  map[string]map[string]struct{}
	swipes     map[string]map[string]bool // game id -> connection id -> decision
	matched    map[string]struct{}
	candidates []string
	admin      string // connection id, empty when unassigned
	started    bool
}

func newSession(code string) *Session {
	return &Session{
		Code:      code,
		catalogs:  make(map[string]map[string]struct{}),
		wishlists: make(map[string]map[string]struct{}),
		swipes:    make(map[string]map[string]bool),
		matched:   make(map[string]struct{}),
	}
}

// AddMember registers a connection with its owned and wishlisted games. The
// first member to join a session without an admin is granted the admin role.
// Returns whether the connection holds the admin role after the call.
func (s *Session) AddMember(connID string, games, wishlist []string) (isAdmin bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isMemberLocked(connID) {
		s.members = append(s.members, connID)
	}
	s.catalogs[connID] = toSet(games)
	s.wishlists[connID] = toSet(wishlist)

	if s.admin == "" {
		s.admin = connID
	}
	return s.admin == connID
}

// LeaveResult describes the outcome of removing a member.
type LeaveResult struct {
	Removed      bool
	Empty        bool   // no members remain; the session should be destroyed
	AdminChanged bool   // the departing member was the admin
	NewAdmin     string // promoted connection id, empty when the role was cleared
}

// RemoveMember removes a connection from the session, purges its swipes,
// recomputes the matched set against the remaining membership, and reassigns
// the admin role if the departing member held it. Removing an absent member is
// a no-op, so an explicit leave racing a transport disconnect is safe.
func (s *Session) RemoveMember(connID string) LeaveResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isMemberLocked(connID) {
		return LeaveResult{}
	}
	s.removeMemberLocked(connID)

	for game, decisions := range s.swipes {
		delete(decisions, connID)
		if len(decisions) == 0 {
			delete(s.swipes, game)
		}
	}
	s.matched = matching.Recompute(s.swipes, s.members)

	// A round that has not started yet falls back to the plain ownership
	// intersection of whoever is still here.
	if !s.started {
		s.candidates = matching.Intersection(s.members, s.catalogs)
	}

	res := LeaveResult{Removed: true, Empty: len(s.members) == 0}
	if s.admin == connID {
		res.AdminChanged = true
		if len(s.members) > 0 {
			s.admin = s.members[0]
			res.NewAdmin = s.admin
		} else {
			s.admin = ""
		}
	}
	return res
}

// Start runs the candidate filtering algorithm. Only the current admin may
// start a round, and at least one member must be present.
func (s *Session) Start(connID string, opts matching.FilterOptions) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.admin != connID {
		return nil, ErrNotAdmin
	}
	if len(s.members) == 0 {
		return nil, ErrNoMembers
	}

	s.candidates = matching.FilterCandidates(s.members, s.catalogs, s.wishlists, opts)
	s.started = true

	out := make([]string, len(s.candidates))
	copy(out, s.candidates)
	return out, nil
}

// RecordSwipe stores a member's decision for a game (latest decision wins) and
// re-evaluates the match condition for that game against the current
// membership. Returns true only on the transition into the matched set, so a
// match event fires exactly once.
func (s *Session) RecordSwipe(connID, game string, right bool) (matchedNow bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	decisions, ok := s.swipes[game]
	if !ok {
		decisions = make(map[string]bool)
		s.swipes[game] = decisions
	}
	decisions[connID] = right

	if matching.AllSwipedRight(decisions, s.members) {
		if _, already := s.matched[game]; !already {
			s.matched[game] = struct{}{}
			return true
		}
	} else {
		delete(s.matched, game)
	}
	return false
}

// Summaries computes the end-of-round results from the swipe matrix.
func (s *Session) Summaries() []matching.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return matching.Summarize(s.swipes, len(s.members))
}

// Members returns a snapshot of the current membership in join order.
func (s *Session) Members() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.members))
	copy(out, s.members)
	return out
}

// HasMember reports whether the connection is currently a member.
func (s *Session) HasMember(connID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isMemberLocked(connID)
}

// Admin returns the connection id currently holding the admin role.
func (s *Session) Admin() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.admin
}

// Matched returns a snapshot of the matched game ids.
func (s *Session) Matched() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.matched))
	for game := range s.matched {
		out = append(out, game)
	}
	return out
}

// Candidates returns a snapshot of the current candidate games.
func (s *Session) Candidates() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.candidates))
	copy(out, s.candidates)
	return out
}

// Snapshot builds the roster (display names in join order) and the admin's
// display name. Members whose connection no longer resolves to a name are
// stale and get pruned; if that removes the admin, the role is handed to the
// first surviving member.
func (s *Session) Snapshot(nameOf func(connID string) (string, bool)) (roster []string, admin string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	roster = make([]string, 0, len(s.members))
	var stale []string
	for _, connID := range s.members {
		if name, ok := nameOf(connID); ok {
			roster = append(roster, name)
		} else {
			stale = append(stale, connID)
		}
	}
	for _, connID := range stale {
		s.removeMemberLocked(connID)
	}

	if s.admin != "" && !s.isMemberLocked(s.admin) {
		if len(s.members) > 0 {
			s.admin = s.members[0]
		} else {
			s.admin = ""
		}
	}
	if s.admin != "" {
		if name, ok := nameOf(s.admin); ok {
			admin = name
		}
	}
	return roster, admin
}

func (s *Session) isMemberLocked(connID string) bool {
	for _, id := range s.members {
		if id == connID {
			return true
		}
	}
	return false
}

func (s *Session) removeMemberLocked(connID string) {
	for i, id := range s.members {
		if id == connID {
			s.members = append(s.members[:i], s.members[i+1:]...)
			break
		}
	}
	delete(s.catalogs, connID)
	delete(s.wishlists, connID)
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
