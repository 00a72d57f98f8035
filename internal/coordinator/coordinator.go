// Package coordinator implements the session protocol: it applies client
// actions to the registry, delegates candidate filtering and match detection
// to the matching engine, and fans resulting events out to session members.
package coordinator

import (
	"log"
	"time"

	"github.com/DomDom3333/GameFinder/internal/matching"
	"github.com/DomDom3333/GameFinder/internal/protocol"
	"github.com/DomDom3333/GameFinder/internal/session"
)

// Notifier delivers an event to a single connection. Implementations must not
// block; delivery is at-most-once.
type Notifier interface {
	Send(connID string, event any)
}

// Coordinator routes client actions through the registry and broadcasts the
// outcome. All state mutation happens inside short per-session critical
// sections owned by the Session; broadcasts always run after those release,
// against membership snapshots, so a slow client cannot stall the mutation
// path.
type Coordinator struct {
	registry *session.Registry
	notifier Notifier
}

// New creates a coordinator over the given registry and notifier.
func New(registry *session.Registry, notifier Notifier) *Coordinator {
	return &Coordinator{registry: registry, notifier: notifier}
}

// CreateSession mints a new session and tells the caller its code.
func (c *Coordinator) CreateSession(connID string) {
	sess := c.registry.Create()
	log.Printf("Session created with code: %s", sess.Code)
	c.notifier.Send(connID, protocol.SessionCreatedEvent{
		BaseMessage: base(protocol.TypeSessionCreated),
		Code:        sess.Code,
	})
}

// JoinSession registers the caller as a member of an existing session. The
// first joiner of an adminless session is granted the admin role.
func (c *Coordinator) JoinSession(connID string, msg protocol.JoinSessionMessage) {
	sess, ok := c.registry.Get(msg.Code)
	if !ok {
		c.sendError(connID, protocol.ErrorCodeSessionNotFound, "session does not exist")
		return
	}

	c.registry.SetName(connID, msg.Username)
	isAdmin := sess.AddMember(connID, msg.Games, msg.Wishlist)
	roster, adminName := sess.Snapshot(c.registry.Name)
	members := sess.Members()

	log.Printf("User %s joined session %s", msg.Username, sess.Code)

	c.notifier.Send(connID, protocol.SessionStateEvent{
		BaseMessage: base(protocol.TypeSessionState),
		Code:        sess.Code,
		Roster:      roster,
		Admin:       adminName,
	})
	c.broadcast(members, protocol.JoinedSessionEvent{
		BaseMessage: base(protocol.TypeJoinedSession),
		Code:        sess.Code,
		Username:    msg.Username,
		IsAdmin:     isAdmin,
	})
}

// LeaveSession removes the caller from a session.
func (c *Coordinator) LeaveSession(connID string, msg protocol.LeaveSessionMessage) {
	sess, ok := c.registry.Get(msg.Code)
	if !ok {
		c.sendError(connID, protocol.ErrorCodeSessionNotFound, "session does not exist")
		return
	}
	if !c.removeFromSession(sess, connID) {
		c.sendError(connID, protocol.ErrorCodeNotMember, "caller is not a member of the session")
		return
	}
	if len(c.registry.SessionsWith(connID)) == 0 {
		c.registry.DropName(connID)
	}
}

// Disconnect handles a transport-level disconnect: the connection leaves every
// session it belongs to. Racing an explicit leave is safe because removing an
// absent member is a no-op.
func (c *Coordinator) Disconnect(connID string) {
	for _, sess := range c.registry.SessionsWith(connID) {
		c.removeFromSession(sess, connID)
	}
	c.registry.DropName(connID)
}

// StartSession runs the candidate filtering algorithm. Admin only.
func (c *Coordinator) StartSession(connID string, msg protocol.StartSessionMessage) {
	sess, ok := c.registry.Get(msg.Code)
	if !ok {
		c.sendError(connID, protocol.ErrorCodeSessionNotFound, "session does not exist")
		return
	}
	if _, known := c.registry.Name(connID); !known || !sess.HasMember(connID) {
		c.sendError(connID, protocol.ErrorCodeNotMember, "caller is not a member of the session")
		return
	}

	games, err := sess.Start(connID, matching.FilterOptions{
		IncludeWishlist: msg.IncludeWishlist,
		MinOwners:       msg.MinOwners,
		MinWishlisted:   msg.MinWishlisted,
	})
	switch err {
	case nil:
	case session.ErrNotAdmin:
		c.sendError(connID, protocol.ErrorCodeNotAdmin, "only the session admin can start the round")
		return
	case session.ErrNoMembers:
		c.sendError(connID, protocol.ErrorCodeEmptySession, "not enough participants to start the session")
		return
	default:
		c.sendError(connID, protocol.ErrorCodeInvalidMessage, err.Error())
		return
	}

	log.Printf("Session %s started with %d candidates", sess.Code, len(games))
	c.broadcast(sess.Members(), protocol.SessionStartedEvent{
		BaseMessage: base(protocol.TypeSessionStarted),
		Code:        sess.Code,
		Games:       games,
	})
}

// Swipe records a decision and announces it; a game every current member has
// swiped right on fires a one-time match event.
func (c *Coordinator) Swipe(connID string, msg protocol.SwipeMessage) {
	sess, ok := c.registry.Get(msg.Code)
	if !ok {
		c.sendError(connID, protocol.ErrorCodeSessionNotFound, "session does not exist")
		return
	}
	username, known := c.registry.Name(connID)
	if !known || !sess.HasMember(connID) {
		c.sendError(connID, protocol.ErrorCodeNotMember, "caller is not a member of the session")
		return
	}

	matchedNow := sess.RecordSwipe(connID, msg.Game, msg.Right)
	members := sess.Members()

	c.broadcast(members, protocol.UserSwipedEvent{
		BaseMessage: base(protocol.TypeUserSwiped),
		Code:        sess.Code,
		Username:    username,
		Game:        msg.Game,
		Right:       msg.Right,
	})
	if matchedNow {
		c.broadcast(members, protocol.GameMatchedEvent{
			BaseMessage: base(protocol.TypeGameMatched),
			Code:        sess.Code,
			Game:        msg.Game,
		})
	}
}

// EndSession computes the end-of-round summary and broadcasts it.
func (c *Coordinator) EndSession(connID string, msg protocol.EndSessionMessage) {
	sess, ok := c.registry.Get(msg.Code)
	if !ok {
		c.sendError(connID, protocol.ErrorCodeSessionNotFound, "session does not exist")
		return
	}

	summaries := sess.Summaries()
	results := make([]protocol.GameSummary, len(summaries))
	for i, s := range summaries {
		results[i] = protocol.GameSummary{
			ID:                s.ID,
			Likes:             s.Likes,
			TotalParticipants: s.TotalParticipants,
		}
	}

	c.broadcast(sess.Members(), protocol.SessionEndedEvent{
		BaseMessage: base(protocol.TypeSessionEnded),
		Code:        sess.Code,
		Results:     results,
	})
}

// removeFromSession applies the shared leave path: purge the member, announce
// the departure, promote a successor admin if needed, and destroy the session
// once the last member is gone. Returns false if the connection was not a
// member.
func (c *Coordinator) removeFromSession(sess *session.Session, connID string) bool {
	username, _ := c.registry.Name(connID)
	res := sess.RemoveMember(connID)
	if !res.Removed {
		return false
	}

	log.Printf("User %s left session %s", username, sess.Code)

	if res.Empty {
		c.registry.Remove(sess.Code)
		return true
	}

	members := sess.Members()
	c.broadcast(members, protocol.LeftSessionEvent{
		BaseMessage: base(protocol.TypeLeftSession),
		Code:        sess.Code,
		Username:    username,
	})

	if res.AdminChanged && res.NewAdmin != "" {
		if adminName, ok := c.registry.Name(res.NewAdmin); ok {
			c.broadcast(members, protocol.JoinedSessionEvent{
				BaseMessage: base(protocol.TypeJoinedSession),
				Code:        sess.Code,
				Username:    adminName,
				IsAdmin:     true,
			})
		}
	}

	roster, adminName := sess.Snapshot(c.registry.Name)
	c.broadcast(members, protocol.SessionStateEvent{
		BaseMessage: base(protocol.TypeSessionState),
		Code:        sess.Code,
		Roster:      roster,
		Admin:       adminName,
	})
	return true
}

func (c *Coordinator) broadcast(connIDs []string, event any) {
	for _, connID := range connIDs {
		c.notifier.Send(connID, event)
	}
}

func (c *Coordinator) sendError(connID, code, message string) {
	c.notifier.Send(connID, protocol.ErrorMessage{
		BaseMessage: base(protocol.TypeError),
		Code:        code,
		Message:     message,
	})
}

func base(msgType string) protocol.BaseMessage {
	return protocol.BaseMessage{Type: msgType, Ts: time.Now().UnixMilli()}
}
