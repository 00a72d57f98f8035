// Package protocol defines the WebSocket message protocol between clients and the server.
package protocol

// Message types from client to server
const (
	TypeCreateSession = "create_session"
	TypeJoinSession   = "join_session"
	TypeLeaveSession  = "leave_session"
	TypeStartSession  = "start_session"
	TypeSwipe         = "swipe"
	TypeEndSession    = "end_session"
)

// Message types from server to client
const (
	TypeSessionCreated = "session_created"
	TypeJoinedSession  = "joined_session"
	TypeSessionState   = "session_state"
	TypeLeftSession    = "left_session"
	TypeSessionStarted = "session_started"
	TypeUserSwiped     = "user_swiped"
	TypeGameMatched    = "game_matched"
	TypeSessionEnded   = "session_ended"
	TypeError          = "error"
)

// BaseMessage contains common fields for all messages.
type BaseMessage struct {
	Type string `json:"type"`
	Ts   int64  `json:"ts,omitempty"`
}

// CreateSessionMessage is sent by a client to create a new session.
type CreateSessionMessage struct {
	BaseMessage
}

// JoinSessionMessage is sent by a client to join an existing session.
type JoinSessionMessage struct {
	BaseMessage
	Code     string   `json:"code"`
	Username string   `json:"username"`
	Games    []string `json:"games"`
	Wishlist []string `json:"wishlist,omitempty"`
}

// LeaveSessionMessage is sent by a client to leave a session.
type LeaveSessionMessage struct {
	BaseMessage
	Code string `json:"code"`
}

// StartSessionMessage is sent by the session admin to start the swiping round.
type StartSessionMessage struct {
	BaseMessage
	Code            string `json:"code"`
	IncludeWishlist bool   `json:"include_wishlist"`
	MinOwners       int    `json:"min_owners"`
	MinWishlisted   int    `json:"min_wishlisted"`
}

// SwipeMessage is sent by a client to record a swipe decision.
type SwipeMessage struct {
	BaseMessage
	Code  string `json:"code"`
	Game  string `json:"game"`
	Right bool   `json:"right"`
}

// EndSessionMessage is sent by a client to end the round and collect results.
type EndSessionMessage struct {
	BaseMessage
	Code string `json:"code"`
}

// SessionCreatedEvent is sent to the creator with the freshly minted code.
type SessionCreatedEvent struct {
	BaseMessage
	Code string `json:"code"`
}

// JoinedSessionEvent announces a member joining (or being promoted to admin).
type JoinedSessionEvent struct {
	BaseMessage
	Code     string `json:"code"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// SessionStateEvent is a roster snapshot: display names in join order plus the admin.
type SessionStateEvent struct {
	BaseMessage
	Code   string   `json:"code"`
	Roster []string `json:"roster"`
	Admin  string   `json:"admin,omitempty"`
}

// LeftSessionEvent announces a member leaving.
type LeftSessionEvent struct {
	BaseMessage
	Code     string `json:"code"`
	Username string `json:"username"`
}

// SessionStartedEvent carries the filtered, shuffled candidate games.
type SessionStartedEvent struct {
	BaseMessage
	Code  string   `json:"code"`
	Games []string `json:"games"`
}

// UserSwipedEvent announces a member's swipe decision.
type UserSwipedEvent struct {
	BaseMessage
	Code     string `json:"code"`
	Username string `json:"username"`
	Game     string `json:"game"`
	Right    bool   `json:"right"`
}

// GameMatchedEvent fires once when every current member has swiped right on a game.
type GameMatchedEvent struct {
	BaseMessage
	Code string `json:"code"`
	Game string `json:"game"`
}

// GameSummary is one end-of-round result entry.
type GameSummary struct {
	ID                string `json:"id"`
	Likes             int    `json:"likes"`
	TotalParticipants int    `json:"total_participants"`
}

// SessionEndedEvent carries the end-of-round results, most liked first.
type SessionEndedEvent struct {
	BaseMessage
	Code    string        `json:"code"`
	Results []GameSummary `json:"results"`
}

// ErrorMessage is sent to the originating caller when an action is rejected.
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrorCodeInvalidMessage  = "invalid_message"
	ErrorCodeSessionNotFound = "session_not_found"
	ErrorCodeNotMember       = "not_member"
	ErrorCodeNotAdmin        = "not_admin"
	ErrorCodeEmptySession    = "empty_session"
)
