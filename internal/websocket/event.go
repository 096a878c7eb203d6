package websocket

// SessionEvent is pushed to every live connection of a user when that
// user's session changes outside the connection's own request flow,
// e.g. a sign-out issued from another tab or device.
type SessionEvent struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
}

const (
	EventSignedOut = "signed_out"
)
