package collab

import (
	"time"
)

// Message types exchanged with the collaboration service.
const (
	TypeJoin      = "join"
	TypeLeave     = "leave"
	TypePresence  = "presence"
	TypeOperation = "operation"
)

// Participant identifies the local user in a document session.
type Participant struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Color string `json:"color,omitempty"`
}

// Cursor is a pointer position on the design surface.
type Cursor struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Presence is what other participants see of a user: where the cursor is,
// what is selected, and whether the user is still connected.
type Presence struct {
	UserID    string   `json:"userId"`
	Name      string   `json:"name,omitempty"`
	Color     string   `json:"color,omitempty"`
	Cursor    *Cursor  `json:"cursor,omitempty"`
	Selection []string `json:"selection,omitempty"`
	Online    bool     `json:"online"`
}

// Operation is a single edit broadcast to the other participants.
// Payload is owned by the caller; the client only transports it.
type Operation struct {
	ID        string         `json:"id"`
	Kind      string         `json:"kind"`
	Target    string         `json:"target,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	UserID    string         `json:"userId"`
	Timestamp time.Time      `json:"timestamp"`
}

// message is the JSON envelope on the wire.
type message struct {
	Type       string       `json:"type"`
	DocumentID string       `json:"documentId,omitempty"`
	User       *Participant `json:"user,omitempty"`
	Presence   *Presence    `json:"presence,omitempty"`
	Operation  *Operation   `json:"operation,omitempty"`
}
