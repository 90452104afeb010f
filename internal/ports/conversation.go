package ports

type EventKind string

const (
	EventMessage EventKind = "message"
	EventImage   EventKind = "image"
	EventVideo   EventKind = "video"
	EventError   EventKind = "error"
)

// ConversationEvent is what a conversation hands to its display.
type ConversationEvent struct {
	SessionID string    `json:"session"`
	Kind      EventKind `json:"kind"`
	Sender    string    `json:"sender,omitempty"`
	Text      string    `json:"text,omitempty"`
	Path      string    `json:"path,omitempty"`
	Query     string    `json:"query,omitempty"`
}
