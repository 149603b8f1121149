package session

import "time"

// Message roles as stored in transcripts.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single transcript turn.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
