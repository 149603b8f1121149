package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Log matches the audit_logs table schema. UserID is a plain string so
// guest identifiers can be recorded alongside account ids.
type Log struct {
	ID        uuid.UUID       `json:"id"`
	UserID    string          `json:"user_id"`
	SessionID string          `json:"session_id,omitempty"`
	EventType string          `json:"event_type"`
	Severity  string          `json:"severity"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// ListParams holds pagination and filtering parameters for audit log queries.
type ListParams struct {
	EventType string
	Severity  string
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
}
