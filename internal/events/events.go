package events

import "time"

// FetchTimeout is the default timeout for batch fetching messages from consumers.
const FetchTimeout = 2 * time.Second

// StreamEvents is the JetStream stream holding safety events.
const StreamEvents = "SOLACE_EVENTS"

// Subject constants.
const (
	SubjectSafetyEvent = "solace.events.safety"
)

// Event types recorded for the safety audit trail.
const (
	EventCrisisEscalation  = "crisis_escalation"
	EventModerationFlagged = "moderation_flagged"
	EventQuotaViolation    = "quota_violation"
)

// Severity levels.
const (
	SeverityInfo = "info"
	SeverityWarn = "warn"
	SeverityCrit = "critical"
)

// SafetyEvent is published whenever a conversation turn trips a safety
// control. UserID may carry a guest identifier rather than an account id.
type SafetyEvent struct {
	UserID    string            `json:"user_id"`
	SessionID string            `json:"session_id,omitempty"`
	EventType string            `json:"event_type"`
	Severity  string            `json:"severity"`
	Details   map[string]string `json:"details,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}
