package audit

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solace-platform/solace/internal/events"
)

func TestSafetyEventDeserialization(t *testing.T) {
	event := events.SafetyEvent{
		UserID:    "user-42",
		SessionID: "session-abc-123",
		EventType: events.EventCrisisEscalation,
		Severity:  events.SeverityCrit,
		Details:   map[string]string{"level": "9"},
		Timestamp: time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded events.SafetyEvent
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "user-42", decoded.UserID)
	assert.Equal(t, "session-abc-123", decoded.SessionID)
	assert.Equal(t, events.EventCrisisEscalation, decoded.EventType)
	assert.Equal(t, events.SeverityCrit, decoded.Severity)
	assert.Equal(t, "9", decoded.Details["level"])
}

func TestConvertEventToLog(t *testing.T) {
	event := events.SafetyEvent{
		UserID:    "guest:a1b2c3",
		SessionID: "session-abc-123",
		EventType: events.EventQuotaViolation,
		Severity:  events.SeverityWarn,
		Details:   map[string]string{"window": "day", "reason": "guest_limit_reached"},
		Timestamp: time.Now().UTC(),
	}

	log := convertEventToLog(event)

	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", log.ID.String())
	assert.Equal(t, "guest:a1b2c3", log.UserID)
	assert.Equal(t, events.EventQuotaViolation, log.EventType)
	assert.Equal(t, events.SeverityWarn, log.Severity)
	assert.Equal(t, event.Timestamp, log.CreatedAt)

	var details map[string]string
	require.NoError(t, json.Unmarshal(log.Details, &details))
	assert.Equal(t, "day", details["window"])
	assert.Equal(t, "guest_limit_reached", details["reason"])
}

func TestConvertEventToLog_EmptyDetails(t *testing.T) {
	event := events.SafetyEvent{
		UserID:    "user-42",
		EventType: events.EventModerationFlagged,
		Severity:  events.SeverityWarn,
		Timestamp: time.Now().UTC(),
	}

	log := convertEventToLog(event)
	assert.Nil(t, log.Details)
}
