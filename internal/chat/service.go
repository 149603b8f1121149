package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/solace-platform/solace/internal/config"
	"github.com/solace-platform/solace/internal/crisislog"
	"github.com/solace-platform/solace/internal/events"
	"github.com/solace-platform/solace/internal/identity"
	"github.com/solace-platform/solace/internal/llm"
	"github.com/solace-platform/solace/internal/metrics"
	"github.com/solace-platform/solace/internal/moderation"
	"github.com/solace-platform/solace/internal/quota"
	"github.com/solace-platform/solace/internal/session"
)

// fallbackResponse is returned when the completion call fails. The turn
// still succeeds; the user is never shown an error page mid-conversation.
const fallbackResponse = "I'm having a little trouble gathering my thoughts right now, " +
	"but I'm still here with you. Whatever you're feeling at this moment is valid. " +
	"Take a slow breath, and if you'd like, tell me again what's on your mind."

// HistoryStore is the slice of session.Store the pipeline needs.
type HistoryStore interface {
	Append(ctx context.Context, sessionID string, userMsg, assistantMsg session.Message) error
	Recent(ctx context.Context, sessionID string, limit int) ([]session.Message, error)
}

// CrisisLogger records escalated turns for clinical review.
type CrisisLogger interface {
	Insert(ctx context.Context, entry *crisislog.Entry) error
}

// EventPublisher emits safety events for the audit trail.
type EventPublisher interface {
	PublishSafetyEvent(ctx context.Context, event events.SafetyEvent) error
}

// Request is one validated-on-entry conversation turn.
type Request struct {
	SessionID string
	Message   string
	Mood      string
}

// Result is the pipeline outcome handed back to the transport layer.
type Result struct {
	Content            string
	CrisisDetected     bool
	CrisisLevel        int
	CrisisResources    *CrisisResources
	RequiresEscalation bool
	IsFallback         bool
}

// ValidationError marks client input the pipeline refused to process.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// QuotaDeniedError carries the denial contract fields for the 429 body.
type QuotaDeniedError struct {
	Reason     string
	Window     quota.Window
	RetryAfter time.Time
	Tier       quota.TierName
}

func (e *QuotaDeniedError) Error() string {
	return fmt.Sprintf("quota denied: %s (%s window)", e.Reason, e.Window)
}

// ModerationError marks a message the content policy rejected.
type ModerationError struct {
	Categories []string
}

func (e *ModerationError) Error() string {
	return "message rejected by content policy"
}

// Service orchestrates a conversation turn through validation, crisis
// detection, quota, moderation, context assembly, completion and
// persistence.
type Service struct {
	classifier *quota.Classifier
	enforcer   *quota.Enforcer
	moderator  *moderation.Moderator
	completer  llm.Completer
	history    HistoryStore
	crisisLog  CrisisLogger
	publisher  EventPublisher
	safety     config.SafetyConfig
}

func NewService(
	classifier *quota.Classifier,
	enforcer *quota.Enforcer,
	moderator *moderation.Moderator,
	completer llm.Completer,
	history HistoryStore,
	crisisLog CrisisLogger,
	publisher EventPublisher,
	safety config.SafetyConfig,
) *Service {
	return &Service{
		classifier: classifier,
		enforcer:   enforcer,
		moderator:  moderator,
		completer:  completer,
		history:    history,
		crisisLog:  crisisLog,
		publisher:  publisher,
		safety:     safety,
	}
}

// Process runs one turn through the pipeline. Safety checks fail closed,
// availability concerns fail open: a crisis or policy hit stops the turn,
// while history, persistence and event-publishing failures only degrade it.
func (s *Service) Process(ctx context.Context, id identity.Identity, req Request) (*Result, error) {
	if err := ValidateSessionID(req.SessionID); err != nil {
		return nil, &ValidationError{Field: "sessionId", Err: err}
	}

	msg, err := SanitizeMessage(req.Message)
	if err != nil {
		return nil, &ValidationError{Field: "message", Err: err}
	}
	mood := NormalizeMood(req.Mood)

	// Crisis scan runs before quota so distress is never rate limited.
	assessment := DetectCrisis(msg)
	if assessment.Escalate() {
		return s.escalate(ctx, id, req.SessionID, msg, assessment), nil
	}

	if IsSuspicious(msg) {
		slog.Warn("suspicious message shape",
			"user_id", id.UserID,
			"session_id", req.SessionID,
		)
	}

	tier := s.classifier.TierFor(ctx, id)
	estimated := quota.EstimateTokens(msg)

	decision := s.enforcer.CheckAndConsume(ctx, id.UserID, tier, estimated)
	if !decision.Allowed {
		s.publishEvent(ctx, events.SafetyEvent{
			UserID:    id.UserID,
			SessionID: req.SessionID,
			EventType: events.EventQuotaViolation,
			Severity:  events.SeverityInfo,
			Details: map[string]string{
				"window": string(decision.Window),
				"reason": decision.Reason,
				"tier":   string(tier.Name),
			},
			Timestamp: time.Now().UTC(),
		})
		metrics.ChatTurnsTotal.WithLabelValues("quota_denied").Inc()
		return nil, &QuotaDeniedError{
			Reason:     decision.Reason,
			Window:     decision.Window,
			RetryAfter: decision.RetryAfter,
			Tier:       tier.Name,
		}
	}

	verdict := s.moderator.Assess(ctx, msg)
	if !verdict.Safe {
		s.publishEvent(ctx, events.SafetyEvent{
			UserID:    id.UserID,
			SessionID: req.SessionID,
			EventType: events.EventModerationFlagged,
			Severity:  events.SeverityWarn,
			Details: map[string]string{
				"categories": strings.Join(verdict.Categories, ","),
			},
			Timestamp: time.Now().UTC(),
		})
		metrics.ChatTurnsTotal.WithLabelValues("moderation_rejected").Inc()
		return nil, &ModerationError{Categories: verdict.Categories}
	}

	history, err := s.history.Recent(ctx, req.SessionID, s.safety.ContextMessages)
	if err != nil {
		slog.Warn("loading conversation history", "session_id", req.SessionID, "error", err)
		history = nil
	}

	result := &Result{}
	reply, err := s.completer.Complete(ctx, BuildPrompt(history, mood, msg))
	if err != nil {
		slog.Error("completion failed", "session_id", req.SessionID, "error", err)
		metrics.CompletionFailuresTotal.Inc()
		reply = fallbackResponse
		result.IsFallback = true
	}
	result.Content = reply

	if assessment.Detected {
		// Sub-threshold indicators still surface resources alongside the
		// normal reply.
		result.CrisisDetected = true
		result.CrisisLevel = assessment.Level
		resources := DefaultCrisisResources()
		result.CrisisResources = &resources
		metrics.CrisisEscalationsTotal.WithLabelValues("elevated").Inc()
	}

	s.persistExchange(ctx, req.SessionID, msg, result.Content)

	outcome := "completed"
	if result.IsFallback {
		outcome = "fallback"
	}
	metrics.ChatTurnsTotal.WithLabelValues(outcome).Inc()
	return result, nil
}

// escalate short-circuits the pipeline: no quota charge, no moderation, no
// completion call. The fixed crisis response and resources go straight back.
func (s *Service) escalate(ctx context.Context, id identity.Identity, sessionID, msg string, assessment Assessment) *Result {
	slog.Warn("crisis escalation",
		"user_id", id.UserID,
		"session_id", sessionID,
		"level", assessment.Level,
	)
	metrics.CrisisEscalationsTotal.WithLabelValues("high").Inc()
	metrics.ChatTurnsTotal.WithLabelValues("crisis_escalated").Inc()

	if err := s.crisisLog.Insert(ctx, &crisislog.Entry{
		UserID:          id.UserID,
		SessionID:       sessionID,
		Level:           assessment.Level,
		MatchedKeywords: assessment.MatchedKeywords,
		Escalated:       true,
	}); err != nil {
		slog.Error("recording crisis log", "session_id", sessionID, "error", err)
	}

	s.publishEvent(ctx, events.SafetyEvent{
		UserID:    id.UserID,
		SessionID: sessionID,
		EventType: events.EventCrisisEscalation,
		Severity:  events.SeverityCrit,
		Details: map[string]string{
			"level": strconv.Itoa(assessment.Level),
		},
		Timestamp: time.Now().UTC(),
	})

	s.persistExchange(ctx, sessionID, msg, EscalationResponse)

	resources := DefaultCrisisResources()
	return &Result{
		Content:            EscalationResponse,
		CrisisDetected:     true,
		CrisisLevel:        assessment.Level,
		CrisisResources:    &resources,
		RequiresEscalation: true,
	}
}

func (s *Service) persistExchange(ctx context.Context, sessionID, userMsg, assistantMsg string) {
	now := time.Now().UTC()
	err := s.history.Append(ctx, sessionID,
		session.Message{Role: session.RoleUser, Content: userMsg, Timestamp: now},
		session.Message{Role: session.RoleAssistant, Content: assistantMsg, Timestamp: now},
	)
	if err != nil {
		slog.Error("persisting exchange", "session_id", sessionID, "error", err)
	}
}

func (s *Service) publishEvent(ctx context.Context, event events.SafetyEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSafetyEvent(ctx, event); err != nil {
		slog.Warn("publishing safety event", "event_type", event.EventType, "error", err)
	}
}
