package chat

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/solace-platform/solace/internal/api"
	"github.com/solace-platform/solace/internal/identity"
	"github.com/solace-platform/solace/internal/quota"
)

// ChatRequest is the client payload for one conversation turn.
type ChatRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	Message   string `json:"message" validate:"required"`
	Mood      string `json:"mood,omitempty"`
}

// ChatResponse mirrors the client contract for a completed turn.
type ChatResponse struct {
	Content            string           `json:"content"`
	CrisisDetected     bool             `json:"crisisDetected"`
	CrisisResources    *CrisisResources `json:"crisisResources,omitempty"`
	RequiresEscalation bool             `json:"requiresEscalation"`
	IsFallback         bool             `json:"isFallback,omitempty"`
}

type quotaDeniedResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	ResetTime time.Time `json:"resetTime"`
}

// Handler handles the chat HTTP endpoint.
type Handler struct {
	svc      *Service
	validate *validator.Validate
}

// NewHandler creates a new chat handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

// Send processes one conversation turn.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	id, ok := identity.FromContext(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewValidationError(err.Error()))
		return
	}

	result, err := h.svc.Process(r.Context(), id, Request{
		SessionID: req.SessionID,
		Message:   req.Message,
		Mood:      req.Mood,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	api.JSONRaw(w, http.StatusOK, ChatResponse{
		Content:            result.Content,
		CrisisDetected:     result.CrisisDetected,
		CrisisResources:    result.CrisisResources,
		RequiresEscalation: result.RequiresEscalation,
		IsFallback:         result.IsFallback,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var validationErr *ValidationError
	var quotaErr *QuotaDeniedError
	var moderationErr *ModerationError

	switch {
	case errors.As(err, &validationErr):
		api.HandleError(w, api.NewValidationError(validationErr.Error()))
	case errors.As(err, &quotaErr):
		api.JSONRaw(w, http.StatusTooManyRequests, quotaDeniedResponse{
			Error:     quotaErr.Reason,
			Message:   quotaMessage(quotaErr),
			ResetTime: quotaErr.RetryAfter,
		})
	case errors.As(err, &moderationErr):
		api.HandleError(w, api.NewValidationError("your message could not be processed; please rephrase and try again"))
	default:
		slog.Error("chat turn failed", "error", err)
		api.HandleError(w, api.ErrInternalServer)
	}
}

func quotaMessage(err *QuotaDeniedError) string {
	if err.Reason == quota.ReasonGuestLimitReached {
		return "You've reached the daily limit for guest conversations. Create a free account to keep talking."
	}
	return "You're sending messages a little quickly. Please wait a moment and try again."
}
