package quota

import (
	"log/slog"
	"net/http"

	"github.com/solace-platform/solace/internal/api"
	"github.com/solace-platform/solace/internal/identity"
)

// Handler serves the quota status endpoint.
type Handler struct {
	enforcer   *Enforcer
	classifier *Classifier
}

func NewHandler(enforcer *Enforcer, classifier *Classifier) *Handler {
	return &Handler{enforcer: enforcer, classifier: classifier}
}

// GetStatus returns the caller's current usage and limits.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := identity.FromContext(r.Context())
	if !ok {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	tier := h.classifier.TierFor(r.Context(), id)
	status, err := h.enforcer.GetStatus(r.Context(), id.UserID, tier)
	if err != nil {
		slog.Error("reading quota status", "user", id.UserID, "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, status)
}
