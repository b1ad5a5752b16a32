package handler

import (
	"net/http"

	"keai-wms/backend/internal/devotp"
)

// DevHandler exposes issued OTP codes for local development. It is mounted
// only when dev OTP mode is on, and never in production.
type DevHandler struct {
	store devotp.Store
}

// NewDevHandler creates a DevHandler over the dev OTP store.
func NewDevHandler(store devotp.Store) *DevHandler {
	return &DevHandler{store: store}
}

// OTP returns the code for a challenge.
// GET /dev/otp?challenge_id=...
func (h *DevHandler) OTP(w http.ResponseWriter, r *http.Request) {
	challengeID := r.URL.Query().Get("challenge_id")
	if challengeID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "challenge_id is required")
		return
	}
	code, ok := h.store.Get(r.Context(), challengeID)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "no code for that challenge")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"challenge_id": challengeID, "code": code})
}
