// Package handler provides the HTTP handlers for the API server.
package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"keai-wms/backend/internal/authn"
	"keai-wms/backend/internal/middleware"
)

// AuthHandler serves the login, OTP verification, and session endpoints.
type AuthHandler struct {
	service *authn.Service
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(service *authn.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Status      string `json:"status"`
	ChallengeID string `json:"challenge_id,omitempty"`
}

// Login runs the password stage.
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	res, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		log.Printf("handler: login failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "login failed")
		return
	}

	switch res.Verdict {
	case authn.VerdictSuccess:
		writeJSON(w, http.StatusOK, loginResponse{Status: "otp_required", ChallengeID: res.ChallengeID})
	case authn.VerdictLockedOut:
		writeError(w, http.StatusLocked, "locked_out", "too many failed attempts, try again later")
	default:
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "email or password is incorrect")
	}
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type verifyResponse struct {
	Status    string    `json:"status"`
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Verify runs the OTP stage and establishes the session.
// POST /auth/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	res, err := h.service.VerifyOTP(r.Context(), req.Email, req.Code)
	if err != nil {
		log.Printf("handler: otp verify failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "verification failed")
		return
	}

	switch res.Verdict {
	case authn.VerdictSuccess:
		writeJSON(w, http.StatusOK, verifyResponse{
			Status:    "authenticated",
			SessionID: res.SessionID,
			Token:     res.Token,
			ExpiresAt: res.ExpiresAt,
		})
	case authn.VerdictOtpInvalid:
		writeError(w, http.StatusUnauthorized, "otp_invalid", "the code is incorrect")
	case authn.VerdictOtpAttemptsExceeded:
		writeError(w, http.StatusUnauthorized, "otp_attempts_exceeded", "too many wrong codes, request a new one")
	default:
		writeError(w, http.StatusUnauthorized, "otp_expired", "no active code, request a new one")
	}
}

// Logout tears down the caller's session.
// POST /auth/logout (authenticated)
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID, err := middleware.SessionIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "no session")
		return
	}
	h.service.Logout(sessionID)
	w.WriteHeader(http.StatusNoContent)
}

// Heartbeat records activity on the caller's session.
// POST /auth/heartbeat (authenticated)
func (h *AuthHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	sessionID, err := middleware.SessionIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "no session")
		return
	}
	if h.service.Heartbeat(sessionID) != authn.VerdictSuccess {
		writeError(w, http.StatusUnauthorized, "session_expired", "session is gone")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "active"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("handler: write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"code": code, "message": message})
}
