package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"keai-wms/backend/internal/account"
	"keai-wms/backend/internal/account/repository"
	"keai-wms/backend/internal/middleware"
)

// AccountHandler serves account management endpoints.
type AccountHandler struct {
	service *account.Service
	repo    repository.Repository
}

// NewAccountHandler creates an AccountHandler.
func NewAccountHandler(service *account.Service, repo repository.Repository) *AccountHandler {
	return &AccountHandler{service: service, repo: repo}
}

type accountRequest struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	ContactNumber string `json:"contact_number"`
	RoleID        int    `json:"role_id"`
	Password      string `json:"password"`
}

type accountResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	ContactNumber string `json:"contact_number,omitempty"`
	RoleID        int    `json:"role_id"`
}

// Create registers a new account.
// POST /accounts (authenticated)
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	id, err := h.service.Create(r.Context(), req.Email, req.Name, req.ContactNumber, req.RoleID, req.Password)
	switch {
	case errors.Is(err, account.ErrEmailAlreadyRegistered):
		writeError(w, http.StatusConflict, "email_taken", "an account with that email already exists")
		return
	case errors.Is(err, account.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	case err != nil:
		log.Printf("handler: create account: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not create account")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// Update modifies an existing account.
// PUT /accounts/{id} (authenticated)
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	err := h.service.Update(r.Context(), id, req.Email, req.Name, req.ContactNumber, req.RoleID, req.Password)
	switch {
	case errors.Is(err, account.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "not_found", "no such account")
		return
	case errors.Is(err, account.ErrEmailAlreadyRegistered):
		writeError(w, http.StatusConflict, "email_taken", "an account with that email already exists")
		return
	case errors.Is(err, account.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	case err != nil:
		log.Printf("handler: update account: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not update account")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Get returns a single account.
// GET /accounts/{id} (authenticated)
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		log.Printf("handler: get account: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not load account")
		return
	}
	if a == nil {
		writeError(w, http.StatusNotFound, "not_found", "no such account")
		return
	}
	writeJSON(w, http.StatusOK, accountResponse{
		ID:            a.ID,
		Email:         a.Email,
		Name:          a.Name,
		ContactNumber: a.ContactNumber,
		RoleID:        a.RoleID,
	})
}

// Me returns the caller's own account.
// GET /accounts/me (authenticated)
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	accountID, err := middleware.AccountIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "no session")
		return
	}
	a, err := h.repo.GetByID(r.Context(), accountID)
	if err != nil {
		log.Printf("handler: get own account: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not load account")
		return
	}
	if a == nil {
		writeError(w, http.StatusNotFound, "not_found", "account is gone")
		return
	}
	writeJSON(w, http.StatusOK, accountResponse{
		ID:            a.ID,
		Email:         a.Email,
		Name:          a.Name,
		ContactNumber: a.ContactNumber,
		RoleID:        a.RoleID,
	})
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

// ResetPassword replaces an account's password.
// POST /accounts/{id}/password (authenticated)
func (h *AccountHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	err := h.service.ResetPassword(r.Context(), id, req.Password)
	switch {
	case errors.Is(err, account.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "not_found", "no such account")
		return
	case errors.Is(err, account.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	case err != nil:
		log.Printf("handler: reset password: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not reset password")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
