package handler

import (
	"encoding/json"
	"net/http"

	"github.com/basedmerge/tokengate/internal/api/middleware"
	"github.com/basedmerge/tokengate/internal/api/request"
	"github.com/basedmerge/tokengate/internal/api/response"
	"github.com/basedmerge/tokengate/internal/services/auth"
)

// SessionHandler handles wallet-signature session endpoints
type SessionHandler struct {
	authService *auth.Service
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(authService *auth.Service) *SessionHandler {
	return &SessionHandler{
		authService: authService,
	}
}

// Challenge handles POST /api/v1/session/challenge
func (h *SessionHandler) Challenge(w http.ResponseWriter, r *http.Request) {
	var req request.ChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Address == "" {
		WriteError(w, NewInvalidRequestError("address is required"))
		return
	}

	challenge := h.authService.NewChallenge(req.Address)
	response.JSON(w, http.StatusCreated, response.ChallengeFromModel(challenge))
}

// Create handles POST /api/v1/session
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Address == "" {
		WriteError(w, NewInvalidRequestError("address is required"))
		return
	}
	if req.Signature == "" {
		WriteError(w, NewInvalidRequestError("signature is required"))
		return
	}

	session, err := h.authService.Authenticate(req.Address, req.Signature)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SessionFromModel(session))
}

// Delete handles DELETE /api/v1/session
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())
	h.authService.InvalidateSession(session.Token)
	response.NoContent(w)
}
