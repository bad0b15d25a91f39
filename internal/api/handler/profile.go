package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/basedmerge/tokengate/internal/access"
	"github.com/basedmerge/tokengate/internal/api/middleware"
	"github.com/basedmerge/tokengate/internal/api/request"
	"github.com/basedmerge/tokengate/internal/api/response"
	"github.com/basedmerge/tokengate/internal/model"
	"github.com/basedmerge/tokengate/internal/services/profile"
)

const defaultLeaderboardSize = 10

// ProfileHandler handles profile and leaderboard endpoints
type ProfileHandler struct {
	profiles *profile.Service
	machine  *access.Machine
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profiles *profile.Service, machine *access.Machine) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		machine:  machine,
	}
}

// GetMe handles GET /api/v1/profile
func (h *ProfileHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	resolved, err := h.profiles.Resolve(r.Context(), session.Address)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ProfileFromModel(resolved))
}

// SubmitScore handles POST /api/v1/profile/score. Scores go through the
// machine so the unlock requirement and the SSE stream both apply. The
// session must belong to the machine's active wallet: the machine writes
// to whatever address it holds, so a token for another address must not
// reach it.
func (h *ProfileHandler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	var req request.ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	// With no account connected the machine reports not-ready below.
	if account := h.machine.Account(); account != nil && model.CanonicalAddress(account.Address) != session.Address {
		WriteError(w, NewWalletMismatchError())
		return
	}

	updated, err := h.machine.RecordScore(r.Context(), req.Score)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ProfileFromModel(updated))
}

// SetUsername handles PATCH /api/v1/profile/username
func (h *ProfileHandler) SetUsername(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	var req request.UsernameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.Username == "" {
		WriteError(w, NewInvalidRequestError("username is required"))
		return
	}

	updated, err := h.profiles.SetUsername(r.Context(), session.Address, req.Username)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ProfileFromModel(updated))
}

// Leaderboard handles GET /api/v1/leaderboard
func (h *ProfileHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	n := defaultLeaderboardSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			WriteError(w, NewInvalidRequestError("limit must be 1-100"))
			return
		}
		n = parsed
	}

	board, err := h.profiles.Leaderboard(r.Context(), n)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.LeaderboardFromModel(board))
}
