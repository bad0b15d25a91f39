package handler

import (
	"net/http"

	"github.com/basedmerge/tokengate/internal/access"
	"github.com/basedmerge/tokengate/internal/api/response"
	"github.com/basedmerge/tokengate/internal/mint"
)

// AccessHandler exposes the access state machine over HTTP
type AccessHandler struct {
	machine *access.Machine
}

// NewAccessHandler creates a new access handler
func NewAccessHandler(machine *access.Machine) *AccessHandler {
	return &AccessHandler{
		machine: machine,
	}
}

// Get handles GET /api/v1/access
func (h *AccessHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.AccessSnapshotFromModel(h.machine.Snapshot()))
}

// Connect handles POST /api/v1/access/connect
func (h *AccessHandler) Connect(w http.ResponseWriter, r *http.Request) {
	if err := h.machine.Connect(r.Context()); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.AccessSnapshotFromModel(h.machine.Snapshot()))
}

// Retry handles POST /api/v1/access/retry
func (h *AccessHandler) Retry(w http.ResponseWriter, r *http.Request) {
	if err := h.machine.Retry(r.Context()); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.AccessSnapshotFromModel(h.machine.Snapshot()))
}

// Mint handles POST /api/v1/access/mint. The call blocks until the mint
// cycle reaches a terminal outcome; progress is streamed over SSE in the
// meantime.
func (h *AccessHandler) Mint(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.machine.Mint(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	status := http.StatusOK
	if outcome == mint.OutcomeTimedOut {
		status = http.StatusAccepted
	}
	response.JSON(w, status, response.MintResult{
		Outcome:  string(outcome),
		Snapshot: response.AccessSnapshotFromModel(h.machine.Snapshot()),
	})
}

// Start handles POST /api/v1/access/start
func (h *AccessHandler) Start(w http.ResponseWriter, r *http.Request) {
	profile, err := h.machine.StartGame()
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ProfileFromModel(profile))
}
