package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/basedmerge/tokengate/internal/access"
	"github.com/basedmerge/tokengate/internal/api/handler"
	"github.com/basedmerge/tokengate/internal/api/middleware"
	"github.com/basedmerge/tokengate/internal/api/response"
	"github.com/basedmerge/tokengate/internal/model"
	"github.com/basedmerge/tokengate/internal/services/auth"
	"github.com/basedmerge/tokengate/internal/services/profile"
	"github.com/basedmerge/tokengate/internal/sse"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	AuthService    *auth.Service
	ProfileService *profile.Service
	Machine        *access.Machine
	Hub            *sse.Hub
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	sessionHandler := handler.NewSessionHandler(cfg.AuthService)
	accessHandler := handler.NewAccessHandler(cfg.Machine)
	profileHandler := handler.NewProfileHandler(cfg.ProfileService, cfg.Machine)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Session routes (no auth required; the signature is the proof)
	api.HandleFunc("/session/challenge", sessionHandler.Challenge).Methods(http.MethodPost)
	api.HandleFunc("/session", sessionHandler.Create).Methods(http.MethodPost)

	sessionProtected := api.PathPrefix("/session").Subrouter()
	sessionProtected.Use(authMiddleware)
	sessionProtected.HandleFunc("", sessionHandler.Delete).Methods(http.MethodDelete)

	// Access flow routes. The machine drives a single process-wide wallet
	// session; reads are open, mutations require a session.
	api.HandleFunc("/access", accessHandler.Get).Methods(http.MethodGet)

	accessProtected := api.PathPrefix("/access").Subrouter()
	accessProtected.Use(authMiddleware)
	accessProtected.HandleFunc("/connect", accessHandler.Connect).Methods(http.MethodPost)
	accessProtected.HandleFunc("/retry", accessHandler.Retry).Methods(http.MethodPost)
	accessProtected.HandleFunc("/mint", accessHandler.Mint).Methods(http.MethodPost)
	accessProtected.HandleFunc("/start", accessHandler.Start).Methods(http.MethodPost)

	// Profile routes
	profileProtected := api.PathPrefix("/profile").Subrouter()
	profileProtected.Use(authMiddleware)
	profileProtected.HandleFunc("", profileHandler.GetMe).Methods(http.MethodGet)
	profileProtected.HandleFunc("/score", profileHandler.SubmitScore).Methods(http.MethodPost)
	profileProtected.HandleFunc("/username", profileHandler.SetUsername).Methods(http.MethodPatch)

	// Leaderboard is public
	api.HandleFunc("/leaderboard", profileHandler.Leaderboard).Methods(http.MethodGet)

	// Event stream (no auth; carries no secrets)
	api.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		sse.ServeSSE(w, r, cfg.Hub)
	}).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler(cfg)).Methods(http.MethodGet)

	return r
}

func healthHandler(cfg RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		if cfg.ProfileService.Mode() == model.StorageModeDegraded {
			status = "degraded"
		}
		response.JSON(w, http.StatusOK, response.Health{
			Status:      status,
			StorageMode: string(cfg.ProfileService.Mode()),
			AccessState: string(cfg.Machine.State()),
		})
	}
}
