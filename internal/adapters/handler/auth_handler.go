package handler

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/AchilleasB/campus-events/event-service/internal/adapters/metrics"
	"github.com/AchilleasB/campus-events/event-service/internal/adapters/middleware"
	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
	"github.com/AchilleasB/campus-events/event-service/internal/core/services"
)

type AuthHandler struct {
	auth     ports.AuthService
	tokens   *services.SessionTokens
	resolver *services.RoleResolver
	metrics  *metrics.Metrics
	secure   bool
	logger   *zap.Logger
}

// NewAuthHandler builds the auth endpoints. secure marks the session cookie
// Secure and should be true whenever the service is behind TLS.
func NewAuthHandler(
	auth ports.AuthService,
	tokens *services.SessionTokens,
	resolver *services.RoleResolver,
	m *metrics.Metrics,
	secure bool,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{auth: auth, tokens: tokens, resolver: resolver, metrics: m, secure: secure, logger: logger}
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	Authenticated bool        `json:"authenticated"`
	Role          domain.Role `json:"role"`
	Email         string      `json:"email,omitempty"`
	Home          string      `json:"home"`
	Bypass        bool        `json:"bypass,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	result, err := h.StartSession(w, r, req.Email, req.Password)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	state := result.Session
	respondData(w, http.StatusOK, SessionResponse{
		Authenticated: true,
		Role:          result.Role,
		Email:         h.resolver.Actor(state).Email,
		Home:          domain.RootPath(result.Role),
		Bypass:        result.Bypass,
	}, h.logger)
}

// StartSession signs in and sets the session cookie. Both the JSON and the
// form sign-in use it. A session the request already carried is closed once
// the new one is open.
func (h *AuthHandler) StartSession(w http.ResponseWriter, r *http.Request, email, password string) (*ports.SignInResult, error) {
	result, err := h.auth.SignIn(r.Context(), email, password)
	if err != nil {
		switch {
		case domain.KindOf(err) == domain.KindInvalidCredentials:
			h.metrics.SignIn(metrics.SignInInvalid)
		case domain.IsUnavailable(err):
			h.metrics.SignIn(metrics.SignInUnavailable)
		}
		return nil, err
	}

	state := result.Session
	subject := state.Principal.AccountID
	if subject == "" && state.Override != nil {
		subject = state.Override.Value
	}
	token, expires, err := h.tokens.Issue(state.SessionID, subject, time.Now())
	if err != nil {
		h.metrics.SignIn(metrics.SignInUnavailable)
		return nil, domain.NewError(domain.KindAuthUnavailable, "could not issue session token", err)
	}
	middleware.SetSessionCookie(w, token, expires, h.secure)

	if prev := middleware.SessionFromContext(r.Context()).SessionID; prev != "" && prev != state.SessionID {
		if err := h.auth.SignOut(r.Context(), prev); err != nil {
			h.logger.Warn("previous session not deleted", zap.String("session_id", prev), zap.Error(err))
		}
	}

	if result.Bypass {
		h.metrics.SignIn(metrics.SignInBypass)
	} else {
		h.metrics.SignIn(metrics.SignInSuccess)
	}
	return result, nil
}

// SignOut always clears the cookie; a store failure only leaves an orphaned
// record that expires on its own.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.EndSession(w, r)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	state := middleware.SessionFromContext(r.Context())
	if err := h.auth.SignOut(r.Context(), state.SessionID); err != nil {
		h.logger.Warn("session record not deleted", zap.String("session_id", state.SessionID), zap.Error(err))
	}
	middleware.ClearSessionCookie(w, h.secure)
}

func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	state := middleware.SessionFromContext(r.Context())
	if !state.Hydrated {
		w.Header().Set("Retry-After", "1")
		respondError(w, http.StatusServiceUnavailable, "loading", "session not available yet", h.logger)
		return
	}

	actor := h.resolver.Actor(state)
	respondData(w, http.StatusOK, SessionResponse{
		Authenticated: state.HasIdentity(),
		Role:          actor.Role,
		Email:         actor.Email,
		Home:          domain.RootPath(actor.Role),
		Bypass:        state.Override != nil,
	}, h.logger)
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	state := middleware.SessionFromContext(r.Context())
	if err := h.auth.ChangePassword(r.Context(), state, req.CurrentPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
