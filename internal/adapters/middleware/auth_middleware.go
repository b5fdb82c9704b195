package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/AchilleasB/campus-events/event-service/internal/adapters/metrics"
	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/services"
)

// SessionCookieName holds the signed session token.
const SessionCookieName = "session"

// loadingRetryAfter is sent with the loading page while a session store
// is slow to answer.
const loadingRetryAfter = "1"

type sessionKey struct{}

// AuthMiddleware hydrates the session for each request and applies route
// guards to it.
type AuthMiddleware struct {
	tokens   *services.SessionTokens
	sessions *services.SessionManager
	guard    *services.Guard
	loading  http.Handler
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewAuthMiddleware builds the middleware. loading renders the page shown
// while a session is not hydrated.
func NewAuthMiddleware(
	tokens *services.SessionTokens,
	sessions *services.SessionManager,
	guard *services.Guard,
	loading http.Handler,
	m *metrics.Metrics,
	logger *zap.Logger,
) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:   tokens,
		sessions: sessions,
		guard:    guard,
		loading:  loading,
		metrics:  m,
		logger:   logger,
	}
}

// Session reads the session cookie and stores the hydrated state in the
// request context. A bad or expired cookie is treated as no cookie.
func (m *AuthMiddleware) Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sessionID string
		if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
			sid, err := m.tokens.Parse(cookie.Value)
			if err != nil {
				m.logger.Debug("ignoring session cookie", zap.Error(err))
			} else {
				sessionID = sid
			}
		}

		state := m.sessions.Hydrate(r.Context(), sessionID)
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), state)))
	})
}

// RequirePage guards an HTML route. Redirects use 303 so that a POST
// (sign-in, sign-out) lands on a GET.
func (m *AuthMiddleware) RequirePage(rule services.GuardRule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := m.decide(r, rule)
			switch decision.Outcome {
			case services.OutcomeLoading:
				w.Header().Set("Retry-After", loadingRetryAfter)
				m.loading.ServeHTTP(w, r)
			case services.OutcomeRedirect:
				http.Redirect(w, r, decision.Target, http.StatusSeeOther)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// RequireAPI guards a JSON route: redirects become 401 or 403 and loading
// becomes 503.
func (m *AuthMiddleware) RequireAPI(rule services.GuardRule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := m.decide(r, rule)
			switch {
			case decision.Outcome == services.OutcomeLoading:
				w.Header().Set("Retry-After", loadingRetryAfter)
				writeError(w, http.StatusServiceUnavailable, "session not available yet")
			case decision.Outcome == services.OutcomeRedirect && decision.Unauthenticated:
				writeError(w, http.StatusUnauthorized, "sign in required")
			case decision.Outcome == services.OutcomeRedirect:
				writeError(w, http.StatusForbidden, "forbidden")
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func (m *AuthMiddleware) decide(r *http.Request, rule services.GuardRule) services.Decision {
	decision := m.guard.Decide(SessionFromContext(r.Context()), rule)
	m.metrics.GuardDecision(rule.Kind.String(), decision.Outcome.String())

	switch decision.Outcome {
	case services.OutcomeRedirect:
		m.logger.Info("guard redirect",
			zap.String("path", r.URL.Path),
			zap.String("rule", rule.Kind.String()),
			zap.String("role", decision.Role.String()),
			zap.String("target", decision.Target))
	case services.OutcomeLoading:
		m.logger.Warn("guard waiting for session", zap.String("path", r.URL.Path))
	}
	return decision
}

func WithSession(ctx context.Context, state domain.SessionState) context.Context {
	return context.WithValue(ctx, sessionKey{}, state)
}

// SessionFromContext returns the hydrated state, or an unhydrated zero
// state when Session did not run.
func SessionFromContext(ctx context.Context) domain.SessionState {
	state, _ := ctx.Value(sessionKey{}).(domain.SessionState)
	return state
}

// SetSessionCookie writes the signed token. The cookie is HttpOnly and
// SameSite=Lax; secure is set outside development.
func SetSessionCookie(w http.ResponseWriter, token string, expires time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    status,
		"message": message,
	})
}
