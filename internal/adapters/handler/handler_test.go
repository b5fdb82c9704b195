package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AchilleasB/campus-events/event-service/internal/adapters/metrics"
	"github.com/AchilleasB/campus-events/event-service/internal/adapters/middleware"
	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
	"github.com/AchilleasB/campus-events/event-service/internal/core/services"
	"github.com/AchilleasB/campus-events/event-service/test/mocks"
)

var (
	resolver = services.NewRoleResolver(services.DefaultRolePolicy())

	associationSession = domain.SessionState{
		Hydrated:  true,
		SessionID: "sess-1",
		Principal: domain.Authenticated("user-1", "user1@example.com"),
	}
	facultySession = domain.SessionState{
		Hydrated:  true,
		SessionID: "sess-2",
		Override:  &domain.OverrideToken{Role: domain.RoleFaculty, Value: "hod@example.com"},
	}
	guestSession = domain.SessionState{Hydrated: true}
)

// withSession stands in for the session middleware.
func withSession(state domain.SessionState, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(middleware.WithSession(r.Context(), state)))
	})
}

func doRequest(h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NoError(t, json.Unmarshal(resp.Data, v))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{domain.ErrPermissionDenied, http.StatusForbidden, "permission_denied"},
		{domain.ErrNotFound, http.StatusNotFound, "not_found"},
		{domain.NewValidationError(domain.KindMissingField, "title", "is required"), http.StatusBadRequest, "missing_field"},
		{domain.NewValidationError(domain.KindInvalidRange, "date", "bad"), http.StatusBadRequest, "invalid_range"},
		{domain.ErrAuthUnavailable, http.StatusServiceUnavailable, "auth_unavailable"},
		{domain.ErrDataUnavailable, http.StatusServiceUnavailable, "data_unavailable"},
		{assert.AnError, http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status, code := StatusFor(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestHandleServiceError(t *testing.T) {
	t.Run("validation error carries the field", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HandleServiceError(rec, domain.NewValidationError(domain.KindMissingField, "event_name", "is required"), zap.NewNop())

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var resp ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "missing_field", resp.Error)
		assert.Equal(t, map[string]string{"event_name": "is required"}, resp.Details)
	})

	t.Run("unavailable asks the client to retry", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HandleServiceError(rec, domain.NewError(domain.KindDataUnavailable, "query failed", assert.AnError), zap.NewNop())

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "5", rec.Header().Get("Retry-After"))
		assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
	})
}

func TestFilterFromQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?status=pending&upcoming=true&limit=5", nil)
	filter, err := filterFromQuery(req)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, filter.Status)
	assert.True(t, filter.ByDate)
	assert.Equal(t, 5, filter.Limit)

	_, err = filterFromQuery(httptest.NewRequest(http.MethodGet, "/?status=archived", nil))
	assert.Equal(t, domain.KindInvalidRange, domain.KindOf(err))

	_, err = filterFromQuery(httptest.NewRequest(http.MethodGet, "/?limit=-1", nil))
	assert.Equal(t, domain.KindInvalidRange, domain.KindOf(err))
}

func newEventRouter(repo *mocks.MockEventRequestRepository, state domain.SessionState) http.Handler {
	h := NewEventHandler(services.NewEventRequestService(repo, zap.NewNop()), resolver, zap.NewNop())
	r := chi.NewRouter()
	r.Get("/events", h.List)
	r.Post("/events", h.Create)
	r.Put("/events/{id}/status", h.UpdateStatus)
	r.Post("/events/{id}/cancel", h.Cancel)
	return withSession(state, r)
}

func TestEventHandler_CreateAndList(t *testing.T) {
	repo := mocks.NewMockEventRequestRepository()
	router := newEventRouter(repo, associationSession)

	rec := doRequest(router, http.MethodPost, "/events", domain.NewEventRequest{
		Association: "Robotics Club",
		EventName:   "Hackathon",
		Date:        "2024-04-12",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created domain.EventRequest
	decodeData(t, rec, &created)
	assert.Equal(t, domain.StatusPending, created.Status)
	assert.Equal(t, "user-1", created.UserID)

	rec = doRequest(router, http.MethodGet, "/events", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []domain.EventRequest
	decodeData(t, rec, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
}

func TestEventHandler_EmptyListIsArray(t *testing.T) {
	router := newEventRouter(mocks.NewMockEventRequestRepository(), associationSession)

	rec := doRequest(router, http.MethodGet, "/events", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestEventHandler_MissingField(t *testing.T) {
	repo := mocks.NewMockEventRequestRepository()
	router := newEventRouter(repo, associationSession)

	rec := doRequest(router, http.MethodPost, "/events", domain.NewEventRequest{Association: "Robotics Club", Date: "2024-04-12"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, repo.CreateCalls)
}

func TestEventHandler_GuestIsForbidden(t *testing.T) {
	repo := mocks.NewMockEventRequestRepository()
	router := newEventRouter(repo, guestSession)

	rec := doRequest(router, http.MethodPost, "/events", domain.NewEventRequest{
		Association: "Robotics Club",
		EventName:   "Hackathon",
		Date:        "2024-04-12",
	})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, repo.CreateCalls)
}

func TestEventHandler_UpdateStatus(t *testing.T) {
	repo := mocks.NewMockEventRequestRepository()
	repo.SeedEvent(mocks.TestEvent(mocks.EventID1, "user-1", domain.StatusPending))

	t.Run("faculty approves", func(t *testing.T) {
		rec := doRequest(newEventRouter(repo, facultySession), http.MethodPut, "/events/"+mocks.EventID1+"/status", statusRequest{Status: domain.StatusApproved})
		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.Len(t, repo.StatusUpdates, 1)
		assert.Equal(t, domain.StatusApproved, repo.StatusUpdates[0].Status)
	})

	t.Run("association cannot review", func(t *testing.T) {
		rec := doRequest(newEventRouter(repo, associationSession), http.MethodPut, "/events/"+mocks.EventID1+"/status", statusRequest{Status: domain.StatusRejected})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown event", func(t *testing.T) {
		rec := doRequest(newEventRouter(repo, facultySession), http.MethodPut, "/events/"+mocks.MissingID+"/status", statusRequest{Status: domain.StatusApproved})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestEventHandler_CancelOwnEvent(t *testing.T) {
	repo := mocks.NewMockEventRequestRepository()
	repo.SeedEvent(mocks.TestEvent(mocks.EventID1, "user-1", domain.StatusApproved))
	repo.SeedEvent(mocks.TestEvent(mocks.EventID2, "user-2", domain.StatusApproved))
	router := newEventRouter(repo, associationSession)

	rec := doRequest(router, http.MethodPost, "/events/"+mocks.EventID1+"/cancel", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(router, http.MethodPost, "/events/"+mocks.EventID2+"/cancel", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(router, http.MethodPost, "/events/x/cancel", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDecodeJSON_EmptyBody(t *testing.T) {
	router := newEventRouter(mocks.NewMockEventRequestRepository(), associationSession)

	req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(""))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing_field")
}

type authFixture struct {
	accounts *mocks.MockAccountRepository
	store    *mocks.MockSessionStore
	handler  *AuthHandler
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	logger := zap.NewNop()
	key := mocks.TestRSAKey()
	accounts := mocks.NewMockAccountRepository()
	accounts.SeedAccount(mocks.TestAccount("user-1", "user1@example.com", "password123"))
	store := mocks.NewMockSessionStore()
	sessions := services.NewSessionManager(store, time.Hour, time.Second, logger)
	auth := services.NewAuthService(accounts, sessions, resolver, services.DemoBypass{}, logger)
	tokens := services.NewSessionTokens(key, &key.PublicKey, time.Hour)
	return &authFixture{
		accounts: accounts,
		store:    store,
		handler:  NewAuthHandler(auth, tokens, resolver, metrics.New(), false, logger),
	}
}

func TestAuthHandler_SignIn(t *testing.T) {
	f := newAuthFixture(t)

	rec := doRequest(http.HandlerFunc(f.handler.SignIn), http.MethodPost, "/auth/signin", SignInRequest{
		Email:    "user1@example.com",
		Password: "password123",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp SessionResponse
	decodeData(t, rec, &resp)
	assert.True(t, resp.Authenticated)
	assert.Equal(t, domain.RoleAssociation, resp.Role)
	assert.Equal(t, domain.PathDashboard, resp.Home)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 1, f.store.Len())
}

func TestAuthHandler_SignInAgainClosesPreviousSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Save(ctx, ports.SessionRecord{
		ID:        "sess-old",
		Principal: domain.Principal{AccountID: "user-1", Email: "user1@example.com"},
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}))
	previous := domain.SessionState{Hydrated: true, SessionID: "sess-old"}

	rec := doRequest(withSession(previous, http.HandlerFunc(f.handler.SignIn)), http.MethodPost, "/auth/signin", SignInRequest{
		Email:    "user1@example.com",
		Password: "password123",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, f.store.Len())
	_, err := f.store.Get(ctx, "sess-old")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// a failed attempt keeps the current session
	require.NoError(t, f.store.Save(ctx, ports.SessionRecord{ID: "sess-old", ExpiresAt: time.Now().Add(time.Hour)}))
	rec = doRequest(withSession(previous, http.HandlerFunc(f.handler.SignIn)), http.MethodPost, "/auth/signin", SignInRequest{
		Email:    "user1@example.com",
		Password: "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	_, err = f.store.Get(ctx, "sess-old")
	assert.NoError(t, err)
}

func TestAuthHandler_SignInInvalid(t *testing.T) {
	f := newAuthFixture(t)

	rec := doRequest(http.HandlerFunc(f.handler.SignIn), http.MethodPost, "/auth/signin", SignInRequest{
		Email:    "user1@example.com",
		Password: "wrong-password",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
	assert.Equal(t, 0, f.store.Len())
}

func TestAuthHandler_SignOutClearsCookie(t *testing.T) {
	f := newAuthFixture(t)

	rec := doRequest(withSession(associationSession, http.HandlerFunc(f.handler.SignOut)), http.MethodPost, "/auth/signout", nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestAuthHandler_Session(t *testing.T) {
	f := newAuthFixture(t)

	t.Run("loading until hydrated", func(t *testing.T) {
		rec := doRequest(withSession(domain.SessionState{}, http.HandlerFunc(f.handler.Session)), http.MethodGet, "/auth/session", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("override session", func(t *testing.T) {
		rec := doRequest(withSession(facultySession, http.HandlerFunc(f.handler.Session)), http.MethodGet, "/auth/session", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp SessionResponse
		decodeData(t, rec, &resp)
		assert.Equal(t, domain.RoleFaculty, resp.Role)
		assert.Equal(t, domain.PathFaculty, resp.Home)
		assert.True(t, resp.Bypass)
	})
}

func TestReportHandler_Export(t *testing.T) {
	repo := mocks.NewMockReportRepository()
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(t.Context(), domain.Report{
		ID:        mocks.ReportID1,
		Title:     "Annual Summary",
		Content:   "# Highlights\n\nA good year.",
		UserID:    "user-1",
		CreatedAt: created,
		UpdatedAt: created,
	}))
	h := NewReportHandler(services.NewReportService(repo, zap.NewNop()), resolver, zap.NewNop())
	r := chi.NewRouter()
	r.Get("/reports/{id}/export", h.Export)

	rec := doRequest(withSession(associationSession, r), http.MethodGet, "/reports/"+mocks.ReportID1+"/export", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="annual-summary.html"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "Event Management System")

	rec = doRequest(withSession(domain.SessionState{Hydrated: true, Principal: domain.Authenticated("user-2", "user2@example.com")}, r),
		http.MethodGet, "/reports/"+mocks.ReportID1+"/export", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRegistrationHandler_AdminOnly(t *testing.T) {
	accounts := mocks.NewMockAccountRepository()
	h := NewRegistrationHandler(services.NewUserService(accounts, resolver, zap.NewNop()), resolver, zap.NewNop())
	admin := domain.SessionState{Hydrated: true, Principal: domain.Authenticated("admin-1", "admin@example.com")}

	rec := doRequest(withSession(admin, http.HandlerFunc(h.Register)), http.MethodPost, "/users", RegistrationRequest{
		Email:    "newclub@example.com",
		Password: "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, accounts.CreateCalls, 1)

	rec = doRequest(withSession(associationSession, http.HandlerFunc(h.Register)), http.MethodPost, "/users", RegistrationRequest{
		Email:    "other@example.com",
		Password: "password123",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Len(t, accounts.CreateCalls, 1)
}
