package ui

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

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
)

type fakeSessions struct {
	err     error
	role    domain.Role
	started []string
	ended   int
}

func (f *fakeSessions) StartSession(w http.ResponseWriter, r *http.Request, email, password string) (*ports.SignInResult, error) {
	f.started = append(f.started, email)
	if f.err != nil {
		return nil, f.err
	}
	return &ports.SignInResult{Role: f.role}, nil
}

func (f *fakeSessions) EndSession(w http.ResponseWriter, r *http.Request) {
	f.ended++
}

type fixture struct {
	events   *mocks.MockEventRequestRepository
	sessions *fakeSessions
	handler  *Handler
}

func newFixture() *fixture {
	logger := zap.NewNop()
	events := mocks.NewMockEventRequestRepository()
	sessions := &fakeSessions{role: domain.RoleAssociation}
	svc := Services{Events: services.NewEventRequestService(events, logger)}
	return &fixture{
		events:   events,
		sessions: sessions,
		handler:  NewHandler(svc, sessions, resolver, false, logger),
	}
}

// router mounts the dashboards the way cmd/api does, with state standing in
// for the session middleware.
func (f *fixture) router(state domain.SessionState) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithSession(req.Context(), state)))
		})
	})
	r.Get("/", f.handler.Home)
	r.Post("/auth", f.handler.SignIn)
	r.Post("/auth/signout", f.handler.SignOut)
	for _, root := range []string{domain.PathDashboard, domain.PathFaculty, domain.PathAdmin} {
		r.Get(root, f.handler.Dashboard)
		r.Get(root+"/{tab}", f.handler.Dashboard)
		r.Post(root+"/{tab}", f.handler.Act)
	}
	return r
}

func postForm(h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestPanels_CoverEveryMenuTab(t *testing.T) {
	for _, role := range []domain.Role{domain.RoleAssociation, domain.RoleFaculty, domain.RoleAdmin} {
		for _, item := range domain.Menu(role) {
			p, ok := panels[role][item.Tab]
			if assert.True(t, ok, "%s has no panel for %s", role, item.Tab) {
				assert.NotNil(t, p.load, "%s/%s", role, item.Tab)
				assert.NotNil(t, p.render, "%s/%s", role, item.Tab)
			}
		}
		assert.Len(t, panels[role], len(domain.Menu(role)), role)
	}
}

func TestDashboard_RendersActiveTab(t *testing.T) {
	f := newFixture()
	f.events.SeedEvent(mocks.TestEvent(mocks.EventID1, "user-2", domain.StatusPending))

	rec := get(f.router(facultySession), "/faculty/event-request")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "Hackathon "+mocks.EventID1)
	assert.Contains(t, body, `value="decide-event"`)
	assert.Contains(t, body, `href="/faculty/fund-request"`)
	assert.NotContains(t, body, `href="/dashboard/report"`)
}

func TestDashboard_TabOutsideMenuRedirectsToDefault(t *testing.T) {
	f := newFixture()

	rec := get(f.router(associationSession), "/dashboard/user-management")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard/dashboard", rec.Header().Get("Location"))
}

func TestDashboard_UnhydratedSessionShowsLoading(t *testing.T) {
	f := newFixture()

	rec := get(f.router(domain.SessionState{}), "/faculty/event-request")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "Loading...")
}

func TestDashboard_LoadErrorIsFlashed(t *testing.T) {
	f := newFixture()
	f.events.ListError = domain.ErrNotFound

	rec := get(f.router(facultySession), "/faculty/event-request")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not found")
}

func TestAct_DecideEvent(t *testing.T) {
	form := url.Values{"action": {"decide-event"}, "id": {mocks.EventID1}, "status": {"approved"}}

	t.Run("commit updates the row in place", func(t *testing.T) {
		f := newFixture()
		f.events.SeedEvent(mocks.TestEvent(mocks.EventID1, "user-2", domain.StatusPending))

		rec := postForm(f.router(facultySession), "/faculty/event-request", form)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "badge-approved")
		assert.Contains(t, rec.Body.String(), "Event request approved")
		require.Len(t, f.events.StatusUpdates, 1)
		assert.Equal(t, domain.StatusApproved, f.events.StatusUpdates[0].Status)
	})

	t.Run("failed commit restores the row", func(t *testing.T) {
		f := newFixture()
		f.events.SeedEvent(mocks.TestEvent(mocks.EventID1, "user-2", domain.StatusPending))
		f.events.UpdateError = domain.ErrNotFound

		rec := postForm(f.router(facultySession), "/faculty/event-request", form)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "badge-pending")
		assert.NotContains(t, body, "badge-approved")
		assert.Contains(t, body, "not found")
	})

	t.Run("association cannot decide", func(t *testing.T) {
		f := newFixture()
		f.events.SeedEvent(mocks.TestEvent(mocks.EventID1, "user-1", domain.StatusPending))

		rec := postForm(f.router(associationSession), "/dashboard/cancel-event", form)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, f.events.StatusUpdates)
	})
}

func TestAct_FormActionsRedirect(t *testing.T) {
	t.Run("success carries a notice", func(t *testing.T) {
		f := newFixture()
		form := url.Values{
			"action":      {"submit-event"},
			"association": {"Robotics Club"},
			"event_name":  {"Hackathon"},
			"date":        {"2024-05-01"},
		}

		rec := postForm(f.router(associationSession), "/dashboard/event-request", form)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		loc, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "/dashboard/event-request", loc.Path)
		assert.Equal(t, "Event request submitted", loc.Query().Get("notice"))
		require.Len(t, f.events.CreateCalls, 1)
		assert.Equal(t, "user-1", f.events.CreateCalls[0].UserID)
	})

	t.Run("validation failure carries the error", func(t *testing.T) {
		f := newFixture()
		form := url.Values{"action": {"submit-event"}, "association": {"Robotics Club"}, "date": {"2024-05-01"}}

		rec := postForm(f.router(associationSession), "/dashboard/event-request", form)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		loc, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		assert.NotEmpty(t, loc.Query().Get("error"))
		assert.Empty(t, f.events.CreateCalls)
	})

	t.Run("unknown action", func(t *testing.T) {
		f := newFixture()

		rec := postForm(f.router(associationSession), "/dashboard/event-request", url.Values{"action": {"explode"}})

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Contains(t, rec.Header().Get("Location"), "error=Unknown+action")
	})

	t.Run("post to a tab outside the menu", func(t *testing.T) {
		f := newFixture()

		rec := postForm(f.router(associationSession), "/dashboard/user-management", url.Values{"action": {"register-user"}})

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSignIn(t *testing.T) {
	t.Run("success lands on the role root", func(t *testing.T) {
		f := newFixture()
		f.sessions.role = domain.RoleFaculty

		rec := postForm(f.router(domain.SessionState{Hydrated: true}), "/auth",
			url.Values{"email": {" hod@example.com "}, "password": {"secret"}})

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, domain.PathFaculty, rec.Header().Get("Location"))
		assert.Equal(t, []string{"hod@example.com"}, f.sessions.started)
	})

	t.Run("failure re-renders the form", func(t *testing.T) {
		f := newFixture()
		f.sessions.err = domain.ErrInvalidCredentials

		rec := postForm(f.router(domain.SessionState{Hydrated: true}), "/auth",
			url.Values{"email": {"user1@example.com"}, "password": {"wrong"}})

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Invalid email or password")
		assert.Contains(t, body, `value="user1@example.com"`)
	})

	t.Run("sign out", func(t *testing.T) {
		f := newFixture()

		rec := postForm(f.router(associationSession), "/auth/signout", url.Values{})

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, domain.PathHome, rec.Header().Get("Location"))
		assert.Equal(t, 1, f.sessions.ended)
	})
}

func TestHome(t *testing.T) {
	f := newFixture()

	rec := get(f.router(associationSession), "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="/dashboard"`)

	rec = get(f.router(domain.SessionState{Hydrated: true}), "/")
	assert.Contains(t, rec.Body.String(), `href="/auth"`)
}

func TestRequireCSRF(t *testing.T) {
	h := newFixture().handler
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	guarded := h.EnsureCSRFToken(h.RequireCSRF(ok))

	t.Run("get passes and issues a cookie", func(t *testing.T) {
		rec := get(guarded, "/")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, csrfCookieName, cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("post without token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("a=b"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "token-123"})
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("post with matching token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("csrf_token=token-123"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "token-123"})
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("header token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("X-CSRF-Token", "token-123")
		req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "token-123"})
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		kind domain.ErrorKind
	}{
		{"12", 1200, ""},
		{"12.5", 1250, ""},
		{"0.05", 5, ""},
		{".75", 75, ""},
		{" 3.10 ", 310, ""},
		{"", 0, domain.KindMissingField},
		{"1.234", 0, domain.KindInvalidRange},
		{"-4", 0, domain.KindInvalidRange},
		{"ten", 0, domain.KindInvalidRange},
		{".", 0, domain.KindInvalidRange},
		{"+4", 0, domain.KindInvalidRange},
		{"4.-5", 0, domain.KindInvalidRange},
		{"1.+5", 0, domain.KindInvalidRange},
		{"92233720368547758.07", 9223372036854775807, ""},
		{"92233720368547758.08", 0, domain.KindInvalidRange},
		{"184467440737095517", 0, domain.KindInvalidRange},
		{"99999999999999999999", 0, domain.KindInvalidRange},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseAmount(tt.in)
			if tt.kind != "" {
				assert.Equal(t, tt.kind, domain.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSections_SkipsBlankRows(t *testing.T) {
	sections, err := parseSections(
		[]string{"Venue", "", "Catering", ""},
		[]string{"100", "", "49.99"},
	)
	require.NoError(t, err)
	assert.Equal(t, []domain.NewFundSection{
		{SectionName: "Venue", Amount: 10000},
		{SectionName: "Catering", Amount: 4999},
	}, sections)
}
