// Package ui serves the server-rendered pages: home, sign-in, the role
// dashboards and the loading and not-found pages.
package ui

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AchilleasB/campus-events/event-service/internal/adapters/handler"
	"github.com/AchilleasB/campus-events/event-service/internal/adapters/middleware"
	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
	"github.com/AchilleasB/campus-events/event-service/internal/core/services"
)

// Services are the feature services the panels read and write through.
type Services struct {
	Auth           ports.AuthService
	Events         ports.EventRequestService
	Resources      ports.ResourceRequestService
	Funds          ports.FundAnalysisService
	Reports        ports.ReportService
	Bookings       ports.BookingService
	Collaborations ports.CollaborationService
	Users          ports.UserService
}

// SessionControl starts and ends browser sessions. The JSON auth handler
// implements it so both sign-in paths set the same cookie.
type SessionControl interface {
	StartSession(w http.ResponseWriter, r *http.Request, email, password string) (*ports.SignInResult, error)
	EndSession(w http.ResponseWriter, r *http.Request)
}

type Handler struct {
	svc      Services
	sessions SessionControl
	resolver *services.RoleResolver
	secure   bool
	logger   *zap.Logger
}

func NewHandler(svc Services, sessions SessionControl, resolver *services.RoleResolver, secure bool, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, sessions: sessions, resolver: resolver, secure: secure, logger: logger}
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	state := middleware.SessionFromContext(r.Context())
	actor := h.resolver.Actor(state)
	renderHTML(w, http.StatusOK, homePage(actor, state.Hydrated && state.HasIdentity(), csrfField(r)))
}

func (h *Handler) SignInForm(w http.ResponseWriter, r *http.Request) {
	renderHTML(w, http.StatusOK, signInPage("", flashFromRequest(r).err, csrfField(r)))
}

// SignIn handles the sign-in form. Failures re-render the form with the
// email kept; success lands on the role's dashboard root.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderHTML(w, http.StatusBadRequest, signInPage("", "The form could not be read.", csrfField(r)))
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))

	result, err := h.sessions.StartSession(w, r, email, r.PostForm.Get("password"))
	if err != nil {
		status, _ := handler.StatusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("sign-in failed", zap.Error(err))
		}
		renderHTML(w, status, signInPage(email, handler.PublicMessage(err), csrfField(r)))
		return
	}
	http.Redirect(w, r, domain.RootPath(result.Role), http.StatusSeeOther)
}

func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.sessions.EndSession(w, r)
	http.Redirect(w, r, domain.PathHome, http.StatusSeeOther)
}

// Loading is served by the page guards while the session is not hydrated.
func (h *Handler) Loading(w http.ResponseWriter, r *http.Request) {
	renderHTML(w, http.StatusServiceUnavailable, loadingPage())
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	renderHTML(w, http.StatusNotFound, notFoundPage())
}

// Dashboard renders /{root} and /{root}/{tab}. The route is the source of
// truth for the active tab; a tab outside the role's menu redirects to the
// role's default tab.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	shell, ok := h.shell(w, r)
	if !ok {
		return
	}
	view := shell.State()

	p, ok := panels[view.Role][view.ActiveTab]
	if !ok {
		h.NotFound(w, r)
		return
	}

	d := h.panelData(r, view)
	f := flashFromRequest(r)
	status := http.StatusOK
	if err := p.load(h, r, &d); err != nil {
		status = h.flashError(&f, err)
	}
	h.render(w, status, shell, d, f, p)
}

// shell syncs a dashboard shell with the request session and navigates to
// the route's tab. It writes the response itself when it returns false.
func (h *Handler) shell(w http.ResponseWriter, r *http.Request) (*services.Shell, bool) {
	shell := services.NewShell(h.resolver)
	if shell.Sync(middleware.SessionFromContext(r.Context())).Phase != services.ShellReady {
		w.Header().Set("Retry-After", "1")
		h.Loading(w, r)
		return nil, false
	}

	requested := domain.Tab(chi.URLParam(r, "tab"))
	view := shell.Navigate(requested)
	if requested != "" && requested != view.ActiveTab {
		if r.Method != http.MethodGet {
			h.NotFound(w, r)
			return nil, false
		}
		http.Redirect(w, r, services.TabPath(domain.RootPath(view.Role), view.ActiveTab), http.StatusSeeOther)
		return nil, false
	}
	return shell, true
}

func (h *Handler) panelData(r *http.Request, view services.ShellState) PanelData {
	return PanelData{
		Actor: h.resolver.Actor(middleware.SessionFromContext(r.Context())),
		Path:  services.TabPath(domain.RootPath(view.Role), view.ActiveTab),
		CSRF:  csrfField(r),
		Query: r.URL.Query(),
	}
}

func (h *Handler) render(w http.ResponseWriter, status int, shell *services.Shell, d PanelData, f flash, p panel) {
	menu := shell.Menu()
	title := roleTitle(shell.State().Role)
	for _, link := range menu {
		if link.Active {
			title = link.Label
		}
	}
	renderHTML(w, status, shellLayout(title, menu, d.Actor, d.CSRF, f, p.render(d)))
}

// flashError puts the user-facing message of err into f and returns the
// status to render with.
func (h *Handler) flashError(f *flash, err error) int {
	status, code := handler.StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("dashboard request failed", zap.String("kind", code), zap.Error(err))
	} else {
		h.logger.Debug("dashboard request rejected", zap.String("kind", code), zap.Error(err))
	}
	f.err = handler.PublicMessage(err)
	return status
}
