package ui

import (
	"context"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AchilleasB/campus-events/event-service/internal/adapters/middleware"
	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
	"github.com/AchilleasB/campus-events/event-service/internal/core/services"
)

// formAction handles a panel form and returns the notice shown after the
// redirect.
type formAction func(h *Handler, r *http.Request, actor domain.Actor) (string, error)

// listAction changes one row of the panel's list in place. The list is
// updated before the backend call and restored if the call fails; the
// panel is rendered from that list without a redirect.
type listAction func(h *Handler, r *http.Request, d *PanelData) (string, error)

var formActions = map[string]formAction{
	"submit-event":          submitEvent,
	"book":                  bookResource,
	"submit-resources":      submitResources,
	"submit-fund":           submitFund,
	"save-report":           saveReport,
	"request-collaboration": requestCollaboration,
	"change-password":       changePassword,
	"register-user":         registerUser,
}

var listActions = map[string]listAction{
	"decide-event":    decideEvent,
	"cancel-event":    cancelEvent,
	"decide-resource": decideResource,
	"decide-fund":     decideFund,
}

// redirectKeys are form fields carried over to the redirect so the panel
// shows the same selection again.
var redirectKeys = []string{"resource", "date"}

// Act handles POST /{root}/{tab}.
func (h *Handler) Act(w http.ResponseWriter, r *http.Request) {
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
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	name := r.PostForm.Get("action")
	d := h.panelData(r, view)

	if run, ok := listActions[name]; ok {
		var f flash
		status := http.StatusOK
		notice, err := run(h, r, &d)
		if err != nil {
			status = h.flashError(&f, err)
		} else {
			f.notice = notice
		}
		h.render(w, status, shell, d, f, p)
		return
	}

	q := url.Values{}
	for _, key := range redirectKeys {
		if v := r.PostForm.Get(key); v != "" {
			q.Set(key, v)
		}
	}

	run, ok := formActions[name]
	if !ok {
		h.logger.Warn("unknown dashboard action", zap.String("action", name), zap.String("path", d.Path))
		q.Set("error", "Unknown action")
	} else if notice, err := run(h, r, d.Actor); err != nil {
		var f flash
		h.flashError(&f, err)
		q.Set("error", f.err)
	} else {
		q.Set("notice", notice)
	}
	http.Redirect(w, r, d.Path+"?"+q.Encode(), http.StatusSeeOther)
}

func submitEvent(h *Handler, r *http.Request, actor domain.Actor) (string, error) {
	_, err := h.svc.Events.Submit(r.Context(), actor, domain.NewEventRequest{
		Association: r.PostForm.Get("association"),
		EventName:   r.PostForm.Get("event_name"),
		Date:        r.PostForm.Get("date"),
		Description: r.PostForm.Get("description"),
	})
	return "Event request submitted", err
}

func bookResource(h *Handler, r *http.Request, actor domain.Actor) (string, error) {
	date := r.PostForm.Get("date")
	start, err := parseClock("start", date, r.PostForm.Get("start"))
	if err != nil {
		return "", err
	}
	end, err := parseClock("end", date, r.PostForm.Get("end"))
	if err != nil {
		return "", err
	}
	_, err = h.svc.Bookings.Book(r.Context(), actor, domain.NewBooking{
		ResourceID: domain.ResourceID(r.PostForm.Get("resource")),
		Title:      r.PostForm.Get("title"),
		Start:      start,
		End:        end,
	})
	return "Booking saved", err
}

func submitResources(h *Handler, r *http.Request, actor domain.Actor) (string, error) {
	ids := make([]domain.ResourceID, 0, len(r.PostForm["resource"]))
	for _, id := range r.PostForm["resource"] {
		ids = append(ids, domain.ResourceID(id))
	}
	_, err := h.svc.Resources.Submit(r.Context(), actor, domain.NewResourceRequest{
		EventName: r.PostForm.Get("event_name"),
		Date:      r.PostForm.Get("date"),
		Resources: ids,
	})
	return "Resource request submitted", err
}

func submitFund(h *Handler, r *http.Request, actor domain.Actor) (string, error) {
	sections, err := parseSections(r.PostForm["section_name"], r.PostForm["section_amount"])
	if err != nil {
		return "", err
	}
	_, err = h.svc.Funds.Create(r.Context(), actor, domain.NewFundAnalysis{
		EventID:  r.PostForm.Get("event_id"),
		Title:    r.PostForm.Get("title"),
		Sections: sections,
	})
	return "Fund analysis submitted", err
}

func saveReport(h *Handler, r *http.Request, actor domain.Actor) (string, error) {
	draft := domain.ReportDraft{Title: r.PostForm.Get("title"), Content: r.PostForm.Get("content")}
	if id := r.PostForm.Get("id"); id != "" {
		_, err := h.svc.Reports.Update(r.Context(), actor, id, draft)
		return "Report updated", err
	}
	_, err := h.svc.Reports.Create(r.Context(), actor, draft)
	return "Report created", err
}

func requestCollaboration(h *Handler, r *http.Request, actor domain.Actor) (string, error) {
	_, err := h.svc.Collaborations.Request(r.Context(), actor, domain.NewCollaboration{
		EventID: r.PostForm.Get("event_id"),
		Message: r.PostForm.Get("message"),
	})
	return "Collaboration request sent", err
}

func changePassword(h *Handler, r *http.Request, _ domain.Actor) (string, error) {
	next := r.PostForm.Get("new_password")
	err := h.svc.Auth.ChangePassword(r.Context(), middleware.SessionFromContext(r.Context()),
		r.PostForm.Get("current_password"), next, r.PostForm.Get("confirm_password"))
	return "Password changed (strength: " + services.PasswordStrengthLabel(services.PasswordStrength(next)) + ")", err
}

func registerUser(h *Handler, r *http.Request, actor domain.Actor) (string, error) {
	user, err := h.svc.Users.Register(r.Context(), actor, r.PostForm.Get("email"), r.PostForm.Get("password"))
	if err != nil {
		return "", err
	}
	return "Registered " + user.Email + " as " + roleTitle(user.Role), nil
}

func decideEvent(h *Handler, r *http.Request, d *PanelData) (string, error) {
	id, status := r.PostForm.Get("id"), domain.Status(r.PostForm.Get("status"))
	items, err := mutateList(r.Context(),
		func(ctx context.Context) ([]domain.EventRequest, error) {
			return h.svc.Events.List(ctx, d.Actor, pendingFilter)
		},
		func(e domain.EventRequest) string { return e.ID },
		id,
		func(e domain.EventRequest) domain.EventRequest { e.Status = status; return e },
		func(ctx context.Context) error { return h.svc.Events.Decide(ctx, d.Actor, id, status) },
	)
	d.Events = items
	return "Event request " + string(status), err
}

func cancelEvent(h *Handler, r *http.Request, d *PanelData) (string, error) {
	id := r.PostForm.Get("id")
	items, err := mutateList(r.Context(),
		func(ctx context.Context) ([]domain.EventRequest, error) {
			return h.svc.Events.List(ctx, d.Actor, activeFilter)
		},
		func(e domain.EventRequest) string { return e.ID },
		id,
		func(e domain.EventRequest) domain.EventRequest { e.Status = domain.StatusRejected; return e },
		func(ctx context.Context) error { return h.svc.Events.Cancel(ctx, d.Actor, id) },
	)
	d.Events = items
	return "Event cancelled", err
}

func decideResource(h *Handler, r *http.Request, d *PanelData) (string, error) {
	id, status := r.PostForm.Get("id"), domain.Status(r.PostForm.Get("status"))
	items, err := mutateList(r.Context(),
		func(ctx context.Context) ([]domain.ResourceRequest, error) {
			return h.svc.Resources.List(ctx, d.Actor, pendingFilter)
		},
		func(rr domain.ResourceRequest) string { return rr.ID },
		id,
		func(rr domain.ResourceRequest) domain.ResourceRequest { rr.Status = status; return rr },
		func(ctx context.Context) error { return h.svc.Resources.Decide(ctx, d.Actor, id, status) },
	)
	d.Resources = items
	return "Resource request " + string(status), err
}

func decideFund(h *Handler, r *http.Request, d *PanelData) (string, error) {
	id, status := r.PostForm.Get("id"), domain.Status(r.PostForm.Get("status"))
	items, err := mutateList(r.Context(),
		func(ctx context.Context) ([]domain.FundAnalysis, error) {
			return h.svc.Funds.List(ctx, d.Actor, ports.RequestFilter{Status: domain.StatusPending})
		},
		func(f domain.FundAnalysis) string { return f.ID },
		id,
		func(f domain.FundAnalysis) domain.FundAnalysis { f.Status = status; return f },
		func(ctx context.Context) error { return h.svc.Funds.Decide(ctx, d.Actor, id, status) },
	)
	d.Funds = items
	if loadErr := loadSections(h, r, d); loadErr != nil {
		h.logger.Warn("fund sections not loaded", zap.Error(loadErr))
	}
	return "Fund request " + string(status), err
}

// mutateList loads a list, applies change to the row with key id and
// commits. The returned rows reflect the rollback when commit fails.
func mutateList[T any](
	ctx context.Context,
	fetch func(context.Context) ([]T, error),
	key func(T) string,
	id string,
	change func(T) T,
	commit func(context.Context) error,
) ([]T, error) {
	list := services.NewLiveList(fetch, key)
	if err := list.Refresh(ctx); err != nil {
		return nil, err
	}
	err := list.Mutate(ctx, id, change, commit)
	return list.Items(), err
}

func parseClock(field, date, clock string) (time.Time, error) {
	if strings.TrimSpace(clock) == "" {
		return time.Time{}, domain.NewValidationError(domain.KindMissingField, field, "is required")
	}
	t, err := time.ParseInLocation(domain.DateLayout+" 15:04", date+" "+clock, time.UTC)
	if err != nil {
		return time.Time{}, domain.NewValidationError(domain.KindInvalidRange, field, "must be a time on a valid date")
	}
	return t, nil
}

// parseSections pairs the repeated section fields, skipping blank rows.
func parseSections(names, amounts []string) ([]domain.NewFundSection, error) {
	var sections []domain.NewFundSection
	for i, name := range names {
		raw := ""
		if i < len(amounts) {
			raw = amounts[i]
		}
		name = strings.TrimSpace(name)
		if name == "" && strings.TrimSpace(raw) == "" {
			continue
		}
		amount, err := parseAmount(raw)
		if err != nil {
			return nil, err
		}
		sections = append(sections, domain.NewFundSection{SectionName: name, Amount: amount})
	}
	return sections, nil
}

// parseAmount reads a decimal amount with at most two fraction digits into
// minor units.
func parseAmount(raw string) (int64, error) {
	invalid := domain.NewValidationError(domain.KindInvalidRange, "amount", "must be a non-negative amount with at most two decimals")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, domain.NewValidationError(domain.KindMissingField, "amount", "is required")
	}
	whole, frac, _ := strings.Cut(raw, ".")
	if len(frac) > 2 || whole == "" && frac == "" || !digits(whole) || !digits(frac) {
		return 0, invalid
	}
	for len(frac) < 2 {
		frac += "0"
	}
	if whole == "" {
		whole = "0"
	}
	cents, _ := strconv.ParseInt(frac, 10, 64)
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units > (math.MaxInt64-cents)/100 {
		return 0, domain.NewValidationError(domain.KindInvalidRange, "amount", "is too large")
	}
	return units*100 + cents, nil
}

// digits reports whether s holds only ASCII digits. Signs are not amounts.
func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
