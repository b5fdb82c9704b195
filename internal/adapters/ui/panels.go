package ui

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
)

// PanelData is what a panel renders. Each loader fills only the fields its
// panel reads.
type PanelData struct {
	Actor domain.Actor
	// Path is the route of the active tab; panel forms post back to it.
	Path  string
	CSRF  Node
	Query url.Values

	Events         []domain.EventRequest
	Upcoming       []domain.EventRequest
	EventOptions   []domain.EventRequest
	Resources      []domain.ResourceRequest
	Funds          []domain.FundAnalysis
	Sections       map[string][]domain.FundAnalysisSection
	Reports        []domain.Report
	Editing        *domain.Report
	Bookings       []domain.CalendarBooking
	BookingOn      domain.ResourceID
	BookingDay     time.Time
	Collaborations []domain.Collaboration
	Users          []domain.AccountView
}

type PanelFunc func(PanelData) Node

type loader func(h *Handler, r *http.Request, d *PanelData) error

type panel struct {
	load   loader
	render PanelFunc
}

var (
	pendingFilter  = ports.RequestFilter{Status: domain.StatusPending, ByDate: true}
	activeFilter   = ports.RequestFilter{ExcludeStatus: domain.StatusRejected, ByDate: true}
	scheduleFilter = ports.RequestFilter{Status: domain.StatusApproved, ByDate: true}
)

// panels maps each role's tabs to what renders there. The same tab can
// render differently per role.
var panels = map[domain.Role]map[domain.Tab]panel{
	domain.RoleAssociation: {
		domain.TabDashboard:            {loadAssociationDashboard, associationDashboard},
		domain.TabEventRequest:         {loadOwnEvents, eventRequestPanel},
		domain.TabResourceAvailability: {loadBookings, availabilityPanel},
		domain.TabCancelEvent:          {loadActiveEvents, cancelEventsPanel},
		domain.TabResourceRequest:      {loadOwnResources, resourceRequestPanel},
		domain.TabFundAnalysis:         {loadOwnFunds, fundAnalysisPanel},
		domain.TabRequestStatus:        {loadRequestStatus, requestStatusPanel},
		domain.TabReport:               {loadReports, reportPanel},
		domain.TabCollaboration:        {loadCollaborations, collaborationPanel},
		domain.TabChangePassword:       {noData, changePasswordPanel},
	},
	domain.RoleFaculty: {
		domain.TabFacultyDashboard: {loadSchedule, schedulePanel},
		domain.TabEventRequest:     {loadPendingEvents, reviewEventsPanel},
		domain.TabFundRequest:      {loadPendingFunds, reviewFundsPanel},
		domain.TabCancelEvent:      {loadActiveEvents, cancelEventsPanel},
		domain.TabChangePassword:   {noData, changePasswordPanel},
	},
	domain.RoleAdmin: {
		domain.TabAdminDashboard:  {loadSchedule, schedulePanel},
		domain.TabResourceRequest: {loadPendingResources, reviewResourcesPanel},
		domain.TabUserManagement:  {loadUsers, userManagementPanel},
		domain.TabCancelEvent:     {loadActiveEvents, cancelEventsPanel},
		domain.TabChangePassword:  {noData, changePasswordPanel},
	},
}

func noData(*Handler, *http.Request, *PanelData) error { return nil }

func loadAssociationDashboard(h *Handler, r *http.Request, d *PanelData) error {
	var err error
	if d.Events, err = h.svc.Events.List(r.Context(), d.Actor, ports.RequestFilter{}); err != nil {
		return err
	}
	upcoming := scheduleFilter
	upcoming.Limit = 5
	d.Upcoming, err = h.svc.Events.List(r.Context(), d.Actor, upcoming)
	return err
}

func loadOwnEvents(h *Handler, r *http.Request, d *PanelData) (err error) {
	d.Events, err = h.svc.Events.List(r.Context(), d.Actor, ports.RequestFilter{})
	return err
}

func loadPendingEvents(h *Handler, r *http.Request, d *PanelData) (err error) {
	d.Events, err = h.svc.Events.List(r.Context(), d.Actor, pendingFilter)
	return err
}

func loadActiveEvents(h *Handler, r *http.Request, d *PanelData) (err error) {
	d.Events, err = h.svc.Events.List(r.Context(), d.Actor, activeFilter)
	return err
}

func loadSchedule(h *Handler, r *http.Request, d *PanelData) (err error) {
	d.Events, err = h.svc.Events.List(r.Context(), d.Actor, scheduleFilter)
	return err
}

// loadApprovedOptions lists the caller's approved events for selects.
func loadApprovedOptions(h *Handler, r *http.Request, d *PanelData) (err error) {
	d.EventOptions, err = h.svc.Events.List(r.Context(), d.Actor, ports.RequestFilter{Status: domain.StatusApproved})
	return err
}

func loadBookings(h *Handler, r *http.Request, d *PanelData) error {
	d.BookingOn = domain.ResourceID(d.Query.Get("resource"))
	if !d.BookingOn.Valid() {
		d.BookingOn = domain.Resources[0]
	}
	d.BookingDay = time.Now().UTC().Truncate(24 * time.Hour)
	if raw := d.Query.Get("date"); raw != "" {
		day, err := time.Parse(domain.DateLayout, raw)
		if err != nil {
			return domain.NewValidationError(domain.KindInvalidRange, "date", "must be YYYY-MM-DD")
		}
		d.BookingDay = day
	}
	var err error
	d.Bookings, err = h.svc.Bookings.Availability(r.Context(), d.Actor, d.BookingOn, d.BookingDay)
	return err
}

func loadOwnResources(h *Handler, r *http.Request, d *PanelData) (err error) {
	d.Resources, err = h.svc.Resources.List(r.Context(), d.Actor, ports.RequestFilter{})
	return err
}

func loadPendingResources(h *Handler, r *http.Request, d *PanelData) (err error) {
	d.Resources, err = h.svc.Resources.List(r.Context(), d.Actor, pendingFilter)
	return err
}

func loadOwnFunds(h *Handler, r *http.Request, d *PanelData) (err error) {
	if d.Funds, err = h.svc.Funds.List(r.Context(), d.Actor, ports.RequestFilter{}); err != nil {
		return err
	}
	return loadApprovedOptions(h, r, d)
}

func loadPendingFunds(h *Handler, r *http.Request, d *PanelData) (err error) {
	if d.Funds, err = h.svc.Funds.List(r.Context(), d.Actor, ports.RequestFilter{Status: domain.StatusPending}); err != nil {
		return err
	}
	return loadSections(h, r, d)
}

func loadSections(h *Handler, r *http.Request, d *PanelData) error {
	d.Sections = make(map[string][]domain.FundAnalysisSection, len(d.Funds))
	for _, fund := range d.Funds {
		sections, err := h.svc.Funds.Sections(r.Context(), d.Actor, fund.ID)
		if err != nil {
			return err
		}
		d.Sections[fund.ID] = sections
	}
	return nil
}

func loadRequestStatus(h *Handler, r *http.Request, d *PanelData) (err error) {
	if d.Events, err = h.svc.Events.List(r.Context(), d.Actor, ports.RequestFilter{}); err != nil {
		return err
	}
	if d.Resources, err = h.svc.Resources.List(r.Context(), d.Actor, ports.RequestFilter{}); err != nil {
		return err
	}
	d.Funds, err = h.svc.Funds.List(r.Context(), d.Actor, ports.RequestFilter{})
	return err
}

func loadReports(h *Handler, r *http.Request, d *PanelData) (err error) {
	if d.Reports, err = h.svc.Reports.List(r.Context(), d.Actor); err != nil {
		return err
	}
	if id := d.Query.Get("report"); id != "" {
		d.Editing, err = h.svc.Reports.Get(r.Context(), d.Actor, id)
	}
	return err
}

func loadCollaborations(h *Handler, r *http.Request, d *PanelData) (err error) {
	if d.Collaborations, err = h.svc.Collaborations.List(r.Context(), d.Actor); err != nil {
		return err
	}
	return loadApprovedOptions(h, r, d)
}

func loadUsers(h *Handler, r *http.Request, d *PanelData) (err error) {
	d.Users, err = h.svc.Users.List(r.Context(), d.Actor)
	return err
}

// form building blocks

func actionForm(d PanelData, action string, class string, children ...Node) Node {
	return Form(Method("post"), Action(d.Path), Class(class),
		d.CSRF,
		Input(Type("hidden"), Name("action"), Value(action)),
		Group(children),
	)
}

func field(label, name, kind string, extra ...Node) Node {
	return Group{
		Label(For(name), Text(label)),
		Input(append([]Node{ID(name), Name(name), Type(kind)}, extra...)...),
	}
}

func submit(label string) Node {
	return Button(Type("submit"), Class("btn btn-primary"), Text(label))
}

func decisionButtons(d PanelData, action, id string) Node {
	return Group{
		actionForm(d, action, "inline",
			Input(Type("hidden"), Name("id"), Value(id)),
			Input(Type("hidden"), Name("status"), Value(string(domain.StatusApproved))),
			Button(Type("submit"), Class("btn btn-sm"), Text("Approve")),
		),
		actionForm(d, action, "inline",
			Input(Type("hidden"), Name("id"), Value(id)),
			Input(Type("hidden"), Name("status"), Value(string(domain.StatusRejected))),
			Button(Type("submit"), Class("btn btn-sm btn-danger"), Text("Reject")),
		),
	}
}

func eventOptions(events []domain.EventRequest) Node {
	if len(events) == 0 {
		return Option(Value(""), Text("No approved events"))
	}
	return Map(events, func(e domain.EventRequest) Node {
		return Option(Value(e.ID), Text(e.EventName+" ("+formatDay(e.Date)+")"))
	})
}

func eventTable(events []domain.EventRequest, actions func(domain.EventRequest) Node) Node {
	rows := Map(events, func(e domain.EventRequest) Node {
		cells := []Node{
			Td(Text(e.EventName)),
			Td(Text(e.Association)),
			Td(Text(formatDay(e.Date))),
			Td(statusBadge(e.Status)),
		}
		if actions != nil {
			cells = append(cells, Td(actions(e)))
		}
		return Tr(cells...)
	})
	headers := []Node{Th(Text("Event")), Th(Text("Association")), Th(Text("Date")), Th(Text("Status"))}
	if actions != nil {
		headers = append(headers, Th(Text("")))
	}
	body := Node(rows)
	if len(events) == 0 {
		body = emptyRow(len(headers), "No events.")
	}
	return Table(THead(Tr(headers...)), TBody(body))
}

func resourceTable(requests []domain.ResourceRequest, actions func(domain.ResourceRequest) Node) Node {
	headers := []Node{Th(Text("Event")), Th(Text("Date")), Th(Text("Resources")), Th(Text("Status"))}
	if actions != nil {
		headers = append(headers, Th(Text("")))
	}
	if len(requests) == 0 {
		return Table(THead(Tr(headers...)), TBody(emptyRow(len(headers), "No resource requests.")))
	}
	rows := Map(requests, func(rr domain.ResourceRequest) Node {
		labels := make([]string, len(rr.Resources))
		for i, id := range rr.Resources {
			labels[i] = id.Label()
		}
		cells := []Node{
			Td(Text(rr.EventName)),
			Td(Text(formatDay(rr.Date))),
			Td(Text(strings.Join(labels, ", "))),
			Td(statusBadge(rr.Status)),
		}
		if actions != nil {
			cells = append(cells, Td(actions(rr)))
		}
		return Tr(cells...)
	})
	return Table(THead(Tr(headers...)), TBody(rows))
}

func fundTable(funds []domain.FundAnalysis, sections map[string][]domain.FundAnalysisSection, actions func(domain.FundAnalysis) Node) Node {
	headers := []Node{Th(Text("Title")), Th(Text("Total")), Th(Text("Sections")), Th(Text("Status"))}
	if actions != nil {
		headers = append(headers, Th(Text("")))
	}
	if len(funds) == 0 {
		return Table(THead(Tr(headers...)), TBody(emptyRow(len(headers), "No fund analyses.")))
	}
	rows := Map(funds, func(f domain.FundAnalysis) Node {
		items := Map(sections[f.ID], func(s domain.FundAnalysisSection) Node {
			return Li(Text(s.SectionName + ": " + formatAmount(s.Amount)))
		})
		cells := []Node{
			Td(Text(f.Title)),
			Td(Text(formatAmount(f.TotalAmount))),
			Td(Ul(items)),
			Td(statusBadge(f.Status)),
		}
		if actions != nil {
			cells = append(cells, Td(actions(f)))
		}
		return Tr(cells...)
	})
	return Table(THead(Tr(headers...)), TBody(rows))
}

// association panels

func associationDashboard(d PanelData) Node {
	counts := map[domain.Status]int{}
	for _, e := range d.Events {
		counts[e.Status]++
	}
	stat := func(label string, n int) Node {
		return Div(Class("card stat"), Strong(Text(strconv.Itoa(n))), Span(Class("muted"), Text(label)))
	}
	return Group{
		Div(Class("stats"),
			stat("Total requests", len(d.Events)),
			stat("Pending", counts[domain.StatusPending]),
			stat("Approved", counts[domain.StatusApproved]),
			stat("Rejected", counts[domain.StatusRejected]),
		),
		H2(Text("Upcoming events")),
		eventTable(d.Upcoming, nil),
	}
}

func eventRequestPanel(d PanelData) Node {
	return Group{
		Div(Class("card"),
			H2(Text("New event request")),
			actionForm(d, "submit-event", "stacked",
				field("Association", "association", "text", Required()),
				field("Event name", "event_name", "text", Required()),
				field("Date", "date", "date", Required()),
				Label(For("description"), Text("Description")),
				Textarea(ID("description"), Name("description")),
				submit("Submit request"),
			),
		),
		H2(Text("Your requests")),
		eventTable(d.Events, nil),
	}
}

func availabilityPanel(d PanelData) Node {
	options := Map(domain.Resources, func(id domain.ResourceID) Node {
		return Option(Value(string(id)), Text(id.Label()), If(id == d.BookingOn, Selected()))
	})
	day := d.BookingDay.Format(domain.DateLayout)

	rows := Map(d.Bookings, func(b domain.CalendarBooking) Node {
		return Tr(
			Td(Text(b.Title)),
			Td(Text(b.Start.UTC().Format("15:04"))),
			Td(Text(b.End.UTC().Format("15:04"))),
		)
	})
	body := Node(rows)
	if len(d.Bookings) == 0 {
		body = emptyRow(3, d.BookingOn.Label()+" is free all day.")
	}

	return Group{
		Form(Method("get"), Action(d.Path), Class("card"),
			Label(For("resource"), Text("Resource")),
			Select(ID("resource"), Name("resource"), options),
			Label(For("date"), Text("Date")),
			Input(ID("date"), Name("date"), Type("date"), Value(day)),
			Button(Type("submit"), Class("btn"), Text("Check")),
		),
		H2(Text("Bookings for " + d.BookingOn.Label() + " on " + formatDay(d.BookingDay))),
		Table(THead(Tr(Th(Text("Title")), Th(Text("Start")), Th(Text("End")))), TBody(body)),
		Div(Class("card"),
			H2(Text("Book this resource")),
			actionForm(d, "book", "stacked",
				Input(Type("hidden"), Name("resource"), Value(string(d.BookingOn))),
				Input(Type("hidden"), Name("date"), Value(day)),
				field("Title", "title", "text", Required()),
				field("Start", "start", "time", Required()),
				field("End", "end", "time", Required()),
				submit("Book"),
			),
		),
	}
}

func cancelEventsPanel(d PanelData) Node {
	return eventTable(d.Events, func(e domain.EventRequest) Node {
		return actionForm(d, "cancel-event", "inline",
			Input(Type("hidden"), Name("id"), Value(e.ID)),
			Button(Type("submit"), Class("btn btn-sm btn-danger"), Text("Cancel event")),
		)
	})
}

func resourceRequestPanel(d PanelData) Node {
	boxes := Map(domain.Resources, func(id domain.ResourceID) Node {
		return Label(
			Input(Type("checkbox"), Name("resource"), Value(string(id))),
			Text(" "+id.Label()),
		)
	})
	return Group{
		Div(Class("card"),
			H2(Text("Request resources")),
			actionForm(d, "submit-resources", "stacked",
				field("Event name", "event_name", "text", Required()),
				field("Date", "date", "date", Required()),
				FieldSet(Legend(Text("Resources")), boxes),
				submit("Submit request"),
			),
		),
		H2(Text("Your resource requests")),
		resourceTable(d.Resources, nil),
	}
}

const fundSectionRows = 5

func fundAnalysisPanel(d PanelData) Node {
	rows := make([]Node, 0, fundSectionRows)
	for i := 0; i < fundSectionRows; i++ {
		rows = append(rows, Div(
			Input(Name("section_name"), Type("text"), Placeholder("Section")),
			Input(Name("section_amount"), Type("text"), Placeholder("0.00"), Attr("inputmode", "decimal")),
		))
	}
	return Group{
		Div(Class("card"),
			H2(Text("New fund analysis")),
			actionForm(d, "submit-fund", "stacked",
				Label(For("event_id"), Text("Event")),
				Select(ID("event_id"), Name("event_id"), Required(), eventOptions(d.EventOptions)),
				field("Title", "title", "text", Required()),
				FieldSet(Legend(Text("Sections")), Group(rows)),
				submit("Submit analysis"),
			),
		),
		H2(Text("Your fund analyses")),
		fundTable(d.Funds, d.Sections, nil),
	}
}

func requestStatusPanel(d PanelData) Node {
	return Group{
		H2(Text("Event requests")),
		eventTable(d.Events, nil),
		H2(Text("Resource requests")),
		resourceTable(d.Resources, nil),
		H2(Text("Fund analyses")),
		fundTable(d.Funds, nil, nil),
	}
}

func reportPanel(d PanelData) Node {
	heading, id, title, content := "New report", "", "", ""
	if d.Editing != nil {
		heading, id, title, content = "Edit report", d.Editing.ID, d.Editing.Title, d.Editing.Content
	}

	rows := Map(d.Reports, func(rep domain.Report) Node {
		return Tr(
			Td(Text(rep.Title)),
			Td(Text(formatDay(rep.UpdatedAt))),
			Td(
				A(Href(d.Path+"?report="+url.QueryEscape(rep.ID)), Class("btn btn-sm"), Text("Edit")),
				Text(" "),
				A(Href("/api/v1/reports/"+url.PathEscape(rep.ID)+"/export"), Class("btn btn-sm"), Text("Download")),
			),
		)
	})
	body := Node(rows)
	if len(d.Reports) == 0 {
		body = emptyRow(3, "No reports yet.")
	}

	return Group{
		Div(Class("card"),
			H2(Text(heading)),
			actionForm(d, "save-report", "stacked",
				Input(Type("hidden"), Name("id"), Value(id)),
				field("Title", "title", "text", Required(), Value(title)),
				Label(For("content"), Text("Content (Markdown)")),
				Textarea(ID("content"), Name("content"), Required(), Text(content)),
				submit("Save report"),
			),
		),
		H2(Text("Your reports")),
		Table(THead(Tr(Th(Text("Title")), Th(Text("Last updated")), Th(Text("")))), TBody(body)),
	}
}

func collaborationPanel(d PanelData) Node {
	rows := Map(d.Collaborations, func(c domain.Collaboration) Node {
		return Tr(Td(Text(c.EventName)), Td(Text(c.Message)), Td(statusBadge(c.Status)))
	})
	body := Node(rows)
	if len(d.Collaborations) == 0 {
		body = emptyRow(3, "No collaboration requests.")
	}
	return Group{
		Div(Class("card"),
			H2(Text("Request a collaboration")),
			actionForm(d, "request-collaboration", "stacked",
				Label(For("event_id"), Text("Event")),
				Select(ID("event_id"), Name("event_id"), Required(), eventOptions(d.EventOptions)),
				Label(For("message"), Text("Message")),
				Textarea(ID("message"), Name("message")),
				submit("Send request"),
			),
		),
		H2(Text("Your collaboration requests")),
		Table(THead(Tr(Th(Text("Event")), Th(Text("Message")), Th(Text("Status")))), TBody(body)),
	}
}

func changePasswordPanel(d PanelData) Node {
	return Div(Class("card"),
		actionForm(d, "change-password", "stacked",
			field("Current password", "current_password", "password", Required(), AutoComplete("current-password")),
			field("New password", "new_password", "password", Required(), MinLength("8"), AutoComplete("new-password")),
			field("Confirm new password", "confirm_password", "password", Required(), AutoComplete("new-password")),
			P(Class("muted"), Text("At least 8 characters. Mix upper case, digits and symbols for a stronger password.")),
			submit("Change password"),
		),
	)
}

// reviewer panels

func schedulePanel(d PanelData) Node {
	return Group{
		P(Class("muted"), Text("Approved events, earliest first.")),
		eventTable(d.Events, nil),
	}
}

func reviewEventsPanel(d PanelData) Node {
	return eventTable(d.Events, func(e domain.EventRequest) Node {
		if e.Status != domain.StatusPending {
			return Text("")
		}
		return decisionButtons(d, "decide-event", e.ID)
	})
}

func reviewFundsPanel(d PanelData) Node {
	return fundTable(d.Funds, d.Sections, func(f domain.FundAnalysis) Node {
		if f.Status != domain.StatusPending {
			return Text("")
		}
		return decisionButtons(d, "decide-fund", f.ID)
	})
}

func reviewResourcesPanel(d PanelData) Node {
	return resourceTable(d.Resources, func(rr domain.ResourceRequest) Node {
		if rr.Status != domain.StatusPending {
			return Text("")
		}
		return decisionButtons(d, "decide-resource", rr.ID)
	})
}

func userManagementPanel(d PanelData) Node {
	rows := Map(d.Users, func(u domain.AccountView) Node {
		return Tr(Td(Text(u.Email)), Td(Text(roleTitle(u.Role))), Td(Text(formatDay(u.CreatedAt))))
	})
	body := Node(rows)
	if len(d.Users) == 0 {
		body = emptyRow(3, "No accounts.")
	}
	return Group{
		Div(Class("card"),
			H2(Text("Register account")),
			P(Class("muted"), Text("The role follows from the email address.")),
			actionForm(d, "register-user", "stacked",
				field("Email", "email", "email", Required()),
				field("Password", "password", "password", Required(), MinLength("8")),
				submit("Register"),
			),
		),
		Table(THead(Tr(Th(Text("Email")), Th(Text("Role")), Th(Text("Created")))), TBody(body)),
	}
}
