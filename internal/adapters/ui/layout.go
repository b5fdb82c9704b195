package ui

import (
	"fmt"
	"net/http"
	"time"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/services"
)

const (
	appName   = "Campus Events"
	dayFormat = "Jan 2, 2006"
)

// flash is a one-shot message carried on the redirect after a form post.
type flash struct {
	notice string
	err    string
}

func flashFromRequest(r *http.Request) flash {
	q := r.URL.Query()
	return flash{notice: q.Get("notice"), err: q.Get("error")}
}

func renderHTML(w http.ResponseWriter, status int, node Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = node.Render(w)
}

func document(title string, head []Node, body ...Node) Node {
	return Doctype(
		HTML(
			Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
				TitleEl(Text(title+" | "+appName)),
				Link(Rel("icon"), Href("data:,")),
				StyleEl(Raw(appCSS)),
				Group(head),
			),
			Body(body...),
		),
	)
}

func flashMessages(f flash) Node {
	var nodes []Node
	if f.notice != "" {
		nodes = append(nodes, P(Class("flash notice"), Text(f.notice)))
	}
	if f.err != "" {
		nodes = append(nodes, P(Class("flash error"), Role("alert"), Text(f.err)))
	}
	return Group(nodes)
}

// shellLayout renders the dashboard container: the role's menu in the
// sidebar and the active panel beside it.
func shellLayout(title string, menu []services.MenuLink, actor domain.Actor, csrf Node, f flash, panel Node) Node {
	links := make([]Node, 0, len(menu))
	for _, link := range menu {
		className := "nav-link"
		if link.Active {
			className += " active"
		}
		links = append(links, A(Href(link.Href), Class(className), Text(link.Label)))
	}

	who := actor.Email
	if who == "" {
		who = actor.Role.String()
	}

	return document(title, nil,
		Main(Class("app-shell"),
			Aside(Class("app-sidebar"),
				Div(Class("brand"), Strong(Text(appName)), P(Class("muted"), Text(roleTitle(actor.Role)))),
				Nav(Class("app-nav"), Group(links)),
			),
			Section(Class("app-main"),
				Div(Class("topbar"),
					H1(Class("page-title"), Text(title)),
					Div(
						P(Class("muted"), Text("Signed in as "+who)),
						Form(Method("post"), Action(domain.PathSignIn+"/signout"),
							csrf,
							Button(Type("submit"), Class("btn btn-sm"), Text("Sign out")),
						),
					),
				),
				flashMessages(f),
				Div(Class("content"), panel),
			),
		),
	)
}

func roleTitle(role domain.Role) string {
	switch role {
	case domain.RoleAdmin:
		return "Administrator"
	case domain.RoleFaculty:
		return "Faculty"
	case domain.RoleAssociation:
		return "Association"
	}
	return "Guest"
}

func statusBadge(status domain.Status) Node {
	return Span(Class("badge badge-"+string(status)), Text(string(status)))
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(dayFormat)
}

func formatAmount(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}

func emptyRow(cols int, message string) Node {
	return Tr(Td(ColSpan(fmt.Sprint(cols)), Class("muted"), Text(message)))
}

const appCSS = `
* { box-sizing: border-box; }
body { font-family: Inter, Helvetica, Arial, sans-serif; margin: 0; color: #1f2328; background: #f6f8fa; }
a { color: #0969da; text-decoration: none; }
.app-shell { display: flex; min-height: 100vh; }
.app-sidebar { width: 15rem; background: #fff; border-right: 1px solid #d0d7de; padding: 1rem; }
.app-nav { display: flex; flex-direction: column; gap: 0.25rem; margin-top: 1rem; }
.nav-link { padding: 0.4rem 0.6rem; border-radius: 6px; color: #1f2328; }
.nav-link.active { background: #ddf4ff; font-weight: 600; }
.app-main { flex: 1; padding: 1.5rem 2rem; }
.topbar { display: flex; justify-content: space-between; align-items: flex-start; }
.page-title { margin: 0 0 1rem; font-size: 1.5rem; }
.muted { color: #656d76; font-size: 0.85rem; margin: 0.25rem 0; }
.flash { padding: 0.6rem 0.8rem; border-radius: 6px; }
.flash.notice { background: #dafbe1; }
.flash.error { background: #ffebe9; }
.card { background: #fff; border: 1px solid #d0d7de; border-radius: 6px; padding: 1rem; margin-bottom: 1rem; }
.stats { display: flex; gap: 1rem; }
.stat { flex: 1; }
.stat strong { display: block; font-size: 1.6rem; }
table { width: 100%; border-collapse: collapse; background: #fff; }
th, td { text-align: left; padding: 0.45rem 0.6rem; border-bottom: 1px solid #d0d7de; vertical-align: top; }
form.stacked { display: grid; gap: 0.5rem; max-width: 32rem; }
form.inline { display: inline; }
input, select, textarea { font: inherit; padding: 0.35rem 0.5rem; border: 1px solid #d0d7de; border-radius: 6px; }
textarea { min-height: 8rem; }
.btn { font: inherit; padding: 0.35rem 0.8rem; border: 1px solid #d0d7de; border-radius: 6px; background: #f6f8fa; cursor: pointer; }
.btn-primary { background: #1f883d; color: #fff; border-color: #1f883d; }
.btn-danger { color: #cf222e; }
.btn-sm { padding: 0.15rem 0.5rem; font-size: 0.85rem; }
.badge { padding: 0.1rem 0.5rem; border-radius: 2rem; font-size: 0.8rem; border: 1px solid #d0d7de; }
.badge-approved { background: #dafbe1; }
.badge-rejected { background: #ffebe9; }
.badge-pending { background: #fff8c5; }
.center { max-width: 28rem; margin: 10vh auto; background: #fff; border: 1px solid #d0d7de; border-radius: 6px; padding: 2rem; }
`
