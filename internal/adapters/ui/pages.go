package ui

import (
	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
)

func homePage(actor domain.Actor, signedIn bool, csrf Node) Node {
	var actions Node
	if signedIn {
		actions = Div(
			P(Text("Signed in as "+actor.Email+" ("+roleTitle(actor.Role)+")")),
			A(Href(domain.RootPath(actor.Role)), Class("btn btn-primary"), Text("Open dashboard")),
			Form(Method("post"), Action(domain.PathSignIn+"/signout"), Class("inline"),
				csrf,
				Button(Type("submit"), Class("btn"), Text("Sign out")),
			),
		)
	} else {
		actions = A(Href(domain.PathSignIn), Class("btn btn-primary"), Text("Sign in"))
	}

	return document("Home", nil,
		Main(Class("center"),
			H1(Text(appName)),
			P(Text("Request events and campus resources, track approvals, and book halls and labs.")),
			actions,
		),
	)
}

func signInPage(email, errMsg string, csrf Node) Node {
	return document("Sign in", nil,
		Main(Class("center"),
			H1(Text("Sign in")),
			flashMessages(flash{err: errMsg}),
			Form(Method("post"), Action(domain.PathSignIn), Class("stacked"),
				csrf,
				Label(For("email"), Text("Email")),
				Input(ID("email"), Type("email"), Name("email"), Value(email), Required(), AutoComplete("username")),
				Label(For("password"), Text("Password")),
				Input(ID("password"), Type("password"), Name("password"), Required(), AutoComplete("current-password")),
				Button(Type("submit"), Class("btn btn-primary"), Text("Sign in")),
			),
			P(Class("muted"), A(Href(domain.PathHome), Text("Back to home"))),
		),
	)
}

// loadingPage is shown while the session store has not answered. It
// reloads itself instead of redirecting.
func loadingPage() Node {
	return document("Loading",
		[]Node{Meta(Attr("http-equiv", "refresh"), Content("1"))},
		Main(Class("center"),
			H1(Text("Loading...")),
			P(Class("muted"), Text("Checking your session. This page refreshes automatically.")),
		),
	)
}

func notFoundPage() Node {
	return document("Not found", nil,
		Main(Class("center"),
			H1(Text("Page not found")),
			P(Text("The page you are looking for does not exist.")),
			A(Href(domain.PathHome), Class("btn"), Text("Go home")),
		),
	)
}

func errorPage(title, message string) Node {
	return document(title, nil,
		Main(Class("center"),
			H1(Text(title)),
			P(Text(message)),
			A(Href(domain.PathHome), Class("btn"), Text("Go home")),
		),
	)
}
