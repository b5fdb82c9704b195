package services

import (
	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
)

type ShellPhase int

const (
	ShellLoading ShellPhase = iota
	ShellReady
)

type ShellState struct {
	Phase     ShellPhase
	Role      domain.Role
	ActiveTab domain.Tab
}

// MenuLink is a menu entry bound to its route.
type MenuLink struct {
	Tab    domain.Tab
	Label  string
	Href   string
	Active bool
}

// Shell is the dashboard container state machine. It re-enters loading when
// the identity behind the session changes and resets the tab to the role
// default once the role is known.
type Shell struct {
	resolver *RoleResolver
	identity string
	state    ShellState
}

func NewShell(resolver *RoleResolver) *Shell {
	return &Shell{resolver: resolver, state: ShellState{Phase: ShellLoading}}
}

func (s *Shell) State() ShellState {
	return s.state
}

// Sync feeds the current session into the shell.
func (s *Shell) Sync(session domain.SessionState) ShellState {
	if !session.Hydrated {
		s.identity = ""
		s.state = ShellState{Phase: ShellLoading}
		return s.state
	}

	key := identityKey(session)
	if s.state.Phase == ShellReady && key == s.identity {
		return s.state
	}

	s.identity = key
	s.state = ShellState{Phase: ShellLoading}
	role := s.resolver.ResolveState(session)
	s.state = ShellState{Phase: ShellReady, Role: role, ActiveTab: domain.DefaultTab(role)}
	return s.state
}

// Navigate selects a tab from a menu click or route parameter. Tabs outside
// the role's menu fall back to the default tab.
func (s *Shell) Navigate(tab domain.Tab) ShellState {
	if s.state.Phase != ShellReady {
		return s.state
	}
	if tab == "" || !domain.HasTab(s.state.Role, tab) {
		tab = domain.DefaultTab(s.state.Role)
	}
	s.state.ActiveTab = tab
	return s.state
}

// Menu returns the links of the active role with the active tab marked.
func (s *Shell) Menu() []MenuLink {
	if s.state.Phase != ShellReady {
		return nil
	}
	root := domain.RootPath(s.state.Role)
	items := domain.Menu(s.state.Role)
	links := make([]MenuLink, 0, len(items))
	for _, item := range items {
		links = append(links, MenuLink{
			Tab:    item.Tab,
			Label:  item.Label,
			Href:   TabPath(root, item.Tab),
			Active: item.Tab == s.state.ActiveTab,
		})
	}
	return links
}

// TabPath is the route of tab under a dashboard root.
func TabPath(root string, tab domain.Tab) string {
	return root + "/" + string(tab)
}

func identityKey(session domain.SessionState) string {
	key := session.Principal.AccountID + "|" + session.Principal.Email
	if session.Override != nil {
		key += "|" + string(session.Override.Role) + ":" + session.Override.Value
	}
	return key
}
