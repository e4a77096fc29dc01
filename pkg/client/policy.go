package client

import "plafondhub/internal/core/domain"

// Decision is a routing verdict: either proceed, or go to Redirect instead
type Decision struct {
	Allowed  bool
	Redirect string
}

// Policy gates portal pages on the current session. All checks are local;
// the backend re-checks every call regardless.
type Policy struct {
	session *Session
}

// NewPolicy creates a policy over a session
func NewPolicy(session *Session) *Policy {
	return &Policy{session: session}
}

// RequireAuth admits only live sessions; others go to the login page
func (p *Policy) RequireAuth() Decision {
	if p.session.IsAuthenticated() {
		return Decision{Allowed: true}
	}
	return Decision{Redirect: "/login"}
}

// RequireGuest admits only logged-out visitors. A live session is sent to its
// own dashboard so login and register pages never show to signed-in users.
func (p *Policy) RequireGuest() Decision {
	if !p.session.IsAuthenticated() {
		return Decision{Allowed: true}
	}
	return Decision{Redirect: domain.RedirectFor(p.session.Roles())}
}

// CanEnter admits sessions holding at least one of the required roles. An
// empty required set admits any live session. Denied sessions are routed to
// the dashboard matching their own roles; a dead session goes to login.
func (p *Policy) CanEnter(required ...domain.Role) Decision {
	if !p.session.IsAuthenticated() {
		return Decision{Redirect: "/login"}
	}
	if len(required) == 0 {
		return Decision{Allowed: true}
	}

	roles := p.session.Roles()
	if roles.Intersects(domain.RoleSet(required)) {
		return Decision{Allowed: true}
	}
	return Decision{Redirect: domain.RedirectFor(roles)}
}

// HomeFor returns the session's own dashboard page
func (p *Policy) HomeFor() string {
	return domain.RedirectFor(p.session.Roles())
}
