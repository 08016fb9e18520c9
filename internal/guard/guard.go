// Package guard decides which client routes a session may reach.
package guard

import "github.com/dukerupert/familist/internal/session"

type State int

const (
	Loading State = iota
	Unauthenticated
	NoFamily
	Ready
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Unauthenticated:
		return "unauthenticated"
	case NoFamily:
		return "no-family"
	case Ready:
		return "ready"
	}
	return "unknown"
}

// Routes
const (
	RouteLogin       = "/login"
	RouteRegister    = "/register"
	RouteFamilySetup = "/family-setup"
	RouteDashboard   = "/"
)

// Decision is the outcome for one navigation. Redirect is set when Allow
// is false and the session must go elsewhere; both are zero while loading.
type Decision struct {
	Allow    bool
	Redirect string
}

func Evaluate(snap session.Snapshot, loading bool) State {
	switch {
	case loading:
		return Loading
	case !snap.Authenticated():
		return Unauthenticated
	case !snap.User.HasFamily():
		return NoFamily
	default:
		return Ready
	}
}

// IsPublic reports whether route is reachable without a session.
func IsPublic(route string) bool {
	return route == RouteLogin || route == RouteRegister
}

// Resolve applies state to a requested route.
func Resolve(state State, route string) Decision {
	if IsPublic(route) {
		return Decision{Allow: true}
	}
	switch state {
	case Loading:
		return Decision{}
	case Unauthenticated:
		return Decision{Redirect: RouteLogin}
	case NoFamily:
		if route == RouteFamilySetup {
			return Decision{Allow: true}
		}
		return Decision{Redirect: RouteFamilySetup}
	case Ready:
		return Decision{Allow: true}
	}
	return Decision{Redirect: RouteLogin}
}

// Check evaluates the manager's current session against route.
func Check(m *session.Manager, route string) (State, Decision) {
	state := Evaluate(m.Snapshot(), m.Loading())
	return state, Resolve(state, route)
}
