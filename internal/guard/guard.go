// Package guard gates transitions into protected views. The decision is
// synchronous and side-effect free: it trusts the locally stored session
// flag and performs no network validation of the credential.
package guard

// View names a navigable view of the admin client.
type View string

const (
	// ViewLogin is the login form; always admitted.
	ViewLogin View = "login"
	// ViewDashboard is the protected event table.
	ViewDashboard View = "dashboard"
	// ViewDetail is the protected read-only event detail view.
	ViewDetail View = "detail"
	// ViewNotFound is shown for unknown targets; always admitted.
	ViewNotFound View = "not-found"
)

// State is the guard's view of the session.
type State int

const (
	// StateGuarded denies protected views and redirects to login.
	StateGuarded State = iota
	// StateAdmitted allows protected views.
	StateAdmitted
)

// SessionReader answers whether the client is currently authenticated.
// Implemented by the session store.
type SessionReader interface {
	IsAuthenticated() bool
}

// Guard decides admission for every navigation attempt. Decisions are not
// cached: each Resolve call re-reads the session, so a logout takes effect
// on the next navigation.
type Guard struct {
	session SessionReader
}

// New returns a Guard backed by the given session.
func New(session SessionReader) *Guard {
	return &Guard{session: session}
}

// Protected reports whether the view requires authentication.
func Protected(v View) bool {
	switch v {
	case ViewDashboard, ViewDetail:
		return true
	default:
		return false
	}
}

// State reports the current admission state, derived from the session.
func (g *Guard) State() State {
	if g.session.IsAuthenticated() {
		return StateAdmitted
	}
	return StateGuarded
}

// Resolve returns the view the navigation actually lands on: the target
// itself when admitted, the login view when the target is protected and
// the session is not authenticated.
func (g *Guard) Resolve(target View) View {
	if Protected(target) && g.State() == StateGuarded {
		return ViewLogin
	}
	return target
}
