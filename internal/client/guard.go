package client

// LoginRoute is where the guard sends unauthenticated navigation.
const LoginRoute = "/auth/login"

// GuardDecision is the outcome of a guard check: either the navigation
// proceeds, or it is redirected to RedirectTo.
type GuardDecision struct {
	Allowed    bool
	RedirectTo string
}

// RouteGuard gates navigation to protected views on the session state.
type RouteGuard struct {
	session *SessionStore
}

func NewRouteGuard(session *SessionStore) *RouteGuard {
	return &RouteGuard{session: session}
}

// Check allows the navigation when a live session is held; otherwise it
// redirects to the login route. An expired token is treated the same as
// no token at all.
func (g *RouteGuard) Check() GuardDecision {
	if g.session.IsAuthenticated() {
		return GuardDecision{Allowed: true}
	}
	return GuardDecision{Allowed: false, RedirectTo: LoginRoute}
}
