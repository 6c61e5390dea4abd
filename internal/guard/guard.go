// Package guard decides what a role-gated route should do with the current
// session. Pure decisions; the routing layer executes them.
package guard

import (
	"github.com/yashraj-ghemud/royal-state/internal/auth"
	"github.com/yashraj-ghemud/royal-state/internal/models"
)

type Route string

const (
	RouteHome         Route = "/"
	RouteSignIn       Route = "/auth"
	RouteAdminHome    Route = "/admin-dashboard"
	RouteCustomerHome Route = "/explore-rooms"
)

type Decision int

const (
	// Wait renders a neutral waiting state: no redirect decision exists yet,
	// redirecting now would flash the wrong screen.
	Wait Decision = iota
	Allow
	Redirect
)

type Result struct {
	Decision Decision
	Target   Route
}

// HomeFor returns the canonical home screen of a role.
func HomeFor(role models.Role) Route {
	if role == models.RoleAdmin {
		return RouteAdminHome
	}
	return RouteCustomerHome
}

// Evaluate gates a route that allows the given roles. An empty allowed set
// means any authenticated session passes.
func Evaluate(snap auth.Snapshot, allowed ...models.Role) Result {
	if snap.Loading {
		return Result{Decision: Wait}
	}
	if snap.Session == nil {
		return Result{Decision: Redirect, Target: RouteSignIn}
	}
	if len(allowed) == 0 {
		return Result{Decision: Allow}
	}
	for _, role := range allowed {
		if snap.Session.Role == role {
			return Result{Decision: Allow}
		}
	}
	return Result{Decision: Redirect, Target: HomeFor(snap.Session.Role)}
}
