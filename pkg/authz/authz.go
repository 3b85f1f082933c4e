// Package authz decides what a dashboard principal may see and do.
package authz

import "github.com/minestax-uz/web/pkg/sdk"

// Decision is the outcome of an authorization check. The negative outcomes
// are not errors; callers route on them.
type Decision int

const (
	Allow Decision = iota
	DenyNoSession
	DenyInsufficientRole
)

// Redirect targets for denied decisions.
const (
	LoginRoute        = "/login"
	UnauthorizedRoute = "/unauthorized"
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyNoSession:
		return "deny-no-session"
	case DenyInsufficientRole:
		return "deny-insufficient-role"
	default:
		return "unknown"
	}
}

// Allowed reports whether d is Allow.
func (d Decision) Allowed() bool { return d == Allow }

// Redirect is the view a collaborator should send the user to, or "" for Allow.
func (d Decision) Redirect() string {
	switch d {
	case DenyNoSession:
		return LoginRoute
	case DenyInsufficientRole:
		return UnauthorizedRoute
	default:
		return ""
	}
}

// Authorize gates a surface on an optional minimum role. A nil requirement
// only asks for some session to exist.
func Authorize(p *sdk.Principal, requirement *sdk.Role) Decision {
	if p == nil {
		return DenyNoSession
	}
	if requirement == nil {
		return Allow
	}
	if p.Role.AtLeast(*requirement) {
		return Allow
	}
	return DenyInsufficientRole
}

// Require is a convenience for building the requirement argument of Authorize.
func Require(r sdk.Role) *sdk.Role { return &r }

// CanModerate reports whether p may act on a record authored by owner:
// admins act on any record, moderators only on their own.
func CanModerate(p *sdk.Principal, owner string) bool {
	if p == nil {
		return false
	}
	switch p.Role {
	case sdk.RoleAdmin:
		return true
	case sdk.RoleModerator:
		return owner != "" && p.DisplayName == owner
	default:
		return false
	}
}
