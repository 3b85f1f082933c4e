package authz

import (
	_ "embed"
	"fmt"
	"path"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/minestax-uz/web/pkg/sdk"
)

//go:embed model.conf
var casbinModelContent string

// Capability names a role-gated control of the dashboard.
type Capability string

const (
	BanComment         Capability = "ban:comment"
	BanCommentDelete   Capability = "ban:comment:delete"
	BanProofAdd        Capability = "ban:proof:add"
	BanProofDelete     Capability = "ban:proof:delete"
	StaffPermissionAdd Capability = "staff:permission:add"
	StaffView          Capability = "staff:view"
	PlayersView        Capability = "players:view"
	ProfileUpdate      Capability = "profile:update"
)

// Policy scopes. "own" only matches when the acting principal authored the record.
const (
	scopeAny = "any"
	scopeOwn = "own"
)

const routePrefix = "route:"

// Routes that never need a session.
var publicRoutes = map[string]bool{
	LoginRoute:        true,
	UnauthorizedRoute: true,
}

// defaultPolicies grants each capability to the lowest role that holds it;
// higher roles inherit through the grouping rules.
var defaultPolicies = [][]string{
	{string(sdk.RoleUser), routePrefix + "/dashboard", scopeAny},
	{string(sdk.RoleUser), routePrefix + "/bans", scopeAny},
	{string(sdk.RoleUser), routePrefix + "/statistics", scopeAny},
	{string(sdk.RoleUser), routePrefix + "/profile", scopeAny},
	{string(sdk.RoleModerator), routePrefix + "/players", scopeAny},
	{string(sdk.RoleAdmin), routePrefix + "/staff", scopeAny},

	{string(sdk.RoleUser), string(ProfileUpdate), scopeAny},
	{string(sdk.RoleModerator), string(BanComment), scopeAny},
	{string(sdk.RoleModerator), string(BanProofAdd), scopeAny},
	{string(sdk.RoleModerator), string(PlayersView), scopeAny},
	{string(sdk.RoleModerator), string(BanCommentDelete), scopeOwn},
	{string(sdk.RoleModerator), string(BanProofDelete), scopeOwn},
	{string(sdk.RoleAdmin), string(BanCommentDelete), scopeAny},
	{string(sdk.RoleAdmin), string(BanProofDelete), scopeAny},
	{string(sdk.RoleAdmin), string(StaffPermissionAdd), scopeAny},
	{string(sdk.RoleAdmin), string(StaffView), scopeAny},
}

var roleHierarchy = [][]string{
	{string(sdk.RoleAdmin), string(sdk.RoleModerator)},
	{string(sdk.RoleModerator), string(sdk.RoleUser)},
}

// Model answers route and capability checks against a static casbin policy.
// It is read-only after construction and safe for concurrent use.
type Model struct {
	enforcer *casbin.SyncedEnforcer
}

// NewModel builds the enforcer from the embedded model and the default policy.
func NewModel() (*Model, error) {
	m, err := model.NewModelFromString(casbinModelContent)
	if err != nil {
		return nil, fmt.Errorf("parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}
	if _, err := enforcer.AddGroupingPolicies(roleHierarchy); err != nil {
		return nil, fmt.Errorf("load role hierarchy: %w", err)
	}
	if _, err := enforcer.AddPolicies(defaultPolicies); err != nil {
		return nil, fmt.Errorf("load casbin policies: %w", err)
	}

	return &Model{enforcer: enforcer}, nil
}

// Can decides whether p holds a capability that is not tied to a record owner.
func (m *Model) Can(p *sdk.Principal, capability Capability) Decision {
	return m.CanOn(p, capability, "")
}

// CanOn decides whether p may use capability on a record authored by owner.
// Owner-scoped grants follow CanModerate.
func (m *Model) CanOn(p *sdk.Principal, capability Capability, owner string) Decision {
	if p == nil {
		return DenyNoSession
	}
	return m.enforce(p, string(capability), owner)
}

// AuthorizeRoute decides whether p may open a dashboard route. Nested paths
// inherit the requirement of their first segment; unknown routes are denied.
func (m *Model) AuthorizeRoute(p *sdk.Principal, route string) Decision {
	route = NormalizeRoute(route)
	if publicRoutes[route] {
		return Allow
	}
	if p == nil {
		return DenyNoSession
	}
	return m.enforce(p, routePrefix+route, "")
}

func (m *Model) enforce(p *sdk.Principal, act, owner string) Decision {
	ok, err := m.enforcer.Enforce(string(p.Role), p.DisplayName, act, owner)
	if err != nil || !ok {
		return DenyInsufficientRole
	}
	return Allow
}

// NormalizeRoute reduces a path to its top-level route. The root path is the dashboard.
func NormalizeRoute(route string) string {
	cleaned := path.Clean("/" + strings.TrimSpace(route))
	if cleaned == "/" {
		return "/dashboard"
	}
	if i := strings.IndexByte(cleaned[1:], '/'); i >= 0 {
		cleaned = cleaned[:i+1]
	}
	return cleaned
}
