package sdk

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the closed set of dashboard roles. The wire values match the
// role claim of the access token.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moder"
	RoleUser      Role = "user"
)

// Roles lists every role from most to least privileged.
var Roles = []Role{RoleAdmin, RoleModerator, RoleUser}

// ParseRole converts a claim value into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleModerator, RoleUser:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) rank() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleModerator:
		return 2
	case RoleUser:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether r satisfies a requirement of min under
// admin > moder > user.
func (r Role) AtLeast(min Role) bool {
	return r.rank() > 0 && r.rank() >= min.rank()
}

// Title is the human label used by the dashboard views.
func (r Role) Title() string {
	switch r {
	case RoleAdmin:
		return "Administrator"
	case RoleModerator:
		return "Moderator"
	case RoleUser:
		return "Player"
	default:
		return string(r)
	}
}

// Principal is the identity carried by an access token. It is derived on
// demand and never stored on its own.
type Principal struct {
	ID          string
	DisplayName string
	Role        Role
}

// accessClaims mirrors the payload of the access token issued by the panel API.
type accessClaims struct {
	ID       any    `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// DecodePrincipal reads the principal out of an access token without verifying
// its signature. The server remains the authority; the client only needs the
// claims to drive its views.
func DecodePrincipal(accessToken string) (*Principal, error) {
	var claims accessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, &claims); err != nil {
		return nil, fmt.Errorf("decode access token: %w", err)
	}

	if claims.Username == "" {
		return nil, fmt.Errorf("decode access token: username claim missing")
	}

	role, err := ParseRole(claims.Role)
	if err != nil {
		return nil, fmt.Errorf("decode access token: %w", err)
	}

	id := ""
	switch v := claims.ID.(type) {
	case string:
		id = v
	case float64:
		id = fmt.Sprintf("%.0f", v)
	case nil:
		id = claims.Subject
	default:
		return nil, fmt.Errorf("decode access token: unsupported id claim type %T", v)
	}

	return &Principal{ID: id, DisplayName: claims.Username, Role: role}, nil
}
