package domain

import "time"

// Role is the application role carried by an authenticated principal.
type Role string

const (
	RoleMember    Role = "member"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Principal is the authenticated caller as seen by the core. It is produced
// by the external auth system (via a TokenVerifier) and treated as opaque
// beyond these three fields.
// swagger:model Principal
type Principal struct {
	ID           string `json:"id"`
	Role         Role   `json:"role"`
	Subscription Track  `json:"subscription"`
}

// IsStaff reports whether the principal bypasses track restrictions.
func (p Principal) IsStaff() bool {
	return p.Role == RoleAdmin || p.Role == RoleModerator
}

// TokenIssuer issues bearer tokens for an authenticated principal.
type TokenIssuer interface {
	Issue(p Principal, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a bearer token and returns the authenticated
// principal. Returns ErrUnauthenticated if the token is invalid or expired.
type TokenVerifier interface {
	Verify(token string) (Principal, error)
}
