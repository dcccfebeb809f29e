// Package auth implements JWT issuance and verification for the access/
// refresh token pair. Access and refresh tokens are signed with independent
// secrets so a token of one class never validates as the other.
package auth

import "github.com/golang-jwt/jwt/v5"

// Roles recognized by the platform.
const (
	RoleAdmin        = "admin"
	RoleInstructor   = "instructor"
	RoleAccountant   = "accountant"
	RoleOrganization = "organization"
)

// ValidRole reports whether role is one of the fixed role strings.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleInstructor, RoleAccountant, RoleOrganization:
		return true
	}
	return false
}

// Claims is the identity payload embedded in every token. Claims are
// immutable once signed; a role change requires minting a new token.
type Claims struct {
	jwt.RegisteredClaims
	UserID           int64  `json:"uid"`
	Username         string `json:"username"`
	Role             string `json:"role"`
	OrganizationID   *int64 `json:"org_id,omitempty"`
	OrganizationName string `json:"org_name,omitempty"`
	SessionID        string `json:"sid,omitempty"`
	TokenVersion     int64  `json:"tv"`
}
