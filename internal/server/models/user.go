package models

import "time"

// User is a row in the users table. PasswordHash is a bcrypt hash and never
// leaves the server.
type User struct {
	ID               int64
	Username         string
	PasswordHash     string
	Role             string
	OrganizationID   *int64
	OrganizationName *string
	TokenVersion     int64
	IsActive         bool
	LastLoginAt      *time.Time
	CreatedAt        time.Time
}
