package models

import "time"

// User roles. Role is an explicit field checked by the workflow engine,
// not inferred from which endpoint a caller happens to hit.
const (
	RoleUploader = "uploader"
	RoleApprover = "approver"
	RoleReviewer = "reviewer"
	RoleAdmin    = "admin"
)

// User represents a registered account
type User struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Admin represents an administrative account kept in a separate table
type Admin struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

// ValidRole reports whether role is one of the known role values
func ValidRole(role string) bool {
	switch role {
	case RoleUploader, RoleApprover, RoleReviewer, RoleAdmin:
		return true
	}
	return false
}
