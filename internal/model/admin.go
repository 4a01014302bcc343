package model

import "time"

// RoleAdmin is the only role the panel knows about today.
const RoleAdmin = "admin"

// Admin is a credential record for someone allowed into the admin panel.
//
// Email is stored lower-cased and is unique. PasswordHash is a bcrypt hash and
// is never serialized (json:"-"), so an Admin can be returned from /auth/session
// as-is.
type Admin struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
