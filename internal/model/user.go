package model

import "time"

// User roles.  Customers book through the wizard; admins manage the
// catalog, works and reservation statuses.
const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)

// User is an application account as stored in the `users` table.
// Handlers define separate response types with JSON tags; this struct
// is only passed between the repository and the auth handler.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email (unique)
	PasswordHash string    // users.password_hash (bcrypt)
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}
