package model

import "time"

// Roles assignable to users. The role is embedded in the JWT "role"
// claim and checked by the RequireRole middleware. ADMIN grants
// unrestricted room and booking management; CUSTOMER may only create
// bookings and manage their own.
const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)

// User represents an application user record as stored in the
// `users` table.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Name         – display name provided at registration.
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password, never serialized.
//	Role         – one of RoleCustomer or RoleAdmin.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the administrator role.
// Ownership checks on bookings use this predicate rather than
// comparing role strings inline.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// RefreshToken models an entry in the `refresh_tokens` table. Each
// refresh token belongs to a user and carries expiry and revocation
// metadata. The plain token is never stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
