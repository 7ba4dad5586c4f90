package domain

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleTraveler UserRole = "traveler"
	UserRoleAgency   UserRole = "agency"
)

func (r UserRole) Valid() bool {
	return r == UserRoleTraveler || r == UserRoleAgency
}

type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	FullName     *string   `db:"full_name" json:"full_name,omitempty"`
	Role         UserRole  `db:"role" json:"role"`
	PasswordHash []byte    `db:"password_hash" json:"-"`
	PasswordSalt []byte    `db:"password_salt" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, Email: u.Email}
}

// DisplayName falls back to the email when no name was given at sign-up.
func (u *User) DisplayName() string {
	if u.FullName != nil && *u.FullName != "" {
		return *u.FullName
	}
	return u.Email
}
