package domain

import (
	"time"

	"github.com/google/uuid"
)

type Collaborator struct {
	TripID    uuid.UUID `db:"trip_id" json:"trip_id"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Identity is the caller as seen by the access rules: an account id and the
// email the collaborator rows are keyed on.
type Identity struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}
