package domain

import (
	"time"

	"github.com/google/uuid"
)

type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusDeclined InvitationStatus = "declined"
)

type Invitation struct {
	ID          uuid.UUID        `db:"id" json:"id"`
	TripID      uuid.UUID        `db:"trip_id" json:"trip_id"`
	Email       string           `db:"email" json:"email"`
	Token       string           `db:"token" json:"token"`
	InvitedBy   string           `db:"invited_by" json:"invited_by"`
	Status      InvitationStatus `db:"status" json:"status"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	ExpiresAt   time.Time        `db:"expires_at" json:"expires_at"`
	RespondedAt *time.Time       `db:"responded_at" json:"responded_at,omitempty"`
}

// IsRedeemable reports whether the invitation is still pending and unexpired at now.
func (i Invitation) IsRedeemable(now time.Time) bool {
	return i.Status == InvitationStatusPending && i.ExpiresAt.After(now)
}
