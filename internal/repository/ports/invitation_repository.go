package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/humayunejaz/travel-planning-app/internal/domain"
)

type InvitationRepository interface {
	Create(ctx context.Context, invitation *domain.Invitation) (*domain.Invitation, error)
	FindRedeemableByToken(ctx context.Context, token string, now time.Time) (*domain.Invitation, error)
	FindRedeemableByTripAndEmail(ctx context.Context, tripID uuid.UUID, email string, now time.Time) (*domain.Invitation, error)
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Invitation, error)
	// Respond moves a pending, unexpired invitation to status. It reports
	// false when no such invitation matched the token.
	Respond(ctx context.Context, token string, status domain.InvitationStatus, now time.Time) (bool, error)
}
