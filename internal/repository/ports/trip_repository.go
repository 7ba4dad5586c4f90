package ports

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/humayunejaz/travel-planning-app/internal/domain"
)

// ErrRecordNotFound is returned by backends that have no row for the key.
var ErrRecordNotFound = errors.New("record not found")

// TripRepository is implemented by both the remote store adapter and the local
// cache store. Returned trips carry their collaborator emails.
type TripRepository interface {
	Create(ctx context.Context, trip *domain.Trip) (*domain.Trip, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Trip, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Trip, error)
	ListByCollaborator(ctx context.Context, email string) ([]domain.Trip, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.TripPatch, updatedAt time.Time) (*domain.Trip, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListCollaborators(ctx context.Context, tripID uuid.UUID) ([]string, error)
	ReplaceCollaborators(ctx context.Context, tripID uuid.UUID, emails []string) error
}

// LocalTripRepository adds the whole-collection scan the sync pass needs.
type LocalTripRepository interface {
	TripRepository
	ListAll(ctx context.Context) ([]domain.Trip, error)
}

// Connectivity reports whether the remote store can currently be reached.
type Connectivity interface {
	Available(ctx context.Context) bool
}
