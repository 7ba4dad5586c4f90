package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/humayunejaz/travel-planning-app/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, email string, fullName *string, role domain.UserRole, passwordHash, passwordSalt []byte) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role domain.UserRole) (*domain.User, error)
}
