package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/humayunejaz/travel-planning-app/internal/domain"
	"github.com/humayunejaz/travel-planning-app/internal/repository/ports"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, email string, fullName *string, role domain.UserRole, passwordHash, passwordSalt []byte) (*domain.User, error) {
	const query = `
        INSERT INTO app_user (email, full_name, role, password_hash, password_salt)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, email, full_name, role, password_hash, password_salt, created_at, updated_at
    `
	row := r.db.QueryRowxContext(ctx, query, email, fullName, string(role), passwordHash, passwordSalt)
	var user domain.User
	if err := row.StructScan(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
        SELECT id, email, full_name, role, password_hash, password_salt, created_at, updated_at
        FROM app_user
        WHERE email = $1
    `
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const query = `
        SELECT id, email, full_name, role, password_hash, password_salt, created_at, updated_at
        FROM app_user
        WHERE id = $1
    `
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role domain.UserRole) (*domain.User, error) {
	const query = `
        UPDATE app_user SET role = $2, updated_at = NOW()
        WHERE id = $1
        RETURNING id, email, full_name, role, password_hash, password_salt, created_at, updated_at
    `
	row := r.db.QueryRowxContext(ctx, query, id, string(role))
	var user domain.User
	if err := row.StructScan(&user); err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

var _ ports.UserRepository = (*UserRepository)(nil)
