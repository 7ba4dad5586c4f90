package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/humayunejaz/travel-planning-app/internal/domain"
	"github.com/humayunejaz/travel-planning-app/internal/repository/ports"
)

const sessionColumns = `id, user_id, token, created_at, expires_at, is_active`

// SessionRepository keeps the server-side half of a login: a JWT is only
// honoured while its row is active and unexpired.
type SessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepo(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) CreateSession(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) (*domain.Session, error) {
	query := `
        INSERT INTO sessions (user_id, token, expires_at, is_active)
        VALUES ($1, $2, $3, true)
        RETURNING ` + sessionColumns
	var session domain.Session
	if err := r.db.QueryRowxContext(ctx, query, userID, token, expiresAt.UTC()).StructScan(&session); err != nil {
		return nil, err
	}
	return &session, nil
}

// DeactivateSession ends the session. Signing out twice is not an error.
func (r *SessionRepository) DeactivateSession(ctx context.Context, token string) error {
	const query = `
        UPDATE sessions SET is_active = false, expires_at = LEAST(expires_at, NOW())
        WHERE token = $1 AND is_active = true
    `
	_, err := r.db.ExecContext(ctx, query, token)
	return err
}

func (r *SessionRepository) FindActiveSession(ctx context.Context, token string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + `
        FROM sessions
        WHERE token = $1 AND is_active = true AND expires_at > NOW()`
	var session domain.Session
	if err := r.db.GetContext(ctx, &session, query, token); err != nil {
		return nil, notFound(err, "session")
	}
	return &session, nil
}

var _ ports.SessionRepository = (*SessionRepository)(nil)
