package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/humayunejaz/travel-planning-app/internal/domain"
	"github.com/humayunejaz/travel-planning-app/internal/repository/ports"
)

type InvitationRepository struct {
	db *sqlx.DB
}

func NewInvitationRepo(db *sqlx.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

const invitationColumns = `id, trip_id, email, token, invited_by, status, created_at, expires_at, responded_at`

func (r *InvitationRepository) Create(ctx context.Context, invitation *domain.Invitation) (*domain.Invitation, error) {
	const query = `
        INSERT INTO trip_invitations (id, trip_id, email, token, invited_by, status, created_at, expires_at)
        VALUES (COALESCE($1::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, COALESCE($7::timestamptz, NOW()), $8)
        RETURNING ` + invitationColumns

	var id *uuid.UUID
	if invitation.ID != uuid.Nil {
		id = &invitation.ID
	}
	var createdAt *time.Time
	if !invitation.CreatedAt.IsZero() {
		createdAt = &invitation.CreatedAt
	}
	status := invitation.Status
	if status == "" {
		status = domain.InvitationStatusPending
	}

	row := r.db.QueryRowxContext(ctx, query,
		id,
		invitation.TripID,
		invitation.Email,
		invitation.Token,
		invitation.InvitedBy,
		string(status),
		createdAt,
		invitation.ExpiresAt,
	)
	var out domain.Invitation
	if err := row.StructScan(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *InvitationRepository) FindRedeemableByToken(ctx context.Context, token string, now time.Time) (*domain.Invitation, error) {
	const query = `
        SELECT ` + invitationColumns + `
        FROM trip_invitations
        WHERE token = $1 AND status = 'pending' AND expires_at > $2
    `
	var out domain.Invitation
	if err := r.db.GetContext(ctx, &out, query, token, now); err != nil {
		return nil, notFound(err, "invitation")
	}
	return &out, nil
}

func (r *InvitationRepository) FindRedeemableByTripAndEmail(ctx context.Context, tripID uuid.UUID, email string, now time.Time) (*domain.Invitation, error) {
	const query = `
        SELECT ` + invitationColumns + `
        FROM trip_invitations
        WHERE trip_id = $1 AND email = $2 AND status = 'pending' AND expires_at > $3
        ORDER BY created_at DESC
        LIMIT 1
    `
	var out domain.Invitation
	if err := r.db.GetContext(ctx, &out, query, tripID, email, now); err != nil {
		return nil, notFound(err, "invitation")
	}
	return &out, nil
}

func (r *InvitationRepository) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Invitation, error) {
	const query = `
        SELECT ` + invitationColumns + `
        FROM trip_invitations
        WHERE trip_id = $1
        ORDER BY created_at DESC
    `
	out := make([]domain.Invitation, 0)
	if err := r.db.SelectContext(ctx, &out, query, tripID); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *InvitationRepository) Respond(ctx context.Context, token string, status domain.InvitationStatus, now time.Time) (bool, error) {
	const query = `
        UPDATE trip_invitations
        SET status = $2, responded_at = $3
        WHERE token = $1 AND status = 'pending' AND expires_at > $3
    `
	result, err := r.db.ExecContext(ctx, query, token, string(status), now)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

var _ ports.InvitationRepository = (*InvitationRepository)(nil)
