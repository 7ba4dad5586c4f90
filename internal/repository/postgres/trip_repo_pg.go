package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/humayunejaz/travel-planning-app/internal/domain"
	"github.com/humayunejaz/travel-planning-app/internal/repository/ports"
)

var errNotFound = ports.ErrRecordNotFound

type TripRepository struct {
	db *sqlx.DB
}

func NewTripRepo(db *sqlx.DB) *TripRepository {
	return &TripRepository{db: db}
}

type tripRow struct {
	ID            uuid.UUID      `db:"id"`
	OwnerID       uuid.UUID      `db:"owner_id"`
	Title         string         `db:"title"`
	Description   sql.NullString `db:"description"`
	StartDate     sql.NullString `db:"start_date"`
	EndDate       sql.NullString `db:"end_date"`
	Countries     pq.StringArray `db:"countries"`
	Cities        pq.StringArray `db:"cities"`
	Status        string         `db:"status"`
	Collaborators pq.StringArray `db:"collaborators"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func (r tripRow) toDomain() domain.Trip {
	return domain.Trip{
		ID:            r.ID,
		OwnerID:       r.OwnerID,
		Title:         r.Title,
		Description:   stringPtr(r.Description),
		StartDate:     stringPtr(r.StartDate),
		EndDate:       stringPtr(r.EndDate),
		Countries:     append([]string{}, r.Countries...),
		Cities:        append([]string{}, r.Cities...),
		Status:        domain.TripStatus(r.Status),
		Collaborators: append([]string{}, r.Collaborators...),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

const selectTrips = `
	SELECT
		t.id,
		t.owner_id,
		t.title,
		t.description,
		to_char(t.start_date, 'YYYY-MM-DD') AS start_date,
		to_char(t.end_date, 'YYYY-MM-DD') AS end_date,
		t.countries,
		t.cities,
		t.status,
		COALESCE(
			array_agg(c.email ORDER BY c.created_at, c.email) FILTER (WHERE c.email IS NOT NULL),
			'{}'
		) AS collaborators,
		t.created_at,
		t.updated_at
	FROM trips t
	LEFT JOIN trip_collaborators c ON c.trip_id = t.id
`

// Create inserts the trip row only; collaborator rows are a separate write.
// A pre-assigned id and timestamps are kept, which is how locally created
// trips are promoted with their identity intact.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) (*domain.Trip, error) {
	const query = `
		INSERT INTO trips (id, owner_id, title, description, start_date, end_date, countries, cities, status, created_at, updated_at)
		VALUES (
			COALESCE($1::uuid, gen_random_uuid()),
			$2, $3, $4, $5::date, $6::date, $7, $8, $9,
			COALESCE($10::timestamptz, NOW()),
			COALESCE($11::timestamptz, NOW())
		)
		RETURNING id
	`
	var id *uuid.UUID
	if trip.ID != uuid.Nil {
		id = &trip.ID
	}
	var createdAt, updatedAt *time.Time
	if !trip.CreatedAt.IsZero() {
		createdAt = &trip.CreatedAt
	}
	if !trip.UpdatedAt.IsZero() {
		updatedAt = &trip.UpdatedAt
	}

	var newID uuid.UUID
	err := r.db.GetContext(ctx, &newID, query,
		id,
		trip.OwnerID,
		trip.Title,
		nullString(trip.Description),
		nullString(trip.StartDate),
		nullString(trip.EndDate),
		pq.Array(nonNil(trip.Countries)),
		pq.Array(nonNil(trip.Cities)),
		string(trip.Status),
		createdAt,
		updatedAt,
	)
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, newID)
}

func (r *TripRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Trip, error) {
	query := selectTrips + `
		WHERE t.id = $1
		GROUP BY t.id
	`
	var row tripRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, notFound(err, "trip")
	}
	trip := row.toDomain()
	return &trip, nil
}

func (r *TripRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Trip, error) {
	query := selectTrips + `
		WHERE t.owner_id = $1
		GROUP BY t.id
		ORDER BY t.created_at DESC, t.id DESC
	`
	return r.list(ctx, query, ownerID)
}

func (r *TripRepository) ListByCollaborator(ctx context.Context, email string) ([]domain.Trip, error) {
	query := selectTrips + `
		WHERE t.id IN (SELECT trip_id FROM trip_collaborators WHERE email = $1)
		GROUP BY t.id
		ORDER BY t.created_at DESC, t.id DESC
	`
	return r.list(ctx, query, email)
}

func (r *TripRepository) Update(ctx context.Context, id uuid.UUID, patch domain.TripPatch, updatedAt time.Time) (*domain.Trip, error) {
	setParts := []string{"updated_at = $1"}
	args := []any{updatedAt}
	idx := 2

	if patch.Title != nil {
		setParts = append(setParts, fmt.Sprintf("title = $%d", idx))
		args = append(args, *patch.Title)
		idx++
	}
	if patch.Description != nil {
		setParts = append(setParts, fmt.Sprintf("description = $%d", idx))
		args = append(args, nullString(patch.Description))
		idx++
	}
	if patch.StartDate != nil {
		setParts = append(setParts, fmt.Sprintf("start_date = $%d::date", idx))
		args = append(args, nullString(patch.StartDate))
		idx++
	}
	if patch.EndDate != nil {
		setParts = append(setParts, fmt.Sprintf("end_date = $%d::date", idx))
		args = append(args, nullString(patch.EndDate))
		idx++
	}
	if patch.Countries != nil {
		setParts = append(setParts, fmt.Sprintf("countries = $%d", idx))
		args = append(args, pq.Array(nonNil(*patch.Countries)))
		idx++
	}
	if patch.Cities != nil {
		setParts = append(setParts, fmt.Sprintf("cities = $%d", idx))
		args = append(args, pq.Array(nonNil(*patch.Cities)))
		idx++
	}
	if patch.Status != nil {
		setParts = append(setParts, fmt.Sprintf("status = $%d", idx))
		args = append(args, string(*patch.Status))
		idx++
	}

	query := fmt.Sprintf(`UPDATE trips SET %s WHERE id = $%d`, strings.Join(setParts, ", "), idx)
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, fmt.Errorf("trip: %w", errNotFound)
	}
	return r.FindByID(ctx, id)
}

// Delete removes the trip; collaborator and invitation rows go with it through
// ON DELETE CASCADE.
func (r *TripRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("trip: %w", errNotFound)
	}
	return nil
}

// ListCollaborators returns the trip's emails in insertion order, or a
// not-found error when the trip itself is missing.
func (r *TripRepository) ListCollaborators(ctx context.Context, tripID uuid.UUID) ([]string, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM trips WHERE id = $1)`, tripID); err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("trip: %w", errNotFound)
	}
	const query = `
		SELECT trip_id, email, created_at
		FROM trip_collaborators
		WHERE trip_id = $1
		ORDER BY created_at, email
	`
	var rows []domain.Collaborator
	if err := r.db.SelectContext(ctx, &rows, query, tripID); err != nil {
		return nil, err
	}
	emails := make([]string, 0, len(rows))
	for _, row := range rows {
		emails = append(emails, row.Email)
	}
	return emails, nil
}

// ReplaceCollaborators swaps the whole membership set in one transaction.
func (r *TripRepository) ReplaceCollaborators(ctx context.Context, tripID uuid.UUID, emails []string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var exists bool
	if err = tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM trips WHERE id = $1)`, tripID); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("trip: %w", errNotFound)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM trip_collaborators WHERE trip_id = $1`, tripID); err != nil {
		return err
	}
	if len(emails) > 0 {
		const insert = `
			INSERT INTO trip_collaborators (trip_id, email)
			SELECT $1, unnest($2::text[])
			ON CONFLICT (trip_id, email) DO NOTHING
		`
		if _, err = tx.ExecContext(ctx, insert, tripID, pq.Array(emails)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *TripRepository) list(ctx context.Context, query string, args ...any) ([]domain.Trip, error) {
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trips := make([]domain.Trip, 0)
	for rows.Next() {
		var row tripRow
		if err := rows.StructScan(&row); err != nil {
			return nil, err
		}
		trips = append(trips, row.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return trips, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

var _ ports.TripRepository = (*TripRepository)(nil)
