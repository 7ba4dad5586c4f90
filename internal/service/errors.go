package service

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/humayunejaz/travel-planning-app/internal/domain"
	"github.com/humayunejaz/travel-planning-app/internal/repository/ports"
)

var (
	ErrTripNotFound           = errors.New("trip not found")
	ErrTripValidation         = errors.New("trip validation failed")
	ErrCollaboratorValidation = errors.New("collaborator validation failed")
	ErrTripForbidden          = errors.New("not allowed to access this trip")
	ErrInvitationNotFound     = errors.New("invitation not found")
	ErrPartialFailure         = errors.New("operation partially applied")
	ErrRemoteUnavailable      = errors.New("remote store unavailable")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrEmailTaken             = errors.New("email already registered")
	ErrSessionNotFound        = errors.New("session not found")
	ErrRoleInvalid            = errors.New("invalid role")
)

// PartialFailureError is returned when the trip row was written but a
// follow-up write (the collaborator set) was not. Trip is the stored record.
type PartialFailureError struct {
	Trip  *domain.Trip
	Cause error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%s: %v", ErrPartialFailure, e.Cause)
}

func (e *PartialFailureError) Unwrap() []error {
	return []error{ErrPartialFailure, e.Cause}
}

// IsValidation reports whether err was caused by rejected input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrTripValidation) || errors.Is(err, ErrCollaboratorValidation)
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, ports.ErrRecordNotFound)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
