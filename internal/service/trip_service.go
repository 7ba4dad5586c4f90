package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/humayunejaz/travel-planning-app/internal/domain"
	"github.com/humayunejaz/travel-planning-app/internal/repository/ports"
	"github.com/humayunejaz/travel-planning-app/internal/util"
)

const dateLayout = "2006-01-02"

type TripServiceConfig struct {
	Logger *zap.SugaredLogger
}

// TripService routes trip reads and writes between the authoritative remote
// store and the local cache. The remote store wins whenever it is reachable;
// writes that cannot reach it land in the local cache flagged PendingSync.
type TripService struct {
	remote ports.TripRepository
	local  ports.LocalTripRepository
	probe  ports.Connectivity
	access *AccessResolver
	log    *zap.SugaredLogger
	now    func() time.Time
	newID  func() uuid.UUID
}

// SyncReport summarises one promotion pass over the local cache.
type SyncReport struct {
	Pending   int         `json:"pending"`
	Synced    int         `json:"synced"`
	Failed    int         `json:"failed"`
	SyncedIDs []uuid.UUID `json:"synced_ids"`
}

// NewTripService wires the engine. remote may be nil when no remote store is
// configured; probe may be nil, in which case a configured remote is always
// tried.
func NewTripService(remote ports.TripRepository, local ports.LocalTripRepository, probe ports.Connectivity, cfg TripServiceConfig) *TripService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &TripService{
		remote: remote,
		local:  local,
		probe:  probe,
		access: NewAccessResolver(),
		log:    logger,
		now:    time.Now,
		newID:  uuid.New,
	}
}

func (s *TripService) SetClock(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

func (s *TripService) remoteReady(ctx context.Context) bool {
	if s.remote == nil {
		return false
	}
	if s.probe == nil {
		return true
	}
	return s.probe.Available(ctx)
}

func (s *TripService) CreateTrip(ctx context.Context, fields domain.TripFields, collaboratorEmails []string, ownerID uuid.UUID) (*domain.Trip, error) {
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("%w: owner required", ErrTripValidation)
	}
	trip, err := tripFromFields(fields)
	if err != nil {
		return nil, err
	}
	collaborators, err := normalizeCollaborators(collaboratorEmails)
	if err != nil {
		return nil, err
	}
	trip.OwnerID = ownerID
	trip.ID = s.newID()

	if s.remoteReady(ctx) {
		created, err := s.remote.Create(ctx, trip)
		if err == nil {
			created.Collaborators = []string{}
			if len(collaborators) == 0 {
				return created, nil
			}
			if err := s.replaceRemoteCollaborators(ctx, created.ID, collaborators); err != nil {
				s.log.Warnw("trip stored without collaborators", "op", "create_trip", "trip_id", created.ID, "error", err)
				return created, &PartialFailureError{Trip: created, Cause: err}
			}
			created.Collaborators = collaborators
			return created, nil
		}
		s.log.Warnw("remote create failed, storing trip locally", "op", "create_trip", "error", err)
	}

	now := s.now().UTC()
	trip.Collaborators = collaborators
	trip.PendingSync = true
	trip.CreatedAt = now
	trip.UpdatedAt = now
	stored, err := s.local.Create(ctx, trip)
	if err != nil {
		return nil, fmt.Errorf("store trip locally: %w", err)
	}
	return stored, nil
}

// replaceRemoteCollaborators writes the set and retries once with the same
// trip id before giving up.
func (s *TripService) replaceRemoteCollaborators(ctx context.Context, tripID uuid.UUID, emails []string) error {
	err := s.remote.ReplaceCollaborators(ctx, tripID, emails)
	if err == nil {
		return nil
	}
	s.log.Warnw("collaborator insert failed, retrying", "trip_id", tripID, "error", err)
	return s.remote.ReplaceCollaborators(ctx, tripID, emails)
}

// GetUserTrips returns the owner's trips from both stores. Remote records
// come first in store order, then local records that the remote store does
// not already hold.
func (s *TripService) GetUserTrips(ctx context.Context, ownerID uuid.UUID) ([]domain.Trip, error) {
	remoteTrips, remoteOK := s.listRemote(ctx, "get_user_trips", func(ctx context.Context) ([]domain.Trip, error) {
		return s.remote.ListByOwner(ctx, ownerID)
	})
	localTrips, err := s.local.ListByOwner(ctx, ownerID)
	if err != nil {
		if !remoteOK {
			return nil, fmt.Errorf("load trips: %w", err)
		}
		s.log.Warnw("local cache read failed", "op", "get_user_trips", "error", err)
		localTrips = nil
	}
	return mergeOwnedTrips(remoteTrips, localTrips), nil
}

// GetCollaboratorTrips lists trips that name email as a collaborator.
func (s *TripService) GetCollaboratorTrips(ctx context.Context, email string) ([]domain.Trip, error) {
	email = util.NormalizeEmail(email)
	if email == "" {
		return []domain.Trip{}, nil
	}
	remoteTrips, remoteOK := s.listRemote(ctx, "get_collaborator_trips", func(ctx context.Context) ([]domain.Trip, error) {
		return s.remote.ListByCollaborator(ctx, email)
	})
	localTrips, err := s.local.ListByCollaborator(ctx, email)
	if err != nil {
		if !remoteOK {
			return nil, fmt.Errorf("load trips: %w", err)
		}
		s.log.Warnw("local cache read failed", "op", "get_collaborator_trips", "error", err)
		localTrips = nil
	}
	return mergeTrips(remoteTrips, localTrips), nil
}

// GetVisibleTrips is the dashboard list: owned trips followed by trips shared
// with the identity's email, each id once.
func (s *TripService) GetVisibleTrips(ctx context.Context, identity domain.Identity) ([]domain.Trip, error) {
	owned, err := s.GetUserTrips(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	shared, err := s.GetCollaboratorTrips(ctx, identity.Email)
	if err != nil {
		return nil, err
	}
	seen := make(map[uuid.UUID]struct{}, len(owned))
	out := make([]domain.Trip, 0, len(owned)+len(shared))
	for _, trip := range owned {
		seen[trip.ID] = struct{}{}
		out = append(out, trip)
	}
	for _, trip := range shared {
		if _, ok := seen[trip.ID]; ok {
			continue
		}
		seen[trip.ID] = struct{}{}
		out = append(out, trip)
	}
	return out, nil
}

// listRemote runs a remote read; any failure reads as an empty result. The
// bool is false when the remote store was not consulted successfully.
func (s *TripService) listRemote(ctx context.Context, op string, fn func(context.Context) ([]domain.Trip, error)) ([]domain.Trip, bool) {
	if !s.remoteReady(ctx) {
		return nil, false
	}
	trips, err := fn(ctx)
	if err != nil {
		s.log.Warnw("remote read failed, using local cache only", "op", op, "error", err)
		return nil, false
	}
	return trips, true
}

// mergeTrips appends local records whose id the remote list lacks.
func mergeTrips(remote, local []domain.Trip) []domain.Trip {
	return mergeTripsFunc(remote, local, nil)
}

// mergeOwnedTrips also drops a local record when a remote one has the same
// owner, title and dates (copies that predate promotion).
func mergeOwnedTrips(remote, local []domain.Trip) []domain.Trip {
	return mergeTripsFunc(remote, local, domain.Trip.SameSchedule)
}

func mergeTripsFunc(remote, local []domain.Trip, duplicate func(r, l domain.Trip) bool) []domain.Trip {
	out := make([]domain.Trip, 0, len(remote)+len(local))
	ids := make(map[uuid.UUID]struct{}, len(remote))
	for _, trip := range remote {
		ids[trip.ID] = struct{}{}
		out = append(out, trip)
	}
next:
	for _, trip := range local {
		if _, ok := ids[trip.ID]; ok {
			continue
		}
		if duplicate != nil {
			for _, r := range remote {
				if duplicate(r, trip) {
					continue next
				}
			}
		}
		out = append(out, trip)
	}
	return out
}

// GetTripByID looks in the remote store first, then the local cache. It
// returns nil, nil when neither store has the trip.
func (s *TripService) GetTripByID(ctx context.Context, id uuid.UUID) (*domain.Trip, error) {
	if s.remoteReady(ctx) {
		trip, err := s.remote.FindByID(ctx, id)
		if err == nil {
			return trip, nil
		}
		if !isNotFound(err) {
			s.log.Warnw("remote lookup failed, checking local cache", "op", "get_trip", "trip_id", id, "error", err)
		}
	}
	trip, err := s.local.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load trip: %w", err)
	}
	return trip, nil
}

func (s *TripService) GetTripForIdentity(ctx context.Context, id uuid.UUID, identity domain.Identity) (*domain.Trip, error) {
	trip, err := s.GetTripByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, ErrTripNotFound
	}
	if !s.access.CanAccess(trip, identity) {
		return nil, ErrTripForbidden
	}
	return trip, nil
}

// UpdateTrip applies patch to the trip and, when collaboratorEmails is
// non-nil, replaces its collaborator set.
func (s *TripService) UpdateTrip(ctx context.Context, id uuid.UUID, patch domain.TripPatch, collaboratorEmails *[]string) (*domain.Trip, error) {
	if err := normalizePatch(&patch); err != nil {
		return nil, err
	}
	var collaborators []string
	if collaboratorEmails != nil {
		normalized, err := normalizeCollaborators(*collaboratorEmails)
		if err != nil {
			return nil, err
		}
		collaborators = normalized
	}
	now := s.now().UTC()

	remoteFailed := false
	if s.remoteReady(ctx) {
		updated, err := s.remote.Update(ctx, id, patch, now)
		switch {
		case err == nil:
			if collaboratorEmails != nil {
				if err := s.remote.ReplaceCollaborators(ctx, id, collaborators); err != nil {
					s.log.Warnw("collaborator replace failed after update", "op", "update_trip", "trip_id", id, "error", err)
					return updated, &PartialFailureError{Trip: updated, Cause: err}
				}
				updated.Collaborators = collaborators
			}
			s.reconcileLocalCopy(ctx, id, patch, collaboratorEmails != nil, collaborators, now)
			return updated, nil
		case isNotFound(err):
		default:
			remoteFailed = true
			s.log.Warnw("remote update failed, updating local cache", "op", "update_trip", "trip_id", id, "error", err)
		}
	} else if s.remote != nil {
		remoteFailed = true
	}

	updated, err := s.local.Update(ctx, id, patch, now)
	if err != nil {
		if isNotFound(err) {
			if remoteFailed {
				return nil, ErrRemoteUnavailable
			}
			return nil, ErrTripNotFound
		}
		return nil, fmt.Errorf("update local trip: %w", err)
	}
	if collaboratorEmails != nil {
		if err := s.local.ReplaceCollaborators(ctx, id, collaborators); err != nil {
			return nil, fmt.Errorf("update local collaborators: %w", err)
		}
		updated.Collaborators = collaborators
	}
	return updated, nil
}

// reconcileLocalCopy runs after a successful remote update. A pending local
// copy gets the same change; a copy that is no longer pending is retired.
func (s *TripService) reconcileLocalCopy(ctx context.Context, id uuid.UUID, patch domain.TripPatch, replace bool, collaborators []string, now time.Time) {
	local, err := s.local.FindByID(ctx, id)
	if err != nil {
		if !isNotFound(err) {
			s.log.Warnw("local cache read failed", "op", "update_trip", "trip_id", id, "error", err)
		}
		return
	}
	if !local.PendingSync {
		if err := s.local.Delete(ctx, id); err != nil && !isNotFound(err) {
			s.log.Warnw("failed to prune local copy", "trip_id", id, "error", err)
		}
		return
	}
	if _, err := s.local.Update(ctx, id, patch, now); err != nil {
		s.log.Warnw("local write-through failed", "trip_id", id, "error", err)
		return
	}
	if replace {
		if err := s.local.ReplaceCollaborators(ctx, id, collaborators); err != nil {
			s.log.Warnw("local collaborator write-through failed", "trip_id", id, "error", err)
		}
	}
}

// ReplaceCollaborators swaps the collaborator set wherever the trip lives.
func (s *TripService) ReplaceCollaborators(ctx context.Context, tripID uuid.UUID, emails []string) error {
	collaborators, err := normalizeCollaborators(emails)
	if err != nil {
		return err
	}

	remoteFailed := false
	if s.remoteReady(ctx) {
		err := s.remote.ReplaceCollaborators(ctx, tripID, collaborators)
		switch {
		case err == nil:
			s.reconcileLocalCopy(ctx, tripID, domain.TripPatch{}, true, collaborators, s.now().UTC())
			return nil
		case isNotFound(err):
		default:
			remoteFailed = true
			s.log.Warnw("remote collaborator replace failed", "op", "replace_collaborators", "trip_id", tripID, "error", err)
		}
	} else if s.remote != nil {
		remoteFailed = true
	}

	if err := s.local.ReplaceCollaborators(ctx, tripID, collaborators); err != nil {
		if isNotFound(err) {
			if remoteFailed {
				return ErrRemoteUnavailable
			}
			return ErrTripNotFound
		}
		return fmt.Errorf("replace local collaborators: %w", err)
	}
	return nil
}

// ListCollaborators reads the membership set from whichever store holds the
// trip.
func (s *TripService) ListCollaborators(ctx context.Context, tripID uuid.UUID) ([]string, error) {
	remoteFailed := false
	if s.remoteReady(ctx) {
		emails, err := s.remote.ListCollaborators(ctx, tripID)
		switch {
		case err == nil:
			return emails, nil
		case isNotFound(err):
		default:
			remoteFailed = true
			s.log.Warnw("remote collaborator read failed", "op", "list_collaborators", "trip_id", tripID, "error", err)
		}
	} else if s.remote != nil {
		remoteFailed = true
	}

	emails, err := s.local.ListCollaborators(ctx, tripID)
	if err != nil {
		if isNotFound(err) {
			if remoteFailed {
				return nil, ErrRemoteUnavailable
			}
			return nil, ErrTripNotFound
		}
		return nil, fmt.Errorf("load local collaborators: %w", err)
	}
	return emails, nil
}

// DeleteTrip removes the trip from both stores. Remote failures are logged;
// the local copy is always removed.
func (s *TripService) DeleteTrip(ctx context.Context, id uuid.UUID) error {
	found := false
	remoteFailed := s.remote != nil
	if s.remoteReady(ctx) {
		err := s.remote.Delete(ctx, id)
		switch {
		case err == nil:
			found = true
			remoteFailed = false
		case isNotFound(err):
			remoteFailed = false
		default:
			s.log.Warnw("remote delete failed", "op", "delete_trip", "trip_id", id, "error", err)
		}
	}

	if err := s.local.Delete(ctx, id); err != nil {
		if !isNotFound(err) {
			return fmt.Errorf("delete local trip: %w", err)
		}
	} else {
		found = true
	}

	if !found {
		if remoteFailed {
			return ErrRemoteUnavailable
		}
		return ErrTripNotFound
	}
	return nil
}

// SyncPending promotes every pending local trip to the remote store under
// its existing id and retires the local copy. Trips that fail stay pending.
func (s *TripService) SyncPending(ctx context.Context) (SyncReport, error) {
	report := SyncReport{SyncedIDs: []uuid.UUID{}}
	if !s.remoteReady(ctx) {
		return report, ErrRemoteUnavailable
	}
	trips, err := s.local.ListAll(ctx)
	if err != nil {
		return report, fmt.Errorf("load local trips: %w", err)
	}

	for _, trip := range trips {
		if !trip.PendingSync {
			continue
		}
		report.Pending++
		if err := s.promote(ctx, trip); err != nil {
			report.Failed++
			s.log.Warnw("trip promotion failed", "op", "sync_pending", "trip_id", trip.ID, "error", err)
			continue
		}
		report.Synced++
		report.SyncedIDs = append(report.SyncedIDs, trip.ID)
	}
	s.log.Infow("sync pass finished", "pending", report.Pending, "synced", report.Synced, "failed", report.Failed)
	return report, nil
}

func (s *TripService) promote(ctx context.Context, trip domain.Trip) error {
	record := trip.Clone()
	record.PendingSync = false
	if _, err := s.remote.Create(ctx, &record); err != nil && !isUniqueViolation(err) {
		return err
	}
	if err := s.remote.ReplaceCollaborators(ctx, trip.ID, record.Collaborators); err != nil {
		return err
	}
	if err := s.local.Delete(ctx, trip.ID); err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// ListLocalTrips exposes the raw cache contents for operators.
func (s *TripService) ListLocalTrips(ctx context.Context) ([]domain.Trip, error) {
	return s.local.ListAll(ctx)
}

func tripFromFields(fields domain.TripFields) (*domain.Trip, error) {
	title := strings.TrimSpace(fields.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrTripValidation)
	}
	startDate, err := normalizeDate("start_date", fields.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := normalizeDate("end_date", fields.EndDate)
	if err != nil {
		return nil, err
	}
	status := domain.TripStatusPlanning
	if fields.Status != nil {
		if !fields.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrTripValidation, *fields.Status)
		}
		status = *fields.Status
	}
	return &domain.Trip{
		Title:       title,
		Description: normalizeOptional(fields.Description),
		StartDate:   startDate,
		EndDate:     endDate,
		Countries:   cleanList(fields.Countries),
		Cities:      cleanList(fields.Cities),
		Status:      status,
	}, nil
}

func normalizePatch(p *domain.TripPatch) error {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return fmt.Errorf("%w: title cannot be empty", ErrTripValidation)
		}
		p.Title = &title
	}
	if p.Description != nil {
		description := strings.TrimSpace(*p.Description)
		p.Description = &description
	}
	for _, date := range []struct {
		name  string
		value *string
	}{{"start_date", p.StartDate}, {"end_date", p.EndDate}} {
		if date.value == nil || strings.TrimSpace(*date.value) == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, strings.TrimSpace(*date.value)); err != nil {
			return fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrTripValidation, date.name)
		}
	}
	if p.StartDate != nil {
		trimmed := strings.TrimSpace(*p.StartDate)
		p.StartDate = &trimmed
	}
	if p.EndDate != nil {
		trimmed := strings.TrimSpace(*p.EndDate)
		p.EndDate = &trimmed
	}
	if p.Countries != nil {
		countries := cleanList(*p.Countries)
		p.Countries = &countries
	}
	if p.Cities != nil {
		cities := cleanList(*p.Cities)
		p.Cities = &cities
	}
	if p.Status != nil && !p.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrTripValidation, *p.Status)
	}
	return nil
}

func normalizeDate(field string, value *string) (*string, error) {
	v := normalizeOptional(value)
	if v == nil {
		return nil, nil
	}
	if _, err := time.Parse(dateLayout, *v); err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrTripValidation, field)
	}
	return v, nil
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// cleanList trims entries and drops blanks; order and repeats are kept.
func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// normalizeCollaborators validates every address before returning the
// lowercased, de-duplicated set. One bad entry rejects the batch.
func normalizeCollaborators(emails []string) ([]string, error) {
	out := make([]string, 0, len(emails))
	seen := make(map[string]struct{}, len(emails))
	for _, raw := range emails {
		email := util.NormalizeEmail(raw)
		if !util.IsEmailShape(email) {
			return nil, fmt.Errorf("%w: invalid email %q", ErrCollaboratorValidation, strings.TrimSpace(raw))
		}
		if _, ok := seen[email]; ok {
			continue
		}
		seen[email] = struct{}{}
		out = append(out, email)
	}
	return out, nil
}
