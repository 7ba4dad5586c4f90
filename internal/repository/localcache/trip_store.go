package localcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/humayunejaz/travel-planning-app/internal/domain"
	"github.com/humayunejaz/travel-planning-app/internal/repository/ports"
)

// TripStore is the local cache of denormalized trip records. Every operation
// loads the whole trips collection and writes it back; the mutex serializes
// writers inside this process only.
type TripStore struct {
	journal ports.Journal
	mu      sync.Mutex
}

func NewTripStore(journal ports.Journal) *TripStore {
	return &TripStore{journal: journal}
}

func (s *TripStore) Create(ctx context.Context, trip *domain.Trip) (*domain.Trip, error) {
	if trip.ID == uuid.Nil {
		return nil, fmt.Errorf("local cache: trip id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	trips, err := loadCollection[domain.Trip](ctx, s.journal, TripsCollection)
	if err != nil {
		return nil, err
	}
	if indexOfTrip(trips, trip.ID) >= 0 {
		return nil, fmt.Errorf("local cache: trip %s already exists", trip.ID)
	}
	record := trip.Clone()
	trips = append(trips, record)
	if err := storeCollection(ctx, s.journal, TripsCollection, trips); err != nil {
		return nil, err
	}
	out := record.Clone()
	return &out, nil
}

func (s *TripStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.Trip, error) {
	trips, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	idx := indexOfTrip(trips, id)
	if idx < 0 {
		return nil, ports.ErrRecordNotFound
	}
	out := trips[idx].Clone()
	return &out, nil
}

func (s *TripStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Trip, error) {
	return s.filter(ctx, func(t domain.Trip) bool { return t.OwnerID == ownerID })
}

func (s *TripStore) ListByCollaborator(ctx context.Context, email string) ([]domain.Trip, error) {
	return s.filter(ctx, func(t domain.Trip) bool { return t.HasCollaborator(email) })
}

func (s *TripStore) ListAll(ctx context.Context) ([]domain.Trip, error) {
	return s.filter(ctx, func(domain.Trip) bool { return true })
}

func (s *TripStore) Update(ctx context.Context, id uuid.UUID, patch domain.TripPatch, updatedAt time.Time) (*domain.Trip, error) {
	return s.mutate(ctx, id, func(t *domain.Trip) {
		t.Apply(patch, updatedAt)
	})
}

func (s *TripStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	trips, err := loadCollection[domain.Trip](ctx, s.journal, TripsCollection)
	if err != nil {
		return err
	}
	idx := indexOfTrip(trips, id)
	if idx < 0 {
		return ports.ErrRecordNotFound
	}
	trips = append(trips[:idx], trips[idx+1:]...)
	return storeCollection(ctx, s.journal, TripsCollection, trips)
}

func (s *TripStore) ListCollaborators(ctx context.Context, tripID uuid.UUID) ([]string, error) {
	trip, err := s.FindByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return trip.Collaborators, nil
}

func (s *TripStore) ReplaceCollaborators(ctx context.Context, tripID uuid.UUID, emails []string) error {
	_, err := s.mutate(ctx, tripID, func(t *domain.Trip) {
		t.Collaborators = append([]string{}, emails...)
	})
	return err
}

func (s *TripStore) load(ctx context.Context) ([]domain.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return loadCollection[domain.Trip](ctx, s.journal, TripsCollection)
}

func (s *TripStore) filter(ctx context.Context, keep func(domain.Trip) bool) ([]domain.Trip, error) {
	trips, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Trip, 0, len(trips))
	for _, t := range trips {
		if keep(t) {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func (s *TripStore) mutate(ctx context.Context, id uuid.UUID, fn func(*domain.Trip)) (*domain.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trips, err := loadCollection[domain.Trip](ctx, s.journal, TripsCollection)
	if err != nil {
		return nil, err
	}
	idx := indexOfTrip(trips, id)
	if idx < 0 {
		return nil, ports.ErrRecordNotFound
	}
	fn(&trips[idx])
	if err := storeCollection(ctx, s.journal, TripsCollection, trips); err != nil {
		return nil, err
	}
	out := trips[idx].Clone()
	return &out, nil
}

func indexOfTrip(trips []domain.Trip, id uuid.UUID) int {
	for i := range trips {
		if trips[i].ID == id {
			return i
		}
	}
	return -1
}

var _ ports.LocalTripRepository = (*TripStore)(nil)
