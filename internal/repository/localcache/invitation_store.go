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

// InvitationStore holds invitations created while the remote store was
// unreachable.
type InvitationStore struct {
	journal ports.Journal
	mu      sync.Mutex
}

func NewInvitationStore(journal ports.Journal) *InvitationStore {
	return &InvitationStore{journal: journal}
}

func (s *InvitationStore) Create(ctx context.Context, invitation *domain.Invitation) (*domain.Invitation, error) {
	if invitation.ID == uuid.Nil {
		return nil, fmt.Errorf("local cache: invitation id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := loadCollection[domain.Invitation](ctx, s.journal, InvitationsCollection)
	if err != nil {
		return nil, err
	}
	for _, existing := range items {
		if existing.Token == invitation.Token {
			return nil, fmt.Errorf("local cache: invitation token collision")
		}
	}
	record := *invitation
	items = append(items, record)
	if err := storeCollection(ctx, s.journal, InvitationsCollection, items); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *InvitationStore) FindRedeemableByToken(ctx context.Context, token string, now time.Time) (*domain.Invitation, error) {
	return s.find(ctx, func(inv domain.Invitation) bool {
		return inv.Token == token && inv.IsRedeemable(now)
	})
}

func (s *InvitationStore) FindRedeemableByTripAndEmail(ctx context.Context, tripID uuid.UUID, email string, now time.Time) (*domain.Invitation, error) {
	return s.find(ctx, func(inv domain.Invitation) bool {
		return inv.TripID == tripID && inv.Email == email && inv.IsRedeemable(now)
	})
}

func (s *InvitationStore) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := loadCollection[domain.Invitation](ctx, s.journal, InvitationsCollection)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Invitation, 0)
	for _, inv := range items {
		if inv.TripID == tripID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (s *InvitationStore) Respond(ctx context.Context, token string, status domain.InvitationStatus, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := loadCollection[domain.Invitation](ctx, s.journal, InvitationsCollection)
	if err != nil {
		return false, err
	}
	for i := range items {
		if items[i].Token != token || !items[i].IsRedeemable(now) {
			continue
		}
		respondedAt := now
		items[i].Status = status
		items[i].RespondedAt = &respondedAt
		if err := storeCollection(ctx, s.journal, InvitationsCollection, items); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func (s *InvitationStore) find(ctx context.Context, match func(domain.Invitation) bool) (*domain.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := loadCollection[domain.Invitation](ctx, s.journal, InvitationsCollection)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if match(items[i]) {
			out := items[i]
			return &out, nil
		}
	}
	return nil, ports.ErrRecordNotFound
}

var _ ports.InvitationRepository = (*InvitationStore)(nil)
