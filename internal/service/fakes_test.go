package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/humayunejaz/travel-planning-app/internal/domain"
	"github.com/humayunejaz/travel-planning-app/internal/repository/ports"
)

var errTransport = errors.New("dial tcp: connection refused")

// fakeTripRepo is an in-memory trip backend. err fails every call; the
// replace counters fail that many ReplaceCollaborators calls first.
type fakeTripRepo struct {
	mu    sync.Mutex
	trips []domain.Trip

	err          error
	createErr    error
	replaceFails int
	replaceErr   error

	createCalls  int
	replaceCalls int
	deleteCalls  []uuid.UUID
}

func (f *fakeTripRepo) Create(ctx context.Context, trip *domain.Trip) (*domain.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.err != nil {
		return nil, f.err
	}
	if f.createErr != nil {
		return nil, f.createErr
	}
	record := trip.Clone()
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
		record.UpdatedAt = record.CreatedAt
	}
	for _, existing := range f.trips {
		if existing.ID == record.ID {
			return nil, errDuplicateKey
		}
	}
	f.trips = append(f.trips, record)
	out := record.Clone()
	return &out, nil
}

func (f *fakeTripRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if idx := f.index(id); idx >= 0 {
		out := f.trips[idx].Clone()
		return &out, nil
	}
	return nil, ports.ErrRecordNotFound
}

func (f *fakeTripRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Trip, error) {
	return f.filter(func(t domain.Trip) bool { return t.OwnerID == ownerID })
}

func (f *fakeTripRepo) ListByCollaborator(ctx context.Context, email string) ([]domain.Trip, error) {
	return f.filter(func(t domain.Trip) bool { return t.HasCollaborator(email) })
}

func (f *fakeTripRepo) ListAll(ctx context.Context) ([]domain.Trip, error) {
	return f.filter(func(domain.Trip) bool { return true })
}

func (f *fakeTripRepo) Update(ctx context.Context, id uuid.UUID, patch domain.TripPatch, updatedAt time.Time) (*domain.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	idx := f.index(id)
	if idx < 0 {
		return nil, ports.ErrRecordNotFound
	}
	f.trips[idx].Apply(patch, updatedAt)
	out := f.trips[idx].Clone()
	return &out, nil
}

func (f *fakeTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, id)
	if f.err != nil {
		return f.err
	}
	idx := f.index(id)
	if idx < 0 {
		return ports.ErrRecordNotFound
	}
	f.trips = append(f.trips[:idx], f.trips[idx+1:]...)
	return nil
}

func (f *fakeTripRepo) ListCollaborators(ctx context.Context, tripID uuid.UUID) ([]string, error) {
	trip, err := f.FindByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return trip.Collaborators, nil
}

func (f *fakeTripRepo) ReplaceCollaborators(ctx context.Context, tripID uuid.UUID, emails []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replaceCalls++
	if f.err != nil {
		return f.err
	}
	if f.replaceFails > 0 {
		f.replaceFails--
		return f.replaceErr
	}
	idx := f.index(tripID)
	if idx < 0 {
		return ports.ErrRecordNotFound
	}
	f.trips[idx].Collaborators = append([]string{}, emails...)
	return nil
}

func (f *fakeTripRepo) filter(keep func(domain.Trip) bool) ([]domain.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Trip, 0)
	for _, t := range f.trips {
		if keep(t) {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func (f *fakeTripRepo) index(id uuid.UUID) int {
	for i := range f.trips {
		if f.trips[i].ID == id {
			return i
		}
	}
	return -1
}

func (f *fakeTripRepo) get(id uuid.UUID) (domain.Trip, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if idx := f.index(id); idx >= 0 {
		return f.trips[idx].Clone(), true
	}
	return domain.Trip{}, false
}

func (f *fakeTripRepo) seed(trips ...domain.Trip) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range trips {
		f.trips = append(f.trips, t.Clone())
	}
}

var errDuplicateKey error = &pgconn.PgError{Code: "23505"}

type fakeInvitationRepo struct {
	mu          sync.Mutex
	invitations []domain.Invitation
	err         error
	createCalls int
}

func (f *fakeInvitationRepo) Create(ctx context.Context, invitation *domain.Invitation) (*domain.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.err != nil {
		return nil, f.err
	}
	f.invitations = append(f.invitations, *invitation)
	out := *invitation
	return &out, nil
}

func (f *fakeInvitationRepo) FindRedeemableByToken(ctx context.Context, token string, now time.Time) (*domain.Invitation, error) {
	return f.find(func(inv domain.Invitation) bool { return inv.Token == token && inv.IsRedeemable(now) })
}

func (f *fakeInvitationRepo) FindRedeemableByTripAndEmail(ctx context.Context, tripID uuid.UUID, email string, now time.Time) (*domain.Invitation, error) {
	return f.find(func(inv domain.Invitation) bool {
		return inv.TripID == tripID && inv.Email == email && inv.IsRedeemable(now)
	})
}

func (f *fakeInvitationRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Invitation, 0)
	for _, inv := range f.invitations {
		if inv.TripID == tripID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (f *fakeInvitationRepo) Respond(ctx context.Context, token string, status domain.InvitationStatus, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	for i := range f.invitations {
		if f.invitations[i].Token == token && f.invitations[i].IsRedeemable(now) {
			at := now
			f.invitations[i].Status = status
			f.invitations[i].RespondedAt = &at
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeInvitationRepo) find(match func(domain.Invitation) bool) (*domain.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, inv := range f.invitations {
		if match(inv) {
			out := inv
			return &out, nil
		}
	}
	return nil, ports.ErrRecordNotFound
}

// expire moves every invitation's expiry to before now.
func (f *fakeInvitationRepo) expire(now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.invitations {
		f.invitations[i].ExpiresAt = now.Add(-24 * time.Hour)
	}
}

type fakeProbe struct {
	up bool
}

func (p *fakeProbe) Available(ctx context.Context) bool {
	return p.up
}

type sentInvitation struct {
	recipient    string
	tripTitle    string
	inviterName  string
	inviterEmail string
	link         string
	expiresAt    time.Time
}

type fakeSender struct {
	sent []sentInvitation
	err  error
}

func (f *fakeSender) SendInvitation(ctx context.Context, recipient, tripTitle, inviterName, inviterEmail, link string, expiresAt time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentInvitation{
		recipient:    recipient,
		tripTitle:    tripTitle,
		inviterName:  inviterName,
		inviterEmail: inviterEmail,
		link:         link,
		expiresAt:    expiresAt,
	})
	return nil
}

var (
	_ ports.TripRepository       = (*fakeTripRepo)(nil)
	_ ports.LocalTripRepository  = (*fakeTripRepo)(nil)
	_ ports.InvitationRepository = (*fakeInvitationRepo)(nil)
)
