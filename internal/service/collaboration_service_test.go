package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/humayunejaz/travel-planning-app/internal/domain"
	"github.com/humayunejaz/travel-planning-app/internal/repository/localcache"
)

type collaborationFixture struct {
	svc         *CollaborationService
	trips       *TripService
	remoteTrips *fakeTripRepo
	localTrips  *fakeTripRepo
	remoteInv   *fakeInvitationRepo
	localInv    *fakeInvitationRepo
	probe       *fakeProbe
	sender      *fakeSender
	clock       *testClock
}

func newCollaborationFixture(t *testing.T) *collaborationFixture {
	t.Helper()
	f := &collaborationFixture{
		remoteTrips: &fakeTripRepo{},
		localTrips:  &fakeTripRepo{},
		remoteInv:   &fakeInvitationRepo{},
		localInv:    &fakeInvitationRepo{},
		probe:       &fakeProbe{up: true},
		sender:      &fakeSender{},
	}
	f.trips, f.clock = newTripServiceForTests(f.remoteTrips, f.localTrips, f.probe)
	f.svc = NewCollaborationService(f.trips, f.remoteInv, f.localInv, f.probe, f.sender, CollaborationServiceConfig{
		AppBaseURL:       "https://trips.example.com/",
		RegistrationPath: "/register",
	})
	f.svc.SetClock(f.clock.Now)
	return f
}

func TestCreateInvitationThenLookup(t *testing.T) {
	f := newCollaborationFixture(t)
	ctx := context.Background()
	tripID := uuid.New()

	invitation, err := f.svc.CreateInvitation(ctx, tripID, "B@Y.com", "u1@x.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if invitation.Email != "b@y.com" || invitation.InvitedBy != "u1@x.com" {
		t.Fatalf("unexpected invitation: %+v", invitation)
	}
	if invitation.Status != domain.InvitationStatusPending {
		t.Fatalf("expected pending, got %q", invitation.Status)
	}
	if got := invitation.ExpiresAt.Sub(invitation.CreatedAt); got != 7*24*time.Hour {
		t.Fatalf("expected 7 day expiry, got %v", got)
	}
	if len(invitation.Token) < 40 {
		t.Fatalf("expected a long random token, got %q", invitation.Token)
	}

	found, err := f.svc.GetInvitationByToken(ctx, invitation.Token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found == nil || found.Status != domain.InvitationStatusPending {
		t.Fatalf("expected pending invitation, got %+v", found)
	}

	f.remoteInv.expire(f.clock.now)
	found, err = f.svc.GetInvitationByToken(ctx, invitation.Token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != nil {
		t.Fatalf("expired invitation must resolve to nil, got %+v", found)
	}
}

func TestInvitationTokensAreUnique(t *testing.T) {
	f := newCollaborationFixture(t)
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		inv, err := f.svc.CreateInvitation(context.Background(), uuid.New(), "b@y.com", "u1@x.com")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, dup := seen[inv.Token]; dup {
			t.Fatalf("duplicate token %q", inv.Token)
		}
		seen[inv.Token] = struct{}{}
	}
}

func TestCreateInvitationFallsBackToLocal(t *testing.T) {
	f := newCollaborationFixture(t)
	f.remoteInv.err = errTransport

	invitation, err := f.svc.CreateInvitation(context.Background(), uuid.New(), "b@y.com", "u1@x.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.localInv.invitations) != 1 || f.localInv.invitations[0].Token != invitation.Token {
		t.Fatal("expected invitation stored locally")
	}

	found, err := f.svc.GetInvitationByToken(context.Background(), invitation.Token)
	if err != nil || found == nil {
		t.Fatalf("expected local lookup to succeed, got %+v, %v", found, err)
	}
}

func TestCreateInvitationRejectsBadEmail(t *testing.T) {
	f := newCollaborationFixture(t)
	_, err := f.svc.CreateInvitation(context.Background(), uuid.New(), "b@localhost", "u1@x.com")
	if !errors.Is(err, ErrCollaboratorValidation) {
		t.Fatalf("expected ErrCollaboratorValidation, got %v", err)
	}
	if f.remoteInv.createCalls != 0 {
		t.Fatal("invalid invitation must not be stored")
	}
}

func TestAcceptInvitation(t *testing.T) {
	f := newCollaborationFixture(t)
	ctx := context.Background()
	invitation, err := f.svc.CreateInvitation(ctx, uuid.New(), "b@y.com", "u1@x.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	ok, err := f.svc.AcceptInvitation(ctx, invitation.Token)
	if err != nil || !ok {
		t.Fatalf("expected first accept to succeed, got %v, %v", ok, err)
	}
	if f.remoteInv.invitations[0].Status != domain.InvitationStatusAccepted {
		t.Fatalf("expected accepted status, got %q", f.remoteInv.invitations[0].Status)
	}
	if f.remoteInv.invitations[0].RespondedAt == nil {
		t.Fatal("expected responded_at to be set")
	}

	ok, err = f.svc.AcceptInvitation(ctx, invitation.Token)
	if err != nil {
		t.Fatalf("second accept should be a soft failure, got %v", err)
	}
	if ok {
		t.Fatal("second accept must report false")
	}

	found, _ := f.svc.GetInvitationByToken(ctx, invitation.Token)
	if found != nil {
		t.Fatal("accepted invitation must no longer resolve")
	}

	if ok, err := f.svc.AcceptInvitation(ctx, "unknown"); ok || err != nil {
		t.Fatalf("unknown token should be false, nil; got %v, %v", ok, err)
	}
}

func TestAcceptExpiredInvitation(t *testing.T) {
	f := newCollaborationFixture(t)
	invitation, err := f.svc.CreateInvitation(context.Background(), uuid.New(), "b@y.com", "u1@x.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	f.clock.Advance(8 * 24 * time.Hour)

	ok, err := f.svc.AcceptInvitation(context.Background(), invitation.Token)
	if err != nil || ok {
		t.Fatalf("expired invitation must not be accepted, got %v, %v", ok, err)
	}
}

func TestAcceptDoesNotGrantAccess(t *testing.T) {
	f := newCollaborationFixture(t)
	ctx := context.Background()
	trip := domain.Trip{ID: uuid.New(), OwnerID: uuid.New(), Title: "Private"}
	f.remoteTrips.seed(trip)

	invitation, err := f.svc.CreateInvitation(ctx, trip.ID, "b@y.com", "owner@x.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ok, _ := f.svc.AcceptInvitation(ctx, invitation.Token); !ok {
		t.Fatal("expected accept to succeed")
	}
	if _, err := f.trips.GetTripForIdentity(ctx, trip.ID, domain.Identity{UserID: uuid.New(), Email: "b@y.com"}); !errors.Is(err, ErrTripForbidden) {
		t.Fatalf("acceptance alone must not grant access, got %v", err)
	}
}

func TestDeclineInvitation(t *testing.T) {
	f := newCollaborationFixture(t)
	invitation, err := f.svc.CreateInvitation(context.Background(), uuid.New(), "b@y.com", "u1@x.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	ok, err := f.svc.DeclineInvitation(context.Background(), invitation.Token)
	if err != nil || !ok {
		t.Fatalf("expected decline to succeed, got %v, %v", ok, err)
	}
	if f.remoteInv.invitations[0].Status != domain.InvitationStatusDeclined {
		t.Fatalf("expected declined status, got %q", f.remoteInv.invitations[0].Status)
	}
}

func TestAddOrReplaceCollaborators(t *testing.T) {
	f := newCollaborationFixture(t)
	ctx := context.Background()
	trip := domain.Trip{ID: uuid.New(), OwnerID: uuid.New(), Title: "Group", Collaborators: []string{"old@x.com", "keep@x.com"}}
	f.remoteTrips.seed(trip)

	if err := f.svc.AddOrReplaceCollaborators(ctx, trip.ID, []string{"Keep@X.com", "new@y.org"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored, _ := f.remoteTrips.get(trip.ID)
	if strings.Join(stored.Collaborators, ",") != "keep@x.com,new@y.org" {
		t.Fatalf("expected full replacement, got %v", stored.Collaborators)
	}

	err := f.svc.AddOrReplaceCollaborators(ctx, trip.ID, []string{"fine@x.com", "broken"})
	if !errors.Is(err, ErrCollaboratorValidation) {
		t.Fatalf("expected ErrCollaboratorValidation, got %v", err)
	}
	stored, _ = f.remoteTrips.get(trip.ID)
	if strings.Join(stored.Collaborators, ",") != "keep@x.com,new@y.org" {
		t.Fatalf("rejected batch must leave the set untouched, got %v", stored.Collaborators)
	}

	if err := f.svc.AddOrReplaceCollaborators(ctx, uuid.New(), []string{"a@x.com"}); !errors.Is(err, ErrTripNotFound) {
		t.Fatalf("expected ErrTripNotFound, got %v", err)
	}
}

func TestAddOrReplaceCollaboratorsLocalTrip(t *testing.T) {
	f := newCollaborationFixture(t)
	trip := domain.Trip{ID: uuid.New(), OwnerID: uuid.New(), Title: "Offline", PendingSync: true}
	f.localTrips.seed(trip)

	if err := f.svc.AddOrReplaceCollaborators(context.Background(), trip.ID, []string{"a@x.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored, _ := f.localTrips.get(trip.ID)
	if len(stored.Collaborators) != 1 || stored.Collaborators[0] != "a@x.com" {
		t.Fatalf("expected local collaborators replaced, got %v", stored.Collaborators)
	}
}

func TestSendInvitationEmail(t *testing.T) {
	f := newCollaborationFixture(t)
	ctx := context.Background()
	tripID := uuid.New()

	existing, err := f.svc.CreateInvitation(ctx, tripID, "b@y.com", "u1@x.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if !f.svc.SendInvitationEmail(ctx, tripID, "Paris Trip", "B@y.com", "Uma", "u1@x.com") {
		t.Fatal("expected delivery to be reported")
	}
	if len(f.sender.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(f.sender.sent))
	}
	sent := f.sender.sent[0]
	if sent.recipient != "b@y.com" || sent.tripTitle != "Paris Trip" || sent.inviterName != "Uma" {
		t.Fatalf("unexpected message: %+v", sent)
	}
	if f.remoteInv.createCalls != 1 {
		t.Fatal("existing pending invitation should be reused")
	}

	link, err := url.Parse(sent.link)
	if err != nil {
		t.Fatalf("bad link %q: %v", sent.link, err)
	}
	if link.Scheme != "https" || link.Host != "trips.example.com" || link.Path != "/register" {
		t.Fatalf("unexpected link %q", sent.link)
	}
	if link.Query().Get("invitation") != existing.Token || link.Query().Get("trip") != tripID.String() {
		t.Fatalf("link must carry token and trip id: %q", sent.link)
	}
}

func TestSendInvitationEmailCreatesInvitation(t *testing.T) {
	f := newCollaborationFixture(t)
	if !f.svc.SendInvitationEmail(context.Background(), uuid.New(), "Trip", "c@z.com", "Uma", "u1@x.com") {
		t.Fatal("expected delivery to be reported")
	}
	if len(f.remoteInv.invitations) != 1 || f.remoteInv.invitations[0].Email != "c@z.com" {
		t.Fatalf("expected a new pending invitation, got %+v", f.remoteInv.invitations)
	}
}

func TestSendInvitationEmailTransportFailure(t *testing.T) {
	f := newCollaborationFixture(t)
	f.sender.err = errors.New("smtp: 421 service not available")

	if f.svc.SendInvitationEmail(context.Background(), uuid.New(), "Trip", "c@z.com", "Uma", "u1@x.com") {
		t.Fatal("transport failure must be reported as false")
	}
}

func TestSendInvitationEmailWithoutSender(t *testing.T) {
	f := newCollaborationFixture(t)
	svc := NewCollaborationService(f.trips, f.remoteInv, f.localInv, f.probe, nil, CollaborationServiceConfig{})
	if svc.SendInvitationEmail(context.Background(), uuid.New(), "Trip", "c@z.com", "Uma", "u1@x.com") {
		t.Fatal("missing sender must report false")
	}
}

func TestAddOrReplaceCollaboratorsIsIdempotent(t *testing.T) {
	f := newCollaborationFixture(t)
	ctx := context.Background()
	trip := domain.Trip{ID: uuid.New(), OwnerID: uuid.New(), Title: "Group"}
	f.remoteTrips.seed(trip)
	emails := []string{"a@x.com", "b@y.org", "c@z.net"}

	for i := 0; i < 2; i++ {
		if err := f.svc.AddOrReplaceCollaborators(ctx, trip.ID, emails); err != nil {
			t.Fatalf("replace %d: %v", i, err)
		}
		got, err := f.trips.ListCollaborators(ctx, trip.ID)
		if err != nil {
			t.Fatalf("list %d: %v", i, err)
		}
		if strings.Join(got, ",") != strings.Join(emails, ",") {
			t.Fatalf("replace %d: expected %v, got %v", i, emails, got)
		}
	}

	if err := f.svc.AddOrReplaceCollaborators(ctx, trip.ID, []string{"a@x.com", "A@x.com", " a@X.com "}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := f.trips.ListCollaborators(ctx, trip.ID)
	if len(got) != 1 || got[0] != "a@x.com" {
		t.Fatalf("expected duplicates collapsed to one row, got %v", got)
	}
}

func TestAddOrReplaceCollaboratorsIsIdempotentOnLocalCache(t *testing.T) {
	ctx := context.Background()
	journal, err := localcache.OpenFileJournal(t.TempDir())
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	store := localcache.NewTripStore(journal)
	trips := NewTripService(nil, store, nil, TripServiceConfig{})
	svc := NewCollaborationService(trips, nil, localcache.NewInvitationStore(journal), nil, nil, CollaborationServiceConfig{})

	trip, err := trips.CreateTrip(ctx, domain.TripFields{Title: "Offline"}, nil, uuid.New())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	emails := []string{"a@x.com", "b@y.org"}
	for i := 0; i < 2; i++ {
		if err := svc.AddOrReplaceCollaborators(ctx, trip.ID, emails); err != nil {
			t.Fatalf("replace %d: %v", i, err)
		}
	}
	got, err := store.ListCollaborators(ctx, trip.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != len(emails) {
		t.Fatalf("expected %d collaborators, got %v", len(emails), got)
	}

	if err := svc.AddOrReplaceCollaborators(ctx, trip.ID, []string{"a@x.com", "A@x.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ = store.ListCollaborators(ctx, trip.ID)
	if len(got) != 1 || got[0] != "a@x.com" {
		t.Fatalf("expected duplicates collapsed to one row, got %v", got)
	}
}

func TestInviteCollaborator(t *testing.T) {
	f := newCollaborationFixture(t)
	ctx := context.Background()
	trip := domain.Trip{ID: uuid.New(), OwnerID: uuid.New(), Title: "Alps", Collaborators: []string{"a@x.com"}}
	f.remoteTrips.seed(trip)
	name := "Owner Person"
	inviter := &domain.User{ID: trip.OwnerID, Email: "owner@x.com", FullName: &name}

	result, err := f.svc.InviteCollaborator(ctx, &trip, "New@Y.com", inviter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.EmailSent || result.Invitation == nil || result.Link == "" {
		t.Fatalf("unexpected result: %+v", result)
	}
	stored, _ := f.remoteTrips.get(trip.ID)
	if strings.Join(stored.Collaborators, ",") != "a@x.com,new@y.com" {
		t.Fatalf("expected recipient appended to collaborators, got %v", stored.Collaborators)
	}
	if f.sender.sent[0].inviterName != "Owner Person" || f.sender.sent[0].inviterEmail != "owner@x.com" {
		t.Fatalf("unexpected inviter in email: %+v", f.sender.sent[0])
	}

	f.sender.err = errors.New("smtp down")
	result, err = f.svc.InviteCollaborator(ctx, &trip, "late@y.com", inviter)
	if err != nil {
		t.Fatalf("delivery failure must not fail the invite, got %v", err)
	}
	if result.EmailSent {
		t.Fatal("expected EmailSent=false")
	}
}

func TestListTripInvitations(t *testing.T) {
	f := newCollaborationFixture(t)
	ctx := context.Background()
	tripID := uuid.New()

	if _, err := f.svc.CreateInvitation(ctx, tripID, "a@x.com", "o@x.com"); err != nil {
		t.Fatalf("create: %v", err)
	}
	f.probe.up = false
	if _, err := f.svc.CreateInvitation(ctx, tripID, "b@x.com", "o@x.com"); err != nil {
		t.Fatalf("create: %v", err)
	}
	f.probe.up = true

	invitations, err := f.svc.ListTripInvitations(ctx, tripID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(invitations) != 2 || invitations[0].Email != "a@x.com" || invitations[1].Email != "b@x.com" {
		t.Fatalf("expected remote then local invitations, got %+v", invitations)
	}
}
