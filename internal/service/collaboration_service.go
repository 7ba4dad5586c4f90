package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/humayunejaz/travel-planning-app/internal/domain"
	"github.com/humayunejaz/travel-planning-app/internal/repository/ports"
	"github.com/humayunejaz/travel-planning-app/internal/util"
)

// InvitationSender delivers the invitation email. Implementations report
// transport failures as errors; the service turns them into a boolean.
type InvitationSender interface {
	SendInvitation(ctx context.Context, recipient, tripTitle, inviterName, inviterEmail, link string, expiresAt time.Time) error
}

type CollaborationServiceConfig struct {
	AppBaseURL       string
	RegistrationPath string
	InvitationTTL    time.Duration
	TokenBytes       int
	Logger           *zap.SugaredLogger
}

// InvitationResult is what InviteCollaborator hands back: the stored
// invitation, its deep link and whether the email went out.
type InvitationResult struct {
	Invitation *domain.Invitation `json:"invitation"`
	Link       string             `json:"link"`
	EmailSent  bool               `json:"email_sent"`
}

type CollaborationService struct {
	trips  *TripService
	remote ports.InvitationRepository
	local  ports.InvitationRepository
	probe  ports.Connectivity
	sender InvitationSender

	appBaseURL       string
	registrationPath string
	ttl              time.Duration
	tokenBytes       int
	log              *zap.SugaredLogger
	now              func() time.Time
	newID            func() uuid.UUID
}

const (
	defaultInvitationTTL    = 7 * 24 * time.Hour
	defaultInvitationBytes  = 32
	defaultRegistrationPath = "register"
)

// NewCollaborationService wires the invitation engine. remote and probe may
// be nil; sender may be nil, in which case every delivery reports false.
func NewCollaborationService(
	trips *TripService,
	remote ports.InvitationRepository,
	local ports.InvitationRepository,
	probe ports.Connectivity,
	sender InvitationSender,
	cfg CollaborationServiceConfig,
) *CollaborationService {
	ttl := cfg.InvitationTTL
	if ttl <= 0 {
		ttl = defaultInvitationTTL
	}
	tokenBytes := cfg.TokenBytes
	if tokenBytes <= 0 {
		tokenBytes = defaultInvitationBytes
	}
	registrationPath := strings.Trim(strings.TrimSpace(cfg.RegistrationPath), "/")
	if registrationPath == "" {
		registrationPath = defaultRegistrationPath
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &CollaborationService{
		trips:            trips,
		remote:           remote,
		local:            local,
		probe:            probe,
		sender:           sender,
		appBaseURL:       strings.TrimRight(strings.TrimSpace(cfg.AppBaseURL), "/"),
		registrationPath: registrationPath,
		ttl:              ttl,
		tokenBytes:       tokenBytes,
		log:              logger,
		now:              time.Now,
		newID:            uuid.New,
	}
}

func (s *CollaborationService) SetClock(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

func (s *CollaborationService) remoteReady(ctx context.Context) bool {
	if s.remote == nil {
		return false
	}
	if s.probe == nil {
		return true
	}
	return s.probe.Available(ctx)
}

// AddOrReplaceCollaborators replaces the trip's whole membership set. Any
// malformed address rejects the batch.
func (s *CollaborationService) AddOrReplaceCollaborators(ctx context.Context, tripID uuid.UUID, emails []string) error {
	return s.trips.ReplaceCollaborators(ctx, tripID, emails)
}

func (s *CollaborationService) CreateInvitation(ctx context.Context, tripID uuid.UUID, email, invitedBy string) (*domain.Invitation, error) {
	email = util.NormalizeEmail(email)
	if !util.IsEmailShape(email) {
		return nil, fmt.Errorf("%w: invalid email %q", ErrCollaboratorValidation, email)
	}
	token, err := util.GenerateToken(s.tokenBytes)
	if err != nil {
		return nil, fmt.Errorf("generate invitation token: %w", err)
	}
	now := s.now().UTC()
	invitation := &domain.Invitation{
		ID:        s.newID(),
		TripID:    tripID,
		Email:     email,
		Token:     token,
		InvitedBy: util.NormalizeEmail(invitedBy),
		Status:    domain.InvitationStatusPending,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if s.remoteReady(ctx) {
		created, err := s.remote.Create(ctx, invitation)
		if err == nil {
			return created, nil
		}
		s.log.Warnw("remote invitation insert failed, storing locally", "op", "create_invitation", "trip_id", tripID, "error", err)
	}
	created, err := s.local.Create(ctx, invitation)
	if err != nil {
		return nil, fmt.Errorf("store invitation locally: %w", err)
	}
	return created, nil
}

// InvitationLink builds the registration deep link carrying the token and
// the trip id.
func (s *CollaborationService) InvitationLink(invitation *domain.Invitation) string {
	u, err := url.Parse(s.appBaseURL + "/" + s.registrationPath)
	if err != nil {
		u = &url.URL{Path: "/" + s.registrationPath}
	}
	q := url.Values{}
	q.Set("invitation", invitation.Token)
	q.Set("trip", invitation.TripID.String())
	u.RawQuery = q.Encode()
	return u.String()
}

// SendInvitationEmail mails the pending invitation for (trip, recipient),
// creating one first when none exists. It reports whether the transport
// accepted the message and never retries.
func (s *CollaborationService) SendInvitationEmail(ctx context.Context, tripID uuid.UUID, tripTitle, recipient, inviterName, inviterEmail string) bool {
	recipient = util.NormalizeEmail(recipient)
	invitation, err := s.findPending(ctx, tripID, recipient)
	if err != nil {
		s.log.Warnw("invitation lookup failed", "op", "send_invitation", "trip_id", tripID, "error", err)
		return false
	}
	if invitation == nil {
		invitation, err = s.CreateInvitation(ctx, tripID, recipient, inviterEmail)
		if err != nil {
			s.log.Warnw("invitation create failed", "op", "send_invitation", "trip_id", tripID, "error", err)
			return false
		}
	}
	return s.deliver(ctx, invitation, tripTitle, inviterName, inviterEmail, s.InvitationLink(invitation))
}

func (s *CollaborationService) deliver(ctx context.Context, invitation *domain.Invitation, tripTitle, inviterName, inviterEmail, link string) bool {
	if s.sender == nil {
		s.log.Warnw("no invitation sender configured", "trip_id", invitation.TripID)
		return false
	}
	if err := s.sender.SendInvitation(ctx, invitation.Email, tripTitle, inviterName, inviterEmail, link, invitation.ExpiresAt); err != nil {
		s.log.Warnw("invitation email failed", "op", "send_invitation", "trip_id", invitation.TripID, "error", err)
		return false
	}
	return true
}

// InviteCollaborator adds recipient to the trip's collaborators when missing,
// then creates and mails a fresh invitation.
func (s *CollaborationService) InviteCollaborator(ctx context.Context, trip *domain.Trip, recipient string, inviter *domain.User) (*InvitationResult, error) {
	if trip == nil {
		return nil, ErrTripNotFound
	}
	recipient = util.NormalizeEmail(recipient)
	if !util.IsEmailShape(recipient) {
		return nil, fmt.Errorf("%w: invalid email %q", ErrCollaboratorValidation, recipient)
	}
	collaborators, err := s.trips.ListCollaborators(ctx, trip.ID)
	if err != nil {
		return nil, err
	}
	if !containsEmail(collaborators, recipient) {
		next := append(append([]string{}, collaborators...), recipient)
		if err := s.trips.ReplaceCollaborators(ctx, trip.ID, next); err != nil {
			return nil, err
		}
	}

	inviterName, inviterEmail := "", ""
	if inviter != nil {
		inviterName, inviterEmail = inviter.DisplayName(), inviter.Email
	}
	invitation, err := s.CreateInvitation(ctx, trip.ID, recipient, inviterEmail)
	if err != nil {
		return nil, err
	}
	link := s.InvitationLink(invitation)
	return &InvitationResult{
		Invitation: invitation,
		Link:       link,
		EmailSent:  s.deliver(ctx, invitation, trip.Title, inviterName, inviterEmail, link),
	}, nil
}

// GetInvitationByToken returns the invitation only while it is pending and
// unexpired; otherwise nil, nil.
func (s *CollaborationService) GetInvitationByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	now := s.now().UTC()
	if s.remoteReady(ctx) {
		invitation, err := s.remote.FindRedeemableByToken(ctx, token, now)
		if err == nil {
			return invitation, nil
		}
		if !isNotFound(err) {
			s.log.Warnw("remote invitation lookup failed", "op", "get_invitation", "error", err)
		}
	}
	invitation, err := s.local.FindRedeemableByToken(ctx, token, now)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("load invitation: %w", err)
	}
	return invitation, nil
}

// AcceptInvitation flips a pending invitation to accepted. A token with no
// pending match yields false without an error; it does not grant access.
func (s *CollaborationService) AcceptInvitation(ctx context.Context, token string) (bool, error) {
	return s.respond(ctx, token, domain.InvitationStatusAccepted)
}

func (s *CollaborationService) DeclineInvitation(ctx context.Context, token string) (bool, error) {
	return s.respond(ctx, token, domain.InvitationStatusDeclined)
}

func (s *CollaborationService) respond(ctx context.Context, token string, status domain.InvitationStatus) (bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return false, nil
	}
	now := s.now().UTC()
	if s.remoteReady(ctx) {
		ok, err := s.remote.Respond(ctx, token, status, now)
		if err == nil && ok {
			return true, nil
		}
		if err != nil {
			s.log.Warnw("remote invitation update failed", "op", "respond_invitation", "status", status, "error", err)
		}
	}
	ok, err := s.local.Respond(ctx, token, status, now)
	if err != nil {
		return false, fmt.Errorf("update invitation: %w", err)
	}
	return ok, nil
}

// ListTripInvitations returns every invitation for the trip, remote ones
// first, whatever their status.
func (s *CollaborationService) ListTripInvitations(ctx context.Context, tripID uuid.UUID) ([]domain.Invitation, error) {
	out := make([]domain.Invitation, 0)
	seen := make(map[uuid.UUID]struct{})
	if s.remoteReady(ctx) {
		remote, err := s.remote.ListByTrip(ctx, tripID)
		if err != nil {
			s.log.Warnw("remote invitation list failed", "op", "list_invitations", "trip_id", tripID, "error", err)
		}
		for _, inv := range remote {
			seen[inv.ID] = struct{}{}
			out = append(out, inv)
		}
	}
	local, err := s.local.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("load invitations: %w", err)
	}
	for _, inv := range local {
		if _, ok := seen[inv.ID]; ok {
			continue
		}
		out = append(out, inv)
	}
	return out, nil
}

func (s *CollaborationService) findPending(ctx context.Context, tripID uuid.UUID, email string) (*domain.Invitation, error) {
	now := s.now().UTC()
	if s.remoteReady(ctx) {
		invitation, err := s.remote.FindRedeemableByTripAndEmail(ctx, tripID, email, now)
		if err == nil {
			return invitation, nil
		}
		if !isNotFound(err) {
			s.log.Warnw("remote invitation lookup failed", "op", "find_pending", "trip_id", tripID, "error", err)
		}
	}
	invitation, err := s.local.FindRedeemableByTripAndEmail(ctx, tripID, email, now)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return invitation, nil
}

func containsEmail(emails []string, email string) bool {
	for _, e := range emails {
		if util.NormalizeEmail(e) == email {
			return true
		}
	}
	return false
}
