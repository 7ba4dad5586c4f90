package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/humayunejaz/travel-planning-app/internal/config"
	"github.com/humayunejaz/travel-planning-app/internal/domain"
	"github.com/humayunejaz/travel-planning-app/internal/repository/localcache"
	"github.com/humayunejaz/travel-planning-app/internal/repository/ports"
	"github.com/humayunejaz/travel-planning-app/internal/repository/postgres"
	"github.com/humayunejaz/travel-planning-app/internal/service"
	"github.com/humayunejaz/travel-planning-app/internal/transport/mail"
	"github.com/humayunejaz/travel-planning-app/internal/util"
)

// ErrNoDatabase is returned by operations that need the remote store when
// DATABASE_URL is not set.
var ErrNoDatabase = errors.New("DATABASE_URL is not configured")

// App holds the wired services. Auth is nil in local-only mode because
// accounts and sessions live in the remote database. Without JWT_SECRET it
// can still administer accounts but must not issue sessions; the API refuses
// to start in that state.
type App struct {
	Trips         *service.TripService
	Collaboration *service.CollaborationService
	Auth          *service.AuthService

	db      *sqlx.DB
	journal ports.Journal
}

// New opens the local cache and, when configured, the remote database, then
// builds the services on top of them.
func New(cfg config.Config, log *zap.SugaredLogger) (*App, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	journal, err := localcache.Open(cfg.LocalCacheDriver, cfg.LocalCachePath)
	if err != nil {
		return nil, fmt.Errorf("open local cache: %w", err)
	}
	a := &App{journal: journal}

	var (
		remoteTrips       ports.TripRepository
		remoteInvitations ports.InvitationRepository
		probe             ports.Connectivity
	)
	if cfg.RemoteEnabled() {
		db, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			_ = journal.Close()
			return nil, fmt.Errorf("open database: %w", err)
		}
		a.db = db
		remoteTrips = postgres.NewTripRepo(db)
		remoteInvitations = postgres.NewInvitationRepo(db)
		probe = postgres.NewProber(db, cfg.RemoteProbeTimeout)
	} else {
		log.Warnw("DATABASE_URL not set, running against the local cache only", "driver", cfg.LocalCacheDriver, "path", cfg.LocalCachePath)
	}

	a.Trips = service.NewTripService(remoteTrips, localcache.NewTripStore(journal), probe, service.TripServiceConfig{
		Logger: log.Named("trips"),
	})

	var sender service.InvitationSender
	if cfg.SMTPHost != "" {
		sender = mail.NewInvitationMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
	} else {
		log.Warnw("SMTP_HOST not set, invitation emails will not be sent")
	}
	a.Collaboration = service.NewCollaborationService(a.Trips, remoteInvitations, localcache.NewInvitationStore(journal), probe, sender, service.CollaborationServiceConfig{
		AppBaseURL:       cfg.AppBaseURL,
		RegistrationPath: cfg.RegistrationPath,
		InvitationTTL:    cfg.InvitationTTL,
		Logger:           log.Named("collaboration"),
	})

	if a.db != nil {
		a.Auth = service.NewAuthService(
			postgres.NewUserRepo(a.db),
			postgres.NewSessionRepo(a.db),
			util.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL),
			a.Collaboration,
			log.Named("auth"),
		)
	}
	return a, nil
}

// GrantRole changes a user's role through the account service.
func (a *App) GrantRole(ctx context.Context, userID uuid.UUID, role domain.UserRole) (*domain.User, error) {
	if a.Auth == nil {
		return nil, ErrNoDatabase
	}
	return a.Auth.GrantRole(ctx, userID, role)
}

// Migrate applies the remote schema.
func (a *App) Migrate(ctx context.Context) error {
	if a.db == nil {
		return ErrNoDatabase
	}
	return postgres.ApplySchema(ctx, a.db)
}

func (a *App) Close() error {
	var errs []error
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	if a.journal != nil {
		errs = append(errs, a.journal.Close())
	}
	return errors.Join(errs...)
}
