package postgres

import (
	"context"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/humayunejaz/travel-planning-app/internal/repository/ports"
)

func New(dsn string) (*sqlx.DB, error) {
	return sqlx.Open("pgx", dsn)
}

// Prober answers the connectivity question with a bounded ping.
type Prober struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewProber(db *sqlx.DB, timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Prober{db: db, timeout: timeout}
}

func (p *Prober) Available(ctx context.Context) bool {
	if p == nil || p.db == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.db.PingContext(ctx) == nil
}

var _ ports.Connectivity = (*Prober)(nil)
