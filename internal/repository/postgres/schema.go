package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

//go:embed schema.sql
var schemaSQL string

// ApplySchema creates the tables when they are missing. Every statement is
// idempotent, so calling it on an up-to-date database is a no-op.
func ApplySchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schemaStatements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

func schemaStatements() []string {
	parts := strings.Split(schemaSQL, ";")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if stmt := strings.TrimSpace(part); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
