package postgres

import (
	"strings"
	"testing"
)

func TestSchemaStatementsCoverTables(t *testing.T) {
	stmts := schemaStatements()
	if len(stmts) == 0 {
		t.Fatal("expected schema statements")
	}
	for _, table := range []string{"app_user", "sessions", "trips", "trip_collaborators", "trip_invitations"} {
		found := false
		for _, stmt := range stmts {
			if strings.Contains(stmt, "CREATE TABLE IF NOT EXISTS "+table+" ") {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("missing table %s", table)
		}
	}
	for _, stmt := range stmts {
		if strings.HasSuffix(stmt, ";") {
			t.Fatalf("statement kept trailing separator: %q", stmt)
		}
	}
}
