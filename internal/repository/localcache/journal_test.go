package localcache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/humayunejaz/travel-planning-app/internal/repository/ports"
)

func openJournals(t *testing.T) map[string]ports.Journal {
	t.Helper()
	dir := t.TempDir()

	sqlite, err := OpenSQLite(filepath.Join(dir, "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	file, err := OpenFileJournal(filepath.Join(dir, "collections"))
	require.NoError(t, err)

	return map[string]ports.Journal{"sqlite": sqlite, "file": file}
}

func TestJournalRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, journal := range openJournals(t) {
		t.Run(name, func(t *testing.T) {
			payload, err := journal.Load(ctx, TripsCollection)
			require.NoError(t, err)
			require.Nil(t, payload)

			require.NoError(t, journal.Store(ctx, TripsCollection, []byte(`[{"title":"a"}]`)))
			require.NoError(t, journal.Store(ctx, TripsCollection, []byte(`[{"title":"b"}]`)))

			payload, err = journal.Load(ctx, TripsCollection)
			require.NoError(t, err)
			require.JSONEq(t, `[{"title":"b"}]`, string(payload))
		})
	}
}

func TestJournalRejectsInvalidCollectionName(t *testing.T) {
	ctx := context.Background()
	for name, journal := range openJournals(t) {
		t.Run(name, func(t *testing.T) {
			require.Error(t, journal.Store(ctx, "../escape", []byte(`[]`)))
			_, err := journal.Load(ctx, "Trips")
			require.Error(t, err)
		})
	}
}

func TestSQLiteJournalSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	first, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.Store(ctx, InvitationsCollection, []byte(`[1,2,3]`)))
	require.NoError(t, first.Close())

	second, err := OpenSQLite(path)
	require.NoError(t, err)
	defer second.Close()

	payload, err := second.Load(ctx, InvitationsCollection)
	require.NoError(t, err)
	require.Equal(t, `[1,2,3]`, string(payload))
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("redis", t.TempDir())
	require.Error(t, err)
}
