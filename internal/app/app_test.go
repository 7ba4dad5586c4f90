package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/humayunejaz/travel-planning-app/internal/config"
	"github.com/humayunejaz/travel-planning-app/internal/domain"
)

func localConfig(t *testing.T, driver string) config.Config {
	t.Helper()
	cfg, err := config.FromEnv(func(k string) string {
		switch k {
		case "LOCAL_CACHE_DRIVER":
			return driver
		case "LOCAL_CACHE_PATH":
			if driver == "sqlite" {
				return filepath.Join(t.TempDir(), "cache.db")
			}
			return filepath.Join(t.TempDir(), "cache")
		}
		return ""
	})
	require.NoError(t, err)
	return cfg
}

func TestNewLocalOnly(t *testing.T) {
	for _, driver := range []string{"file", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			a, err := New(localConfig(t, driver), nil)
			require.NoError(t, err)
			defer a.Close()

			require.Nil(t, a.Auth, "accounts need the remote database")
			require.ErrorIs(t, a.Migrate(context.Background()), ErrNoDatabase)
			_, err = a.GrantRole(context.Background(), uuid.New(), domain.UserRoleAgency)
			require.ErrorIs(t, err, ErrNoDatabase)

			trip, err := a.Trips.CreateTrip(context.Background(), domain.TripFields{Title: "Offline"}, nil, uuid.New())
			require.NoError(t, err)
			require.True(t, trip.PendingSync)

			cached, err := a.Trips.ListLocalTrips(context.Background())
			require.NoError(t, err)
			require.Len(t, cached, 1)
		})
	}
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(localConfig(t, "redis"), nil)
	require.Error(t, err)
}
