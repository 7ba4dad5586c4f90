package localcache

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/humayunejaz/travel-planning-app/internal/repository/ports"
)

const (
	TripsCollection       = "trips"
	InvitationsCollection = "trip_invitations"
)

var collectionName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func validateCollection(name string) error {
	if !collectionName.MatchString(name) {
		return fmt.Errorf("local cache: invalid collection name %q", name)
	}
	return nil
}

func loadCollection[T any](ctx context.Context, journal ports.Journal, name string) ([]T, error) {
	payload, err := journal.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("decode %s collection: %w", name, err)
	}
	return items, nil
}

func storeCollection[T any](ctx context.Context, journal ports.Journal, name string, items []T) error {
	if items == nil {
		items = []T{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s collection: %w", name, err)
	}
	return journal.Store(ctx, name, payload)
}

// Open picks the journal backend by driver name.
func Open(driver, path string) (ports.Journal, error) {
	switch driver {
	case "", "sqlite":
		return OpenSQLite(path)
	case "file":
		return OpenFileJournal(path)
	default:
		return nil, fmt.Errorf("unknown local cache driver %q", driver)
	}
}
