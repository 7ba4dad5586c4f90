package localcache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/humayunejaz/travel-planning-app/internal/repository/ports"
)

// FileJournal stores every collection as <dir>/<collection>.json. Writes go
// through a temp file and rename, so a crash never leaves a torn collection.
type FileJournal struct {
	dir string
}

func OpenFileJournal(dir string) (*FileJournal, error) {
	if dir == "" {
		return nil, errors.New("local cache: empty directory")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create local cache dir: %w", err)
	}
	return &FileJournal{dir: dir}, nil
}

func (j *FileJournal) Load(ctx context.Context, collection string) ([]byte, error) {
	if err := validateCollection(collection); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(j.path(collection))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

func (j *FileJournal) Store(ctx context.Context, collection string, payload []byte) error {
	if err := validateCollection(collection); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return atomic.WriteFile(j.path(collection), bytes.NewReader(payload))
}

func (j *FileJournal) Close() error {
	return nil
}

func (j *FileJournal) path(collection string) string {
	return filepath.Join(j.dir, collection+".json")
}

var _ ports.Journal = (*FileJournal)(nil)
