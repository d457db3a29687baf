package tables

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/npsdash/backend-go/internal/cache"
	"github.com/npsdash/backend-go/internal/config"
	"github.com/rs/zerolog/log"
)

// Storage reads and writes whole tables by file name. Read must return an
// error wrapping fs.ErrNotExist for a missing table.
type Storage interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
}

// DirStorage keeps tables as files in a local directory.
type DirStorage struct {
	dir string
}

var (
	_ Storage = (*DirStorage)(nil)
	_ Storage = (*cache.S3TableStore)(nil)
)

func NewDirStorage(dir string) *DirStorage {
	return &DirStorage{dir: dir}
}

func (s *DirStorage) Read(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("reading table %s: %w", name, err)
	}
	return data, nil
}

// Write replaces the table atomically.
func (s *DirStorage) Write(_ context.Context, name string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing table %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing table %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("replacing table %s: %w", name, err)
	}
	return nil
}

// OpenStorage returns S3-backed storage when a bucket is configured, and the
// local data directory otherwise.
func OpenStorage(ctx context.Context, cfg *config.Config) (Storage, error) {
	if cfg.TableBucket == "" {
		return NewDirStorage(cfg.DataDir), nil
	}

	s3Client, err := cache.NewS3Client(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating S3 client: %w", err)
	}
	log.Debug().Str("bucket", cfg.TableBucket).Msg("Using S3 table storage")
	return cache.NewS3TableStore(s3Client, cfg.TableBucket, cfg.TablePrefix), nil
}
