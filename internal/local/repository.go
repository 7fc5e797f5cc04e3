package local

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/turbolytics/csvjson/internal"
)

type Option func(*Repository)

type Repository struct {
	basePath   string
	prefix     string
	createDirs bool
	logger     *zap.Logger
}

func WithPrefix(prefix string) Option {
	return func(r *Repository) {
		r.prefix = prefix
	}
}

// WithCreateDirs enables creating missing parent directories. By default a
// missing directory is a write error.
func WithCreateDirs(createDirs bool) Option {
	return func(r *Repository) {
		r.createDirs = createDirs
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(r *Repository) {
		r.logger = logger
	}
}

func New(basePath string, opts ...Option) *Repository {
	r := &Repository{
		basePath: basePath,
		logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Path returns the file path key is written to.
func (r *Repository) Path(key string) string {
	return filepath.Join(
		r.basePath,
		r.prefix,
		key,
	)
}

// Write stores the contents of reader at key. The data lands in a temporary
// file next to the destination which is then renamed over it, so readers
// never observe a partially written file.
func (r *Repository) Write(ctx context.Context, key string, reader io.Reader) error {
	fullPath := r.Path(key)

	if err := ctx.Err(); err != nil {
		return err
	}

	r.logger.Info("writing file", zap.String("path", fullPath))

	dir := filepath.Dir(fullPath)
	if r.createDirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return writeError(fullPath, err)
		}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".*")
	if err != nil {
		return writeError(fullPath, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		return writeError(fullPath, err)
	}

	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return writeError(fullPath, err)
	}

	if err := tmp.Close(); err != nil {
		return writeError(fullPath, err)
	}

	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return writeError(fullPath, err)
	}

	return nil
}

func writeError(path string, err error) error {
	return &internal.FileAccessError{Op: "write", Path: path, Err: err}
}
