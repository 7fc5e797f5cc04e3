package stdout

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

type Option func(*Repository)

func WithWriter(w io.Writer) Option {
	return func(r *Repository) {
		r.w = w
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(r *Repository) {
		r.logger = logger
	}
}

// Repository prints artifacts instead of storing them. Keys are only logged.
type Repository struct {
	w      io.Writer
	logger *zap.Logger
}

func New(opts ...Option) *Repository {
	r := &Repository{
		w:      os.Stdout,
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) Write(ctx context.Context, key string, reader io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.logger.Debug("writing to stdout", zap.String("key", key))

	if _, err := io.Copy(r.w, reader); err != nil {
		return err
	}
	_, err := fmt.Fprintln(r.w)
	return err
}
