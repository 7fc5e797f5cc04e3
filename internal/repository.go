package internal

import (
	"context"
	"io"
)

// Repository stores a finished artifact under key, replacing whatever was
// there before.
type Repository interface {
	Write(ctx context.Context, key string, reader io.Reader) error
}

// Preserver serializes a complete record collection and hands it to a
// Repository.
type Preserver interface {
	Preserve(ctx context.Context, key string, records []*Record) error
}
