package storage

import (
	"context"
	"io"
)

// Storage keeps a copy of finished reports somewhere other than the local
// output file.
type Storage interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
}
