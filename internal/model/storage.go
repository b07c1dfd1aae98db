package model

import (
	"context"
	"io"
)

// Storage is an object store used for the outgoing mail archive.
type Storage interface {
	Upload(ctx context.Context, key, contentType string, reader io.Reader, size int64) error
}
