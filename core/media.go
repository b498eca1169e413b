package core

import (
	"context"
	"io"
)

// MediaStorage stores uploaded files and returns their public URL.
type MediaStorage interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}
