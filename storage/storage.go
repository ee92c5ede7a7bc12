// Package storage persists avatar images. The S3 store uploads to a bucket
// and returns the object's public URL; Noop keeps the upload path wired
// without external infrastructure.
package storage

import (
	"context"
	"fmt"
)

// Uploader stores a blob and returns the URL it is reachable at.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// Noop accepts every upload and fabricates a local URL. Useful in
// development and tests.
type Noop struct {
	BaseURL string
}

func (n Noop) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	base := n.BaseURL
	if base == "" {
		base = "noop://avatars"
	}
	return fmt.Sprintf("%s/%s", base, key), nil
}

var _ Uploader = Noop{}
