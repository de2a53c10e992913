package policies

import (
	"context"
	"io"
)

// PhotoUploader stores a listing photo and returns its public URL.
type PhotoUploader interface {
	Upload(ctx context.Context, objectKey string, body io.Reader, contentType string) (string, error)
}
