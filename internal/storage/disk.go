// Package storage keeps uploaded catalog assets on the local disk or in an
// S3-compatible bucket. Stored files are referenced as /uploads/<key>.
package storage

import (
	"context"
	"io"
	"strings"
)

const (
	DriverLocal = "local"
	DriverS3    = "s3"

	// PublicPrefix is the URL path every stored asset is served under.
	PublicPrefix = "/uploads/"
)

// Disk stores objects by slash-separated key.
type Disk interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
}

// Ref is the public reference persisted for key.
func Ref(key string) string {
	return PublicPrefix + strings.TrimLeft(key, "/")
}

// KeyFromRef returns the storage key for a reference produced by Ref. External
// URLs and anything else not under PublicPrefix report false.
func KeyFromRef(ref string) (string, bool) {
	if !strings.HasPrefix(ref, PublicPrefix) {
		return "", false
	}
	key := strings.TrimPrefix(ref, PublicPrefix)
	if key == "" || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}
