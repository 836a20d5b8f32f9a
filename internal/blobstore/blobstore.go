// Package blobstore is the binary-content collaborator boundary: upload
// bytes, get back a retrievable address.
package blobstore

import (
	"context"
	"fmt"
	"time"
)

type Uploader interface {
	// Upload stores content under path and returns its retrievable address.
	Upload(ctx context.Context, path string, content []byte, contentType string) (string, error)
}

// PostMediaPath namespaces post media by author and a time-based filename.
func PostMediaPath(authorID, ext string, now time.Time) string {
	return fmt.Sprintf("posts/%s/%d.%s", authorID, now.UnixMilli(), ext)
}

// AvatarPath namespaces avatars the same way.
func AvatarPath(userID, ext string, now time.Time) string {
	return fmt.Sprintf("avatars/%s/%d.%s", userID, now.UnixMilli(), ext)
}
