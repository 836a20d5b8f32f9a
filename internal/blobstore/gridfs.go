package blobstore

import (
	"bytes"
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"linkup/pkg/apperr"
)

// GridFSUploader stores blobs in a GridFS bucket on the same database as the
// document store. The returned address is the bucket path plus file id,
// servable by the media handler.
type GridFSUploader struct {
	bucket *mongo.GridFSBucket
}

func NewGridFSUploader(db *mongo.Database) *GridFSUploader {
	return &GridFSUploader{bucket: db.GridFSBucket()}
}

func (u *GridFSUploader) Upload(ctx context.Context, path string, content []byte, contentType string) (string, error) {
	opts := options.GridFSUpload().SetMetadata(bson.M{"content_type": contentType})
	id, err := u.bucket.UploadFromStream(ctx, path, bytes.NewReader(content), opts)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeInternal, "blob upload failed", err)
	}
	return "/media/" + id.Hex(), nil
}

// Open returns the stored bytes and content type for a previously uploaded
// blob id.
func (u *GridFSUploader) Open(ctx context.Context, id string) ([]byte, string, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, "", apperr.InvalidArg("invalid media id")
	}

	var buf bytes.Buffer
	if _, err := u.bucket.DownloadToStream(ctx, oid, &buf); err != nil {
		return nil, "", apperr.NotFound("media not found")
	}

	contentType := "application/octet-stream"
	cur, err := u.bucket.Find(ctx, bson.M{"_id": oid})
	if err == nil {
		var files []struct {
			Metadata bson.M `bson:"metadata"`
		}
		if cur.All(ctx, &files) == nil && len(files) > 0 {
			if ct, ok := files[0].Metadata["content_type"].(string); ok && ct != "" {
				contentType = ct
			}
		}
	}
	return buf.Bytes(), contentType, nil
}
