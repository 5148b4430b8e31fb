// Package blobstore retains original capture blobs (receipt photos, voice
// memos) in GCS so the source material survives a failed or abandoned
// extraction. Objects live under users/{uid}/captures/.
package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

const uploadTimeout = 2 * time.Minute

// BlobStore uploads and fetches capture blobs in a single bucket.
type BlobStore struct {
	client *storage.Client
	bucket string
}

// New creates a blob store for the given bucket. It assumes application
// default credentials are configured.
func New(ctx context.Context, bucket string) (*BlobStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("blobstore: bucket name is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("blobstore: create storage client: %w", err)
	}
	return &BlobStore{client: client, bucket: bucket}, nil
}

// Close releases the underlying client.
func (b *BlobStore) Close() error {
	return b.client.Close()
}

// Put uploads one capture blob under the user's namespace and returns its
// gs:// URI. Object names are uuid-prefixed so repeated uploads of the same
// filename never collide.
func (b *BlobStore) Put(ctx context.Context, userID, filename, contentType string, data []byte) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("blobstore: user ID is required")
	}

	objectName := fmt.Sprintf("users/%s/captures/%s-%s", userID, uuid.NewString(), path.Base(filename))

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := b.client.Bucket(b.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("blobstore: copy blob to GCS writer: %w", err)
	}
	// Close finalizes the upload.
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("blobstore: finalize upload: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", b.bucket, objectName), nil
}

// ParseURI splits a gs:// URI into bucket and object path.
func ParseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("blobstore: invalid GCS URI: %s", uri)
	}
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", fmt.Errorf("blobstore: invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// Filename extracts the filename from a GCS URI, e.g.
// "gs://bucket/folder/file.jpg" yields "file.jpg". Malformed URIs pass
// through unchanged; this is a display helper, not a validator.
func Filename(uri string) string {
	_, object, err := ParseURI(uri)
	if err != nil {
		return uri
	}
	return path.Base(object)
}
