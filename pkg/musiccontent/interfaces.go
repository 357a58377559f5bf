package musiccontent

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// BlobStore defines the interface for the object store holding audio and
// sheet-music payloads.
type BlobStore interface {
	// Upload writes content under params.ObjectKey. Re-using a key overwrites;
	// key generation is expected to make that impossible in practice.
	Upload(ctx context.Context, reader io.Reader, params UploadParams) error

	// Download reads content back directly. Returns ErrObjectNotFound for a
	// missing key.
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete removes content. A missing key returns ErrObjectNotFound, which
	// callers treat as already clean.
	Delete(ctx context.Context, objectKey string) error

	// SignedURL returns a time-limited download URL for the object. Computing
	// it has no side effect on the object and the URL is never persisted.
	// downloadFilename, when non-empty, is offered as the attachment name.
	SignedURL(ctx context.Context, objectKey, downloadFilename string) (string, error)

	// ListObjects enumerates every stored object, paging internally if the
	// backing store paginates. fn is called once per object; a non-nil return
	// stops the enumeration and is propagated.
	ListObjects(ctx context.Context, fn func(info ObjectInfo) error) error
}

// ObjectInfo describes one stored object during enumeration.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// UploadParams contains parameters for uploading an object
type UploadParams struct {
	ObjectKey string
	MimeType  string
}

// Repository defines the interface for music asset metadata persistence.
type Repository interface {
	// CreateAsset inserts a new record.
	CreateAsset(ctx context.Context, asset *MusicAsset) error

	// GetAsset returns the record for uid, or ErrAssetNotFound.
	GetAsset(ctx context.Context, uid uuid.UUID) (*MusicAsset, error)

	// SearchAssets returns records matching the filters, ordered by
	// updated_at descending. Zero filters return all records.
	SearchAssets(ctx context.Context, filters SearchFilters) ([]*MusicAsset, error)

	// UpdateAsset merges the non-nil fields into the record for uid, stamps
	// updated_at, and returns the updated record, or ErrAssetNotFound.
	UpdateAsset(ctx context.Context, uid uuid.UUID, fields UpdateAssetFields) (*MusicAsset, error)

	// DeleteAsset removes the record for uid, or returns ErrAssetNotFound.
	DeleteAsset(ctx context.Context, uid uuid.UUID) error

	// ListReferencedKeys returns every object key referenced by any record,
	// primary and sheet-music keys alike.
	ListReferencedKeys(ctx context.Context) ([]string, error)
}
