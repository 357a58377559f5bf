package musiccontent

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrAssetNotFound indicates a music asset was not found
	ErrAssetNotFound = errors.New("music asset not found")

	// ErrObjectNotFound indicates a stored object was not found
	ErrObjectNotFound = errors.New("object not found")

	// ErrStoreUnavailable indicates a transient store failure; callers may retry
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrAudioFileRequired indicates a create request without the mandatory audio file
	ErrAudioFileRequired = errors.New("audio file is required")
)

// AssetError represents an error related to an asset lifecycle operation
type AssetError struct {
	UID uuid.UUID
	Op  string
	Err error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("asset operation %s failed for asset %s: %v", e.Op, e.UID, e.Err)
}

func (e *AssetError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to an object store operation
type StorageError struct {
	Key string
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
