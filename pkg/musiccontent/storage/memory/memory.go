package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/trackplanner/music-content/pkg/musiccontent"
)

// Backend is an in-memory implementation of the musiccontent.BlobStore
// interface, used for tests and local development.
type Backend struct {
	mu              sync.RWMutex
	objects         map[string][]byte
	objectsMimeType map[string]string
	objectsModTime  map[string]time.Time
	signTTL         time.Duration
}

// New creates a new in-memory storage backend
func New() musiccontent.BlobStore {
	return &Backend{
		objects:         make(map[string][]byte),
		objectsMimeType: make(map[string]string),
		objectsModTime:  make(map[string]time.Time),
		signTTL:         24 * time.Hour,
	}
}

// Upload uploads content directly
func (b *Backend) Upload(ctx context.Context, reader io.Reader, params musiccontent.UploadParams) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[params.ObjectKey] = data
	b.objectsModTime[params.ObjectKey] = time.Now()
	mimeType := params.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	b.objectsMimeType[params.ObjectKey] = mimeType
	return nil
}

// Download downloads content directly
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[objectKey]
	if !exists {
		return nil, musiccontent.ErrObjectNotFound
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete deletes content
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[objectKey]; !exists {
		return musiccontent.ErrObjectNotFound
	}

	delete(b.objects, objectKey)
	delete(b.objectsMimeType, objectKey)
	delete(b.objectsModTime, objectKey)
	return nil
}

// SignedURL returns a pseudo-URL carrying an expiry, so callers exercising
// the refresh-on-read path see a distinct URL per call.
func (b *Backend) SignedURL(ctx context.Context, objectKey, downloadFilename string) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if _, exists := b.objects[objectKey]; !exists {
		return "", musiccontent.ErrObjectNotFound
	}

	return fmt.Sprintf("memory://%s?expires=%d", objectKey, time.Now().Add(b.signTTL).UnixNano()), nil
}

// ListObjects enumerates stored objects in key order
func (b *Backend) ListObjects(ctx context.Context, fn func(info musiccontent.ObjectInfo) error) error {
	b.mu.RLock()
	infos := make([]musiccontent.ObjectInfo, 0, len(b.objects))
	for key, data := range b.objects {
		infos = append(infos, musiccontent.ObjectInfo{
			Key:          key,
			Size:         int64(len(data)),
			LastModified: b.objectsModTime[key],
		})
	}
	b.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })

	for _, info := range infos {
		if err := fn(info); err != nil {
			return err
		}
	}
	return nil
}
