package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trackplanner/music-content/pkg/musiccontent"
)

// Repository implements musiccontent.Repository using in-memory storage
type Repository struct {
	mu     sync.RWMutex
	assets map[uuid.UUID]*musiccontent.MusicAsset
}

// New creates a new in-memory repository
func New() musiccontent.Repository {
	return &Repository{
		assets: make(map[uuid.UUID]*musiccontent.MusicAsset),
	}
}

func (r *Repository) CreateAsset(ctx context.Context, asset *musiccontent.MusicAsset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.assets[asset.UID]; exists {
		return fmt.Errorf("asset %s already exists", asset.UID)
	}

	// Store a copy to avoid external modifications
	assetCopy := *asset
	r.assets[asset.UID] = &assetCopy
	return nil
}

func (r *Repository) GetAsset(ctx context.Context, uid uuid.UUID) (*musiccontent.MusicAsset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	asset, exists := r.assets[uid]
	if !exists {
		return nil, musiccontent.ErrAssetNotFound
	}

	assetCopy := *asset
	return &assetCopy, nil
}

func (r *Repository) SearchAssets(ctx context.Context, filters musiccontent.SearchFilters) ([]*musiccontent.MusicAsset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*musiccontent.MusicAsset, 0, len(r.assets))
	for _, asset := range r.assets {
		if !matches(asset, filters) {
			continue
		}
		assetCopy := *asset
		result = append(result, &assetCopy)
	}

	// Most recently modified first
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})

	return result, nil
}

func (r *Repository) UpdateAsset(ctx context.Context, uid uuid.UUID, fields musiccontent.UpdateAssetFields) (*musiccontent.MusicAsset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	asset, exists := r.assets[uid]
	if !exists {
		return nil, musiccontent.ErrAssetNotFound
	}

	if fields.Title != nil {
		asset.Title = *fields.Title
	}
	if fields.Subtitle != nil {
		asset.Subtitle = *fields.Subtitle
	}
	if fields.Author != nil {
		asset.Author = *fields.Author
	}
	if fields.Version != nil {
		asset.Version = *fields.Version
	}
	if fields.PresentationType != nil {
		asset.PresentationType = *fields.PresentationType
	}
	if fields.Genre != nil {
		asset.Genre = *fields.Genre
	}
	if fields.BPM != nil {
		bpm := *fields.BPM
		asset.BPM = &bpm
	}
	asset.UpdatedAt = time.Now().UTC()

	assetCopy := *asset
	return &assetCopy, nil
}

func (r *Repository) DeleteAsset(ctx context.Context, uid uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.assets[uid]; !exists {
		return musiccontent.ErrAssetNotFound
	}

	delete(r.assets, uid)
	return nil
}

func (r *Repository) ListReferencedKeys(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.assets))
	for _, asset := range r.assets {
		keys = append(keys, asset.FileName)
		if asset.SheetMusicName != "" {
			keys = append(keys, asset.SheetMusicName)
		}
	}
	return keys, nil
}

func matches(asset *musiccontent.MusicAsset, filters musiccontent.SearchFilters) bool {
	if filters.Title != "" &&
		!strings.Contains(strings.ToLower(asset.Title), strings.ToLower(filters.Title)) {
		return false
	}
	if filters.Author != "" &&
		!strings.Contains(strings.ToLower(asset.Author), strings.ToLower(filters.Author)) {
		return false
	}
	if filters.Genre != "" && asset.Genre != filters.Genre {
		return false
	}
	if filters.PresentationType != "" && asset.PresentationType != filters.PresentationType {
		return false
	}
	return true
}
