package musiccontent

import (
	"context"

	"github.com/google/uuid"
)

// Service is the asset lifecycle manager. It owns the consistency contract
// between the blob store and the metadata repository and re-signs download
// URLs on every read path.
type Service interface {
	// CreateAsset uploads the file(s) and then inserts the metadata record.
	// If an object write fails nothing is inserted; if the insert fails after
	// object writes succeeded the objects are left for reconciliation.
	CreateAsset(ctx context.Context, req CreateAssetRequest) (*AssetView, error)

	// GetAsset returns the asset with freshly signed URLs.
	GetAsset(ctx context.Context, uid uuid.UUID) (*AssetView, error)

	// SearchAssets returns matching assets with freshly signed URLs, ordered
	// by updated_at descending. A record whose URL cannot be signed is
	// returned without URLs rather than failing the batch.
	SearchAssets(ctx context.Context, filters SearchFilters) ([]*AssetView, error)

	// UpdateAsset merges non-nil metadata fields and returns the updated
	// asset with freshly signed URLs. Object keys never change here.
	UpdateAsset(ctx context.Context, uid uuid.UUID, fields UpdateAssetFields) (*AssetView, error)

	// DeleteAsset removes the object(s) and then the metadata record.
	// Already-absent objects are tolerated, so a retried delete succeeds.
	DeleteAsset(ctx context.Context, uid uuid.UUID) error
}
