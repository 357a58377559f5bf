package musiccontent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/trackplanner/music-content/pkg/musiccontent/objectkey"
)

// service implements the Service interface
type service struct {
	repository Repository
	blobStore  BlobStore
	keys       objectkey.Generator
	logger     *slog.Logger
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the metadata repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore sets the object store for the service
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.blobStore = store
	}
}

// WithObjectKeyGenerator overrides the default object key strategy
func WithObjectKeyGenerator(gen objectkey.Generator) Option {
	return func(s *service) {
		s.keys = gen
	}
}

// WithLogger sets the logger used for operational warnings
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		keys:   objectkey.NewUUIDPrefixGenerator(),
		logger: slog.Default(),
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.blobStore == nil {
		return nil, fmt.Errorf("blob store is required")
	}

	return s, nil
}

func (s *service) CreateAsset(ctx context.Context, req CreateAssetRequest) (*AssetView, error) {
	if req.File.Reader == nil {
		return nil, ErrAudioFileRequired
	}

	// Object writes come strictly before the metadata insert. A failure here
	// aborts the create with no record ever visible.
	fileKey := s.keys.GenerateKey(req.File.FileName)
	if err := s.blobStore.Upload(ctx, req.File.Reader, UploadParams{
		ObjectKey: fileKey,
		MimeType:  req.File.ContentType,
	}); err != nil {
		return nil, &StorageError{Key: fileKey, Op: "upload", Err: err}
	}

	var sheetKey string
	if req.SheetMusic != nil {
		sheetKey = s.keys.GenerateKey(req.SheetMusic.FileName)
		if err := s.blobStore.Upload(ctx, req.SheetMusic.Reader, UploadParams{
			ObjectKey: sheetKey,
			MimeType:  req.SheetMusic.ContentType,
		}); err != nil {
			// The audio object is now orphaned. No inline rollback: the
			// reconciliation job removes it.
			s.logger.Warn("partial write inconsistency: audio object orphaned until reconciliation",
				"object_key", fileKey, "err", err)
			return nil, &StorageError{Key: sheetKey, Op: "upload", Err: err}
		}
	}

	now := time.Now().UTC()
	asset := &MusicAsset{
		UID:              uuid.New(),
		Title:            req.Title,
		Subtitle:         req.Subtitle,
		Author:           req.Author,
		Version:          req.Version,
		PresentationType: req.PresentationType,
		Genre:            req.Genre,
		BPM:              req.BPM,
		FileName:         fileKey,
		SheetMusicName:   sheetKey,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repository.CreateAsset(ctx, asset); err != nil {
		s.logger.Warn("partial write inconsistency: objects orphaned until reconciliation",
			"object_key", fileKey, "sheet_music_key", sheetKey, "err", err)
		return nil, &AssetError{UID: asset.UID, Op: "create", Err: err}
	}

	s.logger.Info("music asset created", "uid", asset.UID, "object_key", fileKey)
	return s.signedView(ctx, asset)
}

func (s *service) GetAsset(ctx context.Context, uid uuid.UUID) (*AssetView, error) {
	asset, err := s.repository.GetAsset(ctx, uid)
	if err != nil {
		return nil, &AssetError{UID: uid, Op: "get", Err: err}
	}
	return s.signedView(ctx, asset)
}

func (s *service) SearchAssets(ctx context.Context, filters SearchFilters) ([]*AssetView, error) {
	assets, err := s.repository.SearchAssets(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("searching assets: %w", err)
	}

	views := make([]*AssetView, 0, len(assets))
	for _, asset := range assets {
		view, err := s.signedView(ctx, asset)
		if err != nil {
			// One broken record must not fail the whole listing. Return the
			// record without URLs and keep going.
			s.logger.Warn("could not refresh signed URL",
				"uid", asset.UID, "object_key", asset.FileName, "err", err)
			views = append(views, &AssetView{MusicAsset: *asset})
			continue
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *service) UpdateAsset(ctx context.Context, uid uuid.UUID, fields UpdateAssetFields) (*AssetView, error) {
	asset, err := s.repository.UpdateAsset(ctx, uid, fields)
	if err != nil {
		return nil, &AssetError{UID: uid, Op: "update", Err: err}
	}
	s.logger.Info("music asset updated", "uid", uid)
	return s.signedView(ctx, asset)
}

func (s *service) DeleteAsset(ctx context.Context, uid uuid.UUID) error {
	asset, err := s.repository.GetAsset(ctx, uid)
	if err != nil {
		return &AssetError{UID: uid, Op: "delete", Err: err}
	}

	// Objects go first, the record last: a crash mid-delete leaves the record
	// behind and a retried delete converges on the same end state.
	if err := s.deleteObject(ctx, asset.FileName); err != nil {
		return err
	}
	if asset.SheetMusicName != "" {
		if err := s.deleteObject(ctx, asset.SheetMusicName); err != nil {
			return err
		}
	}

	if err := s.repository.DeleteAsset(ctx, uid); err != nil {
		return &AssetError{UID: uid, Op: "delete", Err: err}
	}

	s.logger.Info("music asset deleted", "uid", uid)
	return nil
}

// deleteObject removes one object, treating an already-absent object as
// success: the end state "object absent" is the goal either way.
func (s *service) deleteObject(ctx context.Context, objectKey string) error {
	err := s.blobStore.Delete(ctx, objectKey)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrObjectNotFound) {
		s.logger.Warn("object already absent on delete", "object_key", objectKey)
		return nil
	}
	return &StorageError{Key: objectKey, Op: "delete", Err: err}
}

// signedView wraps the record with freshly signed URLs for every object key
// it holds. URLs generated at upload time expire on their own schedule, so
// every read path must come through here.
func (s *service) signedView(ctx context.Context, asset *MusicAsset) (*AssetView, error) {
	view := &AssetView{MusicAsset: *asset}

	url, err := s.blobStore.SignedURL(ctx, asset.FileName, "")
	if err != nil {
		return nil, &StorageError{Key: asset.FileName, Op: "sign", Err: err}
	}
	view.FileURL = url

	if asset.SheetMusicName != "" {
		url, err := s.blobStore.SignedURL(ctx, asset.SheetMusicName, "")
		if err != nil {
			return nil, &StorageError{Key: asset.SheetMusicName, Op: "sign", Err: err}
		}
		view.SheetMusicURL = url
	}

	return view, nil
}
