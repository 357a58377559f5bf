package musiccontent_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackplanner/music-content/pkg/musiccontent"
	repomemory "github.com/trackplanner/music-content/pkg/musiccontent/repo/memory"
	memorystorage "github.com/trackplanner/music-content/pkg/musiccontent/storage/memory"
)

func newTestService(t *testing.T) (musiccontent.Service, musiccontent.Repository, musiccontent.BlobStore) {
	t.Helper()

	repo := repomemory.New()
	store := memorystorage.New()

	svc, err := musiccontent.New(
		musiccontent.WithRepository(repo),
		musiccontent.WithBlobStore(store),
	)
	require.NoError(t, err)

	return svc, repo, store
}

func createRequest(title string, fileName string) musiccontent.CreateAssetRequest {
	return musiccontent.CreateAssetRequest{
		Title:            title,
		Author:           "Test Author",
		PresentationType: musiccontent.PresentationStudio,
		Genre:            musiccontent.GenreRock,
		File: musiccontent.FileUpload{
			Reader:      strings.NewReader("audio bytes for " + title),
			FileName:    fileName,
			ContentType: "audio/mpeg",
		},
	}
}

func TestNew(t *testing.T) {
	repo := repomemory.New()
	store := memorystorage.New()

	tests := []struct {
		name    string
		options []musiccontent.Option
		wantErr bool
	}{
		{
			name: "with repository and blob store",
			options: []musiccontent.Option{
				musiccontent.WithRepository(repo),
				musiccontent.WithBlobStore(store),
			},
			wantErr: false,
		},
		{
			name: "missing repository",
			options: []musiccontent.Option{
				musiccontent.WithBlobStore(store),
			},
			wantErr: true,
		},
		{
			name: "missing blob store",
			options: []musiccontent.Option{
				musiccontent.WithRepository(repo),
			},
			wantErr: true,
		},
		{
			name:    "no options",
			options: nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := musiccontent.New(tt.options...)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

func TestCreateAsset(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := context.Background()

	bpm := 128
	req := musiccontent.CreateAssetRequest{
		Title:            "Nocturne",
		Subtitle:         "No. 2",
		Author:           "Chopin",
		Version:          "1.0",
		PresentationType: musiccontent.PresentationStudio,
		Genre:            musiccontent.GenreClassical,
		BPM:              &bpm,
		File: musiccontent.FileUpload{
			Reader:      bytes.NewReader([]byte("mp3 payload")),
			FileName:    "etude.mp3",
			ContentType: "audio/mpeg",
		},
	}

	view, err := svc.CreateAsset(ctx, req)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, view.UID)
	assert.Equal(t, "Nocturne", view.Title)
	assert.Equal(t, "Chopin", view.Author)
	require.NotNil(t, view.BPM)
	assert.Equal(t, 128, *view.BPM)
	assert.False(t, view.CreatedAt.IsZero())
	assert.Equal(t, view.CreatedAt, view.UpdatedAt)

	// The object key keeps the original filename, prefixed for uniqueness.
	assert.Contains(t, view.FileName, "etude.mp3")
	assert.NotEqual(t, "etude.mp3", view.FileName)
	assert.NotEmpty(t, view.FileURL)
	assert.Empty(t, view.SheetMusicName)
	assert.Empty(t, view.SheetMusicURL)

	// The uploaded bytes landed under the generated key.
	rc, err := store.Download(ctx, view.FileName)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3 payload"), data)
}

func TestCreateAssetDuplicateFilenames(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateAsset(ctx, musiccontent.CreateAssetRequest{
		Title:            "First",
		Author:           "A",
		PresentationType: musiccontent.PresentationLive,
		Genre:            musiccontent.GenrePop,
		File: musiccontent.FileUpload{
			Reader:   strings.NewReader("first payload"),
			FileName: "track.mp3",
		},
	})
	require.NoError(t, err)

	second, err := svc.CreateAsset(ctx, musiccontent.CreateAssetRequest{
		Title:            "Second",
		Author:           "B",
		PresentationType: musiccontent.PresentationLive,
		Genre:            musiccontent.GenrePop,
		File: musiccontent.FileUpload{
			Reader:   strings.NewReader("second payload"),
			FileName: "track.mp3",
		},
	})
	require.NoError(t, err)

	// Same client filename, distinct object keys, no overwrite.
	assert.NotEqual(t, first.FileName, second.FileName)

	rc, err := store.Download(ctx, first.FileName)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "first payload", string(data))

	rc, err = store.Download(ctx, second.FileName)
	require.NoError(t, err)
	data, _ = io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "second payload", string(data))
}

func TestCreateAssetRequiresAudioFile(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateAsset(context.Background(), musiccontent.CreateAssetRequest{
		Title:            "No File",
		Author:           "A",
		PresentationType: musiccontent.PresentationStudio,
		Genre:            musiccontent.GenreRock,
	})
	assert.ErrorIs(t, err, musiccontent.ErrAudioFileRequired)
}

func TestCreateAssetWithSheetMusic(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := context.Background()

	req := createRequest("With Sheet", "song.mp3")
	req.SheetMusic = &musiccontent.FileUpload{
		Reader:      strings.NewReader("pdf payload"),
		FileName:    "score.pdf",
		ContentType: "application/pdf",
	}

	view, err := svc.CreateAsset(ctx, req)
	require.NoError(t, err)

	assert.Contains(t, view.SheetMusicName, "score.pdf")
	assert.NotEmpty(t, view.SheetMusicURL)
	assert.NotEqual(t, view.FileURL, view.SheetMusicURL)

	rc, err := store.Download(ctx, view.SheetMusicName)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "pdf payload", string(data))
}

func TestGetAsset(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateAsset(ctx, createRequest("Lookup", "lookup.mp3"))
	require.NoError(t, err)

	view, err := svc.GetAsset(ctx, created.UID)
	require.NoError(t, err)
	assert.Equal(t, created.UID, view.UID)
	assert.Equal(t, "Lookup", view.Title)
	assert.NotEmpty(t, view.FileURL)
}

func TestGetAssetNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.GetAsset(context.Background(), uuid.New())
	assert.ErrorIs(t, err, musiccontent.ErrAssetNotFound)

	var assetErr *musiccontent.AssetError
	assert.ErrorAs(t, err, &assetErr)
	assert.Equal(t, "get", assetErr.Op)
}

func TestGetAssetRefreshesSignedURL(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateAsset(ctx, createRequest("Refresh", "refresh.mp3"))
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	view, err := svc.GetAsset(ctx, created.UID)
	require.NoError(t, err)

	// Each read derives a fresh URL rather than replaying a stored one.
	assert.NotEqual(t, created.FileURL, view.FileURL)
}

func TestUpdateAsset(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateAsset(ctx, createRequest("Original", "original.mp3"))
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	newTitle := "Renamed"
	newGenre := musiccontent.GenreJazz
	newBPM := 92
	view, err := svc.UpdateAsset(ctx, created.UID, musiccontent.UpdateAssetFields{
		Title: &newTitle,
		Genre: &newGenre,
		BPM:   &newBPM,
	})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", view.Title)
	assert.Equal(t, musiccontent.GenreJazz, view.Genre)
	require.NotNil(t, view.BPM)
	assert.Equal(t, 92, *view.BPM)

	// Untouched fields survive; object keys never change on update.
	assert.Equal(t, created.Author, view.Author)
	assert.Equal(t, created.PresentationType, view.PresentationType)
	assert.Equal(t, created.FileName, view.FileName)
	assert.True(t, view.UpdatedAt.After(created.UpdatedAt))
	assert.Equal(t, created.CreatedAt, view.CreatedAt)
}

func TestUpdateAssetNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	title := "x"
	_, err := svc.UpdateAsset(context.Background(), uuid.New(), musiccontent.UpdateAssetFields{
		Title: &title,
	})
	assert.ErrorIs(t, err, musiccontent.ErrAssetNotFound)
}

func TestDeleteAsset(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := context.Background()

	req := createRequest("Doomed", "doomed.mp3")
	req.SheetMusic = &musiccontent.FileUpload{
		Reader:   strings.NewReader("sheet"),
		FileName: "doomed.pdf",
	}
	created, err := svc.CreateAsset(ctx, req)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAsset(ctx, created.UID))

	// Record and both objects are gone.
	_, err = svc.GetAsset(ctx, created.UID)
	assert.ErrorIs(t, err, musiccontent.ErrAssetNotFound)
	_, err = store.Download(ctx, created.FileName)
	assert.ErrorIs(t, err, musiccontent.ErrObjectNotFound)
	_, err = store.Download(ctx, created.SheetMusicName)
	assert.ErrorIs(t, err, musiccontent.ErrObjectNotFound)

	// A second delete converges on not-found instead of failing oddly.
	err = svc.DeleteAsset(ctx, created.UID)
	assert.ErrorIs(t, err, musiccontent.ErrAssetNotFound)
}

func TestDeleteAssetObjectAlreadyAbsent(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateAsset(ctx, createRequest("Half Gone", "half.mp3"))
	require.NoError(t, err)

	// Object vanished out-of-band; the delete still completes.
	require.NoError(t, store.Delete(ctx, created.FileName))
	require.NoError(t, svc.DeleteAsset(ctx, created.UID))

	_, err = svc.GetAsset(ctx, created.UID)
	assert.ErrorIs(t, err, musiccontent.ErrAssetNotFound)
}

func TestSearchAssets(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	mk := func(title, author string, genre musiccontent.Genre, pt musiccontent.PresentationType) *musiccontent.AssetView {
		view, err := svc.CreateAsset(ctx, musiccontent.CreateAssetRequest{
			Title:            title,
			Author:           author,
			PresentationType: pt,
			Genre:            genre,
			File: musiccontent.FileUpload{
				Reader:   strings.NewReader(title),
				FileName: strings.ToLower(title) + ".mp3",
			},
		})
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
		return view
	}

	mk("Midnight Blues", "Muddy", musiccontent.GenreBlues, musiccontent.PresentationLive)
	mk("Blue Sky", "Allman", musiccontent.GenreRock, musiccontent.PresentationStudio)
	newest := mk("Night Train", "Muddy", musiccontent.GenreBlues, musiccontent.PresentationStudio)

	t.Run("no filters returns all, newest first", func(t *testing.T) {
		views, err := svc.SearchAssets(ctx, musiccontent.SearchFilters{})
		require.NoError(t, err)
		require.Len(t, views, 3)
		assert.Equal(t, newest.UID, views[0].UID)
		for _, view := range views {
			assert.NotEmpty(t, view.FileURL)
		}
	})

	t.Run("title substring is case-insensitive", func(t *testing.T) {
		views, err := svc.SearchAssets(ctx, musiccontent.SearchFilters{Title: "blue"})
		require.NoError(t, err)
		assert.Len(t, views, 2)
	})

	t.Run("filters combine with AND", func(t *testing.T) {
		views, err := svc.SearchAssets(ctx, musiccontent.SearchFilters{
			Author: "muddy",
			Genre:  musiccontent.GenreBlues,
			Title:  "night",
		})
		require.NoError(t, err)
		require.Len(t, views, 2)

		views, err = svc.SearchAssets(ctx, musiccontent.SearchFilters{
			Author:           "muddy",
			PresentationType: musiccontent.PresentationLive,
		})
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, "Midnight Blues", views[0].Title)
	})

	t.Run("no matches yields empty slice", func(t *testing.T) {
		views, err := svc.SearchAssets(ctx, musiccontent.SearchFilters{Title: "nope"})
		require.NoError(t, err)
		assert.Empty(t, views)
	})
}

func TestSearchAssetsDegradesPerRecord(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := context.Background()

	healthy, err := svc.CreateAsset(ctx, createRequest("Healthy", "healthy.mp3"))
	require.NoError(t, err)
	broken, err := svc.CreateAsset(ctx, createRequest("Broken", "broken.mp3"))
	require.NoError(t, err)

	// Make signing fail for one record by removing its object out-of-band.
	require.NoError(t, store.Delete(ctx, broken.FileName))

	views, err := svc.SearchAssets(ctx, musiccontent.SearchFilters{})
	require.NoError(t, err)
	require.Len(t, views, 2)

	byUID := make(map[uuid.UUID]*musiccontent.AssetView, len(views))
	for _, view := range views {
		byUID[view.UID] = view
	}
	assert.NotEmpty(t, byUID[healthy.UID].FileURL)
	assert.Empty(t, byUID[broken.UID].FileURL)
	assert.Equal(t, "Broken", byUID[broken.UID].Title)
}

func TestCreateAssetNoRecordOnUploadFailure(t *testing.T) {
	repo := repomemory.New()
	store := &failingUploadStore{BlobStore: memorystorage.New()}

	svc, err := musiccontent.New(
		musiccontent.WithRepository(repo),
		musiccontent.WithBlobStore(store),
	)
	require.NoError(t, err)

	_, err = svc.CreateAsset(context.Background(), createRequest("Never Lands", "never.mp3"))
	require.Error(t, err)

	var storageErr *musiccontent.StorageError
	assert.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "upload", storageErr.Op)

	// Upload failed before the metadata insert, so no record exists.
	assets, err := repo.SearchAssets(context.Background(), musiccontent.SearchFilters{})
	require.NoError(t, err)
	assert.Empty(t, assets)
}

func TestCreateAssetOrphanOnMetadataFailure(t *testing.T) {
	repo := &failingCreateRepo{Repository: repomemory.New()}
	store := memorystorage.New()

	svc, err := musiccontent.New(
		musiccontent.WithRepository(repo),
		musiccontent.WithBlobStore(store),
	)
	require.NoError(t, err)

	_, err = svc.CreateAsset(context.Background(), createRequest("Orphan Maker", "orphan.mp3"))
	require.Error(t, err)

	// The object stays behind; only reconciliation may remove it.
	var count int
	require.NoError(t, store.ListObjects(context.Background(), func(info musiccontent.ObjectInfo) error {
		count++
		return nil
	}))
	assert.Equal(t, 1, count)
}

// failingUploadStore rejects every upload.
type failingUploadStore struct {
	musiccontent.BlobStore
}

func (s *failingUploadStore) Upload(ctx context.Context, reader io.Reader, params musiccontent.UploadParams) error {
	return errors.New("bucket unavailable")
}

// failingCreateRepo rejects every insert.
type failingCreateRepo struct {
	musiccontent.Repository
}

func (r *failingCreateRepo) CreateAsset(ctx context.Context, asset *musiccontent.MusicAsset) error {
	return errors.New("insert rejected")
}
