package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trackplanner/music-content/pkg/musiccontent"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements musiccontent.Repository using PostgreSQL. Each row of
// the music_asset table is one metadata document; see migrations/ for the
// schema.
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) musiccontent.Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) musiccontent.Repository {
	return &Repository{db: pool}
}

const assetColumns = `uid, title, subtitle, author, version, presentation_type,
       genre, bpm, file_name, sheet_music_name, created_at, updated_at`

func (r *Repository) CreateAsset(ctx context.Context, asset *musiccontent.MusicAsset) error {
	query := `
		INSERT INTO music_asset (
			uid, title, subtitle, author, version, presentation_type,
			genre, bpm, file_name, sheet_music_name, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.Exec(ctx, query,
		asset.UID, asset.Title, asset.Subtitle, asset.Author, asset.Version,
		asset.PresentationType, asset.Genre, asset.BPM,
		asset.FileName, asset.SheetMusicName, asset.CreatedAt, asset.UpdatedAt)

	if err != nil {
		return r.handlePostgresError("create asset", err)
	}

	return nil
}

func (r *Repository) GetAsset(ctx context.Context, uid uuid.UUID) (*musiccontent.MusicAsset, error) {
	query := `SELECT ` + assetColumns + ` FROM music_asset WHERE uid = $1`

	asset, err := scanAsset(r.db.QueryRow(ctx, query, uid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, musiccontent.ErrAssetNotFound
		}
		return nil, r.handlePostgresError("get asset", err)
	}

	return asset, nil
}

func (r *Repository) SearchAssets(ctx context.Context, filters musiccontent.SearchFilters) ([]*musiccontent.MusicAsset, error) {
	query := `SELECT ` + assetColumns + ` FROM music_asset`

	var conds []string
	var args []interface{}
	if filters.Title != "" {
		args = append(args, "%"+filters.Title+"%")
		conds = append(conds, fmt.Sprintf("title ILIKE $%d", len(args)))
	}
	if filters.Author != "" {
		args = append(args, "%"+filters.Author+"%")
		conds = append(conds, fmt.Sprintf("author ILIKE $%d", len(args)))
	}
	if filters.Genre != "" {
		args = append(args, filters.Genre)
		conds = append(conds, fmt.Sprintf("genre = $%d", len(args)))
	}
	if filters.PresentationType != "" {
		args = append(args, filters.PresentationType)
		conds = append(conds, fmt.Sprintf("presentation_type = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY updated_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("search assets", err)
	}
	defer rows.Close()

	var assets []*musiccontent.MusicAsset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}

	return assets, rows.Err()
}

func (r *Repository) UpdateAsset(ctx context.Context, uid uuid.UUID, fields musiccontent.UpdateAssetFields) (*musiccontent.MusicAsset, error) {
	var sets []string
	var args []interface{}

	set := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if fields.Title != nil {
		set("title", *fields.Title)
	}
	if fields.Subtitle != nil {
		set("subtitle", *fields.Subtitle)
	}
	if fields.Author != nil {
		set("author", *fields.Author)
	}
	if fields.Version != nil {
		set("version", *fields.Version)
	}
	if fields.PresentationType != nil {
		set("presentation_type", *fields.PresentationType)
	}
	if fields.Genre != nil {
		set("genre", *fields.Genre)
	}
	if fields.BPM != nil {
		set("bpm", *fields.BPM)
	}
	set("updated_at", time.Now().UTC())

	args = append(args, uid)
	query := fmt.Sprintf(`UPDATE music_asset SET %s WHERE uid = $%d RETURNING `+assetColumns,
		strings.Join(sets, ", "), len(args))

	asset, err := scanAsset(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, musiccontent.ErrAssetNotFound
		}
		return nil, r.handlePostgresError("update asset", err)
	}

	return asset, nil
}

func (r *Repository) DeleteAsset(ctx context.Context, uid uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM music_asset WHERE uid = $1`, uid)
	if err != nil {
		return r.handlePostgresError("delete asset", err)
	}
	if tag.RowsAffected() == 0 {
		return musiccontent.ErrAssetNotFound
	}
	return nil
}

func (r *Repository) ListReferencedKeys(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT file_name, sheet_music_name FROM music_asset`)
	if err != nil {
		return nil, r.handlePostgresError("list referenced keys", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var fileName, sheetMusicName string
		if err := rows.Scan(&fileName, &sheetMusicName); err != nil {
			return nil, err
		}
		keys = append(keys, fileName)
		if sheetMusicName != "" {
			keys = append(keys, sheetMusicName)
		}
	}

	return keys, rows.Err()
}

func scanAsset(row pgx.Row) (*musiccontent.MusicAsset, error) {
	var asset musiccontent.MusicAsset
	err := row.Scan(
		&asset.UID, &asset.Title, &asset.Subtitle, &asset.Author, &asset.Version,
		&asset.PresentationType, &asset.Genre, &asset.BPM,
		&asset.FileName, &asset.SheetMusicName, &asset.CreatedAt, &asset.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("asset already exists")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}
