// Command reconcile runs one pass of the orphaned-object cleanup: it lists
// every object in the bucket, diffs against the keys referenced by the
// metadata store, and deletes objects nothing references anymore.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/trackplanner/music-content/pkg/musiccontent"
	repopg "github.com/trackplanner/music-content/pkg/musiccontent/repo/postgres"
	s3storage "github.com/trackplanner/music-content/pkg/musiccontent/storage/s3"
)

type Config struct {
	DB          DbConfig
	S3          S3Config
	GracePeriod time.Duration `env:"RECONCILE_GRACE_PERIOD" env-default:"1h"`
	DryRun      bool          `env:"RECONCILE_DRY_RUN" env-default:"false"`
}

type DbConfig struct {
	Port     uint16 `env:"MUSIC_PG_PORT" env-default:"5432"`
	Host     string `env:"MUSIC_PG_HOST" env-default:"localhost"`
	Name     string `env:"MUSIC_PG_NAME" env-default:"music_db"`
	User     string `env:"MUSIC_PG_USER" env-default:"music"`
	Password string `env:"MUSIC_PG_PASSWORD" env-default:"pwd"`
}

type S3Config struct {
	Endpoint        string `env:"AWS_S3_ENDPOINT" env-default:"http://localhost:9000"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID" env-default:"minioadmin"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" env-default:"minioadmin"`
	BucketName      string `env:"AWS_S3_BUCKET" env-default:"music-bucket"`
	Region          string `env:"AWS_S3_REGION" env-default:"us-east-1"`
	UsePathStyle    bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"true"`
}

func (c DbConfig) toDatabaseUrl() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}
	return u.String()
}

func main() {
	_ = godotenv.Load()

	var config Config
	if err := cleanenv.ReadEnv(&config); err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, config.DB.toDatabaseUrl())
	if err != nil {
		slog.Error("Failed to create connection pool", "err", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		slog.Error("Failed to ping database", "err", err)
		os.Exit(1)
	}
	repo := repopg.NewWithPool(pool)

	store, err := s3storage.New(s3storage.Config{
		Endpoint:        config.S3.Endpoint,
		AccessKeyID:     config.S3.AccessKeyID,
		SecretAccessKey: config.S3.SecretAccessKey,
		Bucket:          config.S3.BucketName,
		Region:          config.S3.Region,
		UsePathStyle:    config.S3.UsePathStyle,
	})
	if err != nil {
		slog.Error("Failed to create S3 storage", "err", err)
		os.Exit(1)
	}

	opts := []musiccontent.ReconcileOption{
		musiccontent.WithGracePeriod(config.GracePeriod),
	}
	if config.DryRun {
		opts = append(opts, musiccontent.WithDryRun())
	}

	reconciler, err := musiccontent.NewReconciler(repo, store, opts...)
	if err != nil {
		slog.Error("Failed to create reconciler", "err", err)
		os.Exit(1)
	}

	report, err := reconciler.Reconcile(ctx)
	if err != nil {
		slog.Error("Reconciliation failed", "err", err)
		os.Exit(1)
	}

	slog.Info("Reconciliation complete",
		"orphans_found", report.OrphansFound,
		"orphans_deleted", report.OrphansDeleted,
		"failures", len(report.Failures))
	for _, failure := range report.Failures {
		slog.Warn("Orphan cleanup failure", "detail", failure)
	}

	if len(report.Failures) > 0 {
		os.Exit(1)
	}
}
