package musiccontent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DefaultGracePeriod is how long a stored object stays ineligible for orphan
// removal after its last write. It covers the window where a create has
// uploaded the object but not yet committed the metadata insert.
const DefaultGracePeriod = time.Hour

// Reconciler removes stored objects that no metadata record references. It
// runs out-of-band and is safe alongside live traffic: it only deletes
// objects unreferenced at scan time and older than the grace period.
type Reconciler struct {
	repository  Repository
	blobStore   BlobStore
	gracePeriod time.Duration
	dryRun      bool
	logger      *slog.Logger
}

// ReconcileOption represents a functional option for configuring a Reconciler
type ReconcileOption func(*Reconciler)

// WithGracePeriod overrides the default grace period. Zero disables it.
func WithGracePeriod(d time.Duration) ReconcileOption {
	return func(r *Reconciler) {
		r.gracePeriod = d
	}
}

// WithDryRun reports orphans without deleting anything
func WithDryRun() ReconcileOption {
	return func(r *Reconciler) {
		r.dryRun = true
	}
}

// WithReconcileLogger sets the logger used for per-key failures
func WithReconcileLogger(logger *slog.Logger) ReconcileOption {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

// NewReconciler creates a Reconciler over the given stores
func NewReconciler(repo Repository, store BlobStore, options ...ReconcileOption) (*Reconciler, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if store == nil {
		return nil, fmt.Errorf("blob store is required")
	}

	r := &Reconciler{
		repository:  repo,
		blobStore:   store,
		gracePeriod: DefaultGracePeriod,
		logger:      slog.Default(),
	}
	for _, option := range options {
		option(r)
	}
	return r, nil
}

// ReconcileReport summarizes one reconciliation pass.
type ReconcileReport struct {
	OrphansFound   int      `json:"orphans_found"`
	OrphansDeleted int      `json:"orphans_deleted"`
	Failures       []string `json:"failures,omitempty"`
}

// Reconcile diffs the full object listing against the set of keys referenced
// by metadata records and deletes the unreferenced remainder. Individual
// deletion failures are accumulated, never fatal; a failed key is picked up
// again on the next run.
func (r *Reconciler) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	keys, err := r.repository.ListReferencedKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing referenced keys: %w", err)
	}
	referenced := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		referenced[key] = struct{}{}
	}

	cutoff := time.Now().Add(-r.gracePeriod)
	var orphans []string
	err = r.blobStore.ListObjects(ctx, func(info ObjectInfo) error {
		if _, ok := referenced[info.Key]; ok {
			return nil
		}
		if info.LastModified.After(cutoff) {
			// Possibly an in-flight create whose metadata insert has not
			// landed yet; leave it for a later pass.
			return nil
		}
		orphans = append(orphans, info.Key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing stored objects: %w", err)
	}

	report := &ReconcileReport{OrphansFound: len(orphans)}
	if r.dryRun {
		for _, key := range orphans {
			r.logger.Info("orphaned object (dry run)", "object_key", key)
		}
		return report, nil
	}
	for _, key := range orphans {
		if err := r.blobStore.Delete(ctx, key); err != nil {
			if errors.Is(err, ErrObjectNotFound) {
				// Gone since the scan; the end state is what counts.
				report.OrphansDeleted++
				continue
			}
			r.logger.Error("failed to delete orphaned object", "object_key", key, "err", err)
			report.Failures = append(report.Failures, key)
			continue
		}
		r.logger.Info("deleted orphaned object", "object_key", key)
		report.OrphansDeleted++
	}

	return report, nil
}
