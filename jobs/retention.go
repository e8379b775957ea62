// Package jobs runs scheduled maintenance for saved analyses.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ExpiringStore deletes analyses older than a cutoff and reports the archive
// keys of their documents
type ExpiringStore interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) ([]string, error)
}

// DocumentRemover deletes archived documents
type DocumentRemover interface {
	Delete(ctx context.Context, key string) error
}

// Retention purges analyses past the retention window
type Retention struct {
	store     ExpiringStore
	documents DocumentRemover
	window    time.Duration
	timeout   time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewRetention creates a purge job keeping analyses for days. documents may
// be nil when no archive is configured.
func NewRetention(store ExpiringStore, documents DocumentRemover, days int, logger *zap.Logger) *Retention {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retention{
		store:     store,
		documents: documents,
		window:    time.Duration(days) * 24 * time.Hour,
		timeout:   5 * time.Minute,
		logger:    logger,
		now:       time.Now,
	}
}

// PurgeReport summarizes one purge run
type PurgeReport struct {
	Cutoff           time.Time
	Documents        int
	DocumentFailures int
}

// Purge deletes expired analyses and their documents
func (r *Retention) Purge(ctx context.Context) (PurgeReport, error) {
	report := PurgeReport{Cutoff: r.now().Add(-r.window)}

	keys, err := r.store.DeleteOlderThan(ctx, report.Cutoff)
	if err != nil {
		return report, fmt.Errorf("failed to delete expired analyses: %w", err)
	}

	if r.documents == nil {
		return report, nil
	}
	for _, key := range keys {
		if err := r.documents.Delete(ctx, key); err != nil {
			report.DocumentFailures++
			r.logger.Warn("failed to delete expired document", zap.String("key", key), zap.Error(err))
			continue
		}
		report.Documents++
	}
	return report, nil
}

func (r *Retention) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	report, err := r.Purge(ctx)
	if err != nil {
		r.logger.Error("retention purge failed", zap.Error(err))
		return
	}
	r.logger.Info("retention purge finished",
		zap.Time("cutoff", report.Cutoff),
		zap.Int("documents_deleted", report.Documents),
		zap.Int("document_failures", report.DocumentFailures),
	)
}

// Start schedules the purge. Stop the returned cron to end it.
func (r *Retention) Start(schedule string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(schedule, r.run); err != nil {
		return nil, fmt.Errorf("invalid retention schedule %q: %w", schedule, err)
	}
	c.Start()
	return c, nil
}
