package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sdko-org/loganalyzer/internal/analyzer"
	"github.com/sdko-org/loganalyzer/internal/config"
	"github.com/sdko-org/loganalyzer/internal/models"
	"github.com/sdko-org/loganalyzer/internal/parser"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// Archive stores run summaries and their parsed records.
type Archive struct {
	db        *gorm.DB
	limiter   *rate.Limiter
	batchSize int
	log       *logrus.Entry
}

func NewArchive(logger *logrus.Logger, db *gorm.DB, cfg config.ArchiveConfig) *Archive {
	return &Archive{
		db:        db,
		limiter:   rate.NewLimiter(rate.Limit(cfg.BatchesPerSec), 1),
		batchSize: cfg.BatchSize,
		log:       logger.WithField("component", "archive"),
	}
}

// SaveRun writes the run row and every record in one transaction. Record
// inserts are split into batches and each batch waits for the limiter.
func (a *Archive) SaveRun(ctx context.Context, runID, inputPath string, store *parser.Store, summary *analyzer.Summary) error {
	log := a.log.WithFields(logrus.Fields{
		"run_id":  runID,
		"records": store.Len(),
	})

	run := newRun(runID, inputPath, store, summary, time.Now())
	rows := make([]models.AccessLog, 0, store.Len())
	for _, rec := range store.Records {
		rows = append(rows, models.NewAccessLog(runID, rec))
	}

	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}

		for _, b := range Batches(len(rows), a.batchSize) {
			if err := a.limiter.Wait(ctx); err != nil {
				return err
			}
			chunk := rows[b[0]:b[1]]
			if err := tx.Create(&chunk).Error; err != nil {
				return fmt.Errorf("failed to save records %d-%d: %w", b[0], b[1], err)
			}
		}
		return nil
	})
	if err != nil {
		log.WithError(err).Error("Archive failed")
		return err
	}

	log.Info("Run archived")
	return nil
}

// PurgeBefore deletes runs created before cutoff together with their records
// and returns how many runs were removed.
func (a *Archive) PurgeBefore(ctx context.Context, cutoff time.Time) (int, error) {
	log := a.log.WithFields(logrus.Fields{
		"operation": "purge",
		"cutoff":    cutoff.Format(time.RFC3339),
	})

	var ids []string
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.AnalysisRun{}).
			Where("created_at < ?", cutoff).
			Pluck("run_id", &ids).Error; err != nil {
			return fmt.Errorf("purge query failed: %w", err)
		}
		if len(ids) == 0 {
			return nil
		}

		if err := tx.Where("run_id IN ?", ids).Delete(&models.AccessLog{}).Error; err != nil {
			return fmt.Errorf("failed to delete archived records: %w", err)
		}
		if err := tx.Where("run_id IN ?", ids).Delete(&models.AnalysisRun{}).Error; err != nil {
			return fmt.Errorf("failed to delete archived runs: %w", err)
		}
		return nil
	})
	if err != nil {
		log.WithError(err).Error("Archive purge failed")
		return 0, err
	}

	log.WithField("count", len(ids)).Info("Expired runs purged")
	return len(ids), nil
}

func newRun(runID, inputPath string, store *parser.Store, summary *analyzer.Summary, now time.Time) models.AnalysisRun {
	return models.AnalysisRun{
		RunID:           runID,
		InputPath:       inputPath,
		RecordCount:     store.Len(),
		DroppedLines:    store.Dropped,
		TopEndpoint:     summary.TopEndpoint.Endpoint,
		TopEndpointHits: summary.TopEndpoint.Count,
		SuspiciousCount: len(summary.Suspicious),
		CreatedAt:       now,
	}
}

// Batches splits [0, n) into consecutive half-open ranges of at most size
// elements.
func Batches(n, size int) [][2]int {
	if n <= 0 || size <= 0 {
		return nil
	}
	out := make([][2]int, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		out = append(out, [2]int{start, end})
	}
	return out
}
