package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sdko-org/loganalyzer/internal/analyzer"
	"github.com/sdko-org/loganalyzer/internal/config"
	"github.com/sdko-org/loganalyzer/internal/database"
	"github.com/sdko-org/loganalyzer/internal/parser"
	"github.com/sdko-org/loganalyzer/internal/report"
	"github.com/sdko-org/loganalyzer/internal/storage"
	"github.com/sirupsen/logrus"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load(args, stderr)
	if errors.Is(err, config.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "loganalyzer: %v\n", err)
		return exitUsage
	}

	logger := newLogger(cfg, stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := analyze(ctx, logger, cfg, stdout); err != nil {
		logger.WithError(err).Error("Analysis failed")
		return exitFailed
	}
	return exitOK
}

func newLogger(cfg *config.Config, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	// Load has already validated the level
	level, _ := logrus.ParseLevel(cfg.LogLevel)
	logger.SetLevel(level)

	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}
	return logger
}

func analyze(ctx context.Context, logger *logrus.Logger, cfg *config.Config, stdout io.Writer) error {
	runID := uuid.NewString()
	log := logger.WithFields(logrus.Fields{
		"run_id": runID,
		"input":  cfg.InputPath,
	})
	start := time.Now()

	store, err := parser.ParseFile(cfg.InputPath)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"lines":   store.Lines,
		"records": store.Len(),
		"dropped": store.Dropped,
	}).Debug("Log parsed")

	summary, err := analyzer.Analyze(store, analyzer.Options{
		Threshold:    cfg.Threshold,
		MatchStatus:  cfg.MatchStatus,
		MatchMessage: cfg.MatchMessage,
	})
	if err != nil {
		return fmt.Errorf("analysis of %s failed: %w", cfg.InputPath, err)
	}

	report.WriteConsole(stdout, summary)

	if err := report.SaveCSV(cfg.OutputPath, summary); err != nil {
		return err
	}

	if cfg.S3.Enabled() {
		s3Storage, err := storage.NewS3Storage(logger, cfg.S3)
		if err != nil {
			return err
		}
		if err := uploadReport(ctx, s3Storage, cfg, runID); err != nil {
			return err
		}
	}

	if cfg.Postgres.Enabled() {
		if err := archiveRun(ctx, logger, cfg, runID, store, summary); err != nil {
			return err
		}
	}

	log.WithFields(logrus.Fields{
		"output":   cfg.OutputPath,
		"duration": time.Since(start).Round(time.Millisecond),
	}).Info("Analysis complete")
	return nil
}

func uploadReport(ctx context.Context, dst storage.Storage, cfg *config.Config, runID string) error {
	data, err := os.ReadFile(cfg.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to read report for upload: %w", err)
	}

	key := storage.ReportKey(cfg.S3.Prefix, runID, cfg.OutputPath)
	return dst.Put(ctx, key, bytes.NewReader(data), "text/csv")
}

func archiveRun(ctx context.Context, logger *logrus.Logger, cfg *config.Config, runID string, store *parser.Store, summary *analyzer.Summary) error {
	db, err := database.NewPostgresDB(ctx, logger, cfg.Postgres)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	archive := database.NewArchive(logger, db, cfg.Archive)
	if err := archive.SaveRun(ctx, runID, cfg.InputPath, store, summary); err != nil {
		return err
	}

	if cfg.Archive.Retention > 0 {
		if _, err := archive.PurgeBefore(ctx, time.Now().Add(-cfg.Archive.Retention)); err != nil {
			return err
		}
	}
	return nil
}
