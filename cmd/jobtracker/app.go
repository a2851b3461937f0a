package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fedtech/jobtracker/internal/assist"
	"github.com/fedtech/jobtracker/internal/common"
	"github.com/fedtech/jobtracker/internal/jobs"
	"github.com/fedtech/jobtracker/internal/ocr"
	"github.com/fedtech/jobtracker/internal/repository"
)

// app holds everything a subcommand may need. The store is loaded on open.
type app struct {
	cfg    *common.Config
	logger *slog.Logger
	db     *repository.DB
	store  *jobs.Store
}

func openApp(ctx context.Context) (*app, error) {
	cfg := common.LoadConfig()
	if dbURL != "" {
		cfg.Database.DSN = dbURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := slog.Default()

	db, err := repository.Open(ctx, repository.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	persister, err := jobs.NewKVPersister(repository.NewKVRepository(db, logger), logger)
	if err != nil {
		repository.Close(db, logger)
		return nil, err
	}
	store := jobs.NewStore(persister, logger)
	if err := store.Load(ctx); err != nil {
		repository.Close(db, logger)
		return nil, fmt.Errorf("load jobs: %w", err)
	}
	return &app{cfg: cfg, logger: logger, db: db, store: store}, nil
}

func (a *app) Close() {
	repository.Close(a.db, a.logger)
}

func (a *app) ocrAdapter() *assist.OCRAdapter {
	e := ocr.NewExtractor(ocr.Config{
		Tesseract:        a.cfg.OCR.TesseractBin,
		TesseractLang:    a.cfg.OCR.Language,
		TessdataDir:      a.cfg.OCR.TessdataDir,
		HeicConverter:    a.cfg.OCR.HeicConverter,
		ArtifactCacheDir: a.cfg.OCR.ArtifactCacheDir,
		Timeout:          a.cfg.OCR.Timeout,
	}, a.logger)
	return assist.NewOCRAdapter(e, a.logger)
}
