// Command jobtrackerd serves the job tracker over gRPC.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/fedtech/jobtracker/internal/assist"
	"github.com/fedtech/jobtracker/internal/common"
	"github.com/fedtech/jobtracker/internal/export"
	"github.com/fedtech/jobtracker/internal/jobs"
	"github.com/fedtech/jobtracker/internal/ocr"
	repo "github.com/fedtech/jobtracker/internal/repository"
	"github.com/fedtech/jobtracker/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := common.LoadDotEnv(); err != nil {
		logger.Error("failed to load .env", "error", err)
		os.Exit(1)
	}
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	addr := cfg.Server.GRPCAddr
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repo.Open(ctx, repo.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repo.Close(db, logger)

	if err := repo.HealthCheck(ctx, db, 5*time.Second, logger); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	persister, err := jobs.NewKVPersister(repo.NewKVRepository(db, logger), logger)
	if err != nil {
		logger.Error("failed to build snapshot persister", "error", err)
		os.Exit(1)
	}
	store := jobs.NewStore(persister, logger)
	if err := store.Load(ctx); err != nil {
		logger.Error("failed to load jobs", "error", err)
		os.Exit(1)
	}

	extractor := ocr.NewExtractor(ocr.Config{
		Tesseract:           cfg.OCR.TesseractBin,
		TesseractLang:       cfg.OCR.Language,
		TessdataDir:         cfg.OCR.TessdataDir,
		HeicConverter:       cfg.OCR.HeicConverter,
		EnableTSVConfidence: true,
		ArtifactCacheDir:    cfg.OCR.ArtifactCacheDir,
		Timeout:             cfg.OCR.Timeout,
	}, logger)

	grpcServer, healthServer := server.New(server.Deps{
		Store:    store,
		Text:     assist.NewOCRAdapter(extractor, logger),
		Exporter: export.NewService(store, logger),
		Logger:   logger,
	}, grpc.ConnectionTimeout(10*time.Second))

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", addr, "error", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("jobtrackerd listening", "addr", addr, "dialect", db.Dialect)
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		healthServer.Shutdown()
		done := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(15 * time.Second):
			logger.Warn("graceful stop timed out, forcing")
			grpcServer.Stop()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("gRPC serve error", "error", err)
		os.Exit(1)
	}
}
