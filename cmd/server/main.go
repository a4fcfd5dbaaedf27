package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/zcnl/pesaje/internal/asset"
	"github.com/zcnl/pesaje/internal/config"
	"github.com/zcnl/pesaje/internal/dataset"
	"github.com/zcnl/pesaje/internal/metrics"
	"github.com/zcnl/pesaje/internal/report/pdf"
	"github.com/zcnl/pesaje/internal/repository/excel"
	"github.com/zcnl/pesaje/internal/repository/sheets"
	"github.com/zcnl/pesaje/internal/scheduler"
	"github.com/zcnl/pesaje/internal/server/handlers"
	"github.com/zcnl/pesaje/internal/server/router"
	reportingsvc "github.com/zcnl/pesaje/internal/service/reporting"
	"github.com/zcnl/pesaje/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Env))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	tmpl, err := config.LoadTemplate(cfg.Report.TemplatePath)
	if err != nil {
		baseLogger.Fatal("failed to load report template", zap.Error(err))
	}

	ctx := context.Background()

	source, sheetRange, err := newRowSource(ctx, cfg, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to init dataset source", zap.Error(err))
	}

	ds, err := dataset.Load(ctx, source, sheetRange, tmpl.Area, baseLogger.Named("dataset"))
	if err != nil {
		var sourceErr *dataset.DataSourceError
		if errors.As(err, &sourceErr) {
			baseLogger.Fatal("failed to load weighing dataset",
				zap.String("source", sourceErr.Source),
				zap.Int("row", sourceErr.Row),
				zap.Error(err))
		}
		baseLogger.Fatal("failed to load weighing dataset", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics, err := metrics.New(registry)
	if err != nil {
		baseLogger.Fatal("failed to register metrics", zap.Error(err))
	}

	reportingSvc := reportingsvc.NewService(
		ds,
		asset.NewLoader(baseLogger.Named("asset")),
		pdf.NewRenderer(baseLogger.Named("pdf")),
		tmpl,
		cfg.Report.LogoPath,
		baseLogger.Named("svc.reporting"),
	)
	reportingSvc.SetRecorder(appMetrics)

	reportHandler := handlers.NewReportHandler(reportingSvc, cfg.Reporting.Location(), baseLogger.Named("handlers.report"))
	engine := router.New(reportHandler, appMetrics, baseLogger.Named("router"))

	if cfg.Reporting.CronSchedule != "" {
		sched := scheduler.NewScheduler(cfg.Reporting, reportingSvc, baseLogger.Named("scheduler"))
		if err := sched.Start(); err != nil {
			baseLogger.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer sched.Stop()
	} else {
		baseLogger.Info("report export schedule not configured, scheduler disabled")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting",
			zap.String("port", cfg.Server.Port),
			zap.Int("records", ds.Len()),
			zap.Strings("materials", ds.Materials()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-sigCtx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newRowSource(ctx context.Context, cfg *config.Config, base *zap.Logger) (dataset.RowSource, string, error) {
	switch cfg.Dataset.Source {
	case config.SourceSheets:
		repo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, base.Named("repo.sheets"))
		if err != nil {
			return nil, "", err
		}
		return repo, cfg.Sheets.Range, nil
	default:
		return excel.NewRepository(cfg.Dataset.ExcelPath, base.Named("repo.excel")), cfg.Dataset.ExcelSheet, nil
	}
}
