package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/zcnl/pesaje/internal/config"
	"github.com/zcnl/pesaje/internal/domain/models"
)

const exportTimeout = 5 * time.Minute

// ReportGenerator is the subset of the reporting service used by the export job.
type ReportGenerator interface {
	Materials() []string
	Operators() []string
	Generate(ctx context.Context, req models.ReportRequest) (*models.ReportDocument, error)
}

// Scheduler periodically exports one report per material to disk.
type Scheduler struct {
	cron      *cron.Cron
	generator ReportGenerator
	cfg       config.ReportingConfig
	location  *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg config.ReportingConfig, generator ReportGenerator, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc := cfg.Location()

	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		generator: generator,
		cfg:       cfg,
		location:  loc,
		now:       time.Now,
		logger:    logger,
	}
}

// Start registers the export job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.runExport); err != nil {
		return fmt.Errorf("schedule report export %q: %w", s.cfg.CronSchedule, err)
	}

	s.logger.Info("starting scheduler",
		zap.String("schedule", s.cfg.CronSchedule),
		zap.String("timezone", s.location.String()),
		zap.String("export_dir", s.cfg.ExportDir),
	)
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running export to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runExport() {
	ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
	defer cancel()

	written, err := s.ExportAll(ctx)
	if err != nil {
		s.logger.Error("report export finished with errors", zap.Int("written", len(written)), zap.Error(err))
		return
	}
	s.logger.Info("report export finished", zap.Int("written", len(written)))
}

// ExportAll builds today's report for every material and writes each one to
// the export directory. A failing material does not stop the others; the
// returned error joins every failure.
func (s *Scheduler) ExportAll(ctx context.Context) ([]string, error) {
	operators := s.generator.Operators()
	if len(operators) == 0 {
		return nil, errors.New("no operator configured for scheduled export")
	}

	if err := os.MkdirAll(s.cfg.ExportDir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	now := s.now().In(s.location)
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var (
		written []string
		errs    []error
	)
	for _, material := range s.generator.Materials() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		req := models.ReportRequest{Date: date, Material: material, Operator: operators[0]}
		path, err := s.export(ctx, req)
		if err != nil {
			s.logger.Error("export report", zap.String("material", material), zap.Error(err))
			errs = append(errs, fmt.Errorf("export %s: %w", material, err))
			continue
		}
		written = append(written, path)
	}

	return written, errors.Join(errs...)
}

func (s *Scheduler) export(ctx context.Context, req models.ReportRequest) (string, error) {
	doc, err := s.generator.Generate(ctx, req)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s_%s_%s", req.Date.Format("2006-01-02"), fileSafe(req.Material), doc.FileName)
	path := filepath.Join(s.cfg.ExportDir, name)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, doc.Bytes, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("rename %s: %w", tmp, err)
	}

	s.logger.Debug("report exported", zap.String("path", path), zap.Int("pages", doc.Pages))
	return path, nil
}

func fileSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, strings.TrimSpace(s))
}
