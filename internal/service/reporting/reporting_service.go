// Package reporting turns filtered weighing records into the Formalización
// PDF report.
package reporting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/zcnl/pesaje/internal/asset"
	"github.com/zcnl/pesaje/internal/config"
	"github.com/zcnl/pesaje/internal/dataset"
	"github.com/zcnl/pesaje/internal/domain/models"
	"github.com/zcnl/pesaje/internal/metrics"
	"github.com/zcnl/pesaje/internal/report/pdf"
)

const contentTypePDF = "application/pdf"

// AssetLoader fetches the logo image.
type AssetLoader interface {
	Load(ctx context.Context, location string) (*asset.Image, error)
}

// Renderer draws a composed sheet into a verified PDF.
type Renderer interface {
	Render(sheet pdf.Sheet) (*pdf.Output, error)
}

// Recorder receives the outcome of each build.
type Recorder interface {
	ObserveReport(status string, elapsed time.Duration)
}

// Service builds weighing reports from an in-memory dataset.
type Service struct {
	dataset  *dataset.Dataset
	assets   AssetLoader
	renderer Renderer
	template config.ReportTemplate
	logoPath string
	recorder Recorder
	compose  func(pdf.Content) pdf.Sheet
	now      func() time.Time
	logger   *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(ds *dataset.Dataset, assets AssetLoader, renderer Renderer, tmpl config.ReportTemplate, logoPath string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		dataset:  ds,
		assets:   assets,
		renderer: renderer,
		template: tmpl,
		logoPath: logoPath,
		compose:  pdf.Compose,
		now:      time.Now,
		logger:   logger,
	}
}

// SetRecorder attaches a metrics recorder. A nil recorder disables recording.
func (s *Service) SetRecorder(r Recorder) {
	s.recorder = r
}

// Materials lists the selectable materials of the dataset.
func (s *Service) Materials() []string {
	return s.dataset.Materials()
}

// Operators lists the operators allowed to sign a report.
func (s *Service) Operators() []string {
	out := make([]string, len(s.template.Operators))
	copy(out, s.template.Operators)
	return out
}

// Preview returns the records a report for material would contain.
func (s *Service) Preview(material string) []models.WeighRecord {
	return s.dataset.FilterByMaterial(material)
}

// ValidateRequest checks a request against the dataset and the template.
func (s *Service) ValidateRequest(req models.ReportRequest) error {
	if req.Date.IsZero() {
		return invalidRequest("date is required")
	}
	if req.Material == "" {
		return invalidRequest("material is required")
	}
	if !s.dataset.HasMaterial(req.Material) {
		return invalidRequest("unknown material %q", req.Material)
	}
	if !s.template.IsOperator(req.Operator) {
		return invalidRequest("unknown operator %q", req.Operator)
	}
	return nil
}

// Generate validates req, filters the dataset by its material and builds the
// report.
func (s *Service) Generate(ctx context.Context, req models.ReportRequest) (*models.ReportDocument, error) {
	if err := s.ValidateRequest(req); err != nil {
		return nil, err
	}
	return s.BuildReport(ctx, s.dataset.FilterByMaterial(req.Material), req)
}

// BuildReport renders the report for an already filtered record selection.
// It returns either a complete document or an error, never a partial buffer.
func (s *Service) BuildReport(ctx context.Context, records []models.WeighRecord, req models.ReportRequest) (doc *models.ReportDocument, err error) {
	start := s.now()
	defer func() {
		s.observe(err, s.now().Sub(start))
	}()

	summary, err := Summarize(records)
	if err != nil {
		return nil, err
	}

	logo, err := s.assets.Load(ctx, s.logoPath)
	if err != nil {
		if errors.Is(err, asset.ErrAssetNotFound) {
			return nil, fmt.Errorf("load logo: %w", err)
		}
		return nil, &BuildError{Stage: StageLogo, Err: err}
	}

	out, err := s.render(records, req, summary, logo)
	if err != nil {
		return nil, err
	}

	s.logger.Info("report built",
		zap.String("material", req.Material),
		zap.String("operator", req.Operator),
		zap.String("date", req.Date.Format("2006-01-02")),
		zap.Int("trucks", summary.Trucks),
		zap.Int("pages", out.Pages),
	)

	return &models.ReportDocument{
		FileName:    s.template.FileName,
		ContentType: contentTypePDF,
		Bytes:       out.Bytes,
		Pages:       out.Pages,
	}, nil
}

// render lays out and draws the document. A panic at any point of the layout
// becomes a BuildError.
func (s *Service) render(records []models.WeighRecord, req models.ReportRequest, summary models.ReportSummary, logo *asset.Image) (out *pdf.Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &BuildError{Stage: StageLayout, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	details, totals := TruckDetails(records, s.template.DetailMinRows)
	sheet := s.compose(pdf.Content{
		Request:  req,
		Summary:  summary,
		Details:  details,
		Totals:   totals,
		Template: s.template,
		Logo:     logo,
	})

	out, err = s.renderer.Render(sheet)
	if err != nil {
		return nil, &BuildError{Stage: StageWrite, Err: err}
	}
	if out == nil || len(out.Bytes) == 0 || out.Pages < 1 {
		return nil, &BuildError{Stage: StageWrite, Err: errors.New("renderer returned an empty document")}
	}
	return out, nil
}

func (s *Service) observe(err error, elapsed time.Duration) {
	if s.recorder == nil {
		return
	}
	status := metrics.StatusSuccess
	switch {
	case errors.Is(err, ErrEmptyDataset):
		status = metrics.StatusEmpty
	case err != nil:
		status = metrics.StatusError
	}
	s.recorder.ObserveReport(status, elapsed)
}
