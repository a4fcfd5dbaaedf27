package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zcnl/pesaje/internal/config"
	"github.com/zcnl/pesaje/internal/domain/models"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Materials() []string {
	return m.Called().Get(0).([]string)
}

func (m *mockGenerator) Operators() []string {
	return m.Called().Get(0).([]string)
}

func (m *mockGenerator) Generate(ctx context.Context, req models.ReportRequest) (*models.ReportDocument, error) {
	args := m.Called(ctx, req)
	doc, _ := args.Get(0).(*models.ReportDocument)
	return doc, args.Error(1)
}

func pdfDoc(body string) *models.ReportDocument {
	return &models.ReportDocument{
		FileName:    "datos_filtrados.pdf",
		ContentType: "application/pdf",
		Bytes:       []byte(body),
		Pages:       1,
	}
}

func newTestScheduler(t *testing.T, gen ReportGenerator) (*Scheduler, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "exports")
	s := NewScheduler(config.ReportingConfig{
		CronSchedule: "0 18 * * *",
		Timezone:     "America/Bogota",
		ExportDir:    dir,
	}, gen, nil)
	// 2024-01-16 03:00 UTC is still the 15th in Bogota.
	s.now = func() time.Time { return time.Date(2024, time.January, 16, 3, 0, 0, 0, time.UTC) }
	return s, dir
}

func TestExportAll_WritesOneFilePerMaterial(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("Operators").Return([]string{"Camilo Gonzalez", "Melissa"})
	gen.On("Materials").Return([]string{"Oro", "Mineral Plata"})
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(r models.ReportRequest) bool {
		return r.Material == "Oro"
	})).Return(pdfDoc("%PDF-oro"), nil)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(r models.ReportRequest) bool {
		return r.Material == "Mineral Plata"
	})).Return(pdfDoc("%PDF-plata"), nil)

	s, dir := newTestScheduler(t, gen)

	written, err := s.ExportAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "2024-01-15_Oro_datos_filtrados.pdf"),
		filepath.Join(dir, "2024-01-15_Mineral_Plata_datos_filtrados.pdf"),
	}, written)

	data, err := os.ReadFile(written[0])
	require.NoError(t, err)
	assert.Equal(t, "%PDF-oro", string(data))

	for _, call := range gen.Calls {
		if call.Method != "Generate" {
			continue
		}
		req := call.Arguments.Get(1).(models.ReportRequest)
		assert.Equal(t, "Camilo Gonzalez", req.Operator)
		assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), req.Date)
	}
}

func TestExportAll_ContinuesAfterFailure(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("Operators").Return([]string{"Melissa"})
	gen.On("Materials").Return([]string{"Oro", "Plata"})
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(r models.ReportRequest) bool {
		return r.Material == "Oro"
	})).Return(nil, errors.New("asset not found"))
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(r models.ReportRequest) bool {
		return r.Material == "Plata"
	})).Return(pdfDoc("%PDF-plata"), nil)

	s, dir := newTestScheduler(t, gen)

	written, err := s.ExportAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "export Oro")
	assert.Equal(t, []string{filepath.Join(dir, "2024-01-15_Plata_datos_filtrados.pdf")}, written)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestExportAll_NoOperators(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("Operators").Return([]string{})

	s, _ := newTestScheduler(t, gen)

	_, err := s.ExportAll(context.Background())
	require.Error(t, err)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestExportAll_CancelledContext(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("Operators").Return([]string{"Melissa"})
	gen.On("Materials").Return([]string{"Oro"})

	s, _ := newTestScheduler(t, gen)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	written, err := s.ExportAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, written)
}

func TestStart_InvalidSchedule(t *testing.T) {
	s := NewScheduler(config.ReportingConfig{CronSchedule: "every day", Timezone: "UTC"}, new(mockGenerator), nil)
	err := s.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schedule report export")
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(config.ReportingConfig{CronSchedule: "0 18 * * *", Timezone: "UTC", ExportDir: t.TempDir()}, new(mockGenerator), nil)
	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 1)
	s.Stop()
}

func TestFileSafe(t *testing.T) {
	assert.Equal(t, "Oro", fileSafe("Oro"))
	assert.Equal(t, "Mineral_Plata", fileSafe(" Mineral Plata "))
	assert.Equal(t, "Au_Ag", fileSafe("Au/Ag"))
}
