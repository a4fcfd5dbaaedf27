package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zcnl/pesaje/internal/asset"
	"github.com/zcnl/pesaje/internal/domain/models"
	"github.com/zcnl/pesaje/internal/service/reporting"
)

type mockReportService struct {
	mock.Mock
}

func (m *mockReportService) Materials() []string {
	return m.Called().Get(0).([]string)
}

func (m *mockReportService) Operators() []string {
	return m.Called().Get(0).([]string)
}

func (m *mockReportService) Preview(material string) []models.WeighRecord {
	return m.Called(material).Get(0).([]models.WeighRecord)
}

func (m *mockReportService) Generate(ctx context.Context, req models.ReportRequest) (*models.ReportDocument, error) {
	args := m.Called(ctx, req)
	doc, _ := args.Get(0).(*models.ReportDocument)
	return doc, args.Error(1)
}

func newEngine(h *ReportHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/form", h.Form)
	r.GET("/records", h.Records)
	r.POST("/reports", h.Create)
	return r
}

func oroRequest() models.ReportRequest {
	return models.ReportRequest{
		Date:     time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		Material: "Oro",
		Operator: "Camilo Gonzalez",
	}
}

func TestForm(t *testing.T) {
	svc := new(mockReportService)
	svc.On("Materials").Return([]string{"Oro", "Plata"})
	svc.On("Operators").Return([]string{"Camilo Gonzalez", "Melissa"})

	loc, err := time.LoadLocation("America/Bogota")
	require.NoError(t, err)
	h := NewReportHandler(svc, loc, nil)
	h.now = func() time.Time { return time.Date(2024, time.January, 16, 3, 0, 0, 0, time.UTC) }

	rec := httptest.NewRecorder()
	newEngine(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/form", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Materials   []string `json:"materials"`
		Operators   []string `json:"operators"`
		DefaultDate string   `json:"default_date"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"Oro", "Plata"}, body.Materials)
	assert.Equal(t, []string{"Camilo Gonzalez", "Melissa"}, body.Operators)
	assert.Equal(t, "2024-01-15", body.DefaultDate)
}

func TestRecords(t *testing.T) {
	svc := new(mockReportService)
	svc.On("Preview", "Oro").Return([]models.WeighRecord{{
		Area:        models.AreaFormalizacion,
		Fecha:       time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		Material:    "Oro",
		Hora:        models.NewTimeOfDay(9, 20, 0),
		Placa:       "ABC123",
		PesoTaraKg:  decimal.NewFromInt(11500),
		PesoBrutoKg: decimal.NewFromInt(37980),
		PesoNetoKg:  decimal.NewFromInt(26480),
	}})

	rec := httptest.NewRecorder()
	newEngine(NewReportHandler(svc, nil, nil)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/records?material=Oro", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Count   int          `json:"count"`
		Records []recordView `json:"records"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, recordView{
		Fecha:       "2024-01-15",
		Hora:        "09:20",
		Material:    "Oro",
		Placa:       "ABC123",
		PesoTaraKg:  "11500",
		PesoBrutoKg: "37980",
		PesoNetoKg:  "26480",
	}, body.Records[0])
}

func TestRecords_MissingMaterial(t *testing.T) {
	svc := new(mockReportService)

	rec := httptest.NewRecorder()
	newEngine(NewReportHandler(svc, nil, nil)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/records", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Preview", mock.Anything)
}

func TestCreate_JSON(t *testing.T) {
	svc := new(mockReportService)
	svc.On("Generate", mock.Anything, oroRequest()).Return(&models.ReportDocument{
		FileName:    "datos_filtrados.pdf",
		ContentType: "application/pdf",
		Bytes:       []byte("%PDF-1.3 test"),
		Pages:       1,
	}, nil)

	body := `{"date":"2024-01-15","material":"Oro","operator":"Camilo Gonzalez"}`
	req := httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	newEngine(NewReportHandler(svc, nil, nil)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="datos_filtrados.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.3 test", rec.Body.String())
	svc.AssertExpectations(t)
}

func TestCreate_Form(t *testing.T) {
	svc := new(mockReportService)
	svc.On("Generate", mock.Anything, oroRequest()).Return(&models.ReportDocument{
		FileName:    "datos_filtrados.pdf",
		ContentType: "application/pdf",
		Bytes:       []byte("%PDF-"),
		Pages:       1,
	}, nil)

	form := url.Values{"date": {"2024-01-15"}, "material": {"Oro"}, "operator": {"Camilo Gonzalez"}}
	req := httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	newEngine(NewReportHandler(svc, nil, nil)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreate_BadPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing operator", body: `{"date":"2024-01-15","material":"Oro"}`},
		{name: "bad date", body: `{"date":"15/01/2024","material":"Oro","operator":"Melissa"}`},
		{name: "not json", body: `date=2024`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockReportService)
			req := httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			newEngine(NewReportHandler(svc, nil, nil)).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			svc.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
		})
	}
}

func TestCreate_ServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "invalid request", err: fmt.Errorf("%w: unknown operator", reporting.ErrInvalidRequest), status: http.StatusBadRequest},
		{name: "empty selection", err: reporting.ErrEmptyDataset, status: http.StatusUnprocessableEntity},
		{name: "logo missing", err: fmt.Errorf("load logo: %w", asset.ErrAssetNotFound), status: http.StatusInternalServerError},
		{name: "build failure", err: &reporting.BuildError{Stage: reporting.StageWrite, Err: errors.New("boom")}, status: http.StatusInternalServerError},
		{name: "unexpected", err: errors.New("disk on fire"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockReportService)
			svc.On("Generate", mock.Anything, mock.Anything).Return(nil, tt.err)

			body := `{"date":"2024-01-15","material":"Oro","operator":"Camilo Gonzalez"}`
			req := httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			engine := newEngine(NewReportHandler(svc, nil, nil))
			engine.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			var payload map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
			assert.NotEmpty(t, payload["error"])

			// The handler keeps serving after a failed build.
			svc.On("Materials").Return([]string{"Oro"})
			svc.On("Operators").Return([]string{"Melissa"})
			next := httptest.NewRecorder()
			engine.ServeHTTP(next, httptest.NewRequest(http.MethodGet, "/form", nil))
			assert.Equal(t, http.StatusOK, next.Code)
		})
	}
}
