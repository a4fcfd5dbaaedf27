package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zcnl/pesaje/internal/asset"
	"github.com/zcnl/pesaje/internal/domain/models"
	"github.com/zcnl/pesaje/internal/service/reporting"
)

const dateLayout = "2006-01-02"

// ReportService is the reporting surface exposed over HTTP.
type ReportService interface {
	Materials() []string
	Operators() []string
	Preview(material string) []models.WeighRecord
	Generate(ctx context.Context, req models.ReportRequest) (*models.ReportDocument, error)
}

// ReportHandler serves the form choices, the record preview and the PDF download.
type ReportHandler struct {
	service  ReportService
	location *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewReportHandler creates a report handler. Default dates are computed in loc.
func NewReportHandler(service ReportService, loc *time.Location, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ReportHandler{service: service, location: loc, now: time.Now, logger: logger}
}

type reportRequest struct {
	Date     string `json:"date" form:"date" binding:"required"`
	Material string `json:"material" form:"material" binding:"required"`
	Operator string `json:"operator" form:"operator" binding:"required"`
}

type recordView struct {
	Fecha       string `json:"fecha"`
	Hora        string `json:"hora"`
	Material    string `json:"material"`
	Placa       string `json:"placa,omitempty"`
	PesoTaraKg  string `json:"peso_tara_kg"`
	PesoBrutoKg string `json:"peso_bruto_kg"`
	PesoNetoKg  string `json:"peso_neto_kg"`
}

// Form returns the three selectable inputs of a report.
func (h *ReportHandler) Form(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"materials":    h.service.Materials(),
		"operators":    h.service.Operators(),
		"default_date": h.now().In(h.location).Format(dateLayout),
	})
}

// Records previews the records of one material.
func (h *ReportHandler) Records(c *gin.Context) {
	material := c.Query("material")
	if material == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "material query parameter is required"})
		return
	}

	records := h.service.Preview(material)
	views := make([]recordView, 0, len(records))
	for _, r := range records {
		views = append(views, recordView{
			Fecha:       r.Fecha.Format(dateLayout),
			Hora:        r.HoraLabel(),
			Material:    r.Material,
			Placa:       r.Placa,
			PesoTaraKg:  r.PesoTaraKg.String(),
			PesoBrutoKg: r.PesoBrutoKg.String(),
			PesoNetoKg:  r.PesoNetoKg.String(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"material": material,
		"count":    len(views),
		"records":  views,
	})
}

// Create builds a report and returns it as a PDF attachment.
func (h *ReportHandler) Create(c *gin.Context) {
	var payload reportRequest
	if err := c.ShouldBind(&payload); err != nil {
		h.logger.Warn("invalid report payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "date, material and operator are required"})
		return
	}

	date, err := time.Parse(dateLayout, payload.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("date must use the %s layout", dateLayout)})
		return
	}

	req := models.ReportRequest{Date: date, Material: payload.Material, Operator: payload.Operator}
	doc, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		status, message := errorResponse(err)
		h.logger.Error("failed to generate report",
			zap.String("material", req.Material),
			zap.String("operator", req.Operator),
			zap.Int("status", status),
			zap.Error(err),
		)
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	c.Data(http.StatusOK, doc.ContentType, doc.Bytes)
}

func errorResponse(err error) (int, string) {
	var buildErr *reporting.BuildError
	switch {
	case errors.Is(err, reporting.ErrInvalidRequest):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, reporting.ErrEmptyDataset):
		return http.StatusUnprocessableEntity, "no hay registros para el material seleccionado"
	case errors.Is(err, asset.ErrAssetNotFound):
		return http.StatusInternalServerError, "no se encontró el logo del reporte"
	case errors.As(err, &buildErr):
		return http.StatusInternalServerError, "no se pudo generar el PDF"
	default:
		return http.StatusInternalServerError, "error inesperado al generar el reporte"
	}
}
