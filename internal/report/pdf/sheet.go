// Package pdf lays out and renders the weighing report.
package pdf

import (
	"github.com/johnfercher/maroto/v2/pkg/consts/align"

	"github.com/zcnl/pesaje/internal/asset"
	appconfig "github.com/zcnl/pesaje/internal/config"
	"github.com/zcnl/pesaje/internal/domain/models"
)

// GridSize is the number of grid units across the content width.
const GridSize = 60

const fechaLayout = "02/01/2006"

// Table names, in document order.
const (
	TableMetadata  = "metadata"
	TableTotals    = "totals"
	TableSignature = "signature"
	TableDetail    = "detail"
)

// Content is everything needed to lay out one report.
type Content struct {
	Request  models.ReportRequest
	Summary  models.ReportSummary
	Details  []models.TruckDetail
	Totals   models.TruckDetailTotals
	Template appconfig.ReportTemplate
	Logo     *asset.Image
}

// Table is a bordered grid of text cells. Columns holds grid units per column
// and must add up to GridSize.
type Table struct {
	Name      string
	Columns   []int
	Align     []align.Type
	Rows      [][]string
	RowHeight []float64
	Shaded    int // leading rows drawn on the light-gray background
	FontSize  float64
}

// Sheet is the complete, render-ready structure of a report.
type Sheet struct {
	Title        []string
	Author       string
	Logo         *asset.Image
	Tables       []Table
	Observations []string
}

// Cell returns the text at row r, column c, or "" when out of range.
func (t Table) Cell(r, c int) string {
	if r < 0 || r >= len(t.Rows) || c < 0 || c >= len(t.Rows[r]) {
		return ""
	}
	return t.Rows[r][c]
}

// TablesNamed returns the tables with the given name in document order.
func (s Sheet) TablesNamed(name string) []Table {
	var out []Table
	for _, t := range s.Tables {
		if t.Name == name {
			out = append(out, t)
		}
	}
	return out
}

// Compose builds the report structure. It performs no I/O.
func Compose(c Content) Sheet {
	tmpl := c.Template

	tables := []Table{
		metadataTable(c),
		totalsTable(c.Summary),
	}
	for _, sig := range tmpl.Signatures {
		tables = append(tables, signatureTable(sig))
	}
	tables = append(tables, detailTable(c.Details, c.Totals))

	return Sheet{
		Title:        tmpl.Title,
		Author:       c.Request.Operator,
		Logo:         c.Logo,
		Tables:       tables,
		Observations: tmpl.Observations,
	}
}

func metadataTable(c Content) Table {
	meta := c.Template.Metadata
	return Table{
		Name:    TableMetadata,
		Columns: []int{15, 15, 15, 15},
		Align:   []align.Type{align.Left, align.Left, align.Left, align.Left},
		Rows: [][]string{
			{"Fecha (dd/mm/aa):", c.Request.Date.Format(fechaLayout), "Material:", c.Request.Material},
			{"Encargado Pesaje FM:", c.Request.Operator, "Frente (s) de explotación:", meta.Frentes},
			{"Hora inicio:", c.Summary.HoraInicioLabel(), "Lugar del pesaje:", meta.LugarPesaje},
			{"Hora fin:", c.Summary.HoraFinLabel(), "Lugar de recepción y muestreo:", meta.LugarRecepcion},
		},
		RowHeight: []float64{10, 10, 10, 10},
		Shaded:    1,
		FontSize:  9,
	}
}

func totalsTable(s models.ReportSummary) Table {
	return Table{
		Name:    TableTotals,
		Columns: []int{10, 10, 10, 10, 10, 10},
		Align:   []align.Type{align.Left, align.Center, align.Left, align.Center, align.Left, align.Center},
		Rows: [][]string{{
			"Total peso camiones vacíos (Ton):", s.TotalTara.StringFixed(2),
			"Total peso camiones cargados (Ton):", s.TotalBruto.StringFixed(2),
			"Peso total del material pesado (Ton):", s.TotalNeto.StringFixed(2),
		}},
		RowHeight: []float64{14},
		Shaded:    1,
		FontSize:  8,
	}
}

func signatureTable(sig appconfig.SignatureText) Table {
	return Table{
		Name:      TableSignature,
		Columns:   []int{15, 15, 15, 15},
		Align:     []align.Type{align.Center, align.Center, align.Center, align.Center},
		Rows:      [][]string{{sig.NameLabel, "", sig.SignatureLabel, ""}},
		RowHeight: []float64{16},
		FontSize:  9,
	}
}

func detailTable(details []models.TruckDetail, totals models.TruckDetailTotals) Table {
	rows := [][]string{{"Hora pesaje", "Placa", "Peso volqueta vacia", "Peso volqueta llena", "Total"}}
	for _, d := range details {
		if d.Blank {
			rows = append(rows, []string{"", "", "", "", "0"})
			continue
		}
		rows = append(rows, []string{d.Hora, d.Placa, d.TaraKg.String(), d.BrutoKg.String(), d.NetoKg.String()})
	}
	rows = append(rows, []string{"TOTAL", "", totals.TaraKg.String(), totals.BrutoKg.String(), totals.NetoKg.String()})

	heights := make([]float64, len(rows))
	for i := range heights {
		heights[i] = 7
	}

	return Table{
		Name:      TableDetail,
		Columns:   []int{12, 12, 12, 12, 12},
		Align:     []align.Type{align.Center, align.Center, align.Center, align.Center, align.Center},
		Rows:      rows,
		RowHeight: heights,
		Shaded:    1,
		FontSize:  8,
	}
}
