// Package dataset loads the weighing control table and filters it.
package dataset

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/zcnl/pesaje/internal/domain/models"
)

// Column titles of the weighing control sheet.
const (
	ColumnArea      = "Area"
	ColumnFecha     = "Fecha"
	ColumnMaterial  = "Material"
	ColumnHora      = "Hora"
	ColumnPlaca     = "Placa"
	ColumnPesoTara  = "Peso Tara (Kg)"
	ColumnPesoBruto = "Peso Bruto (Kg)"
	ColumnPesoNeto  = "Peso Neto (Kg)"
)

var requiredColumns = []string{
	ColumnArea,
	ColumnFecha,
	ColumnMaterial,
	ColumnHora,
	ColumnPesoTara,
	ColumnPesoBruto,
	ColumnPesoNeto,
}

// RowSource is anything that can hand back a rectangular block of cells.
type RowSource interface {
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
}

// Dataset is the immutable set of weighing records of one area. It is built
// once at startup and shared read-only between requests.
type Dataset struct {
	area      string
	records   []models.WeighRecord
	materials []string
}

// New wraps already parsed records; records whose Area differs from area are dropped.
func New(area string, records []models.WeighRecord) *Dataset {
	kept := make([]models.WeighRecord, 0, len(records))
	for _, rec := range records {
		if rec.Area == area {
			kept = append(kept, rec)
		}
	}
	return &Dataset{area: area, records: kept, materials: distinctMaterials(kept)}
}

// Load reads the table from source and restricts it to area. Every failure is
// returned as a *DataSourceError.
func Load(ctx context.Context, source RowSource, sheetRange, area string, logger *zap.Logger) (*Dataset, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if source == nil {
		return nil, &DataSourceError{Source: sheetRange, Err: errors.New("no row source configured")}
	}

	rows, err := source.ReadRange(ctx, sheetRange)
	if err != nil {
		return nil, &DataSourceError{Source: sheetRange, Err: err}
	}

	headerRow, columns, err := locateHeader(rows)
	if err != nil {
		return nil, &DataSourceError{Source: sheetRange, Err: err}
	}

	var (
		records []models.WeighRecord
		skipped int
	)
	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}

		if cellString(columns.cell(row, ColumnArea)) != area {
			skipped++
			continue
		}

		rec, err := columns.record(row)
		if err != nil {
			return nil, &DataSourceError{Source: sheetRange, Row: i + 1, Err: err}
		}
		records = append(records, rec)
	}

	logger.Info("weighing table loaded",
		zap.String("source", sheetRange),
		zap.String("area", area),
		zap.Int("records", len(records)),
		zap.Int("other_areas", skipped))

	return &Dataset{area: area, records: records, materials: distinctMaterials(records)}, nil
}

// Area returns the area the dataset was restricted to.
func (d *Dataset) Area() string {
	return d.area
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.records)
}

// Records returns a copy of every record in load order.
func (d *Dataset) Records() []models.WeighRecord {
	out := make([]models.WeighRecord, len(d.records))
	copy(out, d.records)
	return out
}

// Materials lists the distinct materials in order of first appearance.
func (d *Dataset) Materials() []string {
	out := make([]string, len(d.materials))
	copy(out, d.materials)
	return out
}

// HasMaterial reports whether material occurs in the dataset.
func (d *Dataset) HasMaterial(material string) bool {
	for _, m := range d.materials {
		if m == material {
			return true
		}
	}
	return false
}

// FilterByMaterial returns the records of one material.
func (d *Dataset) FilterByMaterial(material string) []models.WeighRecord {
	return FilterByMaterial(d.records, material)
}

// FilterByMaterial returns the subsequence of records whose Material equals
// material, preserving order. The input is never modified.
func FilterByMaterial(records []models.WeighRecord, material string) []models.WeighRecord {
	out := make([]models.WeighRecord, 0, len(records))
	for _, rec := range records {
		if rec.Material == material {
			out = append(out, rec)
		}
	}
	return out
}

func distinctMaterials(records []models.WeighRecord) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, rec := range records {
		if _, ok := seen[rec.Material]; ok {
			continue
		}
		seen[rec.Material] = struct{}{}
		out = append(out, rec.Material)
	}
	return out
}

type columnIndex map[string]int

// locateHeader takes the first non-blank row as the header and checks that
// every required column is present.
func locateHeader(rows [][]interface{}) (int, columnIndex, error) {
	for i, row := range rows {
		if isBlank(row) {
			continue
		}

		byKey := make(map[string]int, len(row))
		for j, cell := range row {
			key := headerKey(cellString(cell))
			if _, dup := byKey[key]; !dup && key != "" {
				byKey[key] = j
			}
		}

		columns := make(columnIndex)
		var missing []string
		for _, name := range requiredColumns {
			idx, ok := byKey[headerKey(name)]
			if !ok {
				missing = append(missing, name)
				continue
			}
			columns[name] = idx
		}
		if idx, ok := byKey[headerKey(ColumnPlaca)]; ok {
			columns[ColumnPlaca] = idx
		}
		if len(missing) > 0 {
			return 0, nil, fmt.Errorf("missing columns %v", missing)
		}
		return i, columns, nil
	}
	return 0, nil, errors.New("table has no header row")
}

func (c columnIndex) cell(row []interface{}, column string) interface{} {
	idx, ok := c[column]
	if !ok || idx >= len(row) {
		return nil
	}
	return row[idx]
}

func (c columnIndex) record(row []interface{}) (models.WeighRecord, error) {
	fecha, err := parseDate(c.cell(row, ColumnFecha))
	if err != nil {
		return models.WeighRecord{}, fmt.Errorf("column %s: %w", ColumnFecha, err)
	}
	var hora models.TimeOfDay
	horaMissing := cellString(c.cell(row, ColumnHora)) == ""
	if !horaMissing {
		hora, err = parseClock(c.cell(row, ColumnHora))
		if err != nil {
			return models.WeighRecord{}, fmt.Errorf("column %s: %w", ColumnHora, err)
		}
	}
	tara, err := parseWeight(c.cell(row, ColumnPesoTara))
	if err != nil {
		return models.WeighRecord{}, fmt.Errorf("column %s: %w", ColumnPesoTara, err)
	}
	bruto, err := parseWeight(c.cell(row, ColumnPesoBruto))
	if err != nil {
		return models.WeighRecord{}, fmt.Errorf("column %s: %w", ColumnPesoBruto, err)
	}
	neto, err := parseWeight(c.cell(row, ColumnPesoNeto))
	if err != nil {
		return models.WeighRecord{}, fmt.Errorf("column %s: %w", ColumnPesoNeto, err)
	}

	return models.WeighRecord{
		Area:        cellString(c.cell(row, ColumnArea)),
		Fecha:       fecha,
		Material:    cellString(c.cell(row, ColumnMaterial)),
		Hora:        hora,
		HoraMissing: horaMissing,
		Placa:       cellString(c.cell(row, ColumnPlaca)),
		PesoTaraKg:  tara,
		PesoBrutoKg: bruto,
		PesoNetoKg:  neto,
	}, nil
}

func isBlank(row []interface{}) bool {
	for _, cell := range row {
		if cellString(cell) != "" {
			return false
		}
	}
	return true
}
