package excel

import (
	"context"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Repository reads worksheet rows from a local .xlsx workbook.
type Repository struct {
	path   string
	logger *zap.Logger
}

// NewRepository builds a workbook reader. The file is opened on every read so
// the caller decides when the table is loaded.
func NewRepository(path string, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{path: path, logger: logger}
}

// ReadRange returns every row of the named sheet with raw cell values: dates
// and times stay as serial numbers. An empty sheet name selects the first sheet.
func (r *Repository) ReadRange(ctx context.Context, sheet string) ([][]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(r.path); err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", r.path, err)
	}

	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", r.path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			r.logger.Warn("failed to close workbook", zap.String("path", r.path), zap.Error(err))
		}
	}()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", r.path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	out := make([][]interface{}, 0, len(rows))
	for _, row := range rows {
		cells := make([]interface{}, len(row))
		for i, cell := range row {
			cells[i] = cell
		}
		out = append(out, cells)
	}

	r.logger.Debug("workbook sheet read", zap.String("path", r.path), zap.String("sheet", sheet), zap.Int("rows", len(out)))
	return out, nil
}
