package pdf

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"go.uber.org/zap"

	"github.com/zcnl/pesaje/internal/asset"
)

// Page geometry in millimetres: US Letter with half-inch margins.
const (
	marginMM       = 12.7
	headerHeightMM = 22
	spacerMM       = 5
	paragraphGapMM = 3
)

var (
	// ErrMissingLogo is returned when a sheet is rendered without a logo.
	ErrMissingLogo = errors.New("report logo is required")
	// ErrInvalidTable is returned when a table does not fit the grid.
	ErrInvalidTable = errors.New("invalid report table")
)

var (
	lightGray = &props.Color{Red: 211, Green: 211, Blue: 211}
	black     = &props.Color{Red: 0, Green: 0, Blue: 0}

	plainCell = &props.Cell{
		BorderType:      border.Full,
		BorderColor:     black,
		BorderThickness: 0.2,
	}
	shadedCell = &props.Cell{
		BackgroundColor: lightGray,
		BorderType:      border.Full,
		BorderColor:     black,
		BorderThickness: 0.2,
	}
)

// Output is a rendered and verified document.
type Output struct {
	Bytes []byte
	Pages int
}

// Renderer draws sheets onto Letter pages using maroto.
type Renderer struct {
	logger *zap.Logger
}

// NewRenderer builds a Renderer.
func NewRenderer(logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{logger: logger}
}

// Render lays the sheet out, serializes it and checks that the result parses
// as a PDF with at least one page.
func (r *Renderer) Render(sheet Sheet) (*Output, error) {
	if sheet.Logo == nil || len(sheet.Logo.Bytes) == 0 {
		return nil, ErrMissingLogo
	}
	for _, t := range sheet.Tables {
		if err := t.validate(); err != nil {
			return nil, err
		}
	}

	title := ""
	if len(sheet.Title) > 0 {
		title = sheet.Title[0]
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.Letter).
		WithMaxGridSize(GridSize).
		WithTopMargin(marginMM).
		WithLeftMargin(marginMM).
		WithRightMargin(marginMM).
		WithTitle(title, true).
		WithAuthor(sheet.Author, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(sheet))
	m.AddRow(spacerMM)

	for _, t := range sheet.Tables {
		m.AddRows(tableRows(t)...)
		m.AddRow(spacerMM)
	}

	for _, block := range observationBlocks(sheet.Observations) {
		if block.Text == "" {
			m.AddRow(block.Height)
			continue
		}
		m.AddRow(block.Height, text.NewCol(GridSize, block.Text, props.Text{
			Top:   1,
			Size:  9,
			Align: align.Left,
		}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}

	data := doc.GetBytes()
	pages, err := PageCount(data)
	if err != nil {
		return nil, err
	}
	if pages < 1 {
		return nil, errors.New("generated pdf has no pages")
	}

	r.logger.Debug("report rendered",
		zap.Int("bytes", len(data)),
		zap.Int("pages", pages),
		zap.Int("tables", len(sheet.Tables)),
	)

	return &Output{Bytes: data, Pages: pages}, nil
}

func headerRow(sheet Sheet) core.Row {
	logoCol := image.NewFromBytesCol(23, sheet.Logo.Bytes, imageExtension(sheet.Logo.Kind), props.Rect{
		Center:  true,
		Percent: 95,
	})

	titleCol := col.New(GridSize - 23)
	for i, line := range sheet.Title {
		titleCol.Add(text.New(line, props.Text{
			Top:   5 + float64(i)*5,
			Size:  11,
			Style: fontstyle.Bold,
			Align: align.Center,
		}))
	}

	return row.New(headerHeightMM).Add(logoCol, titleCol)
}

func tableRows(t Table) []core.Row {
	rows := make([]core.Row, 0, len(t.Rows))
	for i, values := range t.Rows {
		style := plainCell
		if i < t.Shaded {
			style = shadedCell
		}

		height := 8.0
		if i < len(t.RowHeight) {
			height = t.RowHeight[i]
		}

		cols := make([]core.Col, 0, len(t.Columns))
		for j, size := range t.Columns {
			value := ""
			if j < len(values) {
				value = values[j]
			}
			ta := align.Left
			if j < len(t.Align) {
				ta = t.Align[j]
			}
			cols = append(cols, col.New(size).
				Add(text.New(value, props.Text{
					Top:   1.5,
					Left:  1,
					Right: 1,
					Size:  t.FontSize,
					Align: ta,
				})).
				WithStyle(style))
		}
		rows = append(rows, row.New(height).Add(cols...))
	}
	return rows
}

func (t Table) validate() error {
	sum := 0
	for _, size := range t.Columns {
		sum += size
	}
	if sum != GridSize {
		return fmt.Errorf("%w: %s columns span %d of %d", ErrInvalidTable, t.Name, sum, GridSize)
	}
	for i, values := range t.Rows {
		if len(values) != len(t.Columns) {
			return fmt.Errorf("%w: %s row %d has %d cells, want %d", ErrInvalidTable, t.Name, i, len(values), len(t.Columns))
		}
	}
	return nil
}

func imageExtension(kind asset.Kind) extension.Type {
	if kind == asset.KindJPEG {
		return extension.Jpg
	}
	return extension.Png
}

// textBlock is one full-width row of the observations section. Blocks with no
// text are vertical gaps.
type textBlock struct {
	Text   string
	Height float64
}

// observationBlocks stacks the paragraphs with a gap between consecutive ones.
func observationBlocks(paragraphs []string) []textBlock {
	blocks := make([]textBlock, 0, 2*len(paragraphs))
	for i, p := range paragraphs {
		if i > 0 {
			blocks = append(blocks, textBlock{Height: paragraphGapMM})
		}
		if p == "" {
			blocks = append(blocks, textBlock{Height: paragraphGapMM})
			continue
		}
		blocks = append(blocks, textBlock{Text: p, Height: paragraphHeight(p)})
	}
	return blocks
}

// paragraphHeight approximates the wrapped height of a 9pt paragraph across
// the full content width.
func paragraphHeight(s string) float64 {
	const charsPerLine = 95
	const lineMM = 4.2

	lines := math.Ceil(float64(utf8.RuneCountInString(s)) / charsPerLine)
	if lines < 1 {
		lines = 1
	}
	return lines*lineMM + 2
}
