package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/zcnl/pesaje/internal/domain/models"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"02/01/2006",
	"2/1/2006",
	"02/01/2006 15:04:05",
	"02-01-2006",
}

var clockLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04 PM",
	"3:04:05 PM",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

const secondsPerDay = 24 * 60 * 60

func cellString(value interface{}) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(value))
}

// cellNumber returns the numeric value of spreadsheet cells delivered either as
// JSON numbers (Sheets API) or as raw strings (xlsx).
func cellNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

// parseDate reduces a cell to its calendar date at UTC midnight; any
// time-of-day component is dropped.
func parseDate(value interface{}) (time.Time, error) {
	if t, ok := value.(time.Time); ok {
		return truncateDate(t), nil
	}

	if serial, ok := cellNumber(value); ok {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date serial %v: %w", serial, err)
		}
		return truncateDate(t), nil
	}

	str := cellString(value)
	if str == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, str); err == nil {
			return truncateDate(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", str)
}

// parseClock reads a time-of-day from a day fraction, a date-time serial or a
// clock string.
func parseClock(value interface{}) (models.TimeOfDay, error) {
	if t, ok := value.(time.Time); ok {
		return models.NewTimeOfDay(t.Hour(), t.Minute(), t.Second()), nil
	}

	if serial, ok := cellNumber(value); ok {
		if serial < 0 {
			return 0, fmt.Errorf("negative time %v", serial)
		}
		_, frac := math.Modf(serial)
		secs := int(math.Round(frac * secondsPerDay))
		if secs >= secondsPerDay {
			secs = secondsPerDay - 1
		}
		return models.NewTimeOfDay(secs/3600, secs%3600/60, secs%60), nil
	}

	str := cellString(value)
	if str == "" {
		return 0, fmt.Errorf("empty time")
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, str); err == nil {
			return models.NewTimeOfDay(t.Hour(), t.Minute(), t.Second()), nil
		}
	}
	return 0, fmt.Errorf("unrecognized time %q", str)
}

// parseWeight reads a kilogram value. An empty cell counts as zero, as for a
// truck that has not been weighed out yet. Thousands separators are not
// accepted; the sheet stores plain numbers.
func parseWeight(value interface{}) (decimal.Decimal, error) {
	switch v := value.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	}

	str := cellString(value)
	if str == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(str)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q", str)
	}
	return d, nil
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// headerKey normalizes a column title so "Área", " area " and "AREA" match.
func headerKey(title string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, title)
	if err != nil {
		folded = title
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}
