package models

import "github.com/shopspring/decimal"

// ReportSummary holds the aggregates printed on the weighing report.
// Totals are expressed in metric tons. HoraMissing is set when no record
// carries a Hora, leaving HoraInicio and HoraFin meaningless.
type ReportSummary struct {
	HoraInicio  TimeOfDay
	HoraFin     TimeOfDay
	HoraMissing bool
	TotalTara   decimal.Decimal
	TotalBruto  decimal.Decimal
	TotalNeto   decimal.Decimal
	Trucks      int
}

// HoraInicioLabel renders HoraInicio, or "" when no Hora is known.
func (s ReportSummary) HoraInicioLabel() string {
	if s.HoraMissing {
		return ""
	}
	return s.HoraInicio.String()
}

// HoraFinLabel renders HoraFin, or "" when no Hora is known.
func (s ReportSummary) HoraFinLabel() string {
	if s.HoraMissing {
		return ""
	}
	return s.HoraFin.String()
}

// TruckDetail is one line of the per-truck table. Blank lines are left for
// manual entries on the printed sheet.
type TruckDetail struct {
	Hora    string
	Placa   string
	TaraKg  decimal.Decimal
	BrutoKg decimal.Decimal
	NetoKg  decimal.Decimal
	Blank   bool
}

// TruckDetailTotals are the column sums of the truck table, in kilograms.
type TruckDetailTotals struct {
	TaraKg  decimal.Decimal
	BrutoKg decimal.Decimal
	NetoKg  decimal.Decimal
}

// ReportDocument is a rendered report ready for the export boundary.
type ReportDocument struct {
	FileName    string
	ContentType string
	Bytes       []byte
	Pages       int
}
