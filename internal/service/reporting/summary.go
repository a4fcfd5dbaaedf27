package reporting

import (
	"github.com/shopspring/decimal"

	"github.com/zcnl/pesaje/internal/domain/models"
)

var kgPerTon = decimal.NewFromInt(1000)

// Summarize computes the time window and ton totals of a non-empty record
// selection. Records without a Hora are left out of the window. Totals keep
// full precision; rounding happens at layout time.
func Summarize(records []models.WeighRecord) (models.ReportSummary, error) {
	if len(records) == 0 {
		return models.ReportSummary{}, ErrEmptyDataset
	}

	summary := models.ReportSummary{
		HoraMissing: true,
		Trucks:      len(records),
	}

	var tara, bruto, neto decimal.Decimal
	for _, r := range records {
		if !r.HoraMissing {
			if summary.HoraMissing || r.Hora < summary.HoraInicio {
				summary.HoraInicio = r.Hora
			}
			if summary.HoraMissing || r.Hora > summary.HoraFin {
				summary.HoraFin = r.Hora
			}
			summary.HoraMissing = false
		}
		tara = tara.Add(r.PesoTaraKg)
		bruto = bruto.Add(r.PesoBrutoKg)
		neto = neto.Add(r.PesoNetoKg)
	}

	summary.TotalTara = tara.Div(kgPerTon)
	summary.TotalBruto = bruto.Div(kgPerTon)
	summary.TotalNeto = neto.Div(kgPerTon)

	return summary, nil
}

// TruckDetails lists one line per record, in record order, padded with blank
// lines up to minRows. Totals are kilogram sums over the records.
func TruckDetails(records []models.WeighRecord, minRows int) ([]models.TruckDetail, models.TruckDetailTotals) {
	size := len(records)
	if minRows > size {
		size = minRows
	}

	details := make([]models.TruckDetail, 0, size)
	var totals models.TruckDetailTotals
	for _, r := range records {
		details = append(details, models.TruckDetail{
			Hora:    r.HoraLabel(),
			Placa:   r.Placa,
			TaraKg:  r.PesoTaraKg,
			BrutoKg: r.PesoBrutoKg,
			NetoKg:  r.PesoNetoKg,
		})
		totals.TaraKg = totals.TaraKg.Add(r.PesoTaraKg)
		totals.BrutoKg = totals.BrutoKg.Add(r.PesoBrutoKg)
		totals.NetoKg = totals.NetoKg.Add(r.PesoNetoKg)
	}
	for len(details) < size {
		details = append(details, models.TruckDetail{Blank: true})
	}

	return details, totals
}
