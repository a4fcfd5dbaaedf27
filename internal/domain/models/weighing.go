package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AreaFormalizacion is the Area value that marks records of the formalization program.
const AreaFormalizacion = "Formalizacion"

// TimeOfDay is a wall-clock offset from midnight.
type TimeOfDay time.Duration

// NewTimeOfDay builds a TimeOfDay from clock components.
func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return TimeOfDay(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute + time.Duration(second)*time.Second)
}

// String renders the time as HH:MM.
func (t TimeOfDay) String() string {
	d := time.Duration(t)
	return fmt.Sprintf("%02d:%02d", int(d/time.Hour), int(d%time.Hour/time.Minute))
}

// WeighRecord is one row of the weighing control sheet.
type WeighRecord struct {
	Area        string          `json:"area"`
	Fecha       time.Time       `json:"fecha"`
	Material    string          `json:"material"`
	Hora        TimeOfDay       `json:"-"`
	HoraMissing bool            `json:"-"`
	Placa       string          `json:"placa,omitempty"`
	PesoTaraKg  decimal.Decimal `json:"peso_tara_kg"`
	PesoBrutoKg decimal.Decimal `json:"peso_bruto_kg"`
	PesoNetoKg  decimal.Decimal `json:"peso_neto_kg"`
}

// HoraLabel exposes Hora as HH:MM, or "" when the cell was empty.
func (r WeighRecord) HoraLabel() string {
	if r.HoraMissing {
		return ""
	}
	return r.Hora.String()
}

// ReportRequest carries the three user selections for one document.
type ReportRequest struct {
	Date     time.Time
	Material string
	Operator string
}
