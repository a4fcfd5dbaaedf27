package config

import (
	"errors"
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// ReportTemplate is the static content of the weighing report. Everything that
// is not derived from the records lives here so the layout code stays free of
// literals.
type ReportTemplate struct {
	Area          string          `yaml:"area" env:"REPORT_AREA"`
	Title         []string        `yaml:"title"`
	FileName      string          `yaml:"file_name"`
	Operators     []string        `yaml:"operators"`
	Metadata      MetadataText    `yaml:"metadata"`
	Signatures    []SignatureText `yaml:"signatures"`
	DetailMinRows int             `yaml:"detail_min_rows"`
	Observations  []string        `yaml:"observations"`
}

// MetadataText holds the fixed values of the metadata table.
type MetadataText struct {
	Frentes        string `yaml:"frentes"`
	LugarPesaje    string `yaml:"lugar_pesaje"`
	LugarRecepcion string `yaml:"lugar_recepcion"`
}

// SignatureText labels one signature block.
type SignatureText struct {
	NameLabel      string `yaml:"name_label"`
	SignatureLabel string `yaml:"signature_label"`
}

// DefaultTemplate returns the template used at the Higabra weighing point.
func DefaultTemplate() ReportTemplate {
	return ReportTemplate{
		Area: "Formalizacion",
		Title: []string{
			"REGISTRO DE PESAJE DE MATERIAL MINERALIZADO",
			"RECIBIDO DE LAS FORMALIZACIONES",
		},
		FileName:  "datos_filtrados.pdf",
		Operators: []string{"Camilo Gonzalez", "Melissa"},
		Metadata: MetadataText{
			Frentes:        "N/A",
			LugarPesaje:    "Higabra",
			LugarRecepcion: "Platanal",
		},
		Signatures: []SignatureText{
			{NameLabel: "Nombre de quien entrega (Empresa FM)", SignatureLabel: "Firma de quien entrega"},
			{NameLabel: "Nombre de quien recibe (Formalizacion)", SignatureLabel: "Firma de quien recibe"},
			{NameLabel: "Nombre de quien recibe (Operaciones)", SignatureLabel: "Firma de quien recibe"},
		},
		DetailMinRows: 6,
		Observations: []string{
			"Observaciones:",
			"Para recepción de mineral los días sábados, domingos y festivos:",
			"• Se tomará el precio del Au según la Bolsa de Metales de Londres en su versión p.m. correspondiente al ultimo día hábil previo a la entrega de mineral, tomando así para las entregas los días sábados y domingos el precio del Au correspondiente al del día viernes.",
			"• El TRM se tomará del día del envió.",
		},
	}
}

// LoadTemplate reads the report template from a YAML file. Keys missing from
// the file keep their default value; an empty path returns the defaults.
func LoadTemplate(path string) (ReportTemplate, error) {
	tmpl := DefaultTemplate()
	if path == "" {
		return tmpl, nil
	}

	if err := cleanenv.ReadConfig(path, &tmpl); err != nil {
		return ReportTemplate{}, fmt.Errorf("read report template %s: %w", path, err)
	}

	if err := tmpl.Validate(); err != nil {
		return ReportTemplate{}, err
	}

	return tmpl, nil
}

// Validate ensures that the template can render a complete document.
func (t ReportTemplate) Validate() error {
	switch {
	case t.Area == "":
		return errors.New("template area must not be empty")
	case len(t.Title) == 0:
		return errors.New("template title must not be empty")
	case t.FileName == "":
		return errors.New("template file_name must not be empty")
	case len(t.Operators) == 0:
		return errors.New("template operators must list at least one name")
	case len(t.Signatures) == 0:
		return errors.New("template signatures must not be empty")
	case t.DetailMinRows < 0:
		return errors.New("template detail_min_rows must not be negative")
	}
	return nil
}

// IsOperator reports whether name belongs to the enumerated operator set.
func (t ReportTemplate) IsOperator(name string) bool {
	for _, op := range t.Operators {
		if op == name {
			return true
		}
	}
	return false
}
