package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Supported dataset sources.
const (
	SourceExcel  = "excel"
	SourceSheets = "sheets"
)

// Config represents the full application configuration surface.
type Config struct {
	Env       string
	Server    ServerConfig
	Dataset   DatasetConfig
	Sheets    SheetsConfig
	Report    ReportConfig
	Reporting ReportingConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// DatasetConfig selects where the weighing table is read from.
type DatasetConfig struct {
	Source     string
	ExcelPath  string
	ExcelSheet string
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	Range           string
}

// ReportConfig points at the assets and template used to render documents.
type ReportConfig struct {
	LogoPath     string
	TemplatePath string
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
	ExportDir    string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Env: getenvWithDefault("APP_ENV", "production"),
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Dataset: DatasetConfig{
			Source:     getenvWithDefault("DATA_SOURCE", SourceExcel),
			ExcelPath:  getenvWithDefault("EXCEL_PATH", "Controldepesos.xlsx"),
			ExcelSheet: os.Getenv("EXCEL_SHEET"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
			Range:           getenvWithDefault("GOOGLE_SHEET_RANGE", "Pesajes!A:I"),
		},
		Report: ReportConfig{
			LogoPath:     getenvWithDefault("LOGO_PATH", "Img/logozcnl.png"),
			TemplatePath: os.Getenv("REPORT_TEMPLATE_PATH"),
		},
		Reporting: ReportingConfig{
			CronSchedule: os.Getenv("REPORT_CRON_SCHEDULE"),
			Timezone:     getenvWithDefault("TIMEZONE", "America/Bogota"),
			ExportDir:    getenvWithDefault("REPORT_EXPORT_DIR", "exports"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Dataset.Source {
	case SourceExcel:
		if c.Dataset.ExcelPath == "" {
			return errors.New("EXCEL_PATH must be provided")
		}
	case SourceSheets:
		if c.Sheets.CredentialsPath == "" {
			return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided")
		}
		if c.Sheets.SpreadsheetID == "" {
			return errors.New("GOOGLE_SHEET_DATABASE_ID must be provided")
		}
		if c.Sheets.Range == "" {
			return errors.New("GOOGLE_SHEET_RANGE must not be empty")
		}
	default:
		return fmt.Errorf("DATA_SOURCE must be %q or %q, got %q", SourceExcel, SourceSheets, c.Dataset.Source)
	}

	if c.Report.LogoPath == "" {
		return errors.New("LOGO_PATH must be provided")
	}

	if _, err := time.LoadLocation(c.Reporting.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE is invalid: %w", err)
	}

	if c.Reporting.CronSchedule != "" && c.Reporting.ExportDir == "" {
		return errors.New("REPORT_EXPORT_DIR must be provided when REPORT_CRON_SCHEDULE is set")
	}

	return nil
}

// Location returns the configured reporting timezone, falling back to UTC.
func (c ReportingConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
