package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config is read from config.toml.
type Config struct {
	Data       DataConfig       `toml:"data"`
	Columns    ColumnsConfig    `toml:"columns"`
	Prediction PredictionConfig `toml:"prediction"`
	Output     OutputConfig     `toml:"output"`
	Server     ServerConfig     `toml:"server"`
	Log        LogConfig        `toml:"log"`
}

// DataConfig locates the three input workbooks. Empty sheet names select
// the first sheet.
type DataConfig struct {
	Dir             string `toml:"dir"`
	TrendFile       string `toml:"trend_file"`
	TrendSheet      string `toml:"trend_sheet"`
	ProductionFile  string `toml:"production_file"`
	ProductionSheet string `toml:"production_sheet"`
	ExportsFile     string `toml:"exports_file"`
	ExportsSheet    string `toml:"exports_sheet"`
}

// ColumnsConfig names the header cells of each workbook.
type ColumnsConfig struct {
	TrendCategory  string `toml:"trend_category"`
	TrendPercent   string `toml:"trend_percent"`
	ProductionYear string `toml:"production_year"`
	ProductionMass string `toml:"production_mass"`
	ExportYear     string `toml:"export_year"`
	ExportMass     string `toml:"export_mass"`
}

// PredictionConfig selects the historical years to predict and the
// optional forecast. A ForecastYear of 0 means the year after ToYear; a
// ForecastProduction of 0 disables the forecast.
type PredictionConfig struct {
	FromYear           int     `toml:"from_year"`
	ToYear             int     `toml:"to_year"`
	ForecastYear       int     `toml:"forecast_year"`
	ForecastProduction float64 `toml:"forecast_production"`
}

type OutputConfig struct {
	Dir      string `toml:"dir"`
	Workbook string `toml:"workbook"`
	Chart    string `toml:"chart"`
	Report   string `toml:"report"`
}

type ServerConfig struct {
	Port int `toml:"port"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Dir:            "data",
			TrendFile:      "Export_Trend_2022_2024.xlsx",
			ProductionFile: "Exports_data.xlsx",
			ExportsFile:    "EXPORTS HISTORY.xlsx",
		},
		Columns: ColumnsConfig{
			TrendCategory:  "Category",
			TrendPercent:   "Pct_of_Crop",
			ProductionYear: "Year",
			ProductionMass: "Mass Produced",
			ExportYear:     "YEAR",
			ExportMass:     "MASS EXPORTED",
		},
		Prediction: PredictionConfig{
			FromYear: 2022,
			ToYear:   2024,
		},
		Output: OutputConfig{
			Dir:      "output",
			Workbook: "export_comparison.xlsx",
			Chart:    "actual_vs_predicted.png",
			Report:   "export_summary.md",
		},
		Server: ServerConfig{
			Port: 8501,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig overlays path on DefaultConfig. A missing file is not an
// error. TIMB_DATA_DIR and TIMB_FORECAST_PRODUCTION override the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TIMB_DATA_DIR"); v != "" {
		c.Data.Dir = v
	}
	if v := os.Getenv("TIMB_FORECAST_PRODUCTION"); v != "" {
		p, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
		if err != nil {
			return fmt.Errorf("TIMB_FORECAST_PRODUCTION: %w", err)
		}
		c.Prediction.ForecastProduction = p
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Prediction.FromYear > c.Prediction.ToYear {
		return fmt.Errorf("prediction.from_year %d is after to_year %d", c.Prediction.FromYear, c.Prediction.ToYear)
	}
	if c.Prediction.ForecastProduction < 0 {
		return errors.New("prediction.forecast_production must not be negative")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	return nil
}

// ForecastYear resolves the configured forecast year.
func (c *Config) ForecastYear() int {
	if c.Prediction.ForecastYear != 0 {
		return c.Prediction.ForecastYear
	}
	return c.Prediction.ToYear + 1
}

func (c *Config) TrendPath() string      { return filepath.Join(c.Data.Dir, c.Data.TrendFile) }
func (c *Config) ProductionPath() string { return filepath.Join(c.Data.Dir, c.Data.ProductionFile) }
func (c *Config) ExportsPath() string    { return filepath.Join(c.Data.Dir, c.Data.ExportsFile) }

func (c *Config) OutputPath(name string) string {
	return filepath.Join(c.Output.Dir, name)
}

// SlogLevel parses Log.Level, falling back to Info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
