package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout, os.Stderr).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "timbexports",
		Usage:     "predict tobacco exports from crop production and compare with actual exports",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.toml",
				Usage:   "path to config.toml",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "report",
				Usage: "write the comparison workbook, chart and summary",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "production", Usage: "forecast-year production in kg (0 disables the forecast)"},
					&cli.StringFlag{Name: "data-dir", Usage: "directory holding the input workbooks"},
					&cli.StringFlag{Name: "out-dir", Usage: "directory for generated files"},
				},
				Action: runReport,
			},
			{
				Name:  "predict",
				Usage: "print the predicted exports for one year",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "year", Required: true, Usage: "export year"},
					&cli.Float64Flag{Name: "production", Usage: "use this current-year production instead of the recorded one"},
					&cli.StringFlag{Name: "data-dir", Usage: "directory holding the input workbooks"},
				},
				Action: runPredict,
			},
			{
				Name:  "serve",
				Usage: "serve the comparison over HTTP",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "port", Usage: "listen port (overrides config)"},
					&cli.StringFlag{Name: "data-dir", Usage: "directory holding the input workbooks"},
				},
				Action: runServe,
			},
		},
	}
}

// setup loads config, applies command flags and builds the logger.
func setup(c *cli.Context) (*Config, *slog.Logger, error) {
	cfg, err := LoadConfig(c.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if c.IsSet("data-dir") {
		cfg.Data.Dir = c.String("data-dir")
	}
	return cfg, newLogger(c.App.ErrWriter, cfg.Log, cfg.SlogLevel()), nil
}

func runReport(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	if c.IsSet("production") {
		cfg.Prediction.ForecastProduction = c.Float64("production")
	}
	if c.IsSet("out-dir") {
		cfg.Output.Dir = c.String("out-dir")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	out := c.App.Writer
	fmt.Fprintln(out, "🌿 TOBACCO EXPORTS PREDICTION")
	fmt.Fprintf(out, "Predicting %d-%d from crop-year contributions...\n", cfg.Prediction.FromYear, cfg.Prediction.ToYear)

	inputs, err := LoadInputs(c.Context, cfg, logger)
	if err != nil {
		return err
	}

	years := YearRange(cfg.Prediction.FromYear, cfg.Prediction.ToYear)
	a := Analyze(inputs, years, cfg.ForecastYear(), cfg.Prediction.ForecastProduction)
	rows := RowsFrom(a.Rows, cfg.Prediction.FromYear)
	logger.Info("comparison built", "rows", len(rows), "forecast", a.Forecast != nil)

	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	workbookPath := cfg.OutputPath(cfg.Output.Workbook)
	if err := WriteComparisonWorkbook(workbookPath, rows, inputs.Table); err != nil {
		return err
	}
	chartPath := cfg.OutputPath(cfg.Output.Chart)
	if err := SaveComparisonChart(chartPath, rows, a.Forecast); err != nil {
		if !errors.Is(err, ErrNoChartData) {
			return err
		}
		logger.Warn("nothing to chart", "from_year", cfg.Prediction.FromYear)
	}
	reportPath := cfg.OutputPath(cfg.Output.Report)
	if err := WriteReport(reportPath, a, rows, inputs.Table); err != nil {
		return err
	}

	if a.Forecast != nil {
		fmt.Fprintf(out, "\n📦 Predicted %d exports: %s kg\n", a.Forecast.Year, formatKg(a.Forecast.Predicted))
	}
	fmt.Fprintln(out, "\n📊 Export Summary")
	for _, line := range SummaryLines(rows) {
		fmt.Fprintln(out, line)
	}

	fmt.Fprintln(out, "\n✅ DONE")
	fmt.Fprintln(out, "📁 Output:")
	fmt.Fprintf(out, "   - %s\n", workbookPath)
	fmt.Fprintf(out, "   - %s\n", chartPath)
	fmt.Fprintf(out, "   - %s\n", reportPath)
	return nil
}

func runPredict(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	inputs, err := LoadInputs(c.Context, cfg, logger)
	if err != nil {
		return err
	}

	year := c.Int("year")
	var predicted float64
	if c.IsSet("production") {
		production := c.Float64("production")
		if production < 0 {
			return fmt.Errorf("production: %w", ErrNegativeMass)
		}
		predicted = PredictWithCurrent(year, production, inputs.Production, inputs.Table)
	} else {
		predicted = Predict(year, inputs.Production, inputs.Table)
	}

	fmt.Fprintf(c.App.Writer, "%d: %s kg\n", year, formatKg(predicted))
	if actual, ok := inputs.Actuals.Mass(year); ok {
		if d, ok := DeviationPct(predicted, actual); ok {
			fmt.Fprintf(c.App.Writer, "actual %s kg (%s)\n", formatKg(actual), formatPct(d))
		} else {
			fmt.Fprintf(c.App.Writer, "actual %s kg (deviation n/a)\n", formatKg(actual))
		}
	}
	return nil
}

func runServe(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	if c.IsSet("port") {
		cfg.Server.Port = c.Int("port")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	inputs, err := LoadInputs(c.Context, cfg, logger)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	srv := NewServer(cfg, inputs, logger)
	return srv.Run(c.Context, fmt.Sprintf(":%d", cfg.Server.Port))
}
