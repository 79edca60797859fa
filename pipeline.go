package main

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Inputs are the three feeds the engine works on.
type Inputs struct {
	Table      ContributionTable
	Production ProductionSeries
	Actuals    ActualExportSeries
}

// LoadInputs reads the trend, production and exports workbooks
// concurrently. The workbook reads themselves are not cancellable, so ctx
// is only checked before they start.
func LoadInputs(ctx context.Context, cfg *Config, logger *slog.Logger) (Inputs, error) {
	if err := ctx.Err(); err != nil {
		return Inputs{}, err
	}

	var in Inputs
	var g errgroup.Group

	g.Go(func() error {
		table, err := LoadContributionTable(cfg.TrendPath(), cfg.Data.TrendSheet, cfg.Columns, logger)
		if err != nil {
			return err
		}
		in.Table = table
		return nil
	})
	g.Go(func() error {
		production, err := LoadProduction(cfg.ProductionPath(), cfg.Data.ProductionSheet, cfg.Columns)
		if err != nil {
			return err
		}
		in.Production = production
		return nil
	})
	g.Go(func() error {
		actuals, err := LoadExports(cfg.ExportsPath(), cfg.Data.ExportsSheet, cfg.Columns)
		if err != nil {
			return err
		}
		in.Actuals = actuals
		return nil
	})

	if err := g.Wait(); err != nil {
		return Inputs{}, err
	}

	logger.Info("inputs loaded",
		"contribution_total_pct", in.Table.Total(),
		"production_years", in.Production.Len(),
		"export_years", in.Actuals.Len(),
	)
	return in, nil
}

// Analysis is one run of the engine over Inputs.
type Analysis struct {
	Predictions []PredictionRecord `json:"predictions"`
	Rows        []ComparisonRow    `json:"rows"`
	Forecast    *PredictionRecord  `json:"forecast"`
}

// Analyze predicts every year in years, compares against actuals and,
// when forecastProduction is positive, appends the forecast row for
// forecastYear.
func Analyze(in Inputs, years []int, forecastYear int, forecastProduction float64) Analysis {
	predictions := PredictBatch(years, in.Production, in.Table)
	a := Analysis{
		Predictions: predictions,
		Rows:        Compare(predictions, in.Actuals),
	}
	if forecastProduction > 0 {
		forecast := PredictionRecord{
			Year:      forecastYear,
			Predicted: PredictWithCurrent(forecastYear, forecastProduction, in.Production, in.Table),
		}
		a.Forecast = &forecast
		a.Rows = AppendForecast(a.Rows, forecast)
	}
	return a
}

// RowsFrom keeps rows from year onwards.
func RowsFrom(rows []ComparisonRow, year int) []ComparisonRow {
	out := make([]ComparisonRow, 0, len(rows))
	for _, r := range rows {
		if r.Year >= year {
			out = append(out, r)
		}
	}
	return out
}
