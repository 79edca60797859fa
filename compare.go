package main

import (
	"math"
	"sort"
)

// ComparisonRow lines up actual and predicted exports for one year. A nil
// field means the value is not available.
type ComparisonRow struct {
	Year         int      `json:"year"`
	Actual       *float64 `json:"actual"`
	Predicted    *float64 `json:"predicted"`
	DeviationPct *float64 `json:"deviation_pct"`
}

// HasActual reports whether exports were recorded for the row's year.
func (r ComparisonRow) HasActual() bool { return r.Actual != nil }

// DeviationPct returns (predicted-actual)/actual*100. It reports false
// when actual is 0 or the result would not be finite.
func DeviationPct(predicted, actual float64) (float64, bool) {
	if actual == 0 {
		return 0, false
	}
	d := (predicted - actual) / actual * 100
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, false
	}
	return d, true
}

// Compare joins predictions and actuals on year. Every year present on
// either side gets one row, sorted ascending. When predictions repeat a
// year the last record is used.
func Compare(predictions []PredictionRecord, actuals ActualExportSeries) []ComparisonRow {
	predicted := make(map[int]float64, len(predictions))
	for _, p := range predictions {
		predicted[p.Year] = p.Predicted
	}

	years := unionYears(predicted, actuals)
	rows := make([]ComparisonRow, 0, len(years))
	for _, year := range years {
		row := ComparisonRow{Year: year}
		if p, ok := predicted[year]; ok {
			row.Predicted = float64Ptr(p)
		}
		if a, ok := actuals.Mass(year); ok {
			row.Actual = float64Ptr(a)
		}
		row.DeviationPct = rowDeviation(row)
		rows = append(rows, row)
	}
	return rows
}

// AppendForecast adds the ad-hoc prediction as an extra row without an
// actual. A row already present for that year is kept and the forecast
// row follows it. rows is not modified.
func AppendForecast(rows []ComparisonRow, forecast PredictionRecord) []ComparisonRow {
	out := make([]ComparisonRow, 0, len(rows)+1)
	out = append(out, rows...)
	out = append(out, ComparisonRow{
		Year:      forecast.Year,
		Predicted: float64Ptr(forecast.Predicted),
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

func rowDeviation(row ComparisonRow) *float64 {
	if row.Actual == nil || row.Predicted == nil {
		return nil
	}
	d, ok := DeviationPct(*row.Predicted, *row.Actual)
	if !ok {
		return nil
	}
	return float64Ptr(d)
}

func unionYears(predicted map[int]float64, actuals ActualExportSeries) []int {
	seen := make(map[int]struct{}, len(predicted)+actuals.Len())
	for year := range predicted {
		seen[year] = struct{}{}
	}
	for _, year := range actuals.Years() {
		seen[year] = struct{}{}
	}
	years := make([]int, 0, len(seen))
	for year := range seen {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}

func float64Ptr(v float64) *float64 { return &v }
