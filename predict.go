package main

import (
	"gonum.org/v1/gonum/floats"
)

// PredictionRecord is the estimated export mass for one year.
type PredictionRecord struct {
	Year      int     `json:"year"`
	Predicted float64 `json:"predicted"`
}

// Predict estimates exports for year as the current harvest plus the
// stock released from the three previous harvests:
//
//	Σ production[year-k] * weight(k) / 100, k = 0..3
//
// Years without production contribute 0, so Predict is defined for any
// year and degrades to a partial sum near the start of the series.
func Predict(year int, production ProductionSeries, table ContributionTable) float64 {
	return predictWindow(productionWindow(year, production), table)
}

// PredictWithCurrent answers the ad-hoc query for a year whose harvest is
// not in the series yet: current replaces production[year], the prior
// harvests still come from production.
func PredictWithCurrent(year int, current float64, production ProductionSeries, table ContributionTable) float64 {
	window := productionWindow(year, production)
	window[CurrentCrop] = current
	return predictWindow(window, table)
}

// PredictBatch runs Predict for each year independently, keeping the
// input order.
func PredictBatch(years []int, production ProductionSeries, table ContributionTable) []PredictionRecord {
	out := make([]PredictionRecord, 0, len(years))
	for _, year := range years {
		out = append(out, PredictionRecord{
			Year:      year,
			Predicted: Predict(year, production, table),
		})
	}
	return out
}

// YearRange returns from..to inclusive, or nil when from > to.
func YearRange(from, to int) []int {
	if from > to {
		return nil
	}
	years := make([]int, 0, to-from+1)
	for y := from; y <= to; y++ {
		years = append(years, y)
	}
	return years
}

// productionWindow returns production for year, year-1, ... indexed by
// crop offset.
func productionWindow(year int, production ProductionSeries) []float64 {
	window := make([]float64, MaxCropOffset+1)
	for _, offset := range CropOffsets() {
		window[offset] = production.Mass(year - int(offset))
	}
	return window
}

func predictWindow(window []float64, table ContributionTable) float64 {
	return floats.Dot(window, table.Weights()) / 100
}
