package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviationPct(t *testing.T) {
	tests := []struct {
		name      string
		predicted float64
		actual    float64
		expected  float64
		ok        bool
	}{
		{name: "over prediction", predicted: 110, actual: 100, expected: 10, ok: true},
		{name: "under prediction", predicted: 75, actual: 100, expected: -25, ok: true},
		{name: "exact", predicted: 100, actual: 100, expected: 0, ok: true},
		{name: "zero actual", predicted: 50, actual: 0, ok: false},
		{name: "zero both", predicted: 0, actual: 0, ok: false},
		{name: "overflow", predicted: math.MaxFloat64, actual: 1e-300, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DeviationPct(tt.predicted, tt.actual)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.expected, got, 1e-9)
			}
		})
	}
}

func TestCompare_Scenario(t *testing.T) {
	rows := Compare(
		[]PredictionRecord{{Year: 2024, Predicted: 110}},
		ActualExportsFromMap(map[int]float64{2024: 100}),
	)

	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].DeviationPct)
	assert.InDelta(t, 10.0, *rows[0].DeviationPct, 1e-9)
}

func TestCompare_ZeroActualHasNoDeviation(t *testing.T) {
	rows := Compare(
		[]PredictionRecord{{Year: 2024, Predicted: 50}},
		ActualExportsFromMap(map[int]float64{2024: 0}),
	)

	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Actual)
	require.NotNil(t, rows[0].Predicted)
	assert.Equal(t, 0.0, *rows[0].Actual)
	assert.Equal(t, 50.0, *rows[0].Predicted)
	assert.Nil(t, rows[0].DeviationPct)
}

func TestCompare_FullOuterJoinSortedByYear(t *testing.T) {
	rows := Compare(
		[]PredictionRecord{
			{Year: 2026, Predicted: 140},
			{Year: 2023, Predicted: 95},
			{Year: 2024, Predicted: 105},
		},
		ActualExportsFromMap(map[int]float64{2024: 100, 2021: 80, 2023: 100}),
	)

	require.Len(t, rows, 4)
	assert.Equal(t, []int{2021, 2023, 2024, 2026}, rowYears(rows))

	onlyActual := rows[0]
	assert.Equal(t, 80.0, *onlyActual.Actual)
	assert.Nil(t, onlyActual.Predicted)
	assert.Nil(t, onlyActual.DeviationPct)

	assert.InDelta(t, -5.0, *rows[1].DeviationPct, 1e-9)
	assert.InDelta(t, 5.0, *rows[2].DeviationPct, 1e-9)

	onlyPredicted := rows[3]
	assert.Nil(t, onlyPredicted.Actual)
	assert.Equal(t, 140.0, *onlyPredicted.Predicted)
	assert.Nil(t, onlyPredicted.DeviationPct)
}

func TestCompare_Empty(t *testing.T) {
	assert.Empty(t, Compare(nil, ActualExportSeries{}))
}

func TestCompare_RepeatedPredictionYearUsesLast(t *testing.T) {
	rows := Compare(
		[]PredictionRecord{{Year: 2024, Predicted: 90}, {Year: 2024, Predicted: 120}},
		ActualExportsFromMap(map[int]float64{2024: 100}),
	)

	require.Len(t, rows, 1)
	assert.Equal(t, 120.0, *rows[0].Predicted)
	assert.InDelta(t, 20.0, *rows[0].DeviationPct, 1e-9)
}

func TestCompare_DeviationOnlyWithNonZeroActualAndPrediction(t *testing.T) {
	actuals := ActualExportsFromMap(map[int]float64{2018: 0, 2019: 10, 2020: 0, 2022: 35, 2023: 40})
	predictions := PredictBatch(YearRange(2019, 2025), scenarioProduction(), scenarioTable())

	for _, r := range Compare(predictions, actuals) {
		if r.Actual == nil || *r.Actual == 0 || r.Predicted == nil {
			assert.Nil(t, r.DeviationPct, "year %d actual=%s predicted=%s", r.Year, ptrValue(r.Actual), ptrValue(r.Predicted))
			continue
		}
		require.NotNil(t, r.DeviationPct, "year %d", r.Year)
		assert.False(t, math.IsNaN(*r.DeviationPct) || math.IsInf(*r.DeviationPct, 0))
	}
}

func TestCompare_ReproducesDeviationFormula(t *testing.T) {
	production := ProductionSeriesFromMap(map[int]float64{2018: 210, 2019: 190, 2020: 205, 2021: 230, 2022: 250, 2023: 240})
	table := NewContributionTable(map[CropOffset]float64{CurrentCrop: 52.5, PrevCrop1: 28, PrevCrop2: 12.25, PrevCrop3: 4})
	actuals := ActualExportsFromMap(map[int]float64{2020: 180, 2021: 199.5, 2022: 222, 2023: 241.25})

	predictions := PredictBatch(YearRange(2020, 2023), production, table)
	rows := Compare(predictions, actuals)

	require.Len(t, rows, 4)
	for i, r := range rows {
		require.NotNil(t, r.DeviationPct)
		p := predictions[i].Predicted
		a, _ := actuals.Mass(r.Year)
		assert.InDelta(t, (p-a)/a*100, *r.DeviationPct, 1e-9, "year %d", r.Year)
	}
}

func TestAppendForecast(t *testing.T) {
	production := ProductionSeriesFromMap(map[int]float64{2023: 110, 2024: 120, 2025: 130})
	table := scenarioTable()
	rows := Compare(
		PredictBatch([]int{2024, 2025}, production, table),
		ActualExportsFromMap(map[int]float64{2024: 100, 2025: 120}),
	)

	forecast := PredictionRecord{Year: 2026, Predicted: PredictWithCurrent(2026, 200, production, table)}
	got := AppendForecast(rows, forecast)

	require.Len(t, got, 3)
	assert.Len(t, rows, 2)
	assert.Equal(t, []int{2024, 2025, 2026}, rowYears(got))

	extra := got[2]
	assert.Nil(t, extra.Actual)
	assert.Nil(t, extra.DeviationPct)
	require.NotNil(t, extra.Predicted)
	assert.Equal(t, 162.5, *extra.Predicted)
}

func TestAppendForecast_KeepsRecordedActualForSameYear(t *testing.T) {
	rows := Compare(
		[]PredictionRecord{{Year: 2022, Predicted: 10}, {Year: 2024, Predicted: 30}},
		ActualExportsFromMap(map[int]float64{2022: 10, 2023: 20, 2024: 25}),
	)

	got := AppendForecast(rows, PredictionRecord{Year: 2023, Predicted: 21})

	assert.Equal(t, []int{2022, 2023, 2023, 2024}, rowYears(got))

	recorded := got[1]
	require.NotNil(t, recorded.Actual)
	assert.Equal(t, 20.0, *recorded.Actual)
	assert.Nil(t, recorded.Predicted)

	forecast := got[2]
	assert.Nil(t, forecast.Actual)
	require.NotNil(t, forecast.Predicted)
	assert.Equal(t, 21.0, *forecast.Predicted)

	assert.Len(t, rows, 3)
}

func rowYears(rows []ComparisonRow) []int {
	years := make([]int, len(rows))
	for i, r := range rows {
		years[i] = r.Year
	}
	return years
}
