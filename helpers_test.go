package main

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func scenarioTable() ContributionTable {
	return NewContributionTable(map[CropOffset]float64{
		CurrentCrop: 50,
		PrevCrop1:   30,
		PrevCrop2:   15,
		PrevCrop3:   5,
	})
}

func scenarioProduction() ProductionSeries {
	return ProductionSeriesFromMap(map[int]float64{
		2022: 100,
		2023: 110,
		2024: 120,
		2025: 130,
	})
}

// writeWorkbook saves rows to a single-sheet workbook in dir.
func writeWorkbook(t *testing.T, dir, name, sheet string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

// writeInputs creates the three default input workbooks in dir.
func writeInputs(t *testing.T, dir string) {
	t.Helper()

	cfg := DefaultConfig()
	writeWorkbook(t, dir, cfg.Data.TrendFile, "Trend", [][]interface{}{
		{"Category", "Pct_of_Crop"},
		{"Current Crop", 50},
		{"Prev-1 Crop", 30},
		{"Prev-2 Crop", 15},
		{"Prev-3 Crop", 5},
	})
	writeWorkbook(t, dir, cfg.Data.ProductionFile, "Production", [][]interface{}{
		{"Year", "Mass Produced"},
		{2021, 90},
		{2022, 100},
		{2023, 110},
		{2024, 120},
	})
	exports := [][]interface{}{{"YEAR", "MASS EXPORTED"}}
	for _, year := range []int{2022, 2023, 2024} {
		// two shipments per year, summed to 100 each
		exports = append(exports, []interface{}{year, 60}, []interface{}{year, 40})
	}
	writeWorkbook(t, dir, cfg.Data.ExportsFile, "Exports", exports)
}

func testConfig(dataDir, outDir string) *Config {
	cfg := DefaultConfig()
	cfg.Data.Dir = dataDir
	cfg.Output.Dir = outDir
	return cfg
}

func ptrValue(v *float64) string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%g", *v)
}
