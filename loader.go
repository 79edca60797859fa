package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrMissingColumn  = errors.New("column not found")
	ErrYearOutOfRange = errors.New("year out of range")
)

// Year cells must be four-digit calendar years.
const (
	minYear = 1000
	maxYear = 9999
)

// RowError locates a bad value in a workbook.
type RowError struct {
	Sheet string
	Row   int
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("sheet %q row %d: %v", e.Sheet, e.Row, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// LoadContributionTable reads the trend workbook: one row per crop
// category with its percentage of the crop exported.
func LoadContributionTable(path, sheet string, cols ColumnsConfig, logger *slog.Logger) (ContributionTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return ContributionTable{}, fmt.Errorf("open trend workbook: %w", err)
	}
	defer f.Close()

	table, ignored, err := parseContributionSheet(f, sheet, cols)
	if err != nil {
		return ContributionTable{}, fmt.Errorf("%s: %w", path, err)
	}
	for _, label := range ignored {
		logger.Warn("ignoring crop category", "file", path, "category", label)
	}
	for _, offset := range CropOffsets() {
		if !table.Has(offset) {
			logger.Warn("crop category missing, weight defaults to 0", "file", path, "category", offset.String())
		}
	}
	return table, nil
}

// LoadProduction reads the production workbook. Each year may appear
// once.
func LoadProduction(path, sheet string, cols ColumnsConfig) (ProductionSeries, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return ProductionSeries{}, fmt.Errorf("open production workbook: %w", err)
	}
	defer f.Close()

	records, err := parseYearlySheet(f, sheet, cols.ProductionYear, cols.ProductionMass)
	if err != nil {
		return ProductionSeries{}, fmt.Errorf("%s: %w", path, err)
	}
	series, err := NewProductionSeries(records)
	if err != nil {
		return ProductionSeries{}, fmt.Errorf("%s: %w", path, err)
	}
	return series, nil
}

// LoadExports reads the export history workbook and sums its shipment
// rows per year.
func LoadExports(path, sheet string, cols ColumnsConfig) (ActualExportSeries, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return ActualExportSeries{}, fmt.Errorf("open exports workbook: %w", err)
	}
	defer f.Close()

	records, err := parseYearlySheet(f, sheet, cols.ExportYear, cols.ExportMass)
	if err != nil {
		return ActualExportSeries{}, fmt.Errorf("%s: %w", path, err)
	}
	return AggregateExports(records), nil
}

func parseContributionSheet(f *excelize.File, sheet string, cols ColumnsConfig) (ContributionTable, []string, error) {
	sheet, rows, err := sheetRows(f, sheet)
	if err != nil {
		return ContributionTable{}, nil, err
	}
	if len(rows) == 0 {
		return NewContributionTable(nil), nil, nil
	}

	idx, err := columnIndex(rows[0], cols.TrendCategory, cols.TrendPercent)
	if err != nil {
		return ContributionTable{}, nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}

	categories := make(map[string]float64)
	for i, row := range rows[1:] {
		label := cellValue(row, idx[0])
		if label == "" {
			continue
		}
		pct, err := parsePercent(cellValue(row, idx[1]))
		if err != nil {
			return ContributionTable{}, nil, &RowError{Sheet: sheet, Row: i + 2, Err: err}
		}
		categories[label] = pct
	}

	table, unknown := ContributionTableFromCategories(categories)
	return table, unknown, nil
}

// parseYearlySheet returns one record per data row that has both a year
// and a mass. Rows missing either are skipped.
func parseYearlySheet(f *excelize.File, sheet, yearCol, massCol string) ([]YearlyMass, error) {
	sheet, rows, err := sheetRows(f, sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	idx, err := columnIndex(rows[0], yearCol, massCol)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}

	records := make([]YearlyMass, 0, len(rows)-1)
	for i, row := range rows[1:] {
		yearText := cellValue(row, idx[0])
		massText := cellValue(row, idx[1])
		if yearText == "" || massText == "" {
			continue
		}
		year, err := parseYear(yearText)
		if err != nil {
			return nil, &RowError{Sheet: sheet, Row: i + 2, Err: err}
		}
		mass, err := parseMass(massText)
		if err != nil {
			return nil, &RowError{Sheet: sheet, Row: i + 2, Err: err}
		}
		records = append(records, YearlyMass{Year: year, Mass: mass})
	}
	return records, nil
}

// sheetRows reads sheet, or the first sheet of the workbook when sheet is
// empty.
func sheetRows(f *excelize.File, sheet string) (string, [][]string, error) {
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return "", nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return sheet, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return sheet, rows, nil
}

// columnIndex finds each wanted header, ignoring case and whitespace.
func columnIndex(header []string, names ...string) ([]int, error) {
	positions := make(map[string]int, len(header))
	for i, col := range header {
		key := normalizeHeader(col)
		if _, dup := positions[key]; !dup {
			positions[key] = i
		}
	}

	idx := make([]int, len(names))
	for i, name := range names {
		pos, ok := positions[normalizeHeader(name)]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
		idx[i] = pos
	}
	return idx, nil
}

func normalizeHeader(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func cellValue(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func parseNumber(text string) (float64, error) {
	cleaned := strings.ReplaceAll(text, ",", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", text)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %q", text)
	}
	return v, nil
}

func parseYear(text string) (int, error) {
	v, err := parseNumber(text)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) {
		return 0, fmt.Errorf("%w: %q", ErrFractionalYear, text)
	}
	if v < minYear || v > maxYear {
		return 0, fmt.Errorf("%w: %q", ErrYearOutOfRange, text)
	}
	return int(v), nil
}

func parseMass(text string) (float64, error) {
	v, err := parseNumber(text)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: %q", ErrNegativeMass, text)
	}
	return v, nil
}

// parsePercent accepts "50", "50.5" and cells formatted as "50%".
func parsePercent(text string) (float64, error) {
	return parseNumber(strings.TrimSuffix(strings.TrimSpace(text), "%"))
}
