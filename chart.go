package main

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var ErrNoChartData = errors.New("no rows to chart")

var (
	timbGreen  = color.RGBA{R: 11, G: 102, B: 35, A: 255}
	timbGold   = color.RGBA{R: 218, G: 165, B: 32, A: 255}
	actualTeal = color.RGBA{R: 0, G: 128, B: 128, A: 255}
)

const (
	chartWidth  = 10 * vg.Inch
	chartHeight = 6 * vg.Inch
)

// NewComparisonChart plots actual exports as dots, predictions as a line
// and the forecast, if any, as a gold cross. Each actual point carries its
// signed deviation.
func NewComparisonChart(rows []ComparisonRow, forecast *PredictionRecord) (*plot.Plot, error) {
	if len(rows) == 0 {
		return nil, ErrNoChartData
	}

	p := plot.New()
	p.Title.Text = "Actual vs Predicted Exports"
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Exports (kg)"
	p.Legend.Top = true

	grid := plotter.NewGrid()
	grid.Vertical.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
	grid.Horizontal.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
	p.Add(grid)

	var actual, predicted, deviations plotter.XYs
	var deviationLabels []string
	yMax := 0.0
	for _, r := range rows {
		x := float64(r.Year)
		if r.Actual != nil {
			actual = append(actual, plotter.XY{X: x, Y: *r.Actual})
			yMax = math.Max(yMax, *r.Actual)
			if r.DeviationPct != nil {
				deviations = append(deviations, plotter.XY{X: x, Y: *r.Actual})
				deviationLabels = append(deviationLabels, formatPct(*r.DeviationPct))
			}
		}
		if r.Predicted != nil {
			predicted = append(predicted, plotter.XY{X: x, Y: *r.Predicted})
			yMax = math.Max(yMax, *r.Predicted)
		}
	}

	if len(predicted) > 0 {
		line, err := plotter.NewLine(predicted)
		if err != nil {
			return nil, fmt.Errorf("prediction line: %w", err)
		}
		line.Color = timbGreen
		line.Width = vg.Points(1.8)
		p.Add(line)
		p.Legend.Add("Pattern-Based Prediction", line)
	}

	if len(actual) > 0 {
		scatter, err := plotter.NewScatter(actual)
		if err != nil {
			return nil, fmt.Errorf("actual scatter: %w", err)
		}
		scatter.GlyphStyle.Color = actualTeal
		scatter.GlyphStyle.Radius = vg.Points(3)
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(scatter)
		p.Legend.Add("Actual Exports", scatter)
	}

	if forecast != nil {
		marker, err := plotter.NewScatter(plotter.XYs{{X: float64(forecast.Year), Y: forecast.Predicted}})
		if err != nil {
			return nil, fmt.Errorf("forecast marker: %w", err)
		}
		marker.GlyphStyle.Color = timbGold
		marker.GlyphStyle.Radius = vg.Points(6)
		marker.GlyphStyle.Shape = draw.CrossGlyph{}
		p.Add(marker)
		p.Legend.Add(fmt.Sprintf("%d Prediction", forecast.Year), marker)
		yMax = math.Max(yMax, forecast.Predicted)
	}

	if len(deviations) > 0 {
		labels, err := plotter.NewLabels(plotter.XYLabels{XYs: deviations, Labels: deviationLabels})
		if err != nil {
			return nil, fmt.Errorf("deviation labels: %w", err)
		}
		for i := range labels.TextStyle {
			labels.TextStyle[i].Font.Size = vg.Points(7)
		}
		labels.Offset = vg.Point{X: -vg.Points(8), Y: vg.Points(5)}
		p.Add(labels)
	}

	first, last := rows[0].Year, rows[len(rows)-1].Year
	if forecast != nil && forecast.Year > last {
		last = forecast.Year
	}
	p.X.Min = float64(first) - 0.5
	p.X.Max = float64(last) + 0.5
	p.X.Tick.Marker = yearTicks(first, last)
	p.Y.Min = 0
	p.Y.Max = 1
	if yMax > 0 {
		p.Y.Max = yMax * 1.15
	}
	p.Y.Tick.Marker = kgTicks{}

	return p, nil
}

// SaveComparisonChart renders the chart to a PNG file.
func SaveComparisonChart(path string, rows []ComparisonRow, forecast *PredictionRecord) error {
	p, err := NewComparisonChart(rows, forecast)
	if err != nil {
		return err
	}
	if err := p.Save(chartWidth, chartHeight, path); err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	return nil
}

// WriteComparisonChart renders the chart as PNG to w.
func WriteComparisonChart(w io.Writer, rows []ComparisonRow, forecast *PredictionRecord) error {
	p, err := NewComparisonChart(rows, forecast)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(chartWidth, chartHeight, "png")
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

func yearTicks(first, last int) plot.ConstantTicks {
	ticks := make(plot.ConstantTicks, 0, last-first+1)
	for year := first; year <= last; year++ {
		ticks = append(ticks, plot.Tick{Value: float64(year), Label: fmt.Sprintf("%d", year)})
	}
	return ticks
}

// kgTicks relabels the default ticks with grouped thousands.
type kgTicks struct{}

func (kgTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = formatKg(ticks[i].Value)
		}
	}
	return ticks
}
