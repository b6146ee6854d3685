package pipeline

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"go-sqa-metrics/internal/model"
)

// Chart kinds accepted by RenderHTML.
const (
	ChartBar  = "bar"
	ChartLine = "line"
)

// ErrEmptyChart is returned when there is nothing to draw.
var ErrEmptyChart = errors.New("chart has no data")

// RenderHTML writes a standalone HTML page with a bar or line chart of data.
func RenderHTML(w io.Writer, data model.ChartData, kind, title string) error {
	if data.IsEmpty() || len(data.Series) == 0 {
		return ErrEmptyChart
	}
	global := []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "100%", Height: "540px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("%s, %d series", data.CategoryKey, len(data.Series))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
	}

	switch kind {
	case ChartLine:
		line := charts.NewLine()
		line.SetGlobalOptions(global...)
		line.SetXAxis(data.Categories())
		for _, s := range data.Series {
			values := data.SeriesValues(s)
			points := make([]opts.LineData, len(values))
			for i, v := range values {
				points[i] = opts.LineData{Value: v}
			}
			line.AddSeries(s, points)
		}
		return line.Render(w)
	case ChartBar, "":
		bar := charts.NewBar()
		bar.SetGlobalOptions(global...)
		bar.SetXAxis(data.Categories())
		for _, s := range data.Series {
			values := data.SeriesValues(s)
			points := make([]opts.BarData, len(values))
			for i, v := range values {
				points[i] = opts.BarData{Value: v}
			}
			bar.AddSeries(s, points)
		}
		return bar.Render(w)
	}
	return fmt.Errorf("unknown chart kind %q", kind)
}

// RenderPNG writes a grouped bar chart of data as a PNG image.
func RenderPNG(w io.Writer, data model.ChartData, title string) error {
	if data.IsEmpty() || len(data.Series) == 0 {
		return ErrEmptyChart
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = data.CategoryKey
	p.Legend.Top = true

	width := vg.Points(48 / float64(len(data.Series)))
	if width < vg.Points(4) {
		width = vg.Points(4)
	}
	mid := float64(len(data.Series)-1) / 2
	for i, s := range data.Series {
		bars, err := plotter.NewBarChart(plotter.Values(data.SeriesValues(s)), width)
		if err != nil {
			return fmt.Errorf("failed to build bars for %q: %w", s, err)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(i)
		bars.Offset = vg.Length(float64(i)-mid) * width
		p.Add(bars)
		p.Legend.Add(s, bars)
	}
	p.NominalX(data.Categories()...)

	wt, err := p.WriterTo(10*vg.Inch, 5*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("failed to create PNG writer: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}
