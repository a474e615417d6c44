package backtest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/rustyeddy/marketmind/metrics"
)

const (
	colorTextPrimary   = "#e6e6e6"
	colorTextSecondary = "#9aa4b2"
	colorPnL           = "#26a69a"
)

// RenderPnLChart writes an HTML line chart of the cumulative P&L series.
func RenderPnLChart(w io.Writer, title string, points []metrics.Point) error {
	if len(points) == 0 {
		return fmt.Errorf("pnl chart: no points")
	}

	xAxis := make([]string, len(points))
	values := make([]opts.LineData, len(points))
	for i, p := range points {
		xAxis[i] = p.Time.UTC().Format(time.DateTime)
		values[i] = opts.LineData{Value: p.Value}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     "1200px",
			Height:    "480px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:      title,
			Subtitle:   "cumulative P&L",
			TitleStyle: &opts.TextStyle{Color: colorTextPrimary},
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", XAxisIndex: []int{0}}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale:     opts.Bool(true),
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
		}),
	)
	line.SetXAxis(xAxis).AddSeries("P&L", values,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: colorPnL, Width: 2}),
	)
	return line.Render(w)
}

// WritePnLChart renders the result's P&L series to path.
func WritePnLChart(path string, r *Result) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("pnl chart: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pnl chart: %w", err)
	}
	defer f.Close()

	title := fmt.Sprintf("%s backtest %s", r.Symbol, r.RunID)
	if err := RenderPnLChart(f, title, r.PnL); err != nil {
		return err
	}
	return f.Close()
}
