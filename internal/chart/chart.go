// Package chart renders the power/speed scatter and trend chart as a PNG.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/chrissnell/powerspeed/internal/analysis"
)

// ErrNothingToPlot is returned when the result has no series to draw
var ErrNothingToPlot = errors.New("nothing to plot")

const (
	DefaultWidth  = 1280
	DefaultHeight = 720
)

// Options controls the rendered image size
type Options struct {
	Width  int
	Height int
}

// Render draws one scatter series per vessel plus its trend line, when it has
// one, and writes the PNG to w.
func Render(w io.Writer, res *analysis.Result, opts Options) error {
	if res == nil || res.Status != analysis.StatusOK || len(res.Series) == 0 {
		return ErrNothingToPlot
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}

	colors := Palette(len(res.Series))
	xr := newBounds()
	yr := newBounds()

	var series []gochart.Series
	for i, vs := range res.Series {
		xs := make([]float64, len(vs.Points))
		ys := make([]float64, len(vs.Points))
		for j, p := range vs.Points {
			xs[j], ys[j] = p.Speed, p.Power
			xr.add(p.Speed)
			yr.add(p.Power)
		}
		// A single point still needs two values to form a series
		if len(xs) == 1 {
			xs = append(xs, xs[0])
			ys = append(ys, ys[0])
		}
		series = append(series, gochart.ContinuousSeries{
			Name:    vs.VesselName,
			XValues: xs,
			YValues: ys,
			Style:   pointStyle(colors[i]),
		})

		if vs.Trend.Available() {
			for _, y := range vs.Trend.Curve.Y {
				yr.add(y)
			}
			series = append(series, gochart.ContinuousSeries{
				Name:    vs.VesselName + " (Trend)",
				XValues: vs.Trend.Curve.X,
				YValues: vs.Trend.Curve.Y,
				Style:   lineStyle(colors[i]),
			})
		}
	}

	metric := string(res.Criteria.Metric)
	ch := gochart.Chart{
		Title:      fmt.Sprintf("MEShaftPowerActual vs %s", metric),
		Width:      opts.Width,
		Height:     opts.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis: gochart.XAxis{
			Name:           metric,
			Range:          xr.rangeOf(),
			ValueFormatter: twoDecimals,
		},
		YAxis: gochart.YAxis{
			Name:           "MEShaftPowerActual (kW)",
			Range:          yr.rangeOf(),
			ValueFormatter: twoDecimals,
		},
		Series: series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}

	if err := ch.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("error rendering chart: %w", err)
	}
	return nil
}

func pointStyle(c Pair) gochart.Style {
	return gochart.Style{
		StrokeWidth: gochart.Disabled,
		DotWidth:    3,
		DotColor:    c.Scatter,
	}
}

func lineStyle(c Pair) gochart.Style {
	return gochart.Style{
		StrokeWidth: 2.5,
		StrokeColor: c.Trend,
	}
}

func twoDecimals(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.2f", f)
	}
	return fmt.Sprint(v)
}

// bounds tracks an axis extent so a flat dataset still gets a drawable range
type bounds struct {
	min, max float64
}

func newBounds() *bounds {
	return &bounds{min: math.Inf(1), max: math.Inf(-1)}
}

func (b *bounds) add(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	b.min = math.Min(b.min, v)
	b.max = math.Max(b.max, v)
}

func (b *bounds) rangeOf() *gochart.ContinuousRange {
	lo, hi := b.min, b.max
	if math.IsInf(lo, 1) {
		lo, hi = 0, 1
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(lo)*0.05, 1)
	}
	return &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
