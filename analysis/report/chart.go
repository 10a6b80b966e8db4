package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/bapomdp/bares/analysis"
)

const (
	lineAlpha   = 0.9
	ribbonAlpha = 0.5
	markerSize  = 7.0 // diameter, points
	markerEdge  = 1.0 // black outline width, points
)

// ChartOptions controls the look of a rendered chart.
type ChartOptions struct {
	Title          string
	XLabel         string
	YLabel         string
	WidthIn        float64 // inches
	HeightIn       float64 // inches
	MarkersPerLine int
	LineWidth      float64 // points
	LegendTop      bool
	LegendLeft     bool
}

// DefaultEndOptions returns the options used by the end-performance chart.
func DefaultEndOptions() ChartOptions {
	return ChartOptions{
		YLabel:         "return",
		WidthIn:        8,
		HeightIn:       6,
		MarkersPerLine: 5,
		LineWidth:      0.8,
	}
}

// DefaultLearningOptions returns the options used by the learning-curve chart.
func DefaultLearningOptions() ChartOptions {
	return ChartOptions{
		XLabel:         "# episodes",
		YLabel:         "return per episode",
		WidthIn:        8,
		HeightIn:       6,
		MarkersPerLine: 5,
		LineWidth:      0.8,
	}
}

// Line is one labeled condition of the end-performance chart: Y[k] is the
// terminal mean return of the k-th result file in the condition's manifest.
type Line struct {
	Label string
	Y     []float64
}

// EndLine builds a Line from the records of one manifest, taking the mean of
// each record's last row.
func EndLine(label string, records []analysis.Record) Line {
	y := make([]float64, len(records))
	for i, r := range records {
		y[i] = r.LastMean()
	}
	return Line{Label: label, Y: y}
}

// Curve is one labeled learning curve: mean return and its standard error per episode.
type Curve struct {
	Label string
	Mean  []float64
	Stder []float64
}

// CurveFromRecord builds a Curve from a record, recomputing stder = sqrt(var/n).
func CurveFromRecord(label string, r analysis.Record) Curve {
	return Curve{
		Label: label,
		Mean:  append([]float64(nil), r.Mu...),
		Stder: analysis.StandardError(r.Var, r.N),
	}
}

// EndPerformanceChart plots one line per condition against the swept
// parameter x on a logarithmic axis.
func EndPerformanceChart(x []float64, lines []Line, opts ChartOptions) (*plot.Plot, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("%w: no x values", analysis.ErrBadShape)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: no lines to plot", analysis.ErrLengthMismatch)
	}
	if floats.Min(x) <= 0 {
		return nil, fmt.Errorf("x values must be positive on a logarithmic axis, got minimum %g", floats.Min(x))
	}
	for i, l := range lines {
		if len(l.Y) != len(x) {
			return nil, fmt.Errorf("%w: line %d (%q) has %d values but there are %d x values",
				analysis.ErrLengthMismatch, i, l.Label, len(l.Y), len(x))
		}
	}

	p := newPlot(opts)
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}

	ctx := newPlotContext(len(lines), opts.MarkersPerLine)
	for _, l := range lines {
		xys := make(plotter.XYs, len(x))
		for k := range x {
			xys[k] = plotter.XY{X: x[k], Y: l.Y[k]}
		}
		if err := addLine(p, ctx, l.Label, xys, opts); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// LearningChart plots return per episode for every curve. With withStder each
// curve gets a ribbon of mean ± 2·stder. All curves must have the same length.
func LearningChart(curves []Curve, withStder bool, opts ChartOptions) (*plot.Plot, error) {
	if len(curves) == 0 {
		return nil, fmt.Errorf("%w: no curves to plot", analysis.ErrLengthMismatch)
	}
	episodes := len(curves[0].Mean)
	for i, c := range curves {
		if len(c.Mean) != episodes {
			return nil, fmt.Errorf("%w: curve %d (%q) has %d episodes, curve 0 has %d",
				analysis.ErrLengthMismatch, i, c.Label, len(c.Mean), episodes)
		}
		if withStder && len(c.Stder) != episodes {
			return nil, fmt.Errorf("%w: curve %d (%q) has %d standard errors for %d episodes",
				analysis.ErrLengthMismatch, i, c.Label, len(c.Stder), episodes)
		}
	}

	p := newPlot(opts)
	p.X.Min = 0
	p.X.Max = float64(episodes)

	ctx := newPlotContext(len(curves), opts.MarkersPerLine)
	for _, c := range curves {
		xys := make(plotter.XYs, episodes)
		for e, m := range c.Mean {
			xys[e] = plotter.XY{X: float64(e), Y: m}
		}
		if withStder {
			// The ribbon takes the colour of the line drawn next.
			if err := addRibbon(p, ctx.cursor, c); err != nil {
				return nil, err
			}
		}
		if err := addLine(p, ctx, c.Label, xys, opts); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func newPlot(opts ChartOptions) *plot.Plot {
	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel
	p.Legend.Top = opts.LegendTop
	p.Legend.Left = opts.LegendLeft
	p.Add(plotter.NewGrid())
	return p
}

func addLine(p *plot.Plot, ctx *plotContext, label string, xys plotter.XYs, opts ChartOptions) error {
	style := ctx.next(len(xys))

	line, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("line %q: %w", label, err)
	}
	line.LineStyle.Color = withAlpha(style.color, lineAlpha)
	line.LineStyle.Width = vg.Points(opts.LineWidth)
	p.Add(line)

	marked := make(plotter.XYs, len(style.markers))
	for i, k := range style.markers {
		marked[i] = xys[k]
	}
	if len(marked) == 0 {
		p.Legend.Add(label, line)
		return nil
	}
	edge, fill, err := newMarkers(marked, style)
	if err != nil {
		return fmt.Errorf("markers %q: %w", label, err)
	}
	p.Add(edge, fill)
	p.Legend.Add(label, line, edge, fill)
	return nil
}

// newMarkers returns the glyphs for one line: a black glyph drawn first and a
// smaller coloured one on top, so every marker has a dark edge.
func newMarkers(xys plotter.XYs, style lineStyle) (edge, fill *plotter.Scatter, err error) {
	edge, err = plotter.NewScatter(xys)
	if err != nil {
		return nil, nil, err
	}
	edge.GlyphStyle.Shape = style.shape
	edge.GlyphStyle.Color = color.Black
	edge.GlyphStyle.Radius = vg.Points(markerSize/2 + markerEdge)

	fill, err = plotter.NewScatter(xys)
	if err != nil {
		return nil, nil, err
	}
	fill.GlyphStyle.Shape = style.shape
	fill.GlyphStyle.Color = withAlpha(style.color, lineAlpha)
	fill.GlyphStyle.Radius = vg.Points(markerSize / 2)
	return edge, fill, nil
}

// addRibbon shades mean ± 2·stder in the colour of line number lineIdx.
func addRibbon(p *plot.Plot, lineIdx int, c Curve) error {
	n := len(c.Mean)
	lower := make([]float64, n)
	upper := make([]float64, n)
	floats.AddScaledTo(lower, c.Mean, -2, c.Stder)
	floats.AddScaledTo(upper, c.Mean, 2, c.Stder)

	ring := make(plotter.XYs, 0, 2*n)
	for e := 0; e < n; e++ {
		ring = append(ring, plotter.XY{X: float64(e), Y: lower[e]})
	}
	for e := n - 1; e >= 0; e-- {
		ring = append(ring, plotter.XY{X: float64(e), Y: upper[e]})
	}
	poly, err := plotter.NewPolygon(ring)
	if err != nil {
		return fmt.Errorf("ribbon %q: %w", c.Label, err)
	}
	poly.Color = withAlpha(lineColor(lineIdx), ribbonAlpha)
	poly.LineStyle.Width = 0
	p.Add(poly)
	return nil
}

// Save writes p to path; the image format follows the file extension.
func Save(p *plot.Plot, path string, opts ChartOptions) error {
	if err := p.Save(vg.Length(opts.WidthIn)*vg.Inch, vg.Length(opts.HeightIn)*vg.Inch, path); err != nil {
		return fmt.Errorf("saving chart to %s: %w", path, err)
	}
	return nil
}
