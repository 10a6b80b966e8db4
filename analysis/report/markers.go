package report

import (
	"image/color"

	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg/draw"
)

// markerShapes are cycled per line so neighbouring lines never share a glyph.
var markerShapes = []draw.GlyphDrawer{
	draw.CircleGlyph{},
	draw.PyramidGlyph{},
	draw.SquareGlyph{},
	draw.RingGlyph{},
	draw.TriangleGlyph{},
	draw.BoxGlyph{},
	draw.PlusGlyph{},
	draw.CrossGlyph{},
}

// plotContext carries per-chart drawing state: how many lines the chart has
// and which line is drawn next. It lives for one chart only.
type plotContext struct {
	lines          int
	markersPerLine int
	cursor         int
}

func newPlotContext(lines, markersPerLine int) *plotContext {
	if lines < 1 {
		lines = 1
	}
	if markersPerLine < 1 {
		markersPerLine = 1
	}
	return &plotContext{lines: lines, markersPerLine: markersPerLine}
}

// lineStyle is what the context hands out for one line.
type lineStyle struct {
	color   color.Color
	shape   draw.GlyphDrawer
	markers []int // indices into the line's points
}

// next returns the style of the next line, which has length points.
// Line i starts its markers at ⌊(i+1)·length / (lines·markersPerLine)⌋ and
// repeats every ⌊length / markersPerLine⌋ points, so lines drawn on the same
// chart place their markers at different x positions.
func (c *plotContext) next(length int) lineStyle {
	i := c.cursor
	c.cursor++

	start := (i + 1) * length / (c.lines * c.markersPerLine)
	step := length / c.markersPerLine
	if step < 1 {
		step = 1
	}
	var idx []int
	for k := start; k < length; k += step {
		idx = append(idx, k)
	}
	return lineStyle{
		color:   lineColor(i),
		shape:   markerShapes[i%len(markerShapes)],
		markers: idx,
	}
}

// lineColor returns the colour of line i of a chart.
func lineColor(i int) color.Color {
	return plotutil.Color(i)
}

// withAlpha returns c with its alpha replaced by a (0..1).
func withAlpha(c color.Color, a float64) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(a*255 + 0.5)
	return n
}
