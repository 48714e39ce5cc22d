// Package histogram renders pixel value histograms of a grid as a chart.
package histogram

import (
	"fmt"
	"image/color"
	"log/slog"
	"slices"

	"palviz/imgio"
	"palviz/pixgrid"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Bins is the number of histogram bins, one per 8-bit sample value.
const Bins = 256

const (
	GrayTitle = "Grayscale Histogram"
	RGBTitle  = "RGB Histograms"
)

var channels = []struct {
	name string
	fill color.Color
}{
	{"red", color.NRGBA{R: 255, A: 128}},
	{"green", color.NRGBA{G: 128, A: 128}},
	{"blue", color.NRGBA{B: 255, A: 128}},
}

var dividers = floats.Span(make([]float64, Bins+1), 0, Bins)

// Compute counts the samples of every channel of g. Bin i of a channel holds
// the number of samples equal to i.
func Compute(g *pixgrid.Grid) ([][]float64, error) {
	counts := make([][]float64, g.Channels)
	for i := range g.Channels {
		samples, err := g.Channel(i)
		if err != nil {
			return nil, err
		}
		counts[i] = countSamples(samples)
	}
	return counts, nil
}

func countSamples(samples []uint8) []float64 {
	count := make([]float64, Bins)
	if len(samples) == 0 {
		return count
	}

	x := make([]float64, len(samples))
	for i, s := range samples {
		x[i] = float64(s)
	}
	slices.Sort(x)
	return stat.Histogram(count, dividers, x, nil)
}

// Render writes the histogram chart of g to path as PNG. One channel grids
// get a single grayscale histogram, anything else gets red, green and blue
// histograms overlaid.
func Render(g *pixgrid.Grid, path string) error {
	ch, err := newPlot(g)
	if err != nil {
		return err
	}

	slog.Info("rendering histogram", "title", ch.plot.Title.Text, "dest", path)
	c := vgimg.New(ch.width, ch.height)
	ch.plot.Draw(draw.New(c))

	if err = imgio.Save(c.Image(), "png", path); err != nil {
		return fmt.Errorf("could not save histogram: %w", err)
	}
	return nil
}

// chart is a plot with its canvas size and the legend entries, in the order
// they were added.
type chart struct {
	plot          *plot.Plot
	width, height vg.Length
	legend        []string
}

func newPlot(g *pixgrid.Grid) (*chart, error) {
	counts, err := Compute(g)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	if g.Channels == 1 {
		p.Title.Text = GrayTitle
		p.Add(newHistogram(counts[0], color.NRGBA{R: 31, G: 119, B: 180, A: 255}))
		return &chart{plot: p, width: 6 * vg.Inch, height: 3 * vg.Inch}, nil
	}

	if g.Channels < len(channels) {
		return nil, fmt.Errorf("unsupported channel count: %d", g.Channels)
	}

	p.Title.Text = RGBTitle
	p.X.Label.Text = "Pixel value"
	p.Y.Label.Text = "Count"
	out := &chart{plot: p, width: 8 * vg.Inch, height: 4 * vg.Inch}
	for i, ch := range channels {
		h := newHistogram(counts[i], ch.fill)
		p.Add(h)
		p.Legend.Add(ch.name, h)
		out.legend = append(out.legend, ch.name)
	}
	p.Legend.Top = true
	return out, nil
}

func newHistogram(count []float64, fill color.Color) *plotter.Histogram {
	bins := make([]plotter.HistogramBin, len(count))
	for i, w := range count {
		bins[i] = plotter.HistogramBin{
			Min:    float64(i),
			Max:    float64(i + 1),
			Weight: w,
		}
	}

	return &plotter.Histogram{
		Bins:      bins,
		Width:     1,
		FillColor: fill,
		LineStyle: draw.LineStyle{Color: fill},
	}
}
