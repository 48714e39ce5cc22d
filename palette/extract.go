package palette

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"slices"
	"strings"

	"github.com/EdlinOrg/prominentcolor"
	"github.com/cenkalti/dominantcolor"
	"github.com/ericpauley/go-quantize/quantize"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"github.com/soniakeys/quant/median"
	"golang.org/x/image/draw"
)

var ErrInvalidColorCount = errors.New("number of colors must be greater than zero")

// Palette is an ordered color table. Order is the left to right order of
// the swatches.
type Palette []color.RGBA

// Hex returns the colors as #rrggbb strings.
func (p Palette) Hex() []string {
	out := make([]string, len(p))
	for i, c := range p {
		col, _ := colorful.MakeColor(c)
		out[i] = col.Hex()
	}
	return out
}

func (p Palette) ColorPalette() color.Palette {
	out := make(color.Palette, len(p))
	for i, c := range p {
		out[i] = c
	}
	return out
}

type Method int

const (
	// MethodAdaptive reduces the image with median cut and remaps it onto
	// the resulting table.
	MethodAdaptive Method = iota
	MethodMedian
	MethodKMeans
	MethodDominant
	MethodProminent
)

var methodNames = []string{"adaptive", "median", "kmeans", "dominant", "prominent"}

// MethodNames lists the accepted method names in Method order.
func MethodNames() []string {
	return slices.Clone(methodNames)
}

func (m Method) String() string {
	if m < 0 || int(m) >= len(methodNames) {
		return fmt.Sprintf("Method(%d)", int(m))
	}
	return methodNames[m]
}

func ParseMethod(s string) (Method, error) {
	i := slices.Index(methodNames, strings.ToLower(s))
	if i < 0 {
		return 0, fmt.Errorf("unknown palette method %q, expected one of %s", s, strings.Join(methodNames, ", "))
	}
	return Method(i), nil
}

// Extract reduces img to n representative colors with method and returns
// exactly n entries in the order the library produced them. If the library
// yields fewer than n colors, the remaining entries are black.
func Extract(img image.Image, n int, method Method) (Palette, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidColorCount, n)
	}

	var (
		table color.Palette
		err   error
	)
	switch method {
	case MethodAdaptive:
		table = Quantize(img, n).Palette
	case MethodMedian:
		table = median.Quantizer(n).Quantize(make(color.Palette, 0, n), img)
	case MethodKMeans:
		table, err = kmeansTable(img, n)
	case MethodDominant:
		table = dominantTable(img, n)
	case MethodProminent:
		table, err = prominentTable(img, n)
	default:
		return nil, fmt.Errorf("unsupported palette method: %s", method)
	}
	if err != nil {
		return nil, fmt.Errorf("could not extract %s palette: %w", method, err)
	}

	slog.Debug("palette table", "method", method, "requested", n, "returned", len(table))
	return fromTable(table, n), nil
}

// MaxPalettedColors is the largest table an image.Paletted can index.
const MaxPalettedColors = 256

// Quantize maps img onto an adaptive table of at most n colors built with
// median cut. n is capped at MaxPalettedColors.
func Quantize(img image.Image, n int) *image.Paletted {
	n = min(n, MaxPalettedColors)
	q := quantize.MedianCutQuantizer{Aggregation: quantize.Mean}
	pal := q.Quantize(make(color.Palette, 0, n), img)

	sr := img.Bounds()
	dr := image.Rect(0, 0, sr.Dx(), sr.Dy())
	dest := image.NewPaletted(dr, pal)
	if len(pal) > 0 {
		draw.Draw(dest, dr, img, sr.Min, draw.Src)
	}
	return dest
}

func fromTable(table color.Palette, n int) Palette {
	out := make(Palette, n)
	for i := range out {
		out[i] = color.RGBA{A: 0xff}
		if i >= len(table) || table[i] == nil {
			continue
		}
		c := color.RGBAModel.Convert(table[i]).(color.RGBA)
		out[i].R, out[i].G, out[i].B = c.R, c.G, c.B
	}
	return out
}

func kmeansTable(img image.Image, n int) (color.Palette, error) {
	sample := downscale(img, maxSampleSide)
	b := sample.Bounds()

	dataset := make(clusters.Observations, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := sample.At(x, y).RGBA()
			dataset = append(dataset, clusters.Coordinates{
				float64(r) / 0xffff,
				float64(g) / 0xffff,
				float64(bl) / 0xffff,
			})
		}
	}
	if len(dataset) == 0 {
		return nil, nil
	}

	cc, err := kmeans.New().Partition(dataset, min(n, len(dataset)))
	if err != nil {
		return nil, err
	}

	// most populated cluster first
	slices.SortStableFunc(cc, func(a, b clusters.Cluster) int {
		return len(b.Observations) - len(a.Observations)
	})

	table := make(color.Palette, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		r, g, bl := col.RGB255()
		table = append(table, color.RGBA{R: r, G: g, B: bl, A: 0xff})
	}
	return table, nil
}

func dominantTable(img image.Image, n int) color.Palette {
	found := dominantcolor.FindWeight(img, n)
	table := make(color.Palette, 0, len(found))
	for _, c := range found {
		table = append(table, c.RGBA)
	}
	return table
}

const prominentResize = 80

func prominentTable(img image.Image, n int) (color.Palette, error) {
	items, err := prominentcolor.KmeansWithAll(n, img, prominentcolor.ArgumentNoCropping, prominentResize, nil)
	if err != nil {
		return nil, err
	}

	table := make(color.Palette, 0, len(items))
	for _, it := range items {
		table = append(table, color.RGBA{
			R: uint8(it.Color.R),
			G: uint8(it.Color.G),
			B: uint8(it.Color.B),
			A: 0xff,
		})
	}
	return table, nil
}
