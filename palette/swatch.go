package palette

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"palviz/imgio"

	"golang.org/x/image/draw"
)

const (
	DefaultSwatchWidth  = 100
	DefaultSwatchHeight = 100
)

// Swatches draws p as a horizontal strip of w x h solid blocks, first color
// on the left. Non-positive sizes fall back to the defaults.
func Swatches(p Palette, w, h int) *image.RGBA {
	if w <= 0 {
		w = DefaultSwatchWidth
	}
	if h <= 0 {
		h = DefaultSwatchHeight
	}

	img := image.NewRGBA(image.Rect(0, 0, w*len(p), h))
	for i, c := range p {
		block := image.Rect(i*w, 0, (i+1)*w, h)
		draw.Draw(img, block, image.NewUniform(c), image.Point{}, draw.Src)
	}
	return img
}

// SaveSwatches writes the swatch strip of p to path as PNG.
func SaveSwatches(p Palette, path string, w, h int) error {
	if len(p) == 0 {
		return errors.New("empty palette")
	}

	img := Swatches(p, w, h)
	slog.Info("writing palette swatches", "colors", len(p),
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy(), "dest", path)
	if err := imgio.Save(img, "png", path); err != nil {
		return fmt.Errorf("could not save palette swatches: %w", err)
	}
	return nil
}
