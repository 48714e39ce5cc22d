// Package pixgrid holds decoded images as dense 8-bit sample grids.
package pixgrid

import (
	"fmt"
	"image"
	"image/color"
)

// Grid is a decoded image. Pix holds Width*Height*Channels samples, row
// major, with the channels of a pixel stored next to each other.
type Grid struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// FromImage flattens img to 8-bit RGB. Palette, grayscale and 16-bit
// sources are converted, alpha is discarded without compositing.
func FromImage(img image.Image) *Grid {
	b := img.Bounds()
	g := &Grid{
		Width:    b.Dx(),
		Height:   b.Dy(),
		Channels: 3,
		Pix:      make([]uint8, b.Dx()*b.Dy()*3),
	}

	off := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			g.Pix[off] = c.R
			g.Pix[off+1] = c.G
			g.Pix[off+2] = c.B
			off += 3
		}
	}
	return g
}

// GrayFromImage builds a single channel grid holding the luma of img.
func GrayFromImage(img image.Image) *Grid {
	b := img.Bounds()
	g := &Grid{
		Width:    b.Dx(),
		Height:   b.Dy(),
		Channels: 1,
		Pix:      make([]uint8, b.Dx()*b.Dy()),
	}

	off := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g.Pix[off] = color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
			off++
		}
	}
	return g
}

// Channel returns a copy of the samples of channel i.
func (g *Grid) Channel(i int) ([]uint8, error) {
	if i < 0 || i >= g.Channels {
		return nil, fmt.Errorf("channel %d out of range for %d channel grid", i, g.Channels)
	}

	n := g.Width * g.Height
	out := make([]uint8, n)
	for p := range n {
		out[p] = g.Pix[p*g.Channels+i]
	}
	return out, nil
}

// Image returns an image view of the grid, *image.Gray for one channel and
// opaque *image.RGBA otherwise.
func (g *Grid) Image() image.Image {
	r := image.Rect(0, 0, g.Width, g.Height)
	if g.Channels == 1 {
		img := image.NewGray(r)
		copy(img.Pix, g.Pix)
		return img
	}

	img := image.NewRGBA(r)
	for p := range g.Width * g.Height {
		src := g.Pix[p*g.Channels:]
		dst := img.Pix[p*4:]
		dst[0], dst[1], dst[2], dst[3] = src[0], src[1], src[2], 0xff
	}
	return img
}
