package palette

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// Longest side of the image handed to clustering methods.
const maxSampleSide = 160

// downscale shrinks img so its longest side is at most side pixels, keeping
// the aspect ratio. Smaller images are returned as is.
func downscale(img image.Image, side int) image.Image {
	srcBounds := img.Bounds()
	srcWidth := float64(srcBounds.Dx())
	srcHeight := float64(srcBounds.Dy())
	longest := max(srcWidth, srcHeight)
	if longest <= float64(side) {
		return img
	}

	scale := float64(side) / longest
	destBounds := image.Rect(0, 0,
		max(1, int(math.Round(srcWidth*scale))),
		max(1, int(math.Round(srcHeight*scale))))

	dest := image.NewRGBA(destBounds)
	draw.ApproxBiLinear.Scale(dest, destBounds, img, srcBounds, draw.Src, nil)
	return dest
}
