package palette

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

var red = color.RGBA{R: 255, A: 255}

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	return img
}

// quadrants fills the four quarters of a square image with distinct colors.
func quadrants(side int) *image.RGBA {
	cols := []color.RGBA{
		{255, 0, 0, 255},
		{0, 255, 0, 255},
		{0, 0, 255, 255},
		{255, 255, 255, 255},
	}
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	half := side / 2
	for y := range side {
		for x := range side {
			i := 0
			if x >= half {
				i++
			}
			if y >= half {
				i += 2
			}
			img.SetRGBA(x, y, cols[i])
		}
	}
	return img
}

func TestExtractUniformAdaptive(t *testing.T) {
	p, err := Extract(solid(4, 4, red), 1, MethodAdaptive)
	if err != nil {
		t.Fatal(err)
	}
	if len(p) != 1 || p[0] != red {
		t.Fatalf("palette = %v, want [%v]", p, red)
	}
}

func TestExtractPadsWithBlack(t *testing.T) {
	p, err := Extract(solid(4, 4, red), 5, MethodAdaptive)
	if err != nil {
		t.Fatal(err)
	}
	if len(p) != 5 {
		t.Fatalf("len = %d, want 5", len(p))
	}
	if p[0] != red {
		t.Errorf("p[0] = %v, want red", p[0])
	}
	black := color.RGBA{A: 255}
	for i, c := range p[1:] {
		if c != black {
			t.Errorf("p[%d] = %v, want black", i+1, c)
		}
	}
}

func TestExtractInvalidCount(t *testing.T) {
	for _, n := range []int{0, -3} {
		if _, err := Extract(solid(2, 2, red), n, MethodAdaptive); !errors.Is(err, ErrInvalidColorCount) {
			t.Errorf("n=%d: err = %v, want ErrInvalidColorCount", n, err)
		}
	}
}

func gradient(side int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	for y := range side {
		for x := range side {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 255 / side), G: uint8(y * 255 / side), B: 128, A: 255})
		}
	}
	return img
}

func TestExtractLengthEveryMethod(t *testing.T) {
	img := gradient(32)
	for _, m := range []Method{MethodAdaptive, MethodMedian, MethodKMeans, MethodDominant, MethodProminent} {
		t.Run(m.String(), func(t *testing.T) {
			for _, n := range []int{1, 3, 4, 6} {
				p, err := Extract(img, n, m)
				if err != nil {
					t.Fatalf("n=%d: %v", n, err)
				}
				if len(p) != n {
					t.Errorf("n=%d: len = %d", n, len(p))
				}
				for i, c := range p {
					if c.A != 0xff {
						t.Errorf("n=%d: entry %d not opaque: %v", n, i, c)
					}
				}
			}
		})
	}
}

func near(a, b color.RGBA, tol int) bool {
	d := func(x, y uint8) int { return max(int(x)-int(y), int(y)-int(x)) }
	return d(a.R, b.R) <= tol && d(a.G, b.G) <= tol && d(a.B, b.B) <= tol
}

func TestExtractClusteringMethodsFindSourceColors(t *testing.T) {
	blue := color.RGBA{B: 255, A: 255}
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	for y := range 40 {
		for x := range 40 {
			c := red
			if x >= 30 {
				c = blue
			}
			img.SetRGBA(x, y, c)
		}
	}

	for _, m := range []Method{MethodDominant, MethodProminent, MethodKMeans} {
		t.Run(m.String(), func(t *testing.T) {
			p, err := Extract(img, 2, m)
			if err != nil {
				t.Fatal(err)
			}

			var foundRed, foundBlue bool
			for i, c := range p {
				switch {
				case near(c, red, 48):
					foundRed = true
				case near(c, blue, 48):
					foundBlue = true
				default:
					t.Errorf("entry %d = %v is neither red nor blue", i, c)
				}
			}
			if !foundRed || !foundBlue {
				t.Errorf("palette %v misses a source color", p)
			}
		})
	}
}

func TestQuantizeRemaps(t *testing.T) {
	img := quadrants(8)
	pal := Quantize(img, 4)
	if pal.Bounds() != img.Bounds() {
		t.Fatalf("bounds = %v", pal.Bounds())
	}
	if len(pal.Palette) > 4 {
		t.Fatalf("table has %d colors", len(pal.Palette))
	}
	for i, idx := range pal.Pix {
		if int(idx) >= len(pal.Palette) {
			t.Fatalf("pixel %d indexes %d outside a %d color table", i, idx, len(pal.Palette))
		}
	}

	uniform := Quantize(solid(3, 3, red), 2)
	if len(uniform.Palette) != 1 || uniform.At(1, 1) != color.Color(red) {
		t.Errorf("uniform table = %v", uniform.Palette)
	}
}

func TestQuantizeCapsTable(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := range 64 {
		for x := range 64 {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: uint8(x ^ y), A: 255})
		}
	}

	pal := Quantize(img, 300)
	if len(pal.Palette) > MaxPalettedColors {
		t.Fatalf("table has %d colors, want at most %d", len(pal.Palette), MaxPalettedColors)
	}
	for i, idx := range pal.Pix {
		if int(idx) >= len(pal.Palette) {
			t.Fatalf("pixel %d indexes %d outside a %d color table", i, idx, len(pal.Palette))
		}
	}

	p, err := Extract(img, 300, MethodAdaptive)
	if err != nil {
		t.Fatal(err)
	}
	if len(p) != 300 {
		t.Errorf("Extract returned %d colors, want 300", len(p))
	}
}

func TestParseMethod(t *testing.T) {
	for i, name := range MethodNames() {
		m, err := ParseMethod(name)
		if err != nil {
			t.Fatal(err)
		}
		if m != Method(i) || m.String() != name {
			t.Errorf("ParseMethod(%q) = %v", name, m)
		}
	}
	if m, err := ParseMethod("KMeans"); err != nil || m != MethodKMeans {
		t.Errorf("ParseMethod is case sensitive: %v, %v", m, err)
	}
	if _, err := ParseMethod("octree"); err == nil {
		t.Error("expected error for unknown method")
	}
}

func TestHex(t *testing.T) {
	p := Palette{red, {0x12, 0xab, 0x00, 0xff}}
	got := p.Hex()
	if len(got) != 2 || got[0] != "#ff0000" || got[1] != "#12ab00" {
		t.Errorf("Hex() = %v", got)
	}
}

func TestSwatches(t *testing.T) {
	p := Palette{red, {0, 255, 0, 255}, {0, 0, 255, 255}}
	img := Swatches(p, 100, 100)

	if img.Bounds() != image.Rect(0, 0, 300, 100) {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	for i, c := range p {
		for _, pt := range []image.Point{{i * 100, 0}, {i*100 + 99, 99}, {i*100 + 50, 50}} {
			if got := img.RGBAAt(pt.X, pt.Y); got != c {
				t.Errorf("pixel %v = %v, want %v", pt, got, c)
			}
		}
	}
}

func TestSwatchesDefaults(t *testing.T) {
	img := Swatches(Palette{red, red}, 0, -1)
	if img.Bounds() != image.Rect(0, 0, 2*DefaultSwatchWidth, DefaultSwatchHeight) {
		t.Errorf("bounds = %v", img.Bounds())
	}
}

func TestSaveSwatches(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []int{1, 6, 9} {
		p, err := Extract(gradient(16), n, MethodAdaptive)
		if err != nil {
			t.Fatal(err)
		}
		path := filepath.Join(dir, "palette.png")
		if err := SaveSwatches(p, path, 100, 100); err != nil {
			t.Fatal(err)
		}

		f, err := os.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		conf, err := png.DecodeConfig(f)
		f.Close()
		if err != nil {
			t.Fatal(err)
		}
		if conf.Width != n*100 || conf.Height != 100 {
			t.Errorf("n=%d: size = %dx%d", n, conf.Width, conf.Height)
		}
	}

	if err := SaveSwatches(nil, filepath.Join(dir, "empty.png"), 100, 100); err == nil {
		t.Error("expected error for empty palette")
	}
}

func TestRIFFRoundTrip(t *testing.T) {
	p := Palette{red, {1, 2, 3, 255}, {250, 128, 7, 255}}

	var buf bytes.Buffer
	n, err := WriteTo(&buf, []color.Palette{p.ColorPalette()})
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(buf.Len()) {
		t.Errorf("WriteTo reported %d bytes, wrote %d", n, buf.Len())
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("RIFF")) {
		t.Fatalf("missing RIFF magic: % x", buf.Bytes()[:4])
	}

	pals, err := ReadFrom(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(pals) != 1 || len(pals[0]) != len(p) {
		t.Fatalf("read back %v", pals)
	}
	for i, c := range pals[0] {
		if c != p[i] {
			t.Errorf("color %d = %v, want %v", i, c, p[i])
		}
	}
}

func TestSaveRIFF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "palette.pal")
	if err := SaveRIFF(Palette{red}, path); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	pals, err := ReadFrom(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(pals) != 1 || pals[0][0] != red {
		t.Errorf("read back %v", pals)
	}
}

func TestReadFromRejectsOtherForms(t *testing.T) {
	data := []byte("RIFF\x04\x00\x00\x00WAVE")
	if _, err := ReadFrom(bytes.NewReader(data)); err == nil {
		t.Error("expected error for non PAL RIFF")
	}
}
