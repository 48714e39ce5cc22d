package loader

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"palviz/imgio"
	"palviz/pixgrid"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/vp8l"
	_ "golang.org/x/image/webp"
)

// InputNotFoundError is returned by Load when the input path does not exist.
type InputNotFoundError struct {
	Path string
}

func (e *InputNotFoundError) Error() string {
	return fmt.Sprintf("input image not found: %s", e.Path)
}

type Result struct {
	Grid *pixgrid.Grid
	// Format is the name of the decoder that read the input.
	Format string
	// OriginalPath is where the RGB copy of the input was written.
	OriginalPath string
}

// Load decodes input, normalizes it to RGB and writes a copy of it to
// outdir under its original base name. The input is checked before outdir
// is created, so a missing input leaves the filesystem untouched.
func Load(input, outdir string) (*Result, error) {
	if err := checkInput(input); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outdir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create destination folder %q: %w", outdir, err)
	}

	img, format, err := decode(input)
	if err != nil {
		return nil, err
	}
	logger := slog.Default().With("file", input)
	logger.Info("decoded image", "format", format,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())

	grid := pixgrid.FromImage(img)

	dest := filepath.Join(outdir, filepath.Base(input))
	outFormat := imgio.FormatFromPath(dest)
	if outFormat == "" {
		logger.Warn("no encoder for file extension, writing PNG data", "dest", dest)
		outFormat = "png"
	}
	if err = imgio.Save(grid.Image(), outFormat, dest); err != nil {
		return nil, fmt.Errorf("could not save copy of %q: %w", input, err)
	}

	return &Result{
		Grid:         grid,
		Format:       format,
		OriginalPath: dest,
	}, nil
}

func checkInput(input string) error {
	info, err := os.Stat(input)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &InputNotFoundError{Path: input}
		}
		return fmt.Errorf("cannot stat input file %q: %w", input, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("cannot read non-regular file %q: %s", info.Name(), info.Mode().String())
	}
	return nil
}

func decode(input string) (image.Image, string, error) {
	f, err := os.Open(input)
	if err != nil {
		return nil, "", fmt.Errorf("could not open image %q: %w", input, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Error("could not close image", "file", input, "error", closeErr)
		}
	}()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("could not decode image %q: %w", input, err)
	}
	return img, format, nil
}
