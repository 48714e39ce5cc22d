package visualize

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"palviz/histogram"
	"palviz/loader"
	"palviz/page"
	"palviz/palette"
	"palviz/parallel"

	"github.com/alecthomas/kong"
)

const (
	HistogramFile = "histogram.png"
	PaletteFile   = "palette.png"
	RIFFFile      = "palette.pal"
	PageFile      = "index.html"
)

// Exit statuses.
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitInputMissing = 2
)

type CLICmd struct {
	Input        string `arg:"" help:"Input image path"`
	Outdir       string `arg:"" help:"Output folder, created if missing"`
	Colors       int    `help:"Number of dominant colors" default:"6"`
	Method       string `help:"Palette extraction method (${enum})" enum:"adaptive,median,kmeans,dominant,prominent" default:"adaptive"`
	SwatchWidth  int    `help:"Width of one palette swatch" default:"100" group:"palette"`
	SwatchHeight int    `help:"Height of one palette swatch" default:"100" group:"palette"`
	Pal          bool   `help:"Also write the palette as a RIFF .pal file" default:"false" group:"palette"`
	Jobs         int    `help:"Number of analysis stages run at once, 0 for one per CPU" default:"1"`
	LogLevel     string `help:"Log level (${enum})" enum:"debug,info,warn,error" default:"info"`

	PaletteMethod palette.Method `kong:"-"`
	Level         slog.Level     `kong:"-"`
}

// Bundle lists the files written by a run.
type Bundle struct {
	Original  string
	Histogram string
	Palette   string
	RIFF      string
	Page      string
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	if c.Colors <= 0 {
		return fmt.Errorf("invalid number of colors: %d", c.Colors)
	}
	if c.SwatchWidth <= 0 {
		return fmt.Errorf("invalid swatch width: %d", c.SwatchWidth)
	}
	if c.SwatchHeight <= 0 {
		return fmt.Errorf("invalid swatch height: %d", c.SwatchHeight)
	}
	if c.Jobs < 0 {
		return fmt.Errorf("invalid number of jobs: %d", c.Jobs)
	}

	switch name := filepath.Base(c.Input); name {
	case HistogramFile, PaletteFile, PageFile, RIFFFile:
		return fmt.Errorf("input name %q clashes with a generated file", name)
	}

	var err error
	if c.PaletteMethod, err = palette.ParseMethod(c.Method); err != nil {
		return err
	}
	if err = c.Level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}

	outdir, err := filepath.Abs(c.Outdir)
	if err != nil {
		return fmt.Errorf("invalid output path %q: %w", c.Outdir, err)
	}
	c.Outdir = outdir

	return nil
}

// Run loads the input, renders the histogram and the palette through pool,
// and writes the page once both are done.
func (c *CLICmd) Run(pool *parallel.Pool) (*Bundle, error) {
	res, err := loader.Load(c.Input, c.Outdir)
	if err != nil {
		return nil, err
	}

	b := &Bundle{
		Original:  res.OriginalPath,
		Histogram: filepath.Join(c.Outdir, HistogramFile),
		Palette:   filepath.Join(c.Outdir, PaletteFile),
		Page:      filepath.Join(c.Outdir, PageFile),
	}
	if c.Pal {
		b.RIFF = filepath.Join(c.Outdir, RIFFFile)
	}

	pool.Do(func() error {
		return histogram.Render(res.Grid, b.Histogram)
	})

	var pal palette.Palette
	pool.Do(func() error {
		logger := slog.Default().With("method", c.PaletteMethod, "colors", c.Colors)
		p, err := palette.Extract(res.Grid.Image(), c.Colors, c.PaletteMethod)
		if err != nil {
			return err
		}
		logger.Info("extracted palette", "hex", p.Hex())

		if err = palette.SaveSwatches(p, b.Palette, c.SwatchWidth, c.SwatchHeight); err != nil {
			return err
		}
		if b.RIFF != "" {
			if err = palette.SaveRIFF(p, b.RIFF); err != nil {
				return err
			}
		}
		pal = p
		return nil
	})

	if err = pool.Wait(); err != nil {
		return nil, err
	}

	err = page.Write(b.Page, page.Data{
		Original:  b.Original,
		Histogram: b.Histogram,
		Palette:   b.Palette,
		Colors:    pal.Hex(),
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ExitCode maps a Run error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var notFound *loader.InputNotFoundError
	if errors.As(err, &notFound) {
		return ExitInputMissing
	}
	return ExitFailure
}

// Execute parses args, runs the pipeline and returns the exit status. The
// generated paths are printed to stdout, diagnostics go to stderr.
func Execute(args []string, stdout, stderr io.Writer, options ...kong.Option) int {
	var cli CLICmd
	options = append([]kong.Option{
		kong.Name("palviz"),
		kong.Description("Render the histogram and dominant palette of an image as an HTML page."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
	}, options...)

	parser, err := kong.New(&cli, options...)
	if err != nil {
		fmt.Fprintf(stderr, "palviz: %v\n", err)
		return ExitFailure
	}
	if _, err = parser.Parse(args); err != nil {
		parser.Errorf("%s", err)
		return ExitFailure
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cli.Level})))
	slog.Debug("running", "config", cli)

	bundle, err := cli.Run(parallel.Start(cli.Jobs))
	if err != nil {
		var notFound *loader.InputNotFoundError
		if errors.As(err, &notFound) {
			fmt.Fprintf(stderr, "Input image not found: %s\n", notFound.Path)
		} else {
			slog.Error("could not generate report", "error", err)
		}
		return ExitCode(err)
	}

	fmt.Fprintln(stdout, "Generated:", bundle.Histogram, bundle.Palette, bundle.Page)
	return ExitOK
}
