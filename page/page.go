// Package page writes the static HTML report that shows the original image,
// its histogram and its palette side by side.
package page

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"palviz/imgio"
)

// Data holds the paths of the generated artifacts. Only base names end up
// in the page, all files are expected to sit next to it.
type Data struct {
	Original  string
	Histogram string
	Palette   string
	// Colors are optional palette labels such as "#ff0000".
	Colors []string
}

const pageTemplate = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>Palette Visualizer</title>
<style>
body{font-family: sans-serif; padding:20px}
img{max-width: 100%; height: auto; border: 1px solid #ddd}
.container{display:flex; gap:20px; flex-wrap:wrap}
.card{width:320px}
.colors{list-style:none; padding:0; font-family: monospace}
</style>
</head>
<body>
<h1>Color Histogram &amp; Palette Visualizer</h1>
<p>Input image: {{.Name}}</p>
<div class="container">
  <div class="card"><h3>Original</h3><img src="{{.Original}}" alt="original"></div>
  <div class="card"><h3>Histogram</h3><img src="{{.Histogram}}" alt="histogram"></div>
  <div class="card"><h3>Palette</h3><img src="{{.Palette}}" alt="palette">
{{- if .Colors}}
    <ul class="colors">
{{- range .Colors}}
      <li>{{.}}</li>
{{- end}}
    </ul>
{{- end}}
  </div>
</div>
</body>
</html>
`

var tmpl = template.Must(template.New("page").Parse(pageTemplate))

type view struct {
	Name      string
	Original  string
	Histogram string
	Palette   string
	Colors    []string
}

// Render writes the page for d to w.
func Render(w io.Writer, d Data) error {
	v := view{
		Name:      filepath.Base(d.Original),
		Original:  filepath.Base(d.Original),
		Histogram: filepath.Base(d.Histogram),
		Palette:   filepath.Base(d.Palette),
		Colors:    d.Colors,
	}
	if err := tmpl.Execute(w, v); err != nil {
		return fmt.Errorf("could not render page: %w", err)
	}
	return nil
}

// Write renders the page for d into the file at path.
func Write(path string, d Data) error {
	var buf bytes.Buffer
	if err := Render(&buf, d); err != nil {
		return err
	}

	slog.Info("writing page", "dest", path)
	if err := os.WriteFile(path, buf.Bytes(), imgio.FileMode); err != nil {
		return fmt.Errorf("could not write page %q: %w", path, err)
	}
	return nil
}
