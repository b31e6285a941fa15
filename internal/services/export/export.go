// Package export renders a filtered layer set as a self-contained Leaflet HTML page
package export

import (
	"bytes"
	_ "embed"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"zayavki/internal/core/pipeline"
	perr "zayavki/internal/platform/errors"
	ptime "zayavki/internal/platform/time"
)

//go:embed map.html.tmpl
var mapTemplate string

var tmpl = template.Must(template.New("map").Parse(mapTemplate))

// HeatOptions tunes the heat layer
type HeatOptions struct {
	Radius     int
	Blur       int
	MinOpacity float64
}

// Options are the fixed map settings
type Options struct {
	Title       string
	Center      [2]float64
	Zoom        int
	Heat        HeatOptions
	Tiles       string
	Attribution string
}

// DefaultOptions is Zelenodolsk on CartoDB Positron
func DefaultOptions() Options {
	return Options{
		Title:       "Заявки",
		Center:      [2]float64{55.8437, 48.5066},
		Zoom:        13,
		Heat:        HeatOptions{Radius: 20, Blur: 15, MinOpacity: 0.3},
		Tiles:       "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}{r}.png",
		Attribution: `&copy; OpenStreetMap contributors &copy; CARTO`,
	}
}

// View is one rendered filter state
type View struct {
	From       time.Time
	To         time.Time
	Categories []string // active categories in domain order
	Layers     pipeline.Layers
}

type group struct {
	Name    string
	Markers []pipeline.Marker
}

type page struct {
	Opts   Options
	From   string
	To     string
	Count  int
	Heat   []pipeline.HeatPoint
	Groups []group
	Bounds *pipeline.Bounds
}

// Renderer writes map pages
type Renderer struct {
	opts Options
}

// New builds a renderer; zero Options mean DefaultOptions
func New(opts Options) *Renderer {
	if opts.Zoom == 0 {
		opts = DefaultOptions()
	}
	return &Renderer{opts: opts}
}

// Render writes the page for v to w
func (r *Renderer) Render(w io.Writer, v View) error {
	p := page{
		Opts:   r.opts,
		From:   v.From.Format(ptime.DateLayout),
		To:     v.To.Format(ptime.DateLayout),
		Count:  len(v.Layers.Markers),
		Heat:   v.Layers.Heat,
		Groups: groups(v.Categories, v.Layers.Markers),
		Bounds: v.Layers.Bounds,
	}
	if p.Heat == nil {
		p.Heat = []pipeline.HeatPoint{}
	}
	if err := tmpl.Execute(w, p); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "render map")
	}
	return nil
}

// WriteFile renders v into path, creating parent directories
func (r *Renderer) WriteFile(path string, v View) error {
	var buf bytes.Buffer
	if err := r.Render(&buf, v); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeUnknown, "create %s", dir)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "write %s", path)
	}
	return nil
}

// FileName is the default output name for a window
func FileName(from, to time.Time) string {
	return "map_" + from.Format(ptime.DateLayout) + "_" + to.Format(ptime.DateLayout) + ".html"
}

// groups splits markers into one cluster group per category. Categories without
// markers are kept so the layer control lists every active category
func groups(order []string, markers []pipeline.Marker) []group {
	idx := make(map[string]int, len(order))
	out := make([]group, 0, len(order))
	for _, c := range order {
		idx[c] = len(out)
		out = append(out, group{Name: c, Markers: []pipeline.Marker{}})
	}
	for _, m := range markers {
		i, ok := idx[m.Category]
		if !ok {
			i = len(out)
			idx[m.Category] = i
			out = append(out, group{Name: m.Category, Markers: []pipeline.Marker{}})
		}
		out[i].Markers = append(out[i].Markers, m)
	}
	return out
}
