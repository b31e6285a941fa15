// Package web serves the embedded dashboard page
package web

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	phttp "zayavki/internal/platform/net/http"
	"zayavki/internal/services/export"
)

//go:embed static/*
var content embed.FS

var index = template.Must(template.ParseFS(content, "static/index.html"))

// Options configure the page
type Options struct {
	APIBase string // where the dashboard endpoints live, e.g. /api/v1/dashboard
	Map     export.Options
}

// Mount serves the page at / and its assets under /static/
func Mount(r phttp.Router, opt Options) error {
	if opt.Map.Zoom == 0 {
		opt.Map = export.DefaultOptions()
	}
	var page bytes.Buffer
	if err := index.Execute(&page, opt); err != nil {
		return err
	}
	body := page.Bytes()

	static, err := fs.Sub(content, "static")
	if err != nil {
		return err
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(body)
	})
	return nil
}
