// Command zayavki-map renders a filtered window of the dataset into a standalone HTML map
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"zayavki/internal/adapters/source"
	"zayavki/internal/core/pipeline"
	"zayavki/internal/platform/config"
	"zayavki/internal/platform/logger"
	"zayavki/internal/services/api/dashboard/domain"
	dashsvc "zayavki/internal/services/api/dashboard/service"
	"zayavki/internal/services/export"
)

// listFlag collects repeated values; each one is kept verbatim
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, "; ") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

type args struct {
	data string
	from string
	to   string
	cats listFlag
	out  string
}

func parseArgs(argv []string, stderr io.Writer) (args, error) {
	var a args
	fs := flag.NewFlagSet("zayavki-map", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&a.data, "data", "", "dataset path or URL (default ZAYAVKI_DATA_PATH or points.json)")
	fs.StringVar(&a.from, "from", "", "start date YYYY-MM-DD (default dataset minimum)")
	fs.StringVar(&a.from, "f", "", "shorthand for --from")
	fs.StringVar(&a.to, "to", "", "end date YYYY-MM-DD inclusive (default dataset maximum)")
	fs.StringVar(&a.to, "t", "", "shorthand for --to")
	fs.Var(&a.cats, "cat", "exact category name to show, repeat for more (default all)")
	fs.Var(&a.cats, "c", "shorthand for --cat")
	fs.StringVar(&a.out, "out", "", "output file (default map_{from}_{to}.html)")
	if err := fs.Parse(argv); err != nil {
		return a, err
	}
	if fs.NArg() > 0 {
		return a, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return a, nil
}

// run loads the dataset, drives the pipeline controls to the requested filter and writes the page
func run(ctx context.Context, a args, cfg config.Conf) (string, error) {
	log := logger.Named("map")

	opts := source.FromConfig(cfg)
	if a.data != "" {
		opts.Location = a.data
	}
	snap, err := source.NewLoader(opts, nil).Load(ctx)
	if err != nil {
		return "", err
	}

	in := domain.LayersInput{}
	if a.from != "" {
		in.From = &a.from
	}
	if a.to != "" {
		in.To = &a.to
	}
	want, err := dashsvc.ResolveFilter(snap.Dataset, in)
	if err != nil {
		return "", err
	}

	// the range control clamps to the domain, which keeps membership only while the window overlaps it
	dom := snap.Dataset.Domain()
	overlaps := dom.HasRange && !want.To.Before(dom.Min) && !want.From.After(dom.Max)

	p := pipeline.New(snap.Dataset, &pipeline.HeatLayer{}, &pipeline.ClusterLayer{})
	if overlaps {
		if err := p.Range.Set(want.From, want.To); err != nil {
			return "", err
		}
	}
	if len(a.cats) > 0 {
		for _, c := range a.cats {
			if !snap.Dataset.HasCategory(c) {
				log.Warn().Str("category", c).Msg("category not in dataset; ignored")
			}
		}
		p.Toggles.SetOnly(a.cats...)
	}

	f := p.Filter()
	var active []string
	for _, t := range p.Toggles.States() {
		if t.On {
			active = append(active, t.Category)
		}
	}
	layers := p.Last()
	if dom.HasRange && !overlaps {
		log.Warn().Time("min", dom.Min).Time("max", dom.Max).Msg("window is outside the dataset; map is empty")
		f = pipeline.Filter{From: want.From, To: want.To, Active: f.Active}
		layers = pipeline.Render(snap.Dataset, f)
	}

	out := a.out
	if out == "" {
		out = export.FileName(want.From, want.To)
	}
	if err := export.New(export.DefaultOptions()).WriteFile(out, export.View{
		From:       f.From,
		To:         f.To,
		Categories: active,
		Layers:     layers,
	}); err != nil {
		return "", err
	}

	log.Info().
		Int("points", len(layers.Markers)).
		Int("total", layers.Total).
		Int("malformed", layers.Malformed).
		Strs("categories", active).
		Str("out", out).
		Msg("map written")
	return out, nil
}

func main() {
	logger.Init(logger.FromEnv())
	l := logger.Get()

	a, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		l.Fatal().Err(err).Msg("bad arguments")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	out, err := run(ctx, a, config.New().Prefix("ZAYAVKI_DATA_"))
	stop()
	if err != nil {
		l.Fatal().Err(err).Msg("map export failed")
	}
	fmt.Println(out)
}
