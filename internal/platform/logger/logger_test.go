package logger

import (
	"bytes"
	"context"
	"testing"

	kit "zayavki/internal/platform/testkit"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]string{
		"trace":   "trace",
		"DEBUG":   "debug",
		"info":    "info",
		"warning": "warn",
		"error":   "error",
		"fatal":   "fatal",
		"panic":   "panic",
		"":        "info",
		" ??? ":   "info",
	}
	for in, want := range cases {
		if got := parseLevel(in).String(); got != want {
			t.Fatalf("parseLevel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInit_NamedAndRequestScoped(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{
		Level:        "debug",
		Format:       "console",
		Service:      "zayavki-api",
		Writer:       &buf,
		SampleEvery:  3,
		StaticFields: map[string]string{"build": "test"},
	})

	// resample to N=1 so every line is written
	rv := Get().Sample(&zerolog.BasicSampler{N: 1})
	rv.Info().Msg("root-line")

	nv := Named("source").Sample(&zerolog.BasicSampler{N: 1})
	nv.Info().Msg("named-line")

	ctx := WithRequest(context.Background(), "req-42")
	cv := C(ctx).Sample(&zerolog.BasicSampler{N: 1})
	cv.Info().Msg("ctx-line")

	out := buf.String()
	kit.MustContain(t, out, "root-line")
	kit.MustContain(t, out, "named-line")
	kit.MustContain(t, out, "source")
	kit.MustContain(t, out, "req-42")
	kit.MustContain(t, out, "zayavki-api")
	kit.MustContain(t, out, "build=")
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_SERVICE", "zayavki-map")
	t.Setenv("LOG_CALLER", "yes")
	t.Setenv("LOG_SAMPLE_EVERY", "4")

	opt := FromEnv()
	if opt.Level != "warn" || opt.Format != "json" || opt.Service != "zayavki-map" {
		t.Fatalf("FromEnv mismatch: %+v", opt)
	}
	if !opt.WithCaller || opt.SampleEvery != 4 {
		t.Fatalf("FromEnv caller/sample mismatch: %+v", opt)
	}
}

func TestWithRequest_EmptyIDLeavesContext(t *testing.T) {
	ctx := context.Background()
	if got := WithRequest(ctx, ""); got != ctx {
		t.Fatalf("expected same context for empty id")
	}
	if Named("") != Get() {
		t.Fatalf("Named(\"\") should return the root logger")
	}
}
