// @title         Zayavki API
// @version       0.1.0
// @description   Filter and render endpoints for the zayavki map dashboard

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"zayavki/internal/adapters/source"
	"zayavki/internal/platform/config"
	"zayavki/internal/platform/logger"
	phttp "zayavki/internal/platform/net/http"
	"zayavki/internal/platform/net/middleware"

	"zayavki/internal/services/api"

	"github.com/go-chi/chi/v5"
)

func main() {
	// service-scoped config for HTTP etc (ZAYAVKI_API_*)
	root := config.New()
	apiCfg := root.Prefix("ZAYAVKI_API_")
	dataCfg := root.Prefix("ZAYAVKI_DATA_") // dataset location and decoding

	// bring up logging early
	logger.Init(logger.FromEnv())
	l := logger.Get()

	// http server (reads ZAYAVKI_API_ADDR / ZAYAVKI_API_SHUTDOWN_GRACE)
	srv := phttp.NewServer(apiCfg, func(m *chi.Mux) {
		m.Use(middleware.Defaults()...)
	})

	// mount our API
	a, err := api.Mount(
		srv.Router(),
		api.Options{
			Config:         apiCfg,
			Source:         source.NewLoader(source.FromConfig(dataCfg), nil),
			Logger:         l,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
			AllowedOrigins: apiCfg.MayCSV("CORS_ORIGINS", nil),
			SlowRequest:    apiCfg.MayDuration("SLOW_REQUEST", 0),
		},
	)
	if err != nil {
		l.Panic().Err(err).Msg("api.Mount failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// the server comes up immediately; the dataset loads once in the background
	a.Start(ctx)

	// run
	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
