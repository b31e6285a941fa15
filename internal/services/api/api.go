// Package api provides the HTTP API for the application
package api

import (
	"context"
	"time"

	"zayavki/internal/adapters/source"
	"zayavki/internal/platform/config"
	perr "zayavki/internal/platform/errors"
	"zayavki/internal/platform/logger"
	phttp "zayavki/internal/platform/net/http"
	"zayavki/internal/platform/net/middleware"
	"zayavki/internal/web"

	"zayavki/internal/modkit"
	"zayavki/internal/modkit/httpkit"
	"zayavki/internal/modkit/module"
	"zayavki/internal/modkit/swaggerkit"

	dashdomain "zayavki/internal/services/api/dashboard/domain"
	dashmod "zayavki/internal/services/api/dashboard/module"
	metamod "zayavki/internal/services/api/meta/module"
)

const apiBase = "/api/v1"

// Options are the API options
type Options struct {
	Config         config.Conf
	Source         *source.Loader
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
	AllowedOrigins []string
	SlowRequest    time.Duration
}

// API is the mounted application
type API struct {
	starter dashdomain.StarterPort
	ready   dashdomain.ReadyPort
}

// Start kicks off the one-shot dataset load in the background
func (a *API) Start(ctx context.Context) { a.starter.Start(ctx) }

// Ready reports the dataset lifecycle
func (a *API) Ready() dashdomain.ReadyPort { return a.ready }

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) (*API, error) {
	if opt.Source == nil {
		return nil, perr.New(perr.ErrorCodeUnknown, "api: dataset source is required")
	}

	// shared deps for modules
	deps := modkit.Deps{
		Log:    opt.Logger,
		Cfg:    opt.Config,
		Source: opt.Source,
	}

	// the dashboard owns the dataset; meta reads its readiness
	dashboard := dashmod.New(deps)
	ready := module.MustPortsOf[dashdomain.ReadyPort](dashboard)

	mods := []module.Module{
		metamod.New(deps,
			modkit.WithPorts(metamod.Ports{Ready: ready}),
			// liveness answers before the dataset loads and never touches it
			modkit.WithMiddlewares(
				middleware.Heartbeat(apiBase+"/meta/ping"),
				middleware.Timeout(5*time.Second),
			),
		),
		dashboard,
	}

	stack := httpkit.CommonStack(httpkit.StackOptions{
		AllowedOrigins: opt.AllowedOrigins,
		SlowRequest:    opt.SlowRequest,
	})
	httpkit.MountAPIV1(r, stack, func(api httpkit.Router) {
		for _, m := range mods {
			m.MountRoutes(api)
		}
	})

	// Swagger + profiler
	if opt.EnableSwagger {
		loc := opt.Source.Location()
		swaggerkit.Register(func(spec map[string]any) {
			if info, ok := spec["info"].(map[string]any); ok {
				info["x-dataset"] = loc
			}
		})
	}
	swaggerkit.Mount(r, apiBase, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	if err := web.Mount(r, web.Options{APIBase: apiBase + "/dashboard"}); err != nil {
		return nil, err
	}

	return &API{
		starter: module.MustPortsOf[dashdomain.StarterPort](dashboard),
		ready:   ready,
	}, nil
}
