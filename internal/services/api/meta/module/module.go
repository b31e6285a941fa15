// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"net/http"
	"time"

	modkit "zayavki/internal/modkit"
	"zayavki/internal/modkit/httpkit"
	str "zayavki/internal/platform/strings"
	"zayavki/internal/services/api/dashboard/domain"

	metahttp "zayavki/internal/services/api/meta/http"
)

// Ports are what meta consumes from other modules. Pass them with modkit.WithPorts
type Ports struct {
	Ready domain.ReadyPort
}

// Module implements the modkit.Module interface
type Module struct {
	deps      modkit.Deps
	b         modkit.Built
	ready     domain.ReadyPort
	startedAt time.Time
}

// New constructs a meta module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	m := &Module{deps: deps, b: b, startedAt: time.Now()}
	if p, ok := b.Ports.(Ports); ok {
		m.ready = p.Ready
	}
	return m
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) {
		metahttp.Register(rr, metahttp.Deps{
			ServiceName: m.deps.Cfg.MayString("SERVICE_NAME", "zayavki-api"),
			StartedAt:   m.startedAt,
			Ready:       m.ready,
		})
	})
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return str.MustString(m.b.Name, "meta") }

// Prefix implements the modkit.Module interface
func (m *Module) Prefix() string { return str.MustPrefix(m.b.Prefix) }

// Middlewares implements the modkit.Module interface
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.b.Mw }

// Ports implements the modkit.Module interface; meta exposes nothing
func (m *Module) Ports() any { return nil }
