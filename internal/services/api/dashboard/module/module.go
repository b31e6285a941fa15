// Package module wires the dashboard into the API using modkit
package module

import (
	"net/http"

	modkit "zayavki/internal/modkit"
	"zayavki/internal/modkit/httpkit"
	str "zayavki/internal/platform/strings"
	dashhttp "zayavki/internal/services/api/dashboard/http"
	dashsvc "zayavki/internal/services/api/dashboard/service"
)

// Module implements the dashboard module
type Module struct {
	deps modkit.Deps
	b    modkit.Built

	ports Ports
	svc   *dashsvc.Svc
}

// New constructs the dashboard module. deps.Source must be set
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("dashboard"), modkit.WithPrefix("/dashboard")}, opts...)...)
	if deps.Source == nil {
		panic("dashboard module requires deps.Source")
	}

	s := dashsvc.New(deps.Source).WithLogger(deps.Logger("dashboard"))
	m := &Module{deps: deps, b: b, svc: s}
	m.ports = Ports{Service: s, Ready: s, Starter: s}
	return m
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) {
		dashhttp.Register(rr, m.svc)
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.b.Name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.b.Prefix) }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.b.Mw }
