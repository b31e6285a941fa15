// Package http provides meta endpoints
package http

import (
	"net/http"
	"time"

	"zayavki/internal/core/version"
	"zayavki/internal/modkit/httpkit"
	"zayavki/internal/services/api/dashboard/domain"
)

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Ready       domain.ReadyPort // nil reports the dataset check as skipped
	Now         func() time.Time
}

type handlers struct {
	deps Deps
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	if d.Now == nil {
		d.Now = time.Now
	}
	h := &handlers{deps: d}

	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
}

// HealthResponse is the health payload
type HealthResponse struct {
	OK      bool   `json:"ok"       example:"true"`
	Service string `json:"service"  example:"zayavki-api"`
	Started string `json:"started"  example:"2025-09-03T13:00:00Z"`
	Now     string `json:"now"      example:"2025-09-03T13:05:00Z"`
}

// ReadyCheck describes a single dependency check
type ReadyCheck struct {
	Name   string `json:"name"   example:"dataset"`
	Status string `json:"status" example:"ok"` // ok loading fail skipped
	Error  string `json:"error,omitempty" example:"dataset: unexpected status 404 for https://example.org/points.json"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"` // ok fail
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"    example:"2025-09-03T13:05:00Z"`
}

// ServiceResponse describes service info
type ServiceResponse struct {
	Name    string `json:"name"    example:"zayavki-api"`
	Started string `json:"started" example:"2025-09-03T13:00:00Z"`
	Uptime  int64  `json:"uptime"  example:"300"`
}

// swagger:route GET /meta/health Meta metaHealth
// @Summary Health check
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse ok
// @Router /meta/health [get]
func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Now:     h.deps.Now().UTC().Format(time.RFC3339),
	}, nil
}

// swagger:route GET /meta/ready Meta metaReady
// @Summary Readiness probe; 503 until the dataset is loaded
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse ok
// @Failure 503 {object} ReadyResponse "dataset loading or failed"
// @Router /meta/ready [get]
func (h *handlers) ready(_ *http.Request) (any, error) {
	check := ReadyCheck{Name: "dataset", Status: "skipped"}
	if h.deps.Ready != nil {
		st, err := h.deps.Ready.State()
		switch st {
		case domain.StateReady:
			check.Status = "ok"
		case domain.StateFailed:
			check.Status = "fail"
			if err != nil {
				check.Error = err.Error()
			}
		default:
			check.Status = string(domain.StateLoading)
		}
	}

	out := ReadyResponse{Status: "ok", Checks: []ReadyCheck{check}, Now: h.deps.Now().UTC().Format(time.RFC3339)}
	if check.Status != "ok" && check.Status != "skipped" {
		out.Status = "fail"
		return httpkit.Response{Status: http.StatusServiceUnavailable, Body: out}, nil
	}
	return out, nil
}

// swagger:route GET /meta/version Meta metaVersion
// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo ok
// @Router /meta/version [get]
func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Get(), nil
}

// swagger:route GET /meta/service Meta metaService
// @Summary Service info and uptime
// @Tags Meta
// @Produce json
// @Success 200 {object} ServiceResponse ok
// @Router /meta/service [get]
func (h *handlers) service(_ *http.Request) (any, error) {
	uptime := h.deps.Now().Sub(h.deps.StartedAt)
	return ServiceResponse{
		Name:    h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(uptime / time.Second),
	}, nil
}
