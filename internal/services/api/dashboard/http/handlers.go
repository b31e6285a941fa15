// Package http provides http transport for the dashboard
package http

import (
	stdhttp "net/http"

	"zayavki/internal/modkit/httpkit"
	"zayavki/internal/services/api/dashboard/domain"
	svc "zayavki/internal/services/api/dashboard/service"
)

// Register mounts dashboard endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	// date and category domains
	httpkit.Get(r, "/domain", h.domain)

	// rendered heat and marker layers for one filter
	httpkit.PostJSON[domain.LayersInput](r, "/layers", h.layers)
	httpkit.GetQuery[domain.LayersQuery](r, "/layers", h.layersQuery)

	// raw records
	httpkit.Get(r, "/points", h.points)
}

type handlers struct{ svc svc.Service }

// swagger:route GET /dashboard/domain Dashboard dashboardDomain
// @Summary Date and category domains of the loaded dataset
// @Tags Dashboard
// @Produce json
// @Success 200 {object} domain.DomainView "ok"
// @Failure 503 {object} httpkit.Envelope "dataset not ready"
// @Router /dashboard/domain [get]
func (h *handlers) domain(r *stdhttp.Request) (any, error) {
	return h.svc.Domain(r.Context())
}

// swagger:route POST /dashboard/layers Dashboard dashboardLayers
// @Summary Heat and marker layers for a time window and category set
// @Tags Dashboard
// @Accept json
// @Produce json
// @Param payload body domain.LayersInput true "Filter"
// @Success 200 {object} domain.LayersView "ok"
// @Failure 422 {object} httpkit.Envelope "from after to"
// @Router /dashboard/layers [post]
func (h *handlers) layers(r *stdhttp.Request, in domain.LayersInput) (any, error) {
	return h.svc.Layers(r.Context(), in)
}

// swagger:route GET /dashboard/layers Dashboard dashboardLayersQuery
// @Summary Heat and marker layers, filter in the query string
// @Tags Dashboard
// @Produce json
// @Param from query string false "Lower bound, RFC3339 or YYYY-MM-DD"
// @Param to query string false "Upper bound, RFC3339 or YYYY-MM-DD"
// @Param category query []string false "Active categories; absent means all"
// @Success 200 {object} domain.LayersView "ok"
// @Router /dashboard/layers [get]
func (h *handlers) layersQuery(r *stdhttp.Request, q domain.LayersQuery) (any, error) {
	return h.svc.Layers(r.Context(), q.Input())
}

// swagger:route GET /dashboard/points Dashboard dashboardPoints
// @Summary Loaded records in load order
// @Tags Dashboard
// @Produce json
// @Success 200 {object} domain.PointsView "ok"
// @Router /dashboard/points [get]
func (h *handlers) points(r *stdhttp.Request) (any, error) {
	return h.svc.Points(r.Context())
}
