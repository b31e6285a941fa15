package domain

import "context"

// ServicePort is consumed by handlers and other modules
type ServicePort interface {
	Domain(ctx context.Context) (DomainView, error)
	Layers(ctx context.Context, in LayersInput) (LayersView, error)
	Points(ctx context.Context) (PointsView, error)
}

// LoadState is the dataset lifecycle
type LoadState string

const (
	// StateIdle means loading has not started
	StateIdle LoadState = "idle"
	// StateLoading means the one-shot load is in flight
	StateLoading LoadState = "loading"
	// StateReady means a dataset is available
	StateReady LoadState = "ready"
	// StateFailed means the load failed; there is no retry
	StateFailed LoadState = "failed"
)

// ReadyPort reports the dataset lifecycle for readiness probes
type ReadyPort interface {
	State() (LoadState, error)
}

// StarterPort kicks off the one-shot dataset load
type StarterPort interface {
	Start(ctx context.Context)
}
