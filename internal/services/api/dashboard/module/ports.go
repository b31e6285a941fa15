package module

import "zayavki/internal/services/api/dashboard/domain"

// Ports is the dashboard port set other modules and main wire against
type Ports struct {
	Service domain.ServicePort
	Ready   domain.ReadyPort
	Starter domain.StarterPort
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
