// Package modkit provides module wiring and core deps
package modkit

import (
	"zayavki/internal/adapters/source"
	"zayavki/internal/platform/config"
	"zayavki/internal/platform/logger"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log    *logger.Logger
	Cfg    config.Conf
	Source *source.Loader
}

// Logger returns Log or the named process logger when Log is unset
func (d Deps) Logger(component string) *logger.Logger {
	if d.Log != nil {
		return d.Log
	}
	return logger.Named(component)
}
