// Package domain holds DTOs for dashboard http and service contracts
package domain

import (
	"time"

	"zayavki/internal/core/pipeline"
)

// LayersInput is the JSON filter. Nil fields take the domain defaults:
// from/to the date bounds, categories all of them. An empty categories array selects none.
// Times accept RFC3339 or a bare YYYY-MM-DD date; a bare date in To means the end of that day
type LayersInput struct {
	From       *string  `json:"from,omitempty" validate:"omitempty,timestamp" example:"2025-06-01"`
	To         *string  `json:"to,omitempty" validate:"omitempty,timestamp" example:"2025-06-30"`
	Categories []string `json:"categories" validate:"omitempty,max=500,dive,required,max=200" example:"вода"`
}

// LayersQuery is the query string form of LayersInput. Each repeated category is one exact name,
// commas and spaces included
type LayersQuery struct {
	From     string   `query:"from" validate:"omitempty,timestamp" example:"2025-06-01"`
	To       string   `query:"to" validate:"omitempty,timestamp" example:"2025-06-30"`
	Category []string `query:"category" validate:"omitempty,max=500,dive,max=200"`
}

// Input converts the query form into the JSON form
func (q LayersQuery) Input() LayersInput {
	in := LayersInput{Categories: q.Category}
	if q.From != "" {
		in.From = &q.From
	}
	if q.To != "" {
		in.To = &q.To
	}
	return in
}

// DomainView describes the loaded dataset and its filter domains
type DomainView struct {
	SnapshotID string     `json:"snapshot_id" example:"5b1c3a5e-8f0e-4b8e-9a56-0d2f8f0f7c11"`
	Location   string     `json:"location" example:"points.json"`
	LoadedAt   time.Time  `json:"loaded_at"`
	NoData     bool       `json:"no_data"`
	Min        *time.Time `json:"min,omitempty"`
	Max        *time.Time `json:"max,omitempty"`
	Categories []string   `json:"categories"`
	Count      int        `json:"count" example:"1200"`
	Malformed  int        `json:"malformed" example:"3"`
	Dropped    int        `json:"dropped" example:"12"`
}

// LayersView is one rendered filter state
type LayersView struct {
	SnapshotID string    `json:"snapshot_id"`
	NoData     bool      `json:"no_data"`
	From       time.Time `json:"from"`
	To         time.Time `json:"to"`
	Categories []string  `json:"categories"`
	pipeline.Layers
}

// PointsView lists the loaded records
type PointsView struct {
	SnapshotID string           `json:"snapshot_id"`
	Count      int              `json:"count"`
	Points     []pipeline.Point `json:"points"`
}
