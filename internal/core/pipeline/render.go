package pipeline

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"

	pstrings "zayavki/internal/platform/strings"
)

// Filter is the pair of predicates applied to every point
type Filter struct {
	From   time.Time
	To     time.Time
	Active CategorySet
}

// CategorySet is the active subset of the category domain
type CategorySet map[string]struct{}

// Categories builds a set from names
func Categories(names ...string) CategorySet {
	s := make(CategorySet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Has is an exact string match
func (s CategorySet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// FullFilter selects the whole domain with every category active
func FullFilter(d *Dataset) Filter {
	dom := d.Domain()
	return Filter{From: dom.Min, To: dom.Max, Active: Categories(dom.Categories...)}
}

// Match applies both predicates. Bounds are inclusive
func (f Filter) Match(t time.Time, category string) bool {
	return !t.Before(f.From) && !t.After(f.To) && f.Active.Has(category)
}

// HeatPoint is one weighted heat layer entry. It encodes as [lat, lon, weight]
type HeatPoint struct {
	Lat, Lon, Weight float64
}

// MarshalJSON implements json.Marshaler
func (h HeatPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{h.Lat, h.Lon, h.Weight})
}

// Marker is one cluster layer entry
type Marker struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Category string  `json:"category"`
	Date     string  `json:"date"`
	Label    string  `json:"label"`
}

// Bounds is the south-west / north-east box of the included points
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

func (b *Bounds) extend(lat, lon float64) {
	b.South, b.North = min(b.South, lat), max(b.North, lat)
	b.West, b.East = min(b.West, lon), max(b.East, lon)
}

// Layers is the derived view for one filter state
type Layers struct {
	Heat        []HeatPoint    `json:"heat"`
	Markers     []Marker       `json:"markers"`
	Bounds      *Bounds        `json:"bounds,omitempty"`
	PerCategory map[string]int `json:"per_category"`
	Total       int            `json:"total"`
	Malformed   int            `json:"malformed"`
}

// Render derives both layers from the points passing f, in dataset order. Points with a malformed
// timestamp are counted in Malformed and never included
func Render(d *Dataset, f Filter) Layers {
	out := Layers{
		Heat:        []HeatPoint{},
		Markers:     []Marker{},
		PerCategory: map[string]int{},
		Total:       d.Len(),
		Malformed:   d.domain.Malformed,
	}
	for i, p := range d.points {
		if !d.valid[i] || !f.Match(d.times[i], p.Category) {
			continue
		}
		out.Heat = append(out.Heat, HeatPoint{Lat: p.Lat, Lon: p.Lon, Weight: p.Weight()})
		out.Markers = append(out.Markers, Marker{
			Lat:      p.Lat,
			Lon:      p.Lon,
			Category: p.Category,
			Date:     DisplayDate(p.CreatedAt),
			Label:    Label(p),
		})
		out.PerCategory[p.Category]++
		if out.Bounds == nil {
			out.Bounds = &Bounds{South: p.Lat, North: p.Lat, West: p.Lon, East: p.Lon}
		} else {
			out.Bounds.extend(p.Lat, p.Lon)
		}
	}
	return out
}

// DisplayDate is the first 10 characters of created_at
func DisplayDate(createdAt string) string { return pstrings.Prefix(createdAt, 10) }

// Label is the marker popup: address, category, count when known, display date.
// Values are HTML escaped and lines joined with <br>
func Label(p Point) string {
	addr := strings.TrimSpace(p.Street.String() + " " + p.House.String())
	lines := []string{html.EscapeString(addr), html.EscapeString(p.Category)}
	if p.Total.Valid {
		lines = append(lines, fmt.Sprintf("%s шт.", p.Total))
	}
	lines = append(lines, html.EscapeString(DisplayDate(p.CreatedAt)))
	return strings.Join(lines, "<br>")
}
