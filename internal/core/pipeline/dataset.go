package pipeline

import (
	"slices"
	"time"

	ptime "zayavki/internal/platform/time"
)

// Domain is what the filter controls may select over. It is fixed at load
type Domain struct {
	Min        time.Time
	Max        time.Time
	HasRange   bool // false for an empty dataset or one without a single parseable timestamp
	Categories []string
	Count      int
	Malformed  int
}

// Dataset is an immutable point sequence with its domain computed once
type Dataset struct {
	points []Point
	times  []time.Time
	valid  []bool
	domain Domain
}

// ParseTimestamp parses created_at. ok is false for malformed values, which never match a window
func ParseTimestamp(s string) (time.Time, bool) { return ptime.Parse(s) }

// NewDataset copies points and computes the date bounds and the category domain
func NewDataset(points []Point) *Dataset {
	d := &Dataset{
		points: slices.Clone(points),
		times:  make([]time.Time, len(points)),
		valid:  make([]bool, len(points)),
	}
	seen := make(map[string]struct{})
	dom := Domain{Count: len(points)}
	for i, p := range d.points {
		if _, ok := seen[p.Category]; !ok {
			seen[p.Category] = struct{}{}
			dom.Categories = append(dom.Categories, p.Category)
		}
		t, ok := ParseTimestamp(p.CreatedAt)
		if !ok {
			dom.Malformed++
			continue
		}
		d.times[i], d.valid[i] = t, true
		if !dom.HasRange || t.Before(dom.Min) {
			dom.Min = t
		}
		if !dom.HasRange || t.After(dom.Max) {
			dom.Max = t
		}
		dom.HasRange = true
	}
	d.domain = dom
	return d
}

// Domain returns a copy of the load-time domain
func (d *Dataset) Domain() Domain {
	dom := d.domain
	dom.Categories = slices.Clone(d.domain.Categories)
	return dom
}

// Len is the number of records
func (d *Dataset) Len() int { return len(d.points) }

// Points returns a copy of the records in load order
func (d *Dataset) Points() []Point { return slices.Clone(d.points) }

// At returns record i
func (d *Dataset) At(i int) Point { return d.points[i] }

// Time returns the parsed timestamp of record i
func (d *Dataset) Time(i int) (time.Time, bool) { return d.times[i], d.valid[i] }

// HasCategory reports whether name is in the category domain
func (d *Dataset) HasCategory(name string) bool {
	return slices.Contains(d.domain.Categories, name)
}
