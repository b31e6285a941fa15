package pipeline

import (
	"slices"
	"sync"
)

// HeatSink receives the heat layer contents
type HeatSink interface {
	Clear()
	Add(HeatPoint)
}

// ClusterSink receives the marker layer contents
type ClusterSink interface {
	Clear()
	AddMarker(Marker)
}

// Pipeline binds a range control and category toggles to two sinks. Any control change
// re-renders; renders are serialised so a clear and its repopulation never interleave
type Pipeline struct {
	Range   *RangeControl
	Toggles *Toggles

	data    *Dataset
	heat    HeatSink
	cluster ClusterSink

	mu      sync.Mutex
	last    Layers
	renders int
}

// New wires controls over the dataset domain to the sinks and renders once
func New(d *Dataset, heat HeatSink, cluster ClusterSink) *Pipeline {
	dom := d.Domain()
	p := &Pipeline{
		Range:   NewRangeControl(dom.Min, dom.Max),
		Toggles: NewToggles(dom.Categories),
		data:    d,
		heat:    heat,
		cluster: cluster,
	}
	p.Range.Subscribe(func() { p.Render() })
	p.Toggles.Subscribe(func() { p.Render() })
	p.Render()
	return p
}

// Dataset returns the immutable dataset the pipeline renders
func (p *Pipeline) Dataset() *Dataset { return p.data }

// Filter reads the current control state
func (p *Pipeline) Filter() Filter {
	from, to := p.Range.Get()
	return Filter{From: from, To: to, Active: p.Toggles.Active()}
}

// Render recomputes the layers from the current control state and replaces the sink contents
func (p *Pipeline) Render() Layers {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := Render(p.data, p.Filter())
	p.heat.Clear()
	p.cluster.Clear()
	for _, h := range out.Heat {
		p.heat.Add(h)
	}
	for _, m := range out.Markers {
		p.cluster.AddMarker(m)
	}
	p.last = out
	p.renders++
	return out
}

// Last returns the most recent render result
func (p *Pipeline) Last() Layers {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Renders counts completed renders
func (p *Pipeline) Renders() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.renders
}

// HeatLayer is an in-memory HeatSink
type HeatLayer struct {
	mu  sync.RWMutex
	pts []HeatPoint
}

// Clear implements HeatSink
func (l *HeatLayer) Clear() {
	l.mu.Lock()
	l.pts = l.pts[:0]
	l.mu.Unlock()
}

// Add implements HeatSink
func (l *HeatLayer) Add(h HeatPoint) {
	l.mu.Lock()
	l.pts = append(l.pts, h)
	l.mu.Unlock()
}

// Points returns a snapshot
func (l *HeatLayer) Points() []HeatPoint {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.pts)
}

// ClusterLayer is an in-memory ClusterSink
type ClusterLayer struct {
	mu      sync.RWMutex
	markers []Marker
}

// Clear implements ClusterSink
func (l *ClusterLayer) Clear() {
	l.mu.Lock()
	l.markers = l.markers[:0]
	l.mu.Unlock()
}

// AddMarker implements ClusterSink
func (l *ClusterLayer) AddMarker(m Marker) {
	l.mu.Lock()
	l.markers = append(l.markers, m)
	l.mu.Unlock()
}

// Markers returns a snapshot
func (l *ClusterLayer) Markers() []Marker {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.markers)
}
