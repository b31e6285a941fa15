package pipeline

import (
	"sync"
	"testing"
	"time"

	perr "zayavki/internal/platform/errors"
)

// checkSink records whether a render was observed half-done
type checkSink struct {
	mu          sync.Mutex
	heat, marks int
	torn        bool
}

func (c *checkSink) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.heat != c.marks {
		c.torn = true
	}
	c.heat = 0
	c.marks = 0
}
func (c *checkSink) Add(HeatPoint)    { c.mu.Lock(); c.heat++; c.mu.Unlock() }
func (c *checkSink) AddMarker(Marker) { c.mu.Lock(); c.marks++; c.mu.Unlock() }

func newPipeline(d *Dataset) (*Pipeline, *HeatLayer, *ClusterLayer) {
	h, c := &HeatLayer{}, &ClusterLayer{}
	return New(d, h, c), h, c
}

func TestPipeline_Scenario(t *testing.T) {
	p, heat, cluster := newPipeline(scenario())

	if n := len(cluster.Markers()); n != 2 {
		t.Fatalf("initial render: %d markers, want 2", n)
	}
	if n := len(heat.Points()); n != 2 {
		t.Fatalf("initial render: %d heat points, want 2", n)
	}

	if err := p.Toggles.Set("B", false); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	m := cluster.Markers()
	if len(m) != 1 || m[0].Category != "A" {
		t.Fatalf("B off: %+v", m)
	}

	if err := p.Toggles.Set("B", true); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := p.Range.Set(day("2020-03-01"), day("2020-12-31")); err != nil {
		t.Fatalf("range: %v", err)
	}
	m = cluster.Markers()
	if len(m) != 1 || m[0].Category != "B" {
		t.Fatalf("narrowed: %+v", m)
	}
}

func TestPipeline_InitialState(t *testing.T) {
	d := scenario()
	p, _, _ := newPipeline(d)
	from, to := p.Range.Get()
	min, max := p.Range.Bounds()
	if !from.Equal(day("2020-01-01")) || !to.Equal(day("2020-06-01")) || !from.Equal(min) || !to.Equal(max) {
		t.Fatalf("window %v..%v bounds %v..%v", from, to, min, max)
	}
	for _, tg := range p.Toggles.States() {
		if !tg.On {
			t.Fatalf("toggle %s should start on", tg.Category)
		}
	}
	if p.Renders() != 1 {
		t.Fatalf("expected exactly one initial render, got %d", p.Renders())
	}
	if p.Dataset() != d {
		t.Fatalf("dataset not retained")
	}
}

func TestPipeline_RenderIdempotent(t *testing.T) {
	p, heat, cluster := newPipeline(scenario())
	p.Render()
	p.Render()
	if len(heat.Points()) != 2 || len(cluster.Markers()) != 2 {
		t.Fatalf("repeated renders accumulated: %d heat %d markers", len(heat.Points()), len(cluster.Markers()))
	}
	if len(p.Last().Markers) != 2 {
		t.Fatalf("last %+v", p.Last())
	}
}

func TestPipeline_FullWindowRoundTrip(t *testing.T) {
	p, _, cluster := newPipeline(scenario())
	_ = p.Range.Set(day("2020-02-01"), day("2020-02-02"))
	if len(cluster.Markers()) != 0 {
		t.Fatalf("expected empty window")
	}
	p.Range.Reset()
	if len(cluster.Markers()) != 2 {
		t.Fatalf("reset should include every point, got %d", len(cluster.Markers()))
	}
}

func TestRangeControl_SetClampsAndRejects(t *testing.T) {
	r := NewRangeControl(day("2020-01-01"), day("2020-12-31"))
	calls := 0
	r.Subscribe(func() { calls++ })

	if err := r.Set(day("2019-01-01"), day("2021-01-01")); err != nil {
		t.Fatalf("set: %v", err)
	}
	from, to := r.Get()
	if !from.Equal(day("2020-01-01")) || !to.Equal(day("2020-12-31")) {
		t.Fatalf("expected clamp to bounds, got %v..%v", from, to)
	}
	if calls != 0 {
		t.Fatalf("clamped no-op should not notify, got %d", calls)
	}

	err := r.Set(day("2020-06-01"), day("2020-05-01"))
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}

	if err := r.Set(day("2020-05-01"), day("2020-05-01")); err != nil {
		t.Fatalf("single instant window: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one notification, got %d", calls)
	}
	if min, max := r.Bounds(); !min.Equal(day("2020-01-01")) || !max.Equal(day("2020-12-31")) {
		t.Fatalf("bounds moved: %v..%v", min, max)
	}
}

func TestToggles(t *testing.T) {
	tg := NewToggles([]string{"A", "B", "C"})
	calls := 0
	tg.Subscribe(func() { calls++ })
	tg.Subscribe(nil)

	if err := tg.Set("Z", false); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	_ = tg.Set("A", true)
	if calls != 0 {
		t.Fatalf("no-op set notified")
	}
	tg.SetOnly("B", "unknown")
	if calls != 1 {
		t.Fatalf("SetOnly should notify once, got %d", calls)
	}
	act := tg.Active()
	if len(act) != 1 || !act.Has("B") {
		t.Fatalf("active %v", act)
	}
	states := tg.States()
	if states[0] != (Toggle{Category: "A", On: false}) || states[1] != (Toggle{Category: "B", On: true}) {
		t.Fatalf("states %+v", states)
	}
}

func TestPipeline_NoData(t *testing.T) {
	p, heat, cluster := newPipeline(NewDataset(nil))
	if len(heat.Points()) != 0 || len(cluster.Markers()) != 0 {
		t.Fatalf("expected empty layers")
	}
	if len(p.Toggles.States()) != 0 {
		t.Fatalf("expected no toggles")
	}
	if err := p.Range.Set(time.Now(), time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("set on empty range: %v", err)
	}
}

func TestPipeline_ConcurrentRendersNeverInterleave(t *testing.T) {
	var pts []Point
	for i := 0; i < 200; i++ {
		cat := "A"
		if i%2 == 1 {
			cat = "B"
		}
		pts = append(pts, Point{CreatedAt: "2025-06-01", Category: cat, Lat: float64(i)})
	}
	sink := &checkSink{}
	p := New(NewDataset(pts), sink, sink)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = p.Toggles.Set("B", (i+j)%2 == 0)
				p.Render()
			}
		}(i)
	}
	wg.Wait()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if sink.torn {
		t.Fatalf("a clear observed a partially populated layer")
	}
	if sink.heat != sink.marks {
		t.Fatalf("final layers differ: %d heat %d markers", sink.heat, sink.marks)
	}
}
