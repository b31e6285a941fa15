package pipeline

import (
	"slices"
	"sync"
	"time"

	perr "zayavki/internal/platform/errors"
)

// Listener is called after a control's state changed
type Listener func()

// notifier is the subscription half shared by both controls
type notifier struct {
	mu   sync.Mutex
	subs []Listener
}

// Subscribe registers l for every later change
func (n *notifier) Subscribe(l Listener) {
	if l == nil {
		return
	}
	n.mu.Lock()
	n.subs = append(n.subs, l)
	n.mu.Unlock()
}

func (n *notifier) notify() {
	n.mu.Lock()
	subs := slices.Clone(n.subs)
	n.mu.Unlock()
	for _, l := range subs {
		l()
	}
}

// RangeControl is a dual-handle time window whose bounds are fixed at construction
type RangeControl struct {
	notifier

	mu       sync.RWMutex
	min, max time.Time
	from, to time.Time
}

// NewRangeControl starts with the window equal to [min, max]
func NewRangeControl(min, max time.Time) *RangeControl {
	return &RangeControl{min: min, max: max, from: min, to: max}
}

// Bounds returns the fixed slidable bounds
func (r *RangeControl) Bounds() (min, max time.Time) { return r.min, r.max }

// Get returns the current window
func (r *RangeControl) Get() (from, to time.Time) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.from, r.to
}

// Set moves both handles. Values outside the bounds are clamped; from after to is rejected
func (r *RangeControl) Set(from, to time.Time) error {
	if from.After(to) {
		return perr.InvalidArgf("range start %s is after end %s", from.Format(time.RFC3339), to.Format(time.RFC3339))
	}
	from, to = r.clamp(from), r.clamp(to)

	r.mu.Lock()
	changed := !from.Equal(r.from) || !to.Equal(r.to)
	r.from, r.to = from, to
	r.mu.Unlock()

	if changed {
		r.notify()
	}
	return nil
}

// Reset moves the window back to the full bounds
func (r *RangeControl) Reset() { _ = r.Set(r.min, r.max) }

func (r *RangeControl) clamp(t time.Time) time.Time {
	if t.Before(r.min) {
		return r.min
	}
	if t.After(r.max) {
		return r.max
	}
	return t
}

// Toggle is one category switch
type Toggle struct {
	Category string `json:"category"`
	On       bool   `json:"on"`
}

// Toggles holds one switch per category, in domain order
type Toggles struct {
	notifier

	mu    sync.RWMutex
	order []string
	on    map[string]bool
}

// NewToggles creates a switch per category, all on
func NewToggles(categories []string) *Toggles {
	t := &Toggles{order: slices.Clone(categories), on: make(map[string]bool, len(categories))}
	for _, c := range categories {
		t.on[c] = true
	}
	return t
}

// Set flips one switch. Unknown categories are rejected
func (t *Toggles) Set(category string, on bool) error {
	t.mu.Lock()
	cur, ok := t.on[category]
	if !ok {
		t.mu.Unlock()
		return perr.NotFoundf("unknown category %q", category)
	}
	t.on[category] = on
	t.mu.Unlock()

	if cur != on {
		t.notify()
	}
	return nil
}

// SetOnly turns on exactly the named categories and everything else off, with one notification.
// Names outside the domain are ignored
func (t *Toggles) SetOnly(categories ...string) {
	want := Categories(categories...)
	t.mu.Lock()
	changed := false
	for _, c := range t.order {
		on := want.Has(c)
		if t.on[c] != on {
			t.on[c] = on
			changed = true
		}
	}
	t.mu.Unlock()

	if changed {
		t.notify()
	}
}

// Active returns the set of switched-on categories
func (t *Toggles) Active() CategorySet {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := make(CategorySet, len(t.on))
	for c, on := range t.on {
		if on {
			s[c] = struct{}{}
		}
	}
	return s
}

// States returns every switch in domain order
func (t *Toggles) States() []Toggle {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Toggle, 0, len(t.order))
	for _, c := range t.order {
		out = append(out, Toggle{Category: c, On: t.on[c]})
	}
	return out
}
