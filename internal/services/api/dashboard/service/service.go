// Package service loads the dataset once in the background and renders filter requests against it
package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"zayavki/internal/adapters/source"
	"zayavki/internal/core/pipeline"
	perr "zayavki/internal/platform/errors"
	"zayavki/internal/platform/logger"
	ptime "zayavki/internal/platform/time"
	"zayavki/internal/services/api/dashboard/domain"
)

// Service defines the dashboard service contract
type Service interface {
	domain.ServicePort
	domain.ReadyPort
	domain.StarterPort
}

// Loader is the part of source.Loader the service needs
type Loader interface {
	Load(ctx context.Context) (*source.Snapshot, error)
	Location() string
}

// Svc implements the dashboard service
type Svc struct {
	loader Loader
	log    *logger.Logger

	once sync.Once
	done chan struct{}

	mu    sync.RWMutex
	state domain.LoadState
	snap  *source.Snapshot
	err   error
}

// New constructs a dashboard service; call Start to begin loading
func New(l Loader) *Svc {
	if l == nil {
		panic("dashboard.Service requires a non nil Loader")
	}
	return &Svc{loader: l, log: logger.Named("dashboard"), done: make(chan struct{}), state: domain.StateIdle}
}

// WithLogger replaces the load logger; call before Start
func (s *Svc) WithLogger(l *logger.Logger) *Svc {
	if l != nil {
		s.log = l
	}
	return s
}

// Start runs the one-shot load in the background. Later calls are no-ops
func (s *Svc) Start(ctx context.Context) {
	s.once.Do(func() {
		s.set(domain.StateLoading, nil, nil)
		go s.load(ctx)
	})
}

func (s *Svc) load(ctx context.Context) {
	defer close(s.done)
	log := s.log
	start := time.Now()
	snap, err := s.loader.Load(ctx)
	if err != nil {
		log.Error().Err(err).Str("location", s.loader.Location()).Msg("dataset load failed; not retrying")
		s.set(domain.StateFailed, nil, err)
		return
	}
	log.Info().Dur("elapsed", time.Since(start)).Str("snapshot", snap.ID.String()).Msg("dataset ready")
	s.set(domain.StateReady, snap, nil)
}

func (s *Svc) set(st domain.LoadState, snap *source.Snapshot, err error) {
	s.mu.Lock()
	s.state, s.snap, s.err = st, snap, err
	s.mu.Unlock()
}

// Wait blocks until the load finished or ctx is done, returning the load error if any
func (s *Svc) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		_, err := s.State()
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State implements domain.ReadyPort
func (s *Svc) State() (domain.LoadState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.err
}

func (s *Svc) current() (*source.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch s.state {
	case domain.StateReady:
		return s.snap, nil
	case domain.StateFailed:
		return nil, perr.Wrapf(s.err, perr.ErrorCodeUnavailable, "dataset failed to load: %v", s.err)
	default:
		return nil, perr.Unavailablef("dataset is %s", s.state)
	}
}

// Domain returns the load-time domain of the dataset
func (s *Svc) Domain(_ context.Context) (domain.DomainView, error) {
	snap, err := s.current()
	if err != nil {
		return domain.DomainView{}, err
	}
	dom := snap.Dataset.Domain()
	v := domain.DomainView{
		SnapshotID: snap.ID.String(),
		Location:   snap.Location,
		LoadedAt:   snap.LoadedAt,
		NoData:     !dom.HasRange,
		Categories: nonNil(dom.Categories),
		Count:      dom.Count,
		Malformed:  dom.Malformed,
		Dropped:    snap.Dropped,
	}
	if dom.HasRange {
		v.Min, v.Max = ptime.Ptr(dom.Min), ptime.Ptr(dom.Max)
	}
	return v, nil
}

// Layers renders the heat and marker layers for one filter
func (s *Svc) Layers(ctx context.Context, in domain.LayersInput) (domain.LayersView, error) {
	snap, err := s.current()
	if err != nil {
		return domain.LayersView{}, err
	}
	dom := snap.Dataset.Domain()
	if !dom.HasRange {
		return domain.LayersView{
			SnapshotID: snap.ID.String(),
			NoData:     true,
			Categories: []string{},
			Layers:     pipeline.Render(snap.Dataset, pipeline.FullFilter(snap.Dataset)),
		}, nil
	}
	f, err := ResolveFilter(snap.Dataset, in)
	if err != nil {
		return domain.LayersView{}, err
	}
	out := pipeline.Render(snap.Dataset, f)
	logger.C(ctx).Debug().
		Time("from", f.From).
		Time("to", f.To).
		Int("active", len(f.Active)).
		Int("markers", len(out.Markers)).
		Msg("layers rendered")
	return domain.LayersView{
		SnapshotID: snap.ID.String(),
		NoData:     !dom.HasRange,
		From:       f.From,
		To:         f.To,
		Categories: activeInOrder(dom.Categories, f.Active),
		Layers:     out,
	}, nil
}

// Points returns every loaded record in load order
func (s *Svc) Points(_ context.Context) (domain.PointsView, error) {
	snap, err := s.current()
	if err != nil {
		return domain.PointsView{}, err
	}
	return domain.PointsView{
		SnapshotID: snap.ID.String(),
		Count:      snap.Dataset.Len(),
		Points:     snap.Dataset.Points(),
	}, nil
}

// ResolveFilter turns request input into a filter over d. Missing bounds take the domain bounds,
// a bare date as the upper bound covers that whole day, and nil categories means all of them
func ResolveFilter(d *pipeline.Dataset, in domain.LayersInput) (pipeline.Filter, error) {
	f := pipeline.FullFilter(d)
	if in.From != nil && strings.TrimSpace(*in.From) != "" {
		t, ok := ptime.Parse(*in.From)
		if !ok {
			return f, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "from: cannot parse %q", *in.From), "from")
		}
		f.From = t
	}
	if in.To != nil && strings.TrimSpace(*in.To) != "" {
		t, ok := ptime.Parse(*in.To)
		if !ok {
			return f, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "to: cannot parse %q", *in.To), "to")
		}
		if ptime.IsDate(*in.To) {
			t = ptime.EndOfDay(t)
		}
		f.To = t
	}
	if f.From.After(f.To) {
		return f, perr.WithField(perr.InvalidArgf("from %s is after to %s",
			f.From.Format(time.RFC3339), f.To.Format(time.RFC3339)), "from")
	}
	if in.Categories != nil {
		f.Active = pipeline.Categories(in.Categories...)
	}
	return f, nil
}

func activeInOrder(all []string, active pipeline.CategorySet) []string {
	out := make([]string, 0, len(active))
	for _, c := range all {
		if active.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
