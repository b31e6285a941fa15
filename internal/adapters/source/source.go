package source

import (
	"context"
	"io"
	"strings"
	"time"

	"zayavki/internal/core/pipeline"
	"zayavki/internal/platform/config"
	perr "zayavki/internal/platform/errors"
	"zayavki/internal/platform/logger"

	"github.com/google/uuid"
)

const defaultMaxBytes = 64 << 20

// Options selects and shapes the dataset input
type Options struct {
	Location string
	Format   Format
	Charset  Charset
	Timeout  time.Duration
	MaxBytes int64
}

// FromConfig reads PATH, FORMAT, CHARSET, TIMEOUT and MAX_BYTES from cfg
func FromConfig(cfg config.Conf) Options {
	return Options{
		Location: cfg.MayString("PATH", "points.json"),
		Format:   Format(strings.ToLower(cfg.MayString("FORMAT", string(FormatAuto)))),
		Charset:  Charset(strings.ToLower(cfg.MayString("CHARSET", string(CharsetAuto)))),
		Timeout:  cfg.MayDuration("TIMEOUT", 30*time.Second),
		MaxBytes: int64(cfg.MayInt("MAX_BYTES", defaultMaxBytes)),
	}
}

// Snapshot is one successful load
type Snapshot struct {
	ID       uuid.UUID
	Location string
	Format   Format
	LoadedAt time.Time
	Dataset  *pipeline.Dataset
	Dropped  int // records without coordinates
}

// Loader fetches and decodes a dataset
type Loader struct {
	opts    Options
	fetcher Fetcher
	now     func() time.Time
}

// NewLoader builds a Loader; a nil fetcher routes by location scheme
func NewLoader(opts Options, f Fetcher) *Loader {
	if f == nil {
		f = AutoFetcher{HTTP: NewHTTPFetcherWithTimeout(opts.Timeout)}
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = defaultMaxBytes
	}
	return &Loader{opts: opts, fetcher: f, now: time.Now}
}

// Location returns the configured input location
func (l *Loader) Location() string { return l.opts.Location }

// Load reads the whole payload and builds an immutable dataset
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	log := logger.Named("source")
	if strings.TrimSpace(l.opts.Location) == "" {
		return nil, perr.Sourcef("dataset location is empty")
	}
	if l.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.opts.Timeout)
		defer cancel()
	}

	rc, err := l.fetcher.Open(ctx, l.opts.Location)
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(io.LimitReader(rc, l.opts.MaxBytes+1))
	if cerr := rc.Close(); cerr != nil {
		log.Warn().Err(cerr).Msg("close dataset reader")
	}
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeSource, "read dataset")
	}
	if int64(len(raw)) > l.opts.MaxBytes {
		return nil, perr.Sourcef("dataset exceeds %d bytes", l.opts.MaxBytes)
	}

	snap, err := l.Decode(raw)
	if err != nil {
		return nil, perr.WithOp(err, "source.Load")
	}
	dom := snap.Dataset.Domain()
	evt := log.Info()
	if dom.Malformed > 0 || snap.Dropped > 0 {
		evt = log.Warn()
	}
	evt.Str("location", l.opts.Location).
		Str("format", string(snap.Format)).
		Str("snapshot", snap.ID.String()).
		Int("points", dom.Count).
		Int("dropped_no_coords", snap.Dropped).
		Int("malformed_timestamps", dom.Malformed).
		Int("categories", len(dom.Categories)).
		Bool("no_data", !dom.HasRange).
		Msg("dataset loaded")
	return snap, nil
}

// Decode turns a raw payload into a snapshot without any I/O
func (l *Loader) Decode(raw []byte) (*Snapshot, error) {
	b, err := decompress(raw)
	if err != nil {
		return nil, err
	}
	if b, err = toUTF8(b, l.opts.Charset); err != nil {
		return nil, err
	}

	format := l.opts.Format
	if format == "" || format == FormatAuto {
		format = detect(l.opts.Location, b)
	}
	var recs []record
	switch format {
	case FormatJSON:
		recs, err = decodeJSON(b)
	case FormatGeoJSON:
		recs, err = decodeGeoJSON(b)
	case FormatCSV:
		recs, err = decodeCSV(b)
	default:
		return nil, perr.Sourcef("unknown dataset format %q", format)
	}
	if err != nil {
		return nil, err
	}

	pts, dropped := toPoints(recs)
	return &Snapshot{
		ID:       uuid.New(),
		Location: l.opts.Location,
		Format:   format,
		LoadedAt: l.now().UTC(),
		Dataset:  pipeline.NewDataset(pts),
		Dropped:  dropped,
	}, nil
}
