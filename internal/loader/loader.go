// Package loader fetches the destination dataset and publishes it to the catalog store.
package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"finitefield.org/travel-web/internal/catalog"
	"finitefield.org/travel-web/internal/observability"
)

// LoadFailure is the single error kind of the loader: the dataset could not be fetched or parsed.
type LoadFailure struct {
	Source string
	Err    error
}

// Error implements the error interface.
func (e *LoadFailure) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

// Unwrap exposes the underlying error.
func (e *LoadFailure) Unwrap() error { return e.Err }

// ErrUnsupportedSource is returned for source schemes without a registered fetcher.
var ErrUnsupportedSource = errors.New("loader: unsupported source")

// Fetcher retrieves the raw bytes of a dataset document.
type Fetcher interface {
	Fetch(ctx context.Context, src *url.URL) ([]byte, error)
}

// FetcherFunc adapts ordinary functions to Fetcher.
type FetcherFunc func(context.Context, *url.URL) ([]byte, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, src *url.URL) ([]byte, error) {
	return f(ctx, src)
}

// Loader fetches the dataset from one fixed source and replaces the store snapshot wholesale.
type Loader struct {
	source   string
	store    *catalog.Store
	fetchers map[string]Fetcher
	logger   *zap.Logger
	now      func() time.Time
	group    singleflight.Group

	meter    metric.Meter
	latency  metric.Float64Histogram
	attempts metric.Int64Counter
}

const metricNamespace = "finitefield.org/travel-web/internal/loader"

// Option customises a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for load events.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithHTTPClient sets the client used for http and https sources.
func WithHTTPClient(client *http.Client) Option {
	return func(l *Loader) {
		f := &httpFetcher{client: client}
		l.fetchers["http"] = f
		l.fetchers["https"] = f
	}
}

// WithFetcher registers f for scheme, replacing any default.
func WithFetcher(scheme string, f Fetcher) Option {
	return func(l *Loader) {
		l.fetchers[strings.ToLower(scheme)] = f
	}
}

// WithMeter injects a custom OpenTelemetry meter.
func WithMeter(m metric.Meter) Option {
	return func(l *Loader) {
		l.meter = m
	}
}

// WithClock overrides the timestamp source (tests).
func WithClock(now func() time.Time) Option {
	return func(l *Loader) {
		if now != nil {
			l.now = now
		}
	}
}

// New constructs a loader for source. File and http(s) sources work out of the box;
// s3 and gs sources need WithS3 / WithGCS.
func New(source string, store *catalog.Store, opts ...Option) *Loader {
	l := &Loader{
		source: strings.TrimSpace(source),
		store:  store,
		fetchers: map[string]Fetcher{
			"":     fileFetcher{},
			"file": fileFetcher{},
		},
		logger: zap.NewNop(),
		now:    time.Now,
	}
	WithHTTPClient(&http.Client{})(l)
	for _, opt := range opts {
		opt(l)
	}
	l.registerMetrics()
	return l
}

func (l *Loader) registerMetrics() {
	if l.meter == nil {
		l.meter = otel.GetMeterProvider().Meter(metricNamespace)
	}
	var err error
	l.latency, err = l.meter.Float64Histogram(
		"travel.dataset.load.latency",
		metric.WithUnit("ms"),
		metric.WithDescription("Latency in milliseconds for dataset load attempts"),
	)
	if err != nil {
		l.logger.Warn("loader: unable to register latency metric", zap.Error(err))
	}
	l.attempts, err = l.meter.Int64Counter(
		"travel.dataset.load.attempts",
		metric.WithDescription("Count of dataset load attempts by outcome"),
	)
	if err != nil {
		l.logger.Warn("loader: unable to register attempts metric", zap.Error(err))
	}
}

func (l *Loader) record(ctx context.Context, outcome string, d time.Duration) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	if l.latency != nil {
		l.latency.Record(ctx, float64(d)/float64(time.Millisecond), attrs)
	}
	if l.attempts != nil {
		l.attempts.Add(ctx, 1, attrs)
	}
}

// Source returns the configured dataset location.
func (l *Loader) Source() string { return l.source }

// Load performs one fetch of the source and publishes the outcome to the store.
// It is also the retry entry point. Calls that overlap an in-flight load share its
// result instead of starting a second fetch.
func (l *Loader) Load(ctx context.Context) (catalog.Snapshot, error) {
	ch := l.group.DoChan("load", func() (any, error) {
		snap := l.loadOnce(context.WithoutCancel(ctx))
		return snap, snap.Err
	})
	select {
	case <-ctx.Done():
		return l.store.Snapshot(), ctx.Err()
	case res := <-ch:
		snap, _ := res.Val.(catalog.Snapshot)
		return snap, res.Err
	}
}

func (l *Loader) loadOnce(ctx context.Context) catalog.Snapshot {
	ctx, span := observability.Tracer().Start(ctx, "loader.Load")
	defer span.End()
	span.SetAttributes(attribute.String("dataset.source", l.source))

	logger := l.logger.With(zap.String("source", l.source))
	logger.Info("dataset load started")
	start := l.now()

	cat, err := l.fetchAndDecode(ctx)
	if err != nil {
		failure := &LoadFailure{Source: l.source, Err: err}
		span.RecordError(failure)
		span.SetStatus(codes.Error, "dataset load failed")
		logger.Error("dataset load failed", zap.Error(err))
		snap := catalog.Failed(l.source, failure, l.now())
		l.store.Set(snap)
		l.record(ctx, "error", l.now().Sub(start))
		return snap
	}

	for _, issue := range catalog.Validate(cat) {
		logger.Warn("dataset record issue", zap.String("issue", issue.String()))
	}
	snap := catalog.Loaded(l.source, cat, l.now())
	l.store.Set(snap)
	l.record(ctx, "ok", l.now().Sub(start))
	span.SetAttributes(attribute.Int("dataset.destinations", cat.Len()))
	logger.Info("dataset loaded",
		zap.Int("countries", len(cat.Countries)),
		zap.Int("temples", len(cat.Temples)),
		zap.Int("beaches", len(cat.Beaches)),
		zap.Duration("duration", l.now().Sub(start)),
	)
	return snap
}

func (l *Loader) fetchAndDecode(ctx context.Context) (catalog.Catalog, error) {
	if l.source == "" {
		return catalog.Catalog{}, errors.New("no source configured")
	}
	src, err := parseSource(l.source)
	if err != nil {
		return catalog.Catalog{}, err
	}
	f, ok := l.fetchers[src.Scheme]
	if !ok {
		return catalog.Catalog{}, fmt.Errorf("%w: scheme %q", ErrUnsupportedSource, src.Scheme)
	}
	raw, err := f.Fetch(ctx, src)
	if err != nil {
		return catalog.Catalog{}, err
	}
	return Decode(src.Path, raw)
}

// parseSource treats anything without a URL scheme as a local path.
func parseSource(raw string) (*url.URL, error) {
	if !strings.Contains(raw, "://") {
		return &url.URL{Path: raw}, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse source: %w", err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	return u, nil
}

// errNotObject reports a dataset whose root is not an object, including a bare null.
var errNotObject = errors.New("dataset root must be an object")

// Decode parses a dataset document. Names ending in .yaml or .yml are read as YAML, everything
// else as JSON. The root must be an object; missing or null category arrays decode as empty.
func Decode(name string, raw []byte) (catalog.Catalog, error) {
	var cat catalog.Catalog
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		var doc yaml.Node
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return catalog.Catalog{}, fmt.Errorf("decode yaml: %w", err)
		}
		if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
			return catalog.Catalog{}, fmt.Errorf("decode yaml: %w", errNotObject)
		}
		if err := doc.Content[0].Decode(&cat); err != nil {
			return catalog.Catalog{}, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '{' {
			return catalog.Catalog{}, fmt.Errorf("decode json: %w", errNotObject)
		}
		if err := json.Unmarshal(raw, &cat); err != nil {
			return catalog.Catalog{}, fmt.Errorf("decode json: %w", err)
		}
	}
	return cat, nil
}
