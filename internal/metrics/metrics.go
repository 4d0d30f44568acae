// ABOUTME: Prometheus recorder for icon loading, clicks, navigation and API calls
// ABOUTME: Implements the observer interfaces the client components accept

// Package metrics provides Prometheus metrics for the forage client. A single
// Recorder is passed as the observer to every component that takes one.
package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/harper/forage/internal/api"
	"github.com/harper/forage/internal/hit"
	"github.com/harper/forage/internal/icons"
	"github.com/harper/forage/internal/navigation"
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds all forage metrics.
type Recorder struct {
	IconsSettled     *prometheus.CounterVec
	IconCatalogReady prometheus.Gauge
	IconsFailed      prometheus.Gauge

	Clicks *prometheus.CounterVec

	NavigationMode        prometheus.Gauge
	NavigationTransitions *prometheus.CounterVec
	HeadingUpdates        prometheus.Counter
	Heading               prometheus.Gauge
	PromptShown           prometheus.Gauge
	PermissionDenied      prometheus.Gauge
	SensorPermissions     *prometheus.CounterVec

	APIRequests  *prometheus.CounterVec
	APIDuration  *prometheus.HistogramVec
	CacheLookups *prometheus.CounterVec
}

// NewRecorder creates a recorder and registers it with registry.
func NewRecorder(registry prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{}
	r.initMetrics()
	if err := registry.Register(r); err != nil {
		return nil, fmt.Errorf("failed to register forage metrics: %w", err)
	}
	return r, nil
}

func (r *Recorder) initMetrics() {
	r.IconsSettled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "forage_icons_settled_total",
		Help: "Catalog entries settled by the icon loader, by outcome.",
	}, []string{"outcome"})
	r.IconCatalogReady = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "forage_icons_ready",
		Help: "1 once every catalog entry has settled.",
	})
	r.IconsFailed = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "forage_icons_failed",
		Help: "Catalog entries that failed to register in the last load.",
	})

	r.Clicks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "forage_clicks_total",
		Help: "Resolved map clicks, by resolution kind.",
	}, []string{"kind"})

	r.NavigationMode = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "forage_navigation_mode",
		Help: "Current navigation mode (0 flat, 1 entering, 2 following).",
	})
	r.NavigationTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "forage_navigation_transitions_total",
		Help: "Navigation mode transitions.",
	}, []string{"from", "to"})
	r.HeadingUpdates = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "forage_heading_updates_total",
		Help: "Compass headings applied to the camera.",
	})
	r.Heading = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "forage_heading_degrees",
		Help: "Last applied camera bearing in degrees.",
	})
	r.PromptShown = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "forage_location_prompt_shown",
		Help: "1 while the location prompt is visible.",
	})
	r.PermissionDenied = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "forage_location_permission_denied",
		Help: "1 while the prompt shows the settings explainer.",
	})
	r.SensorPermissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "forage_sensor_permissions_total",
		Help: "Sensor permission answers, by sensor and state.",
	}, []string{"sensor", "state"})

	r.APIRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "forage_api_requests_total",
		Help: "API requests, by endpoint and status code (0 for transport errors).",
	}, []string{"endpoint", "code"})
	r.APIDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "forage_api_request_duration_seconds",
		Help:    "API request duration including retries.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
	}, []string{"endpoint"})
	r.CacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "forage_api_cache_total",
		Help: "API query cache lookups, by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})
}

// IconSettled implements icons.Observer.
func (r *Recorder) IconSettled(_ string, outcome icons.Outcome) {
	r.IconsSettled.WithLabelValues(string(outcome)).Inc()
}

// IconsReady implements icons.Observer.
func (r *Recorder) IconsReady(_, failed int) {
	r.IconCatalogReady.Set(1)
	r.IconsFailed.Set(float64(failed))
}

// ClickResolved implements hit.Observer.
func (r *Recorder) ClickResolved(res hit.Resolution) {
	r.Clicks.WithLabelValues(res.Kind()).Inc()
}

// ModeChanged implements navigation.Observer.
func (r *Recorder) ModeChanged(from, to navigation.Mode) {
	r.NavigationMode.Set(float64(to))
	r.NavigationTransitions.WithLabelValues(from.String(), to.String()).Inc()
}

// HeadingApplied implements navigation.Observer.
func (r *Recorder) HeadingApplied(bearing float64) {
	r.HeadingUpdates.Inc()
	r.Heading.Set(bearing)
}

// PromptChanged implements navigation.Observer.
func (r *Recorder) PromptChanged(p navigation.PromptState) {
	r.PromptShown.Set(boolGauge(p.Show))
	r.PermissionDenied.Set(boolGauge(p.Denied))
}

// SensorPermission implements navigation.Observer.
func (r *Recorder) SensorPermission(sensor string, state navigation.PermissionState) {
	r.SensorPermissions.WithLabelValues(sensor, string(state)).Inc()
}

// APIRequest implements api.Observer.
func (r *Recorder) APIRequest(endpoint string, code int, d time.Duration, _ error) {
	r.APIRequests.WithLabelValues(endpoint, strconv.Itoa(code)).Inc()
	r.APIDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// APICache implements api.Observer.
func (r *Recorder) APICache(endpoint, outcome string) {
	r.CacheLookups.WithLabelValues(endpoint, outcome).Inc()
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (r *Recorder) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		r.IconsSettled, r.IconCatalogReady, r.IconsFailed,
		r.Clicks,
		r.NavigationMode, r.NavigationTransitions, r.HeadingUpdates, r.Heading,
		r.PromptShown, r.PermissionDenied, r.SensorPermissions,
		r.APIRequests, r.APIDuration, r.CacheLookups,
	}
}

// Describe implements the prometheus.Collector interface.
func (r *Recorder) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range r.collectors() {
		c.Describe(ch)
	}
}

// Collect implements the prometheus.Collector interface.
func (r *Recorder) Collect(ch chan<- prometheus.Metric) {
	for _, c := range r.collectors() {
		c.Collect(ch)
	}
}

var (
	_ icons.Observer      = (*Recorder)(nil)
	_ hit.Observer        = (*Recorder)(nil)
	_ navigation.Observer = (*Recorder)(nil)
	_ api.Observer        = (*Recorder)(nil)
)
