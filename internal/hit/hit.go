// ABOUTME: Click resolution against rendered map features
// ABOUTME: A click zooms into a cluster, opens a location, or does nothing

package hit

import (
	"context"
	"slices"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/harper/forage/internal/mapengine"
	"github.com/harper/forage/internal/style"
	"github.com/paulmach/orb"
)

// DefaultTolerance is the half-size in pixels of the click query box.
const DefaultTolerance = 20

// Resolution is the outcome of a click: ZoomToCluster, ShowLocation or None.
type Resolution interface {
	resolution()
	Kind() string
}

// ZoomToCluster means the camera eased into a cluster.
type ZoomToCluster struct {
	ClusterID int
	Center    orb.Point
	Zoom      float64
}

// ShowLocation asks the host to open a location's details.
type ShowLocation struct {
	ID int
}

// None means the click hit nothing actionable.
type None struct{}

func (ZoomToCluster) resolution() {}
func (ShowLocation) resolution()  {}
func (None) resolution()          {}

// Kind implements Resolution.
func (ZoomToCluster) Kind() string { return "zoom_to_cluster" }

// Kind implements Resolution.
func (ShowLocation) Kind() string { return "show_location" }

// Kind implements Resolution.
func (None) Kind() string { return "none" }

// Observer is told about every resolved click.
type Observer interface {
	ClickResolved(r Resolution)
}

// Engine is the subset of the map engine the resolver needs.
type Engine interface {
	mapengine.FeatureQuerier
	mapengine.ClusterSource
	mapengine.Camera
}

// Resolver turns screen clicks into actions.
type Resolver struct {
	engine    Engine
	layers    func() []string
	tolerance float64
	logger    *log.Logger
	observer  Observer
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithInteractiveLayers sets the function returning the layers to query.
// It is consulted on every click so it can follow the icon ready state.
func WithInteractiveLayers(fn func() []string) Option {
	return func(r *Resolver) { r.layers = fn }
}

// WithTolerance sets the half-size of the query box in pixels.
func WithTolerance(px float64) Option {
	return func(r *Resolver) { r.tolerance = px }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// WithObserver attaches an observer.
func WithObserver(o Observer) Option {
	return func(r *Resolver) { r.observer = o }
}

// NewResolver creates a resolver over engine.
func NewResolver(engine Engine, opts ...Option) *Resolver {
	r := &Resolver{
		engine:    engine,
		layers:    style.OwnLayers,
		tolerance: DefaultTolerance,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.Default()
	}
	return r
}

// HandleClick resolves a click at screen point pt and calls emit exactly
// once, possibly after the engine answers an expansion query. For clusters
// the camera is eased to the cluster before emit runs.
func (r *Resolver) HandleClick(pt orb.Point, emit func(Resolution)) {
	done := func(res Resolution) {
		if r.observer != nil {
			r.observer.ClickResolved(res)
		}
		if emit != nil {
			emit(res)
		}
	}

	feature, ok := r.pick(pt)
	if !ok {
		done(None{})
		return
	}

	if isCluster(feature) {
		clusterID, ok := intProp(feature.Properties, style.PropClusterID)
		if !ok {
			done(None{})
			return
		}
		center := feature.Geometry
		r.engine.ClusterExpansionZoom(style.SourceID, clusterID, func(zoom *float64, err error) {
			if err != nil || zoom == nil {
				r.logger.Debug("cluster expansion unavailable", "cluster", clusterID, "err", err)
				done(None{})
				return
			}
			target := *zoom + 1
			r.engine.EaseTo(mapengine.CameraOptions{
				Center: &center,
				Zoom:   &target,
			})
			done(ZoomToCluster{ClusterID: clusterID, Center: center, Zoom: target})
		})
		return
	}

	id, ok := intProp(feature.Properties, style.PropID)
	if !ok {
		id, ok = toInt(feature.ID)
	}
	if !ok {
		done(None{})
		return
	}
	done(ShowLocation{ID: id})
}

// Resolve is a blocking convenience for engines that answer expansion
// queries synchronously or from another goroutine.
func (r *Resolver) Resolve(ctx context.Context, pt orb.Point) (Resolution, error) {
	ch := make(chan Resolution, 1)
	r.HandleClick(pt, func(res Resolution) { ch <- res })
	select {
	case res := <-ch:
		return res, nil
	case <-ctx.Done():
		return None{}, ctx.Err()
	}
}

// pick returns the first rendered feature in the click box that belongs to
// one of our interactive layers.
func (r *Resolver) pick(pt orb.Point) (mapengine.RenderedFeature, bool) {
	layers := r.layers()
	box := mapengine.ClickBox(pt, r.tolerance)
	for _, f := range r.engine.QueryRenderedFeatures(box, layers) {
		if slices.Contains(layers, f.LayerID) {
			return f, true
		}
	}
	return mapengine.RenderedFeature{}, false
}

func isCluster(f mapengine.RenderedFeature) bool {
	if v, ok := f.Properties[style.PropCluster].(bool); ok {
		return v
	}
	_, ok := f.Properties[style.PropPointCount]
	return ok
}

func intProp(props map[string]any, key string) (int, bool) {
	return toInt(props[key])
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
