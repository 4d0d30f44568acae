// ABOUTME: Contract types for the external map rendering engine
// ABOUTME: Camera commands, rendered-feature queries, image registration and map events

// Package mapengine describes the parts of the rendering engine this client
// drives. The engine itself (tiling, clustering math, painting) lives outside
// this module; adapters wrap a concrete engine behind these interfaces.
package mapengine

import (
	"time"

	"github.com/paulmach/orb"
)

// EventType names a camera/map event.
type EventType string

// Map events consumed by this client.
const (
	EventMoveEnd     EventType = "moveend"
	EventDragStart   EventType = "dragstart"
	EventRotateStart EventType = "rotatestart"
)

// Event is delivered to map event handlers. OriginalEvent is set only when a
// physical input device (mouse, touch, keyboard) caused the event; moves
// started by camera commands leave it nil.
type Event struct {
	Type          EventType
	OriginalEvent any
}

// FromUser reports whether the event came from an input device.
func (e Event) FromUser() bool {
	return e.OriginalEvent != nil
}

// Handler receives map events.
type Handler func(Event)

// Events lets callers subscribe to map events. The returned function removes
// the subscription and is safe to call more than once.
type Events interface {
	On(event EventType, h Handler) (off func())
	Once(event EventType, h Handler) (off func())
}

// CameraPose is a full camera position.
type CameraPose struct {
	Center  orb.Point // [lng, lat]
	Zoom    float64
	Pitch   float64
	Bearing float64
}

// CameraOptions is an animated camera target. Nil fields keep their current value.
type CameraOptions struct {
	Center    *orb.Point
	Zoom      *float64
	Pitch     *float64
	Bearing   *float64
	Duration  time.Duration
	Essential bool
}

// Camera issues camera commands.
type Camera interface {
	Pose() CameraPose
	EaseTo(opts CameraOptions)
	FlyTo(opts CameraOptions)
	SetBearing(bearing float64)
	Bearing() float64
	Zoom() float64
}

// RenderedFeature is a feature as painted by the engine.
type RenderedFeature struct {
	ID         any
	LayerID    string
	SourceID   string
	Geometry   orb.Point
	Properties map[string]any
}

// FeatureQuerier returns rendered features inside a screen-space box.
// Box coordinates are pixels: x grows right, y grows down. An empty layers
// list queries every layer.
type FeatureQuerier interface {
	QueryRenderedFeatures(box orb.Bound, layers []string) []RenderedFeature
}

// ExpansionZoomCallback receives the zoom at which a cluster splits. A nil
// zoom with a nil error means the engine had no answer.
type ExpansionZoomCallback func(zoom *float64, err error)

// ClusterSource answers cluster expansion queries for a clustered source.
type ClusterSource interface {
	ClusterExpansionZoom(sourceID string, clusterID int, cb ExpansionZoomCallback)
}

// Image is a decoded bitmap ready for registration.
type Image struct {
	Width  int
	Height int
	Data   []byte
}

// ImageRegistry holds the images the engine paints symbols with.
type ImageRegistry interface {
	HasImage(key string) bool
	AddImage(key string, img Image, pixelRatio float64) error
}

// Float returns a pointer to f, for building CameraOptions.
func Float(f float64) *float64 {
	return &f
}

// Point returns a pointer to a [lng, lat] point.
func Point(lng, lat float64) *orb.Point {
	p := orb.Point{lng, lat}
	return &p
}

// ClickBox returns the square screen box of half-size tolerance around pt.
func ClickBox(pt orb.Point, tolerance float64) orb.Bound {
	return orb.Bound{
		Min: orb.Point{pt[0] - tolerance, pt[1] - tolerance},
		Max: orb.Point{pt[0] + tolerance, pt[1] + tolerance},
	}
}
