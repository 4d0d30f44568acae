// ABOUTME: In-memory map engine double for tests
// ABOUTME: Records camera commands, places features at screen points, fires events

// Package enginetest provides an in-memory implementation of the mapengine
// interfaces. Camera commands complete instantly; moveend is only delivered
// when a test calls FinishMove so that animation timing stays under test
// control.
package enginetest

import (
	"errors"
	"sync"

	"github.com/harper/forage/internal/mapengine"
	"github.com/paulmach/orb"
)

// CommandKind identifies a recorded camera command.
type CommandKind string

// Recorded command kinds.
const (
	CmdEaseTo     CommandKind = "easeTo"
	CmdFlyTo      CommandKind = "flyTo"
	CmdSetBearing CommandKind = "setBearing"
)

// Command is one recorded camera command.
type Command struct {
	Kind    CommandKind
	Options mapengine.CameraOptions
	Bearing float64
}

// placed is a rendered feature with its screen position.
type placed struct {
	feature mapengine.RenderedFeature
	screen  orb.Point
}

type subscription struct {
	id      int
	event   mapengine.EventType
	handler mapengine.Handler
	once    bool
}

// ExpansionZoom is a canned answer for a cluster expansion query.
type ExpansionZoom struct {
	Zoom *float64
	Err  error
}

// ErrImageExists mirrors the engine refusing to overwrite an image.
var ErrImageExists = errors.New("image already exists")

// Engine is a test double for the map engine.
type Engine struct {
	mu       sync.Mutex
	pose     mapengine.CameraPose
	commands []Command
	features []placed
	subs     []subscription
	nextSub  int
	images   map[string]mapengine.Image
	ratios   map[string]float64
	expand   map[int]ExpansionZoom

	// AddImageErr, when set, is returned by AddImage for matching keys.
	AddImageErr func(key string) error
}

// New returns an engine with the camera at pose.
func New(pose mapengine.CameraPose) *Engine {
	return &Engine{
		pose:   pose,
		images: make(map[string]mapengine.Image),
		ratios: make(map[string]float64),
		expand: make(map[int]ExpansionZoom),
	}
}

// Pose implements mapengine.Camera.
func (e *Engine) Pose() mapengine.CameraPose {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pose
}

// Bearing implements mapengine.Camera.
func (e *Engine) Bearing() float64 {
	return e.Pose().Bearing
}

// Zoom implements mapengine.Camera.
func (e *Engine) Zoom() float64 {
	return e.Pose().Zoom
}

func (e *Engine) apply(kind CommandKind, opts mapengine.CameraOptions) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.commands = append(e.commands, Command{Kind: kind, Options: opts})
	if opts.Center != nil {
		e.pose.Center = *opts.Center
	}
	if opts.Zoom != nil {
		e.pose.Zoom = *opts.Zoom
	}
	if opts.Pitch != nil {
		e.pose.Pitch = *opts.Pitch
	}
	if opts.Bearing != nil {
		e.pose.Bearing = *opts.Bearing
	}
}

// EaseTo implements mapengine.Camera.
func (e *Engine) EaseTo(opts mapengine.CameraOptions) {
	e.apply(CmdEaseTo, opts)
}

// FlyTo implements mapengine.Camera.
func (e *Engine) FlyTo(opts mapengine.CameraOptions) {
	e.apply(CmdFlyTo, opts)
}

// SetBearing implements mapengine.Camera.
func (e *Engine) SetBearing(bearing float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.commands = append(e.commands, Command{Kind: CmdSetBearing, Bearing: bearing})
	e.pose.Bearing = bearing
}

// Commands returns a copy of every recorded camera command.
func (e *Engine) Commands() []Command {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Command, len(e.commands))
	copy(out, e.commands)
	return out
}

// CommandsOf returns recorded commands of one kind.
func (e *Engine) CommandsOf(kind CommandKind) []Command {
	var out []Command
	for _, c := range e.Commands() {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// LastCommand returns the most recent command.
func (e *Engine) LastCommand() (Command, bool) {
	cmds := e.Commands()
	if len(cmds) == 0 {
		return Command{}, false
	}
	return cmds[len(cmds)-1], true
}

// On implements mapengine.Events.
func (e *Engine) On(event mapengine.EventType, h mapengine.Handler) func() {
	return e.subscribe(event, h, false)
}

// Once implements mapengine.Events.
func (e *Engine) Once(event mapengine.EventType, h mapengine.Handler) func() {
	return e.subscribe(event, h, true)
}

func (e *Engine) subscribe(event mapengine.EventType, h mapengine.Handler, once bool) func() {
	e.mu.Lock()
	e.nextSub++
	id := e.nextSub
	e.subs = append(e.subs, subscription{id: id, event: event, handler: h, once: once})
	e.mu.Unlock()
	return func() { e.unsubscribe(id) }
}

func (e *Engine) unsubscribe(id int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, s := range e.subs {
		if s.id == id {
			e.subs = append(e.subs[:i], e.subs[i+1:]...)
			return
		}
	}
}

// Subscribers returns how many handlers listen for event.
func (e *Engine) Subscribers(event mapengine.EventType) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, s := range e.subs {
		if s.event == event {
			n++
		}
	}
	return n
}

// Fire delivers ev to its subscribers. Once handlers are removed before
// they run. Handlers run without the engine lock held.
func (e *Engine) Fire(ev mapengine.Event) {
	e.mu.Lock()
	var run []mapengine.Handler
	kept := e.subs[:0]
	for _, s := range e.subs {
		if s.event == ev.Type {
			run = append(run, s.handler)
			if s.once {
				continue
			}
		}
		kept = append(kept, s)
	}
	e.subs = kept
	e.mu.Unlock()

	for _, h := range run {
		h(ev)
	}
}

// FinishMove ends the current camera animation by firing a programmatic moveend.
func (e *Engine) FinishMove() {
	e.Fire(mapengine.Event{Type: mapengine.EventMoveEnd})
}

// UserDrag simulates a drag started by an input device.
func (e *Engine) UserDrag() {
	e.Fire(mapengine.Event{Type: mapengine.EventDragStart, OriginalEvent: "pointerdown"})
}

// PlaceFeature paints f at a screen position.
func (e *Engine) PlaceFeature(screen orb.Point, f mapengine.RenderedFeature) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.features = append(e.features, placed{feature: f, screen: screen})
}

// ClearFeatures removes every painted feature.
func (e *Engine) ClearFeatures() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.features = nil
}

// QueryRenderedFeatures implements mapengine.FeatureQuerier. Results follow
// paint order, topmost first.
func (e *Engine) QueryRenderedFeatures(box orb.Bound, layers []string) []mapengine.RenderedFeature {
	e.mu.Lock()
	defer e.mu.Unlock()

	want := make(map[string]bool, len(layers))
	for _, l := range layers {
		want[l] = true
	}
	var out []mapengine.RenderedFeature
	for i := len(e.features) - 1; i >= 0; i-- {
		p := e.features[i]
		if len(want) > 0 && !want[p.feature.LayerID] {
			continue
		}
		if box.Contains(p.screen) {
			out = append(out, p.feature)
		}
	}
	return out
}

// SetExpansionZoom sets the answer for a cluster's expansion query.
func (e *Engine) SetExpansionZoom(clusterID int, answer ExpansionZoom) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.expand[clusterID] = answer
}

// ClusterExpansionZoom implements mapengine.ClusterSource. The callback
// runs synchronously; unknown clusters report no zoom.
func (e *Engine) ClusterExpansionZoom(_ string, clusterID int, cb mapengine.ExpansionZoomCallback) {
	e.mu.Lock()
	answer := e.expand[clusterID]
	e.mu.Unlock()
	cb(answer.Zoom, answer.Err)
}

// HasImage implements mapengine.ImageRegistry.
func (e *Engine) HasImage(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.images[key]
	return ok
}

// AddImage implements mapengine.ImageRegistry.
func (e *Engine) AddImage(key string, img mapengine.Image, pixelRatio float64) error {
	if e.AddImageErr != nil {
		if err := e.AddImageErr(key); err != nil {
			return err
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.images[key]; ok {
		return ErrImageExists
	}
	e.images[key] = img
	e.ratios[key] = pixelRatio
	return nil
}

// Images returns the number of registered images.
func (e *Engine) Images() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.images)
}

// PixelRatio returns the ratio an image was registered with.
func (e *Engine) PixelRatio(key string) (float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.ratios[key]
	return r, ok
}

var (
	_ mapengine.Camera         = (*Engine)(nil)
	_ mapengine.Events         = (*Engine)(nil)
	_ mapengine.FeatureQuerier = (*Engine)(nil)
	_ mapengine.ClusterSource  = (*Engine)(nil)
	_ mapengine.ImageRegistry  = (*Engine)(nil)
)
