// ABOUTME: Navigation mode state machine for the 3D compass follow mode
// ABOUTME: Sequences permissions, camera animation, position watch and heading sync

// Package navigation drives the map camera between a flat browsing mode and
// a 3D mode that follows the device's position and compass heading.
//
// Modes move Flat → Entering → Following → Flat. Entering covers the wait
// for the first position fix and the fly-in animation; state is committed
// to Following only from the animation's moveend callback, so nothing the
// host renders in response can cancel the flight.
package navigation

import (
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/harper/forage/internal/compass"
	"github.com/harper/forage/internal/mapengine"
	"github.com/paulmach/orb"
)

var (
	// ErrUnsupported is returned when the platform has no geolocation.
	ErrUnsupported = errors.New("geolocation not supported")
	// ErrClosed is returned by entry points after Close.
	ErrClosed = errors.New("navigation controller closed")
)

// Mode is the navigation mode.
type Mode int

// Navigation modes.
const (
	Flat Mode = iota
	Entering
	Following
)

func (m Mode) String() string {
	switch m {
	case Flat:
		return "flat"
	case Entering:
		return "entering"
	case Following:
		return "following"
	default:
		return "unknown"
	}
}

// PromptState drives the location prompt. Show with Denied false is the
// soft "enable location" prompt; Denied means the permission was refused
// and only the system settings can change it.
type PromptState struct {
	Show   bool `json:"show"`
	Denied bool `json:"denied"`
}

// Settings are the camera and geolocation parameters of the controller.
type Settings struct {
	FollowZoom     float64
	FollowPitch    float64
	FlyDuration    time.Duration
	FollowDuration time.Duration
	ExitDuration   time.Duration
	CenterZoom     float64
	Fix            PositionOptions
	Watch          PositionOptions
}

// DefaultSettings returns the stock follow-mode parameters.
func DefaultSettings() Settings {
	return Settings{
		FollowZoom:     17,
		FollowPitch:    60,
		FlyDuration:    time.Second,
		FollowDuration: 300 * time.Millisecond,
		ExitDuration:   500 * time.Millisecond,
		CenterZoom:     15,
		Fix:            PositionOptions{EnableHighAccuracy: true, Timeout: 10 * time.Second},
		Watch:          PositionOptions{EnableHighAccuracy: true, Timeout: 10 * time.Second, MaximumAge: time.Second},
	}
}

// Observer receives controller events. It replaces any need to reach into
// the controller or the camera from tests or debug tooling.
type Observer interface {
	ModeChanged(from, to Mode)
	HeadingApplied(bearing float64)
	PromptChanged(p PromptState)
	SensorPermission(sensor string, state PermissionState)
}

// Sensor names passed to Observer.SensorPermission.
const (
	SensorMotion      = "motion"
	SensorOrientation = "orientation"
)

// Engine is the subset of the map engine the controller drives.
type Engine interface {
	mapengine.Camera
	mapengine.Events
}

// session holds everything attached for one enter→exit cycle. Its fields
// are guarded by Controller.mu.
type session struct {
	id    string
	saved *mapengine.CameraPose

	watch    WatchID
	watching bool

	offMoveEnd func()
	offDrag    func()
	offRotate  func()

	sensorsAttached   bool
	removeOrientation func()
	removeMotion      func()
}

// Controller is the navigation state machine. It is safe for concurrent
// use; no lock is held while calling into the engine or the platform.
type Controller struct {
	engine   Engine
	geo      Geolocation
	sensors  Sensors
	settings Settings
	fusion   *compass.Fusion
	logger   *log.Logger
	observer Observer

	mu            sync.Mutex
	closed        bool
	mode          Mode
	session       *session
	prompt        PromptState
	motionPerm    PermissionState
	orientPerm    PermissionState
	userLocation  *orb.Point
	lastMotion    *MotionSample
	lastSessionID string
}

// Option configures a Controller.
type Option func(*Controller)

// WithSettings replaces the default settings.
func WithSettings(s Settings) Option {
	return func(c *Controller) { c.settings = s }
}

// WithFusion replaces the compass fusion. By default one is created with
// the heading source the sensors call for.
func WithFusion(f *compass.Fusion) Option {
	return func(c *Controller) { c.fusion = f }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithObserver attaches an observer.
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observer = o }
}

// NewController creates a controller in Flat mode. geo and sensors may be
// nil on platforms without them.
func NewController(engine Engine, geo Geolocation, sensors Sensors, opts ...Option) *Controller {
	c := &Controller{
		engine:     engine,
		geo:        geo,
		sensors:    sensors,
		settings:   DefaultSettings(),
		motionPerm: PermissionUnknown,
		orientPerm: PermissionUnknown,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	if c.fusion == nil {
		native := sensors != nil && sensors.ProvidesCompassHeading()
		c.fusion = compass.NewFusion(compass.SelectSource(native))
	}
	return c
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Prompt returns the location prompt state.
func (c *Controller) Prompt() PromptState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prompt
}

// Heading returns the smoothed compass heading, or nil when none is known.
func (c *Controller) Heading() *float64 {
	return c.fusion.State().SmoothedHeading
}

// UserLocation returns the last known position while entering or following.
func (c *Controller) UserLocation() *orb.Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.userLocation == nil {
		return nil
	}
	p := *c.userLocation
	return &p
}

// DismissPrompt hides the location prompt.
func (c *Controller) DismissPrompt() {
	c.setPrompt(PromptState{})
}

// Toggle enters follow mode from Flat and exits it otherwise.
func (c *Controller) Toggle() error {
	if c.Mode() == Flat {
		return c.Enter()
	}
	c.Exit()
	return nil
}

// Enter starts follow mode. It must be called from the user gesture that
// asked for it: sensor permissions are requested before it returns. The
// mode only reaches Following after the fly-in animation ends.
func (c *Controller) Enter() error {
	c.mu.Lock()
	closed, mode := c.closed, c.mode
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if mode != Flat {
		return nil
	}

	c.requestSensors()

	if c.geo == nil || !c.geo.Available() {
		c.logger.Debug("geolocation unavailable")
		c.setPrompt(PromptState{Show: true})
		return ErrUnsupported
	}
	return c.locate()
}

// RetryPermission is the prompt's retry action. Like Enter it must run
// inside a user gesture. When the permission is known to be denied it
// switches the prompt to the settings explainer without asking again.
func (c *Controller) RetryPermission() error {
	c.mu.Lock()
	closed, mode := c.closed, c.mode
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if mode != Flat {
		return nil
	}

	c.requestSensors()

	if c.geo == nil || !c.geo.Available() {
		c.setPrompt(PromptState{Show: true})
		return ErrUnsupported
	}

	q, ok := c.geo.(PermissionQuerier)
	if !ok {
		c.setPrompt(PromptState{})
		return c.locate()
	}
	q.QueryGeolocation(func(state PermissionState) {
		if state == PermissionDenied {
			c.setPrompt(PromptState{Show: true, Denied: true})
			return
		}
		c.setPrompt(PromptState{})
		if err := c.locate(); err != nil {
			c.logger.Debug("retry abandoned", "err", err)
		}
	})
	return nil
}

// locate starts a session and asks for the first fix.
func (c *Controller) locate() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.mode != Flat {
		c.mu.Unlock()
		return nil
	}
	s := &session{id: uuid.NewString()}
	c.session = s
	c.lastSessionID = s.id
	c.mode = Entering
	c.mu.Unlock()

	c.logger.Debug("entering follow mode", "session", s.id)
	c.notifyMode(Flat, Entering)

	c.geo.CurrentPosition(c.settings.Fix,
		func(p Position) { c.onFix(s, p) },
		func(err *PositionError) { c.onFixError(s, err) },
	)
	return nil
}

func (c *Controller) onFix(s *session, p Position) {
	if !c.current(s, Entering) {
		return
	}
	pose := c.engine.Pose()
	offDrag := c.engine.On(mapengine.EventDragStart, c.ExitOnUserInteraction)
	offRotate := c.engine.On(mapengine.EventRotateStart, c.ExitOnUserInteraction)
	offMoveEnd := c.engine.Once(mapengine.EventMoveEnd, func(mapengine.Event) {
		c.onArrived(s, p)
	})

	c.mu.Lock()
	if c.session != s || c.mode != Entering {
		c.mu.Unlock()
		offDrag()
		offRotate()
		offMoveEnd()
		return
	}
	s.saved = &pose
	s.offDrag, s.offRotate, s.offMoveEnd = offDrag, offRotate, offMoveEnd
	loc := p.Point
	c.userLocation = &loc
	c.mu.Unlock()

	c.engine.FlyTo(mapengine.CameraOptions{
		Center:    &loc,
		Zoom:      mapengine.Float(c.settings.FollowZoom),
		Pitch:     mapengine.Float(c.settings.FollowPitch),
		Duration:  c.settings.FlyDuration,
		Essential: true,
	})
}

func (c *Controller) onFixError(s *session, perr *PositionError) {
	c.mu.Lock()
	if c.session != s {
		c.mu.Unlock()
		return
	}
	release := c.detachLocked()
	from := c.mode
	c.mode = Flat
	c.prompt = PromptState{Show: true}
	prompt := c.prompt
	c.mu.Unlock()

	release()
	c.logger.Warn("geolocation error", "session", s.id, "err", perr)
	c.notifyMode(from, Flat)
	c.notifyPrompt(prompt)

	q, ok := c.geo.(PermissionQuerier)
	if !ok {
		return
	}
	q.QueryGeolocation(func(state PermissionState) {
		if state != PermissionDenied {
			return
		}
		c.mu.Lock()
		if !c.prompt.Show {
			c.mu.Unlock()
			return
		}
		c.prompt.Denied = true
		prompt := c.prompt
		c.mu.Unlock()
		c.notifyPrompt(prompt)
	})
}

// onArrived runs when the fly-in animation ends and commits Following.
func (c *Controller) onArrived(s *session, p Position) {
	c.mu.Lock()
	if c.session != s || c.mode != Entering {
		c.mu.Unlock()
		return
	}
	s.offMoveEnd = nil
	c.mode = Following
	c.mu.Unlock()

	c.logger.Debug("following", "session", s.id, "lng", p.Point.Lon(), "lat", p.Point.Lat())
	c.notifyMode(Entering, Following)

	id := c.geo.WatchPosition(c.settings.Watch,
		func(p Position) { c.onWatch(s, p) },
		func(err *PositionError) {
			c.logger.Warn("position watch error", "session", s.id, "err", err)
		},
	)
	c.mu.Lock()
	if c.session != s {
		c.mu.Unlock()
		c.geo.ClearWatch(id)
		return
	}
	s.watch, s.watching = id, true
	c.mu.Unlock()

	c.attachSensors(s)
}

func (c *Controller) onWatch(s *session, p Position) {
	c.mu.Lock()
	if c.session != s || c.mode != Following {
		c.mu.Unlock()
		return
	}
	loc := p.Point
	c.userLocation = &loc
	c.mu.Unlock()

	c.engine.EaseTo(mapengine.CameraOptions{
		Center:   &loc,
		Duration: c.settings.FollowDuration,
	})
}

// ExitOnUserInteraction leaves follow mode when ev came from an input
// device. The camera stays where the user put it. Events raised by the
// engine's own animations carry no original event and are ignored.
func (c *Controller) ExitOnUserInteraction(ev mapengine.Event) {
	if !ev.FromUser() {
		return
	}
	c.mu.Lock()
	if c.mode == Flat {
		c.mu.Unlock()
		return
	}
	from := c.mode
	id := c.lastSessionID
	release := c.detachLocked()
	c.mode = Flat
	c.mu.Unlock()

	release()
	c.logger.Debug("left follow mode on user interaction", "session", id, "event", ev.Type)
	c.notifyMode(from, Flat)
}

// Exit is the manual toggle off. It restores the camera saved on entry, or
// flattens pitch and bearing when there is none.
func (c *Controller) Exit() {
	c.mu.Lock()
	if c.mode == Flat {
		c.mu.Unlock()
		return
	}
	from := c.mode
	var saved *mapengine.CameraPose
	if c.session != nil {
		saved = c.session.saved
	}
	release := c.detachLocked()
	c.mode = Flat
	c.mu.Unlock()

	release()
	c.notifyMode(from, Flat)

	if saved != nil {
		c.engine.FlyTo(mapengine.CameraOptions{
			Center:   &saved.Center,
			Zoom:     mapengine.Float(saved.Zoom),
			Pitch:    mapengine.Float(0),
			Bearing:  mapengine.Float(0),
			Duration: c.settings.ExitDuration,
		})
		return
	}
	c.engine.EaseTo(mapengine.CameraOptions{
		Pitch:    mapengine.Float(0),
		Bearing:  mapengine.Float(0),
		Duration: c.settings.ExitDuration,
	})
}

// CenterOnUser flies to the device position once without following it.
func (c *Controller) CenterOnUser() error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if c.geo == nil || !c.geo.Available() {
		return ErrUnsupported
	}
	c.geo.CurrentPosition(c.settings.Fix,
		func(p Position) {
			loc := p.Point
			c.engine.FlyTo(mapengine.CameraOptions{
				Center:   &loc,
				Zoom:     mapengine.Float(c.settings.CenterZoom),
				Duration: c.settings.FlyDuration,
			})
		},
		func(err *PositionError) {
			c.logger.Warn("geolocation error", "err", err)
			c.setPrompt(PromptState{Show: true})
		},
	)
	return nil
}

// Close tears everything down without moving the camera. Entry points
// return ErrClosed afterwards.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	from := c.mode
	release := c.detachLocked()
	c.mode = Flat
	c.mu.Unlock()

	release()
	if from != Flat {
		c.notifyMode(from, Flat)
	}
	return nil
}

// requestSensors asks for motion and orientation permission. It runs
// synchronously so platforms that require a user gesture see one.
func (c *Controller) requestSensors() {
	if c.sensors == nil || !c.sensors.OrientationSupported() {
		return
	}
	if !c.sensors.RequestMotionPermission(func(st PermissionState) {
		c.onSensorPermission(SensorMotion, st)
	}) {
		c.onSensorPermission(SensorMotion, PermissionNotRequired)
	}
	if !c.sensors.RequestOrientationPermission(func(st PermissionState) {
		c.onSensorPermission(SensorOrientation, st)
	}) {
		c.onSensorPermission(SensorOrientation, PermissionNotRequired)
	}
}

func (c *Controller) onSensorPermission(sensor string, st PermissionState) {
	c.mu.Lock()
	switch sensor {
	case SensorMotion:
		c.motionPerm = st
	case SensorOrientation:
		c.orientPerm = st
	}
	s := c.session
	c.mu.Unlock()

	if !st.Allows() {
		c.logger.Warn("sensor permission refused", "sensor", sensor, "state", st)
	}
	if c.observer != nil {
		c.observer.SensorPermission(sensor, st)
	}
	// A late answer may arrive after the fly-in finished.
	if s != nil {
		c.attachSensors(s)
	}
}

// attachSensors subscribes to orientation and motion once both
// permissions allow it and s is following.
func (c *Controller) attachSensors(s *session) {
	if c.sensors == nil {
		return
	}
	c.mu.Lock()
	if c.session != s || c.mode != Following || s.sensorsAttached ||
		!c.motionPerm.Allows() || !c.orientPerm.Allows() {
		c.mu.Unlock()
		return
	}
	s.sensorsAttached = true
	c.mu.Unlock()

	removeOrientation := c.sensors.AddOrientationListener(func(o compass.Orientation) {
		c.onOrientation(s, o)
	})
	removeMotion := c.sensors.AddMotionListener(func(m MotionSample) {
		c.onMotion(s, m)
	})

	c.mu.Lock()
	if c.session != s {
		c.mu.Unlock()
		removeOrientation()
		removeMotion()
		return
	}
	s.removeOrientation, s.removeMotion = removeOrientation, removeMotion
	c.mu.Unlock()
	c.logger.Debug("compass listening", "session", s.id, "source", c.fusion.Source().Name())
}

func (c *Controller) onOrientation(s *session, o compass.Orientation) {
	if !c.current(s, Following) {
		return
	}
	st, changed := c.fusion.Update(o)
	if !changed || st.SmoothedHeading == nil {
		return
	}
	// Set directly; the fusion already smooths.
	c.engine.SetBearing(*st.SmoothedHeading)
	if c.observer != nil {
		c.observer.HeadingApplied(*st.SmoothedHeading)
	}
}

func (c *Controller) onMotion(s *session, m MotionSample) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != s {
		return
	}
	c.lastMotion = &m
}

func (c *Controller) current(s *session, mode Mode) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session == s && c.mode == mode
}

// detachLocked ends the current session and returns the function that
// releases what it attached. The caller runs it after unlocking. Because
// the session pointer is cleared here, each session is released once.
func (c *Controller) detachLocked() func() {
	s := c.session
	c.session = nil
	c.userLocation = nil
	if s == nil {
		return func() {}
	}

	var offs []func()
	for _, off := range []func(){s.offMoveEnd, s.offDrag, s.offRotate, s.removeOrientation, s.removeMotion} {
		if off != nil {
			offs = append(offs, off)
		}
	}
	watch, watching := s.watch, s.watching
	s.watching = false

	return func() {
		for _, off := range offs {
			off()
		}
		if watching {
			c.geo.ClearWatch(watch)
		}
		c.fusion.Reset()
	}
}

func (c *Controller) setPrompt(p PromptState) {
	c.mu.Lock()
	if c.prompt == p {
		c.mu.Unlock()
		return
	}
	c.prompt = p
	c.mu.Unlock()
	c.notifyPrompt(p)
}

func (c *Controller) notifyMode(from, to Mode) {
	if c.observer != nil {
		c.observer.ModeChanged(from, to)
	}
}

func (c *Controller) notifyPrompt(p PromptState) {
	if c.observer != nil {
		c.observer.PromptChanged(p)
	}
}
