// ABOUTME: Tests for the navigation state machine with fake platform APIs
// ABOUTME: Covers enter/exit sequencing, interaction exit and teardown

package navigation

import (
	"sync"
	"testing"
	"time"

	"github.com/harper/forage/internal/compass"
	"github.com/harper/forage/internal/mapengine"
	"github.com/harper/forage/internal/mapengine/enginetest"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var home = mapengine.CameraPose{Center: orb.Point{-118.1937, 33.7701}, Zoom: 12}

type request struct {
	opts      PositionOptions
	onSuccess func(Position)
	onError   func(*PositionError)
}

type fakeGeo struct {
	mu          sync.Mutex
	unavailable bool
	fixes       []request
	watches     map[WatchID]request
	nextID      WatchID
	cleared     map[WatchID]int
	clearCalls  int
}

func newFakeGeo() *fakeGeo {
	return &fakeGeo{watches: map[WatchID]request{}, cleared: map[WatchID]int{}}
}

func (g *fakeGeo) Available() bool { return !g.unavailable }

func (g *fakeGeo) CurrentPosition(opts PositionOptions, ok func(Position), fail func(*PositionError)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fixes = append(g.fixes, request{opts, ok, fail})
}

func (g *fakeGeo) WatchPosition(opts PositionOptions, ok func(Position), fail func(*PositionError)) WatchID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	g.watches[g.nextID] = request{opts, ok, fail}
	return g.nextID
}

func (g *fakeGeo) ClearWatch(id WatchID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clearCalls++
	g.cleared[id]++
	delete(g.watches, id)
}

// resolve answers the oldest pending fix.
func (g *fakeGeo) resolve(p orb.Point) {
	g.mu.Lock()
	r := g.fixes[0]
	g.fixes = g.fixes[1:]
	g.mu.Unlock()
	r.onSuccess(Position{Point: p})
}

func (g *fakeGeo) fail(code PositionErrorCode) {
	g.mu.Lock()
	r := g.fixes[0]
	g.fixes = g.fixes[1:]
	g.mu.Unlock()
	r.onError(&PositionError{Code: code})
}

func (g *fakeGeo) move(p orb.Point) {
	g.mu.Lock()
	var rs []request
	for _, r := range g.watches {
		rs = append(rs, r)
	}
	g.mu.Unlock()
	for _, r := range rs {
		r.onSuccess(Position{Point: p})
	}
}

func (g *fakeGeo) activeWatches() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.watches)
}

type queryingGeo struct {
	*fakeGeo
	state   PermissionState
	queries int
}

func (q *queryingGeo) QueryGeolocation(done func(PermissionState)) {
	q.queries++
	done(q.state)
}

type fakeSensors struct {
	mu           sync.Mutex
	native       bool
	gated        bool
	answer       PermissionState
	pending      []func(PermissionState)
	requests     int
	orientation  map[int]func(compass.Orientation)
	motion       map[int]func(MotionSample)
	nextListener int
}

func newFakeSensors() *fakeSensors {
	return &fakeSensors{
		orientation: map[int]func(compass.Orientation){},
		motion:      map[int]func(MotionSample){},
	}
}

func (s *fakeSensors) OrientationSupported() bool   { return true }
func (s *fakeSensors) ProvidesCompassHeading() bool { return s.native }

func (s *fakeSensors) request(done func(PermissionState)) bool {
	s.mu.Lock()
	s.requests++
	if !s.gated {
		s.mu.Unlock()
		return false
	}
	if s.answer == "" {
		s.pending = append(s.pending, done)
		s.mu.Unlock()
		return true
	}
	answer := s.answer
	s.mu.Unlock()
	done(answer)
	return true
}

func (s *fakeSensors) RequestMotionPermission(done func(PermissionState)) bool {
	return s.request(done)
}

func (s *fakeSensors) RequestOrientationPermission(done func(PermissionState)) bool {
	return s.request(done)
}

func (s *fakeSensors) answerPending(st PermissionState) {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, done := range pending {
		done(st)
	}
}

func (s *fakeSensors) AddOrientationListener(fn func(compass.Orientation)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextListener++
	id := s.nextListener
	s.orientation[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.orientation, id)
	}
}

func (s *fakeSensors) AddMotionListener(fn func(MotionSample)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextListener++
	id := s.nextListener
	s.motion[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.motion, id)
	}
}

func (s *fakeSensors) emit(o compass.Orientation) {
	s.mu.Lock()
	var fns []func(compass.Orientation)
	for _, fn := range s.orientation {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(o)
	}
}

func (s *fakeSensors) emitMotion(m MotionSample) {
	s.mu.Lock()
	var fns []func(MotionSample)
	for _, fn := range s.motion {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(m)
	}
}

func (s *fakeSensors) listeners() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orientation) + len(s.motion)
}

type events struct {
	mu       sync.Mutex
	modes    []Mode
	headings []float64
	prompts  []PromptState
	perms    map[string]PermissionState
}

func (e *events) ModeChanged(_, to Mode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.modes = append(e.modes, to)
}

func (e *events) HeadingApplied(b float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.headings = append(e.headings, b)
}

func (e *events) PromptChanged(p PromptState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prompts = append(e.prompts, p)
}

func (e *events) SensorPermission(sensor string, st PermissionState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.perms == nil {
		e.perms = map[string]PermissionState{}
	}
	e.perms[sensor] = st
}

type rig struct {
	eng     *enginetest.Engine
	geo     *fakeGeo
	sensors *fakeSensors
	obs     *events
	ctrl    *Controller
}

func newRig(t *testing.T, geo Geolocation) *rig {
	t.Helper()
	r := &rig{
		eng:     enginetest.New(home),
		sensors: newFakeSensors(),
		obs:     &events{},
	}
	switch g := geo.(type) {
	case nil:
		r.geo = newFakeGeo()
		geo = r.geo
	case *queryingGeo:
		r.geo = g.fakeGeo
	case *fakeGeo:
		r.geo = g
	}
	r.ctrl = NewController(r.eng, geo, r.sensors, WithObserver(r.obs))
	t.Cleanup(func() { _ = r.ctrl.Close() })
	return r
}

var user = orb.Point{-118.25, 33.80}

// follow drives the controller from Flat to Following.
func (r *rig) follow(t *testing.T) {
	t.Helper()
	require.NoError(t, r.ctrl.Enter())
	require.Equal(t, Entering, r.ctrl.Mode())
	r.geo.resolve(user)
	require.Equal(t, Entering, r.ctrl.Mode(), "mode commits only after the animation")
	r.eng.FinishMove()
	require.Equal(t, Following, r.ctrl.Mode())
}

func TestEnter_SequencesStateAfterAnimation(t *testing.T) {
	r := newRig(t, nil)
	require.NoError(t, r.ctrl.Enter())
	assert.Equal(t, 2, r.sensors.requests, "both sensor permissions requested inside the gesture")
	assert.Equal(t, Entering, r.ctrl.Mode())
	assert.Empty(t, r.eng.Commands(), "camera untouched before the fix")

	r.geo.resolve(user)
	fly, ok := r.eng.LastCommand()
	require.True(t, ok)
	assert.Equal(t, enginetest.CmdFlyTo, fly.Kind)
	assert.Equal(t, user, *fly.Options.Center)
	assert.Equal(t, 17.0, *fly.Options.Zoom)
	assert.Equal(t, 60.0, *fly.Options.Pitch)
	assert.Equal(t, time.Second, fly.Options.Duration)
	assert.True(t, fly.Options.Essential)

	assert.Equal(t, 0, r.geo.activeWatches(), "watch waits for moveend")
	assert.Equal(t, 0, r.sensors.listeners(), "listeners wait for moveend")

	r.eng.FinishMove()
	assert.Equal(t, Following, r.ctrl.Mode())
	assert.Equal(t, 1, r.geo.activeWatches())
	assert.Equal(t, 2, r.sensors.listeners())
	assert.Equal(t, []Mode{Entering, Following}, r.obs.modes)
	assert.Equal(t, 0, r.eng.Subscribers(mapengine.EventMoveEnd))
}

func TestFollowing_HeadingSetsBearingDirectly(t *testing.T) {
	r := newRig(t, nil)
	r.follow(t)

	r.sensors.emit(compass.Orientation{Alpha: 270, HasAlpha: true, At: time.Unix(1, 0)})
	r.sensors.emit(compass.Orientation{Alpha: 260, HasAlpha: true, At: time.Unix(2, 0)})

	bearings := r.eng.CommandsOf(enginetest.CmdSetBearing)
	require.Len(t, bearings, 2)
	assert.Equal(t, 90.0, bearings[0].Bearing)
	assert.InDelta(t, 91.5, bearings[1].Bearing, 1e-9)
	assert.Len(t, r.obs.headings, 2)
	require.NotNil(t, r.ctrl.Heading())
}

func TestFollowing_PositionUpdatesEaseCamera(t *testing.T) {
	r := newRig(t, nil)
	r.follow(t)

	next := orb.Point{-118.251, 33.801}
	r.geo.move(next)

	ease, ok := r.eng.LastCommand()
	require.True(t, ok)
	assert.Equal(t, enginetest.CmdEaseTo, ease.Kind)
	assert.Equal(t, next, *ease.Options.Center)
	assert.Equal(t, 300*time.Millisecond, ease.Options.Duration)
	assert.Nil(t, ease.Options.Pitch)
	assert.Equal(t, next, *r.ctrl.UserLocation())
}

func TestExitOnUserInteraction_IgnoresProgrammaticEvents(t *testing.T) {
	r := newRig(t, nil)
	r.follow(t)

	r.ctrl.ExitOnUserInteraction(mapengine.Event{Type: mapengine.EventDragStart})
	r.eng.Fire(mapengine.Event{Type: mapengine.EventRotateStart})

	assert.Equal(t, Following, r.ctrl.Mode())
	assert.Equal(t, 0, r.geo.clearCalls)
}

func TestExitOnUserInteraction_UserDragLeavesCameraInPlace(t *testing.T) {
	r := newRig(t, nil)
	r.follow(t)
	before := len(r.eng.Commands())

	r.eng.UserDrag()

	assert.Equal(t, Flat, r.ctrl.Mode())
	assert.Equal(t, 1, r.geo.clearCalls, "watch cleared exactly once")
	assert.Equal(t, 0, r.geo.activeWatches())
	assert.Equal(t, 0, r.sensors.listeners())
	assert.Equal(t, 0, r.eng.Subscribers(mapengine.EventDragStart))
	assert.Equal(t, 0, r.eng.Subscribers(mapengine.EventRotateStart))
	assert.Len(t, r.eng.Commands(), before, "no snap-back")
	assert.Nil(t, r.ctrl.Heading(), "compass state reset")

	r.ctrl.Exit()
	r.eng.UserDrag()
	assert.Equal(t, 1, r.geo.clearCalls)
}

func TestExitOnUserInteraction_DirectCallWithOriginalEvent(t *testing.T) {
	r := newRig(t, nil)
	r.follow(t)

	r.ctrl.ExitOnUserInteraction(mapengine.Event{Type: mapengine.EventRotateStart, OriginalEvent: "touchstart"})

	assert.Equal(t, Flat, r.ctrl.Mode())
	assert.Equal(t, 1, r.geo.clearCalls)
}

func TestExit_RestoresSavedPose(t *testing.T) {
	r := newRig(t, nil)
	r.follow(t)

	r.ctrl.Exit()
	assert.Equal(t, Flat, r.ctrl.Mode())
	assert.Equal(t, 1, r.geo.clearCalls)

	fly, _ := r.eng.LastCommand()
	assert.Equal(t, enginetest.CmdFlyTo, fly.Kind)
	assert.Equal(t, home.Center, *fly.Options.Center)
	assert.Equal(t, home.Zoom, *fly.Options.Zoom)
	assert.Equal(t, 0.0, *fly.Options.Pitch)
	assert.Equal(t, 0.0, *fly.Options.Bearing)
	assert.Equal(t, 500*time.Millisecond, fly.Options.Duration)
	assert.Equal(t, mapengine.CameraPose{Center: home.Center, Zoom: home.Zoom}, r.eng.Pose())
}

func TestExit_WhileEnteringFlattens(t *testing.T) {
	r := newRig(t, nil)
	require.NoError(t, r.ctrl.Enter())

	r.ctrl.Exit()
	assert.Equal(t, Flat, r.ctrl.Mode())
	ease, _ := r.eng.LastCommand()
	assert.Equal(t, enginetest.CmdEaseTo, ease.Kind)
	assert.Nil(t, ease.Options.Center)
	assert.Equal(t, 0.0, *ease.Options.Pitch)
	assert.Equal(t, 0.0, *ease.Options.Bearing)

	// The late fix belongs to an abandoned session.
	r.geo.resolve(user)
	assert.Equal(t, Flat, r.ctrl.Mode())
	assert.Equal(t, 0, r.eng.Subscribers(mapengine.EventMoveEnd))
}

func TestToggle(t *testing.T) {
	r := newRig(t, nil)
	require.NoError(t, r.ctrl.Toggle())
	r.geo.resolve(user)
	r.eng.FinishMove()
	require.Equal(t, Following, r.ctrl.Mode())

	require.NoError(t, r.ctrl.Toggle())
	assert.Equal(t, Flat, r.ctrl.Mode())
}

func TestEnter_GeolocationFailureShowsPrompt(t *testing.T) {
	r := newRig(t, nil)
	require.NoError(t, r.ctrl.Enter())
	r.geo.fail(PositionTimeout)

	assert.Equal(t, Flat, r.ctrl.Mode())
	assert.Equal(t, PromptState{Show: true}, r.ctrl.Prompt())
	assert.Empty(t, r.geo.fixes, "never retried silently")
	assert.Empty(t, r.eng.Commands())
}

func TestEnter_DeniedShowsSettingsExplainer(t *testing.T) {
	g := &queryingGeo{fakeGeo: newFakeGeo(), state: PermissionDenied}
	r := newRig(t, g)
	require.NoError(t, r.ctrl.Enter())
	r.geo.fail(PositionPermissionDenied)

	assert.Equal(t, PromptState{Show: true, Denied: true}, r.ctrl.Prompt())
	assert.Equal(t, 1, g.queries)
}

func TestEnter_Unsupported(t *testing.T) {
	geo := newFakeGeo()
	geo.unavailable = true
	r := newRig(t, geo)

	assert.ErrorIs(t, r.ctrl.Enter(), ErrUnsupported)
	assert.Equal(t, Flat, r.ctrl.Mode())
	assert.True(t, r.ctrl.Prompt().Show)
	assert.Equal(t, 2, r.sensors.requests, "sensors still requested in the gesture")
}

func TestRetryPermission_DeniedDoesNotAskAgain(t *testing.T) {
	g := &queryingGeo{fakeGeo: newFakeGeo(), state: PermissionDenied}
	r := newRig(t, g)

	require.NoError(t, r.ctrl.RetryPermission())
	assert.Equal(t, PromptState{Show: true, Denied: true}, r.ctrl.Prompt())
	assert.Empty(t, r.geo.fixes)
	assert.Equal(t, Flat, r.ctrl.Mode())
}

func TestRetryPermission_PromptStateRequestsFix(t *testing.T) {
	g := &queryingGeo{fakeGeo: newFakeGeo(), state: PermissionPrompt}
	r := newRig(t, g)
	r.ctrl.setPrompt(PromptState{Show: true})

	require.NoError(t, r.ctrl.RetryPermission())
	assert.Equal(t, PromptState{}, r.ctrl.Prompt())
	assert.Equal(t, Entering, r.ctrl.Mode())
	r.geo.resolve(user)
	r.eng.FinishMove()
	assert.Equal(t, Following, r.ctrl.Mode())
}

func TestSensors_LatePermissionAttachesListeners(t *testing.T) {
	r := newRig(t, nil)
	r.sensors.gated = true
	r.follow(t)
	assert.Equal(t, 0, r.sensors.listeners(), "no listeners before permission")

	r.sensors.answerPending(PermissionGranted)
	assert.Equal(t, 2, r.sensors.listeners())
	assert.Equal(t, PermissionGranted, r.obs.perms[SensorOrientation])
	assert.True(t, r.ctrl.Diagnostics().ListenerActive)
}

func TestSensors_DeniedPermissionKeepsCompassOff(t *testing.T) {
	r := newRig(t, nil)
	r.sensors.gated = true
	r.sensors.answer = PermissionDenied
	r.follow(t)

	assert.Equal(t, 0, r.sensors.listeners())
	assert.Equal(t, Following, r.ctrl.Mode(), "position following still works")
	d := r.ctrl.Diagnostics()
	assert.Equal(t, PermissionDenied, d.MotionPermission)
	assert.False(t, d.ListenerActive)
}

func TestCenterOnUser(t *testing.T) {
	r := newRig(t, nil)
	require.NoError(t, r.ctrl.CenterOnUser())
	r.geo.resolve(user)

	fly, _ := r.eng.LastCommand()
	assert.Equal(t, enginetest.CmdFlyTo, fly.Kind)
	assert.Equal(t, 15.0, *fly.Options.Zoom)
	assert.Equal(t, Flat, r.ctrl.Mode())

	require.NoError(t, r.ctrl.CenterOnUser())
	r.geo.fail(PositionUnavailable)
	assert.True(t, r.ctrl.Prompt().Show)
}

func TestClose_TearsDownWithoutCameraMoves(t *testing.T) {
	r := newRig(t, nil)
	r.follow(t)
	before := len(r.eng.Commands())

	require.NoError(t, r.ctrl.Close())
	assert.Equal(t, Flat, r.ctrl.Mode())
	assert.Equal(t, 1, r.geo.clearCalls)
	assert.Equal(t, 0, r.sensors.listeners())
	assert.Len(t, r.eng.Commands(), before)
	assert.ErrorIs(t, r.ctrl.Enter(), ErrClosed)

	r.sensors.emit(compass.Orientation{Alpha: 10, HasAlpha: true})
	r.geo.move(user)
	assert.Len(t, r.eng.Commands(), before, "no phantom camera moves after teardown")
}

func TestDiagnostics(t *testing.T) {
	r := newRig(t, nil)
	r.follow(t)
	r.sensors.emit(compass.Orientation{Alpha: 0, HasAlpha: true, At: time.Unix(5, 0)})
	r.sensors.emitMotion(MotionSample{AccelZ: 9.81, HasAcceleration: true, At: time.Unix(5, 0)})

	d := r.ctrl.Diagnostics()
	assert.Equal(t, "following", d.Mode)
	assert.NotEmpty(t, d.Session)
	assert.Equal(t, "alpha", d.HeadingSource)
	assert.Equal(t, PermissionNotRequired, d.OrientationPermission)
	require.NotNil(t, d.LastMotion)
	assert.Equal(t, 9.81, d.LastMotion.AccelZ)
	require.NotNil(t, d.Compass.LastAlpha)
	assert.Equal(t, time.Unix(5, 0), d.Compass.LastEventAt)
}
