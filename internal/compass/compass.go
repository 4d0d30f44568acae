// ABOUTME: Compass heading fusion from device-orientation events
// ABOUTME: Platform heading strategies and wrap-aware exponential smoothing

// Package compass turns raw device-orientation samples into a stable
// heading. Which platform field carries the heading is decided once, when
// the Fusion is created, by picking a HeadingSource.
package compass

import (
	"math"
	"sync"
	"time"
)

// DefaultSmoothing is the exponential smoothing factor applied per sample.
// Lower is smoother, higher is more responsive.
const DefaultSmoothing = 0.15

// Orientation is one raw device-orientation sample. Fields a platform does
// not report are left with their Has flag false. Values are comparable so
// a replayed sample can be recognised.
type Orientation struct {
	Alpha             float64
	HasAlpha          bool
	Beta              float64
	Gamma             float64
	CompassHeading    float64
	HasCompassHeading bool
	Absolute          bool
	At                time.Time
}

// HeadingSource extracts a compass heading (degrees clockwise from north)
// from a sample.
type HeadingSource interface {
	Heading(o Orientation) (float64, bool)
	Name() string
}

// CompassHeadingSource reads a platform-provided compass heading directly.
type CompassHeadingSource struct{}

// Heading implements HeadingSource.
func (CompassHeadingSource) Heading(o Orientation) (float64, bool) {
	if !o.HasCompassHeading || !finite(o.CompassHeading) {
		return 0, false
	}
	return Normalize(o.CompassHeading), true
}

// Name implements HeadingSource.
func (CompassHeadingSource) Name() string { return "compass-heading" }

// AlphaSource derives the heading from the rotation around the z axis.
// Alpha grows counter-clockwise, so the heading is 360 - alpha.
type AlphaSource struct{}

// Heading implements HeadingSource.
func (AlphaSource) Heading(o Orientation) (float64, bool) {
	if !o.HasAlpha || !finite(o.Alpha) {
		return 0, false
	}
	return Normalize(360 - o.Alpha), true
}

// Name implements HeadingSource.
func (AlphaSource) Name() string { return "alpha" }

// SelectSource picks the strategy for a platform. Platforms that report a
// native compass heading use it; everything else derives from alpha.
func SelectSource(providesCompassHeading bool) HeadingSource {
	if providesCompassHeading {
		return CompassHeadingSource{}
	}
	return AlphaSource{}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Normalize maps any angle into [0, 360).
func Normalize(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d = 0
	}
	return d
}

// ShortestDelta returns the signed difference to - from in [-180, 180].
func ShortestDelta(from, to float64) float64 {
	delta := to - from
	if delta > 180 {
		delta -= 360
	}
	if delta < -180 {
		delta += 360
	}
	return delta
}

// State is the fused compass state.
type State struct {
	RawHeading      *float64  `json:"raw_heading"`
	SmoothedHeading *float64  `json:"smoothed_heading"`
	LastAlpha       *float64  `json:"last_alpha"`
	LastEventAt     time.Time `json:"last_event_at"`
}

// Fusion smooths heading samples. It is safe for concurrent use.
type Fusion struct {
	source    HeadingSource
	smoothing float64
	now       func() time.Time

	mu       sync.Mutex
	raw      *float64
	smoothed *float64
	alpha    *float64
	lastAt   time.Time
	last     Orientation
	seen     bool
}

// Option configures a Fusion.
type Option func(*Fusion)

// WithSmoothing sets the smoothing factor (0 < f <= 1).
func WithSmoothing(f float64) Option {
	return func(fu *Fusion) {
		if f > 0 && f <= 1 {
			fu.smoothing = f
		}
	}
}

// WithClock sets the clock used to stamp samples without a timestamp.
func WithClock(now func() time.Time) Option {
	return func(fu *Fusion) { fu.now = now }
}

// NewFusion creates a fusion using source.
func NewFusion(source HeadingSource, opts ...Option) *Fusion {
	f := &Fusion{
		source:    source,
		smoothing: DefaultSmoothing,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Source returns the heading strategy in use.
func (f *Fusion) Source() HeadingSource {
	return f.source
}

// Update integrates one sample and returns the new state. changed is false
// when the sample carried no heading or repeats the previous sample
// exactly, in which case the state is untouched. A non-finite heading
// counts as no heading.
func (f *Fusion) Update(o Orientation) (st State, changed bool) {
	heading, ok := f.source.Heading(o)
	ok = ok && finite(heading)

	f.mu.Lock()
	defer f.mu.Unlock()

	if !ok || (f.seen && o == f.last) {
		return f.stateLocked(), false
	}
	f.last = o
	f.seen = true

	raw := heading
	f.raw = &raw
	if o.HasAlpha {
		alpha := o.Alpha
		f.alpha = &alpha
	}
	f.lastAt = o.At
	if f.lastAt.IsZero() {
		f.lastAt = f.now()
	}

	if f.smoothed == nil {
		s := heading
		f.smoothed = &s
	} else {
		s := Normalize(*f.smoothed + ShortestDelta(*f.smoothed, heading)*f.smoothing)
		f.smoothed = &s
	}
	return f.stateLocked(), true
}

// State returns the current state.
func (f *Fusion) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stateLocked()
}

func (f *Fusion) stateLocked() State {
	return State{
		RawHeading:      copyFloat(f.raw),
		SmoothedHeading: copyFloat(f.smoothed),
		LastAlpha:       copyFloat(f.alpha),
		LastEventAt:     f.lastAt,
	}
}

// Reset clears the state; the next sample initialises it afresh.
func (f *Fusion) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raw = nil
	f.smoothed = nil
	f.alpha = nil
	f.lastAt = time.Time{}
	f.last = Orientation{}
	f.seen = false
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
