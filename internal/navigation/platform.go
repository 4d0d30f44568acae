// ABOUTME: Platform contracts for geolocation and device sensors
// ABOUTME: Hosts adapt their position and orientation APIs to these interfaces

package navigation

import (
	"fmt"
	"time"

	"github.com/harper/forage/internal/compass"
	"github.com/paulmach/orb"
)

// PermissionState is the answer to a permission request or query.
type PermissionState string

// Permission states. NotRequired is used when a platform has no permission
// gate for a sensor; Unknown when the query API is missing or failed.
const (
	PermissionGranted     PermissionState = "granted"
	PermissionDenied      PermissionState = "denied"
	PermissionPrompt      PermissionState = "prompt"
	PermissionNotRequired PermissionState = "not_required"
	PermissionUnknown     PermissionState = "unknown"
)

// Allows reports whether the sensor may be used.
func (p PermissionState) Allows() bool {
	return p == PermissionGranted || p == PermissionNotRequired
}

// PositionOptions mirrors the platform's position request options.
type PositionOptions struct {
	EnableHighAccuracy bool
	Timeout            time.Duration
	MaximumAge         time.Duration
}

// Position is one geolocation fix.
type Position struct {
	Point    orb.Point // [lng, lat]
	Accuracy float64   // metres
	At       time.Time
}

// PositionErrorCode classifies a geolocation failure.
type PositionErrorCode int

// Geolocation failure codes, numbered as the platform numbers them.
const (
	PositionUnknownError     PositionErrorCode = 0
	PositionPermissionDenied PositionErrorCode = 1
	PositionUnavailable      PositionErrorCode = 2
	PositionTimeout          PositionErrorCode = 3
)

func (c PositionErrorCode) String() string {
	switch c {
	case PositionPermissionDenied:
		return "permission denied"
	case PositionUnavailable:
		return "position unavailable"
	case PositionTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// PositionError is a failed fix or watch update.
type PositionError struct {
	Code    PositionErrorCode
	Message string
}

func (e *PositionError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("geolocation: %s", e.Code)
	}
	return fmt.Sprintf("geolocation: %s: %s", e.Code, e.Message)
}

// WatchID identifies a running position watch.
type WatchID int

// Geolocation is the platform position API. Callbacks may arrive on any
// goroutine; each request calls exactly one of its callbacks, a watch calls
// them repeatedly until cleared.
type Geolocation interface {
	Available() bool
	CurrentPosition(opts PositionOptions, onSuccess func(Position), onError func(*PositionError))
	WatchPosition(opts PositionOptions, onSuccess func(Position), onError func(*PositionError)) WatchID
	ClearWatch(id WatchID)
}

// PermissionQuerier is implemented by Geolocation values whose platform can
// report the geolocation permission without prompting.
type PermissionQuerier interface {
	QueryGeolocation(done func(PermissionState))
}

// MotionSample is one device-motion event.
type MotionSample struct {
	AccelX, AccelY, AccelZ float64 // including gravity, m/s²
	HasAcceleration        bool
	At                     time.Time
}

// Sensors is the platform's device orientation and motion API.
//
// The Request methods must be invoked from inside the user gesture that
// triggered them; they return false when the platform has no permission
// gate, in which case done is never called. When they return true, done is
// called exactly once, possibly before the method returns.
type Sensors interface {
	OrientationSupported() bool
	ProvidesCompassHeading() bool
	RequestMotionPermission(done func(PermissionState)) (required bool)
	RequestOrientationPermission(done func(PermissionState)) (required bool)
	AddOrientationListener(fn func(compass.Orientation)) (remove func())
	AddMotionListener(fn func(MotionSample)) (remove func())
}
