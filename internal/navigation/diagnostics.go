// ABOUTME: Point-in-time snapshot of the navigation controller for debugging
// ABOUTME: Reports mode, permissions, compass state and last motion sample

package navigation

import (
	"github.com/harper/forage/internal/compass"
	"github.com/paulmach/orb"
)

// Diagnostics is a snapshot of the controller's sensor and mode state.
type Diagnostics struct {
	Session               string          `json:"session,omitempty"`
	Mode                  string          `json:"mode"`
	ListenerActive        bool            `json:"listener_active"`
	MotionPermission      PermissionState `json:"motion_permission"`
	OrientationPermission PermissionState `json:"orientation_permission"`
	HeadingSource         string          `json:"heading_source"`
	Compass               compass.State   `json:"compass"`
	LastMotion            *MotionSample   `json:"last_motion,omitempty"`
	UserLocation          *orb.Point      `json:"user_location,omitempty"`
	Prompt                PromptState     `json:"prompt"`
}

// Diagnostics returns a snapshot of the controller.
func (c *Controller) Diagnostics() Diagnostics {
	c.mu.Lock()
	d := Diagnostics{
		Session:               c.lastSessionID,
		Mode:                  c.mode.String(),
		MotionPermission:      c.motionPerm,
		OrientationPermission: c.orientPerm,
		HeadingSource:         c.fusion.Source().Name(),
		Prompt:                c.prompt,
	}
	if c.session != nil {
		d.ListenerActive = c.session.removeOrientation != nil
	}
	if c.lastMotion != nil {
		m := *c.lastMotion
		d.LastMotion = &m
	}
	if c.userLocation != nil {
		p := *c.userLocation
		d.UserLocation = &p
	}
	c.mu.Unlock()

	d.Compass = c.fusion.State()
	return d
}
