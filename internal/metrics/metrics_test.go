// ABOUTME: Tests for the Prometheus recorder driven by real components
// ABOUTME: Uses the in-memory engine and testutil to read metric values

package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/harper/forage/internal/hit"
	"github.com/harper/forage/internal/icons"
	"github.com/harper/forage/internal/mapengine"
	"github.com/harper/forage/internal/mapengine/enginetest"
	"github.com/harper/forage/internal/navigation"
	"github.com/harper/forage/internal/style"
	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecorder(t *testing.T) *Recorder {
	t.Helper()
	r, err := NewRecorder(prometheus.NewRegistry())
	require.NoError(t, err)
	return r
}

func TestNewRecorder_DoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewRecorder(reg)
	require.NoError(t, err)
	_, err = NewRecorder(reg)
	assert.Error(t, err)
}

func TestRecorder_IconLoader(t *testing.T) {
	r := newRecorder(t)
	catalog, err := icons.BuildCatalog()
	require.NoError(t, err)

	eng := enginetest.New(mapengine.CameraPose{})
	loader := icons.NewLoader(eng, icons.WithObserver(r))
	require.NoError(t, loader.Load(catalog))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.IconCatalogReady))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.IconsFailed))
	assert.Equal(t, float64(catalog.Len()),
		testutil.ToFloat64(r.IconsSettled.WithLabelValues(string(icons.OutcomeRegistered))))
}

func TestRecorder_Clicks(t *testing.T) {
	r := newRecorder(t)
	eng := enginetest.New(mapengine.CameraPose{Zoom: 12})
	eng.PlaceFeature(orb.Point{10, 10}, mapengine.RenderedFeature{
		LayerID:    style.LayerPoint,
		Properties: map[string]any{style.PropID: 5.0},
	})
	res := hit.NewResolver(eng, hit.WithObserver(r))

	_, err := res.Resolve(context.Background(), orb.Point{10, 10})
	require.NoError(t, err)
	_, err = res.Resolve(context.Background(), orb.Point{400, 400})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.Clicks.WithLabelValues("show_location")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Clicks.WithLabelValues("none")))
}

func TestRecorder_Navigation(t *testing.T) {
	r := newRecorder(t)
	r.ModeChanged(navigation.Flat, navigation.Entering)
	r.ModeChanged(navigation.Entering, navigation.Following)
	r.HeadingApplied(42)
	r.PromptChanged(navigation.PromptState{Show: true, Denied: true})
	r.SensorPermission(navigation.SensorMotion, navigation.PermissionGranted)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.NavigationMode))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.NavigationTransitions.WithLabelValues("entering", "following")))
	assert.Equal(t, 42.0, testutil.ToFloat64(r.Heading))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.HeadingUpdates))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.PermissionDenied))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.SensorPermissions.WithLabelValues("motion", "granted")))

	r.PromptChanged(navigation.PromptState{})
	assert.Equal(t, 0.0, testutil.ToFloat64(r.PromptShown))
}

func TestRecorder_API(t *testing.T) {
	r := newRecorder(t)
	r.APIRequest("locations", 200, 120*time.Millisecond, nil)
	r.APIRequest("locations", 503, time.Second, nil)
	r.APICache("locations", "miss")

	assert.Equal(t, 1.0, testutil.ToFloat64(r.APIRequests.WithLabelValues("locations", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.APIRequests.WithLabelValues("locations", "503")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.CacheLookups.WithLabelValues("locations", "miss")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.APIDuration))
}
