// ABOUTME: Tests for the icon catalog, cluster keys and the registration loader
// ABOUTME: Uses the in-memory engine double as the image registry

package icons

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/harper/forage/internal/mapengine"
	"github.com/harper/forage/internal/mapengine/enginetest"
	"github.com/harper/forage/internal/species"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCatalog_Counts(t *testing.T) {
	c, err := BuildCatalog()
	require.NoError(t, err)

	assert.Equal(t, int(species.NumIcons)*2, c.Count(KindSpecies))
	assert.Equal(t, 63, c.Count(KindCluster))
	assert.Equal(t, 8, c.Count(KindMarker))
	assert.Equal(t, int(species.NumIcons)*2+63+8, c.Len())
	assert.Len(t, c.Keys(), c.Len(), "keys must be unique")
}

func TestCatalog_Markers(t *testing.T) {
	c, err := BuildCatalog()
	require.NoError(t, err)

	markers := c.Markers()
	require.Len(t, markers, 8)
	keys := make([]string, len(markers))
	for i, m := range markers {
		keys[i] = m.Key
	}
	assert.Contains(t, keys, MarkerDefaultInSeason)
	assert.Contains(t, keys, MarkerUnverified)
}

func TestSpeciesSVG_UnknownIcon(t *testing.T) {
	_, err := SpeciesSVG(species.NumIcons, false)
	assert.True(t, errors.Is(err, ErrUnknownIcon))
}

func TestBuildCatalog_EveryEntryDecodes(t *testing.T) {
	c, err := BuildCatalog()
	require.NoError(t, err)

	for _, e := range c.Entries() {
		img, err := decodeSVG(e.SVG)
		require.NoError(t, err, e.Key)
		assert.Equal(t, e.Width, img.Width, e.Key)
		assert.Equal(t, e.Height, img.Height, e.Key)
	}
}

func TestBuildCatalog_SpeciesVariants(t *testing.T) {
	c, err := BuildCatalog()
	require.NoError(t, err)

	plain, ok := c.Lookup("fruit-orange")
	require.True(t, ok)
	inSeason, ok := c.Lookup("fruit-inseason-orange")
	require.True(t, ok)

	assert.Contains(t, string(plain.SVG), `stroke="#6b7280" stroke-width="3"`)
	assert.Contains(t, string(inSeason.SVG), `stroke="#22c55e" stroke-width="5"`)
	assert.Equal(t, IconLogicalSize, plain.LogicalSize())
}

func TestClusterSVG_ArcLength(t *testing.T) {
	svg := string(ClusterSVG(40, 0))
	assert.Contains(t, svg, `width="80"`)
	assert.Contains(t, svg, `stroke-dasharray="0 `)
	assert.Contains(t, svg, `rotate(-90 40 40)`)

	full := string(ClusterSVG(40, 100))
	assert.True(t, strings.HasSuffix(strings.Split(strings.Split(full, `stroke-dasharray="`)[1], `"`)[0], " 0"))
}

func TestClusterKeyFor(t *testing.T) {
	tests := []struct {
		inSeason, count int
		want            string
	}{
		{2, 5, "cluster-40-40"},
		{0, 5, "cluster-40-0"},
		{5, 5, "cluster-40-100"},
		{1, 3, "cluster-40-35"},
		{25, 50, "cluster-60-50"},
		{1, 199, "cluster-60-0"},
		{200, 200, "cluster-80-100"},
		{0, 0, "cluster-40-0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClusterKeyFor(tt.inSeason, tt.count), "%d/%d", tt.inSeason, tt.count)
	}
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes map[Outcome]int
	ready    int
}

func (r *recordingObserver) IconSettled(_ string, o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.outcomes == nil {
		r.outcomes = make(map[Outcome]int)
	}
	r.outcomes[o]++
}

func (r *recordingObserver) IconsReady(int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ready++
}

func TestLoader_RegistersEverything(t *testing.T) {
	c, err := BuildCatalog()
	require.NoError(t, err)
	eng := enginetest.New(mapengine.CameraPose{})
	obs := &recordingObserver{}

	l := NewLoader(eng, WithObserver(obs))
	readyCalls := 0
	l.OnReady(func() { readyCalls++ })

	require.NoError(t, l.Load(c))
	assert.True(t, l.Ready())
	assert.Equal(t, 1, readyCalls)
	assert.Equal(t, 1, obs.ready)
	assert.Equal(t, c.Len(), eng.Images())

	ratio, ok := eng.PixelRatio(ClusterKey(80, 55))
	require.True(t, ok)
	assert.Equal(t, float64(PixelRatio), ratio)

	assert.ErrorIs(t, l.Load(c), ErrAlreadyLoading)
}

func TestLoader_SkipsPresentImages(t *testing.T) {
	c, err := BuildCatalog()
	require.NoError(t, err)
	eng := enginetest.New(mapengine.CameraPose{})
	require.NoError(t, eng.AddImage(MarkerDefault, mapengine.Image{Width: 1, Height: 1}, 1))
	obs := &recordingObserver{}

	l := NewLoader(eng, WithObserver(obs))
	require.NoError(t, l.Load(c))
	assert.True(t, l.Ready())
	assert.Equal(t, 1, obs.outcomes[OutcomeSkipped])
	assert.Equal(t, c.Len()-1, obs.outcomes[OutcomeRegistered])
	assert.Equal(t, 1, l.Skipped())
	assert.Equal(t, c.Len()-1, l.Registered())
	assert.Equal(t, 0, l.Failed())
}

// pendingDecoder holds decode callbacks until the test releases them.
type pendingDecoder struct {
	mu      sync.Mutex
	pending []func()
	failKey string
}

func (d *pendingDecoder) Decode(e Entry, done func(mapengine.Image, error)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = append(d.pending, func() {
		if e.Key == d.failKey {
			done(mapengine.Image{}, errors.New("corrupt image"))
			return
		}
		done(mapengine.Image{Width: e.Width, Height: e.Height, Data: e.SVG}, nil)
	})
}

func (d *pendingDecoder) release(n int) {
	d.mu.Lock()
	batch := d.pending[:n]
	d.pending = d.pending[n:]
	d.mu.Unlock()
	for _, fn := range batch {
		fn()
	}
}

func TestLoader_FailuresStillReachReady(t *testing.T) {
	c, err := BuildCatalog()
	require.NoError(t, err)
	eng := enginetest.New(mapengine.CameraPose{})
	dec := &pendingDecoder{failKey: SpeciesKey(species.Peach, true)}

	l := NewLoader(eng, WithDecoder(dec))
	require.NoError(t, l.Load(c))
	assert.False(t, l.Ready())

	dec.release(c.Len() - 1)
	assert.False(t, l.Ready(), "one entry still outstanding")

	dec.release(1)
	assert.True(t, l.Ready())
	assert.Equal(t, 1, l.Failed())
	assert.Equal(t, c.Len()-1, l.Registered())
	assert.False(t, eng.HasImage(SpeciesKey(species.Peach, true)))
}

func TestLoader_ConcurrentCallbacks(t *testing.T) {
	c, err := BuildCatalog()
	require.NoError(t, err)
	eng := enginetest.New(mapengine.CameraPose{})
	dec := &pendingDecoder{}

	l := NewLoader(eng, WithDecoder(dec))
	require.NoError(t, l.Load(c))

	var wg sync.WaitGroup
	for _, fn := range dec.pending {
		wg.Add(1)
		go func(fn func()) {
			defer wg.Done()
			fn()
		}(fn)
	}
	wg.Wait()

	settled, total := l.Progress()
	assert.Equal(t, total, settled)
	assert.True(t, l.Ready())
}

func TestLoader_AddImageFailureCounts(t *testing.T) {
	c, err := BuildCatalog()
	require.NoError(t, err)
	eng := enginetest.New(mapengine.CameraPose{})
	eng.AddImageErr = func(key string) error {
		if IsClusterKey(key) {
			return errors.New("atlas full")
		}
		return nil
	}

	l := NewLoader(eng)
	require.NoError(t, l.Load(c))
	assert.True(t, l.Ready())
	assert.Equal(t, 63, l.Failed())
}

func TestDecodeSVG_Rejects(t *testing.T) {
	_, err := decodeSVG([]byte("<svg width=\"10\""))
	assert.Error(t, err)
	_, err = decodeSVG([]byte(`<png width="10" height="10"/>`))
	assert.Error(t, err)
	_, err = decodeSVG([]byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`))
	assert.Error(t, err)
}
