// ABOUTME: Icon catalog builder producing every image the map layers reference
// ABOUTME: Base markers, two variants per species, and cluster rings per size and percentage

package icons

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/harper/forage/internal/species"
)

// ErrUnknownIcon is returned for icon values outside the species enum.
var ErrUnknownIcon = errors.New("unknown species icon")

// Kind groups catalog entries.
type Kind string

// Entry kinds.
const (
	KindMarker  Kind = "marker"
	KindSpecies Kind = "species"
	KindCluster Kind = "cluster"
)

// Entry is one image to register with the map engine.
type Entry struct {
	Key        string `json:"key"`
	Kind       Kind   `json:"kind"`
	SVG        []byte `json:"-"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	PixelRatio int    `json:"pixel_ratio"`
}

// LogicalSize is the on-screen size of the image in CSS pixels.
func (e Entry) LogicalSize() int {
	return e.Width / e.PixelRatio
}

// Catalog is an ordered, de-duplicated set of image entries.
type Catalog struct {
	entries []Entry
	index   map[string]int
}

// Entries returns the entries in registration order.
func (c *Catalog) Entries() []Entry {
	return c.entries
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Lookup returns the entry for key.
func (c *Catalog) Lookup(key string) (Entry, bool) {
	i, ok := c.index[key]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Keys returns every key, sorted.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		keys = append(keys, e.Key)
	}
	sort.Strings(keys)
	return keys
}

// Count returns how many entries are of kind k.
func (c *Catalog) Count(k Kind) int {
	n := 0
	for _, e := range c.entries {
		if e.Kind == k {
			n++
		}
	}
	return n
}

// Markers returns the base marker entries.
func (c *Catalog) Markers() []Entry {
	var out []Entry
	for _, e := range c.entries {
		if e.Kind == KindMarker {
			out = append(out, e)
		}
	}
	return out
}

func (c *Catalog) add(e Entry) error {
	if _, dup := c.index[e.Key]; dup {
		return fmt.Errorf("duplicate icon key %q", e.Key)
	}
	c.index[e.Key] = len(c.entries)
	c.entries = append(c.entries, e)
	return nil
}

// BuildCatalog renders the full icon set: base markers first, then the
// default and in-season variant of every species, then cluster rings for
// every size and percentage bucket.
func BuildCatalog() (*Catalog, error) {
	c := &Catalog{index: make(map[string]int)}
	iconPx := IconLogicalSize * PixelRatio

	markers := baseMarkers()
	markerKeys := make([]string, 0, len(markers))
	for k := range markers {
		markerKeys = append(markerKeys, k)
	}
	sort.Strings(markerKeys)
	for _, k := range markerKeys {
		if err := c.add(Entry{Key: k, Kind: KindMarker, SVG: markers[k], Width: iconPx, Height: iconPx, PixelRatio: PixelRatio}); err != nil {
			return nil, err
		}
	}

	for _, icon := range species.AllIcons() {
		for _, inSeason := range []bool{false, true} {
			svg, err := SpeciesSVG(icon, inSeason)
			if err != nil {
				return nil, err
			}
			e := Entry{Key: SpeciesKey(icon, inSeason), Kind: KindSpecies, SVG: svg, Width: iconPx, Height: iconPx, PixelRatio: PixelRatio}
			if err := c.add(e); err != nil {
				return nil, err
			}
		}
	}

	for _, size := range ClusterSizes {
		px := size * PixelRatio
		for _, pct := range ClusterPercents() {
			e := Entry{Key: ClusterKey(size, pct), Kind: KindCluster, SVG: ClusterSVG(size, pct), Width: px, Height: px, PixelRatio: PixelRatio}
			if err := c.add(e); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// IsClusterKey reports whether key names a cluster ring.
func IsClusterKey(key string) bool {
	return strings.HasPrefix(key, ClusterKeyPrefix)
}
