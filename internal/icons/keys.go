// ABOUTME: Image keys shared by the icon catalog and the layer style expressions
// ABOUTME: Species variants, cluster progress rings and base markers

package icons

import (
	"fmt"
	"math"

	"github.com/harper/forage/internal/species"
)

// Key prefixes used by the style expressions.
const (
	SpeciesKeyPrefix         = "fruit-"
	SpeciesInSeasonKeyPrefix = "fruit-inseason-"
	ClusterKeyPrefix         = "cluster-"
)

// Base marker keys.
const (
	MarkerLeaf            = "marker-leaf"
	MarkerFlower          = "marker-flower"
	MarkerScissors        = "marker-scissors"
	MarkerBag             = "marker-bag"
	MarkerUnverified      = "marker-unverified"
	MarkerGeneric         = "marker-generic"
	MarkerDefault         = "marker-default"
	MarkerDefaultInSeason = "marker-default-inseason"
)

// Rendering constants. Images are drawn at PixelRatio times their logical size.
const (
	PixelRatio         = 2
	IconLogicalSize    = 32
	ClusterPercentStep = 5
)

// ClusterSizes are the logical diameters of cluster rings, small to large.
var ClusterSizes = [...]int{40, 60, 80}

// Cluster size thresholds: clusters with at least ClusterMediumMin points
// use the 60px ring, at least ClusterLargeMin the 80px ring.
const (
	ClusterMediumMin = 50
	ClusterLargeMin  = 200
)

// SpeciesKey returns the image key for a species glyph.
func SpeciesKey(icon species.Icon, inSeason bool) string {
	if inSeason {
		return SpeciesInSeasonKeyPrefix + icon.String()
	}
	return SpeciesKeyPrefix + icon.String()
}

// ClusterKey returns the image key for a cluster ring.
func ClusterKey(logicalSize, percent int) string {
	return fmt.Sprintf("%s%d-%d", ClusterKeyPrefix, logicalSize, percent)
}

// ClusterSizeFor picks the ring size for a cluster of pointCount points.
func ClusterSizeFor(pointCount int) int {
	switch {
	case pointCount >= ClusterLargeMin:
		return ClusterSizes[2]
	case pointCount >= ClusterMediumMin:
		return ClusterSizes[1]
	default:
		return ClusterSizes[0]
	}
}

// ClusterPercent rounds the in-season share of a cluster to the nearest
// ClusterPercentStep. Empty clusters report 0.
func ClusterPercent(inSeason, pointCount int) int {
	if pointCount <= 0 {
		return 0
	}
	pct := 100 * (float64(inSeason) / float64(pointCount))
	return ClusterPercentStep * int(math.Round(pct/ClusterPercentStep))
}

// ClusterKeyFor returns the ring key a cluster with these counts renders with.
func ClusterKeyFor(inSeason, pointCount int) string {
	return ClusterKey(ClusterSizeFor(pointCount), ClusterPercent(inSeason, pointCount))
}

// ClusterPercents lists every percentage bucket, 0 through 100.
func ClusterPercents() []int {
	out := make([]int, 0, 100/ClusterPercentStep+1)
	for p := 0; p <= 100; p += ClusterPercentStep {
		out = append(out, p)
	}
	return out
}
