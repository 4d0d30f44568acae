// ABOUTME: SVG rendering for species markers, cluster rings and base markers
// ABOUTME: All images are rendered at PixelRatio for high-density displays

package icons

import (
	"fmt"
	"math"
	"strings"

	"github.com/harper/forage/internal/species"
)

// Palette.
const (
	colorSurface800   = "#262626"
	colorSurface700   = "#404040"
	colorSurface900   = "#171717"
	colorBorder       = "#6b7280"
	colorInSeason     = "#22c55e"
	colorClusterArc   = "#149c464b"
	colorUnverified   = "#f97316"
	colorVerified     = "#22c55e"
	defaultBorderSize = 3
	inSeasonBorder    = 5
)

func writeElement(b *strings.Builder, el element) {
	b.WriteString("<")
	b.WriteString(el.tag)
	for _, a := range el.attrs {
		fmt.Fprintf(b, ` %s="%s"`, a.name, a.value)
	}
	b.WriteString("/>")
}

// badge wraps inner artwork (drawn in a 64x64 box) in a dark disc with a
// coloured border, rendered at actual pixel size.
func badge(inner func(*strings.Builder), border string, borderWidth float64) []byte {
	size := IconLogicalSize * PixelRatio
	center := float64(size) / 2
	r := center - borderWidth/2

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, size, size, size, size)
	writeElement(&b, circle(center, center, r, colorSurface800, border, borderWidth))

	// Artwork is inset so it clears the border.
	inset := borderWidth + 4
	scale := (float64(size) - 2*inset) / 64
	fmt.Fprintf(&b, `<g transform="translate(%s %s) scale(%s)">`, num(inset), num(inset), num(scale))
	inner(&b)
	b.WriteString("</g></svg>")
	return []byte(b.String())
}

func borderFor(inSeason bool) (string, float64) {
	if inSeason {
		return colorInSeason, inSeasonBorder
	}
	return colorBorder, defaultBorderSize
}

// SpeciesSVG renders a species glyph with its default or in-season border.
func SpeciesSVG(icon species.Icon, inSeason bool) ([]byte, error) {
	if !icon.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownIcon, int(icon))
	}
	border, width := borderFor(inSeason)
	g := glyphs[icon]
	return badge(func(b *strings.Builder) {
		for _, el := range g {
			writeElement(b, el)
		}
	}, border, width), nil
}

// ClusterSVG renders a progress ring whose green arc covers percent of the
// circumference, starting at 12 o'clock.
func ClusterSVG(logicalSize, percent int) []byte {
	actual := float64(logicalSize * PixelRatio)
	stroke := float64(4 * PixelRatio)
	radius := (actual - stroke) / 2
	center := actual / 2
	circumference := 2 * math.Pi * radius
	arc := float64(percent) / 100 * circumference
	gap := circumference - arc

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		num(actual), num(actual), num(actual), num(actual))
	writeElement(&b, circle(center, center, radius, colorSurface800, colorSurface700, float64(2*PixelRatio)))
	fmt.Fprintf(&b, `<circle cx="%s" cy="%s" r="%s" fill="none" stroke="%s" stroke-width="%s" stroke-dasharray="%s %s" stroke-linecap="round" transform="rotate(-90 %s %s)"/>`,
		num(center), num(center), num(radius), colorClusterArc, num(stroke),
		num(arc), num(gap), num(center), num(center))
	b.WriteString("</svg>")
	return []byte(b.String())
}

// markerSVG wraps 24x24 artwork in a 32x32 logical image.
func markerSVG(fill, stroke string, strokeWidth float64, body string) []byte {
	size := IconLogicalSize * PixelRatio
	return []byte(fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 24 24" fill="%s" stroke="%s" stroke-width="%s" stroke-linecap="round" stroke-linejoin="round">%s</svg>`,
		size, size, fill, stroke, num(strokeWidth), body))
}

const leafBody = `<path d="M11 20A7 7 0 0 1 9.8 6.1C15.5 5 17 4.48 19 2c1 2 2 4.18 2 8 0 5.5-4.78 10-10 10Z"/>` +
	`<path d="M2 21c0-3 1.85-5.36 5.08-6C9.5 14.52 12 13 13 12" fill="none"/>`

const heartPath = "M 32 46 C 18 36 18 24 26 22 C 29 21 31 23 32 25 C 33 23 35 21 38 22 C 46 24 46 36 32 46 Z"

// baseMarkers renders the category markers and the default heart markers.
func baseMarkers() map[string][]byte {
	heart := func(b *strings.Builder) {
		writeElement(b, path(heartPath, "#22c55e", "#15803d", 2))
	}
	defBorder, defWidth := borderFor(false)
	seasonBorder, seasonWidth := borderFor(true)

	return map[string][]byte{
		MarkerLeaf: markerSVG(colorVerified, colorSurface900, 1.5, leafBody),
		MarkerFlower: markerSVG("#f59e0b", colorSurface900, 1.5,
			`<circle cx="12" cy="12" r="3"/>`+
				`<path d="M12 2a3 3 0 0 0 0 6 3 3 0 0 0 0-6Z"/>`+
				`<path d="M19 9a3 3 0 0 0-5.2 3A3 3 0 0 0 19 9Z"/>`+
				`<path d="M19 15a3 3 0 0 0-5.2-3 3 3 0 0 0 5.2 3Z"/>`+
				`<path d="M12 22a3 3 0 0 0 0-6 3 3 0 0 0 0 6Z"/>`+
				`<path d="M5 15a3 3 0 0 0 5.2-3A3 3 0 0 0 5 15Z"/>`+
				`<path d="M5 9a3 3 0 0 0 5.2 3A3 3 0 0 0 5 9Z"/>`),
		MarkerScissors: markerSVG("none", "#a855f7", 2,
			`<circle cx="6" cy="6" r="3"/><path d="M8.12 8.12 12 12"/><path d="M20 4 8.12 15.88"/>`+
				`<circle cx="6" cy="18" r="3"/><path d="M14.8 14.8 20 20"/>`),
		MarkerBag: markerSVG("#3b82f6", colorSurface900, 1.5,
			`<path d="M6 2 3 6v14a2 2 0 0 0 2 2h14a2 2 0 0 0 2-2V6l-3-4Z"/>`+
				`<path d="M3 6h18" fill="none"/><path d="M16 10a4 4 0 0 1-8 0" fill="none"/>`),
		MarkerUnverified:      markerSVG(colorUnverified, colorSurface900, 1.5, leafBody),
		MarkerGeneric:         markerSVG(colorVerified, colorSurface900, 1.5, `<circle cx="12" cy="12" r="8"/>`),
		MarkerDefault:         badge(heart, defBorder, defWidth),
		MarkerDefaultInSeason: badge(heart, seasonBorder, seasonWidth),
	}
}
