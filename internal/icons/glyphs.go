// ABOUTME: Vector glyph table for every species icon
// ABOUTME: Glyphs are drawn in a 64x64 box from a handful of shape templates

package icons

import (
	"strconv"

	"github.com/harper/forage/internal/species"
)

type attr struct {
	name, value string
}

type element struct {
	tag   string
	attrs []attr
}

// glyph is the artwork for one species, drawn in a 64x64 viewBox.
type glyph []element

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func circle(cx, cy, r float64, fill, stroke string, width float64) element {
	return element{tag: "circle", attrs: []attr{
		{"cx", num(cx)}, {"cy", num(cy)}, {"r", num(r)},
		{"fill", fill}, {"stroke", stroke}, {"stroke-width", num(width)},
	}}
}

func ellipse(cx, cy, rx, ry float64, fill, stroke string, width float64) element {
	return element{tag: "ellipse", attrs: []attr{
		{"cx", num(cx)}, {"cy", num(cy)}, {"rx", num(rx)}, {"ry", num(ry)},
		{"fill", fill}, {"stroke", stroke}, {"stroke-width", num(width)},
	}}
}

func path(d, fill, stroke string, width float64) element {
	return element{tag: "path", attrs: []attr{
		{"d", d}, {"fill", fill}, {"stroke", stroke}, {"stroke-width", num(width)},
	}}
}

func rect(x, y, w, h, rx float64, fill, stroke string, width float64) element {
	return element{tag: "rect", attrs: []attr{
		{"x", num(x)}, {"y", num(y)}, {"width", num(w)}, {"height", num(h)}, {"rx", num(rx)},
		{"fill", fill}, {"stroke", stroke}, {"stroke-width", num(width)},
	}}
}

const (
	leafGreen   = "#7CB342"
	leafOutline = "#558B2F"
	stemBrown   = "#6D4C41"
)

func stemAndLeaf() []element {
	return []element{
		path("M 32 20 Q 33 16 35 14", "none", stemBrown, 2),
		ellipse(39, 16, 5, 2.5, leafGreen, leafOutline, 1.5),
	}
}

func roundFruit(body, outline string) glyph {
	return append(glyph{circle(32, 35, 15, body, outline, 2)}, stemAndLeaf()...)
}

func citrus(body, outline string) glyph {
	g := glyph{
		circle(32, 35, 15, body, outline, 2),
		circle(27, 31, 1, outline, "none", 0),
		circle(36, 30, 1, outline, "none", 0),
		circle(33, 39, 1, outline, "none", 0),
	}
	return append(g, stemAndLeaf()...)
}

func stoneFruit(body, outline, blush string) glyph {
	g := glyph{
		circle(32, 35, 15, body, outline, 2),
		path("M 32 21 Q 26 35 32 49", "none", outline, 1.5),
		ellipse(38, 38, 5, 7, blush, "none", 0),
	}
	return append(g, stemAndLeaf()...)
}

func pearShape(body, outline, seed string) glyph {
	g := glyph{path("M 32 16 Q 22 22 20 34 Q 20 48 32 50 Q 44 48 44 34 Q 42 22 32 16 Z", body, outline, 2)}
	if seed != "" {
		g = append(g, circle(32, 37, 6, seed, outline, 1.5))
	}
	return g
}

func berries(dark, light, outline string) glyph {
	return glyph{
		path("M 32 18 L 32 24", "none", stemBrown, 2),
		circle(26, 30, 5, light, outline, 1.5),
		circle(38, 30, 5, light, outline, 1.5),
		circle(32, 30, 5, light, outline, 1.5),
		circle(29, 38, 5, dark, outline, 1.5),
		circle(35, 38, 5, dark, outline, 1.5),
		circle(32, 45, 5, dark, outline, 1.5),
	}
}

func leafy(left, right, vein string) glyph {
	return glyph{
		path("M 32 50 Q 22 44 20 32 Q 20 20 28 14 Q 32 20 32 30 Z", left, vein, 2),
		path("M 32 50 Q 42 44 44 32 Q 44 20 36 14 Q 32 20 32 30 Z", right, vein, 2),
		path("M 32 50 L 32 22", "none", vein, 1.5),
	}
}

func sprig(stem, leaf string) glyph {
	return glyph{
		path("M 32 52 L 32 14", "none", stem, 2),
		ellipse(26, 20, 5, 2, leaf, stem, 1),
		ellipse(38, 26, 5, 2, leaf, stem, 1),
		ellipse(26, 32, 5, 2, leaf, stem, 1),
		ellipse(38, 38, 5, 2, leaf, stem, 1),
		ellipse(26, 44, 5, 2, leaf, stem, 1),
	}
}

func flower(petal, outline, center string) glyph {
	return glyph{
		circle(32, 22, 7, petal, outline, 1.5),
		circle(42, 30, 7, petal, outline, 1.5),
		circle(38, 42, 7, petal, outline, 1.5),
		circle(26, 42, 7, petal, outline, 1.5),
		circle(22, 30, 7, petal, outline, 1.5),
		circle(32, 33, 5, center, outline, 1.5),
	}
}

func cactus(body, outline, accent string) glyph {
	return glyph{
		path("M 26 50 L 26 22 Q 32 12 38 22 L 38 50 Z", body, outline, 2),
		path("M 26 36 Q 18 36 18 28", "none", outline, 4),
		path("M 38 32 Q 46 32 46 24", "none", outline, 4),
		circle(32, 18, 3, accent, outline, 1),
	}
}

func crowned(body, outline, crown string) glyph {
	return glyph{
		circle(32, 36, 14, body, outline, 2),
		path("M 27 22 L 29 16 L 32 21 L 35 16 L 37 22 Z", crown, outline, 1.5),
	}
}

var glyphs = [...]glyph{
	species.AloeVera:           cactus("#8BC34A", "#33691E", "#FF7043"),
	species.Apple:              roundFruit("#E53935", "#B71C1C"),
	species.Avocado:            pearShape("#6B8E23", "#556B2F", "#8B4513"),
	species.Bamboo:             {rect(28, 14, 8, 14, 1, "#90EE90", "#228B22", 2), rect(28, 30, 8, 14, 1, "#7CFC00", "#228B22", 2), rect(28, 46, 8, 6, 1, "#90EE90", "#228B22", 2)},
	species.Banana:             {path("M 20 20 Q 16 34 22 46 Q 34 52 46 44 Q 32 44 28 34 Q 26 26 24 20 Z", "#FFD700", "#FFA500", 2), path("M 20 20 L 20 16", "none", stemBrown, 2)},
	species.BitterOrange:       citrus("#F57C00", "#E65100"),
	species.Blackberry:         berries("#311B92", "#4527A0", "#1A0066"),
	species.BlackWalnut:        {circle(32, 34, 13, "#8B4513", "#654321", 2), path("M 25 27 Q 32 20 39 27", "none", "#654321", 1.5), path("M 25 41 Q 32 48 39 41", "none", "#654321", 1.5)},
	species.BluePassionflower:  flower("#E6E6FA", "#4169E1", "#FFD700"),
	species.Chayote:            pearShape("#C5E1A5", "#689F38", ""),
	species.Clementine:         citrus("#FF8C00", "#FF6347"),
	species.CollardGreens:      leafy("#2E7D32", "#388E3C", "#1B5E20"),
	species.CommonFig:          pearShape("#6F4E37", "#5D4037", "#C2185B"),
	species.CommonGuava:        roundFruit("#C0CA33", "#827717"),
	species.Dragonfruit:        {ellipse(32, 34, 13, 16, "#E91E63", "#AD1457", 2), path("M 22 28 L 16 24 M 42 28 L 48 24 M 24 42 L 18 46 M 40 42 L 46 46", "none", "#8BC34A", 3)},
	species.Fig:                pearShape("#8B6F47", "#654321", "#D81B60"),
	species.Grape:              berries("#8B008B", "#9370DB", "#4B0082"),
	species.Grapefruit:         citrus("#FF8A65", "#E64A19"),
	species.Guava:              roundFruit("#F0E68C", "#BDB76B"),
	species.JapanesePersimmon:  crowned("#FF7043", "#D84315", "#558B2F"),
	species.Kale:               leafy("#33691E", "#558B2F", "#1B5E20"),
	species.Lavender:           sprig("#5E35B1", "#B39DDB"),
	species.Lemon:              {ellipse(32, 35, 16, 13, "#FFEB3B", "#FBC02D", 2), ellipse(39, 19, 5, 2.5, leafGreen, leafOutline, 1.5)},
	species.Lime:               citrus("#9CCC65", "#558B2F"),
	species.Loquat:             stoneFruit("#FFB74D", "#F57C00", "#FFA726"),
	species.Olive:              {ellipse(32, 36, 10, 14, "#556B2F", "#33401A", 2), ellipse(40, 18, 6, 2.5, "#9E9D24", "#827717", 1.5)},
	species.Orange:             citrus("#FF8C00", "#FF4500"),
	species.Papaya:             pearShape("#FFA726", "#EF6C00", "#212121"),
	species.Passionfruit:       {circle(32, 35, 15, "#6A1B9A", "#4A148C", 2), circle(27, 30, 1.5, "#CE93D8", "none", 0), circle(37, 36, 1.5, "#CE93D8", "none", 0), circle(30, 42, 1.5, "#CE93D8", "none", 0)},
	species.Peach:              stoneFruit("#FFAB91", "#FF7043", "#FF5252"),
	species.PineappleSage:      leafy("#66BB6A", "#81C784", "#2E7D32"),
	species.Pomegranate:        crowned("#C62828", "#8E0000", "#B71C1C"),
	species.PricklyPear:        {ellipse(32, 38, 12, 14, "#7CB342", "#33691E", 2), ellipse(32, 18, 5, 6, "#D81B60", "#880E4F", 1.5)},
	species.Rose:               flower("#F06292", "#C2185B", "#FFEB3B"),
	species.Rosemary:           sprig("#4E342E", "#558B2F"),
	species.Sage:               leafy("#9CAF88", "#A5B89A", "#5F7350"),
	species.Sapote:             roundFruit("#795548", "#4E342E"),
	species.Shiso:              leafy("#7B1FA2", "#8E24AA", "#4A148C"),
	species.Squash:             {path("M 28 14 L 30 22 Q 20 30 20 40 Q 22 52 32 52 Q 42 52 44 40 Q 44 30 34 22 L 36 14 Z", "#FFB300", "#E65100", 2)},
	species.StrawberryHedgehog: cactus("#689F38", "#33691E", "#E91E63"),
	species.SweetLime:          citrus("#DCE775", "#9E9D24"),
	species.Thyme:              sprig("#5D4037", "#7CB342"),
	species.Tomato:             crowned("#E53935", "#B71C1C", "#43A047"),
	species.YellowPassionfruit: {circle(32, 35, 15, "#FDD835", "#F9A825", 2), circle(27, 30, 1.5, "#FFF59D", "none", 0), circle(37, 36, 1.5, "#FFF59D", "none", 0), circle(30, 42, 1.5, "#FFF59D", "none", 0)},
}

// A species added without a glyph fails to compile here.
var _ = [1]struct{}{}[len(glyphs)-int(species.NumIcons)]
