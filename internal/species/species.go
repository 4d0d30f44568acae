// ABOUTME: Species icon enum and the type id to icon lookup table
// ABOUTME: Single source of truth shared by season lookup and marker icons

package species

import (
	"fmt"
	"slices"
)

// Icon identifies a species glyph. The zero value is a valid icon; use
// IconForTypes' ok result to detect "no icon".
type Icon int

// Icon values. Keep this list, iconNames and the glyph table in the icons
// package the same length; mismatches fail to compile.
const (
	AloeVera Icon = iota
	Apple
	Avocado
	Bamboo
	Banana
	BitterOrange
	Blackberry
	BlackWalnut
	BluePassionflower
	Chayote
	Clementine
	CollardGreens
	CommonFig
	CommonGuava
	Dragonfruit
	Fig
	Grape
	Grapefruit
	Guava
	JapanesePersimmon
	Kale
	Lavender
	Lemon
	Lime
	Loquat
	Olive
	Orange
	Papaya
	Passionfruit
	Peach
	PineappleSage
	Pomegranate
	PricklyPear
	Rose
	Rosemary
	Sage
	Sapote
	Shiso
	Squash
	StrawberryHedgehog
	SweetLime
	Thyme
	Tomato
	YellowPassionfruit

	// NumIcons is the number of species icons.
	NumIcons
)

var iconNames = [...]string{
	AloeVera:           "aloeVera",
	Apple:              "apple",
	Avocado:            "avocado",
	Bamboo:             "bamboo",
	Banana:             "banana",
	BitterOrange:       "bitterOrange",
	Blackberry:         "blackberry",
	BlackWalnut:        "blackWalnut",
	BluePassionflower:  "bluePassionflower",
	Chayote:            "chayote",
	Clementine:         "clementine",
	CollardGreens:      "collardGreens",
	CommonFig:          "commonFig",
	CommonGuava:        "commonGuava",
	Dragonfruit:        "dragonfruit",
	Fig:                "fig",
	Grape:              "grape",
	Grapefruit:         "grapefruit",
	Guava:              "guava",
	JapanesePersimmon:  "japanesePersimmon",
	Kale:               "kale",
	Lavender:           "lavender",
	Lemon:              "lemon",
	Lime:               "lime",
	Loquat:             "loquat",
	Olive:              "olive",
	Orange:             "orange",
	Papaya:             "papaya",
	Passionfruit:       "passionfruit",
	Peach:              "peach",
	PineappleSage:      "pineappleSage",
	Pomegranate:        "pomegranate",
	PricklyPear:        "pricklyPear",
	Rose:               "rose",
	Rosemary:           "rosemary",
	Sage:               "sage",
	Sapote:             "sapote",
	Shiso:              "shiso",
	Squash:             "squash",
	StrawberryHedgehog: "strawberryHedgehog",
	SweetLime:          "sweetLime",
	Thyme:              "thyme",
	Tomato:             "tomato",
	YellowPassionfruit: "yellowPassionfruit",
}

// Compile-time length check: iconNames must cover every Icon.
var _ = [1]struct{}{}[len(iconNames)-int(NumIcons)]

var iconsByName = func() map[string]Icon {
	m := make(map[string]Icon, len(iconNames))
	for i, name := range iconNames {
		m[name] = Icon(i)
	}
	return m
}()

// String returns the icon's stable name, e.g. "commonFig".
func (i Icon) String() string {
	if !i.Valid() {
		return fmt.Sprintf("Icon(%d)", int(i))
	}
	return iconNames[i]
}

// Valid reports whether i is one of the declared icons.
func (i Icon) Valid() bool {
	return i >= 0 && i < NumIcons
}

// MarshalText encodes the icon by name.
func (i Icon) MarshalText() ([]byte, error) {
	if !i.Valid() {
		return nil, fmt.Errorf("invalid icon %d", int(i))
	}
	return []byte(iconNames[i]), nil
}

// UnmarshalText decodes an icon name.
func (i *Icon) UnmarshalText(text []byte) error {
	icon, ok := ParseIcon(string(text))
	if !ok {
		return fmt.Errorf("unknown icon %q", string(text))
	}
	*i = icon
	return nil
}

// ParseIcon looks up an icon by its stable name.
func ParseIcon(name string) (Icon, bool) {
	icon, ok := iconsByName[name]
	return icon, ok
}

// AllIcons returns every icon in declaration order.
func AllIcons() []Icon {
	all := make([]Icon, NumIcons)
	for i := range all {
		all[i] = Icon(i)
	}
	return all
}

// IconForType returns the icon mapped to a single type id.
func IconForType(typeID int) (Icon, bool) {
	icon, ok := typeIcons[typeID]
	return icon, ok
}

// IconForTypes returns the icon for the first type id that has a mapping.
// The record's own type order decides ties.
func IconForTypes(typeIDs []int) (Icon, bool) {
	for _, id := range typeIDs {
		if icon, ok := typeIcons[id]; ok {
			return icon, true
		}
	}
	return 0, false
}

// TypeIDs returns every type id mapped to icon, in ascending order.
func TypeIDs(icon Icon) []int {
	var ids []int
	for id, ic := range typeIcons {
		if ic == icon {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// typeIcons maps Falling Fruit type ids to icons. Several ids share an icon.
var typeIcons = map[int]Icon{
	709: AloeVera, 772: AloeVera,

	14: Apple, 114: Apple, 270: Apple, 331: Apple, 351: Apple, 402: Apple,
	403: Apple, 416: Apple, 1566: Apple, 1874: Apple, 2006: Apple,
	2156: Apple, 2194: Apple, 3177: Apple,

	7: Avocado, 3363: Avocado, 4631: Avocado, 4632: Avocado, 4641: Avocado,
	4642: Avocado, 4651: Avocado, 5717: Avocado,

	161: Bamboo, 997: Bamboo,

	75: Banana, 160: Banana, 1982: Banana, 2985: Banana, 5719: Banana,
	7655: Banana, 7871: Banana, 8361: Banana,

	81: BitterOrange,

	48: Blackberry, 1741: Blackberry, 1886: Blackberry, 1986: Blackberry,
	2711: Blackberry,

	111: BlackWalnut, 3724: BlackWalnut,

	2785: BluePassionflower,

	518: Chayote,

	1584: Clementine,

	3190: CollardGreens,

	20: CommonFig, 3153: CommonFig, 3793: CommonFig, 4390: CommonFig,
	4535: CommonFig, 4557: CommonFig, 4634: CommonFig, 4640: CommonFig,
	4646: CommonFig, 4648: CommonFig, 6151: CommonFig, 8470: CommonFig,
	9283: CommonFig, 9669: CommonFig, 9879: CommonFig, 9982: CommonFig,
	8945: CommonFig,

	458: CommonGuava, 8682: CommonGuava,

	1496: Dragonfruit,

	445: Fig,

	16: Grape, 629: Grape, 753: Grape, 7515: Grape, 7677: Grape, 8548: Grape,
	8549: Grape, 8668: Grape, 8669: Grape, 8934: Grape, 8935: Grape,

	5: Grapefruit, 6176: Grapefruit,

	76: Guava,

	12: JapanesePersimmon, 246: JapanesePersimmon, 280: JapanesePersimmon,
	462: JapanesePersimmon, 941: JapanesePersimmon, 2120: JapanesePersimmon,

	50: Kale,

	17: Lavender, 918: Lavender, 1623: Lavender,

	4: Lemon, 459: Lemon, 5097: Lemon,

	26: Lime,

	18: Loquat, 4638: Loquat, 4639: Loquat, 4649: Loquat, 4650: Loquat,
	4654: Loquat,

	59: Olive, 5070: Olive, 6179: Olive, 7874: Olive, 7888: Olive, 10610: Olive,

	3: Orange, 5071: Orange, 5725: Orange, 5733: Orange, 6177: Orange,
	7594: Orange,

	222: Papaya,

	78: Passionfruit, 1553: Passionfruit, 8877: Passionfruit,

	52: Peach, 4519: Peach, 4526: Peach, 4643: Peach, 4644: Peach, 4647: Peach,
	4652: Peach, 4765: Peach, 8675: Peach, 10008: Peach, 10015: Peach,

	5570: PineappleSage,

	13: Pomegranate, 4132: Pomegranate, 4384: Pomegranate, 4629: Pomegranate,
	4635: Pomegranate, 7930: Pomegranate, 9952: Pomegranate,

	56: PricklyPear, 1956: PricklyPear,

	82: Rose,

	10: Rosemary,

	9: Sage,

	95: Sapote, 708: Sapote, 775: Sapote, 2773: Sapote,

	5568: Shiso,

	65: Squash,

	1333: StrawberryHedgehog,

	771: SweetLime,

	192: Thyme,

	61: Tomato,

	2782: YellowPassionfruit,
}
