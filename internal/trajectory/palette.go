package trajectory

import (
	"math/rand"
	"sort"
	"strings"
)

// FallbackColor is used for entities whose category is absent or was
// never seen during color assignment.
const FallbackColor = "#808080"

// DefaultPalette holds the marker colors handed out per category. The
// first slot is reserved for the pinned home category.
var DefaultPalette = []string{
	"#d62728",
	"#1f77b4",
	"#2ca02c",
	"#ff7f0e",
	"#9467bd",
	"#8c564b",
	"#e377c2",
	"#17becf",
	"#bcbd22",
	"#7f7f7f",
	"#aec7e8",
	"#98df8a",
}

// normalizeCategory folds an origin code into its canonical category.
// Empty and textual null markers count as absent.
func normalizeCategory(origin string) string {
	c := strings.ToLower(strings.TrimSpace(origin))
	if c == "" || c == "nan" || c == "null" {
		return ""
	}
	return c
}

// assignColors maps each distinct category to one palette entry. The
// home category, when present, is pinned to the reserved first slot;
// the remaining categories draw from the rest of the palette in a
// per-load shuffled order, wrapping around when there are more
// categories than colors. Color identity across loads is therefore not
// stable, only the pinned slot is.
func assignColors(categories map[string]struct{}, home string, palette []string, rng *rand.Rand) map[string]string {
	colors := make(map[string]string, len(categories))
	if len(palette) == 0 {
		for c := range categories {
			colors[c] = FallbackColor
		}
		return colors
	}

	home = normalizeCategory(home)
	if home != "" {
		if _, ok := categories[home]; ok {
			colors[home] = palette[0]
		}
	}

	rest := make([]string, 0, len(categories))
	for c := range categories {
		if _, done := colors[c]; !done {
			rest = append(rest, c)
		}
	}
	sort.Strings(rest)

	pool := make([]string, 0, len(palette))
	pool = append(pool, palette[1:]...)
	if len(pool) == 0 {
		pool = append(pool, palette[0])
	}
	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	for i, c := range rest {
		colors[c] = pool[i%len(pool)]
	}
	return colors
}
