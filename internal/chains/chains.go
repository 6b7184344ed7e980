package chains

import "strings"

// displayNames maps known chain slugs to their display names. Unknown
// slugs are allowed; the catalog creates chains on first sight.
var displayNames = map[string]string{
	"konzum":     "Konzum",
	"lidl":       "Lidl",
	"plodine":    "Plodine",
	"interspar":  "Interspar",
	"studenac":   "Studenac",
	"kaufland":   "Kaufland",
	"eurospin":   "Eurospin",
	"dm":         "dm",
	"ktc":        "KTC",
	"metro":      "Metro",
	"trgocentar": "Trgocentar",
}

// KnownChains returns the list of known chain slugs.
func KnownChains() []string {
	slugs := make([]string, 0, len(displayNames))
	for slug := range displayNames {
		slugs = append(slugs, slug)
	}
	return slugs
}

// IsKnown checks if a chain slug belongs to a known chain.
func IsKnown(slug string) bool {
	_, ok := displayNames[strings.ToLower(slug)]
	return ok
}

// DisplayName returns the display name for a chain slug. Unknown slugs
// get a capitalized form of the slug itself.
func DisplayName(slug string) string {
	if name, ok := displayNames[strings.ToLower(slug)]; ok {
		return name
	}
	if slug == "" {
		return ""
	}
	return strings.ToUpper(slug[:1]) + slug[1:]
}
