// Package dexes normalizes the venue labels a quote routed through and
// applies the include/exclude route policy.
package dexes

import "strings"

var labelAliases = map[string]string{
	"whirlpool":     "orca",
	"raydium clmm":  "raydium",
	"raydium cpmm":  "raydium",
	"meteora dlmm":  "meteora",
	"openbook v2":   "openbook",
	"openbookv2":    "openbook",
	"pancakeswap":   "pancakeswap",
	"lifinity v2":   "lifinity",
	"lifinityv2":    "lifinity",
	"aquifer":       "aquifer",
	"humidifi":      "humidifi",
	"tessera":       "tessera",
	"tessera v":     "tessera",
	"tesserav":      "tessera",
	"solfi":         "solfi",
	"solfi v":       "solfi",
	"solfi v1":      "solfi",
	"solfi v2":      "solfi",
	"solfi v3":      "solfi",
	"pump":          "pump",
	"raydium":       "raydium",
	"orca":          "orca",
	"meteora":       "meteora",
	"openbook":      "openbook",
}

// Normalize maps a raw aggregator label to its canonical venue name.
// Unaliased labels pass through lowercased and trimmed.
func Normalize(label string) string {
	normalized := strings.ToLower(strings.TrimSpace(label))
	if canonical, ok := labelAliases[normalized]; ok {
		return canonical
	}
	return normalized
}

// NormalizeSet normalizes and dedupes a label list, keeping first-seen order.
func NormalizeSet(labels []string) []string {
	seen := make(map[string]bool, len(labels))
	out := make([]string, 0, len(labels))
	for _, label := range labels {
		normalized := Normalize(label)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		out = append(out, normalized)
	}
	return out
}

const (
	IncludeAll = "all"
	IncludeAny = "any"
)

// Policy is the route allow list. Members are stored canonical.
type Policy struct {
	include     map[string]bool
	includeMode string
	exclude     map[string]bool
}

func NewPolicy(include []string, includeMode string, exclude []string) *Policy {
	mode := strings.ToLower(strings.TrimSpace(includeMode))
	if mode != IncludeAny {
		mode = IncludeAll
	}
	return &Policy{
		include:     toSet(include),
		includeMode: mode,
		exclude:     toSet(exclude),
	}
}

func toSet(labels []string) map[string]bool {
	set := make(map[string]bool, len(labels))
	for _, label := range labels {
		if normalized := Normalize(label); normalized != "" {
			set[normalized] = true
		}
	}
	return set
}

// Allows reports whether a quote with the given canonical venue set passes.
// Exclusions always win; an empty include set means no include constraint.
func (p *Policy) Allows(canonical []string) bool {
	for _, label := range canonical {
		if p.exclude[label] {
			return false
		}
	}
	if len(p.include) == 0 {
		return true
	}
	if p.includeMode == IncludeAll {
		for _, label := range canonical {
			if !p.include[label] {
				return false
			}
		}
		return true
	}
	for _, label := range canonical {
		if p.include[label] {
			return true
		}
	}
	return false
}
