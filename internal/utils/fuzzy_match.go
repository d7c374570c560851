package utils

import (
	"fmt"
	"strings"
)

// featureAliases maps a canonical special-feature tag to the spellings brokers use for it
var featureAliases = map[string][]string{
	"north-facing":    {"north-facing", "north facing", "north-east facing", "ne facing", "north east"},
	"east-facing":     {"east-facing", "east facing"},
	"pet-friendly":    {"pet-friendly", "pet friendly", "pets allowed", "pets"},
	"vastu-compliant": {"vastu-compliant", "vastu compliant", "vastu"},
	"new-property":    {"new-property", "new property", "brand new", "new construction"},
	"old-property":    {"old-property", "old property", "resale"},
	"garden":          {"garden", "lawn", "private garden"},
	"parking":         {"parking", "car park", "covered parking", "car parking"},
	"gym":             {"gym", "gymnasium", "fitness", "fitness center"},
	"pool":            {"pool", "swimming pool"},
	"clubhouse":       {"clubhouse", "club house"},
	"power-backup":    {"power backup", "power-backup", "dg backup"},
	"security":        {"security", "24x7 security", "24/7 security", "gated"},
	"balcony":         {"balcony", "terrace"},
}

// NormalizeFeature maps a free-form feature to its canonical tag.
// Unknown features are lower-cased and hyphenated.
func NormalizeFeature(feature string) string {
	lower := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(feature, "_", " ")))
	if lower == "" {
		return ""
	}
	if _, ok := featureAliases[lower]; ok {
		return lower
	}
	for tag, spellings := range featureAliases {
		for _, s := range spellings {
			if lower == s {
				return tag
			}
		}
	}
	return strings.Join(strings.Fields(lower), "-")
}

// NormalizeFeatures normalises a tag list, dropping blanks and duplicates
func NormalizeFeatures(features []string) []string {
	seen := make(map[string]bool, len(features))
	out := make([]string, 0, len(features))
	for _, f := range features {
		tag := NormalizeFeature(f)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

// FuzzyMatchFeature reports whether a listing feature satisfies a requested feature
func FuzzyMatchFeature(requested, feature string) bool {
	reqLower := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(requested, "_", " ")))
	featLower := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(feature, "_", " ")))
	if reqLower == "" || featLower == "" {
		return false
	}

	// Exact match
	if reqLower == featLower {
		return true
	}

	// Contains match
	if strings.Contains(featLower, reqLower) {
		return true
	}

	for _, spelling := range featureSpellings(reqLower) {
		if strings.Contains(featLower, spelling) {
			return true
		}
	}
	return false
}

// featureSpellings returns every known spelling of the canonical tag of term
func featureSpellings(term string) []string {
	tag := NormalizeFeature(term)
	if spellings, ok := featureAliases[tag]; ok {
		return spellings
	}
	return []string{term}
}

// likeSeparators turns word separators into the single-character LIKE wildcard
var likeSeparators = strings.NewReplacer(" ", "_", "-", "_")

// BuildFuzzyFeatureQuery builds a JSONB condition matching any of the requested special features.
// Returns the SQL condition, its parameters and the next free placeholder index.
func BuildFuzzyFeatureQuery(column string, requested []string, paramIndex int) (string, []interface{}, int) {
	if len(requested) == 0 {
		return "", nil, paramIndex
	}

	var orConditions []string
	var params []interface{}
	for _, term := range requested {
		for _, spelling := range featureSpellings(strings.ToLower(strings.TrimSpace(term))) {
			orConditions = append(orConditions, fmt.Sprintf("elem ILIKE $%d", paramIndex))
			params = append(params, "%"+likeSeparators.Replace(spelling)+"%")
			paramIndex++
		}
	}

	condition := fmt.Sprintf(
		"EXISTS (SELECT 1 FROM jsonb_array_elements_text(%s) elem WHERE %s)",
		column, strings.Join(orConditions, " OR "),
	)
	return condition, params, paramIndex
}
