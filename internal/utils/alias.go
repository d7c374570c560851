package utils

import "strings"

// ControlAlias maps shortcut words to a question control id
type ControlAlias struct {
	ControlID string
	Aliases   []string
}

// ControlAliases is checked in order; the first entry whose alias matches wins.
// Words the intent parser already understands (buy, rent, villa, flat) are left out.
var ControlAliases = []ControlAlias{
	{ControlID: "req_type", Aliases: []string{"req_type", "type", "transaction"}},
	{ControlID: "budget", Aliases: []string{"budget", "price", "cost"}},
	{ControlID: "property_type", Aliases: []string{"property_type", "property"}},
	{ControlID: "property_status", Aliases: []string{"property_status", "status", "ready", "construction"}},
	{ControlID: "furnishing_status", Aliases: []string{"furnishing_status", "furnishing", "furnished"}},
	{ControlID: "special_requests", Aliases: []string{"special_requests", "special", "preferences", "features"}},
	{ControlID: "proximity_location", Aliases: []string{"proximity_location", "proximity", "location", "work"}},
	{ControlID: "community_preference", Aliases: []string{"community_preference", "community", "communities"}},
}

// ControlIDs lists the control ids in alias-table order
func ControlIDs() []string {
	out := make([]string, 0, len(ControlAliases))
	for _, a := range ControlAliases {
		out = append(out, a.ControlID)
	}
	return out
}

// ResolveControlID maps a chat message to a control id. An exact alias match wins over a
// substring match so "property_type" never resolves through "type".
func ResolveControlID(message string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(message))
	if lower == "" {
		return "", false
	}

	for _, entry := range ControlAliases {
		for _, alias := range entry.Aliases {
			if lower == alias {
				return entry.ControlID, true
			}
		}
	}

	for _, entry := range ControlAliases {
		for _, alias := range entry.Aliases {
			if strings.Contains(lower, alias) {
				return entry.ControlID, true
			}
		}
	}
	return "", false
}
