package entitlement

import "strings"

// ToolID derives the canonical key of a tool from its display name:
// lowercase, each run of whitespace replaced with a single underscore.
func ToolID(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}
