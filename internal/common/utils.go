package common

import "strings"

// NormalizeKey lowercases a column or issue name and folds spaces and
// dashes into underscores, so "Wind Speed" and "wind_speed" compare equal.
func NormalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}
