package helpers

import "strings"

// NilIfEmpty returns nil for blank strings so optional columns are stored as NULL.
func NilIfEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
