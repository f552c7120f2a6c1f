package entity

import (
	"fmt"
	"strings"
)

// Candidate is an unvalidated object parsed from one chunk's response.
type Candidate map[string]any

// String returns the trimmed string form of a field, or "" when absent or null.
func (c Candidate) String(field string) string {
	v, ok := c[field]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		// whole numbers must not render as 1.2345678901e+10
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
