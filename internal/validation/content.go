package validation

import (
	"fmt"
	"strings"
)

// IsBlank reports whether s is empty or only whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// RequireFields returns an error naming the first blank field. Fields are
// given as name/value pairs.
func RequireFields(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if IsBlank(pairs[i+1]) {
			return fmt.Errorf("%s is required", pairs[i])
		}
	}
	return nil
}
