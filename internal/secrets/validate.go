package secrets

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError lists the required settings that were blank.
type ValidationError struct {
	Empty []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("required environment variables are not set: %s", strings.Join(e.Empty, ", "))
}

// ValidateRequired checks a name-to-value map of required settings and
// reports every blank one at once, so an operator fixes one startup
// failure instead of several in a row.
func ValidateRequired(required map[string]string) error {
	var empty []string
	for name, value := range required {
		if strings.TrimSpace(value) == "" {
			empty = append(empty, name)
		}
	}
	if len(empty) == 0 {
		return nil
	}
	sort.Strings(empty)
	return &ValidationError{Empty: empty}
}
