package order

import (
	"fmt"
	"strings"
)

// ValidationError reports missing buyer fields at checkout. Nothing is
// written when it is returned.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required buyer fields: %s", strings.Join(e.Fields, ", "))
}
