// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"regexp"
	"strings"
)

var methodNameRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// MethodName validates a transformation name is non-empty kebab-case.
func MethodName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}
	if !methodNameRe.MatchString(name) {
		return fmt.Errorf("name %q must be lower-case words joined by hyphens", name)
	}
	return nil
}
