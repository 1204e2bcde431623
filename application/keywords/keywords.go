// Package keywords holds the Validation, Control and Input keyword groups.
// Every group works on the shared engine handle and never owns it.
package keywords

import (
	"browser_library/domain/entities"
	"fmt"
	"strings"
)

const (
	GroupValidation = "Validation"
	GroupControl    = "Control"
	GroupInput      = "Input"
)

// define - builds a keyword descriptor of group
func define(group, name, doc string, run entities.KeywordFunc, args ...entities.Arg) entities.Keyword {
	return entities.Keyword{
		Name:  name,
		Group: group,
		Doc:   doc,
		Args:  args,
		Run:   run,
	}
}

// oneOf - returns value lower-cased if it is one of allowed
func oneOf(arg, value string, allowed ...string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, a := range allowed {
		if v == a {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %s must be one of %s, got %q",
		entities.ErrInvalidArguments, arg, strings.Join(allowed, ", "), value)
}
