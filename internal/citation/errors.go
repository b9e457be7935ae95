// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/research-vault/pkg/types"
)

// Sentinel errors. Typed errors below match them with errors.Is.
var (
	ErrIncompleteData   = errors.New("incomplete citation data")
	ErrUnsupportedStyle = errors.New("unsupported citation style")
)

// IncompleteDataError reports a required field missing from a reference.
// Callers surface it to the user as a prompt for the field rather than as
// an internal failure.
type IncompleteDataError struct {
	Field string
}

func (e *IncompleteDataError) Error() string {
	return fmt.Sprintf("%s: %s is required", ErrIncompleteData, e.Field)
}

func (e *IncompleteDataError) Unwrap() error { return ErrIncompleteData }

// UnsupportedStyleError reports an unrecognized style name. The formatter
// recovers from it by using APA.
type UnsupportedStyleError struct {
	Value string
}

func (e *UnsupportedStyleError) Error() string {
	return fmt.Sprintf("%s %q, using %s", ErrUnsupportedStyle, e.Value, types.StyleAPA)
}

func (e *UnsupportedStyleError) Unwrap() error { return ErrUnsupportedStyle }

// ParseStyle resolves a style name case-insensitively. An empty name is
// APA. An unknown name is APA plus an *UnsupportedStyleError.
func ParseStyle(s string) (types.CitationStyle, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if v == "" {
		return types.StyleAPA, nil
	}
	for _, style := range types.Styles {
		if string(style) == v {
			return style, nil
		}
	}
	return types.StyleAPA, &UnsupportedStyleError{Value: s}
}
