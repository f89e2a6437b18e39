package validation

import (
	"regexp"

	"github.com/oksasatya/go-user-registration/internal/domain/apperror"
)

// IDValidator checks path identifiers before any store or cache access.
type IDValidator struct {
	re     *regexp.Regexp
	length int
}

// NewIDValidator compiles pattern; an invalid pattern is a configuration error.
func NewIDValidator(pattern string, length int) (*IDValidator, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &IDValidator{re: re, length: length}, nil
}

// Check applies the pattern first, then the exact length.
func (v *IDValidator) Check(id string) error {
	if !v.re.MatchString(id) {
		return apperror.ErrInvalidIdentifier
	}
	if len(id) != v.length {
		return apperror.ErrInvalidIdentifier
	}
	return nil
}
