package recipe

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrCartEmpty        = errors.New("cart is empty")
	ErrAlreadyFavorited = errors.New("recipe is already in favorites")
	ErrNotFavorited     = errors.New("recipe is not in favorites")
	ErrAlreadyInCart    = errors.New("recipe is already in the shopping cart")
	ErrNotInCart        = errors.New("recipe is not in the shopping cart")
)

// ValidationError carries per-field messages for a rejected payload.
// Nothing is written when one is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

func fieldError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}
