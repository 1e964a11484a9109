// Package normalization maps loosely written configuration values, such as
// " Warning" or "JSON", onto typed string enums.
package normalization

import (
	"fmt"
	"sort"
	"strings"
)

// Normalizer maps raw strings onto T.
type Normalizer[T comparable] struct {
	validValues  map[string]T
	defaultValue T
	validKeys    []string
}

// NewNormalizer creates a normalizer from string->value pairs. Keys are matched
// case-insensitively with surrounding whitespace ignored.
func NewNormalizer[T comparable](values map[string]T, defaultValue T) *Normalizer[T] {
	normalized := make(map[string]T, len(values))
	validKeys := make([]string, 0, len(values))
	for k, v := range values {
		key := normalize(k)
		normalized[key] = v
		validKeys = append(validKeys, key)
	}
	sort.Strings(validKeys)

	return &Normalizer[T]{
		validValues:  normalized,
		defaultValue: defaultValue,
		validKeys:    validKeys,
	}
}

// Normalize converts raw to the enum type, falling back to the default value.
func (n *Normalizer[T]) Normalize(raw string) T {
	if value, exists := n.validValues[normalize(raw)]; exists {
		return value
	}
	return n.defaultValue
}

// NormalizeWithError is Normalize for values that must be valid; the error
// lists the accepted spellings.
func (n *Normalizer[T]) NormalizeWithError(raw string) (T, error) {
	if value, exists := n.validValues[normalize(raw)]; exists {
		return value, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid value %q, valid options: %v", raw, n.validKeys)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
