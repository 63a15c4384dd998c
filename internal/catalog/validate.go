// =============================================================================
// Sales Report Bot - Catalog Validation
// =============================================================================
//
// Validation runs whenever a catalog is built, regardless of its source.
// Problems are collected rather than returned one at a time, so a broken
// catalog file can be fixed in one pass.
//
// RULES:
//   - The catalog has at least one product
//   - Product names are non-empty and unique
//   - Prices are finite and not negative
//   - Every exchange name refers to a product of the catalog
//
// =============================================================================

package catalog

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// =============================================================================
// VALIDATION ERROR TYPE
// =============================================================================

// ValidationError describes a single problem with a catalog definition.
type ValidationError struct {
	// Position is the 1-based product position, or 0 for catalog-level
	// problems.
	Position int

	// Field is the offending attribute: "name", "price" or "exchange".
	Field string

	// Value is the offending value as text.
	Value string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Position == 0 {
		return fmt.Sprintf("catalog %s: %s (value: '%s')", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("product %d %s: %s (value: '%s')", e.Position, e.Field, e.Message, e.Value)
}

// ErrEmptyCatalog is returned when a catalog defines no products.
var ErrEmptyCatalog = errors.New("catalog has no products")

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks catalog entries and the exchange set.
//
// RETURNS:
//   - nil if the definition is valid.
//   - An error joining every *ValidationError found.
func Validate(entries []Entry, exchange []string) error {
	if len(entries) == 0 {
		return ErrEmptyCatalog
	}

	var errs []error
	seen := make(map[string]int, len(entries))

	for i, e := range entries {
		pos := i + 1

		if strings.TrimSpace(e.Name) == "" {
			errs = append(errs, &ValidationError{
				Position: pos,
				Field:    "name",
				Value:    e.Name,
				Message:  "name is required",
			})
		} else if first, dup := seen[e.Name]; dup {
			errs = append(errs, &ValidationError{
				Position: pos,
				Field:    "name",
				Value:    e.Name,
				Message:  fmt.Sprintf("duplicate of product %d", first),
			})
		} else {
			seen[e.Name] = pos
		}

		if math.IsNaN(e.Price) || math.IsInf(e.Price, 0) {
			errs = append(errs, &ValidationError{
				Position: pos,
				Field:    "price",
				Value:    fmt.Sprint(e.Price),
				Message:  "price must be a finite number",
			})
		} else if e.Price < 0 {
			errs = append(errs, &ValidationError{
				Position: pos,
				Field:    "price",
				Value:    fmt.Sprint(e.Price),
				Message:  "price must not be negative",
			})
		}
	}

	for _, name := range exchange {
		if _, ok := seen[name]; !ok {
			errs = append(errs, &ValidationError{
				Field:   "exchange",
				Value:   name,
				Message: "unknown product",
			})
		}
	}

	return errors.Join(errs...)
}
