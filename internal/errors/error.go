// Package errors provides custom error types for product-related operations.
package errors

import (
	"errors"
	"fmt"

	"github.com/abgdnv/productcatalog/internal/validation"
)

var ErrProductNotFound = errors.New("product not found")

// ErrNoContent reports that a listing found no active products.
var ErrNoContent = errors.New("no active products")

const (
	notFoundMessage   = "Entity with Id %s not found"
	persistMessage    = "Error intentando guardar la entidad"
	violationTemplate = "Error en el campo '%s': %s"
)

// NotFoundError is returned when no active product has the requested SKU.
type NotFoundError struct {
	SKU string
}

func NewNotFoundError(sku string) *NotFoundError {
	return &NotFoundError{SKU: sku}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf(notFoundMessage, e.SKU)
}

// Unwrap makes errors.Is(err, ErrProductNotFound) hold.
func (e *NotFoundError) Unwrap() error {
	return ErrProductNotFound
}

// ValidationError is returned when a candidate product violates one or more constraints.
// Errors keeps the order in which the violations were reported.
type ValidationError struct {
	Message string
	Errors  []string
}

// NewValidationError formats each violation into the response message list.
func NewValidationError(violations []validation.Violation) *ValidationError {
	errs := make([]string, 0, len(violations))
	for _, v := range violations {
		errs = append(errs, fmt.Sprintf(violationTemplate, v.Field, v.Message))
	}
	return &ValidationError{
		Message: persistMessage,
		Errors:  errs,
	}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %d constraint violation(s)", e.Message, len(e.Errors))
}
