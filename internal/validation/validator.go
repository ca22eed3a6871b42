// Package validation checks candidate products against the catalog field constraints.
package validation

import (
	"fmt"

	"github.com/abgdnv/productcatalog/internal/model"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const (
	minTextLength = 3
	maxTextLength = 50
	minPrice      = 1
	maxPrice      = 99999999
)

// Violation is a single failed constraint on one field.
type Violation struct {
	Field   string
	Message string
}

// rule is one constraint. ok reports whether the candidate satisfies it.
type rule struct {
	field   string
	message string
	ok      func(v *validator.Validate, in model.ProductInput) bool
}

// Validator evaluates every rule against a candidate and reports all failures in rule order.
// It holds no per-call state and is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
	rules    []rule
}

// New creates a Validator with the product constraint table.
func New() *Validator {
	v := validator.New()
	// notblank is not part of the baked-in tag set
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("failed to register notblank validation: %v", err))
	}

	name := func(in model.ProductInput) *string { return in.Name }
	brand := func(in model.ProductInput) *string { return in.Brand }
	size := func(in model.ProductInput) *string { return in.Size }
	price := func(in model.ProductInput) *float64 { return in.Price }
	principalImage := func(in model.ProductInput) *string { return in.PrincipalImage }

	return &Validator{
		validate: v,
		rules: []rule{
			notNull("name", name),
			notBlank("name", name),
			length("name", name, minTextLength, maxTextLength),
			notNull("brand", brand),
			notBlank("brand", brand),
			length("brand", brand, minTextLength, maxTextLength),
			notBlank("size", size),
			notNull("price", price),
			numberTag("price", price, fmt.Sprintf("gte=%d", minPrice), fmt.Sprintf("must be greater than or equal to %d", minPrice)),
			numberTag("price", price, fmt.Sprintf("lte=%d", maxPrice), fmt.Sprintf("must be less than or equal to %d", maxPrice)),
			notNull("principalImage", principalImage),
			{
				field:   "otherImages",
				message: "must not be null",
				ok: func(_ *validator.Validate, in model.ProductInput) bool {
					return in.OtherImages != nil
				},
			},
		},
	}
}

// Validate returns every violated constraint of the candidate, or nil if there is none.
func (v *Validator) Validate(candidate model.ProductInput) []Violation {
	var violations []Violation
	for _, r := range v.rules {
		if !r.ok(v.validate, candidate) {
			violations = append(violations, Violation{Field: r.field, Message: r.message})
		}
	}
	return violations
}

func notNull[T any](field string, get func(model.ProductInput) *T) rule {
	return rule{
		field:   field,
		message: "must not be null",
		ok: func(_ *validator.Validate, in model.ProductInput) bool {
			return get(in) != nil
		},
	}
}

// notBlank fails on absent values too.
func notBlank(field string, get func(model.ProductInput) *string) rule {
	return rule{
		field:   field,
		message: "must not be blank",
		ok: func(v *validator.Validate, in model.ProductInput) bool {
			s := get(in)
			return s != nil && v.Var(*s, "notblank") == nil
		},
	}
}

// length counts runes; an absent value is left to notNull.
func length(field string, get func(model.ProductInput) *string, minLen, maxLen int) rule {
	tag := fmt.Sprintf("min=%d,max=%d", minLen, maxLen)
	return rule{
		field:   field,
		message: fmt.Sprintf("size must be between %d and %d", minLen, maxLen),
		ok: func(v *validator.Validate, in model.ProductInput) bool {
			s := get(in)
			return s == nil || v.Var(*s, tag) == nil
		},
	}
}

func numberTag(field string, get func(model.ProductInput) *float64, tag, message string) rule {
	return rule{
		field:   field,
		message: message,
		ok: func(v *validator.Validate, in model.ProductInput) bool {
			n := get(in)
			return n == nil || v.Var(*n, tag) == nil
		},
	}
}
