package field

import (
	"context"
	"regexp"
)

// Validator is a custom rule. A nil error means the value is valid; any other
// error marks it invalid and its text becomes the error message. Validators
// may block (remote checks); they receive the validation context.
type Validator func(ctx context.Context, value any) error

// Requirement marks a field as required.
type Requirement struct {
	Enabled bool
	Message string
}

// Limit is a numeric bound for min/max rules.
type Limit struct {
	Value   float64
	Message string
}

// Length is a length bound for minLength/maxLength rules.
type Length struct {
	Value   int
	Message string
}

// Pattern is a regular expression rule.
type Pattern struct {
	Expr    *regexp.Regexp
	Message string
}

// Rules holds the validation constraints attached to a field. The zero value
// declares no validation.
type Rules struct {
	Required  Requirement
	Min       *Limit
	Max       *Limit
	MinLength *Length
	MaxLength *Length
	Pattern   *Pattern
	// Validate runs after the built-in rules; failures are reported with the
	// "validate" kind.
	Validate Validator
	// Validations are named custom rules run in name order; failures are
	// reported with the rule name as their kind.
	Validations map[string]Validator
}

// Required builds a Rules value with only the required flag set.
func Required(message string) Rules {
	return Rules{Required: Requirement{Enabled: true, Message: message}}
}

// IsZero reports whether no rule is declared.
func (r Rules) IsZero() bool {
	return !r.Required.Enabled &&
		r.Min == nil && r.Max == nil &&
		r.MinLength == nil && r.MaxLength == nil &&
		r.Pattern == nil &&
		r.Validate == nil && len(r.Validations) == 0
}
