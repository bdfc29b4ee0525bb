package validate

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-formstate/pkg/element"
	"github.com/goliatone/go-formstate/pkg/field"
)

// Target is a snapshot of one field taken by the owner of the registry.
// Validation never reads the registry itself, so a target stays consistent
// while the registry changes underneath an in-flight validation.
type Target struct {
	Name  string
	Type  string
	Value any
	Rules field.Rules
	// Ref is recorded on errors for focus targeting.
	Ref element.Element
	// Native is consulted instead of built-in rules when native validation is
	// enabled.
	Native element.ConstraintChecker
}

// Snapshot builds a Target for an entry.
func Snapshot(f *field.Field) Target {
	t := Target{
		Name:  f.Name,
		Type:  f.Type(),
		Value: field.ValueOf(f),
		Rules: f.Rules,
		Ref:   f.ErrorRef(),
	}
	if checker, ok := t.Ref.(element.ConstraintChecker); ok {
		t.Native = checker
	}
	return t
}

// Options tune per-field validation.
type Options struct {
	NativeValidation bool
}

// Field runs the rules of a single field and returns an Errors map holding
// at most one entry, keyed by the field name. Custom validators may block;
// a cancelled context aborts with ctx.Err().
func Field(ctx context.Context, t Target, opts Options) (Errors, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	errs := Errors{}

	if opts.NativeValidation && t.Native != nil {
		if kind, message := t.Native.CheckValidity(); kind != "" {
			errs[t.Name] = Error{Type: kind, Message: message, Ref: t.Ref}
		}
		return errs, nil
	}

	rules := t.Rules
	empty := isEmpty(t.Type, t.Value)

	if rules.Required.Enabled && empty {
		errs[t.Name] = Error{Type: KindRequired, Message: rules.Required.Message, Ref: t.Ref}
		return errs, nil
	}

	if !empty {
		if kind, message, failed := checkBounds(t.Value, rules); failed {
			errs[t.Name] = Error{Type: kind, Message: message, Ref: t.Ref}
			return errs, nil
		}
		if kind, message, failed := checkLength(t.Value, rules); failed {
			errs[t.Name] = Error{Type: kind, Message: message, Ref: t.Ref}
			return errs, nil
		}
		if rules.Pattern != nil && rules.Pattern.Expr != nil {
			if s, ok := t.Value.(string); ok && !rules.Pattern.Expr.MatchString(s) {
				errs[t.Name] = Error{Type: KindPattern, Message: rules.Pattern.Message, Ref: t.Ref}
				return errs, nil
			}
		}
	}

	if rules.Validate != nil {
		if err := rules.Validate(ctx, t.Value); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			errs[t.Name] = Error{Type: KindValidate, Message: err.Error(), Ref: t.Ref}
			return errs, nil
		}
	}

	if len(rules.Validations) > 0 {
		names := make([]string, 0, len(rules.Validations))
		for name := range rules.Validations {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fn := rules.Validations[name]
			if fn == nil {
				continue
			}
			if err := fn(ctx, t.Value); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				errs[t.Name] = Error{Type: name, Message: err.Error(), Ref: t.Ref}
				return errs, nil
			}
		}
	}

	return errs, nil
}

func isEmpty(typ string, value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case bool:
		return typ == element.TypeCheckbox && !v
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	default:
		return false
	}
}

func checkBounds(value any, rules field.Rules) (string, string, bool) {
	if rules.Min == nil && rules.Max == nil {
		return "", "", false
	}
	number, ok := toFloat(value)
	if !ok {
		return "", "", false
	}
	if rules.Max != nil && number > rules.Max.Value {
		return KindMax, rules.Max.Message, true
	}
	if rules.Min != nil && number < rules.Min.Value {
		return KindMin, rules.Min.Message, true
	}
	return "", "", false
}

func checkLength(value any, rules field.Rules) (string, string, bool) {
	if rules.MinLength == nil && rules.MaxLength == nil {
		return "", "", false
	}
	s, ok := value.(string)
	if !ok {
		return "", "", false
	}
	length := utf8.RuneCountInString(s)
	if rules.MaxLength != nil && length > rules.MaxLength.Value {
		return KindMaxLength, rules.MaxLength.Message, true
	}
	if rules.MinLength != nil && length < rules.MinLength.Value {
		return KindMinLength, rules.MinLength.Message, true
	}
	return "", "", false
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case fmt.Stringer:
		return toFloat(v.String())
	default:
		return 0, false
	}
}
