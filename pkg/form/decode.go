package form

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// DecodeValues decodes submitted values into out (a pointer to a struct or
// map). Struct fields are matched by their `form` tag, falling back to the
// field name; strings are weakly converted ("42" into an int field).
func DecodeValues(values map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "form",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("form: decode values: %w", err)
	}
	if err := decoder.Decode(values); err != nil {
		return fmt.Errorf("form: decode values: %w", err)
	}
	return nil
}

// SubmitInto adapts a typed callback to a SubmitFunc by decoding the nested
// values into T first.
func SubmitInto[T any](fn func(ctx context.Context, value T) error) SubmitFunc {
	return func(ctx context.Context, values map[string]any) error {
		var out T
		if err := DecodeValues(values, &out); err != nil {
			return err
		}
		return fn(ctx, out)
	}
}
