// Package schema holds the pieces shared by the schema adapters: definition
// sources, raw documents and the mapping from validator output to form
// field errors.
package schema

import (
	"strings"

	"github.com/goliatone/go-formstate/pkg/paths"
	"github.com/goliatone/go-formstate/pkg/validate"
)

// FieldFromPointer converts an instance JSON pointer ("/owner/email",
// "/items/0/label", "#/age") into a form field name ("owner.email",
// "items[0].label", "age"). The empty pointer addresses the whole form and
// yields "".
func FieldFromPointer(pointer string) string {
	return FieldFromSegments(splitPointer(pointer))
}

// FieldFromSegments joins already-split instance location segments.
func FieldFromSegments(segments []string) string {
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		out = append(out, segment)
	}
	if len(out) == 0 {
		return ""
	}
	return paths.Join(out)
}

// FieldFromSchemaPointer converts a schema location pointer
// ("/properties/owner/properties/email") into the field name it
// constrains. Combinator and definition segments are skipped.
func FieldFromSchemaPointer(pointer string) string {
	parts := splitPointer(pointer)
	out := make([]string, 0, len(parts))
	for idx := 0; idx < len(parts); idx++ {
		switch segment := parts[idx]; segment {
		case "properties":
			if idx+1 < len(parts) {
				out = append(out, parts[idx+1])
				idx++
			}
		case "items", "prefixItems", "additionalProperties":
		case "oneOf", "anyOf", "allOf", "$defs", "definitions":
			if idx+1 < len(parts) {
				idx++
			}
		default:
			if segment != "" {
				out = append(out, segment)
			}
		}
	}
	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, ".")
}

// KindFromKeyword maps a schema keyword onto the error taxonomy. Keywords
// without a counterpart are reported as-is.
func KindFromKeyword(keyword string) string {
	switch keyword {
	case "required":
		return validate.KindRequired
	case "minimum", "exclusiveMinimum":
		return validate.KindMin
	case "maximum", "exclusiveMaximum":
		return validate.KindMax
	case "minLength", "minItems":
		return validate.KindMinLength
	case "maxLength", "maxItems":
		return validate.KindMaxLength
	case "pattern":
		return validate.KindPattern
	case "":
		return validate.KindValidate
	default:
		return keyword
	}
}

// Add records err under name unless an error is already recorded there, so
// the first failing rule per field wins.
func Add(errs validate.Errors, name string, err validate.Error) {
	if _, exists := errs[name]; exists {
		return
	}
	errs[name] = err
}

func splitPointer(pointer string) []string {
	trimmed := strings.TrimSpace(pointer)
	trimmed = strings.TrimPrefix(trimmed, "#")
	trimmed = strings.TrimPrefix(trimmed, "/")
	if trimmed == "" {
		return nil
	}
	parts := strings.Split(trimmed, "/")
	for i, part := range parts {
		part = strings.ReplaceAll(part, "~1", "/")
		parts[i] = strings.ReplaceAll(part, "~0", "~")
	}
	return parts
}
