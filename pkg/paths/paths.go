// Package paths understands the dot/bracket field names used by forms
// ("owner.email", "items[0].name") and rebuilds nested value objects from
// flat name/value maps.
package paths

import (
	"sort"
	"strconv"
	"strings"
)

// Split breaks a field name into segments. Bracket indices become their own
// segment: "items[0].name" -> ["items", "0", "name"].
func Split(name string) []string {
	clean := strings.TrimSpace(name)
	if clean == "" {
		return nil
	}
	replacer := strings.NewReplacer("[", ".", "]", "")
	clean = replacer.Replace(clean)

	parts := strings.Split(clean, ".")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		segment = strings.Trim(segment, `"'`)
		if segment == "" {
			continue
		}
		out = append(out, segment)
	}
	return out
}

// IsNested reports whether name addresses a nested value.
func IsNested(name string) bool {
	return strings.ContainsAny(name, ".[")
}

// Canonical normalises a name so "items[0].name" and "items.0.name" compare
// equal.
func Canonical(name string) string {
	return strings.Join(Split(name), ".")
}

// Join renders segments back into a field name, using brackets for numeric
// segments.
func Join(segments []string) string {
	var b strings.Builder
	for i, segment := range segments {
		if _, ok := index(segment); ok && i > 0 {
			b.WriteString("[")
			b.WriteString(segment)
			b.WriteString("]")
			continue
		}
		if i > 0 {
			b.WriteString(".")
		}
		b.WriteString(segment)
	}
	return b.String()
}

// HasPrefix reports whether name lives under prefix, comparing canonical
// segments ("items" is a prefix of "items[0].name", "item" is not).
func HasPrefix(name, prefix string) bool {
	n, p := Split(name), Split(prefix)
	if len(p) == 0 || len(n) < len(p) {
		return false
	}
	for i := range p {
		if n[i] != p[i] {
			return false
		}
	}
	return true
}

// Combine rebuilds a nested object from flat field names. Plain names are
// copied as-is; names with dots or bracket indices create intermediate maps
// and slices.
func Combine(flat map[string]any) map[string]any {
	out := make(map[string]any, len(flat))
	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := flat[key]
		if !IsNested(key) {
			out[key] = value
			continue
		}
		segments := Split(key)
		if len(segments) == 0 {
			continue
		}
		out[segments[0]] = assign(out[segments[0]], segments[1:], value)
	}
	return out
}

// Lookup resolves name against values. A flat key matching name exactly wins
// over a nested walk.
func Lookup(values map[string]any, name string) (any, bool) {
	if values == nil || name == "" {
		return nil, false
	}
	if value, ok := values[name]; ok {
		return value, true
	}
	if !IsNested(name) {
		return nil, false
	}

	current := any(values)
	for _, segment := range Split(name) {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, ok := index(segment)
			if !ok || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

func assign(node any, segments []string, value any) any {
	if len(segments) == 0 {
		return value
	}
	segment := segments[0]

	if idx, ok := index(segment); ok {
		list, _ := node.([]any)
		if len(list) <= idx {
			list = append(list, make([]any, idx+1-len(list))...)
		}
		list[idx] = assign(list[idx], segments[1:], value)
		return list
	}

	m, ok := node.(map[string]any)
	if !ok || m == nil {
		m = make(map[string]any)
	}
	m[segment] = assign(m[segment], segments[1:], value)
	return m
}

func index(segment string) (int, bool) {
	idx, err := strconv.Atoi(segment)
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}
