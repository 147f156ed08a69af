package formdata

import (
	"fmt"
	"strconv"
	"strings"
)

// Flatten projects a partially structured record back onto dotted paths.
// Plain mappings are descended into; sequences are stringified as a whole
// (comma-joined) and absent values become the empty string.
func Flatten(data map[string]any) map[string]string {
	out := make(map[string]string, len(data))
	flattenInto(out, "", data)
	return out
}

func flattenInto(out map[string]string, prefix string, data map[string]any) {
	for key, value := range data {
		path := JoinPath(prefix, key)
		switch typed := value.(type) {
		case map[string]any:
			flattenInto(out, path, typed)
		case map[string]string:
			for childKey, childValue := range typed {
				out[JoinPath(path, childKey)] = childValue
			}
		case *Value:
			if typed != nil && typed.Kind == KindMapping {
				flattenValueInto(out, path, typed)
				continue
			}
			out[path] = typed.String()
		default:
			out[path] = stringify(value)
		}
	}
}

// FlattenValue flattens a reconstructed tree with the same rules as Flatten.
func FlattenValue(v *Value) map[string]string {
	out := make(map[string]string)
	if v == nil {
		return out
	}
	if v.Kind != KindMapping {
		out[""] = v.String()
		return out
	}
	flattenValueInto(out, "", v)
	return out
}

func flattenValueInto(out map[string]string, prefix string, v *Value) {
	for key, child := range v.Fields {
		path := JoinPath(prefix, key)
		if child != nil && child.Kind == KindMapping {
			flattenValueInto(out, path, child)
			continue
		}
		out[path] = child.String()
	}
}

// FlattenEntries returns the raw submitted record as path -> string. Later
// entries win on repeated paths.
func FlattenEntries(entries []Entry) map[string]string {
	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		out[entry.Path] = entry.Value.String()
	}
	return out
}

func stringify(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case *Blob:
		if typed == nil {
			return ""
		}
		return typed.Filename
	case []string:
		return strings.Join(typed, ",")
	case []any:
		parts := make([]string, len(typed))
		for i, item := range typed {
			parts[i] = stringify(item)
		}
		return strings.Join(parts, ",")
	case bool:
		return strconv.FormatBool(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32)
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprint(typed)
	}
}
