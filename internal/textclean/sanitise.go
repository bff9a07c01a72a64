package textclean

import (
	"reflect"
	"strings"
)

const nul = "\x00"

// SanitiseText removes characters PostgreSQL text and jsonb columns cannot
// store: NUL and invalid UTF-8 sequences.
func SanitiseText(s string) string {
	if s == "" {
		return ""
	}
	if strings.Contains(s, nul) {
		s = strings.ReplaceAll(s, nul, "")
	}
	return strings.ToValidUTF8(s, "")
}

// SanitiseValue walks a JSON-like value and sanitises every string in it,
// including map keys. Containers are rebuilt, so the result never aliases
// the input. Non-string scalars pass through unchanged.
func SanitiseValue(v any) any {
	switch val := v.(type) {
	case string:
		return SanitiseText(val)
	case map[string]any:
		return sanitiseMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = SanitiseValue(item)
		}
		return out
	case []string:
		out := make([]string, len(val))
		for i, item := range val {
			out[i] = SanitiseText(item)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(val))
		for k, item := range val {
			out[SanitiseText(k)] = SanitiseText(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = sanitiseMap(item)
		}
		return out
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.String, reflect.Map, reflect.Slice, reflect.Array:
			return sanitiseReflect(rv).Interface()
		}
		return v
	}
}

// sanitiseReflect rebuilds containers of any concrete type, such as
// map[string][]string or [][]string, keeping the type. Structs, pointers and
// other scalars are returned as they are.
func sanitiseReflect(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.String:
		out := reflect.New(v.Type()).Elem()
		out.SetString(SanitiseText(v.String()))
		return out
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(sanitiseReflect(v.Elem()))
		return out
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(sanitiseReflect(iter.Key()), sanitiseReflect(iter.Value()))
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(sanitiseReflect(v.Index(i)))
		}
		return out
	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(sanitiseReflect(v.Index(i)))
		}
		return out
	default:
		return v
	}
}

// SanitiseMetadata sanitises a metadata map. A nil map yields an empty map.
func SanitiseMetadata(m map[string]any) map[string]any {
	if m == nil {
		return make(map[string]any)
	}
	return sanitiseMap(m)
}

func sanitiseMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[SanitiseText(k)] = SanitiseValue(v)
	}
	return out
}

// Clean normalises then sanitises text, the order the pipeline applies.
func Clean(s string) string {
	return SanitiseText(Normalise(s))
}
