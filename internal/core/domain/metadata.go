package domain

import "reflect"

// Metadata keys written by the pipeline and its parsers.
const (
	// MetaUploadID is the pipeline-reserved key tying a chunk to its upload.
	MetaUploadID = "upload_id"

	// MetaMIMEType records the MIME type a parser handled.
	MetaMIMEType = "mime_type"

	// MetaFormat records the short format name ("pdf", "html", ...).
	MetaFormat = "format"

	// MetaTitle records a document title when the format carries one.
	MetaTitle = "title"

	// MetaPage is the 1-based page number for paged formats.
	MetaPage = "page"

	// MetaTotalPages is the page count for paged formats.
	MetaTotalPages = "total_pages"

	// MetaFilename is the original file name supplied by the caller.
	MetaFilename = "filename"
)

// ReservedMetadataKeys are set by the pipeline and override caller values.
var ReservedMetadataKeys = []string{MetaUploadID}

// IsReservedMetadataKey reports whether key is owned by the pipeline.
func IsReservedMetadataKey(key string) bool {
	for _, k := range ReservedMetadataKeys {
		if k == key {
			return true
		}
	}
	return false
}

// CloneMetadata returns a deep copy of metadata.
// Nested maps and slices are copied so that mutating the copy never affects
// the original. A nil map clones to nil.
func CloneMetadata(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = cloneValue(v)
	}
	return dst
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return CloneMetadata(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	case map[string]string:
		out := make(map[string]string, len(val))
		for k, s := range val {
			out[k] = s
		}
		return out
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Map, reflect.Slice, reflect.Array:
			return cloneReflect(rv).Interface()
		}
		return v
	}
}

// cloneReflect deep-copies maps, slices and arrays of any concrete type.
// Other kinds are shared, as for scalars.
func cloneReflect(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(cloneReflect(v.Elem()))
		return out
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), cloneReflect(iter.Value()))
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(cloneReflect(v.Index(i)))
		}
		return out
	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(cloneReflect(v.Index(i)))
		}
		return out
	default:
		return v
	}
}

// MergeMetadata copies every key of src into dst, overwriting existing keys,
// and returns dst. A nil dst is allocated.
func MergeMetadata(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, v := range src {
		dst[k] = cloneValue(v)
	}
	return dst
}
