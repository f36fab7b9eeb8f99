package record

import "strings"

// TextSeparator joins text fragments. Keywords never span two fragments.
const TextSeparator = " \n"

// TextSource yields the text fragments one field contributes to a record's
// searchable text. Non-string values contribute nothing.
type TextSource func(raw Raw) []string

// Text reads a top-level string field.
func Text(key string) TextSource {
	return func(raw Raw) []string {
		if s, ok := raw[key].(string); ok {
			return []string{s}
		}
		return nil
	}
}

// TextValues reads every string value of an object field, in key order.
//
//	"project_abstract": {"cdata": "Improve land administration ..."}
func TextValues(key string) TextSource {
	return func(raw Raw) []string {
		obj, ok := raw[key].(map[string]interface{})
		if !ok {
			return nil
		}
		var out []string
		for _, k := range SortedKeys(obj) {
			if s, ok := obj[k].(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
}

// TextEach reads sub from every entry of a collection field. The collection
// may be an object keyed by position or an array.
//
//	"docna": {"0": {"docna": "Procurement Plan"}}
//	"sectr": [{"sector": "Agriculture"}]
func TextEach(key, sub string) TextSource {
	return func(raw Raw) []string {
		var out []string
		for _, entry := range entries(raw[key]) {
			if m, ok := entry.(map[string]interface{}); ok {
				if s, ok := m[sub].(string); ok {
					out = append(out, s)
				}
			}
		}
		return out
	}
}

// Extract concatenates fragments from sources in order, joined with TextSeparator.
func Extract(raw Raw, sources ...TextSource) string {
	var parts []string
	for _, src := range sources {
		parts = append(parts, src(raw)...)
	}
	return strings.Join(parts, TextSeparator)
}

// Strings reads a field holding either one string or a list of strings.
func Strings(raw Raw, key string) []string {
	switch t := raw[key].(type) {
	case string:
		return []string{t}
	case []interface{}:
		var out []string
		for _, v := range t {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func entries(v interface{}) []interface{} {
	switch t := v.(type) {
	case []interface{}:
		return t
	case map[string]interface{}:
		out := make([]interface{}, 0, len(t))
		for _, k := range SortedKeys(t) {
			out = append(out, t[k])
		}
		return out
	}
	return nil
}
