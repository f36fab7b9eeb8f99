// Package record defines the canonical record shape shared by every stream
// and the accessors that pull canonical fields out of loosely typed upstream
// JSON.
package record

import (
	"encoding/json"
	"sort"
	"strings"
)

// Raw is one upstream record as decoded from JSON. Numbers arrive as
// json.Number so identifiers keep their exact digits.
type Raw = map[string]interface{}

// Record is a raw record with its canonical identity resolved.
type Record struct {
	ID     string // stable external identifier; never empty for a stored record
	Marker string // opaque version marker, compared by equality only; "" when absent
	Raw    Raw
}

// Accessor extracts one string value from a raw record. ok is false when the
// field is absent, null, empty, or not representable as a string.
type Accessor func(raw Raw) (value string, ok bool)

// Field reads a top-level key, accepting strings and numbers.
func Field(key string) Accessor {
	return func(raw Raw) (string, bool) {
		return Scalar(raw[key])
	}
}

// StringField reads a top-level key, accepting only strings.
func StringField(key string) Accessor {
	return func(raw Raw) (string, bool) {
		s, ok := raw[key].(string)
		return s, ok && s != ""
	}
}

// Const always yields v; use it as the last entry of a chain for a default.
func Const(v string) Accessor {
	return func(Raw) (string, bool) {
		return v, true
	}
}

// FirstOf tries accessors in order and yields the first value found.
func FirstOf(accessors ...Accessor) Accessor {
	return func(raw Raw) (string, bool) {
		for _, a := range accessors {
			if v, ok := a(raw); ok {
				return v, true
			}
		}
		return "", false
	}
}

// Fields is FirstOf over Field for each key.
func Fields(keys ...string) Accessor {
	accessors := make([]Accessor, len(keys))
	for i, k := range keys {
		accessors[i] = Field(k)
	}
	return FirstOf(accessors...)
}

// StringFields is FirstOf over StringField for each key.
func StringFields(keys ...string) Accessor {
	accessors := make([]Accessor, len(keys))
	for i, k := range keys {
		accessors[i] = StringField(k)
	}
	return FirstOf(accessors...)
}

// FirstPresent reads the first key that is present and not null. Later keys
// are not consulted when that value is blank, so a blank id stays blank.
func FirstPresent(keys ...string) Accessor {
	return func(raw Raw) (string, bool) {
		for _, k := range keys {
			if v, found := raw[k]; found && v != nil {
				return Scalar(v)
			}
		}
		return "", false
	}
}

// FirstString reads the first key holding a string, the empty string
// included. Keys holding numbers or null are passed over.
func FirstString(keys ...string) Accessor {
	return func(raw Raw) (string, bool) {
		for _, k := range keys {
			if s, ok := raw[k].(string); ok {
				return s, s != ""
			}
		}
		return "", false
	}
}

// Get evaluates a and returns "" when nothing matched.
func (a Accessor) Get(raw Raw) string {
	v, _ := a(raw)
	return v
}

// Or evaluates a and returns def when nothing matched.
func (a Accessor) Or(raw Raw, def string) string {
	if v, ok := a(raw); ok {
		return v
	}
	return def
}

// Scalar converts a decoded JSON scalar to its string form. Empty strings,
// null, booleans, objects and arrays are not scalars for identity purposes.
func Scalar(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case json.Number:
		return t.String(), true
	case float64:
		return formatFloat(t), true
	case int:
		return formatInt(int64(t)), true
	case int64:
		return formatInt(t), true
	}
	return "", false
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
