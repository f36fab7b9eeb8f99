package state

import (
	"encoding/json"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"github.com/teranos/wbwatch/errors"
)

var jsonAPI = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// encodeMap renders m as indented JSON with sorted keys
func encodeMap(m Map) ([]byte, error) {
	if m == nil {
		m = Map{}
	}
	data, err := jsonAPI.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode state")
	}
	return append(data, '\n'), nil
}

// decodeMap parses a state document. Two shapes are accepted:
//
//	{"P100": "2024-01-01", ...}   id to marker
//	["P100", "P200"]              legacy list of ids; markers are ""
//
// Non-string values are converted to their text form. Anything else is
// ErrCorrupt, returned together with an empty Map.
func decodeMap(data []byte) (Map, error) {
	var doc interface{}
	if err := jsonAPI.Unmarshal(data, &doc); err != nil {
		return Map{}, errors.WithSecondaryError(errors.Wrap(ErrCorrupt, "invalid JSON"), err)
	}

	switch t := doc.(type) {
	case map[string]interface{}:
		m := make(Map, len(t))
		for k, v := range t {
			m[k] = text(v)
		}
		return m, nil
	case []interface{}:
		m := make(Map, len(t))
		for _, item := range t {
			if id := text(item); id != "" {
				m[id] = ""
			}
		}
		return m, nil
	}
	return Map{}, errors.Wrap(ErrCorrupt, "state is neither an object nor a list")
}

func text(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	}
	data, err := jsonAPI.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
