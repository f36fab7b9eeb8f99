package source

import (
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"github.com/teranos/wbwatch/errors"
	"github.com/teranos/wbwatch/record"
)

// Numbers decode as json.Number so identifiers keep their exact digits.
var jsonAPI = jsoniter.Config{
	EscapeHTML:             true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// Page is one decoded response of a paginated collection endpoint.
type Page struct {
	Records  []record.Raw
	Total    int  // "total" from the envelope
	Rows     int  // "rows" from the envelope; 0 when absent
	HasTotal bool // false when the envelope carries no total
}

// Envelope describes where a collection lives in a response body.
type Envelope struct {
	// Keys that may hold the collection, in order of preference. The
	// collection may be an object keyed by record id or an array.
	Keys []string
	// Skip lists entries inside an object collection that are not records.
	Skip []string
}

// Decode parses body. The collection keeps the order the service sent it in.
//
// A missing collection key yields an empty page. A collection that is
// neither an object nor an array, or a body that is not JSON, is an
// ErrMalformedResponse. A body that is itself an array is taken as the
// collection.
func (e Envelope) Decode(body []byte) (*Page, error) {
	iter := jsonAPI.BorrowIterator(body)
	defer jsonAPI.ReturnIterator(iter)

	page := &Page{}
	switch iter.WhatIsNext() {
	case jsoniter.ArrayValue:
		records, err := readCollection(iter, nil)
		if err != nil {
			return nil, err
		}
		page.Records = records
		return page, nil
	case jsoniter.ObjectValue:
	default:
		return nil, errors.Wrap(errors.ErrMalformedResponse, "body is not a JSON object")
	}

	found := make(map[string][]record.Raw)
	var shapeErr error
	iter.ReadObjectCB(func(iter *jsoniter.Iterator, field string) bool {
		switch {
		case e.isKey(field) && isCollection(iter.WhatIsNext()):
			records, err := readCollection(iter, e.Skip)
			if err != nil {
				shapeErr = err
				return false
			}
			found[field] = records
		case field == "total":
			page.Total, page.HasTotal = readInt(iter)
		case field == "rows" && !isCollection(iter.WhatIsNext()):
			page.Rows, _ = readInt(iter)
		case e.isKey(field) && iter.WhatIsNext() != jsoniter.NilValue:
			shapeErr = errors.Wrapf(errors.ErrMalformedResponse, "unexpected %q structure", field)
			return false
		default:
			iter.Skip()
		}
		return iter.Error == nil
	})
	if shapeErr != nil {
		return nil, shapeErr
	}
	if iter.Error != nil {
		return nil, errors.WithSecondaryError(
			errors.Wrap(errors.ErrMalformedResponse, "invalid JSON"), iter.Error)
	}

	for _, k := range e.Keys {
		if records, ok := found[k]; ok {
			page.Records = records
			break
		}
	}
	return page, nil
}

func (e Envelope) isKey(field string) bool {
	for _, k := range e.Keys {
		if k == field {
			return true
		}
	}
	return false
}

func isCollection(t jsoniter.ValueType) bool {
	return t == jsoniter.ObjectValue || t == jsoniter.ArrayValue
}

// readCollection reads an object or array of records. Entries that are not
// objects, and object entries named in skip, are ignored.
func readCollection(iter *jsoniter.Iterator, skip []string) ([]record.Raw, error) {
	var out []record.Raw

	readEntry := func() {
		if iter.WhatIsNext() != jsoniter.ObjectValue {
			iter.Skip()
			return
		}
		var raw record.Raw
		iter.ReadVal(&raw)
		if raw != nil {
			out = append(out, raw)
		}
	}

	if iter.WhatIsNext() == jsoniter.ArrayValue {
		for iter.ReadArray() {
			readEntry()
			if iter.Error != nil {
				break
			}
		}
	} else {
		iter.ReadObjectCB(func(iter *jsoniter.Iterator, key string) bool {
			if contains(skip, key) {
				iter.Skip()
			} else {
				readEntry()
			}
			return iter.Error == nil
		})
	}

	if iter.Error != nil {
		return nil, errors.WithSecondaryError(
			errors.Wrap(errors.ErrMalformedResponse, "invalid JSON in collection"), iter.Error)
	}
	return out, nil
}

// readInt accepts a JSON number or a numeric string
func readInt(iter *jsoniter.Iterator) (int, bool) {
	switch iter.WhatIsNext() {
	case jsoniter.NumberValue:
		n := iter.ReadNumber()
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		if f, err := n.Float64(); err == nil {
			return int(f), true
		}
	case jsoniter.StringValue:
		if i, err := strconv.Atoi(iter.ReadString()); err == nil {
			return i, true
		}
	default:
		iter.Skip()
	}
	return 0, false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
