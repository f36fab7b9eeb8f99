package record

import (
	"encoding/json"
	"strconv"
	"strings"
)

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Money renders an amount for display. Numbers get thousands separators and
// two decimals ("$1,250,000.00"); strings are shown as given ("$1250000").
// ok is false when v holds no usable amount.
func Money(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		if t == "" {
			return "", false
		}
		return "$" + t, true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return "", false
		}
		return "$" + groupThousands(f), true
	case float64:
		return "$" + groupThousands(t), true
	case int:
		return "$" + groupThousands(float64(t)), true
	}
	return "", false
}

// MoneyField is an Accessor over the first key holding a usable amount.
func MoneyField(keys ...string) Accessor {
	return func(raw Raw) (string, bool) {
		for _, k := range keys {
			if s, ok := Money(raw[k]); ok {
				return s, true
			}
		}
		return "", false
	}
}

// DatePart trims an ISO timestamp to its date: "2023-05-04T00:00:00Z" -> "2023-05-04".
func DatePart(a Accessor) Accessor {
	return func(raw Raw) (string, bool) {
		v, ok := a(raw)
		if !ok {
			return "", false
		}
		date, _, _ := strings.Cut(v, "T")
		return date, date != ""
	}
}

func groupThousands(f float64) string {
	s := strconv.FormatFloat(f, 'f', 2, 64)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}
