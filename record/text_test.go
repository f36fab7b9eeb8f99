package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractProjectText(t *testing.T) {
	raw := Raw{
		"project_name": "Land Administration Project",
		"project_abstract": map[string]interface{}{
			"cdata": "Supports cadastral mapping.",
			"lang":  7,
		},
	}

	got := Extract(raw, Text("project_name"), TextValues("project_abstract"))
	assert.Equal(t, "Land Administration Project \nSupports cadastral mapping.", got)
}

func TestExtractSkipsAbsentAndNonString(t *testing.T) {
	raw := Raw{"notice_title": nil, "description": 12, "summary": "GIS services"}

	got := Extract(raw, Text("notice_title"), Text("tender_title"), Text("description"), Text("summary"))
	assert.Equal(t, "GIS services", got)
	assert.Equal(t, "", Extract(Raw{}, Text("summary")))
}

func TestExtractDocumentText(t *testing.T) {
	raw := Raw{
		"display_title": "Nigeria - Procurement Plan",
		"docna": map[string]interface{}{
			"1": map[string]interface{}{"docna": "Second"},
			"0": map[string]interface{}{"docna": "First"},
		},
		"theme": "Land administration",
		"subsc": nil,
		"sectr": []interface{}{
			map[string]interface{}{"sector": "Agriculture"},
			"not an object",
		},
	}

	got := Extract(raw,
		Text("display_title"),
		TextEach("docna", "docna"),
		Text("theme"),
		Text("subsc"),
		TextEach("sectr", "sector"),
	)
	assert.Equal(t, "Nigeria - Procurement Plan \nFirst \nSecond \nLand administration \nAgriculture", got)
}

func TestStrings(t *testing.T) {
	assert.Equal(t, []string{"NG", "GH"}, Strings(Raw{"countrycode": []interface{}{"NG", 3, "GH"}}, "countrycode"))
	assert.Equal(t, []string{"NG"}, Strings(Raw{"countrycode": "NG"}, "countrycode"))
	assert.Nil(t, Strings(Raw{}, "countrycode"))
}
