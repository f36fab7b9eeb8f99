package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatches(t *testing.T) {
	gis := New([]string{"GIS"})

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"lower-case occurrence", "this project uses gis tools", true},
		{"no relevant terms", "no relevant terms", false},
		{"substring inside another word", "the logistics team", true},
		{"upper-case text", "NATIONAL GIS STRATEGY", true},
		{"empty text", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gis.Matches(tt.text))
		})
	}
}

func TestMultiWordKeywords(t *testing.T) {
	m := New([]string{"Remote Sensing", "Land Administration"})

	assert.True(t, m.Matches("Support to land administration reform"))
	assert.False(t, m.Matches("remote\nsensing"), "keywords are matched literally")
}

func TestFirstMatchUsesConfiguredOrder(t *testing.T) {
	m := New([]string{"Mapping", "Map"})

	k, ok := m.FirstMatch("flood risk mapping")
	assert.True(t, ok)
	assert.Equal(t, "mapping", k)
}

func TestEmptyKeywordsAreDropped(t *testing.T) {
	m := New([]string{"", "drone", ""})
	assert.Equal(t, 1, m.Len())
	assert.False(t, m.Matches("anything at all"))

	none := New(nil)
	assert.False(t, none.Matches("GIS"))
}
