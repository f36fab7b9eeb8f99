package errors

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesSentinel(t *testing.T) {
	wrapped := Wrap(ErrTransport, "GET https://example.org")

	assert.Contains(t, wrapped.Error(), "GET https://example.org")
	assert.True(t, Is(wrapped, ErrTransport))
	assert.True(t, IsTransport(wrapped))
	assert.False(t, IsNotConfigured(wrapped))
}

func TestIsNotConfigured(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sentinel", ErrNotConfigured, true},
		{"wrapped", Wrapf(ErrNotConfigured, "webhook %q", "REPLACE_ME"), true},
		{"other", New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNotConfigured(tt.err))
		})
	}
}

func TestNewStatusError(t *testing.T) {
	err := NewStatusError(429, "rate limited")
	require.Error(t, err)

	assert.True(t, Is(err, ErrHTTPStatus))
	assert.Contains(t, err.Error(), "status 429")
	assert.Equal(t, []string{"rate limited"}, GetAllDetails(err))
}

func TestNewStatusErrorTruncatesBody(t *testing.T) {
	err := NewStatusError(500, strings.Repeat("x", 2000))

	details := GetAllDetails(err)
	require.Len(t, details, 1)
	assert.Len(t, details[0], 515)
	assert.True(t, strings.HasSuffix(details[0], "..."))
}

func TestNewStatusErrorKeepsRunesWhole(t *testing.T) {
	body := "x" + strings.Repeat("é", 400)
	err := NewStatusError(500, body)

	details := GetAllDetails(err)
	require.Len(t, details, 1)
	assert.True(t, utf8.ValidString(details[0]))
	assert.True(t, strings.HasSuffix(details[0], "é..."))
	assert.LessOrEqual(t, len(details[0]), 515)
}

func TestTruncateBody(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"short body untouched", "ok", 2},
		{"exact limit untouched", strings.Repeat("a", 512), 512},
		{"ascii cut at limit", strings.Repeat("a", 600), 515},
		{"multibyte backs off one byte", "x" + strings.Repeat("€", 200), 511 + 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateBody(tt.body)
			assert.Len(t, got, tt.want)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestNewStatusErrorEmptyBody(t *testing.T) {
	err := NewStatusError(502, "")
	assert.Empty(t, GetAllDetails(err))
}

func TestStackTraceFormatting(t *testing.T) {
	err := Wrap(New("disk full"), "failed to save state")
	verbose := fmt.Sprintf("%+v", err)

	assert.Contains(t, verbose, "failed to save state")
	assert.Contains(t, verbose, "disk full")
	assert.Contains(t, verbose, "errors_test.go")
}
