package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		duration time.Duration
		want     string
	}{
		{500 * time.Millisecond, "500ms"},
		{2 * time.Second, "2.0s"},
		{90 * time.Second, "1m30s"},
		{2 * time.Hour, "2h0m"},
		{125 * time.Minute, "2h5m"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.duration))
	}
}

func TestGetSuggestion(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"authentication failed for user", "Check your username and password in the configuration"},
		{"dependency cycle detected", "Break the circular cross-warehouse reference before migrating"},
		{"access denied to catalog", "Ensure your role can read the warehouse's object catalog"},
		{"something unexpected", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, getSuggestion(tt.message))
	}
}

func TestIndent(t *testing.T) {
	assert.Equal(t, "  a\n  b", Indent("a\nb", 2))
	assert.Equal(t, "  a\n\n  b", Indent("a\n\nb", 2))
}

func TestColorFuncPassthrough(t *testing.T) {
	// Test output is not a terminal, so color funcs should pass through
	assert.Equal(t, "hello", ColorSuccess("hello"))
}
