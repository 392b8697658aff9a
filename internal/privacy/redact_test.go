package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripQueryKeys(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "google key parameter",
			input:    `Get "https://factchecktools.googleapis.com/v1alpha1/claims:search?key=AIzaSecret&query=earth": dial tcp: i/o timeout`,
			expected: `Get "https://factchecktools.googleapis.com/v1alpha1/claims:search?key=REDACTED&query=earth": dial tcp: i/o timeout`,
		},
		{
			name:     "key after other parameters",
			input:    "https://example.com/s?query=earth&key=abc123",
			expected: "https://example.com/s?query=earth&key=REDACTED",
		},
		{
			name:     "apiKey and token",
			input:    "https://example.com/?apiKey=abc&access_token=xyz",
			expected: "https://example.com/?apiKey=REDACTED&access_token=REDACTED",
		},
		{
			name:     "unrelated parameter kept",
			input:    "https://example.com/?keyword=earth",
			expected: "https://example.com/?keyword=earth",
		},
		{
			name:     "no url",
			input:    "plain text",
			expected: "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripQueryKeys(tt.input))
		})
	}
}

func TestStripPasswords(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "postgres url",
			input:    "postgres://flow:hunter2@db:5432/flowcheck",
			expected: "postgres://flow:REDACTED@db:5432/flowcheck",
		},
		{
			name:     "redis url without user",
			input:    "redis://:s3cret@cache:6379/0",
			expected: "redis://:REDACTED@cache:6379/0",
		},
		{
			name:     "no password",
			input:    "redis://cache:6379",
			expected: "redis://cache:6379",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripPasswords(tt.input))
		})
	}
}

func TestClean(t *testing.T) {
	assert.Equal(t, "postgres://u:REDACTED@h/db?key=REDACTED",
		Clean("  postgres://u:p@h/db?key=k  "))
	assert.Equal(t, "", Clean("   "))
}

func TestMask(t *testing.T) {
	assert.Equal(t, "", Mask(""))
	assert.Equal(t, "***", Mask("secret"))
}
