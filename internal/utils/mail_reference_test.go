package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMailReference(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		thread   string
		url      string
		expectOK bool
	}{
		{
			name:     "inbox url",
			input:    "https://mail.google.com/mail/u/0/#inbox/18c2f0a9b7d3e4f1",
			thread:   "18c2f0a9b7d3e4f1",
			url:      "https://mail.google.com/mail/u/0/#inbox/18c2f0a9b7d3e4f1",
			expectOK: true,
		},
		{
			name:     "all mail url with surrounding spaces",
			input:    "  https://mail.google.com/mail/u/1/#all/ABCDEF0123456789  ",
			thread:   "ABCDEF0123456789",
			url:      "https://mail.google.com/mail/u/1/#all/ABCDEF0123456789",
			expectOK: true,
		},
		{
			name:     "bare thread id",
			input:    "18c2f0a9b7d3",
			thread:   "18c2f0a9b7d3",
			url:      "https://mail.google.com/mail/u/0/#all/18c2f0a9b7d3",
			expectOK: true,
		},
		{
			name:  "bare id too short",
			input: "18c2f0a9",
		},
		{
			name:  "url without thread",
			input: "https://mail.google.com/mail/u/0/#inbox",
		},
		{
			name:  "non hex thread",
			input: "https://mail.google.com/mail/u/0/#inbox/FMfcgzQXJ",
		},
		{
			name:  "unrelated url",
			input: "https://example.com/#inbox/18c2f0a9b7d3e4f1",
		},
		{
			name:  "empty",
			input: "   ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, ok := ParseMailReference(tt.input)
			assert.Equal(t, tt.expectOK, ok)
			assert.Equal(t, tt.thread, ref.ThreadID)
			assert.Equal(t, tt.url, ref.URL)
		})
	}
}
