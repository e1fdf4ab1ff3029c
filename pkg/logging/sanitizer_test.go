package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeConnectionString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
		{
			name:     "keyword dsn",
			input:    "host=db port=5432 user=recon password=hunter2 dbname=prod",
			expected: "host=db port=5432 user=recon password=[REDACTED] dbname=prod",
		},
		{
			name:     "url credentials",
			input:    "postgres://recon:hunter2@db:5432/prod",
			expected: "postgres://[REDACTED]@[REDACTED]/prod",
		},
		{
			name:     "no secrets",
			input:    "host=db dbname=prod sslmode=disable",
			expected: "host=db dbname=prod sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeConnectionString(tt.input))
		})
	}
}

func TestSanitizeError(t *testing.T) {
	assert.Equal(t, "", SanitizeError(nil))

	err := errors.New("connect failed: password=topsecret refused")
	assert.Equal(t, "connect failed: password=[REDACTED] refused", SanitizeError(err))
}
