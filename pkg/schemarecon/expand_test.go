package schemarecon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrecisionScaleRangePattern(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"0-3", []string{"0", "3"}},
		{"6-11", []string{"6", "11"}},
		{"10-18", []string{"10", "18"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m := PrecisionScaleRangePattern.FindStringSubmatch(tt.input)
			require.NotNil(t, m)
			assert.Equal(t, tt.expected, m[1:])
		})
	}
}

func TestExpandPrecisionRange(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"", []string{""}},
		{"0", []string{"0"}},
		{"3", []string{"3"}},
		{"UTC", []string{"UTC"}},
		{"0-1)", []string{"0", "1"}},
		{"0-1", []string{"0", "1"}},
		{"7-11)", []string{"7", "8", "9", "10", "11"}},
		{"7-11", []string{"7", "8", "9", "10", "11"}},
		{"10-13)", []string{"10", "11", "12", "13"}},
		{"19-21)", []string{"19", "20", "21"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ExpandPrecisionRange(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExpandPrecisionRangeReversedBounds(t *testing.T) {
	_, err := ExpandPrecisionRange("5-2)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reversed range")
}

func TestExpandTypeRange(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"", []string{""}},
		{"int32", []string{"int32"}},
		{"!int32", []string{"!int32"}},
		{"decimal(1)", []string{"decimal(1)"}},
		{"decimal(1,0)", []string{"decimal(1,0)"}},
		{"decimal(1, 0)", []string{"decimal(1,0)"}},
		{"decimal(1-2,0)", []string{"decimal(1,0)", "decimal(2,0)"}},
		{"!decimal(1-2,0)", []string{"!decimal(1,0)", "!decimal(2,0)"}},
		{"decimal(9-11,5)", []string{"decimal(9,5)", "decimal(10,5)", "decimal(11,5)"}},
		{"decimal(12,0-2)", []string{"decimal(12,0)", "decimal(12,1)", "decimal(12,2)"}},
		{"decimal(4-5,1-2)", []string{"decimal(4,1)", "decimal(4,2)", "decimal(5,1)", "decimal(5,2)"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ExpandTypeRange(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExpandTypeRangeCrossProductSize(t *testing.T) {
	// Ranges spanning Np and Ns values must produce exactly Np*Ns entries.
	got, err := ExpandTypeRange("decimal(1-4,0-2)")
	require.NoError(t, err)
	assert.Len(t, got, 4*3)

	got, err = ExpandTypeRange("!decimal(1-4,0-2)")
	require.NoError(t, err)
	require.Len(t, got, 4*3)
	for _, v := range got {
		assert.Equal(t, byte('!'), v[0])
	}
}

func TestExpandTypeRangeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"reversed precision", "decimal(9-1,0)"},
		{"reversed scale", "decimal(10,5-2)"},
		{"oversized range", "decimal(0-100000,0)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExpandTypeRange(tt.input)
			assert.Error(t, err)
		})
	}
}
