package datasource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func int64p(v int64) *int64 { return &v }

func TestDeclaredType(t *testing.T) {
	tests := []struct {
		name     string
		col      ColumnMetadata
		expected string
	}{
		{
			name:     "bare type",
			col:      ColumnMetadata{DataType: "bigint"},
			expected: "bigint",
		},
		{
			name:     "precision and scale",
			col:      ColumnMetadata{DataType: "decimal", Precision: int64p(38), Scale: int64p(0)},
			expected: "decimal(38,0)",
		},
		{
			name:     "precision only",
			col:      ColumnMetadata{DataType: "decimal", Precision: int64p(10)},
			expected: "decimal(10)",
		},
		{
			name:     "character length",
			col:      ColumnMetadata{DataType: "varchar", MaxLength: int64p(255)},
			expected: "varchar(255)",
		},
		{
			name:     "unbounded text ignores length",
			col:      ColumnMetadata{DataType: "text", MaxLength: int64p(-1)},
			expected: "text",
		},
		{
			name:     "whitespace trimmed from base type",
			col:      ColumnMetadata{DataType: " numeric ", Precision: int64p(9), Scale: int64p(2)},
			expected: "numeric(9,2)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.col.DeclaredType())
		})
	}
}
