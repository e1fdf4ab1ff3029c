package sql

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ekaya-inc/recon-engine/pkg/apperrors"
)

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple table", "customers", false},
		{"underscored", "order_items", false},
		{"leading underscore", "_staging", false},
		{"dollar suffix", "tmp$1", false},
		{"empty", "", true},
		{"embedded quote", `orders"; DROP TABLE users--`, true},
		{"semicolon", "orders;delete", true},
		{"whitespace", "order items", true},
		{"leading digit", "1orders", true},
		{"classic injection", "x' OR '1'='1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifier("table", tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, apperrors.ErrUnsafeIdentifier))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateIdentifierLength(t *testing.T) {
	long := make([]byte, MaxIdentifierLength+1)
	for i := range long {
		long[i] = 'a'
	}
	assert.Error(t, ValidateIdentifier("table", string(long)))
	assert.NoError(t, ValidateIdentifier("table", string(long[:MaxIdentifierLength])))
}

func TestValidateTableRef(t *testing.T) {
	assert.NoError(t, ValidateTableRef("public", "customers"))
	assert.NoError(t, ValidateTableRef("", "customers"))
	assert.Error(t, ValidateTableRef("bad schema", "customers"))
	assert.Error(t, ValidateTableRef("public", ""))
}
