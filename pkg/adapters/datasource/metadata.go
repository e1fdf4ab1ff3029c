package datasource

import (
	"fmt"
	"strings"
)

// ColumnMetadata represents one discovered column as the owning engine
// declares it.
type ColumnMetadata struct {
	ColumnName      string
	DataType        string // base type name, e.g. "numeric", "varchar"
	Precision       *int64 // numeric precision, when declared
	Scale           *int64 // numeric scale, when declared
	MaxLength       *int64 // character maximum length, when declared
	OrdinalPosition int
	IsNullable      bool
}

// DeclaredType renders the column's full type declaration string, carrying
// precision/scale or length modifiers the way the engine would spell them.
// This string is the matcher's input, so rendering must be deterministic.
func (c *ColumnMetadata) DeclaredType() string {
	base := strings.TrimSpace(c.DataType)

	switch {
	case c.Precision != nil && c.Scale != nil:
		return fmt.Sprintf("%s(%d,%d)", base, *c.Precision, *c.Scale)
	case c.Precision != nil:
		return fmt.Sprintf("%s(%d)", base, *c.Precision)
	case c.MaxLength != nil && *c.MaxLength > 0:
		return fmt.Sprintf("%s(%d)", base, *c.MaxLength)
	default:
		return base
	}
}
