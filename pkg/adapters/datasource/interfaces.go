package datasource

import (
	"context"

	"github.com/ekaya-inc/recon-engine/pkg/schemarecon"
)

// SchemaExtractor reads one side's declared schema out of a live datasource.
// Each implementation owns its connection and must be closed when done.
type SchemaExtractor interface {
	// TestConnection verifies the datasource is reachable with valid
	// credentials. Returns nil if the connection is healthy.
	TestConnection(ctx context.Context) error

	// ExtractFieldMapping returns the ordered column-name to declared-type
	// mapping for a table, in the engine's ordinal column order. The
	// declared types are rendered the way the owning engine spells them,
	// including precision/scale (e.g. "decimal(38,0)", "varchar(255)").
	ExtractFieldMapping(ctx context.Context, schemaName, tableName string) (*schemarecon.FieldMapping, error)

	// Close releases the datasource connection.
	Close() error
}
