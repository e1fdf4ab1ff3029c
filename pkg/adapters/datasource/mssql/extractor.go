package mssql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/microsoft/go-mssqldb" // sqlserver driver
	"go.uber.org/zap"

	"github.com/ekaya-inc/recon-engine/pkg/adapters/datasource"
	"github.com/ekaya-inc/recon-engine/pkg/schemarecon"
	sqlguard "github.com/ekaya-inc/recon-engine/pkg/sql"
)

// SchemaExtractor implements datasource.SchemaExtractor for SQL Server.
type SchemaExtractor struct {
	config *Config
	db     *sql.DB
	logger *zap.Logger
}

// NewSchemaExtractor creates a SQL Server schema extractor.
// If logger is nil, a no-op logger is used.
func NewSchemaExtractor(ctx context.Context, cfg *Config, logger *zap.Logger) (*SchemaExtractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlserver", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("open sqlserver connection: %w", err)
	}

	return &SchemaExtractor{
		config: cfg,
		db:     db,
		logger: logger,
	}, nil
}

// TestConnection verifies the database is reachable with valid credentials.
func (e *SchemaExtractor) TestConnection(ctx context.Context) error {
	if err := e.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping sqlserver: %w", err)
	}
	return nil
}

// Close releases the database connection.
func (e *SchemaExtractor) Close() error {
	return e.db.Close()
}

// ExtractFieldMapping returns the ordered column-name to declared-type
// mapping for a table, in column_id order. Precision/scale on numeric types
// and lengths on character types are folded into the declared type string.
func (e *SchemaExtractor) ExtractFieldMapping(ctx context.Context, schemaName, tableName string) (*schemarecon.FieldMapping, error) {
	if err := sqlguard.ValidateTableRef(schemaName, tableName); err != nil {
		return nil, err
	}
	if schemaName == "" {
		schemaName = "dbo"
	}

	query := `
	SET NOCOUNT ON;
	SELECT
	    c.name AS column_name,
	    tp.name AS data_type,
	    CASE WHEN tp.name IN ('decimal', 'numeric') THEN CAST(c.precision AS bigint) END AS numeric_precision,
	    CASE WHEN tp.name IN ('decimal', 'numeric') THEN CAST(c.scale AS bigint) END AS numeric_scale,
	    CASE
	        WHEN tp.name IN ('varchar', 'char', 'varbinary', 'binary') THEN CAST(c.max_length AS bigint)
	        WHEN tp.name IN ('nvarchar', 'nchar') AND c.max_length > 0 THEN CAST(c.max_length / 2 AS bigint)
	        WHEN tp.name IN ('nvarchar', 'nchar') THEN CAST(c.max_length AS bigint)
	    END AS character_maximum_length,
	    c.column_id AS ordinal_position,
	    c.is_nullable
	FROM sys.columns c
	INNER JOIN sys.types tp ON c.user_type_id = tp.user_type_id
	WHERE c.object_id = OBJECT_ID(QUOTENAME(@schema) + N'.' + QUOTENAME(@table))
	ORDER BY c.column_id
	`

	rows, err := e.db.QueryContext(ctx, query,
		sql.Named("schema", schemaName),
		sql.Named("table", tableName),
	)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	mapping := schemarecon.NewFieldMapping()
	count := 0
	for rows.Next() {
		var c datasource.ColumnMetadata
		if err := rows.Scan(&c.ColumnName, &c.DataType, &c.Precision, &c.Scale, &c.MaxLength, &c.OrdinalPosition, &c.IsNullable); err != nil {
			return nil, fmt.Errorf("scan column row: %w", err)
		}
		mapping.Add(c.ColumnName, c.DeclaredType())
		count++
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate column rows: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("table %s.%s has no columns or does not exist", schemaName, tableName)
	}

	e.logger.Debug("Extracted field mapping",
		zap.String("schema", schemaName),
		zap.String("table", tableName),
		zap.Int("columns", count))

	return mapping, nil
}

// Ensure SchemaExtractor implements datasource.SchemaExtractor at compile time.
var _ datasource.SchemaExtractor = (*SchemaExtractor)(nil)
