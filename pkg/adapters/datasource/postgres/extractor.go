package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ekaya-inc/recon-engine/pkg/adapters/datasource"
	"github.com/ekaya-inc/recon-engine/pkg/schemarecon"
	sqlguard "github.com/ekaya-inc/recon-engine/pkg/sql"
)

// SchemaExtractor implements datasource.SchemaExtractor for PostgreSQL.
type SchemaExtractor struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewSchemaExtractor creates a PostgreSQL schema extractor.
// If logger is nil, a no-op logger is used.
func NewSchemaExtractor(ctx context.Context, cfg *Config, logger *zap.Logger) (*SchemaExtractor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pool, err := pgxpool.New(ctx, cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	return &SchemaExtractor{
		pool:   pool,
		logger: logger,
	}, nil
}

// NewSchemaExtractorFromPool wraps an existing pool (for tests).
func NewSchemaExtractorFromPool(pool *pgxpool.Pool, logger *zap.Logger) *SchemaExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchemaExtractor{pool: pool, logger: logger}
}

// TestConnection verifies the database is reachable with valid credentials.
func (e *SchemaExtractor) TestConnection(ctx context.Context) error {
	if err := e.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (e *SchemaExtractor) Close() error {
	if e.pool != nil {
		e.pool.Close()
	}
	return nil
}

// ExtractFieldMapping returns the ordered column-name to declared-type
// mapping for a table, in ordinal column order. Numeric precision/scale and
// character lengths are folded into the declared type string so the matcher
// sees declarations like "numeric(38,0)" and "varchar(255)".
func (e *SchemaExtractor) ExtractFieldMapping(ctx context.Context, schemaName, tableName string) (*schemarecon.FieldMapping, error) {
	if err := sqlguard.ValidateTableRef(schemaName, tableName); err != nil {
		return nil, err
	}
	if schemaName == "" {
		schemaName = "public"
	}

	const query = `
		SELECT
			c.column_name,
			c.data_type,
			CASE WHEN c.data_type IN ('numeric', 'decimal') THEN c.numeric_precision::bigint END,
			CASE WHEN c.data_type IN ('numeric', 'decimal') THEN c.numeric_scale::bigint END,
			c.character_maximum_length::bigint,
			c.ordinal_position,
			c.is_nullable = 'YES' AS is_nullable
		FROM information_schema.columns c
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position
	`

	rows, err := e.pool.Query(ctx, query, schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	mapping := schemarecon.NewFieldMapping()
	count := 0
	for rows.Next() {
		var c datasource.ColumnMetadata
		if err := rows.Scan(&c.ColumnName, &c.DataType, &c.Precision, &c.Scale, &c.MaxLength, &c.OrdinalPosition, &c.IsNullable); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		mapping.Add(c.ColumnName, c.DeclaredType())
		count++
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
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
