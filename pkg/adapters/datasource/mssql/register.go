package mssql

import (
	"context"

	"go.uber.org/zap"

	"github.com/ekaya-inc/recon-engine/pkg/adapters/datasource"
)

func init() {
	datasource.Register(datasource.AdapterRegistration{
		Info: datasource.AdapterInfo{
			Type:        "sqlserver",
			DisplayName: "Microsoft SQL Server",
			Description: "SQL Server 2017+, Azure SQL Database",
		},
		SchemaExtractorFactory: func(ctx context.Context, config map[string]any, logger *zap.Logger) (datasource.SchemaExtractor, error) {
			cfg, err := FromMap(config)
			if err != nil {
				return nil, err
			}
			return NewSchemaExtractor(ctx, cfg, logger)
		},
	})
}
