package datasource

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/recon-engine/pkg/apperrors"
)

// ExtractorFactory creates schema extractors from the registry.
type ExtractorFactory interface {
	// NewSchemaExtractor creates a schema extractor for the given datasource type.
	NewSchemaExtractor(ctx context.Context, dsType string, config map[string]any) (SchemaExtractor, error)

	// ListTypes returns info for all registered adapter types.
	ListTypes() []AdapterInfo
}

type registryFactory struct {
	logger *zap.Logger
}

// NewExtractorFactory returns a factory backed by the global registry.
// If logger is nil, a no-op logger is used.
func NewExtractorFactory(logger *zap.Logger) ExtractorFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &registryFactory{logger: logger}
}

func (f *registryFactory) NewSchemaExtractor(ctx context.Context, dsType string, config map[string]any) (SchemaExtractor, error) {
	factory := GetSchemaExtractorFactory(dsType)
	if factory == nil {
		return nil, fmt.Errorf("%w: %s (not compiled in)", apperrors.ErrUnknownDatasourceType, dsType)
	}
	return factory(ctx, config, f.logger)
}

func (f *registryFactory) ListTypes() []AdapterInfo {
	return RegisteredAdapters()
}

// Ensure registryFactory implements ExtractorFactory at compile time.
var _ ExtractorFactory = (*registryFactory)(nil)
