package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/recon-engine/pkg/adapters/datasource"
	"github.com/ekaya-inc/recon-engine/pkg/config"
	"github.com/ekaya-inc/recon-engine/pkg/models"
	"github.com/ekaya-inc/recon-engine/pkg/repositories"
	"github.com/ekaya-inc/recon-engine/pkg/retry"
	"github.com/ekaya-inc/recon-engine/pkg/schemarecon"
)

// ReconcileService runs reconciliation jobs: it resolves both schemas,
// matches them, and optionally persists the outcome.
type ReconcileService struct {
	factory datasource.ExtractorFactory
	results repositories.ResultsRepository
	logger  *zap.Logger
}

// NewReconcileService creates a ReconcileService. The results repository may
// be nil, in which case runs are not persisted. If logger is nil, a no-op
// logger is used.
func NewReconcileService(factory datasource.ExtractorFactory, results repositories.ResultsRepository, logger *zap.Logger) *ReconcileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconcileService{
		factory: factory,
		results: results,
		logger:  logger,
	}
}

// Run executes one reconciliation job and returns the completed run.
// A run whose columns fail to match is still a successful Run call; only
// resolution and allow-list errors are returned as errors.
func (s *ReconcileService) Run(ctx context.Context, job *config.JobSpec) (*models.ValidationRun, error) {
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job: %w", err)
	}

	startedAt := time.Now().UTC()

	source, sourceName, err := s.resolveSide(ctx, job, &job.Source)
	if err != nil {
		return nil, fmt.Errorf("resolve source schema: %w", err)
	}

	target, targetName, err := s.resolveSide(ctx, job, &job.Target)
	if err != nil {
		return nil, fmt.Errorf("resolve target schema: %w", err)
	}

	rows, err := schemarecon.Match(source, target, job.ExclusionColumns, job.AllowListSpec)
	if err != nil {
		return nil, fmt.Errorf("match schemas: %w", err)
	}

	run := &models.ValidationRun{
		ID:          uuid.New(),
		SourceName:  sourceName,
		TargetName:  targetName,
		Labels:      job.Labels,
		StartedAt:   startedAt,
		CompletedAt: time.Now().UTC(),
		Rows:        rows,
		Summary:     models.Summarize(rows),
	}

	s.logger.Info("Reconciliation run completed",
		zap.String("run_id", run.ID.String()),
		zap.String("source", sourceName),
		zap.String("target", targetName),
		zap.Int("total_columns", run.Summary.TotalColumns),
		zap.Int("fail_count", run.Summary.FailCount),
		zap.String("status", run.Summary.Status))

	if s.results != nil {
		if err := s.results.SaveRun(ctx, run); err != nil {
			return nil, fmt.Errorf("persist run: %w", err)
		}
	}

	return run, nil
}

// resolveSide turns one side of the job into an ordered field mapping, either
// from the inline field list or by reading a live table's columns.
func (s *ReconcileService) resolveSide(ctx context.Context, job *config.JobSpec, side *config.SideSpec) (*schemarecon.FieldMapping, string, error) {
	if side.Inline() {
		mapping := schemarecon.NewFieldMapping()
		for _, f := range side.Fields {
			mapping.Add(f.Name, f.Type)
		}
		return mapping, "inline", nil
	}

	ds := job.Datasources[side.Datasource]

	extractor, err := s.factory.NewSchemaExtractor(ctx, ds.Type, ds.Options)
	if err != nil {
		return nil, "", fmt.Errorf("create %s extractor for %q: %w", ds.Type, side.Datasource, err)
	}
	defer func() {
		if closeErr := extractor.Close(); closeErr != nil {
			s.logger.Warn("Failed to close schema extractor",
				zap.String("datasource", side.Datasource),
				zap.Error(closeErr))
		}
	}()

	// Transient connection failures are retried; bad identifiers and missing
	// tables fail immediately.
	mapping, err := retry.DoIfRetryableWithResult(ctx, nil, func() (*schemarecon.FieldMapping, error) {
		return extractor.ExtractFieldMapping(ctx, side.Schema, side.Table)
	})
	if err != nil {
		return nil, "", fmt.Errorf("extract field mapping from %q: %w", side.Datasource, err)
	}

	name := sideName(side)
	s.logger.Debug("Resolved side schema",
		zap.String("side", name),
		zap.Int("columns", mapping.Len()))

	return mapping, name, nil
}

func sideName(side *config.SideSpec) string {
	parts := []string{side.Datasource}
	if side.Schema != "" {
		parts = append(parts, side.Schema)
	}
	parts = append(parts, side.Table)
	return strings.Join(parts, ".")
}
