package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ekaya-inc/recon-engine/pkg/apperrors"
	"github.com/ekaya-inc/recon-engine/pkg/database"
	"github.com/ekaya-inc/recon-engine/pkg/models"
	"github.com/ekaya-inc/recon-engine/pkg/schemarecon"
)

// ResultsRepository provides data access for persisted validation runs.
type ResultsRepository interface {
	SaveRun(ctx context.Context, run *models.ValidationRun) error
	GetRun(ctx context.Context, runID uuid.UUID) (*models.ValidationRun, error)
	ListRuns(ctx context.Context, limit int) ([]*models.ValidationRun, error)
}

type resultsRepository struct {
	db *database.DB
}

// NewResultsRepository creates a ResultsRepository backed by the given pool.
func NewResultsRepository(db *database.DB) ResultsRepository {
	return &resultsRepository{db: db}
}

var _ ResultsRepository = (*resultsRepository)(nil)

func (r *resultsRepository) SaveRun(ctx context.Context, run *models.ValidationRun) error {
	labels, err := json.Marshal(run.Labels)
	if err != nil {
		return fmt.Errorf("failed to marshal run labels: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO recon_validation_runs
			(id, source_name, target_name, labels, total_columns,
			 success_count, fail_count, run_status, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		run.ID, run.SourceName, run.TargetName, labels,
		run.Summary.TotalColumns, run.Summary.SuccessCount, run.Summary.FailCount,
		run.Summary.Status, run.StartedAt, run.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to insert validation run: %w", err)
	}

	for i, row := range run.Rows {
		_, err = tx.Exec(ctx, `
			INSERT INTO recon_validation_results
				(run_id, row_index, source_column_name, target_column_name,
				 source_agg_value, target_agg_value, validation_status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			run.ID, i, row.SourceColumn, row.TargetColumn,
			row.SourceType, row.TargetType, row.Status)
		if err != nil {
			return fmt.Errorf("failed to insert validation result row %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit validation run: %w", err)
	}
	return nil
}

func (r *resultsRepository) GetRun(ctx context.Context, runID uuid.UUID) (*models.ValidationRun, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, source_name, target_name, labels, total_columns,
		       success_count, fail_count, run_status, started_at, completed_at
		FROM recon_validation_runs
		WHERE id = $1`, runID)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("validation run %s: %w", runID, apperrors.ErrNotFound)
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT source_column_name, target_column_name,
		       source_agg_value, target_agg_value, validation_status
		FROM recon_validation_results
		WHERE run_id = $1
		ORDER BY row_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query validation results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var result schemarecon.MatchRow
		if err := rows.Scan(&result.SourceColumn, &result.TargetColumn,
			&result.SourceType, &result.TargetType, &result.Status); err != nil {
			return nil, fmt.Errorf("failed to scan validation result: %w", err)
		}
		run.Rows = append(run.Rows, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating validation results: %w", err)
	}

	return run, nil
}

func (r *resultsRepository) ListRuns(ctx context.Context, limit int) ([]*models.ValidationRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, source_name, target_name, labels, total_columns,
		       success_count, fail_count, run_status, started_at, completed_at
		FROM recon_validation_runs
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list validation runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.ValidationRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating validation runs: %w", err)
	}

	return runs, nil
}

func scanRun(row pgx.Row) (*models.ValidationRun, error) {
	var run models.ValidationRun
	var labels []byte
	if err := row.Scan(&run.ID, &run.SourceName, &run.TargetName, &labels,
		&run.Summary.TotalColumns, &run.Summary.SuccessCount, &run.Summary.FailCount,
		&run.Summary.Status, &run.StartedAt, &run.CompletedAt); err != nil {
		return nil, fmt.Errorf("failed to scan validation run: %w", err)
	}
	if len(labels) > 0 {
		if err := json.Unmarshal(labels, &run.Labels); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run labels: %w", err)
		}
	}
	return &run, nil
}
