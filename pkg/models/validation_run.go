package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ekaya-inc/recon-engine/pkg/schemarecon"
)

// Run statuses aggregate per-column results: a run succeeds only when every
// emitted row succeeded.
const (
	RunStatusSuccess = "success"
	RunStatusFail    = "fail"
)

// ValidationRun is one completed schema reconciliation: the per-column match
// rows plus identifying metadata and an aggregate summary.
type ValidationRun struct {
	ID          uuid.UUID              `json:"id"`
	SourceName  string                 `json:"source_name"`
	TargetName  string                 `json:"target_name"`
	Labels      map[string]string      `json:"labels,omitempty"`
	StartedAt   time.Time              `json:"started_at"`
	CompletedAt time.Time              `json:"completed_at"`
	Rows        []schemarecon.MatchRow `json:"rows"`
	Summary     ValidationSummary      `json:"summary"`
}

// ValidationSummary aggregates row outcomes for pass/fail reporting.
type ValidationSummary struct {
	TotalColumns int    `json:"total_columns"`
	SuccessCount int    `json:"success_count"`
	FailCount    int    `json:"fail_count"`
	Status       string `json:"status"`
}

// Summarize computes the aggregate summary for a row sequence. An empty run
// has nothing to fail and counts as success.
func Summarize(rows []schemarecon.MatchRow) ValidationSummary {
	summary := ValidationSummary{TotalColumns: len(rows), Status: RunStatusSuccess}
	for _, row := range rows {
		if row.Status == schemarecon.StatusSuccess {
			summary.SuccessCount++
		} else {
			summary.FailCount++
			summary.Status = RunStatusFail
		}
	}
	return summary
}
