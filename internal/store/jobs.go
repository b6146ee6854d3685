package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"go-sqa-metrics/internal/model"
)

// SaveJob stores a new comparison job in the pending state.
func (db *DB) SaveJob(jobID string, spec model.ComparisonJobSpec) error {
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return err
	}
	ts := now()
	_, err = db.Exec(`INSERT INTO comparison_jobs (id, spec, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		jobID, string(specJSON), model.StatusPending, ts, ts)
	return err
}

// GetJob fetches a job with its spec and, when present, its summary.
func (db *DB) GetJob(jobID string) (*model.ComparisonJob, error) {
	var specJSON string
	var summaryJSON sql.NullString
	job := &model.ComparisonJob{ID: jobID}
	err := db.QueryRow(`SELECT spec, status, summary, created_at, updated_at FROM comparison_jobs WHERE id = ?`, jobID).
		Scan(&specJSON, &job.Status, &summaryJSON, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "job", jobID)
	}
	if err := json.Unmarshal([]byte(specJSON), &job.Spec); err != nil {
		return nil, fmt.Errorf("decode job spec: %w", err)
	}
	if summaryJSON.Valid && summaryJSON.String != "" {
		job.Summary = &model.Comparison{}
		if err := json.Unmarshal([]byte(summaryJSON.String), job.Summary); err != nil {
			return nil, fmt.Errorf("decode job summary: %w", err)
		}
	}
	return job, nil
}

// ListJobs returns all jobs without their summaries, newest first.
func (db *DB) ListJobs() ([]model.ComparisonJob, error) {
	rows, err := db.Query(`SELECT id, spec, status, created_at, updated_at FROM comparison_jobs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []model.ComparisonJob{}
	for rows.Next() {
		var job model.ComparisonJob
		var specJSON string
		if err := rows.Scan(&job.ID, &specJSON, &job.Status, &job.CreatedAt, &job.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(specJSON), &job.Spec); err != nil {
			return nil, fmt.Errorf("decode job spec %s: %w", job.ID, err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// UpdateJobStatus updates job status
func (db *DB) UpdateJobStatus(jobID, status string) error {
	_, err := db.Exec(`UPDATE comparison_jobs SET status = ?, updated_at = ? WHERE id = ?`, status, now(), jobID)
	return err
}

// SaveJobSummary stores the computed comparison of a job.
func (db *DB) SaveJobSummary(jobID string, summary *model.Comparison) error {
	b, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	_, err = db.Exec(`UPDATE comparison_jobs SET summary = ?, updated_at = ? WHERE id = ?`, string(b), now(), jobID)
	return err
}

// SaveJobError records an error for a job
func (db *DB) SaveJobError(jobID string, detail model.ErrorDetail) error {
	if detail.Timestamp.IsZero() {
		detail.Timestamp = now()
	}
	_, err := db.Exec(`INSERT INTO job_errors (job_id, stage, error_type, handle, error_message, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		jobID, detail.Stage, detail.ErrorType, detail.Handle, detail.Message, detail.Timestamp)
	return err
}

// GetJobErrors returns a job's errors in the order they were recorded.
func (db *DB) GetJobErrors(jobID string) ([]model.ErrorDetail, error) {
	rows, err := db.Query(`SELECT stage, error_type, handle, error_message, created_at FROM job_errors WHERE job_id = ? ORDER BY id`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := []model.ErrorDetail{}
	for rows.Next() {
		var d model.ErrorDetail
		if err := rows.Scan(&d.Stage, &d.ErrorType, &d.Handle, &d.Message, &d.Timestamp); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
