package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"go-sqa-metrics/internal/model"
)

// SaveStageProgress upserts the progress row of one job stage.
func (db *DB) SaveStageProgress(jobID, stage, status string, start, end *time.Time, records, errorCount int64) error {
	_, err := db.Exec(`INSERT INTO stage_progress (job_id, stage, status, start_time, end_time, records_processed, error_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_id, stage) DO UPDATE SET
			status = excluded.status,
			start_time = COALESCE(excluded.start_time, stage_progress.start_time),
			end_time = excluded.end_time,
			records_processed = excluded.records_processed,
			error_count = excluded.error_count`,
		jobID, stage, status, start, end, records, errorCount)
	return err
}

// GetStageProgress returns the stages of a job in start order.
func (db *DB) GetStageProgress(jobID string) ([]model.StageMetrics, error) {
	rows, err := db.Query(`SELECT stage, status, start_time, end_time, records_processed, error_count
		FROM stage_progress WHERE job_id = ? ORDER BY start_time, stage`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stages := []model.StageMetrics{}
	for rows.Next() {
		var s model.StageMetrics
		var start, end sql.NullTime
		if err := rows.Scan(&s.StageName, &s.Status, &start, &end, &s.RecordsProcessed, &s.ErrorCount); err != nil {
			return nil, err
		}
		if start.Valid {
			s.StartTime = start.Time
		}
		if end.Valid {
			t := end.Time
			s.EndTime = &t
			s.Duration = t.Sub(s.StartTime)
		}
		stages = append(stages, s)
	}
	return stages, rows.Err()
}

// SavePipelineLog appends a log line to a job.
func (db *DB) SavePipelineLog(jobID, stage, level, message string, details map[string]interface{}) error {
	var detailsJSON []byte
	if len(details) > 0 {
		b, err := json.Marshal(details)
		if err != nil {
			return err
		}
		detailsJSON = b
	}
	_, err := db.Exec(`INSERT INTO pipeline_logs (job_id, stage, level, message, details, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		jobID, stage, level, message, string(detailsJSON), now())
	return err
}

// GetPipelineLogs returns a job's log lines in insertion order.
func (db *DB) GetPipelineLogs(jobID string) ([]model.LogEntry, error) {
	rows, err := db.Query(`SELECT id, stage, level, message, details, created_at FROM pipeline_logs WHERE job_id = ? ORDER BY id`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []model.LogEntry{}
	for rows.Next() {
		e := model.LogEntry{JobID: jobID}
		var details sql.NullString
		if err := rows.Scan(&e.ID, &e.Stage, &e.Level, &e.Message, &details, &e.CreatedAt); err != nil {
			return nil, err
		}
		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &e.Details); err != nil {
				return nil, err
			}
		}
		logs = append(logs, e)
	}
	return logs, rows.Err()
}

// SaveOutputFile records an exported artefact and returns its row id.
func (db *DB) SaveOutputFile(f model.OutputFile) (int64, error) {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now()
	}
	res, err := db.Exec(`INSERT INTO output_files (job_id, file_name, file_path, file_type, file_size, url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.JobID, f.FileName, f.FilePath, f.FileType, f.FileSize, f.URL, f.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetOutputFiles lists a job's artefacts in creation order.
func (db *DB) GetOutputFiles(jobID string) ([]model.OutputFile, error) {
	rows, err := db.Query(`SELECT id, job_id, file_name, file_path, file_type, file_size, url, created_at
		FROM output_files WHERE job_id = ? ORDER BY id`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := []model.OutputFile{}
	for rows.Next() {
		var f model.OutputFile
		if err := rows.Scan(&f.ID, &f.JobID, &f.FileName, &f.FilePath, &f.FileType, &f.FileSize, &f.URL, &f.CreatedAt); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}
