package model

import "time"

// Job statuses
const (
	StatusPending   = "pending"
	StatusFetching  = "fetching"
	StatusComparing = "comparing"
	StatusExporting = "exporting"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// StageMetrics represents metrics for a specific job stage
type StageMetrics struct {
	StageName        string        `json:"stage_name"`
	Status           string        `json:"status"` // "running", "completed", "failed"
	StartTime        time.Time     `json:"start_time"`
	EndTime          *time.Time    `json:"end_time,omitempty"`
	Duration         time.Duration `json:"duration"`
	RecordsProcessed int64         `json:"records_processed"`
	ErrorCount       int64         `json:"error_count"`
}

// ErrorDetail represents a detailed error with context
type ErrorDetail struct {
	Stage     string    `json:"stage"`
	ErrorType string    `json:"error_type"`
	Message   string    `json:"message"`
	Handle    string    `json:"handle,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// JobMetrics is the tracker's view of one comparison job.
type JobMetrics struct {
	JobID     string                  `json:"job_id"`
	Status    string                  `json:"status"`
	StartTime time.Time               `json:"start_time"`
	EndTime   *time.Time              `json:"end_time,omitempty"`
	Duration  time.Duration           `json:"duration"`
	RowsRead  int64                   `json:"rows_read"`
	RowsKept  int64                   `json:"rows_kept"`
	Stages    map[string]StageMetrics `json:"stages"`
	Errors    []ErrorDetail           `json:"errors"`
}
