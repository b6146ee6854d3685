package model

import "time"

// Result is the stored metadata of one uploaded report.
type Result struct {
	ID        string    `json:"id"`
	Project   string    `json:"project"`
	Version   string    `json:"version"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`      // subjective, objective
	FilePath  string    `json:"file_path"` // local path under the data dir or http(s) URL
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName is the label used for the result in charts and rankings.
func (r Result) DisplayName() string {
	if r.Version != "" && r.Name != "" {
		return r.Version + " / " + r.Name
	}
	if r.Name != "" {
		return r.Name
	}
	return r.Version
}

// ComparisonJobSpec is the body of POST /api/v1/comparisons
type ComparisonJobSpec struct {
	ResultIDs []string    `json:"result_ids"`           // two or more stored results
	Baseline  int         `json:"baseline"`             // index into ResultIDs
	Metrics   []string    `json:"metrics,omitempty"`    // optional metric filter
	Filter    *FilterSpec `json:"filter,omitempty"`     // applied to every result
	Threshold float64     `json:"threshold"`            // improvement/degradation band
	ChartKind string      `json:"chart_kind,omitempty"` // bar, line
	Timeout   string      `json:"timeout,omitempty"`    // e.g. "2m"
}

// AggregateRequest is the body of POST /api/v1/results/{id}/aggregate
type AggregateRequest struct {
	GroupBy    GroupBy    `json:"group_by"`
	Filter     FilterSpec `json:"filter"`
	NoiseTypes []string   `json:"noise_types,omitempty"` // restriction for joint grouping
	Category   Dimension  `json:"category,omitempty"`
	Series     Dimension  `json:"series,omitempty"`
}

// OutputFile is an artefact written by a comparison job.
type OutputFile struct {
	ID        int64     `json:"id"`
	JobID     string    `json:"job_id"`
	FileName  string    `json:"file_name"`
	FilePath  string    `json:"file_path"`
	FileType  string    `json:"file_type"`
	FileSize  int64     `json:"file_size"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// ComparisonJob is a stored comparison request and, once completed, its summary.
type ComparisonJob struct {
	ID        string            `json:"id"`
	Spec      ComparisonJobSpec `json:"spec"`
	Status    string            `json:"status"`
	Summary   *Comparison       `json:"summary,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// LogEntry is one persisted job log line.
type LogEntry struct {
	ID        int64                  `json:"id"`
	JobID     string                 `json:"job_id"`
	Stage     string                 `json:"stage"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}
