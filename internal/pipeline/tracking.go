package pipeline

import (
	"sync"
	"time"

	"go-sqa-metrics/internal/model"
	"go-sqa-metrics/internal/monitoring"
)

// ProgressStore persists stage progress, errors and log lines of a job.
type ProgressStore interface {
	SaveStageProgress(jobID, stage, status string, start, end *time.Time, records, errorCount int64) error
	SaveJobError(jobID string, detail model.ErrorDetail) error
	SavePipelineLog(jobID, stage, level, message string, details map[string]interface{}) error
}

// JobTracker records the progress of one comparison job in memory and,
// when a store is attached, in the database.
type JobTracker struct {
	mu      sync.RWMutex
	store   ProgressStore
	metrics model.JobMetrics
}

func NewJobTracker(jobID string, store ProgressStore) *JobTracker {
	return &JobTracker{
		store: store,
		metrics: model.JobMetrics{
			JobID:     jobID,
			Status:    model.StatusPending,
			StartTime: time.Now(),
			Stages:    make(map[string]model.StageMetrics),
			Errors:    []model.ErrorDetail{},
		},
	}
}

// StartStage marks the start of a job stage
func (t *JobTracker) StartStage(stage string) {
	t.mu.Lock()
	now := time.Now()
	t.metrics.Status = stage
	t.metrics.Stages[stage] = model.StageMetrics{StageName: stage, Status: "running", StartTime: now}
	t.mu.Unlock()

	monitoring.Logf("📊 [%s] stage '%s' started", t.metrics.JobID, stage)
	t.persistStage(stage, "running", &now, nil, 0, 0)
	t.Log(stage, "info", "stage started", nil)
}

// EndStage marks a stage completed with the number of records it handled.
func (t *JobTracker) EndStage(stage string, records int64) {
	t.finishStage(stage, "completed", records)
	monitoring.Logf("📊 [%s] stage '%s' completed: %d records", t.metrics.JobID, stage, records)
}

// FailStage marks a stage failed.
func (t *JobTracker) FailStage(stage string) {
	t.finishStage(stage, "failed", 0)
}

func (t *JobTracker) finishStage(stage, status string, records int64) {
	t.mu.Lock()
	now := time.Now()
	s := t.metrics.Stages[stage]
	s.StageName = stage
	s.Status = status
	s.EndTime = &now
	s.Duration = now.Sub(s.StartTime)
	if records > 0 {
		s.RecordsProcessed = records
	}
	t.metrics.Stages[stage] = s
	t.mu.Unlock()

	t.persistStage(stage, status, nil, &now, s.RecordsProcessed, s.ErrorCount)
	t.Log(stage, "info", "stage "+status, map[string]interface{}{
		"records":     s.RecordsProcessed,
		"duration_ms": s.Duration.Milliseconds(),
	})
}

// AddRows accumulates row counts: read from sources and kept after filtering.
func (t *JobTracker) AddRows(read, kept int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.metrics.RowsRead += read
	t.metrics.RowsKept += kept
}

// RecordError records an error with its stage and, for fetch failures, the report handle.
func (t *JobTracker) RecordError(stage, errorType, message, handle string) {
	detail := model.ErrorDetail{
		Stage:     stage,
		ErrorType: errorType,
		Message:   message,
		Handle:    handle,
		Timestamp: time.Now(),
	}
	t.mu.Lock()
	t.metrics.Errors = append(t.metrics.Errors, detail)
	if s, ok := t.metrics.Stages[stage]; ok {
		s.ErrorCount++
		t.metrics.Stages[stage] = s
	}
	t.mu.Unlock()

	monitoring.Logf("❌ [%s] %s error (%s): %s", t.metrics.JobID, stage, errorType, message)
	if t.store != nil {
		if err := t.store.SaveJobError(t.metrics.JobID, detail); err != nil {
			monitoring.Logf("failed to save job error: %v", err)
		}
	}
	t.Log(stage, "error", message, map[string]interface{}{"error_type": errorType, "handle": handle})
}

// Log writes a job log line to the store.
func (t *JobTracker) Log(stage, level, message string, details map[string]interface{}) {
	if t.store == nil {
		return
	}
	if err := t.store.SavePipelineLog(t.metrics.JobID, stage, level, message, details); err != nil {
		monitoring.Logf("failed to save job log: %v", err)
	}
}

// Complete marks the job as completed
func (t *JobTracker) Complete() { t.finish(model.StatusCompleted) }

// Fail marks the job as failed
func (t *JobTracker) Fail() { t.finish(model.StatusFailed) }

func (t *JobTracker) finish(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	t.metrics.EndTime = &now
	t.metrics.Status = status
	t.metrics.Duration = now.Sub(t.metrics.StartTime)
	monitoring.Logf("🏁 [%s] job %s in %v (rows read %d, kept %d, errors %d)",
		t.metrics.JobID, status, t.metrics.Duration, t.metrics.RowsRead, t.metrics.RowsKept, len(t.metrics.Errors))
}

// Metrics returns a copy of the current metrics.
func (t *JobTracker) Metrics() model.JobMetrics {
	t.mu.RLock()
	defer t.mu.RUnlock()
	m := t.metrics
	m.Stages = make(map[string]model.StageMetrics, len(t.metrics.Stages))
	for k, v := range t.metrics.Stages {
		m.Stages[k] = v
	}
	m.Errors = append([]model.ErrorDetail(nil), t.metrics.Errors...)
	return m
}

func (t *JobTracker) persistStage(stage, status string, start, end *time.Time, records, errorCount int64) {
	if t.store == nil {
		return
	}
	if err := t.store.SaveStageProgress(t.metrics.JobID, stage, status, start, end, records, errorCount); err != nil {
		monitoring.Logf("failed to save stage progress: %v", err)
	}
}
