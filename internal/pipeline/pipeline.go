package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"go-sqa-metrics/internal/model"
	"go-sqa-metrics/internal/monitoring"
	"go-sqa-metrics/pkg/utils"
)

// Stage names as persisted in stage_progress.
const (
	StageFetching  = "fetching"
	StageComparing = "comparing"
	StageExporting = "exporting"
)

// JobStore is everything a comparison job reads and writes.
type JobStore interface {
	ProgressStore
	OutputRecorder
	GetResult(id string) (model.Result, error)
	UpdateJobStatus(jobID, status string) error
	SaveJobSummary(jobID string, summary *model.Comparison) error
}

// Runner executes comparison jobs.
type Runner struct {
	Store      JobStore
	Source     RowSource
	Outputs    *utils.OutputManager
	Registry   *MetricRegistry
	SampleRows int
	JobTimeout time.Duration
	ChartKind  string
}

// Run fetches the rows of every requested result concurrently, compares them
// and exports the summary and charts. A fetch failure fails the job without
// storing a summary.
func (r *Runner) Run(ctx context.Context, jobID string, spec model.ComparisonJobSpec) (err error) {
	tracker := NewJobTracker(jobID, r.Store)
	monitoring.Logf("🚀 Starting comparison job %s over %d results", jobID, len(spec.ResultIDs))

	defer func() {
		if err != nil {
			tracker.Fail()
			r.setStatus(jobID, model.StatusFailed)
			return
		}
		tracker.Complete()
		r.setStatus(jobID, model.StatusCompleted)
	}()

	ctx, cancel := context.WithTimeout(ctx, utils.ParseDurationOr(spec.Timeout, r.timeout()))
	defer cancel()

	r.setStatus(jobID, model.StatusFetching)
	tracker.StartStage(StageFetching)
	sets, err := r.fetchAll(ctx, spec.ResultIDs, tracker)
	if err != nil {
		tracker.FailStage(StageFetching)
		return err
	}
	var rowsRead int64
	for _, s := range sets {
		rowsRead += int64(s.Dataset.Len())
	}
	tracker.EndStage(StageFetching, rowsRead)

	r.setStatus(jobID, model.StatusComparing)
	tracker.StartStage(StageComparing)
	cmp, err := r.compare(sets, spec, tracker)
	if err != nil {
		tracker.RecordError(StageComparing, "invalid_request", err.Error(), "")
		tracker.FailStage(StageComparing)
		return err
	}
	if err := r.Store.SaveJobSummary(jobID, cmp); err != nil {
		tracker.RecordError(StageComparing, "database", err.Error(), "")
		tracker.FailStage(StageComparing)
		return fmt.Errorf("save summary: %w", err)
	}
	tracker.EndStage(StageComparing, int64(len(cmp.Metrics)))

	r.setStatus(jobID, model.StatusExporting)
	tracker.StartStage(StageExporting)
	em := NewExportManager(jobID, r.Outputs, r.Store)
	r.export(em, cmp, spec)
	if em.Failed() {
		for _, res := range em.Results {
			if !res.Success {
				tracker.RecordError(StageExporting, "export", res.Error, res.Path)
			}
		}
		tracker.FailStage(StageExporting)
		return errors.New("one or more exports failed")
	}
	tracker.EndStage(StageExporting, int64(len(em.Results)))
	return nil
}

func (r *Runner) fetchAll(ctx context.Context, ids []string, tracker *JobTracker) ([]model.ResultSet, error) {
	results := make([]model.Result, len(ids))
	for i, id := range ids {
		res, err := r.Store.GetResult(id)
		if err != nil {
			tracker.RecordError(StageFetching, "lookup", err.Error(), id)
			return nil, fmt.Errorf("result %s: %w", id, err)
		}
		results[i] = res
	}

	sets := make([]model.ResultSet, len(results))
	g, gctx := errgroup.WithContext(ctx)
	for i, res := range results {
		g.Go(func() error {
			ds, err := r.Source.FetchRows(gctx, res.FilePath)
			if err != nil {
				return err
			}
			sets[i] = model.ResultSet{Name: res.DisplayName(), Dataset: ds}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		handle := ""
		var sfe *model.SourceFetchError
		if errors.As(err, &sfe) {
			handle = sfe.Handle
		}
		tracker.RecordError(StageFetching, "source_fetch", err.Error(), handle)
		return nil, err
	}
	return sets, nil
}

func (r *Runner) compare(sets []model.ResultSet, spec model.ComparisonJobSpec, tracker *JobTracker) (*model.Comparison, error) {
	var custom []string
	if r.Registry != nil {
		names, err := r.Registry.List()
		if err != nil {
			tracker.Log(StageComparing, "warning", "custom metrics unavailable", map[string]interface{}{"error": err.Error()})
		}
		custom = names
	}

	for i := range sets {
		schema := ApplyCustomMetrics(DetectSchemaSampled(sets[i].Dataset, r.SampleRows), sets[i].Dataset, custom)
		sets[i].Schema = &schema
		for _, note := range schema.Missing() {
			tracker.Log(StageComparing, "warning", note, map[string]interface{}{"result": sets[i].Name})
		}
		kept := sets[i].Dataset.Len()
		if spec.Filter != nil {
			kept = FilterRows(sets[i].Dataset, schema, *spec.Filter).Len()
		}
		tracker.AddRows(int64(sets[i].Dataset.Len()), int64(kept))
	}

	cmp, err := Compare(sets, CompareOptions{
		Baseline:   spec.Baseline,
		Metrics:    spec.Metrics,
		Filter:     spec.Filter,
		Threshold:  spec.Threshold,
		SampleRows: r.SampleRows,
	})
	if err != nil {
		return nil, err
	}
	if cmp.HasWarning(model.WarningNoCommonMetrics) {
		tracker.Log(StageComparing, "warning", "results share no metric", nil)
	}
	return cmp, nil
}

func (r *Runner) export(em *ExportManager, cmp *model.Comparison, spec model.ComparisonJobSpec) {
	em.ExportSummary("summary.json", cmp)

	chart := ShapeComparison(cmp, model.DimensionMetric)
	em.ExportChartCSV("comparison.csv", chart)
	if chart.IsEmpty() {
		return
	}
	kind := spec.ChartKind
	if kind == "" {
		kind = r.ChartKind
	}
	em.ExportChartCSV("differences.csv", ShapeDifferences(cmp))
	em.ExportChartHTML("comparison.html", chart, kind, "Metric comparison")
	em.ExportChartPNG("comparison.png", chart, "Metric comparison")
}

func (r *Runner) setStatus(jobID, status string) {
	if err := r.Store.UpdateJobStatus(jobID, status); err != nil {
		monitoring.Logf("failed to update job %s status to %s: %v", jobID, status, err)
	}
}

func (r *Runner) timeout() time.Duration {
	if r.JobTimeout > 0 {
		return r.JobTimeout
	}
	return 5 * time.Minute
}
