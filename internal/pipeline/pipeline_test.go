package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-sqa-metrics/internal/model"
	"go-sqa-metrics/pkg/utils"
)

// memStore is an in-memory JobStore.
type memStore struct {
	outputLog
	mu       sync.Mutex
	results  map[string]model.Result
	statuses []string
	summary  *model.Comparison
	errors   []model.ErrorDetail
	stages   map[string]string
	logs     []string
}

func newMemStore(results ...model.Result) *memStore {
	s := &memStore{results: make(map[string]model.Result), stages: make(map[string]string)}
	for _, r := range results {
		s.results[r.ID] = r
	}
	return s
}

func (s *memStore) GetResult(id string) (model.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.results[id]
	if !ok {
		return model.Result{}, fmt.Errorf("result %s: not found", id)
	}
	return r, nil
}

func (s *memStore) UpdateJobStatus(_, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, status)
	return nil
}

func (s *memStore) SaveJobSummary(_ string, summary *model.Comparison) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary = summary
	return nil
}

func (s *memStore) SaveStageProgress(_, stage, status string, _, _ *time.Time, _, _ int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stages[stage] = status
	return nil
}

func (s *memStore) SaveJobError(_ string, detail model.ErrorDetail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, detail)
	return nil
}

func (s *memStore) SavePipelineLog(_, _, level, message string, _ map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, level+": "+message)
	return nil
}

func writeReports(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func newRunner(dataDir string, store *memStore, outDir string) *Runner {
	kv := NewMemoryKV()
	return &Runner{
		Store:      store,
		Source:     &FileSource{Dir: dataDir},
		Outputs:    utils.NewOutputManager(outDir),
		Registry:   NewMetricRegistry(kv),
		SampleRows: DefaultSampleRows,
		JobTimeout: time.Minute,
		ChartKind:  ChartBar,
	}
}

func TestRunner_CompletesAndExports(t *testing.T) {
	dataDir := writeReports(t, map[string]string{
		"v1.csv": "Noise Type,dB Level,MOS,Rating\nTraffic,5dB,4.0,1\nBabble,5dB,3.0,2\n",
		"v2.json": `[{"Noise Type":"Traffic","dB Level":"5dB","MOS":3.0,"Rating":"x"},
		            {"Noise Type":"Babble","dB Level":"5dB","MOS":3.5,"Rating":"3"}]`,
	})
	store := newMemStore(
		model.Result{ID: "r1", Version: "v1", Name: "sub", FilePath: "v1.csv"},
		model.Result{ID: "r2", Version: "v2", Name: "sub", FilePath: "v2.json"},
	)
	outDir := t.TempDir()
	runner := newRunner(dataDir, store, outDir)

	spec := model.ComparisonJobSpec{
		ResultIDs: []string{"r1", "r2"},
		Filter:    &model.FilterSpec{NoiseTypes: []string{"Babble"}},
	}
	require.NoError(t, runner.Run(context.Background(), "job-1", spec))

	assert.Equal(t, []string{model.StatusFetching, model.StatusComparing, model.StatusExporting, model.StatusCompleted}, store.statuses)
	require.NotNil(t, store.summary)
	assert.Equal(t, []string{"v1 / sub", "v2 / sub"}, store.summary.Results)
	assert.Equal(t, []string{"MOS", "Rating"}, store.summary.CommonMetrics)
	mos := store.summary.Metrics[0]
	assert.Equal(t, 3.0, *mos.Values[0])
	assert.Equal(t, 3.5, *mos.Values[1])
	assert.Equal(t, model.TrendImproved, mos.Trends[1])

	assert.Equal(t, "completed", store.stages[StageFetching])
	assert.Equal(t, "completed", store.stages[StageExporting])
	assert.Empty(t, store.errors)

	names := make([]string, 0, len(store.files))
	for _, f := range store.files {
		names = append(names, f.FileName)
		_, err := os.Stat(f.FilePath)
		assert.NoError(t, err, f.FileName)
	}
	assert.Equal(t, []string{"summary.json", "comparison.csv", "differences.csv", "comparison.html", "comparison.png"}, names)
}

func TestRunner_CustomMetricsJoinComparison(t *testing.T) {
	dataDir := writeReports(t, map[string]string{
		"a.csv": "Noise Type,MOS,Rater Notes\nTraffic,4,ok\nTraffic,4,\n",
		"b.csv": "Noise Type,MOS,Rater Notes\nTraffic,3,fine\n",
	})
	store := newMemStore(
		model.Result{ID: "a", Name: "A", FilePath: "a.csv"},
		model.Result{ID: "b", Name: "B", FilePath: "b.csv"},
	)
	runner := newRunner(dataDir, store, t.TempDir())
	require.NoError(t, runner.Registry.Add("Rater Notes"))

	require.NoError(t, runner.Run(context.Background(), "job-2", model.ComparisonJobSpec{ResultIDs: []string{"a", "b"}}))
	require.NotNil(t, store.summary)
	assert.Equal(t, []string{"MOS", "Rater Notes"}, store.summary.CommonMetrics)
	notes := store.summary.Metrics[1]
	assert.Nil(t, notes.Values[0])
	assert.Nil(t, notes.Values[1])
}

func TestRunner_FetchFailureFailsWithoutSummary(t *testing.T) {
	dataDir := writeReports(t, map[string]string{"ok.csv": "MOS\n4\n"})
	store := newMemStore(
		model.Result{ID: "ok", FilePath: "ok.csv"},
		model.Result{ID: "gone", FilePath: "gone.csv"},
	)
	runner := newRunner(dataDir, store, t.TempDir())

	err := runner.Run(context.Background(), "job-3", model.ComparisonJobSpec{ResultIDs: []string{"ok", "gone"}})
	require.Error(t, err)
	assert.True(t, model.IsSourceFetchError(err))

	assert.Nil(t, store.summary)
	assert.Equal(t, model.StatusFailed, store.statuses[len(store.statuses)-1])
	assert.Equal(t, "failed", store.stages[StageFetching])
	require.Len(t, store.errors, 1)
	assert.Equal(t, "source_fetch", store.errors[0].ErrorType)
	assert.Equal(t, "gone.csv", store.errors[0].Handle)
	assert.Empty(t, store.files)
}

func TestRunner_UnknownResult(t *testing.T) {
	store := newMemStore(model.Result{ID: "a", FilePath: "a.csv"})
	runner := newRunner(t.TempDir(), store, t.TempDir())

	err := runner.Run(context.Background(), "job-4", model.ComparisonJobSpec{ResultIDs: []string{"a", "zzz"}})
	require.Error(t, err)
	require.Len(t, store.errors, 1)
	assert.Equal(t, "lookup", store.errors[0].ErrorType)
	assert.Equal(t, model.StatusFailed, store.statuses[len(store.statuses)-1])
}

func TestRunner_NoCommonMetricsStillCompletes(t *testing.T) {
	dataDir := writeReports(t, map[string]string{
		"a.csv": "MOS\n4\n",
		"b.csv": "PESQ\n3\n",
	})
	store := newMemStore(model.Result{ID: "a", FilePath: "a.csv"}, model.Result{ID: "b", FilePath: "b.csv"})
	runner := newRunner(dataDir, store, t.TempDir())

	require.NoError(t, runner.Run(context.Background(), "job-5", model.ComparisonJobSpec{ResultIDs: []string{"a", "b"}}))
	require.NotNil(t, store.summary)
	assert.True(t, store.summary.HasWarning(model.WarningNoCommonMetrics))
	assert.Contains(t, store.logs, "warning: results share no metric")

	names := make([]string, 0, len(store.files))
	for _, f := range store.files {
		names = append(names, f.FileName)
	}
	assert.Equal(t, []string{"summary.json", "comparison.csv"}, names)
}

func TestJobTracker(t *testing.T) {
	store := newMemStore()
	tracker := NewJobTracker("job-6", store)

	tracker.StartStage(StageFetching)
	tracker.AddRows(10, 4)
	tracker.RecordError(StageFetching, "source_fetch", "boom", "a.csv")
	tracker.EndStage(StageFetching, 10)
	tracker.Fail()

	m := tracker.Metrics()
	assert.Equal(t, model.StatusFailed, m.Status)
	assert.EqualValues(t, 10, m.RowsRead)
	assert.EqualValues(t, 4, m.RowsKept)
	require.Contains(t, m.Stages, StageFetching)
	assert.EqualValues(t, 1, m.Stages[StageFetching].ErrorCount)
	assert.EqualValues(t, 10, m.Stages[StageFetching].RecordsProcessed)
	require.NotNil(t, m.EndTime)
	require.Len(t, m.Errors, 1)
	assert.Equal(t, "a.csv", m.Errors[0].Handle)
	assert.Equal(t, "completed", store.stages[StageFetching])

	// Metrics returns a copy.
	m.Stages["other"] = model.StageMetrics{}
	assert.NotContains(t, tracker.Metrics().Stages, "other")

	// A tracker without a store only keeps metrics in memory.
	NewJobTracker("job-7", nil).RecordError(StageComparing, "x", "y", "")
}
