// Package handler implements the REST endpoints over results, comparison
// jobs and settings.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"go-sqa-metrics/internal/config"
	"go-sqa-metrics/internal/httputil"
	"go-sqa-metrics/internal/model"
	"go-sqa-metrics/internal/monitoring"
	"go-sqa-metrics/internal/pipeline"
	"go-sqa-metrics/internal/store"
	"go-sqa-metrics/pkg/utils"
)

// SlotHeader names the caller's view slot (e.g. "session-42/left"). Report
// loads sharing a slot are last-write-wins; requests without it load directly.
const SlotHeader = "X-SQA-Slot"

// Handler carries the dependencies shared by all endpoints.
type Handler struct {
	DB       *store.DB
	Runner   *pipeline.Runner
	Source   pipeline.RowSource
	Loader   *pipeline.SlotLoader
	Registry *pipeline.MetricRegistry
	Outputs  *utils.OutputManager
	Config   *config.Config

	jobs sync.WaitGroup
}

// New wires a handler from an open database and the service configuration.
func New(db *store.DB, cfg *config.Config) *Handler {
	source := pipeline.NewRowSource(cfg.DataDir, cfg.GetFetchTimeout())
	source.Retry.MaxRetries = cfg.FetchRetries
	outputs := utils.NewOutputManager(cfg.OutputDir)
	registry := pipeline.NewMetricRegistry(db)
	return &Handler{
		DB:       db,
		Source:   source,
		Loader:   pipeline.NewSlotLoader(source),
		Registry: registry,
		Outputs:  outputs,
		Config:   cfg,
		Runner: &pipeline.Runner{
			Store:      db,
			Source:     source,
			Outputs:    outputs,
			Registry:   registry,
			SampleRows: cfg.SampleRows,
			JobTimeout: cfg.GetJobTimeout(),
			ChartKind:  cfg.GetChartKind(),
		},
	}
}

// Wait blocks until every comparison job started by this handler has finished.
func (h *Handler) Wait() {
	h.jobs.Wait()
}

func (h *Handler) startJob(jobID string, spec model.ComparisonJobSpec) {
	h.jobs.Add(1)
	go func() {
		defer h.jobs.Done()
		if err := h.Runner.Run(context.Background(), jobID, spec); err != nil {
			monitoring.Logf("❌ Comparison job %s failed: %v", jobID, err)
		}
	}()
}

// loadResult looks up a stored result and fetches its rows. With a slot header
// the fetch goes through the slot loader, so a newer request from the same
// caller supersedes an older one.
func (h *Handler) loadResult(r *http.Request, id string) (model.Result, model.Dataset, error) {
	res, err := h.DB.GetResult(id)
	if err != nil {
		return model.Result{}, model.Dataset{}, err
	}
	var ds model.Dataset
	if slot := strings.TrimSpace(r.Header.Get(SlotHeader)); slot != "" {
		ds, err = h.Loader.Load(r.Context(), slot, res.FilePath)
	} else {
		ds, err = h.Source.FetchRows(r.Context(), res.FilePath)
	}
	if err != nil {
		return res, model.Dataset{}, err
	}
	return res, ds, nil
}

// schemaFor detects the schema of ds and adds the registered custom metrics.
func (h *Handler) schemaFor(ds model.Dataset) model.Schema {
	custom, err := h.Registry.List()
	if err != nil {
		monitoring.Logf("custom metrics unavailable: %v", err)
	}
	return pipeline.ApplyCustomMetrics(pipeline.DetectSchemaSampled(ds, h.Config.SampleRows), ds, custom)
}

// writeError maps an error to a JSON error response.
func writeError(w http.ResponseWriter, err error) {
	var (
		verr *pipeline.ValidationError
		ierr *model.InsufficientInputError
	)
	switch {
	case errors.As(err, &verr), errors.As(err, &ierr), errors.Is(err, model.ErrBaselineOutOfRange):
		httputil.BadRequest(w, err.Error())
	case errors.Is(err, store.ErrNotFound):
		httputil.NotFound(w, err.Error())
	case model.IsSourceFetchError(err):
		httputil.WriteJSONError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, pipeline.ErrSuperseded):
		httputil.WriteJSONError(w, http.StatusConflict, err.Error())
	default:
		monitoring.Logf("request failed: %v", err)
		httputil.InternalServerError(w, err.Error())
	}
}
