package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"go-sqa-metrics/internal/httputil"
	"go-sqa-metrics/internal/model"
	"go-sqa-metrics/internal/pipeline"
	"go-sqa-metrics/pkg/router"
)

// CreateComparison stores a comparison job and runs it in the background
// @Summary Start a comparison
// @Description Compare two or more stored results against a baseline. The job runs asynchronously.
// @Tags comparisons
// @Accept json
// @Produce json
// @Param comparison body model.ComparisonJobSpec true "Comparison request"
// @Success 202 {object} map[string]interface{} "Comparison accepted"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Result not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /comparisons [post]
func (h *Handler) CreateComparison(w http.ResponseWriter, r *http.Request) {
	var spec model.ComparisonJobSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		httputil.BadRequest(w, "Invalid JSON payload")
		return
	}
	if err := pipeline.ValidateJobSpec(spec); err != nil {
		writeError(w, err)
		return
	}
	for _, id := range spec.ResultIDs {
		if _, err := h.DB.GetResult(id); err != nil {
			writeError(w, err)
			return
		}
	}

	jobID := uuid.New().String()
	if err := h.DB.SaveJob(jobID, spec); err != nil {
		writeError(w, err)
		return
	}
	h.startJob(jobID, spec)

	httputil.WriteJSON(w, http.StatusAccepted, map[string]interface{}{
		"message":   "Comparison started",
		"job_id":    jobID,
		"status":    model.StatusPending,
		"createdAt": time.Now().UTC(),
	})
}

// ListComparisons lists comparison jobs
// @Summary List comparisons
// @Tags comparisons
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /comparisons [get]
func (h *Handler) ListComparisons(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.DB.ListJobs()
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"comparisons": jobs,
		"count":       len(jobs),
	})
}

// GetComparison returns a job with its summary once completed
// @Summary Get comparison
// @Tags comparisons
// @Produce json
// @Param id path string true "Comparison ID"
// @Success 200 {object} model.ComparisonJob
// @Failure 404 {object} map[string]string "Comparison not found"
// @Router /comparisons/{id} [get]
func (h *Handler) GetComparison(w http.ResponseWriter, r *http.Request) {
	job, err := h.DB.GetJob(router.Param(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, job)
}

// GetComparisonErrors lists the errors recorded for a job
// @Summary Get comparison errors
// @Tags comparisons
// @Produce json
// @Param id path string true "Comparison ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Comparison not found"
// @Router /comparisons/{id}/errors [get]
func (h *Handler) GetComparisonErrors(w http.ResponseWriter, r *http.Request) {
	jobID, ok := h.requireJob(w, r)
	if !ok {
		return
	}
	errs, err := h.DB.GetJobErrors(jobID)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"job_id": jobID,
		"errors": errs,
		"count":  len(errs),
	})
}

// GetComparisonProgress lists the stage progress of a job
// @Summary Get comparison progress
// @Tags comparisons
// @Produce json
// @Param id path string true "Comparison ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Comparison not found"
// @Router /comparisons/{id}/progress [get]
func (h *Handler) GetComparisonProgress(w http.ResponseWriter, r *http.Request) {
	jobID, ok := h.requireJob(w, r)
	if !ok {
		return
	}
	progress, err := h.DB.GetStageProgress(jobID)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"job_id":   jobID,
		"progress": progress,
		"count":    len(progress),
	})
}

// GetComparisonLogs lists the log lines of a job
// @Summary Get comparison logs
// @Tags comparisons
// @Produce json
// @Param id path string true "Comparison ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Comparison not found"
// @Router /comparisons/{id}/logs [get]
func (h *Handler) GetComparisonLogs(w http.ResponseWriter, r *http.Request) {
	jobID, ok := h.requireJob(w, r)
	if !ok {
		return
	}
	logs, err := h.DB.GetPipelineLogs(jobID)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"job_id": jobID,
		"logs":   logs,
		"count":  len(logs),
	})
}

// GetComparisonOutputs lists the exported artefacts of a job
// @Summary Get comparison outputs
// @Tags comparisons
// @Produce json
// @Param id path string true "Comparison ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Comparison not found"
// @Router /comparisons/{id}/outputs [get]
func (h *Handler) GetComparisonOutputs(w http.ResponseWriter, r *http.Request) {
	jobID, ok := h.requireJob(w, r)
	if !ok {
		return
	}
	files, err := h.DB.GetOutputFiles(jobID)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"job_id": jobID,
		"files":  files,
		"count":  len(files),
	})
}

// GetComparisonChart shapes a completed comparison for a chart
// @Summary Get comparison chart
// @Description view: metrics (default), results, differences or overall. format: json (default), html or png.
// @Tags comparisons
// @Produce json
// @Produce html
// @Produce png
// @Param id path string true "Comparison ID"
// @Param view query string false "metrics, results, differences, overall"
// @Param format query string false "json, html, png"
// @Param kind query string false "bar or line (html only)"
// @Success 200 {object} model.ChartData
// @Failure 400 {object} map[string]string "Invalid view or format"
// @Failure 404 {object} map[string]string "Comparison not found"
// @Failure 409 {object} map[string]string "Comparison not completed"
// @Router /comparisons/{id}/chart [get]
func (h *Handler) GetComparisonChart(w http.ResponseWriter, r *http.Request) {
	job, err := h.DB.GetJob(router.Param(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if job.Summary == nil {
		httputil.WriteJSONError(w, http.StatusConflict, fmt.Sprintf("comparison is %s and has no summary", job.Status))
		return
	}

	q := r.URL.Query()
	var (
		data  model.ChartData
		title string
	)
	switch q.Get("view") {
	case "", "metrics":
		data, title = pipeline.ShapeComparison(job.Summary, model.DimensionMetric), "Metric comparison"
	case "results":
		data, title = pipeline.ShapeComparison(job.Summary, model.DimensionResult), "Result comparison"
	case "differences":
		data, title = pipeline.ShapeDifferences(job.Summary), "Difference to baseline"
	case "overall":
		data, title = pipeline.ShapeOverall(job.Summary), "Overall score"
	default:
		httputil.BadRequest(w, fmt.Sprintf("unknown view %q", q.Get("view")))
		return
	}

	format := q.Get("format")
	if format == "" || format == "json" {
		httputil.WriteJSONOK(w, data)
		return
	}

	var buf bytes.Buffer
	contentType := "image/png"
	switch format {
	case "html":
		kind := q.Get("kind")
		if kind == "" {
			kind = job.Spec.ChartKind
		}
		if kind == "" {
			kind = h.Config.GetChartKind()
		}
		if kind != pipeline.ChartBar && kind != pipeline.ChartLine {
			httputil.BadRequest(w, fmt.Sprintf("unknown chart kind %q", kind))
			return
		}
		contentType = "text/html; charset=utf-8"
		err = pipeline.RenderHTML(&buf, data, kind, title)
	case "png":
		err = pipeline.RenderPNG(&buf, data, title)
	default:
		httputil.BadRequest(w, fmt.Sprintf("unknown format %q", format))
		return
	}
	if errors.Is(err, pipeline.ErrEmptyChart) {
		httputil.WriteJSONError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(buf.Bytes())
}

// requireJob resolves the :id parameter to an existing job, writing 404 otherwise.
func (h *Handler) requireJob(w http.ResponseWriter, r *http.Request) (string, bool) {
	jobID := router.Param(r, "id")
	if _, err := h.DB.GetJob(jobID); err != nil {
		writeError(w, err)
		return "", false
	}
	return jobID, true
}
