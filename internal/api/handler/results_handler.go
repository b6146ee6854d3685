package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-sqa-metrics/internal/httputil"
	"go-sqa-metrics/internal/model"
	"go-sqa-metrics/internal/pipeline"
	"go-sqa-metrics/pkg/router"
)

// CreateResult registers an uploaded report
// @Summary Register a result
// @Description Store the metadata of a report file (path under the data directory or http(s) URL)
// @Tags results
// @Accept json
// @Produce json
// @Param result body model.Result true "Result metadata"
// @Success 201 {object} model.Result
// @Failure 400 {object} map[string]string "Invalid request payload"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /results [post]
func (h *Handler) CreateResult(w http.ResponseWriter, r *http.Request) {
	var res model.Result
	if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
		httputil.BadRequest(w, "Invalid JSON payload")
		return
	}
	res.FilePath = strings.TrimSpace(res.FilePath)
	if res.FilePath == "" {
		httputil.BadRequest(w, "file_path is required")
		return
	}
	if res.Name == "" && res.Version == "" {
		httputil.BadRequest(w, "name or version is required")
		return
	}

	res.ID = uuid.New().String()
	res.CreatedAt = time.Now().UTC()
	if err := h.DB.SaveResult(res); err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

// ListResults lists stored results
// @Summary List results
// @Tags results
// @Produce json
// @Param project query string false "Only results of this project"
// @Success 200 {object} map[string]interface{}
// @Router /results [get]
func (h *Handler) ListResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.DB.ListResults(r.URL.Query().Get("project"))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}

// GetResult returns one result
// @Summary Get result
// @Tags results
// @Produce json
// @Param id path string true "Result ID"
// @Success 200 {object} model.Result
// @Failure 404 {object} map[string]string "Result not found"
// @Router /results/{id} [get]
func (h *Handler) GetResult(w http.ResponseWriter, r *http.Request) {
	res, err := h.DB.GetResult(router.Param(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, res)
}

// DeleteResult removes a result's metadata
// @Summary Delete result
// @Tags results
// @Produce json
// @Param id path string true "Result ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string "Result not found"
// @Router /results/{id} [delete]
func (h *Handler) DeleteResult(w http.ResponseWriter, r *http.Request) {
	id := router.Param(r, "id")
	if err := h.DB.DeleteResult(id); err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, map[string]string{"message": "Result deleted", "id": id})
}

// GetResultSchema detects the columns of a result's report
// @Summary Detect schema
// @Description Detect the noise type, dB level, file and metric columns and list the selectable values
// @Tags results
// @Produce json
// @Param id path string true "Result ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Result not found"
// @Failure 502 {object} map[string]string "Report could not be loaded"
// @Router /results/{id}/schema [get]
func (h *Handler) GetResultSchema(w http.ResponseWriter, r *http.Request) {
	res, ds, err := h.loadResult(r, router.Param(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	schema := h.schemaFor(ds)

	noiseTypes := []string{}
	if schema.HasNoiseType() {
		noiseTypes = pipeline.DistinctValues(ds, schema.NoiseTypeColumn)
	}
	dbLevels := []string{}
	if schema.HasDBLevel() {
		dbLevels = pipeline.SortDBLevels(pipeline.DistinctValues(ds, schema.DBLevelColumn))
	}

	httputil.WriteJSONOK(w, map[string]interface{}{
		"result_id":   res.ID,
		"schema":      schema,
		"missing":     schema.Missing(),
		"noise_types": noiseTypes,
		"db_levels":   dbLevels,
		"row_count":   ds.Len(),
	})
}

// AggregateResult groups and averages a result's rows
// @Summary Aggregate result
// @Description Filter a result's rows, average every metric per group and shape the groups for a chart
// @Tags results
// @Accept json
// @Produce json
// @Param id path string true "Result ID"
// @Param request body model.AggregateRequest true "Grouping, filter and chart axes"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Result not found"
// @Failure 502 {object} map[string]string "Report could not be loaded"
// @Router /results/{id}/aggregate [post]
func (h *Handler) AggregateResult(w http.ResponseWriter, r *http.Request) {
	var req model.AggregateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "Invalid JSON payload")
		return
	}
	if err := pipeline.ValidateAggregateRequest(req); err != nil {
		writeError(w, err)
		return
	}

	res, ds, err := h.loadResult(r, router.Param(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	schema := h.schemaFor(ds)
	filtered := pipeline.FilterRows(ds, schema, req.Filter)
	groups := pipeline.Aggregate(filtered, schema, pipeline.AggregateOptions{
		GroupBy:    req.GroupBy,
		NoiseTypes: req.NoiseTypes,
	})

	category, series := chartAxes(req)
	resp := map[string]interface{}{
		"result_id": res.ID,
		"group_by":  req.GroupBy,
		"rows":      filtered.Len(),
		"groups":    groups,
		"chart":     pipeline.ShapeGroups(groups, category, series),
		"status":    "ok",
	}
	if len(groups) == 0 {
		resp["status"] = "no_data"
	}
	httputil.WriteJSONOK(w, resp)
}

// chartAxes fills in the chart dimensions the request left out: the grouping
// dimension goes on the category axis and metrics become the series.
func chartAxes(req model.AggregateRequest) (model.Dimension, model.Dimension) {
	category, series := req.Category, req.Series
	if category == "" {
		switch req.GroupBy {
		case model.GroupByNoiseType:
			category = model.DimensionNoiseType
		case model.GroupByDBLevel, model.GroupByDBLevelAndMetric:
			category = model.DimensionDBLevel
		default:
			category = model.DimensionMetric
		}
	}
	if series == "" && category != model.DimensionMetric {
		series = model.DimensionMetric
	}
	return category, series
}
