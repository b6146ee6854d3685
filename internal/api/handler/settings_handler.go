package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go-sqa-metrics/internal/httputil"
	"go-sqa-metrics/pkg/router"
)

type customMetricsBody struct {
	Metrics []string `json:"metrics"`
}

// GetCustomMetrics lists the user-registered metric columns
// @Summary List custom metrics
// @Tags settings
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /settings/custom-metrics [get]
func (h *Handler) GetCustomMetrics(w http.ResponseWriter, r *http.Request) {
	names, err := h.Registry.List()
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, map[string]interface{}{"metrics": names, "count": len(names)})
}

// PutCustomMetrics replaces the registered metric columns
// @Summary Replace custom metrics
// @Tags settings
// @Accept json
// @Produce json
// @Param metrics body customMetricsBody true "Metric column names"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Invalid request payload"
// @Router /settings/custom-metrics [put]
func (h *Handler) PutCustomMetrics(w http.ResponseWriter, r *http.Request) {
	var body customMetricsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.BadRequest(w, "Invalid JSON payload")
		return
	}
	if err := h.Registry.Replace(body.Metrics); err != nil {
		writeError(w, err)
		return
	}
	h.GetCustomMetrics(w, r)
}

// AddCustomMetric registers one metric column
// @Summary Add custom metric
// @Tags settings
// @Produce json
// @Param name path string true "Metric column name"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Blank name"
// @Router /settings/custom-metrics/{name} [post]
func (h *Handler) AddCustomMetric(w http.ResponseWriter, r *http.Request) {
	if err := h.Registry.Add(router.Param(r, "name")); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("cannot add metric: %v", err))
		return
	}
	h.GetCustomMetrics(w, r)
}

// RemoveCustomMetric unregisters one metric column
// @Summary Remove custom metric
// @Tags settings
// @Produce json
// @Param name path string true "Metric column name"
// @Success 200 {object} map[string]interface{}
// @Router /settings/custom-metrics/{name} [delete]
func (h *Handler) RemoveCustomMetric(w http.ResponseWriter, r *http.Request) {
	if err := h.Registry.Remove(router.Param(r, "name")); err != nil {
		writeError(w, err)
		return
	}
	h.GetCustomMetrics(w, r)
}
