package handler

import (
	"fmt"
	"net/http"

	"go-sqa-metrics/internal/httputil"
	"go-sqa-metrics/pkg/router"
)

// DownloadFile serves a file for download
// @Summary Download file
// @Description Download an exported artefact of a comparison job
// @Tags files
// @Produce application/octet-stream
// @Param jobID path string true "Job ID"
// @Param filename path string true "File name"
// @Success 200 {file} file "File download"
// @Failure 404 {object} map[string]string "File not found"
// @Router /download/{jobID}/{filename} [get]
func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	fileName := router.Param(r, "filename")
	path, err := h.Outputs.LookupOutputFile(router.Param(r, "jobID"), fileName)
	if err != nil {
		httputil.NotFound(w, "File not found")
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeFile(w, r, path)
}
