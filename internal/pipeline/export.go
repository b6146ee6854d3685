package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"go-sqa-metrics/internal/model"
	"go-sqa-metrics/internal/monitoring"
	"go-sqa-metrics/pkg/utils"
)

// OutputRecorder persists the artefacts a job produced.
type OutputRecorder interface {
	SaveOutputFile(f model.OutputFile) (int64, error)
}

// ExportManager writes a job's artefacts into its output directory.
type ExportManager struct {
	JobID    string
	Outputs  *utils.OutputManager
	Recorder OutputRecorder
	Results  []model.ExportResult
}

func NewExportManager(jobID string, outputs *utils.OutputManager, recorder OutputRecorder) *ExportManager {
	return &ExportManager{JobID: jobID, Outputs: outputs, Recorder: recorder}
}

// ExportSummary writes the comparison as indented JSON with export metadata.
func (em *ExportManager) ExportSummary(fileName string, cmp *model.Comparison) model.ExportResult {
	return em.export("json", fileName, len(cmp.Metrics), func(w io.Writer) error {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(map[string]interface{}{
			"export_info": map[string]interface{}{
				"job_id":       em.JobID,
				"exported_at":  time.Now().UTC(),
				"metric_count": len(cmp.Metrics),
				"export_type":  "comparison_summary",
			},
			"data": cmp,
		})
	})
}

// ExportChartCSV writes chart records as CSV: the category column then one
// column per series.
func (em *ExportManager) ExportChartCSV(fileName string, data model.ChartData) model.ExportResult {
	return em.export("csv", fileName, len(data.Records), func(w io.Writer) error {
		return WriteChartCSV(w, data)
	})
}

// ExportChartHTML renders the chart as an HTML page.
func (em *ExportManager) ExportChartHTML(fileName string, data model.ChartData, kind, title string) model.ExportResult {
	return em.export("html", fileName, len(data.Records), func(w io.Writer) error {
		return RenderHTML(w, data, kind, title)
	})
}

// ExportChartPNG renders the chart as a PNG image.
func (em *ExportManager) ExportChartPNG(fileName string, data model.ChartData, title string) model.ExportResult {
	return em.export("png", fileName, len(data.Records), func(w io.Writer) error {
		return RenderPNG(w, data, title)
	})
}

// Failed reports whether any export so far failed.
func (em *ExportManager) Failed() bool {
	for _, r := range em.Results {
		if !r.Success {
			return true
		}
	}
	return false
}

func (em *ExportManager) export(kind, fileName string, records int, write func(io.Writer) error) model.ExportResult {
	result := model.ExportResult{Type: kind, RecordCount: records, Timestamp: time.Now()}
	path, err := em.Outputs.GetOutputFilePath(em.JobID, fileName)
	if err == nil {
		result.Path = path
		err = writeFile(path, write)
	}
	if err == nil && em.Recorder != nil {
		size, _ := utils.GetFileSize(path)
		_, err = em.Recorder.SaveOutputFile(model.OutputFile{
			JobID:    em.JobID,
			FileName: fileName,
			FilePath: path,
			FileType: utils.GetFileType(fileName),
			FileSize: size,
			URL:      em.Outputs.GetDownloadURL(em.JobID, fileName),
		})
	}

	result.Success = err == nil
	if err != nil {
		result.Error = err.Error()
		monitoring.Logf("❌ Export %s to %s failed: %v", kind, fileName, err)
	} else {
		monitoring.Logf("✅ Export %s: %d records written to %s", kind, records, path)
	}
	em.Results = append(em.Results, result)
	return result
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := write(file); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}
	return file.Close()
}

// WriteChartCSV writes data as CSV with a header row.
func WriteChartCSV(w io.Writer, data model.ChartData) error {
	writer := csv.NewWriter(w)
	header := append([]string{data.CategoryKey}, data.Series...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, rec := range data.Records {
		row := make([]string, 0, len(header))
		row = append(row, rec.Category)
		for _, s := range data.Series {
			row = append(row, strconv.FormatFloat(rec.Values[s], 'f', -1, 64))
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
