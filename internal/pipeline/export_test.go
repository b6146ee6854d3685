package pipeline

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-sqa-metrics/internal/model"
	"go-sqa-metrics/pkg/utils"
)

type outputLog struct {
	mu    sync.Mutex
	files []model.OutputFile
}

func (o *outputLog) SaveOutputFile(f model.OutputFile) (int64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.files = append(o.files, f)
	return int64(len(o.files)), nil
}

func sampleChart() model.ChartData {
	return model.ChartData{
		CategoryKey: "metric",
		Series:      []string{"v1", "v2"},
		Records: []model.ChartRecord{
			{Category: "MOS", Values: map[string]float64{"v1": 4, "v2": 3.5}},
			{Category: "PESQ", Values: map[string]float64{"v1": 2.25, "v2": 0}},
		},
	}
}

func TestWriteChartCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteChartCSV(&buf, sampleChart()))
	assert.Equal(t, "metric,v1,v2\nMOS,4,3.5\nPESQ,2.25,0\n", buf.String())
}

func TestRenderHTML(t *testing.T) {
	for _, kind := range []string{ChartBar, ChartLine} {
		var buf bytes.Buffer
		require.NoError(t, RenderHTML(&buf, sampleChart(), kind, "Metric comparison"), kind)
		html := buf.String()
		assert.Contains(t, html, "<html")
		assert.Contains(t, html, "Metric comparison")
		assert.Contains(t, html, "PESQ")
	}

	assert.ErrorIs(t, RenderHTML(&bytes.Buffer{}, model.ChartData{}, ChartBar, "x"), ErrEmptyChart)
	assert.Error(t, RenderHTML(&bytes.Buffer{}, sampleChart(), "pie", "x"))
}

func TestRenderPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderPNG(&buf, sampleChart(), "Metric comparison"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG\r\n\x1a\n")))

	assert.ErrorIs(t, RenderPNG(&bytes.Buffer{}, model.ChartData{CategoryKey: "metric"}, "x"), ErrEmptyChart)
}

func TestExportManager(t *testing.T) {
	outputs := utils.NewOutputManager(t.TempDir())
	recorder := &outputLog{}
	em := NewExportManager("job-1", outputs, recorder)

	cmp := &model.Comparison{Results: []string{"v1", "v2"}, CommonMetrics: []string{"MOS"}, Metrics: []model.MetricScore{{Metric: "MOS"}}}
	summary := em.ExportSummary("summary.json", cmp)
	require.True(t, summary.Success, summary.Error)
	csvRes := em.ExportChartCSV("comparison.csv", sampleChart())
	require.True(t, csvRes.Success, csvRes.Error)
	assert.Equal(t, 2, csvRes.RecordCount)
	require.True(t, em.ExportChartPNG("comparison.png", sampleChart(), "t").Success)

	raw, err := os.ReadFile(summary.Path)
	require.NoError(t, err)
	var decoded struct {
		ExportInfo map[string]interface{} `json:"export_info"`
		Data       model.Comparison       `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "job-1", decoded.ExportInfo["job_id"])
	assert.Equal(t, []string{"MOS"}, decoded.Data.CommonMetrics)

	require.Len(t, recorder.files, 3)
	assert.Equal(t, "json", recorder.files[0].FileType)
	assert.Equal(t, "/api/v1/download/job-1/comparison.csv", recorder.files[1].URL)
	assert.Positive(t, recorder.files[2].FileSize)
	assert.False(t, em.Failed())

	// A failed render leaves no partial file behind.
	res := em.ExportChartHTML("empty.html", model.ChartData{}, ChartBar, "t")
	assert.False(t, res.Success)
	assert.True(t, em.Failed())
	_, err = os.Stat(filepath.Join(filepath.Dir(summary.Path), "empty.html"))
	assert.True(t, os.IsNotExist(err))
	assert.True(t, strings.Contains(res.Error, "no data"))
}
