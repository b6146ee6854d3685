package pipeline

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"go-sqa-metrics/internal/model"
)

func TestDetectSchema_HeaderScenario(t *testing.T) {
	ds := table([]string{"Noise Type", "dB/SNR Level", "Noise Suppression", "Voice Quality"},
		[]interface{}{"Traffic", "5dB", 3.5, "4.0"},
		[]interface{}{"Babble", "10dB", 4, 4.25},
		[]interface{}{"Pink", "20dB", "3", "3.75 (MOS)"},
	)

	got := DetectSchema(ds)
	want := model.Schema{
		NoiseTypeColumn: "Noise Type",
		DBLevelColumn:   "dB/SNR Level",
		MetricColumns:   []string{"Noise Suppression", "Voice Quality"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DetectSchema() mismatch (-want +got):\n%s", diff)
	}
}

func TestDetectSchema_Empty(t *testing.T) {
	got := DetectSchema(model.NewDataset([]string{"Noise Type", "MOS"}, nil))
	assert.Equal(t, model.Schema{MetricColumns: []string{}}, got)
	assert.Equal(t, []string{"noise type column not found", "dB/SNR level column not found"}, got.Missing())
}

func TestDetectSchema_DBLevelPriority(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		want    string
	}{
		{"db and level beats bare db", []string{"SNR", "dB Level", "MOS"}, "dB Level"},
		{"combined token", []string{"DB", "snr/db", "MOS"}, "snr/db"},
		{"bare snr fallback", []string{"Condition", "SNR", "MOS"}, "SNR"},
		{"case insensitive", []string{"SNR LEVEL", "MOS"}, "SNR LEVEL"},
		{"none", []string{"Condition", "MOS"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := table(tt.columns, []interface{}{"x", "y", 1.0})
			assert.Equal(t, tt.want, DetectSchema(ds).DBLevelColumn)
		})
	}
}

func TestDetectSchema_NoiseColumnNotReusedForDBLevel(t *testing.T) {
	// "Noise dB Type" is picked as noise type and must not also be the dB column.
	ds := table([]string{"Noise dB Type", "Level dB", "MOS"}, []interface{}{"Traffic", "5dB", 4.1})
	s := DetectSchema(ds)
	assert.Equal(t, "Noise dB Type", s.NoiseTypeColumn)
	assert.Equal(t, "Level dB", s.DBLevelColumn)
	assert.Equal(t, []string{"MOS"}, s.MetricColumns)
}

func TestDetectSchema_FileColumnExcludedFromMetrics(t *testing.T) {
	ds := table([]string{"File", "Noise Type", "MOS"},
		[]interface{}{"001.wav", "Traffic", 4.2},
	)
	s := DetectSchema(ds)
	assert.Equal(t, "File", s.FileColumn)
	assert.Equal(t, []string{"MOS"}, s.MetricColumns)
}

func TestDetectSchema_MetricSampling(t *testing.T) {
	columns := []string{"Noise Type", "Late", "Early", "Text"}
	var cells [][]interface{}
	for i := 0; i < 12; i++ {
		late := interface{}("")
		if i == 11 {
			late = 5.0
		}
		early := interface{}("-")
		if i == 9 {
			early = "2.5"
		}
		cells = append(cells, []interface{}{"Traffic", late, early, fmt.Sprintf("row %d", i)})
	}
	ds := table(columns, cells...)

	assert.Equal(t, []string{"Early"}, DetectSchema(ds).MetricColumns)
	assert.Equal(t, []string{"Late", "Early"}, DetectSchemaSampled(ds, 12).MetricColumns)
}

func TestDetectSchema_RejectsNonFinite(t *testing.T) {
	ds := table([]string{"A", "B", "C"},
		[]interface{}{"NaN", "Infinity", "1e999"},
	)
	assert.Empty(t, DetectSchema(ds).MetricColumns)
}

func TestDetectSchema_MetricsNeverContainDimensions(t *testing.T) {
	datasets := []model.Dataset{
		report(),
		table([]string{"type", "snr", "x"}, []interface{}{1, 2, 3}),
		table([]string{"noise", "noise db level", "db"}, []interface{}{1.0, 2.0, 3.0}),
		table([]string{"filename", "level"}, []interface{}{"7", "8"}),
	}
	for i, ds := range datasets {
		s := DetectSchema(ds)
		for _, m := range s.MetricColumns {
			assert.NotEqual(t, s.NoiseTypeColumn, m, "dataset %d", i)
			assert.NotEqual(t, s.DBLevelColumn, m, "dataset %d", i)
		}
	}
}

func TestColumns_AppendsRowOnlyKeys(t *testing.T) {
	ds := model.NewDataset([]string{"B", "A"}, []model.Row{
		{"B": 1, "A": 2, "Z": 3, "C": 4},
	})
	assert.Equal(t, []string{"B", "A", "C", "Z"}, Columns(ds))
}
