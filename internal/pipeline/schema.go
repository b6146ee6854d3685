package pipeline

import (
	"sort"
	"strings"

	"go-sqa-metrics/internal/model"
	"go-sqa-metrics/pkg/utils"
)

// DefaultSampleRows is how many leading rows are inspected when deciding
// whether a column holds a metric.
const DefaultSampleRows = 10

// DetectSchema infers the noise-type, dB/SNR level, file name and metric
// columns of a dataset. It never fails: undetected dimensions are left empty.
func DetectSchema(ds model.Dataset) model.Schema {
	return DetectSchemaSampled(ds, DefaultSampleRows)
}

// DetectSchemaSampled is DetectSchema with a custom metric sample size.
func DetectSchemaSampled(ds model.Dataset, sampleRows int) model.Schema {
	schema := model.Schema{MetricColumns: []string{}}
	if ds.IsEmpty() {
		return schema
	}
	if sampleRows <= 0 {
		sampleRows = DefaultSampleRows
	}

	columns := Columns(ds)
	lower := make([]string, len(columns))
	for i, c := range columns {
		lower[i] = strings.ToLower(c)
	}

	for i, l := range lower {
		if strings.Contains(l, "noise") || strings.Contains(l, "type") {
			schema.NoiseTypeColumn = columns[i]
			break
		}
	}

	schema.DBLevelColumn = detectDBLevelColumn(columns, lower, schema.NoiseTypeColumn)

	for i, l := range lower {
		if columns[i] == schema.NoiseTypeColumn || columns[i] == schema.DBLevelColumn {
			continue
		}
		if strings.Contains(l, "file") {
			schema.FileColumn = columns[i]
			break
		}
	}

	sample := ds.Rows
	if len(sample) > sampleRows {
		sample = sample[:sampleRows]
	}
	for _, col := range columns {
		if schema.IsDimension(col) {
			continue
		}
		for _, row := range sample {
			if _, ok := utils.ParseNumber(row[col]); ok {
				schema.MetricColumns = append(schema.MetricColumns, col)
				break
			}
		}
	}
	return schema
}

// detectDBLevelColumn tries, in priority order: a db/snr level column or a
// combined "db/snr" token; any db/snr column mentioning level; any db/snr column.
func detectDBLevelColumn(columns, lower []string, exclude string) string {
	hasDB := func(l string) bool { return strings.Contains(l, "db") || strings.Contains(l, "snr") }
	passes := []func(string) bool{
		func(l string) bool {
			return (hasDB(l) && strings.Contains(l, "level")) ||
				strings.Contains(l, "db/snr") || strings.Contains(l, "snr/db")
		},
		func(l string) bool { return hasDB(l) && strings.Contains(l, "level") },
		hasDB,
	}
	for _, match := range passes {
		for i, l := range lower {
			if columns[i] == exclude {
				continue
			}
			if match(l) {
				return columns[i]
			}
		}
	}
	return ""
}

// Columns returns the dataset's columns in header order. Keys found only in
// rows are appended in sorted order so the result is deterministic.
func Columns(ds model.Dataset) []string {
	seen := make(map[string]bool, len(ds.Columns))
	out := make([]string, 0, len(ds.Columns))
	for _, c := range ds.Columns {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for _, row := range ds.Rows {
		var extra []string
		for k := range row {
			if !seen[k] {
				seen[k] = true
				extra = append(extra, k)
			}
		}
		sort.Strings(extra)
		out = append(out, extra...)
	}
	return out
}
