package pipeline

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"go-sqa-metrics/internal/model"
	"go-sqa-metrics/pkg/utils"
)

// AggregateOptions selects the grouping and optional restrictions.
type AggregateOptions struct {
	GroupBy model.GroupBy
	// NoiseTypes restricts (and orders) the noise types taken into account.
	// Honoured by GroupByNoiseType and GroupByDBLevelAndMetric.
	NoiseTypes []string
	// Metrics restricts the metric columns; empty means all detected metrics.
	Metrics []string
}

// Aggregate averages the metric columns of ds per group. Non-numeric and
// non-finite cells are excluded from both sum and count; a metric with no valid
// sample in a group reports 0 with Samples == 0. An empty slice means there was
// nothing to aggregate (no rows, no metrics, or the grouping dimension is
// unavailable in the schema).
func Aggregate(ds model.Dataset, schema model.Schema, opts AggregateOptions) []model.GroupRecord {
	out := []model.GroupRecord{}
	metrics := selectMetrics(schema, opts.Metrics)
	if ds.IsEmpty() || len(metrics) == 0 {
		return out
	}

	switch opts.GroupBy {
	case model.GroupByMetric, "":
		for _, m := range metrics {
			value, n := MeanOf(ds.Rows, m)
			out = append(out, model.GroupRecord{Metric: m, Value: value, Samples: n})
		}
		return out

	case model.GroupByNoiseType:
		if !schema.HasNoiseType() {
			return out
		}
		rows := ds.Rows
		order := DistinctValues(ds, schema.NoiseTypeColumn)
		if len(opts.NoiseTypes) > 0 {
			order = orderedSelection(opts.NoiseTypes, order)
		}
		groups := partition(rows, schema.NoiseTypeColumn)
		for _, noise := range order {
			for _, m := range metrics {
				value, n := MeanOf(groups[noise], m)
				out = append(out, model.GroupRecord{NoiseType: noise, Metric: m, Value: value, Samples: n})
			}
		}
		return out

	case model.GroupByDBLevel, model.GroupByDBLevelAndMetric:
		if !schema.HasDBLevel() {
			return out
		}
		rows := ds.Rows
		if opts.GroupBy == model.GroupByDBLevelAndMetric && len(opts.NoiseTypes) > 0 && schema.HasNoiseType() {
			rows = FilterRows(ds, schema, model.FilterSpec{NoiseTypes: opts.NoiseTypes}).Rows
		}
		restricted := ds.WithRows(rows)
		levels := SortDBLevels(DistinctValues(restricted, schema.DBLevelColumn))
		groups := partition(rows, schema.DBLevelColumn)
		for _, level := range levels {
			for _, m := range metrics {
				value, n := MeanOf(groups[level], m)
				out = append(out, model.GroupRecord{DBLevel: level, Metric: m, Value: value, Samples: n})
			}
		}
		return out
	}
	return out
}

// MeanOf averages the finite numeric values of column over rows. It returns
// (0, 0) when no row holds a valid value.
func MeanOf(rows []model.Row, column string) (float64, int) {
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		if f, ok := utils.ParseNumber(row[column]); ok {
			values = append(values, f)
		}
	}
	if len(values) == 0 {
		return 0, 0
	}
	return stat.Mean(values, nil), len(values)
}

// SortDBLevels orders dB labels by the first integer they contain ("5dB" <
// "20dB" < "100dB"); labels without digits count as 0. Equal keys keep their order.
func SortDBLevels(labels []string) []string {
	out := make([]string, len(labels))
	copy(out, labels)
	sort.SliceStable(out, func(i, j int) bool {
		return CompareDBLevels(out[i], out[j]) < 0
	})
	return out
}

// CompareDBLevels is the numeric-aware comparator used by SortDBLevels.
func CompareDBLevels(a, b string) int {
	x, y := utils.FirstInt(a), utils.FirstInt(b)
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func selectMetrics(schema model.Schema, wanted []string) []string {
	if len(wanted) == 0 {
		return schema.MetricColumns
	}
	out := make([]string, 0, len(wanted))
	for _, m := range wanted {
		if schema.HasMetric(m) {
			out = append(out, m)
		}
	}
	return out
}

// orderedSelection keeps the selection order, dropping values absent from available.
func orderedSelection(selection, available []string) []string {
	present := make(map[string]bool, len(available))
	for _, v := range available {
		present[v] = true
	}
	out := make([]string, 0, len(selection))
	seen := make(map[string]bool, len(selection))
	for _, v := range selection {
		v = utils.FormatValue(v)
		if present[v] && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func partition(rows []model.Row, column string) map[string][]model.Row {
	groups := make(map[string][]model.Row)
	for _, row := range rows {
		key := utils.FormatValue(row[column])
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], row)
	}
	return groups
}
