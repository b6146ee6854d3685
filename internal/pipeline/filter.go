package pipeline

import (
	"strings"

	"go-sqa-metrics/internal/model"
	"go-sqa-metrics/pkg/utils"
)

// FilterRows returns the rows passing every active constraint of spec.
// A dimension is active when its selection is non-empty and the schema has a
// column for it. Values are trimmed and compared case-sensitively; rows with no
// value for an active dimension are dropped. The input is never modified.
func FilterRows(ds model.Dataset, schema model.Schema, spec model.FilterSpec) model.Dataset {
	noise := selectionSet(spec.NoiseTypes)
	levels := selectionSet(spec.DBLevels)
	query := strings.ToLower(strings.TrimSpace(spec.FileNameQuery))

	checkNoise := len(noise) > 0 && schema.HasNoiseType()
	checkLevel := len(levels) > 0 && schema.HasDBLevel()
	checkFile := query != "" && schema.HasFile()

	if !checkNoise && !checkLevel && !checkFile {
		return ds.WithRows(append([]model.Row(nil), ds.Rows...))
	}

	out := make([]model.Row, 0, len(ds.Rows))
	for _, row := range ds.Rows {
		if checkNoise && !inSelection(row, schema.NoiseTypeColumn, noise) {
			continue
		}
		if checkLevel && !inSelection(row, schema.DBLevelColumn, levels) {
			continue
		}
		if checkFile {
			name := strings.ToLower(utils.FormatValue(row[schema.FileColumn]))
			if !strings.Contains(name, query) {
				continue
			}
		}
		out = append(out, row)
	}
	return ds.WithRows(out)
}

// FilterPair applies two independent specs to the same dataset, as when two
// charts over one report are displayed side by side.
func FilterPair(ds model.Dataset, schema model.Schema, first, second model.FilterSpec) (model.Dataset, model.Dataset) {
	return FilterRows(ds, schema, first), FilterRows(ds, schema, second)
}

// DistinctValues lists the trimmed, non-empty values of column in order of first appearance.
func DistinctValues(ds model.Dataset, column string) []string {
	out := []string{}
	if column == "" {
		return out
	}
	seen := make(map[string]bool)
	for _, row := range ds.Rows {
		v := utils.FormatValue(row[column])
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func selectionSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[strings.TrimSpace(v)] = true
	}
	return set
}

func inSelection(row model.Row, column string, set map[string]bool) bool {
	raw, ok := row[column]
	if !ok || raw == nil {
		return false
	}
	return set[utils.FormatValue(raw)]
}
