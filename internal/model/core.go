package model

import "strings"

// Row is one flat spreadsheet record: column name -> scalar (string, number or nil).
type Row map[string]interface{}

// Dataset is the ordered rows of one uploaded report. Columns keeps the header
// order of the source so column detection can break ties deterministically.
type Dataset struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// NewDataset builds a dataset from rows, deriving the column order from the
// first appearance of each key. Map iteration order is random, so callers that
// know the header order should set Columns themselves.
func NewDataset(columns []string, rows []Row) Dataset {
	if columns == nil {
		columns = []string{}
	}
	if rows == nil {
		rows = []Row{}
	}
	return Dataset{Columns: columns, Rows: rows}
}

// Len returns the number of rows.
func (d Dataset) Len() int { return len(d.Rows) }

// IsEmpty reports whether the dataset has no rows.
func (d Dataset) IsEmpty() bool { return len(d.Rows) == 0 }

// WithRows returns a dataset sharing d's columns but holding rows.
func (d Dataset) WithRows(rows []Row) Dataset {
	if rows == nil {
		rows = []Row{}
	}
	return Dataset{Columns: d.Columns, Rows: rows}
}

// Schema describes which columns of a dataset carry the noise type, the
// dB/SNR level, the file name and the numeric metrics.
// Empty column names mean the dimension is unavailable.
type Schema struct {
	NoiseTypeColumn string   `json:"noise_type_column,omitempty"`
	DBLevelColumn   string   `json:"db_level_column,omitempty"`
	FileColumn      string   `json:"file_column,omitempty"`
	MetricColumns   []string `json:"metric_columns"`
}

func (s Schema) HasNoiseType() bool { return s.NoiseTypeColumn != "" }
func (s Schema) HasDBLevel() bool   { return s.DBLevelColumn != "" }
func (s Schema) HasFile() bool      { return s.FileColumn != "" }

// HasMetric reports whether name is one of the metric columns.
func (s Schema) HasMetric(name string) bool {
	for _, m := range s.MetricColumns {
		if m == name {
			return true
		}
	}
	return false
}

// Missing lists "column not found" notes for the dimensions that could not be detected.
func (s Schema) Missing() []string {
	var notes []string
	if !s.HasNoiseType() {
		notes = append(notes, "noise type column not found")
	}
	if !s.HasDBLevel() {
		notes = append(notes, "dB/SNR level column not found")
	}
	return notes
}

// IsDimension reports whether col is one of the non-metric columns.
func (s Schema) IsDimension(col string) bool {
	return col != "" && (col == s.NoiseTypeColumn || col == s.DBLevelColumn || col == s.FileColumn)
}

// FilterSpec holds the user's selections. Empty sets impose no constraint.
type FilterSpec struct {
	NoiseTypes    []string `json:"noise_types,omitempty"`
	DBLevels      []string `json:"db_levels,omitempty"`
	FileNameQuery string   `json:"file_name_query,omitempty"`
}

// IsEmpty reports whether the filter constrains nothing.
func (f FilterSpec) IsEmpty() bool {
	return len(f.NoiseTypes) == 0 && len(f.DBLevels) == 0 && strings.TrimSpace(f.FileNameQuery) == ""
}

// ResultSet is one named version/result taking part in a comparison.
// A zero Schema is detected from the dataset when the comparison runs.
type ResultSet struct {
	Name    string  `json:"name"`
	Dataset Dataset `json:"dataset"`
	Schema  *Schema `json:"schema,omitempty"`
}

// GroupBy selects how the aggregator partitions rows.
type GroupBy string

const (
	GroupByMetric           GroupBy = "metric"
	GroupByNoiseType        GroupBy = "noise_type"
	GroupByDBLevel          GroupBy = "db_level"
	GroupByDBLevelAndMetric GroupBy = "db_level_metric"
)

// Valid reports whether g is a known grouping.
func (g GroupBy) Valid() bool {
	switch g {
	case GroupByMetric, GroupByNoiseType, GroupByDBLevel, GroupByDBLevelAndMetric:
		return true
	}
	return false
}

// Dimension names a field of a GroupRecord that can be plotted.
type Dimension string

const (
	DimensionMetric    Dimension = "metric"
	DimensionNoiseType Dimension = "noise_type"
	DimensionDBLevel   Dimension = "db_level"
	DimensionResult    Dimension = "result"
)
