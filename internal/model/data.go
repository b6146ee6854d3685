package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// GroupRecord is one averaged cell of an aggregation: a metric's mean over the
// rows sharing the same noise type and/or dB level. Labels that are not part
// of the grouping are left empty.
type GroupRecord struct {
	NoiseType string  `json:"noise_type,omitempty"`
	DBLevel   string  `json:"db_level,omitempty"`
	Metric    string  `json:"metric"`
	Value     float64 `json:"value"`
	Samples   int     `json:"samples"`
}

// Label returns the record's value for the given dimension.
func (g GroupRecord) Label(dim Dimension) string {
	switch dim {
	case DimensionMetric:
		return g.Metric
	case DimensionNoiseType:
		return g.NoiseType
	case DimensionDBLevel:
		return g.DBLevel
	}
	return ""
}

// Trend classifies a difference against the baseline.
type Trend string

const (
	TrendImproved  Trend = "improved"
	TrendDegraded  Trend = "degraded"
	TrendUnchanged Trend = "unchanged"
	TrendUnknown   Trend = "unknown"
	TrendBaseline  Trend = "baseline"
)

// MetricScore is the per-result average of one common metric plus its summary.
// A nil entry in Values means the result had no valid sample for the metric.
type MetricScore struct {
	Metric      string     `json:"metric"`
	Values      []*float64 `json:"values"`
	Max         *float64   `json:"max"`
	Min         *float64   `json:"min"`
	Mean        *float64   `json:"mean"`
	Winners     []int      `json:"winners"`
	Losers      []int      `json:"losers"`
	Differences []*float64 `json:"differences"`
	DiffPercent []*float64 `json:"diff_percent"`
	Trends      []Trend    `json:"trends"`
}

// Diff returns Values[i] - Values[j], or false if either side is missing.
func (m MetricScore) Diff(i, j int) (float64, bool) {
	if i < 0 || j < 0 || i >= len(m.Values) || j >= len(m.Values) {
		return 0, false
	}
	if m.Values[i] == nil || m.Values[j] == nil {
		return 0, false
	}
	return *m.Values[i] - *m.Values[j], true
}

// ResultScore is a result's overall standing across all common metrics.
type ResultScore struct {
	Index        int     `json:"index"`
	Name         string  `json:"name"`
	OverallScore float64 `json:"overall_score"`
	HasData      bool    `json:"has_data"`
	ValidMetrics int     `json:"valid_metrics"`
}

// Warning is a non-fatal condition attached to a computed value.
type Warning string

const WarningNoCommonMetrics Warning = "no_common_metrics"

// Comparison is the output of comparing two or more result sets.
type Comparison struct {
	Results       []string      `json:"results"`
	Baseline      int           `json:"baseline"`
	Threshold     float64       `json:"threshold"`
	CommonMetrics []string      `json:"common_metrics"`
	Metrics       []MetricScore `json:"metrics"`
	Scores        []ResultScore `json:"scores"`
	Ranking       []ResultScore `json:"ranking"`
	// OverallWinner is -1 when no result has data.
	OverallWinner int       `json:"overall_winner"`
	Warnings      []Warning `json:"warnings,omitempty"`
}

// HasWarning reports whether w was raised.
func (c *Comparison) HasWarning(w Warning) bool {
	for _, got := range c.Warnings {
		if got == w {
			return true
		}
	}
	return false
}

// ChartRecord is one category on the X axis with one value per series.
type ChartRecord struct {
	Category string
	Values   map[string]float64
}

// ChartData is the row-oriented input for a categorical chart. Every record
// carries a value for every series.
type ChartData struct {
	CategoryKey string        `json:"category_key"`
	Series      []string      `json:"series"`
	Records     []ChartRecord `json:"records"`
}

// IsEmpty reports whether there is nothing to plot.
func (c ChartData) IsEmpty() bool { return len(c.Records) == 0 }

// Categories returns the X axis labels in order.
func (c ChartData) Categories() []string {
	out := make([]string, len(c.Records))
	for i, r := range c.Records {
		out[i] = r.Category
	}
	return out
}

// SeriesValues returns the values of one series across all categories.
func (c ChartData) SeriesValues(series string) []float64 {
	out := make([]float64, len(c.Records))
	for i, r := range c.Records {
		out[i] = r.Values[series]
	}
	return out
}

// MarshalJSON writes records as flat objects keeping the category key first
// and the series in declared order.
func (c ChartData) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"category_key":`)
	if err := writeJSON(&buf, c.CategoryKey); err != nil {
		return nil, err
	}
	buf.WriteString(`,"series":`)
	series := c.Series
	if series == nil {
		series = []string{}
	}
	if err := writeJSON(&buf, series); err != nil {
		return nil, err
	}
	buf.WriteString(`,"records":[`)
	for i, rec := range c.Records {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		if err := writeJSON(&buf, c.CategoryKey); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSON(&buf, rec.Category); err != nil {
			return nil, err
		}
		for _, s := range c.Series {
			buf.WriteByte(',')
			if err := writeJSON(&buf, s); err != nil {
				return nil, err
			}
			buf.WriteByte(':')
			if err := writeJSON(&buf, rec.Values[s]); err != nil {
				return nil, err
			}
		}
		buf.WriteByte('}')
	}
	buf.WriteString(`]}`)
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

// ExportResult represents the result of an export operation
type ExportResult struct {
	Type        string    `json:"type"` // "json", "csv", "html", "png"
	Path        string    `json:"path"`
	RecordCount int       `json:"record_count"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
