package pipeline

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"go-sqa-metrics/internal/model"
)

// CompareOptions tunes a comparison.
type CompareOptions struct {
	// Baseline is the index of the result every difference is measured against.
	Baseline int
	// Metrics optionally restricts (and orders) the common metrics.
	Metrics []string
	// Filter, when set, is applied to every result set using its own schema.
	Filter *model.FilterSpec
	// Threshold is the band inside which a difference counts as unchanged.
	Threshold float64
	// SampleRows is passed to schema detection for sets without a schema.
	SampleRows int
}

// Compare scores two or more result sets metric by metric. It rejects fewer
// than two sets with *model.InsufficientInputError. When the sets share no
// metric the comparison is returned with no metric scores and the
// WarningNoCommonMetrics warning.
func Compare(sets []model.ResultSet, opts CompareOptions) (*model.Comparison, error) {
	if len(sets) < 2 {
		return nil, &model.InsufficientInputError{Got: len(sets)}
	}
	if opts.Baseline < 0 || opts.Baseline >= len(sets) {
		return nil, fmt.Errorf("baseline %d of %d results: %w", opts.Baseline, len(sets), model.ErrBaselineOutOfRange)
	}
	threshold := math.Abs(opts.Threshold)

	schemas := make([]model.Schema, len(sets))
	rows := make([][]model.Row, len(sets))
	for i, set := range sets {
		if set.Schema != nil {
			schemas[i] = *set.Schema
		} else {
			schemas[i] = DetectSchemaSampled(set.Dataset, opts.SampleRows)
		}
		ds := set.Dataset
		if opts.Filter != nil {
			ds = FilterRows(ds, schemas[i], *opts.Filter)
		}
		rows[i] = ds.Rows
	}

	common := CommonMetrics(schemas)
	if len(opts.Metrics) > 0 {
		common = orderedSelection(opts.Metrics, common)
	}

	cmp := &model.Comparison{
		Results:       resultNames(sets),
		Baseline:      opts.Baseline,
		Threshold:     threshold,
		CommonMetrics: common,
		Metrics:       []model.MetricScore{},
		OverallWinner: -1,
	}
	if len(common) == 0 {
		cmp.Warnings = append(cmp.Warnings, model.WarningNoCommonMetrics)
	}

	for _, metric := range common {
		values := make([]*float64, len(sets))
		for i := range sets {
			if v, n := MeanOf(rows[i], metric); n > 0 {
				values[i] = floatPtr(v)
			}
		}
		cmp.Metrics = append(cmp.Metrics, scoreMetric(metric, values, opts.Baseline, threshold))
	}

	cmp.Scores = overallScores(cmp)
	cmp.Ranking = rank(cmp.Scores)
	cmp.OverallWinner = overallWinner(cmp.Scores)
	return cmp, nil
}

// CommonMetrics is the intersection of the metric columns of every schema,
// in the order of the first schema.
func CommonMetrics(schemas []model.Schema) []string {
	out := []string{}
	if len(schemas) == 0 {
		return out
	}
	for _, m := range schemas[0].MetricColumns {
		shared := true
		for _, s := range schemas[1:] {
			if !s.HasMetric(m) {
				shared = false
				break
			}
		}
		if shared {
			out = append(out, m)
		}
	}
	return out
}

func scoreMetric(metric string, values []*float64, baseline int, threshold float64) model.MetricScore {
	score := model.MetricScore{
		Metric:      metric,
		Values:      values,
		Winners:     []int{},
		Losers:      []int{},
		Differences: make([]*float64, len(values)),
		DiffPercent: make([]*float64, len(values)),
		Trends:      make([]model.Trend, len(values)),
	}

	valid := make([]float64, 0, len(values))
	for _, v := range values {
		if v != nil {
			valid = append(valid, *v)
		}
	}
	if len(valid) > 0 {
		hi, lo := floats.Max(valid), floats.Min(valid)
		score.Max, score.Min = floatPtr(hi), floatPtr(lo)
		score.Mean = floatPtr(stat.Mean(valid, nil))
		if hi > lo {
			for i, v := range values {
				if v == nil {
					continue
				}
				if *v == hi {
					score.Winners = append(score.Winners, i)
				}
				if *v == lo {
					score.Losers = append(score.Losers, i)
				}
			}
		}
	}

	base := values[baseline]
	for i, v := range values {
		if i == baseline {
			score.Differences[i] = floatPtr(0)
			score.DiffPercent[i] = floatPtr(0)
			score.Trends[i] = model.TrendBaseline
			continue
		}
		if v == nil || base == nil {
			score.Trends[i] = model.TrendUnknown
			continue
		}
		d := *v - *base
		score.Differences[i] = floatPtr(d)
		if *base != 0 {
			score.DiffPercent[i] = floatPtr(d / math.Abs(*base) * 100)
		}
		score.Trends[i] = classify(d, threshold)
	}
	return score
}

func classify(diff, threshold float64) model.Trend {
	switch {
	case diff > threshold:
		return model.TrendImproved
	case diff < -threshold:
		return model.TrendDegraded
	}
	return model.TrendUnchanged
}

// overallScores averages each result's valid metric values. A result without
// any valid value scores 0 with HasData unset.
func overallScores(cmp *model.Comparison) []model.ResultScore {
	scores := make([]model.ResultScore, len(cmp.Results))
	for i, name := range cmp.Results {
		var valid []float64
		for _, ms := range cmp.Metrics {
			if v := ms.Values[i]; v != nil {
				valid = append(valid, *v)
			}
		}
		scores[i] = model.ResultScore{Index: i, Name: name, ValidMetrics: len(valid)}
		if len(valid) > 0 {
			scores[i].OverallScore = stat.Mean(valid, nil)
			scores[i].HasData = true
		}
	}
	return scores
}

// rank orders results with data by score, highest first, keeping input order
// on ties; results without data follow in input order.
func rank(scores []model.ResultScore) []model.ResultScore {
	out := append([]model.ResultScore(nil), scores...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].HasData != out[j].HasData {
			return out[i].HasData
		}
		return out[i].OverallScore > out[j].OverallScore
	})
	return out
}

func overallWinner(scores []model.ResultScore) int {
	winner := -1
	for i, s := range scores {
		if !s.HasData {
			continue
		}
		if winner < 0 || s.OverallScore > scores[winner].OverallScore {
			winner = i
		}
	}
	return winner
}

func resultNames(sets []model.ResultSet) []string {
	names := make([]string, len(sets))
	for i, s := range sets {
		names[i] = s.Name
	}
	return names
}

func floatPtr(f float64) *float64 { return &f }
