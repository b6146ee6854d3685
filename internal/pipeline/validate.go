package pipeline

import (
	"fmt"
	"strings"

	"go-sqa-metrics/internal/model"
	"go-sqa-metrics/pkg/utils"
)

// ValidationError lists everything wrong with a request.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid request: " + strings.Join(e.Problems, "; ")
}

// ValidateJobSpec checks a comparison request before it is stored. Fewer than
// two results is reported as *model.InsufficientInputError.
func ValidateJobSpec(spec model.ComparisonJobSpec) error {
	if len(spec.ResultIDs) < 2 {
		return &model.InsufficientInputError{Got: len(spec.ResultIDs)}
	}

	var problems []string
	seen := make(map[string]bool, len(spec.ResultIDs))
	for i, id := range spec.ResultIDs {
		if strings.TrimSpace(id) == "" {
			problems = append(problems, fmt.Sprintf("result_ids[%d] is empty", i))
			continue
		}
		if seen[id] {
			problems = append(problems, fmt.Sprintf("result_ids[%d] repeats %q", i, id))
		}
		seen[id] = true
	}
	if spec.Baseline < 0 || spec.Baseline >= len(spec.ResultIDs) {
		problems = append(problems, fmt.Sprintf("baseline %d is not an index of result_ids", spec.Baseline))
	}
	if spec.Threshold < 0 {
		problems = append(problems, "threshold must be ≥ 0")
	}
	switch spec.ChartKind {
	case "", ChartBar, ChartLine:
	default:
		problems = append(problems, fmt.Sprintf("chart_kind %q is not bar or line", spec.ChartKind))
	}
	if spec.Timeout != "" && utils.ParseDurationOr(spec.Timeout, 0) <= 0 {
		problems = append(problems, fmt.Sprintf("timeout %q is not a positive duration", spec.Timeout))
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// ValidateAggregateRequest checks the grouping and chart dimensions of an
// aggregation request.
func ValidateAggregateRequest(req model.AggregateRequest) error {
	var problems []string
	if req.GroupBy != "" && !req.GroupBy.Valid() {
		problems = append(problems, fmt.Sprintf("group_by %q is unknown", req.GroupBy))
	}
	for _, field := range []struct {
		name string
		dim  model.Dimension
	}{{"category", req.Category}, {"series", req.Series}} {
		switch field.dim {
		case "", model.DimensionMetric, model.DimensionNoiseType, model.DimensionDBLevel:
		default:
			problems = append(problems, fmt.Sprintf("%s %q is not a record dimension", field.name, field.dim))
		}
	}
	if req.Category != "" && req.Category == req.Series {
		problems = append(problems, "category and series must differ")
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
