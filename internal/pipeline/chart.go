package pipeline

import (
	"fmt"

	"go-sqa-metrics/internal/model"
	"go-sqa-metrics/pkg/utils"
)

// DefaultSeries names the single series of a chart without a series dimension.
const DefaultSeries = "value"

// ShapeGroups pivots aggregation records into chart records: one record per
// category label, one value per series label. Cells hit by several records
// are averaged, absent cells are 0 and values are rounded to 2 decimals.
// Records without a category label are skipped. An empty series dimension
// puts every value under DefaultSeries.
func ShapeGroups(records []model.GroupRecord, category, series model.Dimension) model.ChartData {
	p := newPivot(string(category))
	for _, r := range records {
		cat := r.Label(category)
		if cat == "" {
			continue
		}
		s := DefaultSeries
		if series != "" {
			if s = r.Label(series); s == "" {
				continue
			}
		}
		p.add(cat, s, r.Value)
	}
	return p.chart()
}

// ShapeComparison plots a comparison. With the metric axis (the default) each
// common metric is a category and each result a series; with the result axis
// the roles swap. Missing values are plotted as 0.
func ShapeComparison(cmp *model.Comparison, category model.Dimension) model.ChartData {
	if category == model.DimensionResult {
		p := newPivot(string(model.DimensionResult))
		names := uniqueNames(cmp.Results)
		for i, name := range names {
			p.category(name)
			for _, ms := range cmp.Metrics {
				p.add(name, ms.Metric, derefOrZero(ms.Values[i]))
			}
		}
		return p.chart()
	}

	p := newPivot(string(model.DimensionMetric))
	names := uniqueNames(cmp.Results)
	for _, ms := range cmp.Metrics {
		for i, name := range names {
			p.add(ms.Metric, name, derefOrZero(ms.Values[i]))
		}
	}
	return p.chart()
}

// ShapeDifferences plots every non-baseline result's difference to the
// baseline per metric. Unknown differences are plotted as 0.
func ShapeDifferences(cmp *model.Comparison) model.ChartData {
	p := newPivot(string(model.DimensionMetric))
	names := uniqueNames(cmp.Results)
	for _, ms := range cmp.Metrics {
		for i, name := range names {
			if i == cmp.Baseline {
				continue
			}
			p.add(ms.Metric, name, derefOrZero(ms.Differences[i]))
		}
	}
	return p.chart()
}

// ShapeOverall plots the overall score of every result in input order.
func ShapeOverall(cmp *model.Comparison) model.ChartData {
	p := newPivot(string(model.DimensionResult))
	names := uniqueNames(cmp.Results)
	for i, s := range cmp.Scores {
		p.add(names[i], "overall_score", s.OverallScore)
	}
	return p.chart()
}

// pivot accumulates (category, series) cells keeping first-appearance order.
type pivot struct {
	key        string
	categories []string
	series     []string
	seenCat    map[string]bool
	seenSeries map[string]bool
	alias      map[string]string
	sum        map[[2]string]float64
	count      map[[2]string]int
}

func newPivot(key string) *pivot {
	return &pivot{
		key:        key,
		seenCat:    make(map[string]bool),
		seenSeries: make(map[string]bool),
		alias:      make(map[string]string),
		sum:        make(map[[2]string]float64),
		count:      make(map[[2]string]int),
	}
}

func (p *pivot) category(cat string) {
	if !p.seenCat[cat] {
		p.seenCat[cat] = true
		p.categories = append(p.categories, cat)
	}
}

func (p *pivot) add(cat, series string, v float64) {
	p.category(cat)
	cell := [2]string{cat, p.seriesName(series)}
	p.sum[cell] += v
	p.count[cell]++
}

// seriesName returns the output key of a series. A name equal to the category
// key or to an earlier output key gets a " (N)" suffix.
func (p *pivot) seriesName(series string) string {
	if name, ok := p.alias[series]; ok {
		return name
	}
	name := series
	for n := 2; name == p.key || p.seenSeries[name]; n++ {
		name = fmt.Sprintf("%s (%d)", series, n)
	}
	p.alias[series] = name
	p.seenSeries[name] = true
	p.series = append(p.series, name)
	return name
}

func (p *pivot) chart() model.ChartData {
	out := model.ChartData{
		CategoryKey: p.key,
		Series:      append([]string{}, p.series...),
		Records:     make([]model.ChartRecord, 0, len(p.categories)),
	}
	for _, cat := range p.categories {
		rec := model.ChartRecord{Category: cat, Values: make(map[string]float64, len(p.series))}
		for _, s := range p.series {
			cell := [2]string{cat, s}
			if n := p.count[cell]; n > 0 {
				rec.Values[s] = utils.Round2(p.sum[cell] / float64(n))
			} else {
				rec.Values[s] = 0
			}
		}
		out.Records = append(out.Records, rec)
	}
	return out
}

// uniqueNames makes result names usable as series keys: blanks become
// "Result N" and repeats get a " (N)" suffix.
func uniqueNames(names []string) []string {
	out := make([]string, len(names))
	taken := make(map[string]bool, len(names))
	for i, name := range names {
		if name == "" {
			name = fmt.Sprintf("Result %d", i+1)
		}
		candidate := name
		for n := 2; taken[candidate]; n++ {
			candidate = fmt.Sprintf("%s (%d)", name, n)
		}
		taken[candidate] = true
		out[i] = candidate
	}
	return out
}

func derefOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
