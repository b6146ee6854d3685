package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-sqa-metrics/internal/model"
)

func TestMetricRegistry(t *testing.T) {
	kv := NewMemoryKV()
	reg := NewMetricRegistry(kv)

	names, err := reg.List()
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, reg.Add("Echo Return Loss"))
	require.NoError(t, reg.Add(" Double Talk "))
	require.NoError(t, reg.Add("Echo Return Loss"))
	assert.Error(t, reg.Add("  "))

	names, err = reg.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"Echo Return Loss", "Double Talk"}, names)

	raw, ok, _ := kv.GetSetting(CustomMetricsKey)
	require.True(t, ok)
	assert.JSONEq(t, `["Echo Return Loss","Double Talk"]`, raw)

	require.NoError(t, reg.Remove("Echo Return Loss"))
	names, _ = reg.List()
	assert.Equal(t, []string{"Double Talk"}, names)

	require.NoError(t, reg.Replace([]string{"b", "", "a", "b"}))
	names, _ = reg.List()
	assert.Equal(t, []string{"b", "a"}, names)
}

type brokenKV struct{}

func (brokenKV) GetSetting(string) (string, bool, error) { return "", false, errors.New("disk gone") }
func (brokenKV) SetSetting(string, string) error         { return errors.New("disk gone") }

func TestMetricRegistry_StoreErrors(t *testing.T) {
	reg := NewMetricRegistry(brokenKV{})
	_, err := reg.List()
	assert.ErrorContains(t, err, "disk gone")
	assert.Error(t, reg.Add("x"))

	kv := NewMemoryKV()
	require.NoError(t, kv.SetSetting(CustomMetricsKey, "not json"))
	_, err = NewMetricRegistry(kv).List()
	assert.ErrorContains(t, err, "decode custom metrics")
}

func TestApplyCustomMetrics(t *testing.T) {
	ds := table([]string{"Noise Type", "dB Level", "MOS", "Comment Score", "File"},
		[]interface{}{"Traffic", "5dB", 4.0, "good", "a.wav"},
	)
	schema := DetectSchema(ds)
	require.Equal(t, []string{"MOS"}, schema.MetricColumns)

	got := ApplyCustomMetrics(schema, ds, []string{"Comment Score", "Noise Type", "dB Level", "File", "Missing", "MOS"})
	assert.Equal(t, []string{"MOS", "Comment Score"}, got.MetricColumns)
	assert.Equal(t, []string{"MOS"}, schema.MetricColumns, "input schema untouched")

	assert.Equal(t, schema, ApplyCustomMetrics(schema, ds, nil))
}

func TestApplyCustomMetrics_FeedsComparison(t *testing.T) {
	cols := []string{"Noise Type", "Rating"}
	a := table(cols, []interface{}{"Traffic", "n/a"}, []interface{}{"Traffic", "4"})
	b := table(cols, []interface{}{"Traffic", "3"})
	sa := ApplyCustomMetrics(model.Schema{NoiseTypeColumn: "Noise Type", MetricColumns: []string{}}, a, []string{"Rating"})
	sb := ApplyCustomMetrics(model.Schema{NoiseTypeColumn: "Noise Type", MetricColumns: []string{}}, b, []string{"Rating"})

	got, err := Compare([]model.ResultSet{
		{Name: "A", Dataset: a, Schema: &sa},
		{Name: "B", Dataset: b, Schema: &sb},
	}, CompareOptions{})
	require.NoError(t, err)
	require.Len(t, got.Metrics, 1)
	assert.Equal(t, 4.0, *got.Metrics[0].Values[0])
}
