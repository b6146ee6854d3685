package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go-sqa-metrics/internal/model"
)

// CustomMetricsKey is the settings key holding the user-added metric names.
const CustomMetricsKey = "custom_metrics"

// KeyValueStore is the small settings store the registry persists to.
// Get reports ok == false for an unknown key.
type KeyValueStore interface {
	GetSetting(key string) (value string, ok bool, err error)
	SetSetting(key, value string) error
}

// MemoryKV is an in-process KeyValueStore.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

func (m *MemoryKV) GetSetting(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryKV) SetSetting(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// MetricRegistry keeps the list of custom metric names as a JSON array.
type MetricRegistry struct {
	kv KeyValueStore
	mu sync.Mutex
}

func NewMetricRegistry(kv KeyValueStore) *MetricRegistry {
	return &MetricRegistry{kv: kv}
}

// List returns the registered names in insertion order.
func (r *MetricRegistry) List() ([]string, error) {
	raw, ok, err := r.kv.GetSetting(CustomMetricsKey)
	if err != nil {
		return nil, fmt.Errorf("load custom metrics: %w", err)
	}
	names := []string{}
	if !ok || strings.TrimSpace(raw) == "" {
		return names, nil
	}
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, fmt.Errorf("decode custom metrics: %w", err)
	}
	return names, nil
}

// Add registers name. Adding a registered name is a no-op.
func (r *MetricRegistry) Add(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("metric name is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	names, err := r.List()
	if err != nil {
		return err
	}
	for _, n := range names {
		if n == name {
			return nil
		}
	}
	return r.save(append(names, name))
}

// Remove unregisters name.
func (r *MetricRegistry) Remove(name string) error {
	name = strings.TrimSpace(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	names, err := r.List()
	if err != nil {
		return err
	}
	kept := names[:0]
	for _, n := range names {
		if n != name {
			kept = append(kept, n)
		}
	}
	return r.save(kept)
}

// Replace overwrites the registry with names, dropping blanks and repeats.
func (r *MetricRegistry) Replace(names []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool, len(names))
	clean := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		clean = append(clean, n)
	}
	return r.save(clean)
}

func (r *MetricRegistry) save(names []string) error {
	if names == nil {
		names = []string{}
	}
	b, err := json.Marshal(names)
	if err != nil {
		return err
	}
	if err := r.kv.SetSetting(CustomMetricsKey, string(b)); err != nil {
		return fmt.Errorf("save custom metrics: %w", err)
	}
	return nil
}

// ApplyCustomMetrics returns a copy of schema whose metric columns also list
// the custom names present as columns of ds. Dimension columns are never added.
func ApplyCustomMetrics(schema model.Schema, ds model.Dataset, custom []string) model.Schema {
	out := schema
	out.MetricColumns = append([]string{}, schema.MetricColumns...)
	columns := make(map[string]bool)
	for _, c := range Columns(ds) {
		columns[c] = true
	}
	for _, name := range custom {
		if !columns[name] || schema.IsDimension(name) || out.HasMetric(name) {
			continue
		}
		out.MetricColumns = append(out.MetricColumns, name)
	}
	return out
}
