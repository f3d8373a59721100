// Package snapshot captures before/after records of an optimization run.
//
// A snapshot holds the original and optimized edge lists, the full metric
// snapshots computed for both graphs, and the subset of metrics the
// optimization changed. Snapshots serialize to indented JSON and are the
// unit the store and export layers work with.
package snapshot

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/dagopt/pkg/analysis"
	"github.com/matzehuels/dagopt/pkg/dag"
)

// Changed pairs a metric's value before and after optimization.
type Changed struct {
	Original  analysis.Value `json:"original"`
	Optimized analysis.Value `json:"optimized"`
}

// Metadata is the persistent record of one optimization run.
type Metadata struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	OriginalEdges  []dag.Edge `json:"original_edges"`
	OptimizedEdges []dag.Edge `json:"optimized_edges"`

	// Attrs carries run parameters (seed, source file, skip flags).
	Attrs map[string]string `json:"attrs,omitempty"`

	OriginalMetrics  *analysis.Snapshot `json:"original_metrics"`
	OptimizedMetrics *analysis.Snapshot `json:"optimized_metrics"`

	// ChangedMetrics lists only the metrics whose values differ between the
	// two graphs, keyed by metric name.
	ChangedMetrics map[string]Changed `json:"changed_metrics"`
}

// New evaluates both graphs and assembles a metadata record with a fresh
// UUID and a UTC timestamp. attrs may be nil.
func New(original, optimized *dag.Graph, attrs map[string]string) (*Metadata, error) {
	om, err := analysis.Evaluate(original)
	if err != nil {
		return nil, err
	}
	nm, err := analysis.Evaluate(optimized)
	if err != nil {
		return nil, err
	}

	m := &Metadata{
		ID:               uuid.NewString(),
		Timestamp:        time.Now().UTC(),
		OriginalEdges:    original.Edges(),
		OptimizedEdges:   optimized.Edges(),
		Attrs:            attrs,
		OriginalMetrics:  om,
		OptimizedMetrics: nm,
		ChangedMetrics:   make(map[string]Changed),
	}
	for _, name := range om.Diff(nm) {
		ov, _ := om.Get(name)
		nv, _ := nm.Get(name)
		m.ChangedMetrics[name] = Changed{Original: ov, Optimized: nv}
	}
	return m, nil
}

// Encode serializes the metadata as indented JSON.
func (m *Metadata) Encode() ([]byte, error) {
	return json.MarshalIndent(m, "", "    ")
}

// Decode restores a metadata record written by Encode.
func Decode(data []byte) (*Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
