package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/matzehuels/dagopt/pkg/dag"
)

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// GraphKey derives a content-addressed key for a graph from its sorted node
// and edge sets. Two graphs built from the same edges in any order hash to
// the same key.
func GraphKey(g *dag.Graph) string {
	payload := struct {
		Nodes []string   `json:"nodes"`
		Edges []dag.Edge `json:"edges"`
	}{Nodes: g.Nodes(), Edges: g.Edges()}

	data, _ := json.Marshal(payload)
	return "graph:" + Hash(data)
}
