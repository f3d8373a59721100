package cli

import (
	"encoding/json"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"

	"github.com/matzehuels/dagopt/pkg/dag"
	"github.com/matzehuels/dagopt/pkg/errors"
)

// edgeRecord is the on-disk edge format shared with the HTTP API.
type edgeRecord struct {
	Source  string   `json:"source"`
	Target  string   `json:"target"`
	Classes []string `json:"classes,omitempty"`
}

// graphFile is the on-disk graph document: an edge list.
type graphFile struct {
	Edges []edgeRecord `json:"edges"`
}

// loadGraph reads a graph document from path ("-" for stdin) and builds the
// DAG. Endpoint IDs are validated before construction so a bad file fails
// with a pointer at the offending edge rather than deep inside the builder.
func loadGraph(path string) (*dag.Graph, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}

	var doc graphFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "failed to parse %s", displayPath(path))
	}
	if len(doc.Edges) == 0 {
		return nil, errors.New(errors.ErrCodeGraphEmpty, "%s contains no edges", displayPath(path))
	}

	edges := make([]dag.Edge, 0, len(doc.Edges))
	for i, e := range doc.Edges {
		if err := errors.ValidateEdgeEndpoints(e.Source, e.Target); err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "edge %d", i)
		}
		edges = append(edges, dag.Edge{From: e.Source, To: e.Target, Labels: e.Classes})
	}
	return dag.Build(edges)
}

// writeGraph serializes g as an edge-list document to path (stdout if empty).
func writeGraph(g *dag.Graph, path string, logger *charmlog.Logger) error {
	doc := graphFile{Edges: make([]edgeRecord, 0, g.EdgeCount())}
	for _, e := range g.Edges() {
		doc.Edges = append(doc.Edges, edgeRecord{Source: e.From, Target: e.To, Classes: e.Labels})
	}

	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "failed to encode graph")
	}
	return writeOutput(append(data, '\n'), path, logger)
}

// readInput reads path, or stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "failed to read stdin")
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "failed to read %s", path)
	}
	return data, nil
}

// writeOutput writes data to path, or stdout when path is empty.
// The logger is notified on success with the output path.
func writeOutput(data []byte, path string, logger *charmlog.Logger) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "failed to write %s", path)
	}
	if logger != nil {
		logger.Infof("Wrote %s", path)
	}
	return nil
}

// displayPath names the input in error messages.
func displayPath(path string) string {
	if path == "-" {
		return "stdin"
	}
	return path
}
