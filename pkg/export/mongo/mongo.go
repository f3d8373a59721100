// Package mongo exports optimized graphs and snapshot records to MongoDB.
//
// The exporter mirrors the graph into two collections, nodes and edges,
// using upserts keyed by run ID so repeated exports of the same run are
// idempotent. Snapshot metadata goes into a third collection keyed by
// snapshot ID.
package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/dagopt/pkg/dag"
	"github.com/matzehuels/dagopt/pkg/errors"
	"github.com/matzehuels/dagopt/pkg/observability"
	"github.com/matzehuels/dagopt/pkg/snapshot"
	"github.com/matzehuels/dagopt/pkg/store"
)

// Collection names within the target database.
const (
	nodesCollection     = "nodes"
	edgesCollection     = "edges"
	snapshotsCollection = "snapshots"
)

// Config configures an exporter connection.
type Config struct {
	URI      string
	Database string
	// Timeout bounds the initial connect and ping. Defaults to 10s.
	Timeout time.Duration
}

// Exporter writes graphs and snapshots to a MongoDB database.
type Exporter struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to MongoDB and verifies the connection with a ping.
func New(ctx context.Context, cfg Config) (*Exporter, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExport, err, "failed to connect to %s", cfg.URI)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeExport, err, "failed to ping %s", cfg.URI)
	}
	return &Exporter{client: client, db: client.Database(cfg.Database)}, nil
}

// ExportGraph upserts the graph's nodes and edges under the given run ID.
func (e *Exporter) ExportGraph(ctx context.Context, g *dag.Graph, runID string) error {
	start := time.Now()
	observability.Export().OnExportStart(ctx, "mongodb", g.NodeCount(), g.EdgeCount())

	err := store.RetryWithBackoff(ctx, func() error {
		if err := e.writeModels(ctx, nodesCollection, nodeModels(g, runID)); err != nil {
			return store.Retryable(err)
		}
		if err := e.writeModels(ctx, edgesCollection, edgeModels(g, runID)); err != nil {
			return store.Retryable(err)
		}
		return nil
	})

	observability.Export().OnExportComplete(ctx, "mongodb", time.Since(start), err)
	if err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "failed to export run %s", runID)
	}
	return nil
}

// ExportSnapshot upserts a snapshot metadata record keyed by its ID.
func (e *Exporter) ExportSnapshot(ctx context.Context, m *snapshot.Metadata) error {
	data, err := m.Encode()
	if err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "failed to encode snapshot %s", m.ID)
	}

	var doc bson.M
	if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "failed to convert snapshot %s", m.ID)
	}

	_, err = e.db.Collection(snapshotsCollection).ReplaceOne(ctx,
		bson.M{"id": m.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeExport, err, "failed to export snapshot %s", m.ID)
	}
	return nil
}

// Close disconnects from the database.
func (e *Exporter) Close(ctx context.Context) error {
	return e.client.Disconnect(ctx)
}

func (e *Exporter) writeModels(ctx context.Context, coll string, models []mongo.WriteModel) error {
	if len(models) == 0 {
		return nil
	}
	_, err := e.db.Collection(coll).BulkWrite(ctx, models,
		options.BulkWrite().SetOrdered(false))
	return err
}

// nodeModels builds one upsert per node, keyed by (run_id, name).
func nodeModels(g *dag.Graph, runID string) []mongo.WriteModel {
	models := make([]mongo.WriteModel, 0, g.NodeCount())
	for _, id := range g.Nodes() {
		doc := bson.M{"run_id": runID, "name": id}
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(doc).
			SetReplacement(doc).
			SetUpsert(true))
	}
	return models
}

// edgeModels builds one upsert per edge, keyed by (run_id, from, to).
// Labels are carried on the replacement document but not on the filter so
// that label changes update in place.
func edgeModels(g *dag.Graph, runID string) []mongo.WriteModel {
	models := make([]mongo.WriteModel, 0, g.EdgeCount())
	for _, e := range g.Edges() {
		filter := bson.M{"run_id": runID, "from": e.From, "to": e.To}
		replacement := bson.M{"run_id": runID, "from": e.From, "to": e.To}
		if len(e.Labels) > 0 {
			replacement["labels"] = e.Labels
		}
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(filter).
			SetReplacement(replacement).
			SetUpsert(true))
	}
	return models
}
