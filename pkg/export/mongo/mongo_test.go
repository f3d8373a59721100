package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/matzehuels/dagopt/pkg/dag"
)

func mustBuild(t *testing.T, edges []dag.Edge) *dag.Graph {
	t.Helper()
	g, err := dag.Build(edges)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return g
}

func replacement(t *testing.T, m mongo.WriteModel) bson.M {
	t.Helper()
	r, ok := m.(*mongo.ReplaceOneModel)
	if !ok {
		t.Fatalf("model is %T, want *mongo.ReplaceOneModel", m)
	}
	if r.Upsert == nil || !*r.Upsert {
		t.Fatal("model is not an upsert")
	}
	doc, ok := r.Replacement.(bson.M)
	if !ok {
		t.Fatalf("replacement is %T, want bson.M", r.Replacement)
	}
	return doc
}

func TestNodeModels(t *testing.T) {
	g := mustBuild(t, []dag.Edge{{From: "A", To: "B"}})

	models := nodeModels(g, "run-1")
	if len(models) != 2 {
		t.Fatalf("got %d models, want 2", len(models))
	}

	doc := replacement(t, models[0])
	if doc["run_id"] != "run-1" || doc["name"] != "A" {
		t.Errorf("doc = %v, want run_id=run-1 name=A", doc)
	}
}

func TestEdgeModels(t *testing.T) {
	g := mustBuild(t, []dag.Edge{
		{From: "A", To: "B", Labels: []string{"Modify"}},
		{From: "B", To: "C"},
	})

	models := edgeModels(g, "run-1")
	if len(models) != 2 {
		t.Fatalf("got %d models, want 2", len(models))
	}

	labeled := replacement(t, models[0])
	if labeled["from"] != "A" || labeled["to"] != "B" {
		t.Errorf("doc = %v, want from=A to=B", labeled)
	}
	if _, ok := labeled["labels"]; !ok {
		t.Error("labeled edge document missing labels field")
	}

	plain := replacement(t, models[1])
	if _, ok := plain["labels"]; ok {
		t.Error("unlabeled edge document carries labels field")
	}
}

func TestEdgeModels_Empty(t *testing.T) {
	g := mustBuild(t, nil)
	if models := edgeModels(g, "run-1"); len(models) != 0 {
		t.Errorf("got %d models for empty graph, want 0", len(models))
	}
}
