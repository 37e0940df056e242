package graph

import (
	"testing"

	"github.com/mkm-lab/analysis-engine/pkg/common"
)

func ingestText(t *testing.T, g *KnowledgeGraph, e *KeywordExtractor, title, content string) {
	t.Helper()
	doc := common.Document{Title: title, Content: content, SourceName: "pubmed", QualityScore: 0.9}
	entities, relations := e.Extract(doc)
	g.AddDocument(doc, entities, relations)
}

func TestAddDocumentBuildsSymmetricEdges(t *testing.T) {
	g := NewKnowledgeGraph()
	e := NewKeywordExtractor(nil, nil)

	ingestText(t, g, e, "Stress and the heart", "Chronic stress increases resting heart rate.")

	snap := g.Snapshot()
	nodes, edges := snap.Counts()
	if nodes != 2 {
		t.Errorf("nodes = %d, want 2", nodes)
	}
	// ordered pairs in both directions for the single relation
	if edges != 2 {
		t.Errorf("edges = %d, want 2", edges)
	}

	forward := snap.FindRelated("stress_level", 1)
	backward := snap.FindRelated("heart_rate", 1)
	if len(forward) != 1 || len(backward) != 1 {
		t.Fatalf("forward = %v, backward = %v, want one edge each", forward, backward)
	}
	if forward[0].Entity != "heart_rate" || backward[0].Entity != "stress_level" {
		t.Errorf("unexpected targets: forward %q, backward %q", forward[0].Entity, backward[0].Entity)
	}
}

func TestRepeatedEvidenceRaisesWeight(t *testing.T) {
	g := NewKnowledgeGraph()
	e := NewKeywordExtractor(nil, nil)

	for i := 0; i < 3; i++ {
		ingestText(t, g, e, "Stress study", "Acute stress increases heart rate in adults.")
	}

	got := g.Snapshot().FindRelated("stress_level", 1)
	want := []common.RelatedConcept{
		{Entity: "heart_rate", Relation: common.RelationIncreases, Weight: 3, Depth: 1},
	}
	if len(got) != 1 {
		t.Fatalf("FindRelated() = %v, want %v", got, want)
	}
	if got[0] != want[0] {
		t.Errorf("FindRelated()[0] = %+v, want %+v", got[0], want[0])
	}

	node, ok := g.Snapshot().Node("stress_level")
	if !ok {
		t.Fatal("stress_level node missing")
	}
	if node.Count != 3 {
		t.Errorf("node count = %d, want 3", node.Count)
	}
}

func TestEdgeProvenance(t *testing.T) {
	g := NewKnowledgeGraph()
	e := NewKeywordExtractor(nil, nil)

	ingestText(t, g, e, "First study", "Meditation reduces stress.")
	ingestText(t, g, e, "Second study", "Daily meditation reduces stress markers.")

	_, edges := g.Export()
	var found *common.Relation
	for i := range edges {
		if edges[i].Source == "meditation" && edges[i].Target == "stress_level" && edges[i].Type == common.RelationDecreases {
			found = &edges[i]
			break
		}
	}
	if found == nil {
		t.Fatal("meditation -> stress_level decreases edge missing")
	}
	if found.Weight != 2 {
		t.Errorf("weight = %d, want 2", found.Weight)
	}
	if len(found.Provenance) != 2 {
		t.Fatalf("provenance entries = %d, want 2", len(found.Provenance))
	}
	if found.Provenance[0].Title != "First study" || found.Provenance[1].Title != "Second study" {
		t.Errorf("provenance titles = %q, %q", found.Provenance[0].Title, found.Provenance[1].Title)
	}
}

func TestFindRelatedDepthBound(t *testing.T) {
	g := NewKnowledgeGraph()
	g.Load(
		[]common.Entity{
			{Name: "a", Category: common.CategoryBiometric},
			{Name: "b", Category: common.CategoryBiometric},
			{Name: "c", Category: common.CategoryBiometric},
			{Name: "d", Category: common.CategoryBiometric},
		},
		[]common.Relation{
			{Source: "a", Target: "b", Type: common.RelationIncreases, Weight: 1},
			{Source: "b", Target: "c", Type: common.RelationIncreases, Weight: 1},
			{Source: "c", Target: "d", Type: common.RelationIncreases, Weight: 1},
		},
	)
	snap := g.Snapshot()

	depth1 := snap.FindRelated("a", 1)
	if len(depth1) != 1 || depth1[0].Entity != "b" || depth1[0].Depth != 1 {
		t.Errorf("depth 1 results = %v", depth1)
	}

	depth2 := snap.FindRelated("a", 2)
	if len(depth2) != 2 {
		t.Fatalf("depth 2 results = %v, want 2 entries", depth2)
	}
	for _, rc := range depth2 {
		if rc.Depth > 2 {
			t.Errorf("result %+v exceeds depth bound", rc)
		}
	}
}

func TestFindRelatedUnknownEntity(t *testing.T) {
	g := NewKnowledgeGraph()
	if got := g.Snapshot().FindRelated("unicorn", 2); got != nil {
		t.Errorf("FindRelated(unknown) = %v, want nil", got)
	}
}

func TestFindRelatedRanking(t *testing.T) {
	g := NewKnowledgeGraph()

	nodes := []common.Entity{{Name: "hub", Category: common.CategoryBiometric}}
	var edges []common.Relation
	for _, spoke := range []struct {
		name   string
		weight int
	}{
		{"w5", 5}, {"w1a", 1}, {"w9", 9}, {"w1b", 1}, {"w3", 3},
	} {
		nodes = append(nodes, common.Entity{Name: spoke.name, Category: common.CategoryHealthBehavior})
		edges = append(edges, common.Relation{
			Source: "hub", Target: spoke.name, Type: common.RelationCorrelatesWith, Weight: spoke.weight,
		})
	}
	g.Load(nodes, edges)

	got := g.Snapshot().FindRelated("hub", 1)
	wantOrder := []string{"w9", "w5", "w3", "w1a", "w1b"}
	if len(got) != len(wantOrder) {
		t.Fatalf("FindRelated() = %v, want %d entries", got, len(wantOrder))
	}
	for i, name := range wantOrder {
		if got[i].Entity != name {
			t.Errorf("result[%d] = %q, want %q (ties keep discovery order)", i, got[i].Entity, name)
		}
	}
}

func TestFindRelatedResultCap(t *testing.T) {
	g := NewKnowledgeGraph()

	nodes := []common.Entity{{Name: "hub", Category: common.CategoryBiometric}}
	var edges []common.Relation
	for i := 0; i < 15; i++ {
		name := string(rune('a' + i))
		nodes = append(nodes, common.Entity{Name: name, Category: common.CategoryHealthBehavior})
		edges = append(edges, common.Relation{
			Source: "hub", Target: name, Type: common.RelationCorrelatesWith, Weight: i + 1,
		})
	}
	g.Load(nodes, edges)

	got := g.Snapshot().FindRelated("hub", 1)
	if len(got) != 10 {
		t.Errorf("len(results) = %d, want 10", len(got))
	}
	if got[0].Weight != 15 {
		t.Errorf("top weight = %d, want 15", got[0].Weight)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	g := NewKnowledgeGraph()
	e := NewKeywordExtractor(nil, nil)

	ingestText(t, g, e, "Baseline", "Exercise reduces stress.")
	snap := g.Snapshot()
	before, _ := snap.Counts()

	ingestText(t, g, e, "Later", "Humidity increases stress.")

	after, _ := snap.Counts()
	if before != after {
		t.Errorf("snapshot node count changed from %d to %d after write", before, after)
	}
	liveNodes, _ := g.Counts()
	if liveNodes <= before {
		t.Errorf("live graph nodes = %d, want more than %d", liveNodes, before)
	}
}
