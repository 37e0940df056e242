package graph

import (
	"testing"

	"github.com/mkm-lab/analysis-engine/pkg/common"
)

func entityNames(entities []common.Entity) []string {
	names := make([]string, len(entities))
	for i, e := range entities {
		names[i] = e.Name
	}
	return names
}

func containsName(entities []common.Entity, name string) bool {
	for _, e := range entities {
		if e.Name == name {
			return true
		}
	}
	return false
}

func TestExtractEntities(t *testing.T) {
	e := NewKeywordExtractor(nil, nil)

	tests := []struct {
		name string
		doc  common.Document
		want []string
	}{
		{
			name: "alias resolves to canonical name",
			doc:  common.Document{Title: "Chronic stress and resting heart rate"},
			want: []string{"heart_rate", "stress_level"},
		},
		{
			name: "case insensitive",
			doc:  common.Document{Title: "MEDITATION AND SLEEP QUALITY"},
			want: []string{"sleep_quality", "meditation", "sleep"},
		},
		{
			name: "content scanned alongside title",
			doc: common.Document{
				Title:   "Weekly summary",
				Content: "Participants logged exercise and mood daily.",
			},
			want: []string{"mood", "exercise"},
		},
		{
			name: "no taxonomy match",
			doc:  common.Document{Title: "Quarterly budget review"},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := e.Extract(tt.doc)
			if len(got) != len(tt.want) {
				t.Fatalf("Extract() entities = %v, want %v", entityNames(got), tt.want)
			}
			for _, name := range tt.want {
				if !containsName(got, name) {
					t.Errorf("Extract() missing entity %q, got %v", name, entityNames(got))
				}
			}
		})
	}
}

func TestExtractEntityOncePerDocument(t *testing.T) {
	e := NewKeywordExtractor(nil, nil)

	doc := common.Document{
		Title:   "Stress, stress and more stress",
		Content: "stress level under repeated stress exposure",
	}
	got, _ := e.Extract(doc)

	count := 0
	for _, entity := range got {
		if entity.Name == "stress_level" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("stress_level reported %d times, want 1", count)
	}
}

func TestExtractRelations(t *testing.T) {
	e := NewKeywordExtractor(nil, nil)

	tests := []struct {
		name string
		text string
		want []common.RelationType
	}{
		{
			name: "single relation",
			text: "Exercise reduces stress hormones",
			want: []common.RelationType{common.RelationDecreases},
		},
		{
			name: "multi word trigger",
			text: "Poor sleep can lead to elevated blood pressure",
			want: []common.RelationType{common.RelationIncreases, common.RelationCauses},
		},
		{
			name: "multiple relations",
			text: "Meditation improves mood and prevents burnout",
			want: []common.RelationType{common.RelationPrevents, common.RelationImproves},
		},
		{
			name: "no trigger",
			text: "A descriptive survey of wearable devices",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := e.Extract(common.Document{Content: tt.text})
			if len(got) != len(tt.want) {
				t.Fatalf("Extract() relations = %v, want %v", got, tt.want)
			}
			for _, want := range tt.want {
				found := false
				for _, rel := range got {
					if rel == want {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("Extract() missing relation %v, got %v", want, got)
				}
			}
		})
	}
}

func TestBiometricFields(t *testing.T) {
	fields := BiometricFields(DefaultTaxonomy())

	want := []string{"heart_rate", "blood_pressure", "stress_level", "sleep_quality", "energy_level"}
	if len(fields) != len(want) {
		t.Fatalf("BiometricFields() = %v, want %v", fields, want)
	}
	for i, name := range want {
		if fields[i] != name {
			t.Errorf("fields[%d] = %q, want %q", i, fields[i], name)
		}
	}
}
