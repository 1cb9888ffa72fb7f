package service

import (
	"context"
	"testing"

	"courseware_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCompetencyFixture() *fakeCompetency {
	f := newFakeCompetency()
	f.documents["doc-1"] = &model.CompetencyDocument{ID: "doc-1"}
	return f
}

func award(value float64, items ...string) CompetencyAward {
	links := make([]model.CompetencyLink, 0, len(items))
	for _, id := range items {
		links = append(links, model.CompetencyLink{DocumentID: "doc-1", DocumentItemID: id})
	}
	return CompetencyAward{StudentID: "student-1", Links: links, Value: value, EvaluationID: "eval-1", AttemptID: "att-1"}
}

func TestCompetency_RollsUpLevelByLevel(t *testing.T) {
	store := newCompetencyFixture()
	store.childOf("doc-1", "a", "mid")
	store.childOf("doc-1", "b", "mid")
	store.childOf("doc-1", "mid", "top")
	store.childOf("doc-1", "other", "top")
	svc := NewCompetencyService(store, 0)

	require.NoError(t, svc.Award(context.Background(), award(0.8, "a")))
	require.NoError(t, svc.Award(context.Background(), award(0.6, "b")))

	values := store.latestValues()
	assert.InDelta(t, 0.8, values["a"], 1e-9)
	assert.InDelta(t, 0.6, values["b"], 1e-9)
	assert.InDelta(t, 0.7, values["mid"], 1e-9)
	// "other" has no record and still counts as a child
	assert.InDelta(t, 0.35, values["top"], 1e-9)
	for _, m := range store.mets {
		assert.Equal(t, 1.0, m.Confidence)
		assert.Equal(t, "eval-1", m.EvaluationID)
	}
}

func TestCompetency_AncestorReachedByUnevenPaths(t *testing.T) {
	tests := []struct {
		name  string
		edges [][2]string
		want  map[string]float64
	}{
		{
			name:  "direct and through mid",
			edges: [][2]string{{"a", "top"}, {"a", "mid"}, {"mid", "top"}},
			want:  map[string]float64{"a": 1, "mid": 1, "top": 1},
		},
		{
			name:  "two hops against one",
			edges: [][2]string{{"a", "top"}, {"a", "m1"}, {"m1", "m2"}, {"m2", "top"}, {"x", "m2"}},
			want:  map[string]float64{"a": 1, "m1": 1, "m2": 0.5, "top": 0.75},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newCompetencyFixture()
			for _, e := range tt.edges {
				store.childOf("doc-1", e[0], e[1])
			}
			svc := NewCompetencyService(store, 0)

			require.NoError(t, svc.Award(context.Background(), award(1.0, "a")))

			values := store.latestValues()
			for item, want := range tt.want {
				assert.InDelta(t, want, values[item], 1e-9, item)
			}
			// every ancestor is written exactly once
			assert.Len(t, store.mets, len(tt.want))
		})
	}
}

func TestCompetency_CyclesTerminate(t *testing.T) {
	store := newCompetencyFixture()
	store.childOf("doc-1", "a", "b")
	store.childOf("doc-1", "b", "c")
	store.childOf("doc-1", "c", "a")
	svc := NewCompetencyService(store, 0)

	require.NoError(t, svc.Award(context.Background(), award(0.9, "a")))

	// a, then b and c once each
	assert.Len(t, store.mets, 3)
}

func TestCompetency_DepthBound(t *testing.T) {
	store := newCompetencyFixture()
	store.childOf("doc-1", "l0", "l1")
	store.childOf("doc-1", "l1", "l2")
	store.childOf("doc-1", "l2", "l3")
	store.childOf("doc-1", "l3", "l4")
	svc := NewCompetencyService(store, 2)

	require.NoError(t, svc.Award(context.Background(), award(1, "l0")))

	values := store.latestValues()
	assert.Contains(t, values, "l1")
	assert.Contains(t, values, "l2")
	assert.NotContains(t, values, "l3")
}

func TestCompetency_ValueClamped(t *testing.T) {
	store := newCompetencyFixture()
	svc := NewCompetencyService(store, 0)

	require.NoError(t, svc.Award(context.Background(), award(1.4, "a")))

	assert.Equal(t, 1.0, store.latestValues()["a"])
}

func TestCompetency_AsyncFailureIsSwallowed(t *testing.T) {
	store := newFakeCompetency()
	svc := NewCompetencyService(store, 0)

	svc.AwardAsync(context.Background(), award(0.5, "a"))
	svc.Wait()

	assert.Empty(t, store.mets)
}
