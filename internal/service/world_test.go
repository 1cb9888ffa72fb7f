package service

import (
	"context"
	"testing"

	"courseware_backend/internal/model"

	"github.com/stretchr/testify/require"
)

// world wires the engine over in-memory stores. The default courseware is
// a root activity act-1 with one pathway path-1 of three screens.
type world struct {
	scenarios  *fakeScenarios
	attempts   *fakeAttempts
	progresses *fakeProgresses
	structure  *fakeStructure
	scopes     *fakeScopes
	competency *fakeCompetency
	history    *fakeHistory
	ancestry   fakeAncestry
	records    *fakeRecords

	competencyService *CompetencyService
	pathwayService    *PathwayProgressService
	activityService   *ActivityProgressService
	pipeline          *EvaluationPipeline
}

func newWorld(t *testing.T, pathwayType model.PathwayType, cfg model.PathwayConfig) *world {
	t.Helper()
	w := &world{
		scenarios:  newFakeScenarios(),
		attempts:   newFakeAttempts(),
		progresses: &fakeProgresses{},
		structure:  newFakeStructure(),
		scopes:     newFakeScopes(),
		competency: newFakeCompetency(),
		history:    &fakeHistory{},
		ancestry:   fakeAncestry{},
		records:    &fakeRecords{},
	}

	w.structure.addPathway("act-1",
		model.LearnerPathway{ID: "path-1", DeploymentID: "dep-1", Type: pathwayType, Config: cfg},
		model.NewElement("screen-1", model.ElementInteractive),
		model.NewElement("screen-2", model.ElementInteractive),
		model.NewElement("screen-3", model.ElementInteractive),
	)
	w.ancestry["screen-1"] = []model.CoursewareElement{
		model.NewElement("screen-1", model.ElementInteractive),
		model.NewElement("path-1", model.ElementPathway),
		model.NewElement("act-1", model.ElementActivity),
	}
	w.attempt("att-act", "act-1", model.ElementActivity, "", 1)
	w.attempt("att-path", "path-1", model.ElementPathway, "att-act", 1)
	w.attempt("attempt-1", "screen-1", model.ElementInteractive, "att-path", 1)

	w.wire()
	return w
}

func (w *world) wire() {
	engine := NewEngine(Stores{
		Scenarios:  w.scenarios,
		Attempts:   w.attempts,
		Progresses: w.progresses,
		Structure:  w.structure,
		Scopes:     w.scopes,
		Competency: w.competency,
		History:    w.history,
		Ancestry:   w.ancestry,
		Records:    w.records,
	}, 0)
	w.competencyService = engine.Competency
	w.pathwayService = engine.Pathway
	w.activityService = engine.Activity
	w.pipeline = engine.Pipeline
}

func (w *world) attempt(id, elementID string, t model.CoursewareElementType, parentID string, value int) *model.Attempt {
	return w.attempts.put(&model.Attempt{
		TimeIDBase:            model.TimeIDBase{ID: id},
		ParentID:              parentID,
		DeploymentID:          "dep-1",
		CoursewareElementID:   elementID,
		StudentID:             "student-1",
		CoursewareElementType: t,
		Value:                 value,
	})
}

// fire configures screen-1 with a single always-true scenario.
func (w *world) fire(correctness model.ScenarioCorrectness, progression model.ProgressionType, target string, targetType model.CoursewareElementType) {
	w.scenarios.add("screen-1", model.LifecycleInteractiveEvaluation,
		scenario("s-"+string(progression), nil, correctness, progressActions(progression, target, targetType)))
}

func (w *world) evaluate(t *testing.T) (*EvaluationOutcome, error) {
	t.Helper()
	return w.pipeline.Process(context.Background(), evaluationRequest(model.EvaluationDefault))
}

func (w *world) mustEvaluate(t *testing.T) *EvaluationOutcome {
	t.Helper()
	out, err := w.evaluate(t)
	require.NoError(t, err)
	return out
}

// progressOf returns the progress created for elementID in this outcome.
func progressOf(t *testing.T, out *EvaluationOutcome, elementID string) *model.Progress {
	t.Helper()
	var found *model.Progress
	for _, p := range out.Progresses {
		if p.CoursewareElementID == elementID {
			found = p
		}
	}
	require.NotNil(t, found, "no progress for %s", elementID)
	return found
}
