package service

import (
	"context"
	"errors"
	"testing"

	"courseware_backend/internal/condition"
	"courseware_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeserializeActions(t *testing.T) {
	raw := []byte(`[
		{"action":"CHANGE_PROGRESS","resolver":{"type":"LITERAL"},"context":{"progressionType":"INTERACTIVE_COMPLETE"}},
		{"action":"CHANGE_SCORE","resolver":{"type":"LITERAL"},"context":{"elementId":"screen-1","elementType":"INTERACTIVE","operator":"ADD","value":2}},
		{"action":"SEND_FEEDBACK","resolver":{"type":"LITERAL"},"context":{"value":"well done"}}
	]`)

	actions, err := DeserializeActions(raw)
	require.NoError(t, err)
	require.Len(t, actions, 3)

	progress, ok := actions[0].(*model.ProgressAction)
	require.True(t, ok)
	assert.Equal(t, model.InteractiveComplete, progress.Context.ProgressionType)
	assert.True(t, progress.IsWalkableComplete(model.ElementInteractive))
	assert.False(t, progress.IsWalkableComplete(model.ElementActivity))

	score, ok := actions[1].(*model.ScoreAction)
	require.True(t, ok)
	assert.Equal(t, model.ScoreAdd, score.Context.Operator)
	assert.Equal(t, 2.0, score.Context.Value)

	feedback, ok := actions[2].(*model.FeedbackAction)
	require.True(t, ok)
	assert.Equal(t, "well done", feedback.Context.Value)
}

func TestDeserializeActions_EmptyAndUnknown(t *testing.T) {
	actions, err := DeserializeActions(nil)
	require.NoError(t, err)
	assert.Empty(t, actions)

	_, err = DeserializeActions([]byte(`[{"action":"TELEPORT"}]`))
	assert.Error(t, err)
}

func TestActionResolver_ScopeValues(t *testing.T) {
	scope := testScope{"slider": []byte(`{"value": 4, "label": {"text": "four"}}`)}
	results := []model.ScenarioEvaluationResult{
		{ScenarioID: "skipped", EvaluationResult: false, Actions: progressActions(model.InteractiveRepeat, "", "")},
		{ScenarioID: "fired", EvaluationResult: true, Actions: []byte(`[
			{"action":"CHANGE_SCORE","resolver":{"type":"SCOPE","studentScopeURN":"urn","sourceId":"slider","context":["value"]},"context":{"operator":"SET"}},
			{"action":"CHANGE_SCOPE","resolver":{"type":"SCOPE","studentScopeURN":"urn","sourceId":"slider","context":["label"]},"context":{"sourceId":"copy"}}
		]`)},
	}

	actions, err := NewActionResolver().Resolve(context.Background(), results, scope)
	require.NoError(t, err)
	require.Len(t, actions, 2)

	assert.Equal(t, 4.0, actions[0].(*model.ScoreAction).Context.Value)
	assert.JSONEq(t, `{"text":"four"}`, string(actions[1].(*model.ScopeAction).Context.Value))
	assert.Nil(t, FirstProgressAction(actions))
}

func TestActionResolver_MissingScopeValue(t *testing.T) {
	results := []model.ScenarioEvaluationResult{
		{ScenarioID: "fired", EvaluationResult: true, Actions: []byte(`[
			{"action":"CHANGE_SCORE","resolver":{"type":"SCOPE","sourceId":"absent"},"context":{"operator":"SET"}}
		]`)},
	}

	_, err := NewActionResolver().Resolve(context.Background(), results, testScope{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, condition.ErrUnableToResolve))
}

func TestIsWalkableComplete(t *testing.T) {
	complete, err := DeserializeActions(progressActions(model.InteractiveCompleteAndGoTo, "screen-2", model.ElementInteractive))
	require.NoError(t, err)
	repeat, err := DeserializeActions(progressActions(model.InteractiveRepeat, "", ""))
	require.NoError(t, err)

	assert.True(t, IsWalkableComplete(complete, model.ElementInteractive))
	assert.False(t, IsWalkableComplete(repeat, model.ElementInteractive))
	assert.True(t, IsWalkableComplete(append(repeat, complete...), model.ElementInteractive))
	assert.False(t, IsWalkableComplete(nil, model.ElementInteractive))
}
