package service

import (
	"context"
	"errors"

	"courseware_backend/internal/condition"
	"courseware_backend/internal/model"
)

// ScenarioEvaluationService evaluates the condition of a single scenario.
type ScenarioEvaluationService struct{}

func NewScenarioEvaluationService() *ScenarioEvaluationService {
	return &ScenarioEvaluationService{}
}

// EvaluateCondition deserializes, resolves and evaluates the scenario's
// condition against scope. Resolution faults yield a false result with an
// error message; any other failure is returned as a *ScenarioEvaluationError.
func (s *ScenarioEvaluationService) EvaluateCondition(ctx context.Context, scenario model.Scenario, scope condition.Scope) (model.ScenarioEvaluationResult, error) {
	result := model.ScenarioEvaluationResult{
		ScenarioID:          scenario.ID,
		ScenarioCorrectness: scenario.Correctness,
		Actions:             scenario.Actions,
	}

	tree, err := condition.Deserialize(scenario.Condition)
	if err != nil {
		return result, &ScenarioEvaluationError{ScenarioID: scenario.ID, Err: err}
	}
	if tree.IsEmpty() {
		result.EvaluationResult = true
		return result, nil
	}

	resolved, err := condition.Resolve(ctx, tree, scope)
	if err != nil {
		return recoverable(result, scenario.ID, err)
	}
	ok, err := condition.Evaluate(resolved)
	if err != nil {
		return recoverable(result, scenario.ID, err)
	}
	result.EvaluationResult = ok
	return result, nil
}

func recoverable(result model.ScenarioEvaluationResult, scenarioID string, err error) (model.ScenarioEvaluationResult, error) {
	if errors.Is(err, condition.ErrUnableToResolve) || errors.Is(err, condition.ErrUnsupportedOperator) {
		result.EvaluationResult = false
		result.ErrorMessage = err.Error()
		return result, nil
	}
	return result, &ScenarioEvaluationError{ScenarioID: scenarioID, Err: err}
}
