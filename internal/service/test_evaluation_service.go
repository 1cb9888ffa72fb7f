package service

import (
	"context"
	"encoding/json"
	"fmt"

	"courseware_backend/internal/model"
)

type TestEvaluationRequest struct {
	DeploymentID string                     `json:"deploymentId" binding:"required"`
	ChangeID     string                     `json:"changeId"`
	Walkable     model.CoursewareElement    `json:"walkable" binding:"required"`
	Lifecycle    model.ScenarioLifecycle    `json:"lifecycle"`
	Mode         model.EvaluationMode       `json:"mode"`
	Data         map[string]json.RawMessage `json:"data"`
}

type TestEvaluationResponse struct {
	WalkableID                string                           `json:"walkableId"`
	Mode                      model.EvaluationMode             `json:"mode"`
	ScenarioEvaluationResults []model.ScenarioEvaluationResult `json:"scenarioEvaluationResults"`
	Actions                   []model.Action                   `json:"actions"`
	WalkableComplete          bool                             `json:"walkableComplete"`
}

// TestEvaluationService evaluates scenarios against caller supplied data.
// Nothing is persisted.
type TestEvaluationService struct {
	scenarios ScenarioLookup
	evaluator *ScenarioEvaluationService
	actions   *ActionResolver
}

func NewTestEvaluationService(scenarios ScenarioLookup, evaluator *ScenarioEvaluationService, actions *ActionResolver) *TestEvaluationService {
	return &TestEvaluationService{scenarios: scenarios, evaluator: evaluator, actions: actions}
}

func (s *TestEvaluationService) Evaluate(ctx context.Context, req TestEvaluationRequest) (*TestEvaluationResponse, error) {
	if req.Lifecycle == "" {
		req.Lifecycle = lifecycleFor(req.Walkable.ElementType)
	}
	// 测试模式默认评估全部场景
	if req.Mode == "" {
		req.Mode = model.EvaluationCombined
	}

	scenarios, err := s.scenarios.FindAll(ctx, req.DeploymentID, req.ChangeID, req.Walkable.ElementID, req.Lifecycle)
	if err != nil {
		return nil, fmt.Errorf("find scenarios: %w", err)
	}

	scope := testScope(req.Data)
	results, err := evaluateScenarios(ctx, s.evaluator, scenarios, scope, req.Mode)
	if err != nil {
		return nil, &LearnerEvaluationError{WalkableID: req.Walkable.ElementID, Err: err}
	}

	actions, err := s.actions.Resolve(ctx, results, scope)
	if err != nil {
		return nil, err
	}

	resp := &TestEvaluationResponse{
		WalkableID:                req.Walkable.ElementID,
		Mode:                      req.Mode,
		ScenarioEvaluationResults: results,
		Actions:                   actions,
	}
	resp.WalkableComplete = IsWalkableComplete(actions, req.Walkable.ElementType)
	return resp, nil
}
