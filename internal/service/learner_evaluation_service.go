package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"courseware_backend/internal/condition"
	"courseware_backend/internal/model"
	"courseware_backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// LearnerEvaluationService evaluates the scenarios of a walkable for a
// real learner attempt.
type LearnerEvaluationService struct {
	scenarios ScenarioLookup
	scopes    StudentScopeStore
	evaluator *ScenarioEvaluationService
}

func NewLearnerEvaluationService(scenarios ScenarioLookup, scopes StudentScopeStore, evaluator *ScenarioEvaluationService) *LearnerEvaluationService {
	return &LearnerEvaluationService{
		scenarios: scenarios,
		scopes:    scopes,
		evaluator: evaluator,
	}
}

// Evaluate runs the walkable's scenarios in configured order. In DEFAULT
// mode evaluation stops at the first scenario that evaluates true.
func (s *LearnerEvaluationService) Evaluate(ctx context.Context, req model.LearnerEvaluationRequest) (*model.LearnerEvaluationResponse, error) {
	if req.Lifecycle == "" {
		req.Lifecycle = lifecycleFor(req.Walkable.ElementType)
	}
	if req.Mode == "" {
		req.Mode = model.EvaluationDefault
	}

	var (
		scenarios []model.Scenario
		entries   map[string]json.RawMessage
	)
	// 场景和学生作用域互不依赖，并发读取
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		scenarios, err = s.scenarios.FindAll(gctx, req.DeploymentID, req.ChangeID, req.Walkable.ElementID, req.Lifecycle)
		if err != nil {
			return fmt.Errorf("find scenarios: %w", err)
		}
		return nil
	})
	if req.StudentScopeURN != "" {
		g.Go(func() error {
			var err error
			entries, err = s.scopes.FindLatestEntries(gctx, req.DeploymentID, req.StudentID, req.StudentScopeURN)
			if err != nil {
				return fmt.Errorf("find scope entries: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, &LearnerEvaluationError{WalkableID: req.Walkable.ElementID, StudentID: req.StudentID, Err: err}
	}

	scope := newStudentScope(s.scopes, req.DeploymentID, req.StudentID)
	if req.StudentScopeURN != "" {
		scope.preload(req.StudentScopeURN, entries)
	}

	results, err := evaluateScenarios(ctx, s.evaluator, scenarios, scope, req.Mode)
	if err != nil {
		var scenarioErr *ScenarioEvaluationError
		if errors.As(err, &scenarioErr) {
			logger.Log.Warn("Scenario evaluation failed",
				zap.String("scenarioId", scenarioErr.ScenarioID),
				zap.String("walkableId", req.Walkable.ElementID),
				zap.Error(scenarioErr.Err))
		}
		return nil, &LearnerEvaluationError{WalkableID: req.Walkable.ElementID, StudentID: req.StudentID, Err: err}
	}

	return &model.LearnerEvaluationResponse{
		Request:                   req,
		ScenarioEvaluationResults: results,
		WalkableEvaluationResult: model.WalkableEvaluationResult{
			ID:           model.NewTimeID(),
			WalkableID:   req.Walkable.ElementID,
			WalkableType: req.Walkable.ElementType,
			Mode:         req.Mode,
		},
	}, nil
}

// evaluateScenarios evaluates scenarios strictly one after another.
func evaluateScenarios(ctx context.Context, evaluator *ScenarioEvaluationService, scenarios []model.Scenario, scope condition.Scope, mode model.EvaluationMode) ([]model.ScenarioEvaluationResult, error) {
	results := make([]model.ScenarioEvaluationResult, 0, len(scenarios))
	for _, scenario := range scenarios {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := evaluator.EvaluateCondition(ctx, scenario, scope)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
		if mode == model.EvaluationDefault && res.EvaluationResult {
			break
		}
	}
	return results, nil
}

func lifecycleFor(t model.CoursewareElementType) model.ScenarioLifecycle {
	if t == model.ElementActivity {
		return model.LifecycleActivityEvaluation
	}
	return model.LifecycleInteractiveEvaluation
}
