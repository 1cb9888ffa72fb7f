package service

import (
	"context"
	"encoding/json"
	"fmt"

	"courseware_backend/internal/model"

	"golang.org/x/sync/errgroup"
)

// LearnerEvaluationResponseEnricher attaches the triggered actions, the
// ancestry and the scope snapshot to an evaluation response.
type LearnerEvaluationResponseEnricher struct {
	ancestry AncestryResolver
	scopes   StudentScopeStore
	actions  *ActionResolver
}

func NewLearnerEvaluationResponseEnricher(ancestry AncestryResolver, scopes StudentScopeStore, actions *ActionResolver) *LearnerEvaluationResponseEnricher {
	return &LearnerEvaluationResponseEnricher{ancestry: ancestry, scopes: scopes, actions: actions}
}

func (e *LearnerEvaluationResponseEnricher) Enrich(ctx context.Context, rc *ResponseContext) error {
	req := rc.Request()

	var (
		ancestry []model.CoursewareElement
		entries  map[string]json.RawMessage
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ancestry, err = e.ancestry.GetAncestry(gctx, req.DeploymentID, req.Walkable.ElementID, req.Walkable.ElementType)
		if err != nil {
			return fmt.Errorf("get ancestry of %s: %w", req.Walkable.ElementID, err)
		}
		return nil
	})
	if req.StudentScopeURN != "" {
		g.Go(func() error {
			var err error
			entries, err = e.scopes.FindLatestEntries(gctx, req.DeploymentID, req.StudentID, req.StudentScopeURN)
			if err != nil {
				return fmt.Errorf("find scope entries: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	scope := newStudentScope(e.scopes, req.DeploymentID, req.StudentID)
	if req.StudentScopeURN != "" {
		scope.preload(req.StudentScopeURN, entries)
	}
	actions, err := e.actions.Resolve(ctx, rc.Response.ScenarioEvaluationResults, scope)
	if err != nil {
		return fmt.Errorf("resolve actions: %w", err)
	}

	rc.Ancestry = ancestry
	rc.ScopeEntries = entries
	rc.Actions = actions
	rc.WalkableComplete = IsWalkableComplete(actions, req.Walkable.ElementType)
	rc.ActionState = EvaluationActionState{
		Action:    FirstProgressAction(actions),
		Evaluated: req.Walkable,
	}
	return nil
}

// IsWalkableComplete reports whether any triggered progress action
// completes a walkable of the evaluated type.
func IsWalkableComplete(actions []model.Action, evaluated model.CoursewareElementType) bool {
	for _, a := range actions {
		if p, ok := a.(*model.ProgressAction); ok && p.IsWalkableComplete(evaluated) {
			return true
		}
	}
	return false
}
