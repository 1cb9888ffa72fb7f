package service

import (
	"context"
	"errors"
	"fmt"

	"courseware_backend/internal/model"
	"courseware_backend/internal/util"
)

// GraphPathwayProgressService computes progress of GRAPH pathways. The
// student moves between children through GO_TO actions; aggregation alone
// never completes the pathway.
type GraphPathwayProgressService struct {
	base   *pathwayProgressBase
	scopes StudentScopeStore
}

func NewGraphPathwayProgressService(attempts AttemptStore, progresses ProgressStore, structure StructureLookup, scopes StudentScopeStore) *GraphPathwayProgressService {
	return &GraphPathwayProgressService{
		base:   &pathwayProgressBase{attempts: attempts, progresses: progresses, structure: structure},
		scopes: scopes,
	}
}

func (s *GraphPathwayProgressService) UpdateProgress(ctx context.Context, pathway model.LearnerPathway, rc *ResponseContext) (*model.Progress, error) {
	in, err := s.base.prepare(ctx, pathway, rc)
	if err != nil {
		return nil, err
	}
	values, confidences := in.mergedChildren()

	completion := aggregate(values, confidences, len(in.children)).Capped(graphCompletionCap)
	current := model.NewElement(in.previous.CurrentWalkableID, in.previous.CurrentWalkableType)

	if rc.IsDirectParentOfEvaluated(model.NewElement(pathway.ID, model.ElementPathway)) {
		progression := rc.ProgressionType()
		switch {
		case progression.CompletesPathway():
			completion = fullCompletion()
		case progression.IsGoTo():
			current, err = s.goTo(ctx, in, rc)
			if err != nil {
				return nil, err
			}
		}
	}

	progress := in.newProgress(rc, completion, values, confidences)
	progress.CurrentWalkableID = current.ElementID
	progress.CurrentWalkableType = current.ElementType
	return progress, nil
}

// goTo moves the student to the action's target with a fresh attempt and
// scope. The target is validated before anything is written.
func (s *GraphPathwayProgressService) goTo(ctx context.Context, in *pathwayInput, rc *ResponseContext) (model.CoursewareElement, error) {
	req := rc.Request()
	target := rc.ActionState.Action.Context

	var found *model.CoursewareElement
	for i := range in.children {
		if in.children[i].ElementID == target.ElementID {
			found = &in.children[i]
			break
		}
	}
	if found == nil {
		return model.CoursewareElement{}, fmt.Errorf("%w: %s is not a walkable of pathway %s", util.ErrIllegalArgument, target.ElementID, in.pathway.ID)
	}
	elementType := target.ElementType
	if elementType == "" {
		elementType = found.ElementType
	}

	value := 1
	latest, err := s.base.attempts.FindLatestAttempt(ctx, req.DeploymentID, found.ElementID, req.StudentID)
	switch {
	case err == nil:
		value = latest.Value + 1
	case !errors.Is(err, util.ErrAttemptNotFound):
		return model.CoursewareElement{}, fmt.Errorf("find latest attempt of %s: %w", found.ElementID, err)
	}
	if _, err := s.base.attempts.NewAttempt(ctx, req.DeploymentID, req.StudentID, elementType, found.ElementID, in.attemptID, value); err != nil {
		return model.CoursewareElement{}, fmt.Errorf("new attempt for %s: %w", found.ElementID, err)
	}
	if _, err := s.scopes.ResetScopesFor(ctx, req.DeploymentID, found.ElementID, req.StudentID); err != nil {
		return model.CoursewareElement{}, fmt.Errorf("reset scopes of %s: %w", found.ElementID, err)
	}
	return model.NewElement(found.ElementID, elementType), nil
}
