package service

import (
	"context"
	"errors"
	"fmt"

	"courseware_backend/internal/model"
	"courseware_backend/internal/util"
)

// InteractiveProgressService computes progress of the evaluated
// interactive.
type InteractiveProgressService struct {
	attempts   AttemptStore
	progresses ProgressStore
	scopes     StudentScopeStore
	history    CoursewareHistoryRecorder
}

func NewInteractiveProgressService(attempts AttemptStore, progresses ProgressStore, scopes StudentScopeStore, history CoursewareHistoryRecorder) *InteractiveProgressService {
	return &InteractiveProgressService{
		attempts:   attempts,
		progresses: progresses,
		scopes:     scopes,
		history:    history,
	}
}

func (s *InteractiveProgressService) UpdateProgress(ctx context.Context, element model.CoursewareElement, rc *ResponseContext) (*model.Progress, error) {
	req := rc.Request()
	progression := rc.ProgressionType()
	attemptID := req.AttemptID

	var completion model.Completion
	switch {
	case progression.CompletesWalkable(model.ElementInteractive):
		completion = fullCompletion()
		parent, _ := rc.ParentOf(element)
		if err := s.history.Record(ctx, rc.EvaluationID(), req, element, attemptID, parent.ElementID); err != nil {
			return nil, fmt.Errorf("record history of %s: %w", element.ElementID, err)
		}

	case progression == model.InteractiveRepeat:
		// 重做：新建尝试并清空该屏的学生作用域
		current, err := s.attempts.FindByID(ctx, req.AttemptID)
		if err != nil {
			return nil, fmt.Errorf("find attempt %s: %w", req.AttemptID, err)
		}
		next, err := s.attempts.NewAttempt(ctx, req.DeploymentID, req.StudentID, model.ElementInteractive, element.ElementID, current.ParentID, current.Value+1)
		if err != nil {
			return nil, fmt.Errorf("new attempt for %s: %w", element.ElementID, err)
		}
		if _, err := s.scopes.ResetScopesFor(ctx, req.DeploymentID, element.ElementID, req.StudentID); err != nil {
			return nil, fmt.Errorf("reset scopes of %s: %w", element.ElementID, err)
		}
		completion = repeatCompletion(next.Value)
		attemptID = next.ID

	default:
		previous, err := s.progresses.FindLatest(ctx, req.DeploymentID, element.ElementID, req.StudentID)
		switch {
		case err == nil && previous.AttemptID == attemptID:
			completion = previous.Completion
		case err != nil && !errors.Is(err, util.ErrProgressNotFound):
			return nil, fmt.Errorf("find progress of %s: %w", element.ElementID, err)
		}
	}

	progress := &model.Progress{
		ID:                    model.NewTimeID(),
		Kind:                  model.ProgressGeneral,
		DeploymentID:          req.DeploymentID,
		ChangeID:              req.ChangeID,
		CoursewareElementID:   element.ElementID,
		CoursewareElementType: model.ElementInteractive,
		StudentID:             req.StudentID,
		AttemptID:             attemptID,
		EvaluationID:          rc.EvaluationID(),
		Completion:            completion,
	}
	if err := s.progresses.Persist(ctx, progress); err != nil {
		return nil, fmt.Errorf("persist interactive progress: %w", err)
	}
	return progress, nil
}
