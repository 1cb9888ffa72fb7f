package service

import (
	"context"
	"errors"
	"fmt"

	"courseware_backend/internal/model"
	"courseware_backend/internal/util"
)

// ActivityProgressService computes progress of activities from their child
// pathways.
type ActivityProgressService struct {
	attempts   AttemptStore
	progresses ProgressStore
	structure  StructureLookup
	scopes     StudentScopeStore
	history    CoursewareHistoryRecorder
}

func NewActivityProgressService(attempts AttemptStore, progresses ProgressStore, structure StructureLookup, scopes StudentScopeStore, history CoursewareHistoryRecorder) *ActivityProgressService {
	return &ActivityProgressService{
		attempts:   attempts,
		progresses: progresses,
		structure:  structure,
		scopes:     scopes,
		history:    history,
	}
}

// ActivityProgressResult carries the persisted progress and whether this
// update is the one that completed a non-root activity.
type ActivityProgressResult struct {
	Progress      *model.Progress
	JustCompleted bool
}

func (s *ActivityProgressService) UpdateProgress(ctx context.Context, element model.CoursewareElement, rc *ResponseContext) (*ActivityProgressResult, error) {
	req := rc.Request()
	attemptID, err := s.activityAttemptID(ctx, element, rc)
	if err != nil {
		return nil, err
	}

	previous, err := s.progresses.FindLatest(ctx, req.DeploymentID, element.ElementID, req.StudentID)
	if errors.Is(err, util.ErrProgressNotFound) {
		previous, err = nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find progress of %s: %w", element.ElementID, err)
	}
	if previous != nil && previous.AttemptID != attemptID {
		previous = nil
	}

	// 重做作用于被评估的活动，或被评估屏幕所在的最近活动
	owner := rc.IsEvaluated(element)
	if rc.ActionState.Evaluated.ElementType != model.ElementActivity {
		if nearest, ok := rc.NearestActivityAbove(); ok && nearest.ElementID == element.ElementID {
			owner = true
		}
	}
	if owner && rc.ProgressionType() == model.ActivityRepeat {
		progress, err := s.repeat(ctx, element, attemptID, rc)
		if err != nil {
			return nil, err
		}
		return &ActivityProgressResult{Progress: progress}, nil
	}

	progress := s.newProgress(element, attemptID, rc)
	if rc.IsEvaluated(element) {
		switch {
		case rc.ProgressionType().CompletesWalkable(model.ElementActivity):
			progress.Completion = fullCompletion()
		case previous != nil:
			progress.Completion = previous.Completion
			progress.SetChildCompletions(previous.ChildValues(), previous.ChildConfidences())
			progress.CompletedWalkables = previous.CompletedWalkables
		}
	} else if err := s.aggregate(ctx, element, previous, progress, rc); err != nil {
		return nil, err
	}

	if err := s.progresses.Persist(ctx, progress); err != nil {
		return nil, fmt.Errorf("persist activity progress: %w", err)
	}

	result := &ActivityProgressResult{Progress: progress}
	wasCompleted := previous != nil && previous.Completion.IsCompleted()
	if progress.Completion.IsCompleted() && !wasCompleted && !rc.IsRoot(element) && !rc.IsEvaluated(element) {
		parent, _ := rc.ParentOf(element)
		if err := s.history.Record(ctx, rc.EvaluationID(), req, element, attemptID, parent.ElementID); err != nil {
			return nil, fmt.Errorf("record history of %s: %w", element.ElementID, err)
		}
		result.JustCompleted = true
	}
	return result, nil
}

// activityAttemptID finds the attempt the activity is being walked under.
func (s *ActivityProgressService) activityAttemptID(ctx context.Context, element model.CoursewareElement, rc *ResponseContext) (string, error) {
	latest, ok := rc.LatestProgress()
	if rc.IsEvaluated(element) {
		if ok && latest.CoursewareElementID == element.ElementID {
			return latest.AttemptID, nil
		}
		return rc.Request().AttemptID, nil
	}
	if !ok {
		return "", fmt.Errorf("%w: no child progress below activity %s", util.ErrIllegalArgument, element.ElementID)
	}
	attempt, err := s.attempts.FindByID(ctx, latest.AttemptID)
	if err != nil {
		return "", fmt.Errorf("find attempt %s: %w", latest.AttemptID, err)
	}
	if attempt.ParentID == "" {
		return "", fmt.Errorf("%w: attempt %s has no activity attempt", util.ErrAttemptNotFound, attempt.ID)
	}
	return attempt.ParentID, nil
}

func (s *ActivityProgressService) aggregate(ctx context.Context, element model.CoursewareElement, previous, progress *model.Progress, rc *ResponseContext) error {
	child, _ := rc.LatestProgress()
	pathways, err := s.structure.FindChildPathways(ctx, element.ElementID, rc.Request().DeploymentID)
	if err != nil {
		return fmt.Errorf("find child pathways of %s: %w", element.ElementID, err)
	}
	children := make([]model.CoursewareElement, 0, len(pathways))
	for _, p := range pathways {
		children = append(children, model.NewElement(p.ID, model.ElementPathway))
	}

	var prevValues, prevConfidences map[string]float64
	if previous != nil {
		prevValues, prevConfidences = previous.ChildValues(), previous.ChildConfidences()
	}
	values := mergeCompletionValues(prevValues, children, child.CoursewareElementID, child.Completion.Value)
	confidences := mergeCompletionValues(prevConfidences, children, child.CoursewareElementID, child.Completion.Confidence)

	progress.Completion = aggregate(values, confidences, len(children))
	progress.SetChildCompletions(values, confidences)
	progress.CompletedWalkables = buildCompletedItems(values, children)
	return nil
}

// repeat starts a new attempt at the activity and wipes the scopes of its
// whole subtree.
func (s *ActivityProgressService) repeat(ctx context.Context, element model.CoursewareElement, attemptID string, rc *ResponseContext) (*model.Progress, error) {
	req := rc.Request()
	current, err := s.attempts.FindByID(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("find attempt %s: %w", attemptID, err)
	}
	next, err := s.attempts.NewAttempt(ctx, req.DeploymentID, req.StudentID, model.ElementActivity, element.ElementID, current.ParentID, current.Value+1)
	if err != nil {
		return nil, fmt.Errorf("new attempt for %s: %w", element.ElementID, err)
	}
	if _, err := s.scopes.ResetScopesFor(ctx, req.DeploymentID, element.ElementID, req.StudentID); err != nil {
		return nil, fmt.Errorf("reset scopes of %s: %w", element.ElementID, err)
	}

	progress := s.newProgress(element, next.ID, rc)
	progress.Completion = repeatCompletion(next.Value)
	if err := s.progresses.Persist(ctx, progress); err != nil {
		return nil, fmt.Errorf("persist activity progress: %w", err)
	}
	return progress, nil
}

func (s *ActivityProgressService) newProgress(element model.CoursewareElement, attemptID string, rc *ResponseContext) *model.Progress {
	req := rc.Request()
	p := &model.Progress{
		ID:                    model.NewTimeID(),
		Kind:                  model.ProgressActivity,
		DeploymentID:          req.DeploymentID,
		ChangeID:              req.ChangeID,
		CoursewareElementID:   element.ElementID,
		CoursewareElementType: model.ElementActivity,
		StudentID:             req.StudentID,
		AttemptID:             attemptID,
		EvaluationID:          rc.EvaluationID(),
	}
	p.SetChildCompletions(map[string]float64{}, map[string]float64{})
	return p
}
