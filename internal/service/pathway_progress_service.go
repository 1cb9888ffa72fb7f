package service

import (
	"context"
	"errors"
	"fmt"

	"courseware_backend/internal/model"
	"courseware_backend/internal/util"

	"golang.org/x/sync/errgroup"
)

// pathwayInput is what every pathway type needs before computing progress.
type pathwayInput struct {
	pathway   model.LearnerPathway
	child     *model.Progress
	attemptID string
	// previous is the progress of the current attempt, latest the newest
	// row regardless of attempt (nil when none).
	previous *model.Progress
	latest   *model.Progress
	children []model.CoursewareElement
}

// pathwayProgressBase holds the reads shared by the pathway types.
type pathwayProgressBase struct {
	attempts   AttemptStore
	progresses ProgressStore
	structure  StructureLookup
}

func (b *pathwayProgressBase) prepare(ctx context.Context, pathway model.LearnerPathway, rc *ResponseContext) (*pathwayInput, error) {
	child, ok := rc.LatestProgress()
	if !ok {
		return nil, fmt.Errorf("%w: no child progress below pathway %s", util.ErrIllegalArgument, pathway.ID)
	}
	req := rc.Request()

	var (
		attempt  *model.Attempt
		previous *model.Progress
		children []model.CoursewareElement
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		attempt, err = b.attempts.FindByID(gctx, child.AttemptID)
		return err
	})
	g.Go(func() error {
		var err error
		previous, err = b.progresses.FindLatest(gctx, req.DeploymentID, pathway.ID, req.StudentID)
		if errors.Is(err, util.ErrProgressNotFound) {
			previous, err = nil, nil
		}
		return err
	})
	g.Go(func() error {
		var err error
		children, err = b.structure.FindWalkables(gctx, pathway.ID, req.DeploymentID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("prepare pathway %s: %w", pathway.ID, err)
	}
	if attempt.ParentID == "" {
		return nil, fmt.Errorf("%w: attempt %s has no pathway attempt", util.ErrAttemptNotFound, attempt.ID)
	}

	in := &pathwayInput{
		pathway:   pathway,
		child:     child,
		attemptID: attempt.ParentID,
		previous:  previous,
		latest:    previous,
		children:  children,
	}
	// 上一条进度属于旧的尝试时从头开始
	if previous == nil || previous.AttemptID != in.attemptID {
		in.previous = defaultPathwayProgress(pathway, in.attemptID, req, children)
	}
	return in, nil
}

// defaultPathwayProgress stands in when the student has no progress on the
// pathway for the current attempt.
func defaultPathwayProgress(pathway model.LearnerPathway, attemptID string, req model.LearnerEvaluationRequest, children []model.CoursewareElement) *model.Progress {
	p := &model.Progress{
		Kind:                  model.ProgressKindFor(pathway.Type),
		DeploymentID:          req.DeploymentID,
		ChangeID:              req.ChangeID,
		CoursewareElementID:   pathway.ID,
		CoursewareElementType: model.ElementPathway,
		StudentID:             req.StudentID,
		AttemptID:             attemptID,
	}
	p.SetChildCompletions(map[string]float64{}, map[string]float64{})

	if pathway.Type == model.PathwayGraph {
		cfg := pathway.Config
		switch {
		case cfg.StartingWalkableID != "":
			p.CurrentWalkableID = cfg.StartingWalkableID
			p.CurrentWalkableType = cfg.StartingWalkableType
		case len(children) > 0:
			p.CurrentWalkableID = children[0].ElementID
			p.CurrentWalkableType = children[0].ElementType
		}
	}
	return p
}

// mergedChildren folds the arriving child into the previous maps.
func (in *pathwayInput) mergedChildren() (values, confidences map[string]float64) {
	values = mergeCompletionValues(in.previous.ChildValues(), in.children, in.child.CoursewareElementID, in.child.Completion.Value)
	confidences = mergeCompletionValues(in.previous.ChildConfidences(), in.children, in.child.CoursewareElementID, in.child.Completion.Confidence)
	return values, confidences
}

// newProgress builds the next progress row of the pathway.
func (in *pathwayInput) newProgress(rc *ResponseContext, completion model.Completion, values, confidences map[string]float64) *model.Progress {
	req := rc.Request()
	changeID := in.pathway.ChangeID
	if changeID == "" {
		changeID = req.ChangeID
	}
	p := &model.Progress{
		ID:                    model.NewTimeID(),
		Kind:                  model.ProgressKindFor(in.pathway.Type),
		DeploymentID:          req.DeploymentID,
		ChangeID:              changeID,
		CoursewareElementID:   in.pathway.ID,
		CoursewareElementType: model.ElementPathway,
		StudentID:             req.StudentID,
		AttemptID:             in.attemptID,
		EvaluationID:          rc.EvaluationID(),
		Completion:            completion,
		CompletedWalkables:    buildCompletedItems(values, in.children),
	}
	p.SetChildCompletions(values, confidences)
	return p
}

// forcesCompletion reports whether the driving action completes this
// pathway outright.
func (in *pathwayInput) forcesCompletion(rc *ResponseContext) bool {
	return rc.IsDirectParentOfEvaluated(model.NewElement(in.pathway.ID, model.ElementPathway)) &&
		rc.ProgressionType().CompletesPathway()
}

// PathwayProgressService dispatches a pathway to the updater of its type.
type PathwayProgressService struct {
	structure StructureLookup
	progress  ProgressStore
	linear    *LinearPathwayProgressService
	free      *FreePathwayProgressService
	random    *RandomPathwayProgressService
	graph     *GraphPathwayProgressService
	bkt       *BKTPathwayProgressService
}

func NewPathwayProgressService(
	structure StructureLookup,
	progress ProgressStore,
	linear *LinearPathwayProgressService,
	free *FreePathwayProgressService,
	random *RandomPathwayProgressService,
	graph *GraphPathwayProgressService,
	bkt *BKTPathwayProgressService,
) *PathwayProgressService {
	return &PathwayProgressService{
		structure: structure,
		progress:  progress,
		linear:    linear,
		free:      free,
		random:    random,
		graph:     graph,
		bkt:       bkt,
	}
}

func (s *PathwayProgressService) UpdateProgress(ctx context.Context, element model.CoursewareElement, rc *ResponseContext) (*model.Progress, error) {
	req := rc.Request()
	pathway, err := s.structure.FindPathway(ctx, element.ElementID, req.DeploymentID)
	if err != nil {
		return nil, fmt.Errorf("find pathway %s: %w", element.ElementID, err)
	}
	if rc.IsDirectParentOfEvaluated(element) {
		rc.ParentPathway = pathway
	}

	var (
		progress *model.Progress
		award    *CompetencyAward
	)
	switch pathway.Type {
	case model.PathwayLinear:
		progress, err = s.linear.UpdateProgress(ctx, *pathway, rc)
	case model.PathwayFree:
		progress, err = s.free.UpdateProgress(ctx, *pathway, rc)
	case model.PathwayRandom:
		progress, err = s.random.UpdateProgress(ctx, *pathway, rc)
	case model.PathwayGraph:
		progress, err = s.graph.UpdateProgress(ctx, *pathway, rc)
	case model.PathwayBKT:
		progress, award, err = s.bkt.UpdateProgress(ctx, *pathway, rc)
	default:
		return nil, fmt.Errorf("%w: %s", util.ErrUnsupportedPathwayType, pathway.Type)
	}
	if err != nil {
		return nil, err
	}

	if err := s.progress.Persist(ctx, progress); err != nil {
		return nil, fmt.Errorf("persist pathway progress: %w", err)
	}
	s.bkt.awardCompetency(ctx, award)
	return progress, nil
}
