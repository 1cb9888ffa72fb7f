package service

import (
	"context"
	"fmt"
	"math"

	"courseware_backend/internal/model"
)

// BKTPathwayProgressService computes progress of ALGO_BKT pathways, where
// mastery is tracked with Bayesian Knowledge Tracing.
type BKTPathwayProgressService struct {
	base       *pathwayProgressBase
	competency *CompetencyService
}

func NewBKTPathwayProgressService(attempts AttemptStore, progresses ProgressStore, structure StructureLookup, competency *CompetencyService) *BKTPathwayProgressService {
	return &BKTPathwayProgressService{
		base:       &pathwayProgressBase{attempts: attempts, progresses: progresses, structure: structure},
		competency: competency,
	}
}

// UpdateProgress computes the next BKT progress. The returned award, when
// not nil, must only be fired once the progress row is persisted.
func (s *BKTPathwayProgressService) UpdateProgress(ctx context.Context, pathway model.LearnerPathway, rc *ResponseContext) (*model.Progress, *CompetencyAward, error) {
	in, err := s.base.prepare(ctx, pathway, rc)
	if err != nil {
		return nil, nil, err
	}
	cfg := pathway.Config
	req := rc.Request()

	// 掌握度跨尝试累积，使用最近一条BKT进度作为先验
	prior := in.latest
	if prior == nil {
		prior = &model.Progress{PLn: cfg.PL0}
	}
	bkt := computeOrCarryOverBKT(prior, rc.Response.IsCorrect(), cfg)

	values, confidences := in.mergedChildren()
	completion := aggregate(values, confidences, exitAfter(cfg, len(in.children)))

	progress := in.newProgress(rc, completion, values, confidences)
	progress.PLn = bkt.PLn
	progress.PLnMinus1GivenActual = bkt.PLnMinus1GivenActual
	progress.PCorrect = bkt.PCorrect
	trackInProgress(progress, in.child)

	if len(progress.CompletedWalkables) > 0 {
		maintained, err := s.maintained(ctx, pathway, req, bkt.PLn)
		if err != nil {
			return nil, nil, err
		}
		progress.Completion = model.NewCompletion(
			math.Max(completion.Value, maintained),
			math.Max(completion.Confidence, maintained),
		)
	}
	if in.forcesCompletion(rc) {
		progress.Completion = fullCompletion()
	}

	// 新的屏幕才授予能力
	var award *CompetencyAward
	if prior.InProgressElementID == "" && len(cfg.Competency) > 0 {
		award = &CompetencyAward{
			StudentID:    req.StudentID,
			Links:        cfg.Competency,
			Value:        bkt.PLn,
			EvaluationID: rc.EvaluationID(),
			AttemptID:    in.attemptID,
		}
	}
	return progress, award, nil
}

// awardCompetency starts the background roll-up of a persisted award.
func (s *BKTPathwayProgressService) awardCompetency(ctx context.Context, award *CompetencyAward) {
	if award == nil || s.competency == nil {
		return
	}
	s.competency.AwardAsync(ctx, *award)
}

func (s *BKTPathwayProgressService) maintained(ctx context.Context, pathway model.LearnerPathway, req model.LearnerEvaluationRequest, current float64) (float64, error) {
	cfg := pathway.Config
	var history []model.Progress
	if cfg.MaintainFor > 1 {
		var err error
		history, err = s.base.progresses.FindLatestN(ctx, req.DeploymentID, pathway.ID, req.StudentID, cfg.MaintainFor-1)
		if err != nil {
			return 0, fmt.Errorf("find bkt history of %s: %w", pathway.ID, err)
		}
	}
	return maintainedCompletion(history, current, cfg.PLnTarget, cfg.MaintainFor), nil
}
