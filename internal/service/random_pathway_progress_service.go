package service

import (
	"context"

	"courseware_backend/internal/model"
)

// RandomPathwayProgressService computes progress of RANDOM pathways. The
// pathway is done once exitAfter children are completed.
type RandomPathwayProgressService struct {
	base *pathwayProgressBase
}

func NewRandomPathwayProgressService(attempts AttemptStore, progresses ProgressStore, structure StructureLookup) *RandomPathwayProgressService {
	return &RandomPathwayProgressService{base: &pathwayProgressBase{attempts: attempts, progresses: progresses, structure: structure}}
}

func (s *RandomPathwayProgressService) UpdateProgress(ctx context.Context, pathway model.LearnerPathway, rc *ResponseContext) (*model.Progress, error) {
	in, err := s.base.prepare(ctx, pathway, rc)
	if err != nil {
		return nil, err
	}
	values, confidences := in.mergedChildren()

	completion := aggregate(values, confidences, exitAfter(pathway.Config, len(in.children)))
	if in.forcesCompletion(rc) {
		completion = fullCompletion()
	}

	progress := in.newProgress(rc, completion, values, confidences)
	trackInProgress(progress, in.child)
	return progress, nil
}

// exitAfter falls back to the child count when unset.
func exitAfter(cfg model.PathwayConfig, childCount int) int {
	if cfg.ExitAfter > 0 {
		return cfg.ExitAfter
	}
	return childCount
}

// trackInProgress remembers the child the student is still working on.
func trackInProgress(progress, child *model.Progress) {
	if child.Completion.IsCompleted() {
		progress.InProgressElementID = ""
		progress.InProgressElementType = ""
		return
	}
	progress.InProgressElementID = child.CoursewareElementID
	progress.InProgressElementType = child.CoursewareElementType
}
