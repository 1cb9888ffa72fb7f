package service

import (
	"context"

	"courseware_backend/internal/model"
)

// FreePathwayProgressService computes progress of FREE pathways, whose
// children may be walked in any order.
type FreePathwayProgressService struct {
	base *pathwayProgressBase
}

func NewFreePathwayProgressService(attempts AttemptStore, progresses ProgressStore, structure StructureLookup) *FreePathwayProgressService {
	return &FreePathwayProgressService{base: &pathwayProgressBase{attempts: attempts, progresses: progresses, structure: structure}}
}

func (s *FreePathwayProgressService) UpdateProgress(ctx context.Context, pathway model.LearnerPathway, rc *ResponseContext) (*model.Progress, error) {
	in, err := s.base.prepare(ctx, pathway, rc)
	if err != nil {
		return nil, err
	}
	values, confidences := in.mergedChildren()

	var completion model.Completion
	if in.forcesCompletion(rc) {
		completion = fullCompletion()
	} else {
		completion = aggregate(values, confidences, len(in.children))
	}
	return in.newProgress(rc, completion, values, confidences), nil
}
