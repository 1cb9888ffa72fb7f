package service

import (
	"context"

	"courseware_backend/internal/model"
)

// LinearPathwayProgressService computes progress of LINEAR pathways.
type LinearPathwayProgressService struct {
	base *pathwayProgressBase
}

func NewLinearPathwayProgressService(attempts AttemptStore, progresses ProgressStore, structure StructureLookup) *LinearPathwayProgressService {
	return &LinearPathwayProgressService{base: &pathwayProgressBase{attempts: attempts, progresses: progresses, structure: structure}}
}

func (s *LinearPathwayProgressService) UpdateProgress(ctx context.Context, pathway model.LearnerPathway, rc *ResponseContext) (*model.Progress, error) {
	in, err := s.base.prepare(ctx, pathway, rc)
	if err != nil {
		return nil, err
	}
	values, confidences := in.mergedChildren()

	completion := aggregate(values, confidences, len(in.children))
	if in.forcesCompletion(rc) {
		completion = fullCompletion()
	}
	return in.newProgress(rc, completion, values, confidences), nil
}
