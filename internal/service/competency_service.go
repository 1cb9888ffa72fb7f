package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"courseware_backend/internal/model"
	"courseware_backend/internal/util"
	"courseware_backend/pkg/logger"
	"courseware_backend/pkg/monitoring"

	"go.uber.org/zap"
)

const defaultRollupMaxDepth = 32

// CompetencyAward is a mastery award for the items linked to a pathway.
type CompetencyAward struct {
	StudentID    string
	Links        []model.CompetencyLink
	Value        float64
	EvaluationID string
	AttemptID    string
}

// CompetencyService awards competency items and rolls them up the
// document's IS_CHILD_OF hierarchy.
type CompetencyService struct {
	store    CompetencyDocumentStore
	maxDepth int
	wg       sync.WaitGroup
}

func NewCompetencyService(store CompetencyDocumentStore, maxDepth int) *CompetencyService {
	if maxDepth <= 0 {
		maxDepth = defaultRollupMaxDepth
	}
	return &CompetencyService{store: store, maxDepth: maxDepth}
}

// AwardAsync runs Award in the background. Failures are logged only.
func (s *CompetencyService) AwardAsync(ctx context.Context, award CompetencyAward) {
	bg := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				monitoring.CompetencyRollupCounter.WithLabelValues("panic").Inc()
				logger.Log.Error("Competency roll-up panicked",
					zap.String("studentId", award.StudentID),
					zap.Any("panic", r))
			}
		}()

		if err := s.Award(bg, award); err != nil {
			monitoring.CompetencyRollupCounter.WithLabelValues("failed").Inc()
			logger.Log.Error("Competency roll-up failed",
				zap.String("studentId", award.StudentID),
				zap.String("evaluationId", award.EvaluationID),
				zap.Error(err))
			return
		}
		monitoring.CompetencyRollupCounter.WithLabelValues("ok").Inc()
	}()
}

// Wait blocks until background awards finish.
func (s *CompetencyService) Wait() {
	s.wg.Wait()
}

// Award records the value for every linked item, then rolls each one up.
func (s *CompetencyService) Award(ctx context.Context, award CompetencyAward) error {
	for _, link := range award.Links {
		if _, err := s.store.FindDocument(ctx, link.DocumentID); err != nil {
			return fmt.Errorf("find competency document %s: %w", link.DocumentID, err)
		}
		met := &model.CompetencyMet{
			StudentID:      award.StudentID,
			DocumentID:     link.DocumentID,
			DocumentItemID: link.DocumentItemID,
			Value:          model.NewCompletion(award.Value, 1).Value,
			Confidence:     1,
			EvaluationID:   award.EvaluationID,
			AttemptID:      award.AttemptID,
		}
		if err := s.store.Create(ctx, met); err != nil {
			return fmt.Errorf("award item %s: %w", link.DocumentItemID, err)
		}
		if err := s.rollUp(ctx, award, link); err != nil {
			return err
		}
	}
	return nil
}

type rollupItem struct {
	itemID string
	depth  int
}

// rollUp recomputes every ancestor of the awarded item. Ancestors are
// collected first, then averaged children-first so a parent reached by
// paths of different lengths sees all of its updated children. Items on a
// cycle are computed once, in discovery order; maxDepth bounds the walk.
func (s *CompetencyService) rollUp(ctx context.Context, award CompetencyAward, link model.CompetencyLink) error {
	origin := link.DocumentItemID
	visited := map[string]bool{origin: true}
	queue := []rollupItem{{itemID: origin}}

	var order []string
	parentsOf := map[string][]string{}
	pending := map[string]int{}
	seenEdge := map[[2]string]bool{}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		parents, err := s.store.FindAssociationsTo(ctx, item.itemID, model.AssociationIsChildOf)
		if err != nil {
			return fmt.Errorf("find parents of %s: %w", item.itemID, err)
		}
		for _, assoc := range parents {
			parentID := assoc.OriginItemID
			if parentID == origin {
				continue
			}
			edge := [2]string{item.itemID, parentID}
			if item.itemID != origin && !seenEdge[edge] {
				seenEdge[edge] = true
				parentsOf[item.itemID] = append(parentsOf[item.itemID], parentID)
				pending[parentID]++
			}
			if visited[parentID] {
				continue
			}
			visited[parentID] = true
			order = append(order, parentID)

			if item.depth+1 >= s.maxDepth {
				logger.Log.Warn("Competency roll-up depth limit reached",
					zap.String("documentId", link.DocumentID),
					zap.String("itemId", parentID),
					zap.Int("maxDepth", s.maxDepth))
				continue
			}
			queue = append(queue, rollupItem{itemID: parentID, depth: item.depth + 1})
		}
	}

	done := make(map[string]bool, len(order))
	var ready []string
	for _, id := range order {
		if pending[id] == 0 {
			ready = append(ready, id)
		}
	}
	compute := func(id string) error {
		done[id] = true
		if err := s.awardParent(ctx, award, link.DocumentID, id); err != nil {
			return err
		}
		for _, parentID := range parentsOf[id] {
			pending[parentID]--
			if pending[parentID] == 0 && !done[parentID] {
				ready = append(ready, parentID)
			}
		}
		return nil
	}

	for {
		for len(ready) > 0 {
			id := ready[0]
			ready = ready[1:]
			if done[id] {
				continue
			}
			if err := compute(id); err != nil {
				return err
			}
		}
		// 环上的节点没有入度为零的起点，按发现顺序取第一个
		next := ""
		for _, id := range order {
			if !done[id] {
				next = id
				break
			}
		}
		if next == "" {
			return nil
		}
		if err := compute(next); err != nil {
			return err
		}
	}
}

// awardParent averages the latest values of the parent's children.
func (s *CompetencyService) awardParent(ctx context.Context, award CompetencyAward, documentID, parentID string) error {
	children, err := s.store.FindAssociationsFrom(ctx, parentID, model.AssociationIsChildOf)
	if err != nil {
		return fmt.Errorf("find children of %s: %w", parentID, err)
	}
	if len(children) == 0 {
		return nil
	}

	var total float64
	for _, child := range children {
		met, err := s.store.FindLatest(ctx, award.StudentID, documentID, child.DestinationItemID)
		if errors.Is(err, util.ErrCompetencyNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("find competency of %s: %w", child.DestinationItemID, err)
		}
		total += met.Value
	}

	met := &model.CompetencyMet{
		StudentID:      award.StudentID,
		DocumentID:     documentID,
		DocumentItemID: parentID,
		Value:          model.NewCompletion(total/float64(len(children)), 1).Value,
		Confidence:     1,
		EvaluationID:   award.EvaluationID,
		AttemptID:      award.AttemptID,
	}
	if err := s.store.Create(ctx, met); err != nil {
		return fmt.Errorf("award parent item %s: %w", parentID, err)
	}
	return nil
}
