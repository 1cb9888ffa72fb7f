package repository

import (
	"context"
	"errors"
	"fmt"

	"courseware_backend/internal/model"
	"courseware_backend/internal/util"

	"gorm.io/gorm"
)

// CoursewareRepository reads the deployed courseware tree.
type CoursewareRepository struct {
	DB *gorm.DB
}

func NewCoursewareRepository(db *gorm.DB) *CoursewareRepository {
	return &CoursewareRepository{DB: db}
}

// Create 批量写入课件节点
func (r *CoursewareRepository) Create(ctx context.Context, nodes ...*model.CoursewareNode) error {
	if len(nodes) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Create(nodes).Error
}

func (r *CoursewareRepository) FindNode(ctx context.Context, deploymentID, elementID string) (*model.CoursewareNode, error) {
	var node model.CoursewareNode
	err := r.DB.WithContext(ctx).
		Where("deployment_id = ? AND element_id = ?", deploymentID, elementID).
		First(&node).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: element %s", util.ErrNotFound, elementID)
	}
	if err != nil {
		return nil, err
	}
	return &node, nil
}

// FindWalkables returns the walkable children of a pathway in order.
func (r *CoursewareRepository) FindWalkables(ctx context.Context, pathwayID, deploymentID string) ([]model.CoursewareElement, error) {
	var nodes []model.CoursewareNode
	err := r.DB.WithContext(ctx).
		Where("deployment_id = ? AND parent_id = ? AND element_type IN ?", deploymentID, pathwayID,
			[]model.CoursewareElementType{model.ElementActivity, model.ElementInteractive}).
		Order("position, id").
		Find(&nodes).Error
	if err != nil {
		return nil, err
	}

	walkables := make([]model.CoursewareElement, 0, len(nodes))
	for _, n := range nodes {
		walkables = append(walkables, n.Element())
	}
	return walkables, nil
}

func (r *CoursewareRepository) FindChildPathways(ctx context.Context, activityID, deploymentID string) ([]model.LearnerPathway, error) {
	var nodes []model.CoursewareNode
	err := r.DB.WithContext(ctx).
		Where("deployment_id = ? AND parent_id = ? AND element_type = ?", deploymentID, activityID, model.ElementPathway).
		Order("position, id").
		Find(&nodes).Error
	if err != nil {
		return nil, err
	}

	pathways := make([]model.LearnerPathway, 0, len(nodes))
	for _, n := range nodes {
		pathways = append(pathways, n.Pathway())
	}
	return pathways, nil
}

func (r *CoursewareRepository) FindPathway(ctx context.Context, pathwayID, deploymentID string) (*model.LearnerPathway, error) {
	var node model.CoursewareNode
	err := r.DB.WithContext(ctx).
		Where("deployment_id = ? AND element_id = ? AND element_type = ?", deploymentID, pathwayID, model.ElementPathway).
		First(&node).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", util.ErrPathwayNotFound, pathwayID)
	}
	if err != nil {
		return nil, err
	}
	p := node.Pathway()
	return &p, nil
}

// FindSubtree returns the element and every node below it, parents first.
func (r *CoursewareRepository) FindSubtree(ctx context.Context, deploymentID, elementID string) ([]model.CoursewareNode, error) {
	root, err := r.FindNode(ctx, deploymentID, elementID)
	if err != nil {
		return nil, err
	}

	nodes := []model.CoursewareNode{*root}
	seen := map[string]bool{root.ElementID: true}
	frontier := []string{root.ElementID}
	for len(frontier) > 0 {
		var children []model.CoursewareNode
		err := r.DB.WithContext(ctx).
			Where("deployment_id = ? AND parent_id IN ?", deploymentID, frontier).
			Order("position, id").
			Find(&children).Error
		if err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for _, c := range children {
			if seen[c.ElementID] {
				continue
			}
			seen[c.ElementID] = true
			nodes = append(nodes, c)
			frontier = append(frontier, c.ElementID)
		}
	}
	return nodes, nil
}
