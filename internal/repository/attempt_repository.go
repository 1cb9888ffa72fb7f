package repository

import (
	"context"
	"errors"
	"fmt"

	"courseware_backend/internal/model"
	"courseware_backend/internal/util"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

// FindByID 根据ID查找尝试
func (r *AttemptRepository) FindByID(ctx context.Context, id string) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", util.ErrAttemptNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *AttemptRepository) NewAttempt(ctx context.Context, deploymentID, studentID string, elementType model.CoursewareElementType, elementID, parentAttemptID string, value int) (*model.Attempt, error) {
	attempt := &model.Attempt{
		ParentID:              parentAttemptID,
		DeploymentID:          deploymentID,
		CoursewareElementID:   elementID,
		StudentID:             studentID,
		CoursewareElementType: elementType,
		Value:                 value,
	}
	if err := r.DB.WithContext(ctx).Create(attempt).Error; err != nil {
		return nil, err
	}
	return attempt, nil
}

func (r *AttemptRepository) FindLatestAttempt(ctx context.Context, deploymentID, elementID, studentID string) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.DB.WithContext(ctx).
		Where("deployment_id = ? AND courseware_element_id = ? AND student_id = ?", deploymentID, elementID, studentID).
		Order("value DESC, id DESC").
		First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s/%s", util.ErrAttemptNotFound, elementID, studentID)
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}
