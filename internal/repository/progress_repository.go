package repository

import (
	"context"
	"errors"
	"fmt"

	"courseware_backend/internal/model"
	"courseware_backend/internal/util"

	"gorm.io/gorm"
)

// ProgressRepository stores append-only progress snapshots.
type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) scope(ctx context.Context, deploymentID, elementID, studentID string) *gorm.DB {
	return r.DB.WithContext(ctx).
		Where("deployment_id = ? AND courseware_element_id = ? AND student_id = ?", deploymentID, elementID, studentID).
		Order("id DESC")
}

// FindLatest 获取学生在某元素上的最新进度
func (r *ProgressRepository) FindLatest(ctx context.Context, deploymentID, elementID, studentID string) (*model.Progress, error) {
	var progress model.Progress
	err := r.scope(ctx, deploymentID, elementID, studentID).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s/%s", util.ErrProgressNotFound, elementID, studentID)
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// FindLatestN returns up to n progresses, newest first.
func (r *ProgressRepository) FindLatestN(ctx context.Context, deploymentID, elementID, studentID string, n int) ([]model.Progress, error) {
	if n <= 0 {
		return nil, nil
	}
	var progresses []model.Progress
	err := r.scope(ctx, deploymentID, elementID, studentID).Limit(n).Find(&progresses).Error
	return progresses, err
}

// Persist 追加一条进度快照, 已有记录不会被修改
func (r *ProgressRepository) Persist(ctx context.Context, progress *model.Progress) error {
	if progress.ID == "" {
		progress.ID = model.NewTimeID()
	}
	return r.DB.WithContext(ctx).Create(progress).Error
}
