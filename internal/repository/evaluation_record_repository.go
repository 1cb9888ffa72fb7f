package repository

import (
	"context"
	"errors"
	"fmt"

	"courseware_backend/internal/model"
	"courseware_backend/internal/util"

	"gorm.io/gorm"
)

type EvaluationRecordRepository struct {
	DB *gorm.DB
}

func NewEvaluationRecordRepository(db *gorm.DB) *EvaluationRecordRepository {
	return &EvaluationRecordRepository{DB: db}
}

func (r *EvaluationRecordRepository) Save(ctx context.Context, record *model.EvaluationRecord) error {
	return r.DB.WithContext(ctx).Create(record).Error
}

func (r *EvaluationRecordRepository) FindByID(ctx context.Context, id string) (*model.EvaluationRecord, error) {
	var record model.EvaluationRecord
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: evaluation %s", util.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}
