package repository

import (
	"context"

	"courseware_backend/internal/model"

	"gorm.io/gorm"
)

type ScenarioRepository struct {
	DB *gorm.DB
}

func NewScenarioRepository(db *gorm.DB) *ScenarioRepository {
	return &ScenarioRepository{DB: db}
}

func (r *ScenarioRepository) Create(ctx context.Context, scenarios ...*model.Scenario) error {
	if len(scenarios) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Create(scenarios).Error
}

// FindAll 按配置顺序返回元素在某生命周期下的场景
func (r *ScenarioRepository) FindAll(ctx context.Context, deploymentID, changeID, walkableID string, lifecycle model.ScenarioLifecycle) ([]model.Scenario, error) {
	var scenarios []model.Scenario
	query := r.DB.WithContext(ctx).
		Where("deployment_id = ? AND element_id = ? AND lifecycle = ?", deploymentID, walkableID, lifecycle)
	if changeID != "" {
		query = query.Where("change_id = ?", changeID)
	}
	err := query.Order("position, id").Find(&scenarios).Error
	return scenarios, err
}
