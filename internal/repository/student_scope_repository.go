package repository

import (
	"context"
	"encoding/json"
	"errors"

	"courseware_backend/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StudentScopeRepository keeps generations of student scope data. Only the
// latest generation of a scope URN is visible to evaluations.
type StudentScopeRepository struct {
	DB *gorm.DB
}

func NewStudentScopeRepository(db *gorm.DB) *StudentScopeRepository {
	return &StudentScopeRepository{DB: db}
}

func (r *StudentScopeRepository) findLatestScope(tx *gorm.DB, deploymentID, studentID, scopeURN string) (*model.StudentScope, error) {
	var scope model.StudentScope
	err := tx.Where("deployment_id = ? AND student_id = ? AND scope_urn = ?", deploymentID, studentID, scopeURN).
		Order("id DESC").
		First(&scope).Error
	if err != nil {
		return nil, err
	}
	return &scope, nil
}

// FindLatestEntries 返回最新一代作用域中每个来源的最新数据
func (r *StudentScopeRepository) FindLatestEntries(ctx context.Context, deploymentID, studentID, scopeURN string) (map[string]json.RawMessage, error) {
	db := r.DB.WithContext(ctx)
	scope, err := r.findLatestScope(db, deploymentID, studentID, scopeURN)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, err
	}

	var entries []model.StudentScopeEntry
	if err := db.Where("scope_id = ?", scope.ID).Order("id").Find(&entries).Error; err != nil {
		return nil, err
	}
	result := make(map[string]json.RawMessage, len(entries))
	for _, e := range entries {
		result[e.SourceID] = json.RawMessage(e.Data)
	}
	return result, nil
}

// SetEntry writes the data of one source into the latest generation of a
// scope, starting the first generation when none exists.
func (r *StudentScopeRepository) SetEntry(ctx context.Context, deploymentID, studentID, scopeURN, sourceID string, data json.RawMessage) (*model.StudentScopeEntry, error) {
	var entry *model.StudentScopeEntry
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scope, err := r.findLatestScope(tx, deploymentID, studentID, scopeURN)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			scope = &model.StudentScope{DeploymentID: deploymentID, StudentID: studentID, ScopeURN: scopeURN}
			err = tx.Create(scope).Error
		}
		if err != nil {
			return err
		}

		entry = &model.StudentScopeEntry{ScopeID: scope.ID, SourceID: sourceID, Data: datatypes.JSON(data)}
		return tx.Create(entry).Error
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ResetScopesFor 为元素及其子树中所有声明了作用域的元素开启新一代作用域
func (r *StudentScopeRepository) ResetScopesFor(ctx context.Context, deploymentID, elementID, studentID string) ([]model.StudentScope, error) {
	var created []model.StudentScope
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		nodes, err := NewCoursewareRepository(tx).FindSubtree(ctx, deploymentID, elementID)
		if err != nil {
			return err
		}
		for _, n := range nodes {
			if n.StudentScopeURN == "" {
				continue
			}
			scope := model.StudentScope{
				DeploymentID: deploymentID,
				StudentID:    studentID,
				ScopeURN:     n.StudentScopeURN,
				ElementID:    n.ElementID,
			}
			if err := tx.Create(&scope).Error; err != nil {
				return err
			}
			created = append(created, scope)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
