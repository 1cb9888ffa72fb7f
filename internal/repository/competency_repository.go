package repository

import (
	"context"
	"errors"
	"fmt"

	"courseware_backend/internal/model"
	"courseware_backend/internal/util"

	"gorm.io/gorm"
)

type CompetencyRepository struct {
	DB *gorm.DB
}

func NewCompetencyRepository(db *gorm.DB) *CompetencyRepository {
	return &CompetencyRepository{DB: db}
}

// CreateDocument 写入能力文档及其条目和关联
func (r *CompetencyRepository) CreateDocument(ctx context.Context, doc *model.CompetencyDocument, items []model.DocumentItem, associations []model.ItemAssociation) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		if len(associations) > 0 {
			for i := range associations {
				if associations[i].ID == "" {
					associations[i].ID = model.GenerateUUID()
				}
			}
			if err := tx.Create(&associations).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *CompetencyRepository) FindDocument(ctx context.Context, id string) (*model.CompetencyDocument, error) {
	var doc model.CompetencyDocument
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: document %s", util.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *CompetencyRepository) FindAssociationsFrom(ctx context.Context, originItemID string, associationType model.AssociationType) ([]model.ItemAssociation, error) {
	var associations []model.ItemAssociation
	err := r.DB.WithContext(ctx).
		Where("origin_item_id = ? AND association_type = ?", originItemID, associationType).
		Order("id").
		Find(&associations).Error
	return associations, err
}

func (r *CompetencyRepository) FindAssociationsTo(ctx context.Context, destinationItemID string, associationType model.AssociationType) ([]model.ItemAssociation, error) {
	var associations []model.ItemAssociation
	err := r.DB.WithContext(ctx).
		Where("destination_item_id = ? AND association_type = ?", destinationItemID, associationType).
		Order("id").
		Find(&associations).Error
	return associations, err
}

func (r *CompetencyRepository) FindLatest(ctx context.Context, studentID, documentID, itemID string) (*model.CompetencyMet, error) {
	var met model.CompetencyMet
	err := r.DB.WithContext(ctx).
		Where("student_id = ? AND document_id = ? AND document_item_id = ?", studentID, documentID, itemID).
		Order("id DESC").
		First(&met).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s/%s", util.ErrCompetencyNotFound, itemID, studentID)
	}
	if err != nil {
		return nil, err
	}
	return &met, nil
}

func (r *CompetencyRepository) Create(ctx context.Context, met *model.CompetencyMet) error {
	return r.DB.WithContext(ctx).Create(met).Error
}

// FindByStudent 返回学生在文档中每个条目的最新掌握度
func (r *CompetencyRepository) FindByStudent(ctx context.Context, studentID, documentID string) ([]model.CompetencyMet, error) {
	var rows []model.CompetencyMet
	err := r.DB.WithContext(ctx).
		Where("student_id = ? AND document_id = ?", studentID, documentID).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	latest := make(map[string]int, len(rows))
	var result []model.CompetencyMet
	for _, m := range rows {
		if i, ok := latest[m.DocumentItemID]; ok {
			result[i] = m
			continue
		}
		latest[m.DocumentItemID] = len(result)
		result = append(result, m)
	}
	return result, nil
}
