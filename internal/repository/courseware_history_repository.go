package repository

import (
	"context"

	"courseware_backend/internal/model"

	"gorm.io/gorm"
)

type CoursewareHistoryRepository struct {
	DB *gorm.DB
}

func NewCoursewareHistoryRepository(db *gorm.DB) *CoursewareHistoryRepository {
	return &CoursewareHistoryRepository{DB: db}
}

// Record 记录学生完成的一个可学习元素
func (r *CoursewareHistoryRepository) Record(ctx context.Context, evaluationID string, request model.LearnerEvaluationRequest, element model.CoursewareElement, attemptID, parentPathwayID string) error {
	entry := &model.CoursewareHistory{
		EvaluationID:    evaluationID,
		DeploymentID:    request.DeploymentID,
		StudentID:       request.StudentID,
		ElementID:       element.ElementID,
		ElementType:     element.ElementType,
		AttemptID:       attemptID,
		ParentPathwayID: parentPathwayID,
	}
	return r.DB.WithContext(ctx).Create(entry).Error
}

func (r *CoursewareHistoryRepository) FindByStudent(ctx context.Context, deploymentID, studentID string) ([]model.CoursewareHistory, error) {
	var history []model.CoursewareHistory
	err := r.DB.WithContext(ctx).
		Where("deployment_id = ? AND student_id = ?", deploymentID, studentID).
		Order("id").
		Find(&history).Error
	return history, err
}
