package model

type CoursewareHistory struct {
	TimeIDBase

	EvaluationID    string                `gorm:"type:varchar(36);index" json:"evaluationId"`
	DeploymentID    string                `gorm:"type:varchar(36);index:idx_history_student,priority:1" json:"deploymentId"`
	StudentID       string                `gorm:"type:varchar(36);index:idx_history_student,priority:2" json:"studentId"`
	ElementID       string                `gorm:"type:varchar(36)" json:"elementId"`
	ElementType     CoursewareElementType `gorm:"type:varchar(16)" json:"elementType"`
	AttemptID       string                `gorm:"type:varchar(36)" json:"attemptId"`
	ParentPathwayID string                `gorm:"type:varchar(36)" json:"parentPathwayId,omitempty"`
}

func (CoursewareHistory) TableName() string {
	return "courseware_history"
}
