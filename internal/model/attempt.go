package model

type Attempt struct {
	TimeIDBase

	ParentID              string                `gorm:"type:varchar(36);index" json:"parentId,omitempty"`
	DeploymentID          string                `gorm:"type:varchar(36);index:idx_attempt_latest,priority:1" json:"deploymentId"`
	CoursewareElementID   string                `gorm:"type:varchar(36);index:idx_attempt_latest,priority:2" json:"coursewareElementId"`
	StudentID             string                `gorm:"type:varchar(36);index:idx_attempt_latest,priority:3" json:"studentId"`
	CoursewareElementType CoursewareElementType `gorm:"type:varchar(16)" json:"coursewareElementType"`
	Value                 int                   `json:"value"`
}

func (Attempt) TableName() string {
	return "attempts"
}
