package model

import "gorm.io/datatypes"

// StudentScope is one generation of a student's scope for a scope URN.
// Resetting a scope appends a new generation, leaving it without entries.
type StudentScope struct {
	TimeIDBase

	DeploymentID string `gorm:"type:varchar(36);index:idx_scope_latest,priority:1" json:"deploymentId"`
	StudentID    string `gorm:"type:varchar(36);index:idx_scope_latest,priority:2" json:"studentId"`
	ScopeURN     string `gorm:"type:varchar(64);index:idx_scope_latest,priority:3" json:"scopeUrn"`
	ElementID    string `gorm:"type:varchar(36)" json:"elementId"`
}

func (StudentScope) TableName() string {
	return "student_scopes"
}

type StudentScopeEntry struct {
	TimeIDBase

	ScopeID  string         `gorm:"type:varchar(36);index" json:"scopeId"`
	SourceID string         `gorm:"type:varchar(36)" json:"sourceId"`
	Data     datatypes.JSON `json:"data"`
}

func (StudentScopeEntry) TableName() string {
	return "student_scope_entries"
}
