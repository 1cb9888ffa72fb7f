package model

import (
	"time"

	"gorm.io/datatypes"
)

type ProgressKind string

const (
	ProgressGeneral       ProgressKind = "GENERAL"
	ProgressActivity      ProgressKind = "ACTIVITY"
	ProgressLinearPathway ProgressKind = "LINEAR_PATHWAY"
	ProgressFreePathway   ProgressKind = "FREE_PATHWAY"
	ProgressRandomPathway ProgressKind = "RANDOM_PATHWAY"
	ProgressGraphPathway  ProgressKind = "GRAPH_PATHWAY"
	ProgressBKTPathway    ProgressKind = "BKT_PATHWAY"
)

// ProgressKindFor maps a pathway type to its progress variant.
func ProgressKindFor(t PathwayType) ProgressKind {
	switch t {
	case PathwayLinear:
		return ProgressLinearPathway
	case PathwayFree:
		return ProgressFreePathway
	case PathwayRandom:
		return ProgressRandomPathway
	case PathwayGraph:
		return ProgressGraphPathway
	case PathwayBKT:
		return ProgressBKTPathway
	}
	return ProgressGeneral
}

// Progress is an immutable snapshot of a student's completion of one
// element. Rows are only ever appended; the latest by id is current.
//
// The pathway, graph and BKT columns are only populated for the matching
// Kind.
type Progress struct {
	ID                    string                `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Kind                  ProgressKind          `gorm:"type:varchar(24)" json:"kind"`
	DeploymentID          string                `gorm:"type:varchar(36);index:idx_progress_latest,priority:1" json:"deploymentId"`
	CoursewareElementID   string                `gorm:"type:varchar(36);index:idx_progress_latest,priority:2" json:"coursewareElementId"`
	StudentID             string                `gorm:"type:varchar(36);index:idx_progress_latest,priority:3" json:"studentId"`
	ChangeID              string                `gorm:"type:varchar(36)" json:"changeId"`
	CoursewareElementType CoursewareElementType `gorm:"type:varchar(16)" json:"coursewareElementType"`
	AttemptID             string                `gorm:"type:varchar(36)" json:"attemptId"`
	EvaluationID          string                `gorm:"type:varchar(36)" json:"evaluationId"`
	Completion            Completion            `gorm:"embedded;embeddedPrefix:completion_" json:"completion"`

	ChildWalkableCompletionValues      datatypes.JSONType[map[string]float64] `json:"childWalkableCompletionValues"`
	ChildWalkableCompletionConfidences datatypes.JSONType[map[string]float64] `json:"childWalkableCompletionConfidences"`
	CompletedWalkables                 datatypes.JSONSlice[string]            `json:"completedWalkables"`

	CurrentWalkableID   string                `gorm:"type:varchar(36)" json:"currentWalkableId,omitempty"`
	CurrentWalkableType CoursewareElementType `gorm:"type:varchar(16)" json:"currentWalkableType,omitempty"`

	InProgressElementID   string                `gorm:"type:varchar(36)" json:"inProgressElementId,omitempty"`
	InProgressElementType CoursewareElementType `gorm:"type:varchar(16)" json:"inProgressElementType,omitempty"`
	PLn                   float64               `json:"pLn,omitempty"`
	PLnMinus1GivenActual  float64               `json:"pLnMinus1GivenActual,omitempty"`
	PCorrect              float64               `json:"pCorrect,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

func (Progress) TableName() string {
	return "progresses"
}

func (p *Progress) ChildValues() map[string]float64 {
	return p.ChildWalkableCompletionValues.Data()
}

func (p *Progress) ChildConfidences() map[string]float64 {
	return p.ChildWalkableCompletionConfidences.Data()
}

func (p *Progress) SetChildCompletions(values, confidences map[string]float64) {
	p.ChildWalkableCompletionValues = datatypes.NewJSONType(values)
	p.ChildWalkableCompletionConfidences = datatypes.NewJSONType(confidences)
}

func (p *Progress) Element() CoursewareElement {
	return CoursewareElement{ElementID: p.CoursewareElementID, ElementType: p.CoursewareElementType}
}
