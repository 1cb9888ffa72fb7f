package model

import "time"

type CompetencyDocument struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title     string    `gorm:"type:varchar(255)" json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

func (CompetencyDocument) TableName() string {
	return "competency_documents"
}

type DocumentItem struct {
	ID            string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	DocumentID    string `gorm:"type:varchar(36);index" json:"documentId"`
	FullStatement string `gorm:"type:text" json:"fullStatement"`
}

func (DocumentItem) TableName() string {
	return "competency_document_items"
}

type AssociationType string

const (
	// AssociationIsChildOf links a child item (destination) to its parent (origin).
	AssociationIsChildOf AssociationType = "IS_CHILD_OF"
	AssociationIsPeerOf  AssociationType = "IS_PEER_OF"
)

type ItemAssociation struct {
	ID                string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	DocumentID        string          `gorm:"type:varchar(36)" json:"documentId"`
	OriginItemID      string          `gorm:"type:varchar(36);index" json:"originItemId"`
	DestinationItemID string          `gorm:"type:varchar(36);index" json:"destinationItemId"`
	AssociationType   AssociationType `gorm:"type:varchar(16)" json:"associationType"`
}

func (ItemAssociation) TableName() string {
	return "competency_item_associations"
}

// CompetencyMet records a student's mastery of a document item. The
// latest row per (student, document, item) is the student's current value.
type CompetencyMet struct {
	TimeIDBase

	StudentID      string  `gorm:"type:varchar(36);index:idx_competency_latest,priority:1" json:"studentId"`
	DocumentID     string  `gorm:"type:varchar(36);index:idx_competency_latest,priority:2" json:"documentId"`
	DocumentItemID string  `gorm:"type:varchar(36);index:idx_competency_latest,priority:3" json:"documentItemId"`
	Value          float64 `json:"value"`
	Confidence     float64 `json:"confidence"`
	EvaluationID   string  `gorm:"type:varchar(36)" json:"evaluationId,omitempty"`
	AttemptID      string  `gorm:"type:varchar(36)" json:"attemptId,omitempty"`
}

func (CompetencyMet) TableName() string {
	return "competency_met"
}
