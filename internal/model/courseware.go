package model

import (
	"time"

	"gorm.io/datatypes"
)

type CoursewareElementType string

const (
	ElementActivity    CoursewareElementType = "ACTIVITY"
	ElementInteractive CoursewareElementType = "INTERACTIVE"
	ElementPathway     CoursewareElementType = "PATHWAY"
	ElementComponent   CoursewareElementType = "COMPONENT"
)

// IsWalkable reports whether a student can attempt elements of this type.
func (t CoursewareElementType) IsWalkable() bool {
	return t == ElementActivity || t == ElementInteractive
}

// CoursewareElement identifies a node of the courseware tree.
type CoursewareElement struct {
	ElementID   string                `json:"elementId"`
	ElementType CoursewareElementType `json:"elementType"`
}

func NewElement(id string, t CoursewareElementType) CoursewareElement {
	return CoursewareElement{ElementID: id, ElementType: t}
}

type PathwayType string

const (
	PathwayLinear PathwayType = "LINEAR"
	PathwayFree   PathwayType = "FREE"
	PathwayRandom PathwayType = "RANDOM"
	PathwayGraph  PathwayType = "GRAPH"
	PathwayBKT    PathwayType = "ALGO_BKT"
)

// AllPathwayTypes lists every pathway type the progress engine handles.
var AllPathwayTypes = []PathwayType{PathwayLinear, PathwayFree, PathwayRandom, PathwayGraph, PathwayBKT}

// CompetencyLink ties a BKT pathway to a competency document item.
type CompetencyLink struct {
	DocumentID     string `json:"documentId"`
	DocumentItemID string `json:"documentItemId"`
}

// PathwayConfig holds the per-type configuration of a pathway. Only the
// fields relevant to the pathway's type are read.
type PathwayConfig struct {
	// random and BKT
	ExitAfter int `json:"exitAfter,omitempty"`

	// graph
	StartingWalkableID   string                `json:"startingWalkableId,omitempty"`
	StartingWalkableType CoursewareElementType `json:"startingWalkableType,omitempty"`

	// BKT
	PL0         float64          `json:"pL0,omitempty"`
	Slip        float64          `json:"slip,omitempty"`
	Guess       float64          `json:"guess,omitempty"`
	Transit     float64          `json:"transit,omitempty"`
	PLnTarget   float64          `json:"pLnTarget,omitempty"`
	MaintainFor int              `json:"maintainFor,omitempty"`
	Competency  []CompetencyLink `json:"competency,omitempty"`
}

type CoursewareNode struct {
	ID              uint                              `gorm:"primaryKey;autoIncrement" json:"-"`
	DeploymentID    string                            `gorm:"type:varchar(36);uniqueIndex:idx_node_element;index:idx_node_parent,priority:1" json:"deploymentId"`
	ChangeID        string                            `gorm:"type:varchar(36)" json:"changeId"`
	ElementID       string                            `gorm:"type:varchar(36);uniqueIndex:idx_node_element" json:"elementId"`
	ElementType     CoursewareElementType             `gorm:"type:varchar(16)" json:"elementType"`
	ParentID        string                            `gorm:"type:varchar(36);index:idx_node_parent,priority:2" json:"parentId,omitempty"`
	Position        int                               `json:"position"`
	PathwayType     PathwayType                       `gorm:"type:varchar(16)" json:"pathwayType,omitempty"`
	StudentScopeURN string                            `gorm:"type:varchar(64)" json:"studentScopeUrn,omitempty"`
	Config          datatypes.JSONType[PathwayConfig] `json:"config"`
	CreatedAt       time.Time                         `json:"createdAt"`
	UpdatedAt       time.Time                         `json:"updatedAt"`
}

func (CoursewareNode) TableName() string {
	return "courseware_nodes"
}

func (n CoursewareNode) Element() CoursewareElement {
	return CoursewareElement{ElementID: n.ElementID, ElementType: n.ElementType}
}

// LearnerPathway is the deployed view of a pathway node.
type LearnerPathway struct {
	ID           string        `json:"id"`
	DeploymentID string        `json:"deploymentId"`
	ChangeID     string        `json:"changeId"`
	Type         PathwayType   `json:"type"`
	Config       PathwayConfig `json:"config"`
}

func (n CoursewareNode) Pathway() LearnerPathway {
	return LearnerPathway{
		ID:           n.ElementID,
		DeploymentID: n.DeploymentID,
		ChangeID:     n.ChangeID,
		Type:         n.PathwayType,
		Config:       n.Config.Data(),
	}
}
