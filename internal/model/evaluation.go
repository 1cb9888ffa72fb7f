package model

import (
	"time"

	"gorm.io/datatypes"
)

type EvaluationMode string

const (
	// EvaluationDefault stops at the first scenario that evaluates true.
	EvaluationDefault EvaluationMode = "DEFAULT"
	// EvaluationCombined evaluates every scenario.
	EvaluationCombined EvaluationMode = "COMBINED"
)

type LearnerEvaluationRequest struct {
	DeploymentID    string            `json:"deploymentId" binding:"required"`
	ChangeID        string            `json:"changeId"`
	Walkable        CoursewareElement `json:"walkable" binding:"required"`
	StudentID       string            `json:"studentId" binding:"required"`
	AttemptID       string            `json:"attemptId" binding:"required"`
	StudentScopeURN string            `json:"studentScopeURN"`
	Lifecycle       ScenarioLifecycle `json:"lifecycle"`
	Mode            EvaluationMode    `json:"mode"`
}

type WalkableEvaluationResult struct {
	ID           string                `json:"id"`
	WalkableID   string                `json:"walkableId"`
	WalkableType CoursewareElementType `json:"walkableType"`
	Mode         EvaluationMode        `json:"mode"`
}

type LearnerEvaluationResponse struct {
	Request                   LearnerEvaluationRequest   `json:"request"`
	ScenarioEvaluationResults []ScenarioEvaluationResult `json:"scenarioEvaluationResults"`
	WalkableEvaluationResult  WalkableEvaluationResult   `json:"walkableEvaluationResult"`
}

// TruthfulResult returns the first scenario result that evaluated true.
func (r *LearnerEvaluationResponse) TruthfulResult() (ScenarioEvaluationResult, bool) {
	for _, res := range r.ScenarioEvaluationResults {
		if res.EvaluationResult {
			return res, true
		}
	}
	return ScenarioEvaluationResult{}, false
}

// IsCorrect reports whether the truthful scenario was marked correct.
// No truthful scenario, or one without a correctness, counts as incorrect.
func (r *LearnerEvaluationResponse) IsCorrect() bool {
	res, ok := r.TruthfulResult()
	return ok && res.ScenarioCorrectness == CorrectnessCorrect
}

// EvaluationRecord is the audit row for one learner evaluation.
type EvaluationRecord struct {
	ID               string                                        `gorm:"primaryKey;type:varchar(36)" json:"id"`
	DeploymentID     string                                        `gorm:"type:varchar(36);index:idx_evaluation_student,priority:1" json:"deploymentId"`
	StudentID        string                                        `gorm:"type:varchar(36);index:idx_evaluation_student,priority:2" json:"studentId"`
	ChangeID         string                                        `gorm:"type:varchar(36)" json:"changeId"`
	ElementID        string                                        `gorm:"type:varchar(36)" json:"elementId"`
	ElementType      CoursewareElementType                         `gorm:"type:varchar(16)" json:"elementType"`
	AttemptID        string                                        `gorm:"type:varchar(36)" json:"attemptId"`
	Mode             EvaluationMode                                `gorm:"type:varchar(16)" json:"mode"`
	Results          datatypes.JSONSlice[ScenarioEvaluationResult] `json:"results"`
	WalkableComplete bool                                          `json:"walkableComplete"`
	CreatedAt        time.Time                                     `json:"createdAt"`
}

func (EvaluationRecord) TableName() string {
	return "evaluation_records"
}
