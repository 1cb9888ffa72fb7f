package model

import "gorm.io/datatypes"

type ScenarioCorrectness string

const (
	CorrectnessCorrect   ScenarioCorrectness = "correct"
	CorrectnessIncorrect ScenarioCorrectness = "incorrect"
	CorrectnessUnscored  ScenarioCorrectness = "unscored"
)

type ScenarioLifecycle string

const (
	LifecycleInteractiveEvaluation ScenarioLifecycle = "INTERACTIVE_EVALUATION"
	LifecycleActivityEvaluation    ScenarioLifecycle = "ACTIVITY_EVALUATION"
	LifecycleActivityComplete      ScenarioLifecycle = "ACTIVITY_COMPLETE"
)

type Scenario struct {
	ID           string              `gorm:"primaryKey;type:varchar(36)" json:"id"`
	DeploymentID string              `gorm:"type:varchar(36);index:idx_scenario_lookup,priority:1" json:"deploymentId"`
	ChangeID     string              `gorm:"type:varchar(36);index:idx_scenario_lookup,priority:2" json:"changeId"`
	ElementID    string              `gorm:"type:varchar(36);index:idx_scenario_lookup,priority:3" json:"elementId"`
	Lifecycle    ScenarioLifecycle   `gorm:"type:varchar(32);index:idx_scenario_lookup,priority:4" json:"lifecycle"`
	Position     int                 `json:"position"`
	Name         string              `gorm:"type:varchar(255)" json:"name"`
	Condition    datatypes.JSON      `json:"condition"`
	Actions      datatypes.JSON      `json:"actions"`
	Correctness  ScenarioCorrectness `gorm:"type:varchar(16)" json:"correctness,omitempty"`
}

func (Scenario) TableName() string {
	return "scenarios"
}

// ScenarioEvaluationResult is produced once per evaluated scenario.
type ScenarioEvaluationResult struct {
	ScenarioID          string              `json:"scenarioId"`
	EvaluationResult    bool                `json:"evaluationResult"`
	ScenarioCorrectness ScenarioCorrectness `json:"scenarioCorrectness,omitempty"`
	Actions             datatypes.JSON      `json:"actions,omitempty"`
	ErrorMessage        string              `json:"errorMessage,omitempty"`
}
