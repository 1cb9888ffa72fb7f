package service

import "fmt"

// ScenarioEvaluationError is a fatal failure while evaluating a scenario.
type ScenarioEvaluationError struct {
	ScenarioID string
	Err        error
}

func (e *ScenarioEvaluationError) Error() string {
	return fmt.Sprintf("evaluate scenario %s: %v", e.ScenarioID, e.Err)
}

func (e *ScenarioEvaluationError) Unwrap() error { return e.Err }

// LearnerEvaluationError aborts a whole evaluation of a walkable.
type LearnerEvaluationError struct {
	WalkableID string
	StudentID  string
	Err        error
}

func (e *LearnerEvaluationError) Error() string {
	return fmt.Sprintf("learner evaluation of %s for student %s: %v", e.WalkableID, e.StudentID, e.Err)
}

func (e *LearnerEvaluationError) Unwrap() error { return e.Err }
