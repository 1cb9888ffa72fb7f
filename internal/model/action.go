package model

import "encoding/json"

type ActionType string

const (
	ActionChangeProgress ActionType = "CHANGE_PROGRESS"
	ActionChangeScore    ActionType = "CHANGE_SCORE"
	ActionChangeScope    ActionType = "CHANGE_SCOPE"
	ActionSendFeedback   ActionType = "SEND_FEEDBACK"
	ActionGrade          ActionType = "GRADE"
)

type ProgressionType string

const (
	InteractiveComplete                ProgressionType = "INTERACTIVE_COMPLETE"
	InteractiveRepeat                  ProgressionType = "INTERACTIVE_REPEAT"
	InteractiveCompleteAndPathwayDone  ProgressionType = "INTERACTIVE_COMPLETE_AND_PATHWAY_COMPLETE"
	InteractiveCompleteAndGoTo         ProgressionType = "INTERACTIVE_COMPLETE_AND_GO_TO"
	ActivityCompleteAndGoTo            ProgressionType = "ACTIVITY_COMPLETE_AND_GO_TO"
	ActivityCompleteAndPathwayComplete ProgressionType = "ACTIVITY_COMPLETE_AND_PATHWAY_COMPLETE"
	ActivityRepeat                     ProgressionType = "ACTIVITY_REPEAT"
)

// CompletesWalkable reports whether this progression marks a walkable of
// the given type as complete.
func (p ProgressionType) CompletesWalkable(t CoursewareElementType) bool {
	switch t {
	case ElementInteractive:
		return p == InteractiveComplete || p == InteractiveCompleteAndPathwayDone || p == InteractiveCompleteAndGoTo
	case ElementActivity:
		return p == ActivityCompleteAndGoTo || p == ActivityCompleteAndPathwayComplete
	}
	return false
}

// CompletesPathway reports whether the enclosing pathway is forced complete.
func (p ProgressionType) CompletesPathway() bool {
	return p == InteractiveCompleteAndPathwayDone || p == ActivityCompleteAndPathwayComplete
}

func (p ProgressionType) IsGoTo() bool {
	return p == InteractiveCompleteAndGoTo || p == ActivityCompleteAndGoTo
}

func (p ProgressionType) IsRepeat() bool {
	return p == InteractiveRepeat || p == ActivityRepeat
}

type ResolverType string

const (
	ResolverLiteral ResolverType = "LITERAL"
	ResolverScope   ResolverType = "SCOPE"
)

// ActionResolver tells how an action's value is obtained.
type ActionResolver struct {
	Type            ResolverType `json:"type"`
	StudentScopeURN string       `json:"studentScopeURN,omitempty"`
	SourceID        string       `json:"sourceId,omitempty"`
	Context         []string     `json:"context,omitempty"`
}

// Action is a typed effect triggered by a scenario evaluating true.
type Action interface {
	ActionType() ActionType
}

type ProgressActionContext struct {
	ProgressionType ProgressionType       `json:"progressionType"`
	ElementID       string                `json:"elementId,omitempty"`
	ElementType     CoursewareElementType `json:"elementType,omitempty"`
}

type ProgressAction struct {
	Type     ActionType            `json:"action"`
	Resolver ActionResolver        `json:"resolver"`
	Context  ProgressActionContext `json:"context"`
}

func (a *ProgressAction) ActionType() ActionType { return ActionChangeProgress }

// IsWalkableComplete evaluates the progression against the walkable that
// was evaluated.
func (a *ProgressAction) IsWalkableComplete(evaluated CoursewareElementType) bool {
	return a.Context.ProgressionType.CompletesWalkable(evaluated)
}

type ScoreOperator string

const (
	ScoreAdd      ScoreOperator = "ADD"
	ScoreSubtract ScoreOperator = "SUBTRACT"
	ScoreSet      ScoreOperator = "SET"
)

type ScoreActionContext struct {
	ElementID   string                `json:"elementId"`
	ElementType CoursewareElementType `json:"elementType"`
	Operator    ScoreOperator         `json:"operator"`
	Value       float64               `json:"value"`
}

type ScoreAction struct {
	Type     ActionType         `json:"action"`
	Resolver ActionResolver     `json:"resolver"`
	Context  ScoreActionContext `json:"context"`
}

func (a *ScoreAction) ActionType() ActionType { return ActionChangeScore }

type ScopeActionContext struct {
	StudentScopeURN string          `json:"studentScopeURN"`
	SourceID        string          `json:"sourceId"`
	Context         []string        `json:"context,omitempty"`
	Value           json.RawMessage `json:"value,omitempty"`
}

type ScopeAction struct {
	Type     ActionType         `json:"action"`
	Resolver ActionResolver     `json:"resolver"`
	Context  ScopeActionContext `json:"context"`
}

func (a *ScopeAction) ActionType() ActionType { return ActionChangeScope }

type FeedbackActionContext struct {
	Value string `json:"value"`
}

type FeedbackAction struct {
	Type     ActionType            `json:"action"`
	Resolver ActionResolver        `json:"resolver"`
	Context  FeedbackActionContext `json:"context"`
}

func (a *FeedbackAction) ActionType() ActionType { return ActionSendFeedback }

type GradeActionContext struct {
	ElementID   string                `json:"elementId"`
	ElementType CoursewareElementType `json:"elementType"`
	Value       float64               `json:"value"`
}

type GradeAction struct {
	Type     ActionType         `json:"action"`
	Resolver ActionResolver     `json:"resolver"`
	Context  GradeActionContext `json:"context"`
}

func (a *GradeAction) ActionType() ActionType { return ActionGrade }
