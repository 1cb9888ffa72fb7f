package service

import (
	"encoding/json"

	"courseware_backend/internal/model"
)

// EvaluationActionState is the progress action driving the current
// propagation and the walkable it was evaluated against.
type EvaluationActionState struct {
	Action    *model.ProgressAction
	Evaluated model.CoursewareElement
}

// ResponseContext is owned by a single evaluation pass. Each propagation
// level reads the progress appended by the level below it.
type ResponseContext struct {
	Response         *model.LearnerEvaluationResponse
	Actions          []model.Action
	WalkableComplete bool
	Ancestry         []model.CoursewareElement
	ScopeEntries     map[string]json.RawMessage
	Progresses       []*model.Progress
	ParentPathway    *model.LearnerPathway
	ActionState      EvaluationActionState
}

func NewResponseContext(resp *model.LearnerEvaluationResponse) *ResponseContext {
	return &ResponseContext{
		Response: resp,
		ActionState: EvaluationActionState{
			Evaluated: resp.Request.Walkable,
		},
	}
}

func (c *ResponseContext) Request() model.LearnerEvaluationRequest {
	return c.Response.Request
}

func (c *ResponseContext) EvaluationID() string {
	return c.Response.WalkableEvaluationResult.ID
}

// LatestProgress returns the progress produced by the previous level.
func (c *ResponseContext) LatestProgress() (*model.Progress, bool) {
	if len(c.Progresses) == 0 {
		return nil, false
	}
	return c.Progresses[len(c.Progresses)-1], true
}

func (c *ResponseContext) AddProgress(p *model.Progress) {
	c.Progresses = append(c.Progresses, p)
}

func (c *ResponseContext) IsEvaluated(element model.CoursewareElement) bool {
	return c.ActionState.Evaluated.ElementID == element.ElementID
}

// IsDirectParentOfEvaluated reports whether element sits right above the
// evaluated walkable in the ancestry.
func (c *ResponseContext) IsDirectParentOfEvaluated(element model.CoursewareElement) bool {
	for i := 0; i+1 < len(c.Ancestry); i++ {
		if c.Ancestry[i].ElementID == c.ActionState.Evaluated.ElementID {
			return c.Ancestry[i+1].ElementID == element.ElementID
		}
	}
	return false
}

// IsRoot reports whether element is the top of the ancestry.
func (c *ResponseContext) IsRoot(element model.CoursewareElement) bool {
	return len(c.Ancestry) > 0 && c.Ancestry[len(c.Ancestry)-1].ElementID == element.ElementID
}

// ProgressionType returns the driving progression, or "" when none fired.
func (c *ResponseContext) ProgressionType() model.ProgressionType {
	if c.ActionState.Action == nil {
		return ""
	}
	return c.ActionState.Action.Context.ProgressionType
}

// ParentOf returns the element right above element in the ancestry.
func (c *ResponseContext) ParentOf(element model.CoursewareElement) (model.CoursewareElement, bool) {
	for i := 0; i+1 < len(c.Ancestry); i++ {
		if c.Ancestry[i].ElementID == element.ElementID {
			return c.Ancestry[i+1], true
		}
	}
	return model.CoursewareElement{}, false
}

// NearestActivityAbove returns the first activity above the evaluated
// walkable.
func (c *ResponseContext) NearestActivityAbove() (model.CoursewareElement, bool) {
	seen := false
	for _, e := range c.Ancestry {
		if seen && e.ElementType == model.ElementActivity {
			return e, true
		}
		if e.ElementID == c.ActionState.Evaluated.ElementID {
			seen = true
		}
	}
	return model.CoursewareElement{}, false
}
