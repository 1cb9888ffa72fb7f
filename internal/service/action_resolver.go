package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"courseware_backend/internal/condition"
	"courseware_backend/internal/model"

	"github.com/tidwall/gjson"
)

type actionEnvelope struct {
	Action   model.ActionType     `json:"action"`
	Resolver model.ActionResolver `json:"resolver"`
	Context  json.RawMessage      `json:"context"`
}

// DeserializeActions parses a scenario's stored action list.
func DeserializeActions(raw []byte) ([]model.Action, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var envelopes []actionEnvelope
	if err := json.Unmarshal(trimmed, &envelopes); err != nil {
		return nil, fmt.Errorf("deserialize actions: %w", err)
	}

	actions := make([]model.Action, 0, len(envelopes))
	for _, env := range envelopes {
		action, err := decodeAction(env)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	return actions, nil
}

func decodeAction(env actionEnvelope) (model.Action, error) {
	var (
		action model.Action
		target interface{}
	)
	switch env.Action {
	case model.ActionChangeProgress:
		a := &model.ProgressAction{Type: env.Action, Resolver: env.Resolver}
		action, target = a, &a.Context
	case model.ActionChangeScore:
		a := &model.ScoreAction{Type: env.Action, Resolver: env.Resolver}
		action, target = a, &a.Context
	case model.ActionChangeScope:
		a := &model.ScopeAction{Type: env.Action, Resolver: env.Resolver}
		action, target = a, &a.Context
	case model.ActionSendFeedback:
		a := &model.FeedbackAction{Type: env.Action, Resolver: env.Resolver}
		action, target = a, &a.Context
	case model.ActionGrade:
		a := &model.GradeAction{Type: env.Action, Resolver: env.Resolver}
		action, target = a, &a.Context
	default:
		return nil, fmt.Errorf("deserialize actions: unknown action type %q", env.Action)
	}
	if len(env.Context) > 0 {
		if err := json.Unmarshal(env.Context, target); err != nil {
			return nil, fmt.Errorf("deserialize %s context: %w", env.Action, err)
		}
	}
	return action, nil
}

// ActionResolver fills in action values that come from the student scope.
type ActionResolver struct{}

func NewActionResolver() *ActionResolver {
	return &ActionResolver{}
}

// Resolve deserializes the actions of every truthful result, in result
// order, and resolves their SCOPE values.
func (r *ActionResolver) Resolve(ctx context.Context, results []model.ScenarioEvaluationResult, scope condition.Scope) ([]model.Action, error) {
	var actions []model.Action
	for _, res := range results {
		if !res.EvaluationResult {
			continue
		}
		parsed, err := DeserializeActions(res.Actions)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", res.ScenarioID, err)
		}
		for _, a := range parsed {
			if err := r.resolveValue(ctx, a, scope); err != nil {
				return nil, fmt.Errorf("scenario %s: %w", res.ScenarioID, err)
			}
			actions = append(actions, a)
		}
	}
	return actions, nil
}

func (r *ActionResolver) resolveValue(ctx context.Context, action model.Action, scope condition.Scope) error {
	switch a := action.(type) {
	case *model.ScoreAction:
		if a.Resolver.Type != model.ResolverScope {
			return nil
		}
		v, err := lookupActionValue(ctx, a.Resolver, scope)
		if err != nil {
			return err
		}
		a.Context.Value = v.Float()
	case *model.ScopeAction:
		if a.Resolver.Type != model.ResolverScope {
			return nil
		}
		v, err := lookupActionValue(ctx, a.Resolver, scope)
		if err != nil {
			return err
		}
		a.Context.Value = json.RawMessage(v.Raw)
	case *model.GradeAction:
		if a.Resolver.Type != model.ResolverScope {
			return nil
		}
		v, err := lookupActionValue(ctx, a.Resolver, scope)
		if err != nil {
			return err
		}
		a.Context.Value = v.Float()
	}
	return nil
}

func lookupActionValue(ctx context.Context, res model.ActionResolver, scope condition.Scope) (gjson.Result, error) {
	entry, ok, err := scope.Entry(ctx, res.StudentScopeURN, res.SourceID)
	if err != nil {
		return gjson.Result{}, err
	}
	if !ok {
		return gjson.Result{}, fmt.Errorf("%w: action value %s/%s", condition.ErrUnableToResolve, res.StudentScopeURN, res.SourceID)
	}
	return condition.Lookup(entry, res.Context)
}

// FirstProgressAction returns the first CHANGE_PROGRESS action, if any.
func FirstProgressAction(actions []model.Action) *model.ProgressAction {
	for _, a := range actions {
		if p, ok := a.(*model.ProgressAction); ok {
			return p
		}
	}
	return nil
}
