package condition

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Scope gives access to the scope entries referenced by SCOPE operands.
type Scope interface {
	// Entry returns the stored entry of sourceID in the given scope, or
	// false when the student has no such entry.
	Entry(ctx context.Context, scopeURN, sourceID string) (json.RawMessage, bool, error)
}

// Resolved is a condition tree whose operands hold concrete values.
type Resolved struct {
	Type        NodeType
	Operator    Operator
	OperandType OperandType
	Children    []Resolved
	LHS         gjson.Result
	RHS         gjson.Result
	HasRHS      bool
}

// Resolve looks up every operand of the tree. Missing scope values fail
// with ErrUnableToResolve; scope lookup failures are returned as is.
func Resolve(ctx context.Context, n *Node, scope Scope) (*Resolved, error) {
	r, err := resolveNode(ctx, n, scope)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func resolveNode(ctx context.Context, n *Node, scope Scope) (Resolved, error) {
	switch n.Type {
	case "", NodeChained:
		out := Resolved{Type: NodeChained, Operator: n.Operator}
		for i := range n.Conditions {
			child, err := resolveNode(ctx, &n.Conditions[i], scope)
			if err != nil {
				return Resolved{}, err
			}
			out.Children = append(out.Children, child)
		}
		return out, nil
	case NodeEvaluator:
		out := Resolved{Type: NodeEvaluator, Operator: n.Operator, OperandType: n.OperandType}
		lhs, err := resolveOperand(ctx, n.LHS, scope)
		if err != nil {
			return Resolved{}, err
		}
		out.LHS = lhs
		if n.RHS != nil {
			rhs, err := resolveOperand(ctx, n.RHS, scope)
			if err != nil {
				return Resolved{}, err
			}
			out.RHS = rhs
			out.HasRHS = true
		}
		return out, nil
	}
	return Resolved{}, fmt.Errorf("unknown condition node type %q", n.Type)
}

func resolveOperand(ctx context.Context, op *Operand, scope Scope) (gjson.Result, error) {
	switch op.Resolver.Type {
	case "", ResolverLiteral:
		if len(op.Value) == 0 {
			return gjson.Result{}, fmt.Errorf("%w: literal operand without value", ErrUnableToResolve)
		}
		return gjson.ParseBytes(op.Value), nil
	case ResolverScope:
		if scope == nil {
			return gjson.Result{}, fmt.Errorf("%w: no scope for %s", ErrUnableToResolve, op.Resolver.SourceID)
		}
		entry, ok, err := scope.Entry(ctx, op.Resolver.StudentScopeURN, op.Resolver.SourceID)
		if err != nil {
			return gjson.Result{}, fmt.Errorf("lookup scope %s: %w", op.Resolver.StudentScopeURN, err)
		}
		if !ok {
			return gjson.Result{}, fmt.Errorf("%w: %s has no entry for %s", ErrUnableToResolve, op.Resolver.StudentScopeURN, op.Resolver.SourceID)
		}
		return Lookup(entry, op.Resolver.Context)
	}
	return gjson.Result{}, fmt.Errorf("%w: resolver type %q", ErrUnableToResolve, op.Resolver.Type)
}

// Lookup reads the value at path inside a scope entry. An empty path
// returns the whole entry.
func Lookup(entry json.RawMessage, path []string) (gjson.Result, error) {
	if len(path) == 0 {
		return gjson.ParseBytes(entry), nil
	}
	res := gjson.GetBytes(entry, joinPath(path))
	if !res.Exists() {
		return gjson.Result{}, fmt.Errorf("%w: path %s", ErrUnableToResolve, strings.Join(path, "."))
	}
	return res, nil
}

var pathEscaper = strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`)

func joinPath(path []string) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = pathEscaper.Replace(p)
	}
	return strings.Join(parts, ".")
}
