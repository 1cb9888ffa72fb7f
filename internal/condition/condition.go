// Package condition deserializes, resolves and evaluates the condition
// trees configured on scenarios.
//
// A tree is made of CHAINED_CONDITION nodes, which combine their children
// with AND/OR, and EVALUATOR leaves, which compare a left and right
// operand. Operands are either literals or references into a student's
// scope; Resolve replaces every reference with its current value so that
// Evaluate is a pure function of the resolved tree.
package condition

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUnableToResolve is returned when an operand references a value
	// that is not present in the evaluation context.
	ErrUnableToResolve = errors.New("unable to resolve operand")
	// ErrUnsupportedOperator is returned for operators the evaluator does
	// not implement for the given operand type.
	ErrUnsupportedOperator = errors.New("unsupported operator")
)

type NodeType string

const (
	NodeChained   NodeType = "CHAINED_CONDITION"
	NodeEvaluator NodeType = "EVALUATOR"
)

type Operator string

const (
	OpAnd Operator = "AND"
	OpOr  Operator = "OR"

	OpIs                 Operator = "IS"
	OpIsNot              Operator = "IS_NOT"
	OpEquals             Operator = "EQUALS"
	OpNotEquals          Operator = "NOT_EQUALS"
	OpLessThan           Operator = "LESS_THAN"
	OpLessThanOrEqual    Operator = "LESS_THAN_OR_EQUAL"
	OpGreaterThan        Operator = "GREATER_THAN"
	OpGreaterThanOrEqual Operator = "GREATER_THAN_OR_EQUAL"
	OpContains           Operator = "CONTAINS"
	OpDoesNotContain     Operator = "DOES_NOT_CONTAIN"
	OpStartsWith         Operator = "STARTS_WITH"
	OpEndsWith           Operator = "ENDS_WITH"
	OpIsEmpty            Operator = "IS_EMPTY"
	OpIsNotEmpty         Operator = "IS_NOT_EMPTY"
	OpIsOneOf            Operator = "IS_ONE_OF"
)

type OperandType string

const (
	OperandBoolean OperandType = "BOOLEAN"
	OperandNumber  OperandType = "NUMBER"
	OperandString  OperandType = "STRING"
	OperandList    OperandType = "LIST"
)

type ResolverType string

const (
	ResolverLiteral ResolverType = "LITERAL"
	ResolverScope   ResolverType = "SCOPE"
)

type Resolver struct {
	Type            ResolverType `json:"type"`
	StudentScopeURN string       `json:"studentScopeURN,omitempty"`
	SourceID        string       `json:"sourceId,omitempty"`
	// Context is the path of the value inside the scope entry.
	Context []string `json:"context,omitempty"`
}

type Operand struct {
	Value    json.RawMessage `json:"value,omitempty"`
	Resolver Resolver        `json:"resolver"`
}

// Node is a condition tree node as stored on a scenario.
type Node struct {
	Type        NodeType    `json:"type"`
	Operator    Operator    `json:"operator,omitempty"`
	Conditions  []Node      `json:"conditions,omitempty"`
	OperandType OperandType `json:"operandType,omitempty"`
	LHS         *Operand    `json:"lhs,omitempty"`
	RHS         *Operand    `json:"rhs,omitempty"`
}

// IsEmpty reports whether the tree carries no conditions at all.
func (n *Node) IsEmpty() bool {
	if n == nil || n.Type == "" {
		return true
	}
	return n.Type == NodeChained && len(n.Conditions) == 0
}

// Deserialize parses a stored condition. Empty input yields an empty tree.
func Deserialize(raw []byte) (*Node, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return &Node{}, nil
	}
	var n Node
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return nil, fmt.Errorf("deserialize condition: %w", err)
	}
	if err := n.validate(); err != nil {
		return nil, err
	}
	return &n, nil
}

func (n *Node) validate() error {
	switch n.Type {
	case "":
		if len(n.Conditions) > 0 || n.LHS != nil {
			return errors.New("condition node without type")
		}
	case NodeChained:
		if n.Operator != OpAnd && n.Operator != OpOr && len(n.Conditions) > 0 {
			return fmt.Errorf("chained condition with operator %q", n.Operator)
		}
		for i := range n.Conditions {
			if err := n.Conditions[i].validate(); err != nil {
				return err
			}
		}
	case NodeEvaluator:
		if n.LHS == nil {
			return errors.New("evaluator without lhs operand")
		}
	default:
		return fmt.Errorf("unknown condition node type %q", n.Type)
	}
	return nil
}
