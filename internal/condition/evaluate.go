package condition

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Evaluate computes the boolean value of a resolved tree. Empty chains
// evaluate to true.
func Evaluate(r *Resolved) (bool, error) {
	switch r.Type {
	case NodeChained:
		return evaluateChain(r)
	case NodeEvaluator:
		return evaluateOperands(r)
	}
	return false, fmt.Errorf("unknown condition node type %q", r.Type)
}

func evaluateChain(r *Resolved) (bool, error) {
	if len(r.Children) == 0 {
		return true, nil
	}
	for i := range r.Children {
		ok, err := Evaluate(&r.Children[i])
		if err != nil {
			return false, err
		}
		switch r.Operator {
		case OpOr:
			if ok {
				return true, nil
			}
		case OpAnd:
			if !ok {
				return false, nil
			}
		default:
			return false, fmt.Errorf("%w: %s chain", ErrUnsupportedOperator, r.Operator)
		}
	}
	return r.Operator == OpAnd, nil
}

func evaluateOperands(r *Resolved) (bool, error) {
	switch r.Operator {
	case OpIsEmpty:
		return isEmpty(r.LHS), nil
	case OpIsNotEmpty:
		return !isEmpty(r.LHS), nil
	}
	if !r.HasRHS {
		return false, fmt.Errorf("%w: %s needs a right operand", ErrUnableToResolve, r.Operator)
	}

	switch r.OperandType {
	case OperandBoolean:
		return compareBoolean(r.Operator, r.LHS.Bool(), r.RHS.Bool())
	case OperandNumber:
		return compareNumber(r.Operator, r.LHS.Float(), r.RHS.Float())
	case OperandString:
		return compareString(r.Operator, r.LHS, r.RHS)
	case OperandList:
		return compareList(r.Operator, r.LHS, r.RHS)
	}
	return false, fmt.Errorf("%w: operand type %q", ErrUnsupportedOperator, r.OperandType)
}

func compareBoolean(op Operator, lhs, rhs bool) (bool, error) {
	switch op {
	case OpIs, OpEquals:
		return lhs == rhs, nil
	case OpIsNot, OpNotEquals:
		return lhs != rhs, nil
	}
	return false, unsupported(op, OperandBoolean)
}

func compareNumber(op Operator, lhs, rhs float64) (bool, error) {
	switch op {
	case OpIs, OpEquals:
		return lhs == rhs, nil
	case OpIsNot, OpNotEquals:
		return lhs != rhs, nil
	case OpLessThan:
		return lhs < rhs, nil
	case OpLessThanOrEqual:
		return lhs <= rhs, nil
	case OpGreaterThan:
		return lhs > rhs, nil
	case OpGreaterThanOrEqual:
		return lhs >= rhs, nil
	}
	return false, unsupported(op, OperandNumber)
}

func compareString(op Operator, lhs, rhs gjson.Result) (bool, error) {
	l := lhs.String()
	switch op {
	case OpIs, OpEquals:
		return l == rhs.String(), nil
	case OpIsNot, OpNotEquals:
		return l != rhs.String(), nil
	case OpContains:
		return strings.Contains(l, rhs.String()), nil
	case OpDoesNotContain:
		return !strings.Contains(l, rhs.String()), nil
	case OpStartsWith:
		return strings.HasPrefix(l, rhs.String()), nil
	case OpEndsWith:
		return strings.HasSuffix(l, rhs.String()), nil
	case OpIsOneOf:
		for _, v := range rhs.Array() {
			if v.String() == l {
				return true, nil
			}
		}
		return false, nil
	}
	return false, unsupported(op, OperandString)
}

func compareList(op Operator, lhs, rhs gjson.Result) (bool, error) {
	switch op {
	case OpContains:
		return listContains(lhs, rhs), nil
	case OpDoesNotContain:
		return !listContains(lhs, rhs), nil
	case OpIs, OpEquals:
		return sameElements(lhs.Array(), rhs.Array()), nil
	case OpIsNot, OpNotEquals:
		return !sameElements(lhs.Array(), rhs.Array()), nil
	}
	return false, unsupported(op, OperandList)
}

// listContains reports whether every value of rhs (a scalar or a list) is
// present in lhs.
func listContains(lhs, rhs gjson.Result) bool {
	have := make(map[string]bool)
	for _, v := range lhs.Array() {
		have[v.String()] = true
	}
	want := []gjson.Result{rhs}
	if rhs.IsArray() {
		want = rhs.Array()
	}
	for _, v := range want {
		if !have[v.String()] {
			return false
		}
	}
	return true
}

func sameElements(a, b []gjson.Result) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, v := range a {
		counts[v.String()]++
	}
	for _, v := range b {
		counts[v.String()]--
		if counts[v.String()] < 0 {
			return false
		}
	}
	return true
}

func isEmpty(v gjson.Result) bool {
	switch {
	case !v.Exists(), v.Type == gjson.Null:
		return true
	case v.IsArray():
		return len(v.Array()) == 0
	case v.IsObject():
		return len(v.Map()) == 0
	}
	return v.String() == ""
}

func unsupported(op Operator, t OperandType) error {
	return fmt.Errorf("%w: %s on %s", ErrUnsupportedOperator, op, t)
}
