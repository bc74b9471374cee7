package condition

import (
	"fmt"

	"github.com/mfcabral/rulegate/internal/fact"
)

// Eval walks the AST against a fact snapshot and returns true/false.
//
// A comparison that references a fact missing from the snapshot evaluates to
// false instead of erroring: a rule depending on a not-yet-available signal
// simply does not fire. For a fixed condition and snapshot the result is
// deterministic and side-effect free.
func Eval(expr Expr, snap fact.Snapshot) (bool, error) {
	switch e := expr.(type) {
	case *BinaryExpr:
		return evalBinary(e, snap)
	case *NotExpr:
		v, err := Eval(e.Expr, snap)
		if err != nil {
			return false, err
		}
		return !v, nil
	case *ComparisonExpr:
		return evalComparison(e, snap)
	default:
		return false, fmt.Errorf("unknown expr type %T", expr)
	}
}

// EvalString parses and evaluates a condition in one step. Parse failures
// come back as *SyntaxError.
func EvalString(cond string, snap fact.Snapshot) (bool, error) {
	ast, err := Parse(cond)
	if err != nil {
		return false, err
	}
	return Eval(ast, snap)
}

func evalBinary(e *BinaryExpr, snap fact.Snapshot) (bool, error) {
	left, err := Eval(e.Left, snap)
	if err != nil {
		return false, err
	}
	switch e.Op {
	case "AND":
		if !left {
			return false, nil // short-circuit
		}
		return Eval(e.Right, snap)
	case "OR":
		if left {
			return true, nil // short-circuit
		}
		return Eval(e.Right, snap)
	default:
		return false, fmt.Errorf("unknown binary op %q", e.Op)
	}
}

func evalComparison(e *ComparisonExpr, snap fact.Snapshot) (bool, error) {
	left, ok := resolveOperand(e.Left, snap)
	if !ok {
		return false, nil
	}
	right, ok := resolveOperand(e.Right, snap)
	if !ok {
		return false, nil
	}
	return compare(e.Op, left, right)
}

func resolveOperand(op Operand, snap fact.Snapshot) (any, bool) {
	switch o := op.(type) {
	case *LiteralOperand:
		return o.Value, true
	case *FactOperand:
		return snap.Resolve(o.Name)
	default:
		return nil, false
	}
}
