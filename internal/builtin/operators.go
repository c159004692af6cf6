// Package builtin implements the default OperatorLibrary and FunctionLibrary
// collaborators (spec.md §6): the arithmetic/geometric/exponent/relational/
// equality/logical/unary operator set and the abs/min/max/if/arg/length
// function set, wired against the format and ast packages' collaborator
// interfaces rather than baked into the evaluator itself.
package builtin

import (
	"fmt"
	"math"

	"github.com/solverlab/formula/internal/ast"
	"github.com/solverlab/formula/internal/format"
)

// Operators is the default OperatorLibrary: every operator in spec.md §6's
// grammar, implemented over the Integer/Real/Boolean/String primitives.
// Numeric operators accept either operand being Real and promote; two
// Integer operands stay Integer for arithmetic/geometric/exponent.
type Operators struct{}

var _ ast.OperatorLibrary = Operators{}

func (Operators) Binary(category ast.Kind, op string) []ast.OperatorAction {
	switch category {
	case ast.KindArithmetic, ast.KindGeometric, ast.KindExponent:
		return numericBinaryActions(op)
	case ast.KindRelational:
		return relationalActions(op)
	case ast.KindEquality:
		return equalityActions(op)
	case ast.KindLogical:
		return []ast.OperatorAction{logicalAction{op: op}}
	default:
		return nil
	}
}

func (Operators) Unary(category ast.Kind, op string) []ast.UnaryAction {
	switch category {
	case ast.KindUnaryMinus:
		return []ast.UnaryAction{unaryMinusIntAction{}, unaryMinusRealAction{}}
	case ast.KindUnaryNot:
		return []ast.UnaryAction{unaryNotAction{}}
	default:
		return nil
	}
}

func numericBinaryActions(op string) []ast.OperatorAction {
	return []ast.OperatorAction{
		intAction{op: op},
		realAction{op: op},
	}
}

// intAction implements op over two Integer operands, yielding Integer.
// It declines (AbstractEvaluate returns false) if either operand is not
// exactly Integer, so realAction gets a chance to promote.
type intAction struct{ op string }

func (a intAction) Operator() string { return a.op }

func (a intAction) AbstractEvaluate(left, right format.Format) (format.Format, bool) {
	if left.Name() != format.Integer || right.Name() != format.Integer {
		return nil, false
	}
	return format.IntegerFormat, true
}

func (a intAction) Evaluate(left, right any) (any, error) {
	l, lok := left.(int64)
	r, rok := right.(int64)
	if !lok || !rok {
		return nil, fmt.Errorf("builtin: operator %q expected two integers", a.op)
	}
	switch a.op {
	case "+":
		return l + r, nil
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	case "/":
		if r == 0 {
			return nil, fmt.Errorf("builtin: division by zero")
		}
		return l / r, nil
	case "%":
		if r == 0 {
			return nil, fmt.Errorf("builtin: modulo by zero")
		}
		return l % r, nil
	case "^":
		return int64(math.Pow(float64(l), float64(r))), nil
	default:
		return nil, fmt.Errorf("builtin: unknown integer operator %q", a.op)
	}
}

// realAction implements op over two operands that are Integer-or-Real
// (at least one Real), yielding Real.
type realAction struct{ op string }

func (a realAction) Operator() string { return a.op }

func (a realAction) AbstractEvaluate(left, right format.Format) (format.Format, bool) {
	if !left.IsSubformatOf(format.RealFormat) || !right.IsSubformatOf(format.RealFormat) {
		return nil, false
	}
	return format.RealFormat, true
}

func (a realAction) Evaluate(left, right any) (any, error) {
	l, err := asReal(left)
	if err != nil {
		return nil, err
	}
	r, err := asReal(right)
	if err != nil {
		return nil, err
	}
	switch a.op {
	case "+":
		return l + r, nil
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	case "/":
		if r == 0 {
			return nil, fmt.Errorf("builtin: division by zero")
		}
		return l / r, nil
	case "%":
		if r == 0 {
			return nil, fmt.Errorf("builtin: modulo by zero")
		}
		return math.Mod(l, r), nil
	case "^":
		return math.Pow(l, r), nil
	default:
		return nil, fmt.Errorf("builtin: unknown real operator %q", a.op)
	}
}

func asReal(v any) (float64, error) {
	switch n := v.(type) {
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		return 0, fmt.Errorf("builtin: value %v is not numeric", v)
	}
}

func relationalActions(op string) []ast.OperatorAction {
	return []ast.OperatorAction{relationalAction{op: op}}
}

type relationalAction struct{ op string }

func (a relationalAction) Operator() string { return a.op }

func (a relationalAction) AbstractEvaluate(left, right format.Format) (format.Format, bool) {
	if !left.IsSubformatOf(format.RealFormat) || !right.IsSubformatOf(format.RealFormat) {
		return nil, false
	}
	return format.BooleanFormat, true
}

func (a relationalAction) Evaluate(left, right any) (any, error) {
	l, err := asReal(left)
	if err != nil {
		return nil, err
	}
	r, err := asReal(right)
	if err != nil {
		return nil, err
	}
	switch a.op {
	case "<":
		return l < r, nil
	case ">":
		return l > r, nil
	case "<=":
		return l <= r, nil
	case ">=":
		return l >= r, nil
	default:
		return nil, fmt.Errorf("builtin: unknown relational operator %q", a.op)
	}
}

func equalityActions(op string) []ast.OperatorAction {
	return []ast.OperatorAction{equalityAction{op: op}}
}

type equalityAction struct{ op string }

func (a equalityAction) Operator() string { return a.op }

func (a equalityAction) AbstractEvaluate(left, right format.Format) (format.Format, bool) {
	if left.Name() != right.Name() && !left.IsSubformatOf(right) && !right.IsSubformatOf(left) {
		return nil, false
	}
	return format.BooleanFormat, true
}

func (a equalityAction) Evaluate(left, right any) (any, error) {
	var eq bool
	if lf, lok := left.(float64); lok {
		rf, _ := asReal(right)
		eq = lf == rf
	} else if rf, rok := right.(float64); rok {
		lf, _ := asReal(left)
		eq = lf == rf
	} else {
		eq = left == right
	}
	if a.op == "!=" {
		return !eq, nil
	}
	return eq, nil
}

type logicalAction struct{ op string }

func (a logicalAction) Operator() string { return a.op }

func (a logicalAction) AbstractEvaluate(left, right format.Format) (format.Format, bool) {
	if left.Name() != format.Boolean || right.Name() != format.Boolean {
		return nil, false
	}
	return format.BooleanFormat, true
}

func (a logicalAction) Evaluate(left, right any) (any, error) {
	l, lok := left.(bool)
	r, rok := right.(bool)
	if !lok || !rok {
		return nil, fmt.Errorf("builtin: operator %q expected two booleans", a.op)
	}
	if a.op == "&&" {
		return l && r, nil
	}
	return l || r, nil
}

type unaryMinusIntAction struct{}

func (unaryMinusIntAction) Operator() string { return "-" }

func (unaryMinusIntAction) AbstractEvaluate(operand format.Format) (format.Format, bool) {
	if operand.Name() != format.Integer {
		return nil, false
	}
	return format.IntegerFormat, true
}

func (unaryMinusIntAction) Evaluate(operand any) (any, error) {
	n, ok := operand.(int64)
	if !ok {
		return nil, fmt.Errorf("builtin: unary - expected an integer")
	}
	return -n, nil
}

type unaryMinusRealAction struct{}

func (unaryMinusRealAction) Operator() string { return "-" }

func (unaryMinusRealAction) AbstractEvaluate(operand format.Format) (format.Format, bool) {
	if !operand.IsSubformatOf(format.RealFormat) {
		return nil, false
	}
	return format.RealFormat, true
}

func (unaryMinusRealAction) Evaluate(operand any) (any, error) {
	f, err := asReal(operand)
	if err != nil {
		return nil, err
	}
	return -f, nil
}

type unaryNotAction struct{}

func (unaryNotAction) Operator() string { return "!" }

func (unaryNotAction) AbstractEvaluate(operand format.Format) (format.Format, bool) {
	if operand.Name() != format.Boolean {
		return nil, false
	}
	return format.BooleanFormat, true
}

func (unaryNotAction) Evaluate(operand any) (any, error) {
	b, ok := operand.(bool)
	if !ok {
		return nil, fmt.Errorf("builtin: unary ! expected a boolean")
	}
	return !b, nil
}
